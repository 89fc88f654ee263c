package session

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-employee-console/internal/errors"
	"github.com/jrsteele09/go-employee-console/kv"
)

// Fixed keys in the shared key-value store
const (
	KeyToken  = "token"
	KeyUserID = "id"
)

// Credentials is what a successful login leaves behind
type Credentials struct {
	Token  string // raw bearer token
	UserID string // identifier returned by the API alongside the token
}

// Empty reports whether there is no token
func (c Credentials) Empty() bool {
	return c.Token == ""
}

// Store owns the stored session state. Only login (Set) and forced logout
// (Clear) write to it; views only read.
type Store struct {
	kv kv.KeyValueStore
}

func NewStore(store kv.KeyValueStore) *Store {
	return &Store{kv: store}
}

// groupReader is implemented by stores that can read several keys from one
// backend, such as kv.Multi.
type groupReader interface {
	GetAll(ctx context.Context, keys ...string) (map[string]string, error)
}

// Get returns the stored credentials. An absent token is not an error: it
// comes back as empty Credentials.
func (s *Store) Get(ctx context.Context) (Credentials, error) {
	if group, ok := s.kv.(groupReader); ok {
		values, err := group.GetAll(ctx, KeyToken, KeyUserID)
		if errors.Is(err, kv.ErrNotFound) {
			return Credentials{}, nil
		}
		if err != nil {
			return Credentials{}, fmt.Errorf("read session: %w", err)
		}
		return Credentials{Token: values[KeyToken], UserID: values[KeyUserID]}, nil
	}

	tok, err := s.kv.Get(ctx, KeyToken)
	if errors.Is(err, kv.ErrNotFound) {
		return Credentials{}, nil
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("read session token: %w", err)
	}

	userID, err := s.kv.Get(ctx, KeyUserID)
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return Credentials{}, fmt.Errorf("read session user: %w", err)
	}

	return Credentials{Token: tok, UserID: userID}, nil
}

// Set overwrites the stored credentials
func (s *Store) Set(ctx context.Context, creds Credentials) error {
	if creds.Empty() {
		return fmt.Errorf("%w: refusing to store an empty token", errors.ErrTokenAbsent)
	}
	if bw, ok := s.kv.(kv.BatchWriter); ok {
		err := bw.SetAll(ctx, map[string]string{KeyToken: creds.Token, KeyUserID: creds.UserID})
		return errors.Wrapf(err, "store session")
	}

	// The token is written last because watchers react to it
	if err := s.kv.Set(ctx, KeyUserID, creds.UserID); err != nil {
		return fmt.Errorf("store session user: %w", err)
	}
	if err := s.kv.Set(ctx, KeyToken, creds.Token); err != nil {
		return fmt.Errorf("store session token: %w", err)
	}
	return nil
}

// Watch calls onChange whenever the backing store reports a write, which
// includes writes by other consoles sharing it. It returns ErrUnsupported
// when the backing store cannot watch.
func (s *Store) Watch(ctx context.Context, onChange func()) error {
	w, ok := s.kv.(kv.Watcher)
	if !ok {
		return errors.ErrUnsupported
	}
	return w.Watch(ctx, onChange)
}

// Clear deletes both keys. Both deletions are always attempted.
func (s *Store) Clear(ctx context.Context) error {
	return errors.Join(
		errors.Wrapf(s.kv.Del(ctx, KeyToken), "clear session token"),
		errors.Wrapf(s.kv.Del(ctx, KeyUserID), "clear session user"),
	)
}
