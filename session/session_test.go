package session_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-employee-console/internal/errors"
	"github.com/jrsteele09/go-employee-console/kv"
	"github.com/jrsteele09/go-employee-console/session"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	backing := kv.NewMemory()
	store := session.NewStore(backing)

	creds, err := store.Get(ctx)
	require.NoError(t, err)
	require.True(t, creds.Empty())

	require.ErrorIs(t, store.Set(ctx, session.Credentials{}), errors.ErrTokenAbsent)

	require.NoError(t, store.Set(ctx, session.Credentials{Token: "t1", UserID: "1"}))
	creds, err = store.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, session.Credentials{Token: "t1", UserID: "1"}, creds)

	value, err := backing.Get(ctx, session.KeyToken)
	require.NoError(t, err)
	require.Equal(t, "t1", value)

	require.NoError(t, store.Set(ctx, session.Credentials{Token: "t2", UserID: "2"}))
	creds, err = store.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "t2", creds.Token)

	t.Run("clear is idempotent", func(t *testing.T) {
		require.NoError(t, store.Clear(ctx))
		require.NoError(t, store.Clear(ctx))
		require.Equal(t, 0, backing.Len())

		creds, err := store.Get(ctx)
		require.NoError(t, err)
		require.True(t, creds.Empty())
	})
}

func TestStore_ClearsEveryLocation(t *testing.T) {
	ctx := context.Background()
	first, second := kv.NewMemory(), kv.NewMemory()
	store := session.NewStore(kv.NewMulti(first, second))

	require.NoError(t, store.Set(ctx, session.Credentials{Token: "t", UserID: "9"}))
	require.Equal(t, 2, first.Len())
	require.Equal(t, 2, second.Len())

	// A location written outside the store is cleared too
	require.NoError(t, second.Set(ctx, session.KeyToken, "stale"))

	require.NoError(t, store.Clear(ctx))
	require.Equal(t, 0, first.Len())
	require.Equal(t, 0, second.Len())
}

func TestTokenSource(t *testing.T) {
	ctx := context.Background()
	store := session.NewStore(kv.NewMemory())
	ts := session.TokenSource(store)

	_, err := ts.Token()
	require.ErrorIs(t, err, errors.ErrTokenAbsent)

	require.NoError(t, store.Set(ctx, session.Credentials{Token: "abc", UserID: "1"}))
	tok, err := ts.Token()
	require.NoError(t, err)
	require.Equal(t, "abc", tok.AccessToken)
	require.Equal(t, "Bearer", tok.Type())
}

func TestStore_GetDoesNotMixBackends(t *testing.T) {
	ctx := context.Background()
	first, second := kv.NewMemory(), kv.NewMemory()
	require.NoError(t, first.Set(ctx, session.KeyToken, "first-token"))
	require.NoError(t, second.Set(ctx, session.KeyToken, "second-token"))
	require.NoError(t, second.Set(ctx, session.KeyUserID, "2"))

	creds, err := session.NewStore(kv.NewMulti(first, second)).Get(ctx)
	require.NoError(t, err)
	require.Equal(t, session.Credentials{Token: "first-token"}, creds)
}

// plainStore exposes only the KeyValueStore methods of the store it wraps
type plainStore struct {
	kv.KeyValueStore
}

func TestStore_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	require.ErrorIs(t, session.NewStore(plainStore{kv.NewMemory()}).Watch(ctx, func() {}), errors.ErrUnsupported)

	backing := kv.NewMemory()
	store := session.NewStore(backing)
	calls := 0
	require.NoError(t, store.Watch(ctx, func() { calls++ }))

	require.NoError(t, store.Set(ctx, session.Credentials{Token: "t", UserID: "1"}))
	require.Equal(t, 1, calls, "token and user id are written together")

	require.NoError(t, session.NewStore(plainStore{backing}).Set(ctx, session.Credentials{Token: "u", UserID: "2"}))
	creds, err := store.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, session.Credentials{Token: "u", UserID: "2"}, creds)
}
