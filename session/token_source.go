package session

import (
	"context"
	"time"

	"github.com/jrsteele09/go-employee-console/internal/errors"
	"golang.org/x/oauth2"
)

// requestTimeout bounds a store read made on behalf of an outgoing request
const requestTimeout = 2 * time.Second

type tokenSource struct {
	store *Store
}

// TokenSource exposes the stored bearer token to oauth2.Transport. The token
// is read on every request so a logout takes effect immediately.
func TokenSource(store *Store) oauth2.TokenSource {
	return &tokenSource{store: store}
}

func (ts *tokenSource) Token() (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	creds, err := ts.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if creds.Empty() {
		return nil, errors.ErrTokenAbsent
	}
	return &oauth2.Token{
		AccessToken: creds.Token,
		TokenType:   "Bearer",
	}, nil
}
