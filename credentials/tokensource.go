package credentials

import (
	"golang.org/x/oauth2"

	"github.com/pkg/errors"
)

// ErrNoCredential is returned by a TokenSource when its store holds no
// access token.
var ErrNoCredential = errors.New("no credential for principal")

type storeTokenSource struct {
	store Store
}

// TokenSource adapts a Store to oauth2.TokenSource so HTTP clients can pull
// the current access token at request time. The token is re-read on every
// call, so a login or logout between requests takes effect immediately.
func TokenSource(store Store) oauth2.TokenSource {
	return storeTokenSource{store: store}
}

func (ts storeTokenSource) Token() (*oauth2.Token, error) {
	access := ts.store.Access()
	if access == "" {
		return nil, ErrNoCredential
	}
	return &oauth2.Token{
		AccessToken:  access,
		RefreshToken: ts.store.Refresh(),
		TokenType:    "Bearer",
	}, nil
}
