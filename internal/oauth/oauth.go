package oauth

import (
	"context"
	"errors"
)

var ErrExchangeFailed = errors.New("oauth exchange failed")

// Identity is what the provider asserts about the signed-in account.
type Identity struct {
	ExternalID string
	Email      string
	Name       string
}

// IdentityProvider is a thin redirect-and-exchange OAuth 2.0 client.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*Identity, error)
}
