package client

import (
	"context"
	"net/http"

	"github.com/utafrali/storefront/internal/domain"
)

// Auth performs the login exchange.
type Auth struct {
	base
}

// NewAuth creates an auth client rooted at baseURL.
func NewAuth(doer HTTPDoer, baseURL string) *Auth {
	return &Auth{base: newBase(doer, baseURL, nil)}
}

// Login posts the credentials to /auth/login. A response without a token
// is returned as-is; deciding whether it is usable is up to the caller.
func (a *Auth) Login(ctx context.Context, creds domain.Credentials) (*domain.LoginResponse, error) {
	var out domain.LoginResponse
	if err := a.call(ctx, http.MethodPost, "/auth/login", creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
