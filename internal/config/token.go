package config

import (
	"errors"

	"golang.org/x/oauth2"
)

// ErrMissingToken is returned when a request needs credentials but
// YANDEX_DISK_TOKEN was never provided. It is raised while building request
// headers, so no network call is attempted without credentials.
var ErrMissingToken = errors.New("config: " + EnvToken + " is not set; copy .env.example to .env and add your token")

// tokenType is the Authorization scheme the provider expects ("OAuth <token>").
const tokenType = "OAuth"

// TokenSource returns an oauth2.TokenSource serving the configured token
// with the provider's "OAuth" scheme. When no token is configured the source
// fails every call with ErrMissingToken.
func (r *Resolved) TokenSource() oauth2.TokenSource {
	if r.Token == "" {
		return missingToken{}
	}

	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: r.Token,
		TokenType:   tokenType,
	})
}

// RequireToken fails fast with ErrMissingToken when no token is configured.
func (r *Resolved) RequireToken() error {
	if r.Token == "" {
		return ErrMissingToken
	}

	return nil
}

type missingToken struct{}

func (missingToken) Token() (*oauth2.Token, error) {
	return nil, ErrMissingToken
}
