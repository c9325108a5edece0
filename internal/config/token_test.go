package config

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSource_SetsOAuthScheme(t *testing.T) {
	r := &Resolved{Token: "abc123"}

	tok, err := r.TokenSource().Token()
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, "https://example.test", http.NoBody)
	require.NoError(t, err)

	tok.SetAuthHeader(req)
	assert.Equal(t, "OAuth abc123", req.Header.Get("Authorization"))
}

func TestTokenSource_MissingToken(t *testing.T) {
	r := &Resolved{}

	_, err := r.TokenSource().Token()
	require.ErrorIs(t, err, ErrMissingToken)
	require.ErrorIs(t, r.RequireToken(), ErrMissingToken)
}

func TestRequireToken_Present(t *testing.T) {
	assert.NoError(t, (&Resolved{Token: "x"}).RequireToken())
}
