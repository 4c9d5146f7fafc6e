package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvcrn/go-mal/credentials"
)

func TestAuthorizationURL(t *testing.T) {
	t.Run("fails without client credentials", func(t *testing.T) {
		a := &Authorizer{ClientID: "id"}
		_, err := a.AuthorizationURL(URLOptions{})

		var confErr *ConfigurationError
		require.True(t, errors.As(err, &confErr))
		assert.Equal(t, "client_secret", confErr.Missing)
	})

	t.Run("includes supplied challenge and state", func(t *testing.T) {
		a := &Authorizer{ClientID: "my-id", ClientSecret: "my-secret"}
		out, err := a.AuthorizationURL(URLOptions{
			CodeChallenge: "challenge-value",
			State:         "state-value",
			RedirectURI:   "https://example.com/callback",
		})
		require.NoError(t, err)

		u, err := url.Parse(out.URL)
		require.NoError(t, err)
		assert.Equal(t, "/v1/oauth2/authorize", u.Path)

		q := u.Query()
		assert.Equal(t, "code", q.Get("response_type"))
		assert.Equal(t, "my-id", q.Get("client_id"))
		assert.Equal(t, "challenge-value", q.Get("code_challenge"))
		assert.Equal(t, "plain", q.Get("code_challenge_method"))
		assert.Equal(t, "state-value", q.Get("state"))
		assert.Equal(t, "https://example.com/callback", q.Get("redirect_uri"))
		assert.Equal(t, "challenge-value", out.CodeChallenge)
	})

	t.Run("generates challenge and omits absent params", func(t *testing.T) {
		a := &Authorizer{ClientID: "my-id", ClientSecret: "my-secret"}
		out, err := a.AuthorizationURL(URLOptions{})
		require.NoError(t, err)
		assert.NotEmpty(t, out.CodeChallenge)

		u, err := url.Parse(out.URL)
		require.NoError(t, err)
		q := u.Query()
		assert.Equal(t, out.CodeChallenge, q.Get("code_challenge"))
		assert.False(t, q.Has("state"))
		assert.False(t, q.Has("redirect_uri"))
	})
}

func TestExchangeAuthorizationCode(t *testing.T) {
	var gotForm url.Values
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		assert.Equal(t, "/oauth2/token", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token_type":"Bearer","expires_in":3600,"access_token":"new-access","refresh_token":"new-refresh"}`))
	}))
	defer ts.Close()

	store := credentials.NewMemoryStore(credentials.TokenPair{})
	a := &Authorizer{
		ClientID:     "my-id",
		ClientSecret: "my-secret",
		BaseURL:      ts.URL,
		Store:        store,
	}

	resp, err := a.ExchangeAuthorizationCode(context.Background(), "auth-code", "verifier", "https://example.com/cb")
	require.NoError(t, err)

	assert.Equal(t, "authorization_code", gotForm.Get("grant_type"))
	assert.Equal(t, "auth-code", gotForm.Get("code"))
	assert.Equal(t, "verifier", gotForm.Get("code_verifier"))
	assert.Equal(t, "https://example.com/cb", gotForm.Get("redirect_uri"))
	assert.Equal(t, "my-id", gotForm.Get("client_id"))
	assert.Equal(t, "my-secret", gotForm.Get("client_secret"))

	// Full payload is returned
	assert.Equal(t, "new-access", resp.AccessToken)
	assert.Equal(t, "new-refresh", resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)

	// Store was updated in place
	pair, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, "new-access", pair.AccessToken)
	assert.Equal(t, "new-refresh", pair.RefreshToken)
}

func TestExchangeRefreshToken(t *testing.T) {
	t.Run("defaults to stored refresh token", func(t *testing.T) {
		var gotForm url.Values
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			gotForm = r.PostForm
			w.Write([]byte(`{"access_token":"rotated-access","refresh_token":"rotated-refresh"}`))
		}))
		defer ts.Close()

		store := credentials.NewMemoryStore(credentials.TokenPair{RefreshToken: "stored-refresh"})
		a := &Authorizer{ClientID: "id", ClientSecret: "secret", BaseURL: ts.URL, Store: store}

		resp, err := a.ExchangeRefreshToken(context.Background(), "")
		require.NoError(t, err)

		assert.Equal(t, "refresh_token", gotForm.Get("grant_type"))
		assert.Equal(t, "stored-refresh", gotForm.Get("refresh_token"))
		assert.Equal(t, "rotated-access", resp.AccessToken)

		pair, _ := store.Get()
		assert.Equal(t, "rotated-access", pair.AccessToken)
		assert.Equal(t, "rotated-refresh", pair.RefreshToken)
	})

	t.Run("fails without any refresh token", func(t *testing.T) {
		store := credentials.NewMemoryStore(credentials.TokenPair{})
		a := &Authorizer{ClientID: "id", ClientSecret: "secret", Store: store}

		_, err := a.ExchangeRefreshToken(context.Background(), "")
		var authErr *AuthenticationError
		require.True(t, errors.As(err, &authErr))
	})

	t.Run("fails without client credentials", func(t *testing.T) {
		a := &Authorizer{}
		_, err := a.ExchangeRefreshToken(context.Background(), "some-refresh")
		var confErr *ConfigurationError
		require.True(t, errors.As(err, &confErr))
	})

	t.Run("propagates token endpoint errors", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
		}))
		defer ts.Close()

		a := &Authorizer{ClientID: "id", ClientSecret: "secret", BaseURL: ts.URL}
		_, err := a.ExchangeRefreshToken(context.Background(), "expired-refresh")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 400")
	})
}

func TestTokenResponseOAuth2Token(t *testing.T) {
	tr := &TokenResponse{
		TokenType:    "Bearer",
		ExpiresIn:    3600,
		AccessToken:  "a",
		RefreshToken: "r",
	}
	tok := tr.OAuth2Token()
	assert.Equal(t, "a", tok.AccessToken)
	assert.Equal(t, "r", tok.RefreshToken)
	assert.False(t, tok.Expiry.IsZero())
}
