package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dvcrn/go-mal/credentials"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the OAuth base for the MyAnimeList v1 auth endpoints
	DefaultBaseURL = "https://myanimelist.net/v1"

	authorizePath = "/oauth2/authorize"
	tokenPath     = "/oauth2/token"

	// CodeChallengeMethod is fixed: the API only supports plain PKCE
	CodeChallengeMethod = "plain"
)

// Authorizer implements the PKCE authorization flow and the token
// exchanges against the OAuth endpoints. Successful exchanges write the
// returned token pair into the Store.
type Authorizer struct {
	ClientID     string
	ClientSecret string
	// BaseURL defaults to DefaultBaseURL when empty
	BaseURL    string
	HTTPClient *http.Client
	Store      credentials.Store
	Logger     *zerolog.Logger
}

// AuthorizationURL assembles the authorization endpoint URL. When no
// code challenge is supplied one is generated; state and redirect URI
// are omitted from the URL when absent.
func (a *Authorizer) AuthorizationURL(opts URLOptions) (*AuthorizationURL, error) {
	if err := a.requireClientCredentials(); err != nil {
		return nil, err
	}

	challenge := opts.CodeChallenge
	if challenge == "" {
		var err error
		challenge, err = GenerateCodeChallenge()
		if err != nil {
			return nil, err
		}
	}

	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", a.ClientID)
	if opts.State != "" {
		q.Set("state", opts.State)
	}
	if opts.RedirectURI != "" {
		q.Set("redirect_uri", opts.RedirectURI)
	}
	q.Set("code_challenge", challenge)
	q.Set("code_challenge_method", CodeChallengeMethod)

	return &AuthorizationURL{
		URL:           a.baseURL() + authorizePath + "?" + q.Encode(),
		CodeChallenge: challenge,
		State:         opts.State,
	}, nil
}

// ExchangeAuthorizationCode trades an authorization code for a token
// pair and writes it into the store.
func (a *Authorizer) ExchangeAuthorizationCode(ctx context.Context, code, codeVerifier, redirectURI string) (*TokenResponse, error) {
	if err := a.requireClientCredentials(); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("code_verifier", codeVerifier)
	if redirectURI != "" {
		form.Set("redirect_uri", redirectURI)
	}
	return a.token(ctx, form)
}

// ExchangeRefreshToken mints a new token pair from a refresh token and
// writes it into the store. An empty refreshToken defaults to the
// stored one.
func (a *Authorizer) ExchangeRefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	if err := a.requireClientCredentials(); err != nil {
		return nil, err
	}

	if refreshToken == "" && a.Store != nil {
		pair, err := a.Store.Get()
		if err != nil {
			return nil, fmt.Errorf("failed to read token store: %w", err)
		}
		refreshToken = pair.RefreshToken
	}
	if refreshToken == "" {
		return nil, &AuthenticationError{Reason: "no refresh token available"}
	}

	if a.Logger != nil {
		a.Logger.Debug().Msg("Exchanging refresh token for new token pair")
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	return a.token(ctx, form)
}

// token issues a form-encoded request to the token endpoint and stores
// the resulting pair.
func (a *Authorizer) token(ctx context.Context, form url.Values) (*TokenResponse, error) {
	form.Set("client_id", a.ClientID)
	form.Set("client_secret", a.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL()+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	if a.Store != nil {
		pair := credentials.TokenPair{
			AccessToken:  tokenResp.AccessToken,
			RefreshToken: tokenResp.RefreshToken,
		}
		if err := a.Store.Set(pair); err != nil {
			return nil, fmt.Errorf("failed to store tokens: %w", err)
		}
	}

	if a.Logger != nil {
		a.Logger.Info().Msg("Token exchange succeeded")
	}
	return &tokenResp, nil
}

func (a *Authorizer) requireClientCredentials() error {
	if a.ClientID == "" {
		return &ConfigurationError{Missing: "client_id"}
	}
	if a.ClientSecret == "" {
		return &ConfigurationError{Missing: "client_secret"}
	}
	return nil
}

func (a *Authorizer) baseURL() string {
	if a.BaseURL != "" {
		return strings.TrimSuffix(a.BaseURL, "/")
	}
	return DefaultBaseURL
}

func (a *Authorizer) httpClient() *http.Client {
	if a.HTTPClient != nil {
		return a.HTTPClient
	}
	return http.DefaultClient
}
