package mal

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/dvcrn/go-mal/auth"
	"github.com/dvcrn/go-mal/credentials"
)

// DefaultAPIBaseURL is the base for the v2 resource API.
const DefaultAPIBaseURL = "https://api.myanimelist.net/v2"

// Config is the construction-time configuration for a Client.
// Client credentials are required for any flow that mints new tokens;
// they may be omitted when tokens are supplied directly.
type Config struct {
	ClientID     string
	ClientSecret string

	// Initial token pair. Written into the store at construction.
	AccessToken  string
	RefreshToken string

	// Store defaults to an in-memory store seeded with the tokens
	// above. Use an fs/keychain/KV store for persistence.
	Store credentials.Store

	// Transport defaults to NewHTTPTransport.
	Transport Transport
	// HTTPClient is used for token endpoint calls.
	HTTPClient *http.Client

	APIBaseURL   string
	OAuthBaseURL string

	// DisableAutoRefresh makes calls fail instead of refreshing when
	// the access token is missing.
	DisableAutoRefresh bool

	Logger *zerolog.Logger
}

// Client dispatches authenticated calls against the API and manages
// the token lifecycle: PKCE authorization, refresh before dispatch,
// and a single refresh retry after a 401 on the read path.
type Client struct {
	store       credentials.Store
	auth        *auth.Authorizer
	transport   Transport
	baseURL     string
	autoRefresh bool
	logger      *zerolog.Logger

	// Concurrent callers that both observe a missing access token
	// share one in-flight refresh.
	refreshGroup singleflight.Group
}

// New creates a Client. It fails when neither client credentials nor
// any token is available, since no authenticated call could ever
// succeed.
func New(cfg Config) (*Client, error) {
	store := cfg.Store
	if store == nil {
		store = credentials.NewMemoryStore(credentials.TokenPair{
			AccessToken:  cfg.AccessToken,
			RefreshToken: cfg.RefreshToken,
		})
	} else if cfg.AccessToken != "" || cfg.RefreshToken != "" {
		pair := credentials.TokenPair{AccessToken: cfg.AccessToken, RefreshToken: cfg.RefreshToken}
		if err := store.Set(pair); err != nil {
			return nil, fmt.Errorf("failed to seed token store: %w", err)
		}
	}

	pair, err := store.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to read token store: %w", err)
	}
	if (cfg.ClientID == "" || cfg.ClientSecret == "") && pair.Empty() {
		return nil, &auth.ConfigurationError{Missing: "client credentials or tokens"}
	}

	transport := cfg.Transport
	if transport == nil {
		transport = NewHTTPTransport()
	}
	baseURL := cfg.APIBaseURL
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}

	return &Client{
		store: store,
		auth: &auth.Authorizer{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			BaseURL:      cfg.OAuthBaseURL,
			HTTPClient:   cfg.HTTPClient,
			Store:        store,
			Logger:       cfg.Logger,
		},
		transport:   transport,
		baseURL:     baseURL,
		autoRefresh: !cfg.DisableAutoRefresh,
		logger:      cfg.Logger,
	}, nil
}

// OAuthURL builds the PKCE authorization URL. See auth.Authorizer.
func (c *Client) OAuthURL(opts auth.URLOptions) (*auth.AuthorizationURL, error) {
	return c.auth.AuthorizationURL(opts)
}

// ExchangeAuthorizationCode trades an authorization code for a token
// pair and stores it.
func (c *Client) ExchangeAuthorizationCode(ctx context.Context, code, codeVerifier, redirectURI string) (*auth.TokenResponse, error) {
	return c.auth.ExchangeAuthorizationCode(ctx, code, codeVerifier, redirectURI)
}

// ExchangeRefreshToken mints a new token pair, defaulting to the
// stored refresh token when none is given.
func (c *Client) ExchangeRefreshToken(ctx context.Context, refreshToken string) (*auth.TokenResponse, error) {
	return c.auth.ExchangeRefreshToken(ctx, refreshToken)
}

// Tokens returns the current token pair from the store.
func (c *Client) Tokens() (credentials.TokenPair, error) {
	return c.store.Get()
}
