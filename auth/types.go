package auth

import (
	"time"

	"golang.org/x/oauth2"
)

// TokenResponse is the token endpoint's JSON payload, shared by the
// authorization_code and refresh_token grants.
type TokenResponse struct {
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// OAuth2Token converts the payload to a golang.org/x/oauth2 token for
// interop with libraries that consume oauth2.TokenSource.
func (tr *TokenResponse) OAuth2Token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		TokenType:    tr.TokenType,
	}
	if tr.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return tok
}

// AuthorizationURL is the result of building an authorization endpoint
// URL, including the challenge and state that went into it. The
// challenge doubles as the code verifier for the exchange step.
type AuthorizationURL struct {
	URL           string
	CodeChallenge string
	State         string
}

// URLOptions are the caller-supplied parts of an authorization URL.
// Empty fields are treated as absent: the challenge is generated, and
// state/redirect URI are omitted from the URL entirely.
type URLOptions struct {
	RedirectURI   string
	CodeChallenge string
	State         string
}
