package credentials

// TokenPair is the mutable OAuth token pair for an authenticated session.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Empty reports whether neither token is present.
func (p TokenPair) Empty() bool {
	return p.AccessToken == "" && p.RefreshToken == ""
}

// Store defines the interface for reading and replacing the token pair.
// Stores hold no validation logic; deciding whether a token is usable is
// the caller's job.
type Store interface {
	Get() (TokenPair, error)
	Set(TokenPair) error
	// ClearAccessToken drops only the access token, forcing the next
	// authenticated call to derive a new one from the refresh token.
	ClearAccessToken() error
}
