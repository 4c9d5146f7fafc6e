package credentials

import (
	"fmt"
	"os"
)

// EnvStore reads the token pair from environment variables. It is
// read-only: refreshed tokens cannot be written back, so it is only
// suitable for short-lived invocations with a fresh access token.
type EnvStore struct{}

// NewEnvStore creates a new environment-based token store.
func NewEnvStore() *EnvStore {
	return &EnvStore{}
}

// Get reads MAL_ACCESS_TOKEN and MAL_REFRESH_TOKEN.
func (e *EnvStore) Get() (TokenPair, error) {
	return TokenPair{
		AccessToken:  os.Getenv("MAL_ACCESS_TOKEN"),
		RefreshToken: os.Getenv("MAL_REFRESH_TOKEN"),
	}, nil
}

// Set returns an error as environment credentials cannot be updated.
func (e *EnvStore) Set(TokenPair) error {
	return fmt.Errorf("environment credentials do not support token updates")
}

// ClearAccessToken returns an error as environment credentials cannot be updated.
func (e *EnvStore) ClearAccessToken() error {
	return fmt.Errorf("environment credentials do not support token updates")
}
