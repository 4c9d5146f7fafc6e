package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// codeChallengeBytes is the number of random bytes drawn for a generated
// PKCE code challenge.
const codeChallengeBytes = 32

// GenerateCodeChallenge produces a random PKCE code challenge. The API
// only accepts the "plain" challenge method, so the generated value is
// used verbatim as both challenge and verifier; no SHA-256 step applies.
func GenerateCodeChallenge() (string, error) {
	b := make([]byte, codeChallengeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate code challenge: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateState produces a random state parameter for callers that want
// CSRF protection on the redirect. States are never generated implicitly.
func GenerateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
