package credentials

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"sync"
	"time"
)

const (
	keychainService = "go-mal-credentials"
	keychainAccount = "go-mal"
	keychainTTL     = 5 * time.Minute
)

// KeychainStore persists the token pair in the macOS keychain via the
// `security` CLI. Reads are cached briefly to avoid prompting the
// keychain on every request.
type KeychainStore struct {
	mu        sync.Mutex
	cached    TokenPair
	hasCached bool
	cachedAt  time.Time
}

// NewKeychainStore creates a keychain-backed token store.
func NewKeychainStore() *KeychainStore {
	return &KeychainStore{}
}

func (k *KeychainStore) Get() (TokenPair, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.hasCached && time.Since(k.cachedAt) < keychainTTL {
		return k.cached, nil
	}
	pair, err := readKeychain()
	if err != nil {
		return TokenPair{}, err
	}
	k.cached = pair
	k.hasCached = true
	k.cachedAt = time.Now()
	return pair, nil
}

func (k *KeychainStore) Set(pair TokenPair) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := writeKeychain(pair); err != nil {
		return err
	}
	k.cached = pair
	k.hasCached = true
	k.cachedAt = time.Now()
	return nil
}

func (k *KeychainStore) ClearAccessToken() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	pair, err := readKeychain()
	if err != nil {
		return err
	}
	pair.AccessToken = ""
	if err := writeKeychain(pair); err != nil {
		return err
	}
	k.cached = pair
	k.hasCached = true
	k.cachedAt = time.Now()
	return nil
}

func readKeychain() (TokenPair, error) {
	cmd := exec.Command("security", "find-generic-password", "-s", keychainService, "-w")
	output, err := cmd.Output()
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to retrieve password from Keychain: %w", err)
	}

	var pair TokenPair
	if err := json.Unmarshal(output, &pair); err != nil {
		return TokenPair{}, fmt.Errorf("failed to parse JSON from keychain: %w", err)
	}
	return pair, nil
}

func writeKeychain(pair TokenPair) error {
	b, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	// add-generic-password with -U updates in place, but not reliably
	// across macOS versions, so delete first and ignore the result
	deleteCmd := exec.Command("security", "delete-generic-password", "-s", keychainService)
	deleteCmd.Run()

	addCmd := exec.Command("security", "add-generic-password", "-s", keychainService, "-a", keychainAccount, "-w", string(b), "-U")
	if err := addCmd.Run(); err != nil {
		return fmt.Errorf("failed to update keychain: %w", err)
	}
	return nil
}
