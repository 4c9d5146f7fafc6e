package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

type fsAuth struct {
	Tokens TokenPair `json:"tokens"`
}

// FSStore persists the token pair as JSON at the given path. The parent
// directory is created on first write.
type FSStore struct {
	Path string
	mu   sync.Mutex
}

// NewFSStore creates a file-backed token store at path.
func NewFSStore(path string) *FSStore {
	return &FSStore{Path: path}
}

func (f *FSStore) Get() (TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read()
}

func (f *FSStore) Set(pair TokenPair) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.write(pair)
}

func (f *FSStore) ClearAccessToken() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	pair, err := f.read()
	if err != nil {
		return err
	}
	pair.AccessToken = ""
	return f.write(pair)
}

func (f *FSStore) read() (TokenPair, error) {
	b, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		// A missing file is an empty store, not an error
		return TokenPair{}, nil
	}
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to read credentials file: %w", err)
	}
	var a fsAuth
	if err := json.Unmarshal(b, &a); err != nil {
		return TokenPair{}, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	return a.Tokens, nil
}

func (f *FSStore) write(pair TokenPair) error {
	if err := EnsureParentDir(f.Path); err != nil {
		return err
	}
	b, err := json.MarshalIndent(fsAuth{Tokens: pair}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	if err := os.WriteFile(f.Path, b, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	return nil
}
