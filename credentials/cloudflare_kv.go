//go:build js && wasm

package credentials

import (
	"encoding/json"
	"fmt"

	"github.com/syumai/workers/cloudflare/kv"
)

const (
	kvNamespaceBinding = "mal_proxy_kv"
	kvTokensKey        = "mal_oauth_tokens"
)

// CloudflareKVStore persists the token pair in Cloudflare KV. KV
// namespaces are accessed via bindings configured in wrangler.toml.
type CloudflareKVStore struct {
	kvStore *kv.Namespace
}

// NewCloudflareKVStore creates a new Cloudflare KV-based token store.
func NewCloudflareKVStore() (*CloudflareKVStore, error) {
	kvStore, err := kv.NewNamespace(kvNamespaceBinding)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize KV namespace: %w", err)
	}
	return &CloudflareKVStore{kvStore: kvStore}, nil
}

func (c *CloudflareKVStore) Get() (TokenPair, error) {
	pairJSON, err := c.kvStore.GetString(kvTokensKey, nil)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to get tokens from KV: %w", err)
	}
	if pairJSON == "" {
		// No tokens stored yet
		return TokenPair{}, nil
	}

	var pair TokenPair
	if err := json.Unmarshal([]byte(pairJSON), &pair); err != nil {
		return TokenPair{}, fmt.Errorf("failed to parse tokens JSON: %w", err)
	}
	return pair, nil
}

func (c *CloudflareKVStore) Set(pair TokenPair) error {
	pairJSON, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("failed to marshal tokens: %w", err)
	}
	if err := c.kvStore.PutString(kvTokensKey, string(pairJSON), nil); err != nil {
		return fmt.Errorf("failed to store tokens in KV: %w", err)
	}
	return nil
}

func (c *CloudflareKVStore) ClearAccessToken() error {
	pair, err := c.Get()
	if err != nil {
		return err
	}
	pair.AccessToken = ""
	return c.Set(pair)
}
