// Package keychain stores the service API key in the OS credential store.
package keychain

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "salamoonder"

// KeyAPIKey is the item key the API key is stored under.
const KeyAPIKey = "api_key"

// ErrNotFound is returned by Load when no API key has been saved.
var ErrNotFound = errors.New("keychain: no API key stored")

// Store is a thread-safe wrapper around a keyring.
type Store struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// Open opens the OS keyring using native backends, with the pass store as
// fallback where available.
func Open() (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: ServiceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.WinCredBackend,
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.PassBackend,
		},
		PassPrefix:    ServiceName,
		WinCredPrefix: ServiceName,
	})
	if err != nil {
		return nil, fmt.Errorf("keychain: open: %w", err)
	}
	return New(ring), nil
}

// New wraps an already opened keyring.
func New(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// Save stores apiKey, replacing any previous value.
func (s *Store) Save(apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return errors.New("keychain: refusing to store empty API key")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ring.Set(keyring.Item{Key: KeyAPIKey, Data: []byte(apiKey), Label: "salamoonder API key"}); err != nil {
		return fmt.Errorf("keychain: save: %w", err)
	}
	return nil
}

// Load returns the stored API key or ErrNotFound.
func (s *Store) Load() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, err := s.ring.Get(KeyAPIKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("keychain: load: %w", err)
	}
	if len(it.Data) == 0 {
		return "", ErrNotFound
	}
	return string(it.Data), nil
}

// Clear removes the stored API key. Clearing an empty store is not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ring.Remove(KeyAPIKey); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("keychain: clear: %w", err)
	}
	return nil
}
