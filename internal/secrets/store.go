// Package secrets stores per-host bearer tokens in the OS keyring.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/99designs/keyring"

	"github.com/salmonumbrella/tablecheck/internal/config"
)

const (
	serviceName    = config.AppName
	tokenKeyPrefix = "token:"

	envBackend  = "TABLECHECK_KEYRING_BACKEND"
	envPassword = "TABLECHECK_KEYRING_PASSWORD"

	keyringOpenTimeout = 5 * time.Second
)

// ErrNotFound is returned when no token is stored for a host.
var ErrNotFound = errors.New("no token stored")

var errKeyringTimeout = errors.New("timed out opening keyring")

// keyringOpenFunc is swapped out in tests.
var keyringOpenFunc = keyring.Open

// Store holds bearer tokens keyed by host name.
type Store interface {
	SetToken(host, token string) error
	GetToken(host string) (string, error)
	DeleteToken(host string) error
	Hosts() ([]string, error)
}

// KeyringBackendInfo records which backend was requested and where the
// setting came from.
type KeyringBackendInfo struct {
	Value  string // auto, keychain, file
	Source string // env, config, default
}

// KeyringStore is a Store on top of a keyring.Keyring.
type KeyringStore struct {
	ring keyring.Keyring
}

// NewKeyringStore wraps an already opened keyring.
func NewKeyringStore(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring}
}

// Open opens the keyring. configBackend is the config file's
// keyring_backend value; the environment takes precedence over it.
func Open(configBackend string) (Store, error) {
	info := resolveBackend(configBackend)

	cfg := keyring.Config{
		ServiceName:              serviceName,
		KeychainTrustApplication: true,
	}

	dbusAddr := os.Getenv("DBUS_SESSION_BUS_ADDRESS")
	if info.Value == "file" || shouldForceFileBackend(runtime.GOOS, info, dbusAddr) {
		dir, err := config.EnsureKeyringDir()
		if err != nil {
			return nil, err
		}
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
		cfg.FileDir = dir
		cfg.FilePasswordFunc = filePassword
	} else if info.Value == "keychain" {
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
		}
	}

	var (
		ring keyring.Keyring
		err  error
	)
	if shouldUseKeyringTimeout(runtime.GOOS, info, dbusAddr) {
		ring, err = openKeyringWithTimeout(cfg, keyringOpenTimeout)
	} else {
		ring, err = keyringOpenFunc(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewKeyringStore(ring), nil
}

func resolveBackend(configBackend string) KeyringBackendInfo {
	if v := strings.ToLower(strings.TrimSpace(os.Getenv(envBackend))); v != "" {
		return KeyringBackendInfo{Value: v, Source: "env"}
	}
	if v := strings.ToLower(strings.TrimSpace(configBackend)); v != "" {
		return KeyringBackendInfo{Value: v, Source: "config"}
	}
	return KeyringBackendInfo{Value: "auto", Source: "default"}
}

func filePassword(prompt string) (string, error) {
	if pw := os.Getenv(envPassword); pw != "" {
		return pw, nil
	}
	return keyring.TerminalPrompt(prompt)
}

// shouldForceFileBackend reports whether "auto" must fall back to the file
// backend: Linux without a D-Bus session has no secret service to talk to.
func shouldForceFileBackend(goos string, info KeyringBackendInfo, dbusAddr string) bool {
	return goos == "linux" && info.Value == "auto" && dbusAddr == ""
}

// shouldUseKeyringTimeout reports whether opening may hang on a D-Bus secret
// service that never answers.
func shouldUseKeyringTimeout(goos string, info KeyringBackendInfo, dbusAddr string) bool {
	return goos == "linux" && info.Value == "auto" && dbusAddr != ""
}

func openKeyringWithTimeout(cfg keyring.Config, timeout time.Duration) (keyring.Keyring, error) {
	type result struct {
		ring keyring.Keyring
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		ring, err := keyringOpenFunc(cfg)
		ch <- result{ring: ring, err: err}
	}()

	select {
	case res := <-ch:
		return res.ring, res.err
	case <-time.After(timeout):
		return nil, fmt.Errorf("%w after %s; set %s=file to use the encrypted file backend",
			errKeyringTimeout, timeout, envBackend)
	}
}

func tokenKey(host string) string {
	return tokenKeyPrefix + strings.ToLower(strings.TrimSpace(host))
}

// SetToken stores token for host.
func (s *KeyringStore) SetToken(host, token string) error {
	if strings.TrimSpace(host) == "" {
		return fmt.Errorf("host is required")
	}
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("token is required")
	}
	return s.ring.Set(keyring.Item{
		Key:   tokenKey(host),
		Data:  []byte(token),
		Label: serviceName + " token for " + host,
	})
}

// GetToken returns the token for host, or ErrNotFound.
func (s *KeyringStore) GetToken(host string) (string, error) {
	item, err := s.ring.Get(tokenKey(host))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return string(item.Data), nil
}

// DeleteToken removes the token for host, or returns ErrNotFound.
func (s *KeyringStore) DeleteToken(host string) error {
	key := tokenKey(host)
	if _, err := s.ring.Get(key); errors.Is(err, keyring.ErrKeyNotFound) {
		return ErrNotFound
	}
	return s.ring.Remove(key)
}

// Hosts lists hosts with a stored token, sorted.
func (s *KeyringStore) Hosts() ([]string, error) {
	keys, err := s.ring.Keys()
	if err != nil {
		return nil, err
	}
	hosts := []string{}
	for _, k := range keys {
		if strings.HasPrefix(k, tokenKeyPrefix) {
			hosts = append(hosts, strings.TrimPrefix(k, tokenKeyPrefix))
		}
	}
	sort.Strings(hosts)
	return hosts, nil
}
