package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppName is the application name used for keyring and config
const AppName = "tablecheck"

// DefaultTableSelector picks the first table of a document.
const DefaultTableSelector = "table"

// Config holds CLI configuration
type Config struct {
	TableSelector  string `yaml:"table_selector,omitempty"`
	OutputFormat   string `yaml:"output_format,omitempty"`   // text, json, ndjson, yaml, table
	KeyringBackend string `yaml:"keyring_backend,omitempty"` // auto, keychain, file
	Timeout        string `yaml:"timeout,omitempty"`         // Go duration, e.g. 30s
	Retries        *int   `yaml:"retries,omitempty"`
	UserAgent      string `yaml:"user_agent,omitempty"`
	Sanitize       bool   `yaml:"sanitize,omitempty"`
	SeqURL         string `yaml:"seq_url,omitempty"`
	LogLevel       string `yaml:"log_level,omitempty"` // debug, info, warn, error
}

// Keys lists the supported configuration keys.
func Keys() []string {
	return []string{
		"table_selector",
		"output_format",
		"keyring_backend",
		"timeout",
		"retries",
		"user_agent",
		"sanitize",
		"seq_url",
		"log_level",
	}
}

// Set assigns a configuration key from its string form.
func (c *Config) Set(key, value string) error {
	switch key {
	case "table_selector":
		c.TableSelector = value
	case "output_format":
		switch strings.ToLower(value) {
		case "text", "json", "ndjson", "table", "yaml":
			c.OutputFormat = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid output_format %q (expected text|json|ndjson|table|yaml)", value)
		}
	case "keyring_backend":
		switch strings.ToLower(value) {
		case "auto", "keychain", "file":
			c.KeyringBackend = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid keyring_backend %q (expected auto|keychain|file)", value)
		}
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid timeout %q: %w", value, err)
		}
		c.Timeout = value
	case "retries":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid retries %q (expected a non-negative integer)", value)
		}
		c.Retries = &n
	case "user_agent":
		c.UserAgent = value
	case "sanitize":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid sanitize %q: %w", value, err)
		}
		c.Sanitize = b
	case "seq_url":
		c.SeqURL = value
	case "log_level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(value)
		default:
			return fmt.Errorf("invalid log_level %q (expected debug|info|warn|error)", value)
		}
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// Unset clears a configuration key.
func (c *Config) Unset(key string) error {
	switch key {
	case "table_selector":
		c.TableSelector = ""
	case "output_format":
		c.OutputFormat = ""
	case "keyring_backend":
		c.KeyringBackend = ""
	case "timeout":
		c.Timeout = ""
	case "retries":
		c.Retries = nil
	case "user_agent":
		c.UserAgent = ""
	case "sanitize":
		c.Sanitize = false
	case "seq_url":
		c.SeqURL = ""
	case "log_level":
		c.LogLevel = ""
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// Selector returns the configured table selector or the default.
func (c *Config) Selector() string {
	if s := strings.TrimSpace(c.TableSelector); s != "" {
		return s
	}
	return DefaultTableSelector
}

// TimeoutDuration returns the parsed timeout, or 0 when unset.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if strings.TrimSpace(c.Timeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	return d, nil
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppName), nil
}

// DefaultConfigPath returns the default config file path
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// EnsureKeyringDir ensures the keyring directory exists and returns its path
func EnsureKeyringDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	keyringDir := filepath.Join(dir, "keyring")
	if err := os.MkdirAll(keyringDir, 0o700); err != nil {
		return "", fmt.Errorf("creating keyring directory: %w", err)
	}
	return keyringDir, nil
}

// ReadConfig reads the config file from the default location
func ReadConfig() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Load loads config from the given path. A missing file is an empty config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if _, err := cfg.TimeoutDuration(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save saves config to the given path
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
