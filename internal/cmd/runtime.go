package cmd

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/salmonumbrella/tablecheck/internal/config"
	"github.com/salmonumbrella/tablecheck/internal/logging"
	"github.com/salmonumbrella/tablecheck/internal/source"
	"github.com/spf13/cobra"
)

const tokenEnvVar = "TABLECHECK_TOKEN"

// loadConfigFromFlag loads config from --config if provided, otherwise from default path.
func loadConfigFromFlag() (*config.Config, error) {
	if strings.TrimSpace(configFile) != "" {
		return config.Load(configFile)
	}
	return config.ReadConfig()
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}
	if cmd.Flags().Changed(name) {
		return true
	}
	return cmd.InheritedFlags().Changed(name)
}

func currentConfig() *config.Config {
	if activeConfig != nil {
		return activeConfig
	}
	return &config.Config{}
}

// setupLogging replaces the package logger. Level precedence:
// --debug > config log_level > warn.
func setupLogging(cmd *cobra.Command, cfg *config.Config) error {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	} else if cfg != nil && cfg.LogLevel != "" {
		parsed, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		level = parsed
	}

	seqURL := ""
	if cfg != nil {
		seqURL = cfg.SeqURL
	}

	loggerCleanup()
	logger, loggerCleanup = setupLoggerFunc(logging.Options{
		Level:  level,
		Writer: cmd.ErrOrStderr(),
		SeqURL: seqURL,
	})
	return nil
}

// resolveToken returns the bearer token for host with precedence:
// --token > TABLECHECK_TOKEN > keyring entry for the host.
func resolveToken(cmd *cobra.Command, cfg *config.Config) source.TokenFunc {
	return func(host string) string {
		if flagChanged(cmd, "token") {
			if tok := strings.TrimSpace(apiToken); tok != "" {
				return tok
			}
		}
		if tok := strings.TrimSpace(envGet(tokenEnvVar)); tok != "" {
			return tok
		}

		store, err := openSecretsStore(cfg.KeyringBackend)
		if err != nil {
			logger.Debug("keyring unavailable", "host", host, "error", err)
			return ""
		}
		tok, err := store.GetToken(host)
		if err != nil {
			logger.Debug("no stored token", "host", host, "error", err)
			return ""
		}
		return tok
	}
}

// loaderOptions builds source options with precedence flag > config > default.
func loaderOptions(cmd *cobra.Command, cfg *config.Config) ([]source.Option, error) {
	opts := []source.Option{
		source.WithLogger(logger),
		source.WithStdin(stdinFromContext(cmd.Context())),
		source.WithToken(resolveToken(cmd, cfg)),
	}

	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	if flagChanged(cmd, "timeout") {
		timeout, err = time.ParseDuration(strings.TrimSpace(fetchTimeout))
		if err != nil {
			return nil, fmt.Errorf("invalid --timeout %q: %w", fetchTimeout, err)
		}
	}
	if timeout > 0 {
		opts = append(opts, source.WithTimeout(timeout))
	}
	if cfg.Retries != nil {
		opts = append(opts, source.WithRetries(*cfg.Retries))
	}
	if ua := strings.TrimSpace(cfg.UserAgent); ua != "" {
		opts = append(opts, source.WithUserAgent(ua))
	}
	return opts, nil
}

func formatConfigLoadError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("load config: %w", err)
}
