package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/salmonumbrella/tablecheck/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration stored in ~/.config/tablecheck/config.yaml.

You can view, set, or unset keys such as table_selector, output_format,
timeout, retries, keyring_backend, sanitize, seq_url and log_level.
Command-line flags take precedence over config values.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Unset a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List supported configuration keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		keys := config.Keys()
		sort.Strings(keys)
		return printResult(cmd.Context(), keys)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		return printScalar(cmd.Context(), map[string]string{"path": path}, path)
	},
}

func configPath() (string, error) {
	if strings.TrimSpace(configFile) != "" {
		return configFile, nil
	}
	return config.DefaultConfigPath()
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configKeysCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigFromFlag()
	if err != nil {
		return formatConfigLoadError(err)
	}
	return printResult(cmd.Context(), configOutput(cfg))
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := strings.ToLower(strings.TrimSpace(args[0]))
	value := strings.TrimSpace(args[1])

	cfg, err := loadConfigFromFlag()
	if err != nil {
		return formatConfigLoadError(err)
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}

	path, err := configPath()
	if err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	return printScalar(cmd.Context(), map[string]string{
		"status": "updated",
		"key":    key,
		"value":  value,
	}, fmt.Sprintf("Updated %s", key))
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	key := strings.ToLower(strings.TrimSpace(args[0]))

	cfg, err := loadConfigFromFlag()
	if err != nil {
		return formatConfigLoadError(err)
	}
	if err := cfg.Unset(key); err != nil {
		return err
	}

	path, err := configPath()
	if err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	return printScalar(cmd.Context(), map[string]string{
		"status": "unset",
		"key":    key,
	}, fmt.Sprintf("Unset %s", key))
}

// configOutput lists every key; table_selector shows its default when unset.
func configOutput(cfg *config.Config) map[string]string {
	retries := ""
	if cfg.Retries != nil {
		retries = strconv.Itoa(*cfg.Retries)
	}
	return map[string]string{
		"table_selector":  cfg.Selector(),
		"output_format":   cfg.OutputFormat,
		"keyring_backend": cfg.KeyringBackend,
		"timeout":         cfg.Timeout,
		"retries":         retries,
		"user_agent":      cfg.UserAgent,
		"sanitize":        strconv.FormatBool(cfg.Sanitize),
		"seq_url":         cfg.SeqURL,
		"log_level":       cfg.LogLevel,
	}
}
