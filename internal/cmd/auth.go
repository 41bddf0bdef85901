package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/salmonumbrella/tablecheck/internal/secrets"
	"github.com/salmonumbrella/tablecheck/internal/source"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage tokens for protected document hosts",
	Long: `Manage bearer tokens sent when fetching documents from URLs.

Tokens are stored per host in your system keychain (macOS Keychain,
Windows Credential Manager, Secret Service, or an encrypted file on Linux).
A token given with --token or TABLECHECK_TOKEN takes precedence.

Examples:
  tablecheck auth set reports.example.com
  echo "$TOKEN" | tablecheck auth set https://reports.example.com/q3
  tablecheck auth list
  tablecheck auth remove reports.example.com`,
}

var authSetCmd = &cobra.Command{
	Use:   "set <host|url> [token]",
	Short: "Store the token for a host",
	Long: `Store the token for a host.

The token is read from the argument, from --token-file (- for stdin), or
from stdin when omitted (prompted without echo on a terminal).`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAuthSet,
}

var authListCmd = &cobra.Command{
	Use:   "list",
	Short: "List hosts with a stored token",
	Args:  cobra.NoArgs,
	RunE:  runAuthList,
}

var authRemoveCmd = &cobra.Command{
	Use:   "remove <host|url>",
	Short: "Remove the stored token for a host",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthRemove,
}

var authTokenFile string

func init() {
	authSetCmd.Flags().StringVar(&authTokenFile, "token-file", "", "Read the token from a file (- for stdin)")

	authCmd.AddCommand(authSetCmd)
	authCmd.AddCommand(authListCmd)
	authCmd.AddCommand(authRemoveCmd)

	rootCmd.AddCommand(authCmd)
}

// normalizeHost accepts a bare host, host:port or a URL and returns the
// lowercased host name without the port, the key fetches look tokens up by.
func normalizeHost(arg string) (string, error) {
	ref := strings.TrimSpace(arg)
	if !source.IsRemote(ref) {
		if strings.ContainsAny(ref, "/ ") {
			return "", fmt.Errorf("invalid host %q", arg)
		}
		ref = "//" + ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid host %q: %w", arg, err)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" || strings.ContainsAny(host, "/ ") {
		return "", fmt.Errorf("invalid host %q", arg)
	}
	return host, nil
}

func openStore() (secrets.Store, error) {
	store, err := openSecretsStore(currentConfig().KeyringBackend)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	return store, nil
}

func runAuthSet(cmd *cobra.Command, args []string) error {
	host, err := normalizeHost(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var token string
	switch {
	case len(args) == 2:
		token = strings.TrimSpace(args[1])
	case strings.TrimSpace(authTokenFile) != "":
		token, err = readInputSource(authTokenFile, stdinFromContext(ctx))
		if err != nil {
			return err
		}
	default:
		token, err = readSecret("Token for "+host+": ", stdinFromContext(ctx), stderrFromContext(ctx))
		if err != nil {
			return err
		}
	}
	if token == "" {
		return errors.New("token must not be empty")
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	if err := store.SetToken(host, token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	return printScalar(ctx, map[string]string{
		"status": "stored",
		"host":   host,
	}, "Stored token for "+host)
}

func runAuthList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	hosts, err := store.Hosts()
	if err != nil {
		return fmt.Errorf("failed to list tokens: %w", err)
	}
	return printResult(cmd.Context(), hosts)
}

func runAuthRemove(cmd *cobra.Command, args []string) error {
	host, err := normalizeHost(args[0])
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	if err := store.DeleteToken(host); err != nil {
		if errors.Is(err, secrets.ErrNotFound) {
			return fmt.Errorf("no token stored for %s: %w", host, err)
		}
		return fmt.Errorf("failed to remove token: %w", err)
	}

	return printScalar(cmd.Context(), map[string]string{
		"status": "removed",
		"host":   host,
	}, "Removed token for "+host)
}
