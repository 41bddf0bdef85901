package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/salmonumbrella/tablecheck/internal/config"
	"github.com/salmonumbrella/tablecheck/internal/output"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	// Version is set at build time
	version = "dev"
	// Commit is set at build time
	commit = "none"
	// Date is set at build time
	date = "unknown"
)

// SetVersionInfo sets the version information from build flags
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = v
	rootCmd.SetVersionTemplate(versionTemplate())
}

func versionTemplate() string {
	return fmt.Sprintf("tablecheck version %s (commit: %s, built: %s)\n", version, commit, date)
}

// Global flags
var (
	outputFmt   string
	outputType  output.Format
	debug       bool
	configFile  string
	queryExpr   string
	errorFmt    string
	resultLimit int
	resultSort  string
	resultDesc  bool
)

// Table flags
var (
	sourceRef     string
	tableSelector string
	tableXPath    string
	sanitizeHTML  bool
	apiToken      string
	fetchTimeout  string
)

var (
	// activeConfig is the config loaded for the running command.
	activeConfig *config.Config
	// logger is replaced in PersistentPreRunE once flags and config are known.
	logger        = slog.New(slog.DiscardHandler)
	loggerCleanup = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "tablecheck",
	Short: "Query and verify HTML tables from the command line",
	Long: `tablecheck reads an HTML table from a file, stdin or URL and answers
questions about it: header labels, row and column counts, which row holds a
value, and what a given cell contains.

Columns are addressed by header label and rows by the value of one of their
cells, so checks keep working when columns or rows are reordered.

Environment Variables:
  TABLECHECK_TOKEN             Bearer token sent when fetching URLs
  TABLECHECK_KEYRING_BACKEND   Keyring backend (auto|keychain|file)
  TABLECHECK_KEYRING_PASSWORD  Password for the file keyring backend`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceErrors = true

		skipConfigLoad := cmd.Name() == "config" || (cmd.Parent() != nil && cmd.Parent().Name() == "config")
		cfg := &config.Config{}
		if !skipConfigLoad {
			loadedCfg, err := loadConfigFromFlag()
			if err != nil {
				return formatConfigLoadError(err)
			}
			cfg = loadedCfg
		}
		activeConfig = cfg

		// Output format selection: --output > config > non-TTY json > default
		formatStr := outputFmt
		if !flagChanged(cmd, "output") && strings.TrimSpace(cfg.OutputFormat) != "" {
			formatStr = strings.TrimSpace(cfg.OutputFormat)
		} else if !flagChanged(cmd, "output") && !isTerminal(cmd.OutOrStdout()) {
			formatStr = "json"
		}
		format, err := output.ParseFormat(formatStr)
		if err != nil {
			return err
		}
		outputType = format
		outputFmt = string(format)

		if err := setupLogging(cmd, cfg); err != nil {
			return err
		}

		ctx := cmd.Context()
		ctx = withIO(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		ctx = output.WithFormat(ctx, outputType)
		ctx = output.WithQuery(ctx, queryExpr)
		ctx = output.WithLimit(ctx, resultLimit)
		ctx = output.WithSort(ctx, resultSort, resultDesc)
		ctx = WithErrorFormat(ctx, errorFmt)
		cmd.SetContext(ctx)

		if err := validateErrorFormat(errorFmt); err != nil {
			return err
		}
		// Flags and args are valid from here on; later failures are not usage errors.
		cmd.SilenceUsage = true
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	defer func() { loggerCleanup() }()

	executed, err := rootCmd.ExecuteC()
	if err != nil {
		ctx := rootCmd.Context()
		if executed != nil && executed.Context() != nil {
			ctx = executed.Context()
		}
		printCommandError(ctx, err)
		return err
	}
	return nil
}

func init() {
	rootCmd.SetVersionTemplate(versionTemplate())

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format (text|json|ndjson|table|yaml)")
	rootCmd.PersistentFlags().StringVar(&queryExpr, "query", "", "jq expression to filter JSON output")
	rootCmd.PersistentFlags().StringVar(&errorFmt, "error-format", "auto", "Error output format (auto|text|json|yaml)")
	rootCmd.PersistentFlags().IntVar(&resultLimit, "result-limit", 0, "Limit number of results in output (0 = unlimited)")
	rootCmd.PersistentFlags().StringVar(&resultSort, "result-sort-by", "", "Sort output results by column or field")
	rootCmd.PersistentFlags().BoolVar(&resultDesc, "result-desc", false, "Sort output results in descending order")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ~/.config/tablecheck/config.yaml)")
}

// addTableFlags registers the flags shared by every command that reads a table.
func addTableFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&sourceRef, "source", "s", "", "HTML document: file path, http(s) URL, or - for stdin")
	cmd.Flags().StringVarP(&tableSelector, "table", "t", "", "CSS selector of the table (default: config table_selector or \"table\")")
	cmd.Flags().StringVar(&tableXPath, "xpath", "", "XPath expression of the table (overrides --table)")
	cmd.Flags().BoolVar(&sanitizeHTML, "sanitize", false, "Sanitize the document before reading it")
	cmd.Flags().StringVar(&apiToken, "token", "", "Bearer token for URL sources (env: TABLECHECK_TOKEN)")
	cmd.Flags().StringVar(&fetchTimeout, "timeout", "", "Per-attempt timeout for URL sources (e.g. 10s)")
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
