package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/salmonumbrella/tablecheck/internal/htmldoc"
	"github.com/salmonumbrella/tablecheck/internal/output"
	"github.com/salmonumbrella/tablecheck/internal/tableview"
	"github.com/spf13/cobra"
)

var errNoSource = errors.New("--source is required (file path, http(s) URL, or - for stdin)")

// loadTable opens --source, locates the table and builds its view.
func loadTable(cmd *cobra.Command) (*tableview.TableView, error) {
	ctx := cmd.Context()
	cfg := currentConfig()

	ref := strings.TrimSpace(sourceRef)
	if ref == "" {
		return nil, errNoSource
	}

	opts, err := loaderOptions(cmd, cfg)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	rc, err := newLoaderFunc(opts...).Open(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var parseOpts []htmldoc.Option
	if sanitizeHTML || cfg.Sanitize {
		parseOpts = append(parseOpts, htmldoc.WithSanitize())
	}
	doc, err := htmldoc.Parse(rc, parseOpts...)
	if err != nil {
		return nil, err
	}

	root, err := locateTable(doc, cmd)
	if err != nil {
		return nil, err
	}

	view, err := tableview.New(root)
	if err != nil {
		return nil, err
	}
	logger.Debug("table loaded",
		"source", ref,
		"columns", view.ColumnCount(),
		"rows", view.RowCount(),
		"elapsed", time.Since(start))
	return view, nil
}

func locateTable(doc *htmldoc.Document, cmd *cobra.Command) (*htmldoc.Element, error) {
	if expr := strings.TrimSpace(tableXPath); expr != "" {
		root, err := doc.SelectXPath(expr)
		if err != nil {
			return nil, fmt.Errorf("locating table %q: %w", expr, err)
		}
		return root, nil
	}

	selector := currentConfig().Selector()
	if flagChanged(cmd, "table") && strings.TrimSpace(tableSelector) != "" {
		selector = strings.TrimSpace(tableSelector)
	}
	root, err := doc.Select(selector)
	if err != nil {
		return nil, fmt.Errorf("locating table %q: %w", selector, err)
	}
	if n, err := doc.Count(selector); err == nil && n > 1 {
		logger.Debug("selector matches several tables, using the first", "selector", selector, "matches", n)
	}
	return root, nil
}

var headersCmd = &cobra.Command{
	Use:   "headers",
	Short: "List the table's header labels",
	Long: `List the table's header labels in column order, trimmed.

Examples:
  tablecheck headers -s page.html
  tablecheck headers -s https://example.com/report -t '#customers'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := loadTable(cmd)
		if err != nil {
			return err
		}
		return printResult(cmd.Context(), trimmedHeaders(view))
	},
}

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Show the number of columns and rows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := loadTable(cmd)
		if err != nil {
			return err
		}
		return printResult(cmd.Context(), map[string]interface{}{
			"columns": view.ColumnCount(),
			"rows":    view.RowCount(),
		})
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the whole table",
	Long: `Print every body row of the table under its header labels.

Cells missing from short rows are printed empty. Use --result-sort-by and
--result-limit to sort and cut the rows, or --query to filter the records.

Examples:
  tablecheck dump -s page.html -o table
  tablecheck dump -s page.html -o json --query '.[] | select(.Country == "Mexico")'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := loadTable(cmd)
		if err != nil {
			return err
		}
		rows, err := view.Records()
		if err != nil {
			return err
		}
		return printResult(cmd.Context(), output.Table{
			Headers: trimmedHeaders(view),
			Rows:    rows,
		})
	},
}

func trimmedHeaders(view *tableview.TableView) []string {
	headers := view.Headers()
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}
	return headers
}

func init() {
	for _, c := range []*cobra.Command{headersCmd, countCmd, dumpCmd} {
		addTableFlags(c)
		rootCmd.AddCommand(c)
	}
}
