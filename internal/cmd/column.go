package cmd

import (
	"strconv"

	"github.com/salmonumbrella/tablecheck/internal/tableview"
	"github.com/spf13/cobra"
)

var columnCmd = &cobra.Command{
	Use:   "column",
	Short: "Query a column by its header label",
	Long: `Query a column by its header label.

Labels are compared exactly against the trimmed header text; a label that
matches no header or several headers is an error.

Examples:
  tablecheck column index Country -s page.html
  tablecheck column values Country -s page.html --result-sort-by value
  tablecheck column contains Country Mexico -s page.html`,
}

var columnIndexCmd = &cobra.Command{
	Use:   "index <label>",
	Short: "Print the 1-based position of a column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := loadTable(cmd)
		if err != nil {
			return err
		}
		pos, err := view.ColumnIndex(args[0])
		if err != nil {
			return err
		}
		return printScalar(cmd.Context(), map[string]interface{}{
			"column": args[0],
			"index":  pos,
		}, strconv.Itoa(pos))
	},
}

var columnValuesCmd = &cobra.Command{
	Use:   "values <label>",
	Short: "Print every body value of a column",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := loadTable(cmd)
		if err != nil {
			return err
		}
		values, err := view.ColumnValues(args[0])
		if err != nil {
			return err
		}
		return printResult(cmd.Context(), values)
	},
}

var columnContainsCmd = &cobra.Command{
	Use:   "contains <label> <value>",
	Short: "Report whether a column holds a value",
	Long: `Report whether any body cell of the column has exactly the given text.

With --assert a missing value is returned as a not-found error, so the exit
status can gate scripts.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := loadTable(cmd)
		if err != nil {
			return err
		}
		found, err := view.ColumnContains(args[0], args[1])
		if err != nil {
			return err
		}
		if !found && assertContains {
			return tableview.RowNotFoundError{Column: args[0], Value: args[1]}
		}
		return printScalar(cmd.Context(), map[string]interface{}{
			"column":   args[0],
			"value":    args[1],
			"contains": found,
		}, strconv.FormatBool(found))
	},
}

var assertContains bool

func init() {
	columnContainsCmd.Flags().BoolVar(&assertContains, "assert", false, "Fail when the value is absent")

	for _, c := range []*cobra.Command{columnIndexCmd, columnValuesCmd, columnContainsCmd} {
		addTableFlags(c)
		columnCmd.AddCommand(c)
	}
	rootCmd.AddCommand(columnCmd)
}
