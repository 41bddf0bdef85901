package cmd

import (
	"github.com/salmonumbrella/tablecheck/internal/tableview"
	"github.com/spf13/cobra"
)

var rowCmd = &cobra.Command{
	Use:   "row",
	Short: "Locate a row by a cell value",
	Long: `Locate the first body row holding a value and print it keyed by
header label.

Examples:
  tablecheck row find Country Canada -s page.html
  tablecheck row any "Island Trading" -s page.html -o json`,
}

var rowFindCmd = &cobra.Command{
	Use:   "find <label> <value>",
	Short: "Print the first row whose cell in the column equals value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := loadTable(cmd)
		if err != nil {
			return err
		}
		row, err := view.FindRow(args[0], args[1])
		if err != nil {
			return err
		}
		return printRow(cmd, view, row)
	},
}

var rowAnyCmd = &cobra.Command{
	Use:   "any <value>",
	Short: "Print the first row holding value in any column",
	Long: `Print the first row holding value in any column.

Columns are searched left to right; within a column the topmost row wins.
A row matching in an earlier column beats one matching higher up in a later
column.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := loadTable(cmd)
		if err != nil {
			return err
		}
		row, err := view.FindFirstRow(args[0])
		if err != nil {
			return err
		}
		return printRow(cmd, view, row)
	},
}

func printRow(cmd *cobra.Command, view *tableview.TableView, row tableview.Element) error {
	values, err := view.RowValues(row)
	if err != nil {
		return err
	}
	return printResult(cmd.Context(), values)
}

func init() {
	for _, c := range []*cobra.Command{rowFindCmd, rowAnyCmd} {
		addTableFlags(c)
		rowCmd.AddCommand(c)
	}
	rootCmd.AddCommand(rowCmd)
}
