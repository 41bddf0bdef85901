package cmd

import (
	"fmt"
	"strconv"

	"github.com/salmonumbrella/tablecheck/internal/tableview"
	"github.com/spf13/cobra"
)

var cellCmd = &cobra.Command{
	Use:   "cell",
	Short: "Print the text of a single cell",
	Long: `Print the text of a single cell.

Examples:
  tablecheck cell find Company "Island Trading" -s page.html
  tablecheck cell at Contact 8 -s page.html
  tablecheck cell in-row Country Canada Contact -s page.html`,
}

var cellFindCmd = &cobra.Command{
	Use:   "find <label> <value>",
	Short: "Print the cell in the column whose text equals value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := loadTable(cmd)
		if err != nil {
			return err
		}
		cell, err := view.FindCell(args[0], args[1])
		if err != nil {
			return err
		}
		return printCell(cmd, args[0], cell)
	},
}

var cellAtCmd = &cobra.Command{
	Use:   "at <label> <row>",
	Short: "Print the cell in the column at a 1-based body row",
	Long: `Print the cell in the column at a 1-based body row.

Unlike the other queries, the row is looked up in the current document
rather than in the rows read when the table was loaded.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid row %q (expected a positive integer)", args[1])
		}
		view, err := loadTable(cmd)
		if err != nil {
			return err
		}
		cell, err := view.CellAt(args[0], n)
		if err != nil {
			return err
		}
		return printCell(cmd, args[0], cell)
	},
}

var cellInRowCmd = &cobra.Command{
	Use:   "in-row <row-label> <row-value> <label>",
	Short: "Print the cell in a column of the row located by another column",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := loadTable(cmd)
		if err != nil {
			return err
		}
		row, err := view.FindRow(args[0], args[1])
		if err != nil {
			return err
		}
		cell, err := view.CellInRow(row, args[2])
		if err != nil {
			return err
		}
		return printCell(cmd, args[2], cell)
	},
}

func printCell(cmd *cobra.Command, label string, cell tableview.Element) error {
	text := cell.Text()
	return printScalar(cmd.Context(), map[string]interface{}{
		"column": label,
		"text":   text,
	}, text)
}

func init() {
	for _, c := range []*cobra.Command{cellFindCmd, cellAtCmd, cellInRowCmd} {
		addTableFlags(c)
		cellCmd.AddCommand(c)
	}
	rootCmd.AddCommand(cellCmd)
}
