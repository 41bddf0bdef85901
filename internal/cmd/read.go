package cmd

import "github.com/spf13/cobra"

var readWhere string

var readCmd = &cobra.Command{
	Use:   "read <label> <known-value>",
	Short: "Read a column's value in the row holding a known value",
	Long: `Read the text in column <label> of the row holding <known-value>.

Without --where the row is the first one holding the value in any column.
With --where the value must be in the named column.

Examples:
  tablecheck read Contact "Island Trading" -s page.html
  tablecheck read Company Mexico --where Country -s page.html`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := loadTable(cmd)
		if err != nil {
			return err
		}

		var text string
		if readWhere != "" {
			text, err = view.ReadValueWhere(args[0], args[1], readWhere)
		} else {
			text, err = view.ReadValueInRowContaining(args[0], args[1])
		}
		if err != nil {
			return err
		}
		return printScalar(cmd.Context(), map[string]interface{}{
			"column": args[0],
			"value":  args[1],
			"text":   text,
		}, text)
	},
}

func init() {
	readCmd.Flags().StringVar(&readWhere, "where", "", "Column that must hold the known value")
	addTableFlags(readCmd)
	rootCmd.AddCommand(readCmd)
}
