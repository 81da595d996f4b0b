package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mossholt/autotab-cli/internal/feature"
)

var engOutPath string

var engineerCmd = &cobra.Command{
	Use:   "engineer <file>",
	Short: "Derive date, bin, and ratio features from a dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(args[0])
		if err != nil {
			return err
		}
		eng := feature.New()
		out := eng.Engineer(ds)
		for _, op := range eng.Log() {
			fmt.Println("  •", op)
		}
		added := out.NumCols() - ds.NumCols()
		fmt.Printf("Derived %d new columns (%d total)\n", added, out.NumCols())
		return writeOutput(out, engOutPath)
	},
}

func init() {
	engineerCmd.Flags().StringVar(&flagTable, "table", "", "table name (SQLite inputs)")
	engineerCmd.Flags().IntVar(&flagSheet, "sheet", 0, "sheet index (XLSX inputs)")
	engineerCmd.Flags().StringVarP(&engOutPath, "output", "o", "", "write expanded data to a CSV file")
	rootCmd.AddCommand(engineerCmd)
}
