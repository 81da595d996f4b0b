package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mossholt/autotab-cli/internal/schema"
)

var profileCmd = &cobra.Command{
	Use:   "profile <file>",
	Short: "Profile a dataset's schema and per-column statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(args[0])
		if err != nil {
			return err
		}
		fmt.Print(schema.Render(ds))
		return nil
	},
}

func init() {
	profileCmd.Flags().StringVar(&flagTable, "table", "", "table name (SQLite inputs)")
	profileCmd.Flags().IntVar(&flagSheet, "sheet", 0, "sheet index (XLSX inputs)")
	rootCmd.AddCommand(profileCmd)
}
