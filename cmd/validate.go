package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mossholt/autotab-cli/internal/validate"
)

var valReportPath string

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Run data-quality checks and print a validation report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(args[0])
		if err != nil {
			return err
		}
		rep := validate.New(validate.WithIQRMultiplier(iqrMultiplier())).Validate(ds)
		text := rep.Render()
		if valReportPath != "" {
			if err := os.WriteFile(valReportPath, []byte(text+"\n"), 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Printf("Report written to %s\n", valReportPath)
		} else {
			fmt.Println(text)
		}
		if len(rep.Issues) > 0 {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %d data issues found\n", len(rep.Issues))
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&flagTable, "table", "", "table name (SQLite inputs)")
	validateCmd.Flags().IntVar(&flagSheet, "sheet", 0, "sheet index (XLSX inputs)")
	validateCmd.Flags().StringVarP(&valReportPath, "output", "o", "", "write the report to a file instead of stdout")
	rootCmd.AddCommand(validateCmd)
}
