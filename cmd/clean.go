package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mossholt/autotab-cli/internal/clean"
)

var (
	cleanNoDedup   bool
	cleanNoMissing bool
	cleanNoText    bool
	cleanNoDtypes  bool
	cleanOutPath   string
)

var cleanCmd = &cobra.Command{
	Use:   "clean <file>",
	Short: "Auto-clean a dataset: duplicates, missing values, text, types",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(args[0])
		if err != nil {
			return err
		}
		cfg := clean.Config{
			RemoveDuplicates: !cleanNoDedup,
			HandleMissing:    !cleanNoMissing,
			NormalizeText:    !cleanNoText,
			FixTypes:         !cleanNoDtypes,
		}
		cleaner := clean.New(diagLogger())
		out := cleaner.Clean(ds, cfg)
		for _, op := range cleaner.Log() {
			fmt.Println("  •", op)
		}
		if len(cleaner.Log()) == 0 {
			fmt.Println("No cleaning actions were necessary")
		}
		fmt.Printf("Cleaned: %d rows, %d columns\n", out.NumRows(), out.NumCols())
		return writeOutput(out, cleanOutPath)
	},
}

func init() {
	cleanCmd.Flags().StringVar(&flagTable, "table", "", "table name (SQLite inputs)")
	cleanCmd.Flags().IntVar(&flagSheet, "sheet", 0, "sheet index (XLSX inputs)")
	cleanCmd.Flags().BoolVar(&cleanNoDedup, "no-dedup", false, "skip duplicate-row removal")
	cleanCmd.Flags().BoolVar(&cleanNoMissing, "no-missing", false, "skip missing-value imputation")
	cleanCmd.Flags().BoolVar(&cleanNoText, "no-text", false, "skip text normalization")
	cleanCmd.Flags().BoolVar(&cleanNoDtypes, "no-dtypes", false, "skip type coercion")
	cleanCmd.Flags().StringVarP(&cleanOutPath, "output", "o", "", "write cleaned data to a CSV file")
	rootCmd.AddCommand(cleanCmd)
}
