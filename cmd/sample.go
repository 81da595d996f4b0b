package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mossholt/autotab-cli/internal/sample"
)

var (
	sampleRows int
	sampleSeed uint64
	sampleOut  string
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Generate a demo sales dataset with deliberate quality issues",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds := sample.SalesData(sampleRows, sampleSeed)
		fmt.Printf("Generated %d rows, %d columns\n", ds.NumRows(), ds.NumCols())
		if sampleOut == "" {
			sampleOut = "sample_sales.csv"
		}
		return writeOutput(ds, sampleOut)
	},
}

func init() {
	sampleCmd.Flags().IntVar(&sampleRows, "rows", 1000, "number of base rows to generate")
	sampleCmd.Flags().Uint64Var(&sampleSeed, "seed", 42, "random seed")
	sampleCmd.Flags().StringVarP(&sampleOut, "output", "o", "", "output CSV path (default sample_sales.csv)")
	rootCmd.AddCommand(sampleCmd)
}
