package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"

	"github.com/mossholt/autotab-cli/internal/clean"
	"github.com/mossholt/autotab-cli/internal/feature"
	"github.com/mossholt/autotab-cli/internal/schema"
	"github.com/mossholt/autotab-cli/internal/validate"
)

var (
	runOutPath    string
	runReportPath string
	runNoFeatures bool
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Run the full pipeline: profile, validate, clean, engineer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Run %s\n", uuid.NewString())

		stages := []string{"profile", "validate", "clean", "engineer"}
		stage := 0
		uiprogress.Start()
		bar := uiprogress.AddBar(len(stages)).AppendCompleted().PrependElapsed()
		bar.PrependFunc(func(b *uiprogress.Bar) string {
			if stage < len(stages) {
				return fmt.Sprintf("%-9s", stages[stage])
			}
			return "done     "
		})

		profileText := schema.Render(ds)
		stage++
		bar.Incr()

		rep := validate.New(validate.WithIQRMultiplier(iqrMultiplier())).Validate(ds)
		stage++
		bar.Incr()

		cleaner := clean.New(diagLogger())
		out := cleaner.Clean(ds, clean.DefaultConfig())
		stage++
		bar.Incr()

		eng := feature.New()
		if !runNoFeatures {
			out = eng.Engineer(out)
		}
		stage++
		bar.Incr()
		uiprogress.Stop()

		fmt.Println()
		fmt.Print(profileText)
		fmt.Println()
		fmt.Println(rep.Render())
		fmt.Println()
		for _, op := range cleaner.Log() {
			fmt.Println("  •", op)
		}
		for _, op := range eng.Log() {
			fmt.Println("  •", op)
		}
		fmt.Printf("\nPipeline complete: %d rows, %d columns\n", out.NumRows(), out.NumCols())

		if runReportPath != "" {
			if err := os.WriteFile(runReportPath, []byte(rep.Render()+"\n"), 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Printf("Report written to %s\n", runReportPath)
		}
		return writeOutput(out, runOutPath)
	},
}

func init() {
	runCmd.Flags().StringVar(&flagTable, "table", "", "table name (SQLite inputs)")
	runCmd.Flags().IntVar(&flagSheet, "sheet", 0, "sheet index (XLSX inputs)")
	runCmd.Flags().StringVarP(&runOutPath, "output", "o", "", "write processed data to a CSV file")
	runCmd.Flags().StringVar(&runReportPath, "report", "", "write the validation report to a file")
	runCmd.Flags().BoolVar(&runNoFeatures, "no-features", false, "skip feature derivation")
	rootCmd.AddCommand(runCmd)
}
