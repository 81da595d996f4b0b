package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mossholt/autotab-cli/internal/clean"
	"github.com/mossholt/autotab-cli/internal/dataset"
	"github.com/mossholt/autotab-cli/internal/query"
)

var (
	askSuggest bool
	askClean   bool
)

var askCmd = &cobra.Command{
	Use:   "ask <file> [question]",
	Short: "Answer a natural-language question about a dataset",
	Long: `Translates the question into a restricted query pipeline via the configured
LLM backend and executes it against the dataset. With --suggest, prints
question templates derived from the dataset's columns instead. Without a
question, starts an interactive session ('history', 'suggest', and 'exit'
are session commands).`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(args[0])
		if err != nil {
			return err
		}
		if askClean {
			ds = clean.New(diagLogger()).Clean(ds, clean.DefaultConfig())
		}
		if askSuggest {
			printSuggestions(ds)
			return nil
		}
		eng := query.New(backendClient(), modelName(), diagLogger())
		if len(args) == 2 {
			if ok := runQuery(eng, ds, args[1]); !ok {
				os.Exit(1)
			}
			return nil
		}
		return interactiveSession(eng, ds)
	},
}

func printSuggestions(ds *dataset.Dataset) {
	fmt.Println("Suggested questions:")
	for _, s := range query.Suggestions(ds) {
		fmt.Println("  -", s)
	}
}

func runQuery(eng *query.Engine, ds *dataset.Dataset, question string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	res := eng.Query(ctx, ds, question)
	if res.Table == nil {
		fmt.Fprintf(os.Stderr, "✗ Error [%s]: %s\n", res.Kind, res.Explanation)
		return false
	}
	fmt.Println(res.Explanation)
	fmt.Println()
	fmt.Print(res.Table.String())
	return true
}

func interactiveSession(eng *query.Engine, ds *dataset.Dataset) error {
	fmt.Println("Ask questions about the dataset. Type 'suggest' for ideas, 'history' for past queries, 'exit' to quit.")
	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("? ")
		if !sc.Scan() {
			break
		}
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			continue
		case line == "exit" || line == "quit":
			return sc.Err()
		case line == "suggest":
			printSuggestions(ds)
		case line == "history":
			for _, h := range eng.History() {
				status := "✗"
				if h.Success {
					status = "✓"
				}
				fmt.Printf("%s [%s] %s\n", status, h.ID, h.Question)
				if h.Code != "" {
					fmt.Printf("    %s\n", h.Code)
				}
			}
		default:
			runQuery(eng, ds, line)
		}
	}
	return sc.Err()
}

func init() {
	askCmd.Flags().StringVar(&flagTable, "table", "", "table name (SQLite inputs)")
	askCmd.Flags().IntVar(&flagSheet, "sheet", 0, "sheet index (XLSX inputs)")
	askCmd.Flags().BoolVar(&askSuggest, "suggest", false, "print suggested questions and exit")
	askCmd.Flags().BoolVar(&askClean, "clean", false, "auto-clean the dataset before querying")
	rootCmd.AddCommand(askCmd)
}
