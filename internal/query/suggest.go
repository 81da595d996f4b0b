package query

import (
	"fmt"

	"github.com/mossholt/autotab-cli/internal/dataset"
)

// Suggestions derives template questions from the dataset's column-type
// composition, deterministic for identical compositions. Up to 6 derived
// templates plus two generic fallbacks.
func Suggestions(ds *dataset.Dataset) []string {
	var numeric, categorical, temporal []string
	for _, col := range ds.Columns() {
		switch {
		case col.Kind.Numeric():
			numeric = append(numeric, col.Name)
		case col.Kind == dataset.KindText || col.Kind == dataset.KindCategorical:
			categorical = append(categorical, col.Name)
		case col.Kind == dataset.KindTime:
			temporal = append(temporal, col.Name)
		}
	}
	var out []string
	if len(numeric) > 0 {
		out = append(out, fmt.Sprintf("What is the average %s?", numeric[0]))
		if len(numeric) > 1 {
			out = append(out, fmt.Sprintf("Show me the correlation between %s and %s", numeric[0], numeric[1]))
		}
	}
	if len(categorical) > 0 {
		out = append(out, fmt.Sprintf("How many unique %s are there?", categorical[0]))
		if len(numeric) > 0 {
			out = append(out, fmt.Sprintf("What is the total %s by %s?", numeric[0], categorical[0]))
		}
	}
	if len(temporal) > 0 && len(numeric) > 0 {
		out = append(out, fmt.Sprintf("What were the %s trends over time?", numeric[0]))
	}
	out = append(out, "Show me the top 10 rows", "What are the summary statistics?")
	return out
}
