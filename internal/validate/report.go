package validate

import (
	"fmt"
	"strings"
)

// Render produces the plain-text validation report used for audit and
// export. Section order is fixed: overview, issue count, warning count,
// warnings, issues.
func (r *Report) Render() string {
	line := strings.Repeat("=", 60)
	out := []string{
		line,
		"DATA VALIDATION REPORT",
		line,
		"",
		"Dataset Overview:",
		fmt.Sprintf("  Total Rows: %d", r.TotalRows),
		fmt.Sprintf("  Total Columns: %d", r.TotalColumns),
		"",
		fmt.Sprintf("Issues Found: %d", len(r.Issues)),
		fmt.Sprintf("Warnings: %d", len(r.Warnings)),
	}
	if len(r.Warnings) > 0 {
		out = append(out, "", "Warnings:")
		for _, w := range r.Warnings {
			out = append(out, "  - "+w)
		}
	}
	if len(r.Issues) > 0 {
		out = append(out, "", "Issues:")
		for _, issue := range r.Issues {
			out = append(out, "  - "+issue)
		}
	}
	out = append(out, line)
	return strings.Join(out, "\n")
}
