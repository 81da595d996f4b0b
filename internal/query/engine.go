// Package query translates natural-language questions into restricted query
// pipelines via a text-generation backend and executes them against a
// dataset copy.
package query

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/mossholt/autotab-cli/internal/ai"
	"github.com/mossholt/autotab-cli/internal/dataset"
)

// ErrorKind classifies query failures for the caller; presentation is the
// caller's responsibility.
type ErrorKind string

const (
	// ErrConfigMissing means no translation backend is configured. This is a
	// normal runtime state, not a fault.
	ErrConfigMissing ErrorKind = "CONFIG_MISSING"
	// ErrUnsafeCode means the generated snippet tripped the denylist screen.
	ErrUnsafeCode ErrorKind = "UNSAFE_CODE"
	// ErrTranslation means the backend call failed or returned unusable text.
	ErrTranslation ErrorKind = "TRANSLATION_FAILED"
	// ErrExecution means the snippet failed to parse or evaluate.
	ErrExecution ErrorKind = "EXECUTION_FAILED"
)

// denylist tokens rejected in generated snippets before any parsing. A
// substring screen is not a security boundary (trivially evadable); the
// closed pipeline grammar in exec.go is what actually constrains execution.
var denylist = []string{"import", "exec", "eval", "compile", "__", "open", "file", "os", "sys"}

// HistoryEntry records one query call. Entries are append-only.
type HistoryEntry struct {
	ID       string
	Question string
	Code     string
	Success  bool
}

// Result is the outcome of a query. Table is nil on failure, in which case
// Kind is set.
type Result struct {
	Table       *dataset.Dataset
	Explanation string
	Kind        ErrorKind
}

// Engine translates and executes natural-language queries. One instance per
// dataset session; history is owned by the instance.
type Engine struct {
	client  *ai.Client
	model   string
	history []HistoryEntry
	diag    *log.Logger
}

// New returns an Engine. client may be nil or unconfigured, in which case
// every query reports CONFIG_MISSING. A nil logger discards diagnostics.
func New(client *ai.Client, model string, diag *log.Logger) *Engine {
	if diag == nil {
		diag = log.New(io.Discard, "", 0)
	}
	return &Engine{client: client, model: model, diag: diag}
}

// History returns the entries recorded so far, in order.
func (e *Engine) History() []HistoryEntry { return e.history }

const systemPrompt = `You are a data analyst assistant. Given a dataset schema and a natural language question,
answer with exactly one line of the form:

result = op | op | ...

using ONLY these operations:
  select(col, ...)
  filter(col <cmp> value)        where <cmp> is one of == != > >= < <= contains
  groupby(col, agg(col))         where agg is one of sum mean min max count
  sort(col) or sort(col, desc)
  head(n)
  count()
  summary()
  sum(col)  mean(col)  min(col)  max(col)

Use exact column names from the schema. Return ONLY the pipeline line, no explanations.`

// SchemaContext renders the dataset schema for the prompt: shape plus, per
// column, the storage type and up to 3 sample values.
func SchemaContext(ds *dataset.Dataset) string {
	var b strings.Builder
	b.WriteString("Dataset Schema:\n")
	fmt.Fprintf(&b, "Total rows: %d\n", ds.NumRows())
	fmt.Fprintf(&b, "Total columns: %d\n", ds.NumCols())
	b.WriteString("\nColumns:\n")
	for _, col := range ds.Columns() {
		var samples []string
		for _, v := range col.Values {
			if v.Null {
				continue
			}
			samples = append(samples, v.String())
			if len(samples) == 3 {
				break
			}
		}
		fmt.Fprintf(&b, "  - %s (%s): Sample values: [%s]\n", col.Name, col.Kind, strings.Join(samples, ", "))
	}
	return b.String()
}

// Query translates the question, screens the generated snippet, executes it
// against a copy of ds, and records a history entry. Every call appends
// exactly one entry; Success reflects whether a result table was produced.
func (e *Engine) Query(ctx context.Context, ds *dataset.Dataset, question string) Result {
	if e.client == nil || !e.client.Configured() {
		return e.record(question, "", Result{
			Explanation: "No translation backend configured. Set AUTOTAB_API_KEY or api_key in the config file.",
			Kind:        ErrConfigMissing,
		})
	}

	userPrompt := fmt.Sprintf("%s\nUser Question: %s\n\nGenerate a pipeline to answer this question. Return only the line, starting with 'result = '", SchemaContext(ds), question)
	resp, err := e.client.Generate(ctx, ai.GenerateRequest{
		Model: e.model,
		Messages: []ai.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.1,
		MaxTokens:   500,
	})
	if err != nil {
		return e.record(question, "", Result{
			Explanation: fmt.Sprintf("Error processing query: %v", err),
			Kind:        ErrTranslation,
		})
	}
	code := StripFences(resp.Content())
	e.diag.Printf("generated pipeline: %s", code)
	if code == "" {
		return e.record(question, "", Result{
			Explanation: "The backend returned no usable output.",
			Kind:        ErrTranslation,
		})
	}
	if tok, bad := screenDenylist(code); bad {
		e.diag.Printf("generated snippet rejected: contains %q", tok)
		return e.record(question, code, Result{
			Explanation: "Generated code contains potentially dangerous operations and was not executed.",
			Kind:        ErrUnsafeCode,
		})
	}

	pipeline, err := Parse(code)
	if err != nil {
		return e.record(question, code, Result{
			Explanation: fmt.Sprintf("Could not execute generated query: %v", err),
			Kind:        ErrExecution,
		})
	}
	// Run against a fresh copy, never the canonical dataset.
	table, err := pipeline.Run(ds.Clone())
	if err != nil {
		return e.record(question, code, Result{
			Explanation: fmt.Sprintf("Could not execute generated query: %v", err),
			Kind:        ErrExecution,
		})
	}
	return e.record(question, code, Result{
		Table:       table,
		Explanation: fmt.Sprintf("Executed query: %s\nGenerated pipeline:\n%s", question, code),
	})
}

func (e *Engine) record(question, code string, res Result) Result {
	e.history = append(e.history, HistoryEntry{
		ID:       uuid.NewString(),
		Question: question,
		Code:     code,
		Success:  res.Table != nil,
	})
	return res
}

// screenDenylist reports the first denylist token found in the snippet.
func screenDenylist(code string) (string, bool) {
	for _, tok := range denylist {
		if containsToken(code, tok) {
			return tok, true
		}
	}
	return "", false
}

// containsToken matches whole word-ish occurrences for short alphabetic
// tokens, so that "sort" does not trip "os" by substring accident, while
// still catching "import os", "os.system", and bare "__".
func containsToken(code, tok string) bool {
	if tok == "__" {
		return strings.Contains(code, tok)
	}
	lower := strings.ToLower(code)
	for i := 0; ; {
		j := strings.Index(lower[i:], tok)
		if j < 0 {
			return false
		}
		j += i
		before := j == 0 || !isWordByte(lower[j-1])
		after := j+len(tok) == len(lower) || !isWordByte(lower[j+len(tok)])
		if before && after {
			return true
		}
		i = j + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

// StripFences removes markdown code-fence wrapping from generated text.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// Drop an optional language tag on the fence line.
		if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.Contains(s[:nl], "=") {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
