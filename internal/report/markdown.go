// Package report renders experiment aggregates as markdown and HTML.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"golir/domain/core"
	"golir/internal/evaluator"
)

// Report is a rendered experiment summary.
type Report struct {
	RunID     core.RunID
	Title     string
	CreatedAt time.Time
	Rows      []evaluator.Aggregate
}

// New builds a report for a finished sweep.
func New(runID core.RunID, title string, rows []evaluator.Aggregate) *Report {
	return &Report{
		RunID:     runID,
		Title:     title,
		CreatedAt: time.Now().UTC(),
		Rows:      rows,
	}
}

// Markdown renders the report as a GFM document with one table row per
// evaluated x value.
func (r *Report) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Title)
	fmt.Fprintf(&b, "Run `%s`, generated %s.\n\n", r.RunID, r.CreatedAt.Format(time.RFC3339))

	b.WriteString("| evaluator | x | repeats | cllr | std | cllr_min | cllr_cal | avg llr H2 | avg llr H1 |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|---|\n")
	for _, row := range r.Rows {
		fmt.Fprintf(&b, "| %s | %g | %d | %.4f | %.4f | %.4f | %.4f | %.3f | %.3f |\n",
			row.Name, row.X, row.N,
			row.CllrMean, row.CllrStd, row.CllrMinMean, row.CllrCalMean,
			row.AvgLLRClass0Mean, row.AvgLLRClass1Mean)
	}
	return b.String()
}

// HTML renders the markdown report as a complete HTML page.
func (r *Report) HTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(r.Markdown()))

	renderer := html.NewRenderer(html.RendererOptions{
		Title: r.Title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.Render(doc, renderer)
}
