package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"gostatcheck/domain/assumptions"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// MarkdownRenderer writes GitHub-style pipe tables under a heading per report
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Format() string { return "markdown" }

func (r *MarkdownRenderer) Render(w io.Writer, reports ...assumptions.Tabular) error {
	_, err := w.Write(Markdown(reports...))
	return err
}

// Markdown returns the Markdown document for the reports
func Markdown(reports ...assumptions.Tabular) []byte {
	var buf bytes.Buffer
	for i, report := range reports {
		if i > 0 {
			buf.WriteString("\n")
		}
		fmt.Fprintf(&buf, "## %s\n\n", report.Title())

		header := report.Header()
		buf.WriteString("| " + strings.Join(escapeCells(header), " | ") + " |\n")
		buf.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")
		for _, row := range report.Values() {
			cells := make([]string, len(row))
			for j, v := range row {
				cells[j] = FormatValue(v)
			}
			buf.WriteString("| " + strings.Join(escapeCells(cells), " | ") + " |\n")
		}
	}
	return buf.Bytes()
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return out
}

// HTMLRenderer converts the Markdown document to a standalone HTML page
type HTMLRenderer struct {
	Title string
}

func (r *HTMLRenderer) Format() string { return "html" }

func (r *HTMLRenderer) Render(w io.Writer, reports ...assumptions.Tabular) error {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: r.Title,
	})
	_, err := w.Write(markdown.ToHTML(Markdown(reports...), p, renderer))
	return err
}
