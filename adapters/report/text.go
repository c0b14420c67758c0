package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gostatcheck/domain/assumptions"
)

// TextRenderer prints aligned plain-text tables
type TextRenderer struct{}

func (r *TextRenderer) Format() string { return "text" }

func (r *TextRenderer) Render(w io.Writer, reports ...assumptions.Tabular) error {
	for i, report := range reports {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		title := report.Title()
		if _, err := fmt.Fprintf(w, "%s\n%s\n", title, strings.Repeat("=", len(title))); err != nil {
			return err
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(report.Header(), "\t"))
		for _, row := range report.Values() {
			cells := make([]string, len(row))
			for j, v := range row {
				cells[j] = FormatValue(v)
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}
