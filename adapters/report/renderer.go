// Package report renders assumption reports as text, Markdown, HTML or JSON.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gostatcheck/domain/assumptions"
	"gostatcheck/internal/errors"
)

// Renderer writes one or more reports in a single output format
type Renderer interface {
	Format() string
	Render(w io.Writer, reports ...assumptions.Tabular) error
}

// New returns the renderer for a format name
func New(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "text", "":
		return &TextRenderer{}, nil
	case "markdown", "md":
		return &MarkdownRenderer{}, nil
	case "html":
		return &HTMLRenderer{Title: "Assumption checks"}, nil
	case "json":
		return &JSONRenderer{Indent: "  "}, nil
	}
	return nil, errors.InvalidInput(fmt.Sprintf("unknown report format %q", format))
}

// FormatValue renders a cell for human-readable output. Floats keep six
// significant digits and infinities print as inf.
func FormatValue(v any) string {
	switch x := v.(type) {
	case float64:
		switch {
		case math.IsInf(x, 1):
			return "inf"
		case math.IsInf(x, -1):
			return "-inf"
		case math.IsNaN(x):
			return "nan"
		}
		return strconv.FormatFloat(x, 'g', 6, 64)
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	}
	return fmt.Sprint(v)
}
