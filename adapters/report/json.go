package report

import (
	"encoding/json"
	"io"

	"gostatcheck/domain/assumptions"
)

// JSONRenderer writes {"reports": [{"title", "header", "report"}, ...]}
type JSONRenderer struct {
	Indent string
}

type jsonReport struct {
	Title  string              `json:"title"`
	Header []string            `json:"header"`
	Report assumptions.Tabular `json:"report"`
}

func (r *JSONRenderer) Format() string { return "json" }

func (r *JSONRenderer) Render(w io.Writer, reports ...assumptions.Tabular) error {
	doc := struct {
		Reports []jsonReport `json:"reports"`
	}{Reports: make([]jsonReport, len(reports))}
	for i, report := range reports {
		doc.Reports[i] = jsonReport{Title: report.Title(), Header: report.Header(), Report: report}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", r.Indent)
	return enc.Encode(doc)
}
