package excel

import (
	"fmt"
	"math"
	"path/filepath"

	"gostatcheck/domain/assumptions"
	"gostatcheck/domain/core"
	"gostatcheck/internal"
	"gostatcheck/internal/errors"

	"github.com/xuri/excelize/v2"
)

// RunSheet is the worksheet describing the run that produced a workbook
const RunSheet = "Run"

// RunInfo identifies the run a workbook was exported from
type RunInfo struct {
	RunID       core.RunID
	Source      string
	Fingerprint core.Hash
	CreatedAt   core.Timestamp
}

// ReportWriter exports assumption reports to an .xlsx workbook, one sheet
// per report plus a Run sheet.
type ReportWriter struct {
	logger *internal.Logger
}

// NewReportWriter creates a workbook writer
func NewReportWriter(logger *internal.Logger) *ReportWriter {
	if logger == nil {
		logger = internal.Discard
	}
	return &ReportWriter{logger: logger.With("ReportWriter")}
}

// Write saves the reports to path, replacing any existing file.
func (w *ReportWriter) Write(path string, run RunInfo, reports ...assumptions.Tabular) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", RunSheet); err != nil {
		return errors.IOError("prepare workbook", err)
	}

	runRows := [][]any{
		{"Run ID", run.RunID.String()},
		{"Source", run.Source},
		{"Input fingerprint", run.Fingerprint.String()},
		{"Created", run.CreatedAt.String()},
	}
	if err := writeRows(f, RunSheet, []string{"Field", "Value"}, runRows); err != nil {
		return err
	}

	used := map[string]bool{RunSheet: true}
	for i, report := range reports {
		name := uniqueSheetName(SheetName(report), used)
		if _, err := f.NewSheet(name); err != nil {
			return errors.IOError(fmt.Sprintf("create sheet %s", name), err)
		}
		if err := writeRows(f, name, report.Header(), report.Values()); err != nil {
			return err
		}
		if err := f.SetCellValue(RunSheet, cellName(1, len(runRows)+3+i), report.Title()); err != nil {
			return errors.IOError("write run sheet", err)
		}
		w.logger.Debug("wrote %d rows to sheet %s", len(report.Values()), name)
	}

	if err := f.SaveAs(path); err != nil {
		return errors.IOError(fmt.Sprintf("save %s", path), err)
	}
	w.logger.Info("exported %d reports to %s", len(reports), filepath.Base(path))
	return nil
}

// SheetName picks the worksheet name for a report
func SheetName(report assumptions.Tabular) string {
	switch report.(type) {
	case *assumptions.NormalityReport:
		return "Normality"
	case *assumptions.HomogeneityReport:
		return "Homogeneity"
	case *assumptions.CollinearityReport:
		return "Multicollinearity"
	}
	title := report.Title()
	if len(title) > 31 {
		title = title[:31]
	}
	return title
}

func uniqueSheetName(name string, used map[string]bool) string {
	candidate := name
	for i := 2; used[candidate]; i++ {
		candidate = fmt.Sprintf("%s %d", name, i)
	}
	used[candidate] = true
	return candidate
}

func writeRows(f *excelize.File, sheet string, header []string, rows [][]any) error {
	for c, h := range header {
		if err := f.SetCellValue(sheet, cellName(c+1, 1), h); err != nil {
			return errors.IOError(fmt.Sprintf("write %s header", sheet), err)
		}
	}
	for r, row := range rows {
		for c, v := range row {
			if err := f.SetCellValue(sheet, cellName(c+1, r+2), cellValue(v)); err != nil {
				return errors.IOError(fmt.Sprintf("write %s row %d", sheet, r+1), err)
			}
		}
	}
	return nil
}

// cellValue keeps non-finite floats out of numeric cells, which xlsx cannot hold
func cellValue(v any) any {
	if f, ok := v.(float64); ok {
		switch {
		case math.IsInf(f, 1):
			return "inf"
		case math.IsInf(f, -1):
			return "-inf"
		case math.IsNaN(f):
			return "nan"
		}
	}
	return v
}

func cellName(col, row int) string {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	return cell
}
