package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gostatcheck/adapters/datareadiness/coercer"
	"gostatcheck/domain/table"
	"gostatcheck/internal"
	"gostatcheck/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
	coercer  *coercer.TypeCoercer
	logger   *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(config ExcelConfig, logger *internal.Logger) *DataReader {
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	sheet := config.Sheet
	if sheet == "" {
		sheet = DefaultSheet
	}
	if logger == nil {
		logger = internal.Discard
	}
	return &DataReader{
		filePath: config.FilePath,
		fileType: fileType,
		sheet:    sheet,
		coercer:  coercer.NewTypeCoercer(config.CoercionConfig),
		logger:   logger.With("DataReader"),
	}
}

// ReadTable reads the file and types every column: numeric when all present
// cells parse as numbers, categorical otherwise.
func (r *DataReader) ReadTable() (*table.Table, error) {
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}

	columns := make([]table.Column, 0, len(data.Headers))
	for _, header := range data.Headers {
		col, analysis, err := r.coercer.BuildColumn(header, data.Column(header))
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", r.filePath)
		}
		r.logger.Debug("column %q typed %s (%d/%d numeric, %d missing)",
			header, analysis.Kind, analysis.NumericCount, analysis.TotalCount, analysis.MissingCount)
		columns = append(columns, col)
	}

	tbl, err := table.New(columns...)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", r.filePath)
	}
	r.logger.Info("loaded %d rows x %d columns (%d numeric) from %s",
		tbl.Len(), tbl.Width(), len(tbl.NumericNames()), filepath.Base(r.filePath))
	return tbl, nil
}

// ReadData reads data from Excel or CSV files into structured format
func (r *DataReader) ReadData() (*ExcelData, error) {
	r.logger.Debug("Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.NotFound(fmt.Sprintf("%s file %s", strings.ToUpper(r.fileType), r.filePath))
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported file type: %s", r.fileType))
	}
}

// readExcelData reads the configured sheet. When the default sheet is absent
// the first sheet of the workbook is used instead.
func (r *DataReader) readExcelData() (*ExcelData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.IOError("open Excel file", err)
	}
	defer f.Close()
	r.logger.Debug("Excel file opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	sheet, err := r.resolveSheet(f.GetSheetList())
	if err != nil {
		return nil, err
	}

	readStart := time.Now()
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.IOError(fmt.Sprintf("read sheet %s", sheet), err)
	}
	r.logger.Debug("%s read in %.2fms (%d rows)", sheet, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, errors.InvalidInput("Excel sheet must have at least a header row and one data row")
	}

	return r.processRows(rows)
}

func (r *DataReader) resolveSheet(sheets []string) (string, error) {
	for _, s := range sheets {
		if s == r.sheet {
			return s, nil
		}
	}
	if r.sheet == DefaultSheet && len(sheets) > 0 {
		r.logger.Warn("sheet %s not found, using %s", DefaultSheet, sheets[0])
		return sheets[0], nil
	}
	return "", errors.NotFound(fmt.Sprintf("sheet %q in %s", r.sheet, r.filePath))
}

// readCSVData reads CSV data into structured format
func (r *DataReader) readCSVData() (*ExcelData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.IOError("open CSV file", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.IOError("read CSV file", err)
	}
	r.logger.Debug("CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, errors.InvalidInput("CSV file must have at least a header row and one data row")
	}

	return r.processRows(rows)
}

// processRows converts raw string rows into ExcelData format. Blank headers
// are named "Unnamed: i" and rows with no content are skipped.
func (r *DataReader) processRows(rows [][]string) (*ExcelData, error) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
		if headers[i] == "" {
			headers[i] = fmt.Sprintf("Unnamed: %d", i)
		}
	}

	var dataRows []RawRowData
	skipped := 0
	for _, row := range rows[1:] {
		rowData := make(RawRowData, len(headers))
		empty := true
		for j, cell := range row {
			if j >= len(headers) {
				break
			}
			cell = strings.TrimSpace(cell)
			if cell != "" {
				empty = false
			}
			rowData[headers[j]] = cell
		}
		if empty {
			skipped++
			continue
		}
		dataRows = append(dataRows, rowData)
	}
	if skipped > 0 {
		r.logger.Debug("skipped %d empty rows", skipped)
	}
	if len(dataRows) == 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("%s has no data rows", r.filePath))
	}

	r.logger.Debug("%s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(dataRows))

	return &ExcelData{
		Headers: headers,
		Rows:    dataRows,
	}, nil
}
