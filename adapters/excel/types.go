package excel

// RawRowData represents a row of raw Excel data as string key-value pairs
type RawRowData map[string]string

// ExcelData represents the complete Excel dataset
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// Column returns one column's cells in row order. Cells a row lacks are "".
func (d *ExcelData) Column(header string) []string {
	cells := make([]string, len(d.Rows))
	for i, row := range d.Rows {
		cells[i] = row[header]
	}
	return cells
}
