package excel

import (
	"os"
	"path/filepath"
	"testing"

	"gostatcheck/domain/core"
	"gostatcheck/domain/table"
	"gostatcheck/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func readerFor(path, sheet string) *DataReader {
	cfg := DefaultExcelConfig()
	cfg.FilePath = path
	if sheet != "" {
		cfg.Sheet = sheet
	}
	return NewDataReader(cfg, nil)
}

func TestReadTableCSV(t *testing.T) {
	path := writeFile(t, "data.csv", "height,weight,region\n1.5,60,north\n1.7,72,south\n\n1.8,80,north\n")

	tbl, err := readerFor(path, "").ReadTable()
	require.NoError(t, err)

	assert.Equal(t, []string{"height", "weight", "region"}, tbl.Names())
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, []string{"height", "weight"}, tbl.NumericNames())

	kind, err := tbl.Kind("region")
	require.NoError(t, err)
	assert.Equal(t, table.KindCategorical, kind)

	weights, err := tbl.Numeric("weight")
	require.NoError(t, err)
	assert.Equal(t, []float64{60, 72, 80}, weights)
}

func TestReadTableCSVNamesBlankHeaders(t *testing.T) {
	path := writeFile(t, "data.csv", "x,\n1,2\n3,4\n")

	tbl, err := readerFor(path, "").ReadTable()
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "Unnamed: 1"}, tbl.Names())
}

func TestReadTableBlankGroupLabelsJoinNoGroup(t *testing.T) {
	path := writeFile(t, "data.csv", "x,g\n1,a\n2,a\n3,b\n4,b\n5,\n6,NA\n")

	tbl, err := readerFor(path, "").ReadTable()
	require.NoError(t, err)

	groups, err := tbl.Partition("x", "g")
	require.NoError(t, err)
	assert.Equal(t, []table.Group{
		{Label: "a", Values: []float64{1, 2}},
		{Label: "b", Values: []float64{3, 4}},
	}, groups)
}

func TestReadTableMissingNumericCell(t *testing.T) {
	path := writeFile(t, "data.csv", "a,b\n1,2\n3,\n5,6\n")

	_, err := readerFor(path, "").ReadTable()
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNonFinite)
	feature, ok := core.FailedFeature(err)
	assert.True(t, ok)
	assert.Equal(t, "b", feature)
}

func TestReadDataErrors(t *testing.T) {
	_, err := readerFor(filepath.Join(t.TempDir(), "nope.csv"), "").ReadData()
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	headerOnly := writeFile(t, "h.csv", "a,b\n")
	_, err = readerFor(headerOnly, "").ReadData()
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func writeWorkbook(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}
	for r, row := range rows {
		for c, v := range row {
			require.NoError(t, f.SetCellValue(sheet, cellName(c+1, r+1), v))
		}
	}
	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadTableXLSX(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]any{
		{"score", "group"},
		{10.5, 1},
		{12, 2},
		{9, 1},
	})

	tbl, err := readerFor(path, "").ReadTable()
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())

	scores, err := tbl.Numeric("score")
	require.NoError(t, err)
	assert.Equal(t, []float64{10.5, 12, 9}, scores)

	labels, err := tbl.Labels("group")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "1"}, labels)
}

func TestReadTableXLSXSheetSelection(t *testing.T) {
	path := writeWorkbook(t, "Data", [][]any{{"v"}, {1}, {2}})

	// the default sheet falls back to the first sheet
	tbl, err := readerFor(path, "").ReadTable()
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())

	tbl, err = readerFor(path, "Data").ReadTable()
	require.NoError(t, err)
	assert.Equal(t, []string{"v"}, tbl.Names())

	_, err = readerFor(path, "Other").ReadTable()
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}
