package xlsxparser

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeWorkbook saves a workbook built by fill into a temp dir.
func writeWorkbook(t *testing.T, fill func(f *excelize.File)) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	fill(f)

	path := filepath.Join(t.TempDir(), "findings.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestParse_FirstSheet(t *testing.T) {
	path := writeWorkbook(t, func(f *excelize.File) {
		require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Key", "Lines", "Code", "Ratio"}))

		require.NoError(t, f.SetCellValue("Sheet1", "A2", "K-1"))
		require.NoError(t, f.SetCellValue("Sheet1", "B2", 12))
		require.NoError(t, f.SetCellStr("Sheet1", "C2", "007"))
		require.NoError(t, f.SetCellValue("Sheet1", "D2", 0.5))

		require.NoError(t, f.SetCellValue("Sheet1", "A3", "K-2"))
		require.NoError(t, f.SetCellDefault("Sheet1", "B3", "12.0"))

		require.NoError(t, f.SetCellValue("Sheet1", "A5", "K-3"))
		require.NoError(t, f.SetCellValue("Sheet1", "F5", "stray"))
	})

	ds, err := Parse(path, Settings{})
	require.NoError(t, err)

	assert.Equal(t, path, ds.Source)
	require.Equal(t, 3, ds.Len(), "blank row 4 is skipped")

	first := ds.Rows[0]
	assert.Equal(t, "K-1", first.Value("Key"))
	assert.Equal(t, "12", first.Value("Lines"))
	assert.Equal(t, "007", first.Value("Code"), "text cells are not reparsed")
	assert.Equal(t, "0.5", first.Value("Ratio"))

	second := ds.Rows[1]
	assert.Equal(t, "12", second.Value("Lines"))

	third := ds.Rows[2]
	assert.Equal(t, 3, third.Number)
	assert.Equal(t, "stray", third.Value("Unnamed: 5"))
	assert.Equal(t, []string{"Key", "Lines", "Code", "Ratio", "Unnamed: 4", "Unnamed: 5"}, ds.Columns.Names())
}

func TestParse_NamedSheet(t *testing.T) {
	path := writeWorkbook(t, func(f *excelize.File) {
		require.NoError(t, f.SetCellValue("Sheet1", "A1", "Ignored"))

		_, err := f.NewSheet("Findings")
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Findings", "A1", "Key"))
		require.NoError(t, f.SetCellValue("Findings", "A2", "K-9"))
	})

	ds, err := Parse(path, Settings{Sheet: "Findings"})
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	assert.Equal(t, "K-9", ds.Rows[0].Value("Key"))

	_, err = Parse(path, Settings{Sheet: "Nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sheet "Nope" not found`)
}

func TestParse_EmptySheet(t *testing.T) {
	path := writeWorkbook(t, func(f *excelize.File) {})

	_, err := Parse(path, Settings{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptySheet))
}

func TestParse_MissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.xlsx"), Settings{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open workbook")
}

func TestFormatNumber(t *testing.T) {
	tests := map[float64]string{
		12:      "12",
		0.5:     "0.5",
		1.2e6:   "1200000",
		-3:      "-3",
		0:       "0",
		1e-7:    "0.0000001",
		45076.5: "45076.5",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatNumber(in))
	}
}

func TestIsWorkbook(t *testing.T) {
	assert.True(t, IsWorkbook("report.XLSX"))
	assert.True(t, IsWorkbook("/tmp/a.xlsm"))
	assert.False(t, IsWorkbook("findings.csv"))
	assert.False(t, IsWorkbook("findings.xls"))
}
