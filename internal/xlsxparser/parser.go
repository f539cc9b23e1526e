// =============================================================================
// findings2xml - XLSX Parser Module
// =============================================================================
//
// This module reads findings exported as an Excel workbook. The sheet is read
// the same way a CSV export is:
//
//   | Key  | Target | Lines | Risk Rating | Ease of Exploitation | Summary  |
//   |------|--------|-------|-------------|----------------------|----------|
//   | K-1  | /app   | 12    | High        | high                 | SQLi     |
//
//   - The first row is the header
//   - Every later non-empty row is a data row
//   - Cells are read as stored, not as displayed, so number formats, dates and
//     thousands separators never leak into the report
//   - Numeric cells are rendered in plain decimal notation ("12", not "12.0"
//     or "1.2E+1")
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/findings2xml/internal/types"
)

// ErrEmptySheet is returned when the selected sheet has no header row.
var ErrEmptySheet = errors.New("sheet is empty")

// Settings contains options for reading workbooks.
type Settings struct {
	// Sheet is the sheet to read. Empty selects the first sheet.
	Sheet string
}

// IsWorkbook reports whether path names an Excel workbook.
func IsWorkbook(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xlsm")
}

// Parse reads a workbook sheet into a Dataset.
//
// PARAMETERS:
//   - filePath: The path to the XLSX file.
//   - settings: Selects the sheet to read.
//
// RETURNS:
//   - The Dataset built from the sheet.
//   - An error if the file cannot be opened, the sheet does not exist or the
//     sheet has no header row.
func Parse(filePath string, settings Settings) (*types.Dataset, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName, err := selectSheet(f, settings.Sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: sheet %q: %w", filePath, sheetName, ErrEmptySheet)
	}

	header := rows[0]
	records := make([][]string, 0, len(rows)-1)

	for i := 1; i < len(rows); i++ {
		row := rows[i]

		// Skip empty rows.
		if isRowEmpty(row) {
			continue
		}

		for col, value := range row {
			row[col] = normalizeCell(f, sheetName, col, i, value)
		}

		// Cells to the right of the header get positional column names.
		for len(header) < len(row) {
			header = append(header, "")
		}

		records = append(records, row)
	}

	return types.NewDataset(filePath, header, records), nil
}

// selectSheet returns the configured sheet, or the first one.
func selectSheet(f *excelize.File, name string) (string, error) {
	if name == "" {
		first := f.GetSheetName(0)
		if first == "" {
			return "", fmt.Errorf("workbook has no sheets")
		}
		return first, nil
	}

	index, err := f.GetSheetIndex(name)
	if err != nil {
		return "", fmt.Errorf("failed to look up sheet %q: %w", name, err)
	}
	if index == -1 {
		return "", fmt.Errorf("sheet %q not found (available: %s)", name, strings.Join(f.GetSheetList(), ", "))
	}
	return name, nil
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

// normalizeCell renders numeric cells in plain decimal notation. Text cells
// are returned unchanged, even when they look numeric ("007").
func normalizeCell(f *excelize.File, sheet string, col, row int, value string) string {
	number, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(number) || math.IsInf(number, 0) {
		return value
	}

	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return value
	}

	cellType, err := f.GetCellType(sheet, cell)
	if err != nil {
		return value
	}

	switch cellType {
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		return FormatNumber(number)
	default:
		return value
	}
}

// FormatNumber renders a float without exponent or trailing zeros.
// 12.0 -> "12", 0.5 -> "0.5", 1.2e+06 -> "1200000"
func FormatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
