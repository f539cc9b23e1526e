// =============================================================================
// findings2xml - Shared Types
// =============================================================================
//
// This package contains the tabular input model shared by the input readers
// (csvparser, xlsxparser), the mapping resolver and the converter. Keeping it
// here avoids import cycles between those packages.
//
// A Dataset is read fully into memory. Its header is cataloged once at load
// time so that every later lookup is a map access on an exact, case-sensitive
// column name.
//
// =============================================================================

package types

import (
	"fmt"
	"strconv"
)

// =============================================================================
// COLUMN CATALOG
// =============================================================================

// Columns is the cataloged header of a dataset.
type Columns struct {
	names []string
	index map[string]int
}

// NewColumns catalogs an already normalized header.
// If a name repeats, the first occurrence wins.
func NewColumns(names []string) *Columns {
	c := &Columns{
		names: append([]string(nil), names...),
		index: make(map[string]int, len(names)),
	}
	for i, name := range names {
		if _, exists := c.index[name]; !exists {
			c.index[name] = i
		}
	}
	return c
}

// Names returns the column names in header order.
func (c *Columns) Names() []string {
	return append([]string(nil), c.names...)
}

// Len returns the number of columns.
func (c *Columns) Len() int {
	return len(c.names)
}

// Index returns the position of a column.
func (c *Columns) Index(name string) (int, bool) {
	i, ok := c.index[name]
	return i, ok
}

// Has reports whether the header contains the column.
func (c *Columns) Has(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Missing returns the names from wanted that are not in the header,
// in the order given.
func (c *Columns) Missing(wanted []string) []string {
	var missing []string
	for _, name := range wanted {
		if !c.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// NormalizeHeader names empty header cells "Unnamed: <index>" and renames
// repeated names to "name.1", "name.2", ... so that every column stays
// addressable. No other normalization (trimming, case folding) is applied.
func NormalizeHeader(raw []string) []string {
	header := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	taken := make(map[string]bool, len(raw))

	for i, name := range raw {
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		taken[name] = true
		header[i] = name
	}

	for i, name := range header {
		count, dup := seen[name]
		seen[name] = count + 1
		if !dup {
			continue
		}
		candidate := fmt.Sprintf("%s.%d", name, count)
		for taken[candidate] {
			count++
			candidate = fmt.Sprintf("%s.%d", name, count)
		}
		seen[name] = count + 1
		taken[candidate] = true
		header[i] = candidate
	}

	return header
}

// =============================================================================
// ROW
// =============================================================================

// Row is one read-only input record addressed by column name.
type Row struct {
	// Number is the 1-indexed data row number (the header is not counted).
	Number int

	columns *Columns
	cells   []string
}

// NewRow binds cells to a column catalog. Cells beyond the header are dropped;
// a record shorter than the header leaves the trailing columns missing.
func NewRow(number int, columns *Columns, cells []string) *Row {
	if len(cells) > columns.Len() {
		cells = cells[:columns.Len()]
	}
	return &Row{
		Number:  number,
		columns: columns,
		cells:   append([]string(nil), cells...),
	}
}

// Get returns the cell for a column and whether it was present.
// A nil row has no cells.
func (r *Row) Get(column string) (string, bool) {
	if r == nil {
		return "", false
	}
	i, ok := r.columns.Index(column)
	if !ok || i >= len(r.cells) {
		return "", false
	}
	return r.cells[i], true
}

// Value returns the cell for a column, or "" when it is missing.
func (r *Row) Value(column string) string {
	v, _ := r.Get(column)
	return v
}

// =============================================================================
// DATASET
// =============================================================================

// Dataset is a fully materialized input table.
type Dataset struct {
	// Source is the path the data was read from.
	Source string

	// Columns is the cataloged header.
	Columns *Columns

	// Rows are the data rows in input order.
	Rows []*Row
}

// NewDataset builds a Dataset from a raw header and raw records.
func NewDataset(source string, rawHeader []string, records [][]string) *Dataset {
	columns := NewColumns(NormalizeHeader(rawHeader))

	rows := make([]*Row, 0, len(records))
	for i, record := range records {
		rows = append(rows, NewRow(i+1, columns, record))
	}

	return &Dataset{
		Source:  source,
		Columns: columns,
		Rows:    rows,
	}
}

// Len returns the number of data rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}
