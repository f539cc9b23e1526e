package mapping

import "github.com/ginjaninja78/findings2xml/internal/types"

// Resolver turns logical fields into strings for a given row.
// Resolution never fails: anything missing degrades to "".
type Resolver struct {
	table *Table
}

// NewResolver returns a resolver bound to table. A nil table resolves every
// field to "".
func NewResolver(table *Table) *Resolver {
	if table == nil {
		table = NewTable()
	}
	return &Resolver{table: table}
}

// Table returns the mapping table the resolver reads.
func (r *Resolver) Table() *Table {
	return r.table
}

// Resolve returns the value of field for row. Row may be nil for
// document-level fields; column sources then resolve to "".
func (r *Resolver) Resolve(row *types.Row, field Field) string {
	source, ok := r.table.Lookup(field)
	if !ok {
		return ""
	}
	if source.IsFixed() {
		return source.Value
	}
	return row.Value(source.Value)
}

// ResolveOr is Resolve with def substituted for an empty result.
func (r *Resolver) ResolveOr(row *types.Row, field Field, def string) string {
	if v := r.Resolve(row, field); v != "" {
		return v
	}
	return def
}

// ResolveColumnThenLookup resolves field to the name of a column and returns
// that column's cell from row. The mapping value selects a column; it is not
// the data itself.
func (r *Resolver) ResolveColumnThenLookup(row *types.Row, field Field) string {
	column := r.Resolve(row, field)
	if column == "" {
		return ""
	}
	return row.Value(column)
}
