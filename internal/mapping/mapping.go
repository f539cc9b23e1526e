// =============================================================================
// findings2xml - Mapping Table
// =============================================================================
//
// The mapping table associates every logical field of the report with a value
// source. It is the single configuration surface operators edit to adapt the
// tool to their own CSV exports.
//
// TEXTUAL CONVENTION:
//   A value that starts with "$" is a fixed literal (the "$" is dropped).
//   Any other value names a source column, matched exactly.
//
//   "SEVERITY": "Ease of Exploitation"   -> column "Ease of Exploitation"
//   "CWE_ID":   "$0"                     -> literal "0"
//   "CVE_YEAR": "$"                      -> literal "" (disables the CVE block)
//
// =============================================================================

package mapping

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// FixedPrefix marks a mapping value as a fixed literal.
const FixedPrefix = "$"

// =============================================================================
// LOGICAL FIELDS
// =============================================================================

// Field is a named slot in the mapping table.
type Field string

// Logical fields understood by the element builders.
const (
	ReportDate        Field = "REPORT_DATE"
	ReportTool        Field = "REPORT_TOOL"
	ToolName          Field = "TOOL_NAME"
	FindingStatus     Field = "FINDING_STATUS"
	NativeIDValue     Field = "NATIVE_ID_VALUE"
	CWEID             Field = "CWE_ID"
	ToolCode          Field = "TOOL_CODE"
	LocationPath      Field = "LOCATION_PATH"
	LineStart         Field = "LINE_START"
	LineEnd           Field = "LINE_END"
	DescriptionText   Field = "DESCRIPTION_TEXT"
	MetadataValueKey  Field = "METADATA_VALUE_KEY"
	MetadataValueText Field = "METADATA_VALUE_TEXT"
	Severity          Field = "SEVERITY"
	Date              Field = "DATE"
	MyToolID          Field = "MY_TOOL_ID"
	CVEYear           Field = "CVE_YEAR"
	CVESequence       Field = "CVE_SEQUENCE"
	FQDNText          Field = "FQDN_TEXT"
	ToolCategory      Field = "TOOL_CATEGORY"
	DescriptionFormat Field = "DESCRIPTION_FORMAT"
	IncludeInHash     Field = "INCLUDE_IN_HASH"
)

// Fields lists every logical field in documentation order.
var Fields = []Field{
	ReportDate,
	ReportTool,
	ToolName,
	FindingStatus,
	NativeIDValue,
	CWEID,
	ToolCode,
	LocationPath,
	LineStart,
	LineEnd,
	DescriptionText,
	MetadataValueKey,
	MetadataValueText,
	Severity,
	Date,
	MyToolID,
	CVEYear,
	CVESequence,
	FQDNText,
	ToolCategory,
	DescriptionFormat,
	IncludeInHash,
}

var knownFields = func() map[Field]int {
	m := make(map[Field]int, len(Fields))
	for i, f := range Fields {
		m[f] = i
	}
	return m
}()

// Valid reports whether f is one of the known logical fields.
func (f Field) Valid() bool {
	_, ok := knownFields[f]
	return ok
}

// =============================================================================
// VALUE SOURCES
// =============================================================================

// SourceKind tells how a Source produces its value.
type SourceKind int

const (
	// KindColumn reads the value from a named input column.
	KindColumn SourceKind = iota
	// KindFixed uses a literal value.
	KindFixed
)

// Source is the value source of a mapping entry.
type Source struct {
	Kind  SourceKind
	Value string
}

// Fixed returns a literal source.
func Fixed(v string) Source {
	return Source{Kind: KindFixed, Value: v}
}

// Column returns a column source.
func Column(name string) Source {
	return Source{Kind: KindColumn, Value: name}
}

// ParseSource applies the "$" convention to a raw mapping value.
func ParseSource(raw string) Source {
	if strings.HasPrefix(raw, FixedPrefix) {
		return Fixed(strings.TrimPrefix(raw, FixedPrefix))
	}
	return Column(raw)
}

// IsFixed reports whether the source is a literal.
func (s Source) IsFixed() bool {
	return s.Kind == KindFixed
}

// String renders the source back into its textual form.
func (s Source) String() string {
	if s.IsFixed() {
		return FixedPrefix + s.Value
	}
	return s.Value
}

// =============================================================================
// TABLE
// =============================================================================

// Table is a mapping from logical fields to value sources.
// A Table is not safe for concurrent mutation; it is read-only once a
// conversion starts.
type Table struct {
	entries map[Field]Source
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[Field]Source)}
}

// Default returns the sample mapping shipped with the tool. It maps a typical
// pentest tracker export onto the report fields.
func Default() *Table {
	t := NewTable()
	for field, raw := range map[Field]string{
		ReportDate:        "$2023-05-30",
		ReportTool:        "$My Custom Tool",
		ToolName:          "Jira-Pentest",
		FindingStatus:     "$new",
		NativeIDValue:     "Type of Pentest",
		CWEID:             "$0",
		ToolCode:          "Key",
		LocationPath:      "Target",
		LineStart:         "Lines",
		LineEnd:           "Lines",
		DescriptionText:   "Risk Rating",
		MetadataValueKey:  "$Description",
		MetadataValueText: "Summary",
		Severity:          "Ease of Exploitation",
		Date:              "$2023-05-30",
		MyToolID:          "$My Tool ID",
		CVEYear:           "$",
		CVESequence:       "$",
		FQDNText:          "$FQDN",
		ToolCategory:      "$Security",
		DescriptionFormat: "$plain-text",
		IncludeInHash:     "$false",
	} {
		t.Set(field, ParseSource(raw))
	}
	return t
}

// FromRaw builds a table from textual entries. Unknown field names are an
// error; values follow the "$" convention.
func FromRaw(raw map[string]string) (*Table, error) {
	t := NewTable()
	var unknown []string
	for key, value := range raw {
		field := Field(key)
		if !field.Valid() {
			unknown = append(unknown, key)
			continue
		}
		t.Set(field, ParseSource(value))
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown mapping field(s): %s", strings.Join(unknown, ", "))
	}
	return t, nil
}

// Set assigns a source to a field.
func (t *Table) Set(field Field, source Source) {
	t.entries[field] = source
}

// Delete removes a field from the table.
func (t *Table) Delete(field Field) {
	delete(t.entries, field)
}

// Lookup returns the source of a field.
func (t *Table) Lookup(field Field) (Source, bool) {
	s, ok := t.entries[field]
	return s, ok
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// Overlay returns a copy of t with every entry of other applied on top.
func (t *Table) Overlay(other *Table) *Table {
	merged := t.Clone()
	if other == nil {
		return merged
	}
	for field, source := range other.entries {
		merged.entries[field] = source
	}
	return merged
}

// Clone returns an independent copy of the table.
func (t *Table) Clone() *Table {
	c := NewTable()
	for field, source := range t.entries {
		c.entries[field] = source
	}
	return c
}

// Columns returns the distinct column names referenced by column sources,
// sorted. Empty names are skipped.
func (t *Table) Columns() []string {
	seen := make(map[string]bool)
	var columns []string
	for _, source := range t.entries {
		if source.IsFixed() || source.Value == "" || seen[source.Value] {
			continue
		}
		seen[source.Value] = true
		columns = append(columns, source.Value)
	}
	sort.Strings(columns)
	return columns
}

// Raw renders the table back into its textual form.
func (t *Table) Raw() map[string]string {
	raw := make(map[string]string, len(t.entries))
	for field, source := range t.entries {
		raw[string(field)] = source.String()
	}
	return raw
}

// orderedFields returns the fields present in the table, known fields first in
// documentation order.
func (t *Table) orderedFields() []Field {
	fields := make([]Field, 0, len(t.entries))
	for field := range t.entries {
		fields = append(fields, field)
	}
	sort.Slice(fields, func(i, j int) bool {
		pi, iKnown := knownFields[fields[i]]
		pj, jKnown := knownFields[fields[j]]
		switch {
		case iKnown && jKnown:
			return pi < pj
		case iKnown != jKnown:
			return iKnown
		default:
			return fields[i] < fields[j]
		}
	})
	return fields
}

// MarshalYAML emits the table as an ordered mapping of quoted strings, in the
// same shape the config file accepts.
func (t *Table) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, field := range t.orderedFields() {
		source := t.entries[field]
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: string(field)},
			&yaml.Node{Kind: yaml.ScalarNode, Style: yaml.DoubleQuotedStyle, Value: source.String()},
		)
	}
	return node, nil
}

// UnmarshalYAML reads a table from a mapping of strings.
func (t *Table) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := FromRaw(raw)
	if err != nil {
		return err
	}
	*t = *parsed
	return nil
}
