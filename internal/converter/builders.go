package converter

import (
	"github.com/ginjaninja78/findings2xml/internal/mapping"
	"github.com/ginjaninja78/findings2xml/internal/types"
	"github.com/ginjaninja78/findings2xml/internal/xmlwriter"
)

// =============================================================================
// ELEMENT NAMES
// =============================================================================

const (
	ElementReport      = "report"
	ElementFindings    = "findings"
	ElementFinding     = "finding"
	ElementNativeID    = "native-id"
	ElementCWE         = "cwe"
	ElementCVEs        = "cves"
	ElementCVE         = "cve"
	ElementHost        = "host"
	ElementFQDN        = "fqdn"
	ElementTool        = "tool"
	ElementLocation    = "location"
	ElementLine        = "line"
	ElementDescription = "description"
	ElementMetadata    = "metadata"
	ElementValue       = "value"
)

// defaultLine is written for line numbers the row does not provide.
const defaultLine = "0"

// =============================================================================
// ELEMENT BUILDERS
// =============================================================================

// Builder constructs finding subtrees. Each method builds one substructure,
// reading its values through the resolver; methods taking a parent attach the
// new element to it.
//
// A Builder only reads its mapping table, so one Builder may serve any number
// of documents.
type Builder struct {
	resolver *mapping.Resolver
}

// NewBuilder returns a Builder reading values through table.
func NewBuilder(table *mapping.Table) *Builder {
	return &Builder{resolver: mapping.NewResolver(table)}
}

// Resolver returns the resolver the builder reads values through.
func (b *Builder) Resolver() *mapping.Resolver {
	return b.resolver
}

// Finding creates a detached <finding severity date>.
func (b *Builder) Finding(row *types.Row) *xmlwriter.Element {
	finding := xmlwriter.NewElement(ElementFinding)
	finding.SetAttr("severity", b.resolver.Resolve(row, mapping.Severity))
	finding.SetAttr("date", b.resolver.Resolve(row, mapping.Date))
	return finding
}

// NativeID attaches <native-id name value>. The value attribute is read from
// the column named by NATIVE_ID_VALUE, not from NATIVE_ID_VALUE itself.
func (b *Builder) NativeID(finding *xmlwriter.Element, row *types.Row) *xmlwriter.Element {
	nativeID := finding.SubElement(ElementNativeID)
	nativeID.SetAttr("name", b.resolver.Resolve(row, mapping.MyToolID))
	nativeID.SetAttr("value", b.resolver.ResolveColumnThenLookup(row, mapping.NativeIDValue))
	return nativeID
}

// CWE attaches <cwe id>. The id is the same for every row.
func (b *Builder) CWE(finding *xmlwriter.Element) *xmlwriter.Element {
	cwe := finding.SubElement(ElementCWE)
	cwe.SetAttr("id", b.resolver.Resolve(nil, mapping.CWEID))
	return cwe
}

// CVEs attaches <cves><cve year sequence-number/></cves> when both the year
// and the sequence resolve to non-empty values, and returns the <cve>.
// Otherwise nothing is attached and nil is returned. Mapping either field to
// "$" disables the block.
func (b *Builder) CVEs(finding *xmlwriter.Element, row *types.Row) *xmlwriter.Element {
	year := b.resolver.Resolve(row, mapping.CVEYear)
	sequence := b.resolver.Resolve(row, mapping.CVESequence)
	if year == "" || sequence == "" {
		return nil
	}

	cve := finding.SubElement(ElementCVEs).SubElement(ElementCVE)
	cve.SetAttr("year", year)
	cve.SetAttr("sequence-number", sequence)
	return cve
}

// Host attaches <host><fqdn>text</fqdn></host>. The name is the same for
// every row.
func (b *Builder) Host(finding *xmlwriter.Element) *xmlwriter.Element {
	host := finding.SubElement(ElementHost)
	host.SubElement(ElementFQDN).SetText(b.resolver.Resolve(nil, mapping.FQDNText))
	return host
}

// Tool attaches <tool name category code>.
func (b *Builder) Tool(finding *xmlwriter.Element, row *types.Row) *xmlwriter.Element {
	tool := finding.SubElement(ElementTool)
	tool.SetAttr("name", b.resolver.Resolve(row, mapping.ToolName))
	tool.SetAttr("category", b.resolver.Resolve(row, mapping.ToolCategory))
	tool.SetAttr("code", b.resolver.Resolve(row, mapping.ToolCode))
	return tool
}

// Location attaches <location path><line start end/></location>. Missing or
// empty line numbers are written as "0".
func (b *Builder) Location(finding *xmlwriter.Element, row *types.Row) *xmlwriter.Element {
	location := finding.SubElement(ElementLocation)
	location.SetAttr("path", b.resolver.Resolve(row, mapping.LocationPath))

	line := location.SubElement(ElementLine)
	line.SetAttr("start", b.resolver.ResolveOr(row, mapping.LineStart, defaultLine))
	line.SetAttr("end", b.resolver.ResolveOr(row, mapping.LineEnd, defaultLine))
	return location
}

// Description attaches <description format include-in-hash>text</description>.
func (b *Builder) Description(finding *xmlwriter.Element, row *types.Row) *xmlwriter.Element {
	description := finding.SubElement(ElementDescription)
	description.SetAttr("format", b.resolver.Resolve(row, mapping.DescriptionFormat))
	description.SetAttr("include-in-hash", b.resolver.Resolve(row, mapping.IncludeInHash))
	description.SetText(b.resolver.Resolve(row, mapping.DescriptionText))
	return description
}

// Metadata attaches <metadata><value key>text</value></metadata>.
func (b *Builder) Metadata(finding *xmlwriter.Element, row *types.Row) *xmlwriter.Element {
	metadata := finding.SubElement(ElementMetadata)
	value := metadata.SubElement(ElementValue)
	value.SetAttr("key", b.resolver.Resolve(row, mapping.MetadataValueKey))
	value.SetText(b.resolver.Resolve(row, mapping.MetadataValueText))
	return metadata
}
