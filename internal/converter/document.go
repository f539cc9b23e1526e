package converter

import (
	"github.com/ginjaninja78/findings2xml/internal/mapping"
	"github.com/ginjaninja78/findings2xml/internal/types"
	"github.com/ginjaninja78/findings2xml/internal/xmlwriter"
)

// BuildFinding assembles the complete <finding> subtree for one row. Children
// are attached in the order the importer expects: native-id, cwe, cves (when
// present), host, tool, location, description, metadata.
func (b *Builder) BuildFinding(row *types.Row) *xmlwriter.Element {
	finding := b.Finding(row)
	b.NativeID(finding, row)
	b.CWE(finding)
	b.CVEs(finding, row)
	b.Host(finding)
	b.Tool(finding, row)
	b.Location(finding, row)
	b.Description(finding, row)
	b.Metadata(finding, row)
	return finding
}

// AppendFinding builds the finding for row and appends it to findings.
func (b *Builder) AppendFinding(findings *xmlwriter.Element, row *types.Row) *xmlwriter.Element {
	finding := b.BuildFinding(row)
	findings.Append(finding)
	return finding
}

// BuildReport assembles the whole document tree:
//
//	<report date generator>
//	  <findings>
//	    <finding/>...   one per row, in input order
//	  </findings>
//	</report>
//
// The report attributes do not depend on any row.
func (b *Builder) BuildReport(ds *types.Dataset) *xmlwriter.Element {
	report := xmlwriter.NewElement(ElementReport)
	report.SetAttr("date", b.resolver.Resolve(nil, mapping.ReportDate))
	report.SetAttr("generator", b.resolver.Resolve(nil, mapping.ReportTool))

	findings := report.SubElement(ElementFindings)
	if ds == nil {
		return report
	}

	for _, row := range ds.Rows {
		b.AppendFinding(findings, row)
	}
	return report
}

// Convert renders ds as a report document using table.
func Convert(ds *types.Dataset, table *mapping.Table, options xmlwriter.GenerateOptions) ([]byte, error) {
	return xmlwriter.GenerateWithOptions(NewBuilder(table).BuildReport(ds), options)
}
