// =============================================================================
// findings2xml - XML Writer Module
// =============================================================================
//
// This module holds the in-memory element tree the converter builds and the
// serializer that turns it into an indented XML document.
//
// OUTPUT SHAPE:
//
//   <?xml version="1.0" encoding="UTF-8"?>
//   <report date="2023-05-30" generator="My Custom Tool">
//     <findings>
//       <finding severity="high" date="2023-05-30">
//         <native-id name="My Tool ID" value=""/>
//         ...
//       </finding>
//     </findings>
//   </report>
//
// Attributes are written in insertion order and elements without text or
// children are self-closed, so the same tree always serializes to the same
// bytes.
//
// =============================================================================

package xmlwriter

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for XML generation.
type GenerateOptions struct {
	// Indent is the string used for one level of indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// XMLVersion is the XML version for the declaration.
	// Default: "1.0"
	XMLVersion string

	// Encoding is the encoding named in the declaration. The writer always
	// emits UTF-8 bytes.
	// Default: "UTF-8"
	Encoding string
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
		XMLVersion:            "1.0",
		Encoding:              "UTF-8",
	}
}

// =============================================================================
// ELEMENT TREE
// =============================================================================

// Element is a node of the document tree.
type Element struct {
	XMLName    xml.Name
	Attributes []xml.Attr
	Value      string
	Children   []*Element
}

// NewElement creates a detached element.
func NewElement(name string) *Element {
	return &Element{XMLName: xml.Name{Local: name}}
}

// SubElement creates a child element and appends it to e.
func (e *Element) SubElement(name string) *Element {
	child := NewElement(name)
	e.Append(child)
	return child
}

// Append adds child as the last child of e.
func (e *Element) Append(child *Element) {
	e.Children = append(e.Children, child)
}

// Name returns the local name of the element.
func (e *Element) Name() string {
	return e.XMLName.Local
}

// SetAttr sets an attribute, keeping the position of an existing one.
func (e *Element) SetAttr(name, value string) {
	for i := range e.Attributes {
		if e.Attributes[i].Name.Local == name {
			e.Attributes[i].Value = value
			return
		}
	}
	e.Attributes = append(e.Attributes, xml.Attr{Name: xml.Name{Local: name}, Value: value})
}

// Attr returns the value of an attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, attr := range e.Attributes {
		if attr.Name.Local == name {
			return attr.Value, true
		}
	}
	return "", false
}

// SetText sets the character data of the element.
func (e *Element) SetText(text string) {
	e.Value = text
}

// Find returns the first descendant matching a slash-separated path of child
// names, e.g. "location/line", or nil.
func (e *Element) Find(path string) *Element {
	current := e
	for _, name := range strings.Split(path, "/") {
		var next *Element
		for _, child := range current.Children {
			if child.Name() == name {
				next = child
				break
			}
		}
		if next == nil {
			return nil
		}
		current = next
	}
	return current
}

// FindAll returns every direct child named name.
func (e *Element) FindAll(name string) []*Element {
	var found []*Element
	for _, child := range e.Children {
		if child.Name() == name {
			found = append(found, child)
		}
	}
	return found
}

// ChildNames returns the names of the direct children in order.
func (e *Element) ChildNames() []string {
	names := make([]string, len(e.Children))
	for i, child := range e.Children {
		names[i] = child.Name()
	}
	return names
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// Generate serializes root with the default options.
func Generate(root *Element) ([]byte, error) {
	return GenerateWithOptions(root, DefaultGenerateOptions())
}

// GenerateWithOptions serializes root into a byte slice.
func GenerateWithOptions(root *Element, options GenerateOptions) ([]byte, error) {
	var buffer bytes.Buffer
	if err := Write(&buffer, root, options); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// Write serializes root to w.
func Write(w io.Writer, root *Element, options GenerateOptions) error {
	if root == nil {
		return fmt.Errorf("no root element")
	}

	bw := bufio.NewWriter(w)

	if options.IncludeXMLDeclaration {
		version := options.XMLVersion
		if version == "" {
			version = "1.0"
		}
		encoding := options.Encoding
		if encoding == "" {
			encoding = "UTF-8"
		}
		fmt.Fprintf(bw, "<?xml version=\"%s\" encoding=\"%s\"?>\n", version, encoding)
	}

	writeElement(bw, root, options.Indent, 0)

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write XML: %w", err)
	}
	return nil
}

// writeElement writes an element and its subtree at the given depth.
func writeElement(w *bufio.Writer, element *Element, indent string, level int) {
	writeIndent(w, indent, level)

	w.WriteString("<")
	w.WriteString(element.Name())

	for _, attr := range element.Attributes {
		w.WriteString(" ")
		w.WriteString(attr.Name.Local)
		w.WriteString("=\"")
		w.WriteString(escapeAttr(attr.Value))
		w.WriteString("\"")
	}

	if len(element.Children) == 0 && element.Value == "" {
		w.WriteString("/>\n")
		return
	}

	w.WriteString(">")
	w.WriteString(escapeText(element.Value))

	if len(element.Children) > 0 {
		w.WriteString("\n")
		for _, child := range element.Children {
			writeElement(w, child, indent, level+1)
		}
		writeIndent(w, indent, level)
	}

	w.WriteString("</")
	w.WriteString(element.Name())
	w.WriteString(">\n")
}

func writeIndent(w *bufio.Writer, indent string, level int) {
	for i := 0; i < level; i++ {
		w.WriteString(indent)
	}
}

// =============================================================================
// ESCAPING
// =============================================================================

// escapeText escapes character data.
func escapeText(s string) string {
	return escape(s, false)
}

// escapeAttr escapes an attribute value. Whitespace control characters are
// written as character references so they survive attribute normalization.
func escapeAttr(s string) string {
	return escape(s, true)
}

func escape(s string, attr bool) string {
	var buffer strings.Builder

	for _, r := range s {
		switch {
		case r == '&':
			buffer.WriteString("&amp;")
		case r == '<':
			buffer.WriteString("&lt;")
		case r == '>':
			buffer.WriteString("&gt;")
		case r == '"' && attr:
			buffer.WriteString("&quot;")
		case r == '\n' && attr:
			buffer.WriteString("&#10;")
		case r == '\r':
			buffer.WriteString("&#13;")
		case r == '\t' && attr:
			buffer.WriteString("&#9;")
		case !isXMLChar(r):
			// Not representable in XML 1.0.
			buffer.WriteRune('\uFFFD')
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}

// isXMLChar reports whether r is allowed by the XML 1.0 Char production.
func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}
