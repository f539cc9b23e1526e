// =============================================================================
// findings2xml - CSV Parser Module
// =============================================================================
//
// This module reads vulnerability tracker exports into a Dataset. It handles:
//   - Different delimiters (comma, pipe, tab, semicolon)
//   - Different encodings (UTF-8 with or without BOM, UTF-16, Windows-1252,
//     ISO-8859-1)
//   - Quoted fields, including embedded delimiters, quotes and line breaks
//
// FEATURES:
//   - The first record is the header; every later record is a data row
//   - Cell text is kept exactly as written: no trimming, no type coercion
//   - Blank lines are skipped
//   - Records longer than the header are rejected with their line number
//   - Records shorter than the header leave the trailing columns missing
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/findings2xml/internal/types"
)

// ErrEmptyFile is returned when the input has no header record.
var ErrEmptyFile = errors.New("CSV file is empty")

// =============================================================================
// PARSER SETTINGS
// =============================================================================

// Settings contains options for reading CSV input.
type Settings struct {
	// Delimiter is a single character or one of the aliases
	// "tab", "\t", "pipe", "semicolon", "comma".
	// Default: ","
	Delimiter string

	// Encoding names the input character set.
	// Default: "utf-8"
	Encoding string
}

// DefaultSettings returns the default CSV settings.
func DefaultSettings() Settings {
	return Settings{
		Delimiter: ",",
		Encoding:  "utf-8",
	}
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns the parsed data.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: The delimiter and encoding to read with.
//
// RETURNS:
//   - The Dataset with the header cataloged and every data row in file order.
//   - An error if the file cannot be opened, decoded or parsed.
func Parse(filePath string, settings Settings) (*types.Dataset, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Read(file, filePath, settings)
}

// Read parses CSV data from r. source is recorded on the Dataset and used in
// error messages.
//
// PARSING PROCESS:
//  1. Decode the byte stream into UTF-8 using the configured encoding
//  2. Configure the CSV reader with the delimiter and strict quoting
//  3. Read the header record
//  4. Read data records until EOF, checking their width against the header
func Read(r io.Reader, source string, settings Settings) (*types.Dataset, error) {
	delimiter, err := ParseDelimiter(settings.Delimiter)
	if err != nil {
		return nil, err
	}

	enc, err := LookupEncoding(settings.Encoding)
	if err != nil {
		return nil, err
	}

	decoded := transform.NewReader(bufio.NewReader(r), enc.NewDecoder())

	csvReader := csv.NewReader(decoded)
	configureReader(csvReader, delimiter)

	header, err := csvReader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", source, ErrEmptyFile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var records [][]string
	for {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		if len(record) > len(header) {
			line, _ := csvReader.FieldPos(0)
			return nil, fmt.Errorf("failed to read CSV: line %d: record has %d fields, header has %d",
				line, len(record), len(header))
		}

		records = append(records, record)
	}

	return types.NewDataset(source, header, records), nil
}

// configureReader configures the CSV reader.
func configureReader(reader *csv.Reader, delimiter rune) {
	reader.Comma = delimiter

	// Width is checked against the header by Read; shorter records are allowed.
	reader.FieldsPerRecord = -1

	// Malformed quoting is an input error.
	reader.LazyQuotes = false

	reader.TrimLeadingSpace = false
}

// =============================================================================
// DELIMITERS AND ENCODINGS
// =============================================================================

// ParseDelimiter converts a configured delimiter into a rune.
//
// SUPPORTED VALUES:
//   - "" or "comma": ','
//   - "\t", "\\t", "tab": tab
//   - "pipe": '|'
//   - "semicolon": ';'
//   - any other single character
func ParseDelimiter(value string) (rune, error) {
	switch strings.ToLower(value) {
	case "", ",", "comma":
		return ',', nil
	case "\t", "\\t", "tab":
		return '\t', nil
	case "|", "pipe":
		return '|', nil
	case ";", "semicolon":
		return ';', nil
	}

	if utf8.RuneCountInString(value) != 1 {
		return 0, fmt.Errorf("invalid delimiter %q: must be a single character", value)
	}

	r, _ := utf8.DecodeRuneInString(value)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("invalid delimiter %q", value)
	}
	return r, nil
}

// LookupEncoding returns the decoder family for an encoding name.
// UTF-8 input may start with a byte order mark; it is removed.
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.ReplaceAll(name, "_", "-")) {
	case "", "utf-8", "utf8", "utf-8-sig":
		return unicode.UTF8BOM, nil
	case "utf-16", "utf16":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "iso-8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// SupportedEncoding reports whether name is accepted by LookupEncoding.
func SupportedEncoding(name string) bool {
	_, err := LookupEncoding(name)
	return err == nil
}

// SupportedDelimiter reports whether value is accepted by ParseDelimiter.
func SupportedDelimiter(value string) bool {
	_, err := ParseDelimiter(value)
	return err == nil
}
