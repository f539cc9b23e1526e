// =============================================================================
// findings2xml - Converter Module
// =============================================================================
//
// This module contains the core conversion logic. It orchestrates the whole
// pipeline for one input file, from reading rows to writing the report.
//
// CONVERSION PIPELINE:
//   1. Read the input file (CSV, or XLSX by extension) into a Dataset
//   2. Warn about mapped columns the header does not contain
//   3. Build one <finding> per row under <report><findings>
//   4. Serialize the tree to a temp file next to the output
//   5. Rename the temp file into place
//
// ERROR HANDLING:
//   - Input problems (missing file, malformed CSV) wrap ErrInput
//   - Output problems (unwritable path) wrap ErrOutput
//   - Anything else, including panics, wraps ErrUnexpected
//   - Missing columns and empty cells are not errors
//   - A failed run never leaves an output file behind
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/findings2xml/internal/csvparser"
	"github.com/ginjaninja78/findings2xml/internal/mapping"
	"github.com/ginjaninja78/findings2xml/internal/types"
	"github.com/ginjaninja78/findings2xml/internal/xlsxparser"
	"github.com/ginjaninja78/findings2xml/internal/xmlwriter"
	"github.com/ginjaninja78/findings2xml/pkg/utils"
)

// Error kinds reported by Run.
var (
	ErrInput      = errors.New("input error")
	ErrOutput     = errors.New("output error")
	ErrUnexpected = errors.New("unexpected error")
)

// =============================================================================
// OPTIONS AND RESULT
// =============================================================================

// Options configures a conversion.
type Options struct {
	// InputPath is the findings file to read.
	InputPath string

	// OutputPath is the XML file to write. Its directory must exist.
	OutputPath string

	// Mapping is the mapping table. Nil uses mapping.Default().
	Mapping *mapping.Table

	// CSV contains the settings for CSV input.
	CSV csvparser.Settings

	// XLSX contains the settings for workbook input.
	XLSX xlsxparser.Settings

	// XML contains the serialization options.
	XML xmlwriter.GenerateOptions
}

// Result represents the outcome of a successful conversion.
type Result struct {
	// InputPath is the file that was read.
	InputPath string

	// OutputPath is the file that was written.
	OutputPath string

	// Findings is the number of <finding> elements written.
	Findings int

	// MissingColumns lists mapped columns absent from the input header.
	MissingColumns []string

	// Bytes is the size of the written document.
	Bytes int64

	// Duration is the wall time of the run.
	Duration time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter handles the conversion of a single findings file to XML.
type Converter struct {
	opts    Options
	logger  zerolog.Logger
	builder *Builder

	// build produces the document tree; replaced in tests.
	build func(ds *types.Dataset) *xmlwriter.Element
}

// New creates a new Converter instance.
//
// PARAMETERS:
//   - opts: The conversion options.
//   - logger: Receives progress and data warnings.
//
// RETURNS:
//   - A pointer to the Converter.
func New(opts Options, logger zerolog.Logger) *Converter {
	if opts.Mapping == nil {
		opts.Mapping = mapping.Default()
	}
	if opts.XML == (xmlwriter.GenerateOptions{}) {
		opts.XML = xmlwriter.DefaultGenerateOptions()
	}

	builder := NewBuilder(opts.Mapping)

	return &Converter{
		opts:    opts,
		logger:  logger,
		builder: builder,
		build:   builder.BuildReport,
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline.
//
// RETURNS:
//   - The Result of a successful run.
//   - An error wrapping ErrInput, ErrOutput or ErrUnexpected.
func (c *Converter) Run() (result *Result, err error) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %v", ErrUnexpected, r)
		}
	}()

	// Step 1: Read the input.
	c.logger.Debug().Str("input", c.opts.InputPath).Msg("reading input")

	ds, err := Load(c.opts.InputPath, c.opts.CSV, c.opts.XLSX)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInput, err)
	}

	c.logger.Info().
		Str("input", c.opts.InputPath).
		Int("rows", ds.Len()).
		Int("columns", ds.Columns.Len()).
		Msg("loaded input")

	// Step 2: Check the header against the mapping.
	missing := ds.Columns.Missing(c.opts.Mapping.Columns())
	for _, column := range missing {
		c.logger.Warn().Str("column", column).Msg("mapped column not found in input; values resolve to empty")
	}

	// Step 3: Build the document.
	root := c.build(ds)

	// Step 4: Write the output.
	err = utils.WriteAtomic(c.opts.OutputPath, 0o644, func(w io.Writer) error {
		return xmlwriter.Write(w, root, c.opts.XML)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutput, err)
	}

	size, err := utils.GetFileSize(c.opts.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutput, err)
	}

	result = &Result{
		InputPath:      c.opts.InputPath,
		OutputPath:     c.opts.OutputPath,
		Findings:       ds.Len(),
		MissingColumns: missing,
		Bytes:          size,
		Duration:       time.Since(start),
	}

	c.logger.Info().
		Str("output", result.OutputPath).
		Int("findings", result.Findings).
		Int64("bytes", result.Bytes).
		Dur("elapsed", result.Duration).
		Msg("report written")

	return result, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Load reads a findings file, choosing the reader by extension: .xlsx and
// .xlsm are workbooks, anything else is CSV.
func Load(path string, csvSettings csvparser.Settings, xlsxSettings xlsxparser.Settings) (*types.Dataset, error) {
	if xlsxparser.IsWorkbook(path) {
		return xlsxparser.Parse(path, xlsxSettings)
	}
	return csvparser.Parse(path, csvSettings)
}
