// Package tsv reads delimited text files into rows keyed by column name.
package tsv

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// Options configures how a Reader interprets its input.
type Options struct {
	// Columns lists the expected columns. In header mode every listed column
	// must appear in the header (in any order); if empty, the header names
	// are used as-is. Without a header, Columns gives the field order.
	Columns []string

	// Header reports whether the first non-comment line names the columns.
	Header bool

	// Delimiter separates fields. Defaults to tab.
	Delimiter rune

	// Missing lists the values read as absent. Defaults to the empty string.
	Missing []string
}

// Reader reads rows from a delimited file.
type Reader struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	delimiter  string
	columns    []string // column name for each field index
	missing    map[string]bool
}

// NewReader opens a delimited file. Gzipped input is detected from its
// magic bytes; "-" reads stdin.
func NewReader(path string, opts Options) (*Reader, error) {
	if path == "-" {
		return NewReaderFromReader(os.Stdin, opts)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tabular file: %w", err)
	}

	r := &Reader{file: file}

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("read tabular file: %w", err)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek tabular file: %w", err)
	}

	if n == 2 && buf[0] == 0x1f && buf[1] == 0x8b {
		r.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		r.reader = bufio.NewReader(r.gzipReader)
	} else {
		r.reader = bufio.NewReader(file)
	}

	if err := r.init(opts); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// NewReaderFromReader creates a reader from an io.Reader (e.g., stdin).
func NewReaderFromReader(in io.Reader, opts Options) (*Reader, error) {
	r := &Reader{reader: bufio.NewReader(in)}
	if err := r.init(opts); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reader) init(opts Options) error {
	r.delimiter = "\t"
	if opts.Delimiter != 0 {
		r.delimiter = string(opts.Delimiter)
	}

	r.missing = map[string]bool{"": true}
	if opts.Missing != nil {
		r.missing = make(map[string]bool, len(opts.Missing))
		for _, m := range opts.Missing {
			r.missing[m] = true
		}
	}

	if !opts.Header {
		if len(opts.Columns) == 0 {
			return &ParseError{Line: 0, Message: "columns are required when the input has no header"}
		}
		r.columns = opts.Columns
		return nil
	}
	return r.parseHeader(opts.Columns)
}

// parseHeader reads the header line and maps expected columns onto it.
// Header names match expected columns case-insensitively.
func (r *Reader) parseHeader(expected []string) error {
	line, ok, err := r.nextLine()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if !ok {
		return &ParseError{Line: r.lineNumber, Message: "no header line found"}
	}

	names := r.split(line)
	if len(expected) == 0 {
		r.columns = names
		return nil
	}

	canonical := make(map[string]string, len(expected))
	for _, col := range expected {
		canonical[strings.ToLower(col)] = col
	}
	r.columns = make([]string, len(names))
	found := make(map[string]bool, len(expected))
	for i, name := range names {
		if col, ok := canonical[strings.ToLower(name)]; ok {
			r.columns[i] = col
			found[col] = true
		} else {
			r.columns[i] = name
		}
	}
	for _, col := range expected {
		if !found[col] {
			return &ParseError{
				Line:    r.lineNumber,
				Message: fmt.Sprintf("required column '%s' not found in header", col),
			}
		}
	}
	return nil
}

// nextLine returns the next line that is neither blank nor a '#' comment.
func (r *Reader) nextLine() (string, bool, error) {
	for {
		line, err := r.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return "", false, nil
			}
			return "", false, err
		}
		r.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			if err == io.EOF {
				return "", false, nil
			}
			continue
		}
		return line, true, nil
	}
}

func (r *Reader) split(line string) []string {
	fields := strings.Split(line, r.delimiter)
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}

// Next reads the next row.
// Returns nil, nil when there are no more rows.
func (r *Reader) Next() (*Row, error) {
	line, ok, err := r.nextLine()
	if err != nil {
		return nil, fmt.Errorf("read row: %w", err)
	}
	if !ok {
		return nil, nil
	}

	fields := r.split(line)
	if len(fields) > len(r.columns) {
		return nil, &ParseError{
			Line:    r.lineNumber,
			Message: fmt.Sprintf("expected at most %d columns, found %d", len(r.columns), len(fields)),
		}
	}

	row := &Row{
		Line:    r.lineNumber,
		values:  make(map[string]string, len(fields)),
		missing: r.missing,
	}
	for i, f := range fields {
		row.values[r.columns[i]] = f
	}
	return row, nil
}

// ReadAll reads every remaining row.
func (r *Reader) ReadAll() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := r.Next()
		if err != nil {
			return nil, err
		}
		if row == nil {
			return rows, nil
		}
		rows = append(rows, row)
	}
}

// Columns returns the column name of each field index.
func (r *Reader) Columns() []string {
	return r.columns
}

// LineNumber returns the current line number being processed.
func (r *Reader) LineNumber() int {
	return r.lineNumber
}

// Close closes the reader and underlying file.
func (r *Reader) Close() error {
	if r.gzipReader != nil {
		r.gzipReader.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// Row is one data line, keyed by column name.
type Row struct {
	Line    int
	values  map[string]string
	missing map[string]bool
}

// Get returns the value of col. The second result is false when the column
// is absent from the line or holds a missing-value marker.
func (row *Row) Get(col string) (string, bool) {
	v, ok := row.values[col]
	if !ok || row.missing[v] {
		return "", false
	}
	return v, true
}

// Raw returns the text of col without missing-value interpretation,
// or "" if the line has no such field.
func (row *Row) Raw(col string) string {
	return row.values[col]
}

// ParseError represents an error during tabular parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("tabular parse error at line %d: %s", e.Line, e.Message)
}
