// Package importer reads bank statements into positional raw rows.
//
// Every format yields the same four columns in order: date, amount,
// identifier, description. The first non-blank row is the header and is
// skipped after its width has been checked.
package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/contflow/contflow/internal/model"
)

// Parser converts a statement file into RawRows.
type Parser interface {
	Parse(r io.Reader) ([]model.RawRow, error)
	Format() string
}

// ColumnMappingError reports a statement whose header does not have the
// four expected columns. The whole file is rejected.
type ColumnMappingError struct {
	Header []string
}

func (e ColumnMappingError) Error() string {
	return fmt.Sprintf("statement header has %d columns, want %d (date, amount, identifier, description): %q",
		len(e.Header), model.RawColumns, e.Header)
}

// ReadError reports a statement file that could not be opened or parsed.
// Rows of other files are unaffected.
type ReadError struct {
	File string
	Err  error
}

func (e ReadError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.File, e.Err)
}

func (e ReadError) Unwrap() error {
	return e.Err
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a statement file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// ForFile returns the parser for path. A non-empty format overrides the
// file extension.
func (r *Registry) ForFile(path, format string) (Parser, error) {
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	p := r.Get(format)
	if p == nil {
		return nil, fmt.Errorf("no parser for %q (file %s)", format, filepath.Base(path))
	}
	return p, nil
}

// DefaultRegistry returns a registry with all built-in parsers. delim is
// the CSV delimiter; 0 sniffs it from the header.
func DefaultRegistry(delim rune) *Registry {
	r := NewRegistry()
	r.Register(&CSVParser{Comma: delim})
	r.Register(&XLSXParser{})
	r.Register(&XLSParser{})
	return r
}

// ParseFile opens path and parses it with p.
func ParseFile(p Parser, path string) ([]model.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ReadError{File: filepath.Base(path), Err: err}
	}
	defer f.Close()

	rows, err := p.Parse(f)
	if err != nil {
		return nil, ReadError{File: filepath.Base(path), Err: err}
	}
	return rows, nil
}

// Subdirectories of the import directory.
const (
	ProcessedDir = "processed" // imported statements
	FailedDir    = "failed"    // statements that could not be read
)

var extensions = map[string]bool{".csv": true, ".xlsx": true, ".xls": true}

// Scan returns statement files in dir, sorted by name.
func Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !extensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from dir to dir/processed/.
func MarkProcessed(dir, fileName string) error {
	return moveTo(dir, ProcessedDir, fileName)
}

// MarkFailed moves a file from dir to dir/failed/.
func MarkFailed(dir, fileName string) error {
	return moveTo(dir, FailedDir, fileName)
}

func moveTo(dir, sub, fileName string) error {
	dstDir := filepath.Join(dir, sub)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating %s dir: %w", sub, err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(filepath.Join(dir, fileName), dst); err != nil {
		return fmt.Errorf("moving %s to %s: %w", fileName, sub, err)
	}
	return nil
}

// toRawRows maps records to RawRows. lines holds the source line of each
// record. Blank records are skipped; the first remaining one is the header.
// pad fills short records up to the header width, which suits spreadsheets
// where trailing empty cells are not stored.
func toRawRows(records [][]string, lines []int, pad bool) ([]model.RawRow, error) {
	var rows []model.RawRow
	header := true
	for i, rec := range records {
		if blank(rec) {
			continue
		}
		if header {
			if len(rec) != model.RawColumns {
				return nil, ColumnMappingError{Header: rec}
			}
			header = false
			continue
		}
		n := len(rec)
		if pad && n < model.RawColumns {
			n = model.RawColumns
		}
		rows = append(rows, model.RawRow{
			Line:        lines[i],
			Date:        field(rec, colDate),
			Amount:      field(rec, colAmount),
			Identifier:  field(rec, colIdentifier),
			Description: field(rec, colDescription),
			Fields:      n,
		})
	}
	return rows, nil
}

const (
	colDate = iota
	colAmount
	colIdentifier
	colDescription
)

func field(rec []string, i int) string {
	if i < len(rec) {
		return strings.TrimSpace(rec[i])
	}
	return ""
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
