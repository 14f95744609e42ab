package taxonomy

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/contflow/contflow/internal/model"
)

// LoadError reports a missing or malformed reference file. Classification is
// impossible without a taxonomy, so callers treat it as fatal for imports.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading taxonomy %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Service holds the chart of accounts as an ordered list. Order is the file
// order and decides which entry wins when several match.
type Service struct {
	entries []model.TaxonomyEntry
	known   map[model.Classification]bool
}

// NewService creates a Service from entries, filling in missing patterns.
func NewService(entries []model.TaxonomyEntry) *Service {
	known := make(map[model.Classification]bool, len(entries))
	normalised := make([]model.TaxonomyEntry, len(entries))
	for i, e := range entries {
		if e.Pattern == "" {
			e = NewEntry(e.Type, e.Category, e.Subcategory)
		}
		normalised[i] = e
		known[e.Classification()] = true
	}
	return &Service{entries: normalised, known: known}
}

// Load reads the reference file at path. Every failure is a *LoadError.
func Load(path string) (*Service, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	entries, err := ReadEntries(f)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return NewService(entries), nil
}

// All returns the entries in match order.
func (s *Service) All() []model.TaxonomyEntry {
	return s.entries
}

// Len returns the number of entries.
func (s *Service) Len() int {
	return len(s.entries)
}

// Contains reports whether the triple is an entry of the chart.
func (s *Service) Contains(c model.Classification) bool {
	return s.known[c]
}

// Save writes the chart to path, creating parent directories.
func (s *Service) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating taxonomy dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating taxonomy file: %w", err)
	}
	defer f.Close()

	if err := WriteEntries(f, s.entries); err != nil {
		return fmt.Errorf("writing taxonomy: %w", err)
	}
	return nil
}
