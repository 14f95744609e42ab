package taxonomy

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/contflow/contflow/internal/model"
	"github.com/contflow/contflow/internal/textnorm"
)

// Header names of the reference file, in the order WriteEntries emits them.
const (
	HeaderType        = "Tipo"
	HeaderCategory    = "Categoria"
	HeaderSubcategory = "Subcategoria"
)

const utf8BOM = "\ufeff"

// columns holds the position of each required column in the file.
type columns struct {
	typ, category, subcategory int
}

func (c columns) width() int {
	return max(c.typ, c.category, c.subcategory) + 1
}

// locateColumns finds the required columns by name. Matching ignores case
// and accents, so "SUBCATEGORIA" and "Subcategória" both work.
func locateColumns(header []string) (columns, error) {
	cols := columns{typ: -1, category: -1, subcategory: -1}
	for i, name := range header {
		switch textnorm.Fold(strings.TrimPrefix(name, utf8BOM)) {
		case textnorm.Fold(HeaderType):
			cols.typ = i
		case textnorm.Fold(HeaderCategory):
			cols.category = i
		case textnorm.Fold(HeaderSubcategory):
			cols.subcategory = i
		}
	}

	var missing []string
	if cols.typ < 0 {
		missing = append(missing, HeaderType)
	}
	if cols.category < 0 {
		missing = append(missing, HeaderCategory)
	}
	if cols.subcategory < 0 {
		missing = append(missing, HeaderSubcategory)
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("missing column(s) %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

// ReadEntries reads a chart of accounts. Entries keep file order.
func ReadEntries(r io.Reader) ([]model.TaxonomyEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty chart of accounts")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols, err := locateColumns(header)
	if err != nil {
		return nil, err
	}

	var entries []model.TaxonomyEntry
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if blank(rec) {
			continue
		}
		if len(rec) < cols.width() {
			return nil, fmt.Errorf("row %d: expected at least %d fields, got %d", line, cols.width(), len(rec))
		}
		entries = append(entries, NewEntry(rec[cols.typ], rec[cols.category], rec[cols.subcategory]))
	}

	if len(entries) == 0 {
		return nil, errors.New("chart of accounts has no entries")
	}
	return entries, nil
}

// WriteEntries writes a chart of accounts with the canonical header.
func WriteEntries(w io.Writer, entries []model.TaxonomyEntry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{HeaderType, HeaderCategory, HeaderSubcategory}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, e := range entries {
		if err := cw.Write([]string{e.Type, e.Category, e.Subcategory}); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// NewEntry builds a trimmed entry with its match pattern.
func NewEntry(typ, category, subcategory string) model.TaxonomyEntry {
	sub := strings.TrimSpace(subcategory)
	return model.TaxonomyEntry{
		Type:        strings.TrimSpace(typ),
		Category:    strings.TrimSpace(category),
		Subcategory: sub,
		Pattern:     model.NormalizeDescription(sub),
	}
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
