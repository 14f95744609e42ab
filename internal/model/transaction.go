package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/contflow/contflow/internal/textnorm"
)

// DateFormat is the ISO calendar-date layout used for stored dates.
const DateFormat = "2006-01-02"

// UnclassifiedLabel fills every field of the unclassified triple.
const UnclassifiedLabel = "Não Classificado"

// Unclassified is assigned when neither a rule nor the taxonomy matches.
var Unclassified = Classification{
	Type:        UnclassifiedLabel,
	Category:    UnclassifiedLabel,
	Subcategory: UnclassifiedLabel,
}

// Types of a classification.
const (
	TypeInflow  = "Entrada"
	TypeOutflow = "Saída"
)

// ParseType returns the type named by s, ignoring case and accents.
// "saida" -> "Saída"
func ParseType(s string) (string, bool) {
	switch textnorm.Fold(s) {
	case "entrada":
		return TypeInflow, true
	case "saida":
		return TypeOutflow, true
	}
	return "", false
}

// Classification is a (type, category, subcategory) triple.
type Classification struct {
	Type        string
	Category    string
	Subcategory string
}

// IsUnclassified reports whether c is the unclassified sentinel.
func (c Classification) IsUnclassified() bool {
	return c == Unclassified
}

// Transaction is a row of the ledger.
type Transaction struct {
	ID          int64 // 0 until stored
	Date        time.Time
	Amount      decimal.Decimal // negative = outflow, positive = inflow
	Description string
	Classification
}

// DateString returns the ISO form of the transaction date.
func (t Transaction) DateString() string {
	return t.Date.Format(DateFormat)
}

// Rule is a learned classification for one normalised description.
type Rule struct {
	Description string // normalised, see NormalizeDescription
	Classification
}

// NormalizeDescription trims and upper-cases a description. Rules are keyed
// by this form.
func NormalizeDescription(desc string) string {
	return textnorm.Upper(desc)
}
