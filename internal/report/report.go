// Package report aggregates ledger transactions into a cash-flow summary.
package report

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/contflow/contflow/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Line is the total of one category or subcategory.
type Line struct {
	model.Classification // Subcategory is empty on category lines
	Total                decimal.Decimal
	Count                int
	Share                decimal.Decimal // percent of the absolute movement, 1 place
	abs                  decimal.Decimal
}

// Summary is the aggregate of a set of transactions.
type Summary struct {
	Count         int
	Inflow        decimal.Decimal // sum of positive amounts
	Outflow       decimal.Decimal // sum of negative amounts, negative
	Net           decimal.Decimal
	Categories    []Line // by type, category
	Subcategories []Line // by type, category, subcategory
}

// Summarize aggregates txns. Lines are ordered by type, category and
// subcategory, with unclassified lines last.
func Summarize(txns []model.Transaction) Summary {
	var s Summary
	cats := make(map[model.Classification]*Line)
	subs := make(map[model.Classification]*Line)
	movement := decimal.Zero

	for _, t := range txns {
		s.Count++
		if t.Amount.IsPositive() {
			s.Inflow = s.Inflow.Add(t.Amount)
		} else {
			s.Outflow = s.Outflow.Add(t.Amount)
		}
		movement = movement.Add(t.Amount.Abs())

		catKey := model.Classification{Type: t.Type, Category: t.Category}
		add(cats, catKey, t.Amount)
		add(subs, t.Classification, t.Amount)
	}
	s.Net = s.Inflow.Add(s.Outflow)
	s.Categories = lines(cats, movement)
	s.Subcategories = lines(subs, movement)
	return s
}

func add(m map[model.Classification]*Line, key model.Classification, amount decimal.Decimal) {
	l, ok := m[key]
	if !ok {
		l = &Line{Classification: key}
		m[key] = l
	}
	l.Total = l.Total.Add(amount)
	l.abs = l.abs.Add(amount.Abs())
	l.Count++
}

func lines(m map[model.Classification]*Line, movement decimal.Decimal) []Line {
	out := make([]Line, 0, len(m))
	for _, l := range m {
		if !movement.IsZero() {
			l.Share = l.abs.Mul(hundred).Div(movement).Round(1)
		}
		out = append(out, *l)
	}
	slices.SortFunc(out, func(a, b Line) int {
		au, bu := a.Type == model.UnclassifiedLabel, b.Type == model.UnclassifiedLabel
		if au != bu {
			if au {
				return 1
			}
			return -1
		}
		return cmp.Or(
			cmp.Compare(a.Type, b.Type),
			cmp.Compare(a.Category, b.Category),
			cmp.Compare(a.Subcategory, b.Subcategory),
		)
	})
	return out
}
