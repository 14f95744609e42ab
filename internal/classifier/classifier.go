// Package classifier assigns a (type, category, subcategory) triple to a
// transaction description.
//
// Learned rules are consulted first and always win. Otherwise the chart of
// accounts is scanned in file order and the first entry whose subcategory
// appears in the description as a whole word is used. Descriptions that
// match nothing are unclassified.
package classifier

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/contflow/contflow/internal/model"
)

// Source tells which layer produced a classification.
type Source string

const (
	SourceRule     Source = "rule"
	SourceTaxonomy Source = "taxonomy"
	SourceNone     Source = "none"
)

// RuleLookup finds a learned rule by normalised description.
type RuleLookup interface {
	GetRule(ctx context.Context, description string) (model.Rule, bool, error)
}

// Taxonomy yields chart entries in match order.
type Taxonomy interface {
	All() []model.TaxonomyEntry
}

// Result is the outcome of Classify.
type Result struct {
	model.Classification
	Source Source
}

// Classifier is safe for concurrent use as long as its RuleLookup is.
type Classifier struct {
	rules    RuleLookup
	taxonomy Taxonomy
}

// New creates a Classifier. rules may be nil to classify with the taxonomy only.
func New(rules RuleLookup, taxonomy Taxonomy) *Classifier {
	return &Classifier{rules: rules, taxonomy: taxonomy}
}

// Classify returns the classification for description.
func (c *Classifier) Classify(ctx context.Context, description string) (Result, error) {
	norm := model.NormalizeDescription(description)

	if c.rules != nil && norm != "" {
		rule, ok, err := c.rules.GetRule(ctx, norm)
		if err != nil {
			return Result{}, fmt.Errorf("looking up rule: %w", err)
		}
		if ok {
			return Result{Classification: rule.Classification, Source: SourceRule}, nil
		}
	}

	if e, ok := Match(c.taxonomy.All(), norm); ok {
		return Result{Classification: e.Classification(), Source: SourceTaxonomy}, nil
	}
	return Result{Classification: model.Unclassified, Source: SourceNone}, nil
}

// Match returns the first entry whose pattern occurs in the normalised
// description as a whole word.
func Match(entries []model.TaxonomyEntry, normalized string) (model.TaxonomyEntry, bool) {
	for _, e := range entries {
		if e.Pattern != "" && ContainsWord(normalized, e.Pattern) {
			return e, true
		}
	}
	return model.TaxonomyEntry{}, false
}

// ContainsWord reports whether word occurs in s bounded on both sides by the
// string edge or a rune that is neither a letter nor a digit. Both arguments
// must already be normalised to the same case. "TAX" is found in "PAY TAX"
// and "TAX-2024" but not in "SYNTAX" or "TAXI".
func ContainsWord(s, word string) bool {
	if word == "" {
		return false
	}
	for from := 0; from <= len(s)-len(word); {
		i := strings.Index(s[from:], word)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(word)
		if boundaryBefore(s, start) && boundaryAfter(s, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(s[start:])
		from = start + size
	}
	return false
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}
