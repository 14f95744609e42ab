package classifier

import (
	"context"

	"github.com/contflow/contflow/internal/model"
)

// RuleSet is an in-memory snapshot of the rule table. An import classifies
// every row against one snapshot so a concurrent correction cannot make rows
// of the same batch disagree.
type RuleSet map[string]model.Rule

// NewRuleSet indexes rules by description.
func NewRuleSet(rules []model.Rule) RuleSet {
	rs := make(RuleSet, len(rules))
	for _, r := range rules {
		rs[r.Description] = r
	}
	return rs
}

// GetRule implements RuleLookup.
func (rs RuleSet) GetRule(_ context.Context, description string) (model.Rule, bool, error) {
	r, ok := rs[description]
	return r, ok, nil
}
