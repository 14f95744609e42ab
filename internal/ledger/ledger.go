// Package ledger is the read and correction side of the stored ledger.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/contflow/contflow/internal/logger"
	"github.com/contflow/contflow/internal/model"
	"github.com/contflow/contflow/internal/store"
)

// ErrTransactionNotFound is returned when a correction names an unknown id.
var ErrTransactionNotFound = errors.New("transaction not found")

// ValidationError describes a rejected correction.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RuleUpsertError is returned by RecordCorrection when the transaction was
// reclassified but the learned rule could not be written. The rule for
// Description still holds its previous value.
type RuleUpsertError struct {
	TransactionID int64
	Description   string
	Err           error
}

func (e *RuleUpsertError) Error() string {
	return fmt.Sprintf("transaction %d reclassified but rule %q not saved: %v", e.TransactionID, e.Description, e.Err)
}

func (e *RuleUpsertError) Unwrap() error { return e.Err }

// Service queries and corrects the ledger.
type Service struct {
	store store.Store
}

// NewService creates a ledger Service.
func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// Query returns the transactions in r, ordered by date then id.
func (s *Service) Query(ctx context.Context, r store.DateRange) ([]model.Transaction, error) {
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return nil, ValidationError{Field: "to", Message: "before from"}
	}
	txns, err := s.store.ListTransactions(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("querying ledger: %w", err)
	}
	return txns, nil
}

// Unclassified returns the transactions awaiting manual classification.
func (s *Service) Unclassified(ctx context.Context) ([]model.Transaction, error) {
	txns, err := s.store.ListUnclassified(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing unclassified: %w", err)
	}
	return txns, nil
}

// Rules returns the learned classification rules.
func (s *Service) Rules(ctx context.Context) ([]model.Rule, error) {
	rules, err := s.store.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	return rules, nil
}

// RecordCorrection reclassifies transaction id as c and records a rule so
// later imports of the same description get c. The transaction is updated
// first; a failure to write the rule afterwards is a *RuleUpsertError.
func (s *Service) RecordCorrection(ctx context.Context, id int64, c model.Classification) (model.Transaction, error) {
	c, err := validate(c)
	if err != nil {
		return model.Transaction{}, err
	}

	txn, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return model.Transaction{}, notFound(id, err)
	}
	if err := s.store.UpdateClassification(ctx, id, c); err != nil {
		return model.Transaction{}, notFound(id, err)
	}
	txn.Classification = c

	rule := model.Rule{Description: model.NormalizeDescription(txn.Description), Classification: c}
	if err := s.store.UpsertRule(ctx, rule); err != nil {
		return txn, &RuleUpsertError{TransactionID: id, Description: rule.Description, Err: err}
	}

	log := logger.FromContext(ctx)
	log.Info().
		Int64("id", id).
		Str("rule", rule.Description).
		Str("category", c.Category).
		Str("subcategory", c.Subcategory).
		Msg("correction recorded")
	return txn, nil
}

// validate trims c and puts its type in canonical form.
func validate(c model.Classification) (model.Classification, error) {
	c = model.Classification{
		Type:        strings.TrimSpace(c.Type),
		Category:    strings.TrimSpace(c.Category),
		Subcategory: strings.TrimSpace(c.Subcategory),
	}
	if c.Type == "" {
		return c, ValidationError{Field: "type", Message: "must not be empty"}
	}
	t, ok := model.ParseType(c.Type)
	if !ok {
		return c, ValidationError{Field: "type", Message: fmt.Sprintf("must be %q or %q, got %q", model.TypeInflow, model.TypeOutflow, c.Type)}
	}
	c.Type = t
	switch {
	case c.Category == "":
		return c, ValidationError{Field: "category", Message: "must not be empty"}
	case c.Subcategory == "":
		return c, ValidationError{Field: "subcategory", Message: "must not be empty"}
	}
	return c, nil
}

func notFound(id int64, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("transaction %d: %w", id, ErrTransactionNotFound)
	}
	return fmt.Errorf("correcting transaction %d: %w", id, err)
}
