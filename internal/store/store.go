// Package store persists the ledger and the classification rules.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/contflow/contflow/internal/model"
)

//go:generate mockgen -source=store.go -destination=store_mock.go -package=store

// ErrNotFound is returned when a transaction id does not exist.
var ErrNotFound = errors.New("not found")

// DateRange bounds a ledger query. Both ends are inclusive; a zero time
// leaves that end open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Store is the ledger plus the rule table.
type Store interface {
	// AppendTransactions inserts txns in one database transaction with
	// insert-or-ignore semantics over (date, amount, description). The
	// returned slice is parallel to txns: the new row id, or 0 for a
	// duplicate.
	AppendTransactions(ctx context.Context, txns []model.Transaction) ([]int64, error)
	GetTransaction(ctx context.Context, id int64) (model.Transaction, error)
	ListTransactions(ctx context.Context, r DateRange) ([]model.Transaction, error)
	ListUnclassified(ctx context.Context) ([]model.Transaction, error)
	UpdateClassification(ctx context.Context, id int64, c model.Classification) error

	// GetRule looks up a rule by normalised description.
	GetRule(ctx context.Context, description string) (model.Rule, bool, error)
	// UpsertRule inserts the rule or replaces the one with the same description.
	UpsertRule(ctx context.Context, rule model.Rule) error
	ListRules(ctx context.Context) ([]model.Rule, error)

	Close() error
}
