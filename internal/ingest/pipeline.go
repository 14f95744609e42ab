// Package ingest turns raw statement rows into stored, classified ledger
// transactions.
package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/contflow/contflow/internal/classifier"
	"github.com/contflow/contflow/internal/id"
	"github.com/contflow/contflow/internal/importer"
	"github.com/contflow/contflow/internal/logger"
	"github.com/contflow/contflow/internal/model"
	"github.com/contflow/contflow/internal/store"
)

// Rejection is a row that could not be normalised. Err is a
// MalformedDateError, MalformedAmountError or MalformedRowError.
type Rejection struct {
	Line int
	Err  error
}

// Row is a normalised, classified statement row.
type Row struct {
	Line int
	model.Transaction
	Source    classifier.Source
	Duplicate bool // already in the ledger, or repeated earlier in the batch
}

// Report summarises one batch.
type Report struct {
	BatchID    string
	File       string
	Inserted   int
	Duplicates int
	Rejected   []Rejection
	Rows       []Row // input order, inserted and duplicate rows
}

// Pipeline normalises, classifies and stores statement rows.
type Pipeline struct {
	store    store.Store
	taxonomy classifier.Taxonomy
	now      func() time.Time
}

// New creates a Pipeline.
func New(s store.Store, taxonomy classifier.Taxonomy) *Pipeline {
	return &Pipeline{store: s, taxonomy: taxonomy, now: time.Now}
}

// RunFile parses path with p and runs the rows through the pipeline.
func (p *Pipeline) RunFile(ctx context.Context, parser importer.Parser, path string) (*Report, error) {
	rows, err := importer.ParseFile(parser, path)
	if err != nil {
		return nil, err
	}
	rep, err := p.Run(ctx, rows)
	if err != nil {
		return nil, err
	}
	rep.File = filepath.Base(path)
	return rep, nil
}

// Run processes one batch. Row-level problems are collected in the report;
// an error is returned only when the batch could not be stored, in which
// case nothing from it was written.
func (p *Pipeline) Run(ctx context.Context, raw []model.RawRow) (*Report, error) {
	log := logger.FromContext(ctx)

	rules, err := p.store.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}
	cls := classifier.New(classifier.NewRuleSet(rules), p.taxonomy)

	rep := &Report{BatchID: id.NewBatchID(p.now())}
	var txns []model.Transaction
	for _, r := range raw {
		txn, err := normalize(r)
		if err != nil {
			rep.Rejected = append(rep.Rejected, Rejection{Line: r.Line, Err: err})
			log.Debug().Str("batch", rep.BatchID).Err(err).Msg("row rejected")
			continue
		}
		res, err := cls.Classify(ctx, txn.Description)
		if err != nil {
			return nil, fmt.Errorf("classifying line %d: %w", r.Line, err)
		}
		txn.Classification = res.Classification
		txns = append(txns, txn)
		rep.Rows = append(rep.Rows, Row{Line: r.Line, Transaction: txn, Source: res.Source})
	}

	if len(txns) > 0 {
		ids, err := p.store.AppendTransactions(ctx, txns)
		if err != nil {
			return nil, fmt.Errorf("storing batch %s: %w", rep.BatchID, err)
		}
		for i, rowID := range ids {
			if rowID == 0 {
				rep.Rows[i].Duplicate = true
				rep.Duplicates++
				continue
			}
			rep.Rows[i].ID = rowID
			rep.Inserted++
		}
	}

	log.Info().
		Str("batch", rep.BatchID).
		Int("inserted", rep.Inserted).
		Int("duplicates", rep.Duplicates).
		Int("rejected", len(rep.Rejected)).
		Msg("batch imported")
	return rep, nil
}

func normalize(r model.RawRow) (model.Transaction, error) {
	if r.Fields != model.RawColumns {
		return model.Transaction{}, MalformedRowError{Line: r.Line, Fields: r.Fields}
	}
	date, err := ParseDate(r.Date)
	if err != nil {
		return model.Transaction{}, MalformedDateError{Line: r.Line, Value: r.Date}
	}
	amount, err := ParseAmount(r.Amount)
	if err != nil {
		return model.Transaction{}, MalformedAmountError{Line: r.Line, Value: r.Amount}
	}
	return model.Transaction{
		Date:        date,
		Amount:      amount,
		Description: strings.TrimSpace(r.Description),
	}, nil
}
