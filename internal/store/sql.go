package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // registers "sqlite"

	"github.com/contflow/contflow/internal/logger"
	"github.com/contflow/contflow/internal/model"
)

const txnColumns = "id, data, valor, descricao, tipo, categoria, subcategoria"

// SQLStore implements Store over database/sql.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

var _ Store = (*SQLStore)(nil)

// Open connects to the database and creates the schema if needed.
// driver is "sqlite" (dsn is a file path or ":memory:") or "postgres"
// (dsn is a pgx connection string).
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.sqlDriver, d.dsn(dsn))
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", d.name, err)
	}
	if d.name == DriverSQLite {
		// One connection: in-memory databases are per connection, and the
		// file is only ever written by one goroutine.
		db.SetMaxOpenConns(1)
	}

	s := &SQLStore{db: db, dialect: d}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	log := logger.FromContext(ctx)
	log.Debug().Str("driver", d.name).Msg("store opened")
	return s, nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// AppendTransactions inserts txns in a single database transaction.
func (s *SQLStore) AppendTransactions(ctx context.Context, txns []model.Transaction) ([]int64, error) {
	ids := make([]int64, len(txns))
	if len(txns) == 0 {
		return ids, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.dialect.rebind(`
		INSERT INTO lancamentos (data, valor, descricao, tipo, categoria, subcategoria)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (data, valor, descricao) DO NOTHING
		RETURNING id`))
	if err != nil {
		return nil, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range txns {
		err := stmt.QueryRowContext(ctx,
			t.DateString(), t.Amount.StringFixed(2), t.Description,
			t.Type, t.Category, t.Subcategory,
		).Scan(&ids[i])
		if errors.Is(err, sql.ErrNoRows) {
			ids[i] = 0
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("inserting transaction %s %s %q: %w", t.DateString(), t.Amount.StringFixed(2), t.Description, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transactions: %w", err)
	}
	return ids, nil
}

// GetTransaction returns the transaction with id, or ErrNotFound.
func (s *SQLStore) GetTransaction(ctx context.Context, id int64) (model.Transaction, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.rebind(`SELECT `+txnColumns+` FROM lancamentos WHERE id = ?`), id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("reading transaction %d: %w", id, err)
	}
	return t, nil
}

// ListTransactions returns transactions in r ordered by date, then id.
func (s *SQLStore) ListTransactions(ctx context.Context, r DateRange) ([]model.Transaction, error) {
	query := `SELECT ` + txnColumns + ` FROM lancamentos WHERE 1 = 1`
	var args []any
	if !r.From.IsZero() {
		query += ` AND data >= ?`
		args = append(args, r.From.Format(model.DateFormat))
	}
	if !r.To.IsZero() {
		query += ` AND data <= ?`
		args = append(args, r.To.Format(model.DateFormat))
	}
	query += ` ORDER BY data, id`
	return s.queryTransactions(ctx, query, args...)
}

// ListUnclassified returns transactions still carrying the unclassified
// category, oldest first.
func (s *SQLStore) ListUnclassified(ctx context.Context) ([]model.Transaction, error) {
	return s.queryTransactions(ctx,
		`SELECT `+txnColumns+` FROM lancamentos WHERE categoria = ? ORDER BY data, id`,
		model.UnclassifiedLabel)
}

// UpdateClassification rewrites the classification of one transaction.
func (s *SQLStore) UpdateClassification(ctx context.Context, id int64, c model.Classification) error {
	res, err := s.db.ExecContext(ctx, s.dialect.rebind(
		`UPDATE lancamentos SET tipo = ?, categoria = ?, subcategoria = ? WHERE id = ?`),
		c.Type, c.Category, c.Subcategory, id)
	if err != nil {
		return fmt.Errorf("updating transaction %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating transaction %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	return nil
}

// GetRule looks up the rule for a normalised description.
func (s *SQLStore) GetRule(ctx context.Context, description string) (model.Rule, bool, error) {
	var r model.Rule
	err := s.db.QueryRowContext(ctx, s.dialect.rebind(
		`SELECT descricao, tipo, categoria, subcategoria FROM regras_classificacao WHERE descricao = ?`),
		description).Scan(&r.Description, &r.Type, &r.Category, &r.Subcategory)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Rule{}, false, nil
	}
	if err != nil {
		return model.Rule{}, false, fmt.Errorf("reading rule %q: %w", description, err)
	}
	return r, true, nil
}

// UpsertRule stores rule, replacing any rule with the same description.
func (s *SQLStore) UpsertRule(ctx context.Context, rule model.Rule) error {
	_, err := s.db.ExecContext(ctx, s.dialect.rebind(`
		INSERT INTO regras_classificacao (descricao, tipo, categoria, subcategoria)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (descricao) DO UPDATE SET
			tipo = excluded.tipo,
			categoria = excluded.categoria,
			subcategoria = excluded.subcategoria`),
		rule.Description, rule.Type, rule.Category, rule.Subcategory)
	if err != nil {
		return fmt.Errorf("upserting rule %q: %w", rule.Description, err)
	}
	return nil
}

// ListRules returns all rules ordered by description.
func (s *SQLStore) ListRules(ctx context.Context) ([]model.Rule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT descricao, tipo, categoria, subcategoria FROM regras_classificacao ORDER BY descricao`)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	defer rows.Close()

	var rules []model.Rule
	for rows.Next() {
		var r model.Rule
		if err := rows.Scan(&r.Description, &r.Type, &r.Category, &r.Subcategory); err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	return rules, nil
}

func (s *SQLStore) queryTransactions(ctx context.Context, query string, args ...any) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	return txns, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(sc scanner) (model.Transaction, error) {
	var (
		t      model.Transaction
		date   string
		amount decimal.Decimal
	)
	if err := sc.Scan(&t.ID, &date, &amount, &t.Description, &t.Type, &t.Category, &t.Subcategory); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return t, err
		}
		return t, fmt.Errorf("scanning transaction: %w", err)
	}

	d, err := time.Parse(model.DateFormat, date)
	if err != nil {
		return t, fmt.Errorf("transaction %d has bad date %q: %w", t.ID, date, err)
	}
	t.Date = d
	t.Amount = amount
	return t, nil
}
