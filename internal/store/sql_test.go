package store

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contflow/contflow/internal/logger"
	"github.com/contflow/contflow/internal/model"
)

func openTestStore(t *testing.T) (*SQLStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contflow.db")
	s, err := Open(context.Background(), DriverSQLite, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func txn(day int, amount, desc string, c model.Classification) model.Transaction {
	return model.Transaction{
		Date:           date(2024, 3, day),
		Amount:         decimal.RequireFromString(amount),
		Description:    desc,
		Classification: c,
	}
}

func TestOpen_LogsThroughContextLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Level: "debug", Format: logger.FormatJSON, Out: &buf})
	ctx := logger.WithContext(context.Background(), log)

	s, err := Open(ctx, DriverSQLite, filepath.Join(t.TempDir(), "contflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	assert.Contains(t, buf.String(), `"message":"store opened"`)
	assert.Contains(t, buf.String(), `"driver":"sqlite"`)
}

var tarifa = model.Classification{Type: "Saída", Category: "Despesas Bancárias", Subcategory: "Tarifa"}

func TestAppendTransactions_InsertOrIgnore(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	batch := []model.Transaction{
		txn(1, "-12.50", "Tarifa mensal", tarifa),
		txn(2, "1500.00", "Pix recebido", model.Unclassified),
	}
	ids, err := s.AppendTransactions(ctx, batch)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.NotZero(t, ids[0])
	assert.NotZero(t, ids[1])

	// Same batch again plus one new row: only the new row is inserted.
	again := append(batch, txn(3, "-80.00", "Posto Shell", model.Unclassified))
	ids, err = s.AppendTransactions(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, int64(0), ids[0])
	assert.Equal(t, int64(0), ids[1])
	assert.NotZero(t, ids[2])

	all, err := s.ListTransactions(ctx, DateRange{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestAppendTransactions_DuplicateWithinBatch(t *testing.T) {
	s, _ := openTestStore(t)

	row := txn(1, "-12.5", "Tarifa mensal", tarifa)
	ids, err := s.AppendTransactions(context.Background(), []model.Transaction{row, row})
	require.NoError(t, err)
	assert.NotZero(t, ids[0])
	assert.Zero(t, ids[1])
}

func TestAppendTransactions_AmountScaleIsCanonical(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	_, err := s.AppendTransactions(ctx, []model.Transaction{txn(1, "-12.5", "Tarifa", tarifa)})
	require.NoError(t, err)

	// -12.50 is the same amount and must collide.
	ids, err := s.AppendTransactions(ctx, []model.Transaction{txn(1, "-12.50", "Tarifa", tarifa)})
	require.NoError(t, err)
	assert.Zero(t, ids[0])
}

func TestAppendTransactions_Empty(t *testing.T) {
	s, _ := openTestStore(t)
	ids, err := s.AppendTransactions(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestConcurrentOverlappingImports(t *testing.T) {
	_, path := openTestStore(t)
	ctx := context.Background()

	batch := []model.Transaction{
		txn(1, "-10.00", "A", tarifa),
		txn(2, "-20.00", "B", tarifa),
		txn(3, "-30.00", "C", tarifa),
	}

	// Two independent handles on the same file, as two processes would have.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := Open(ctx, DriverSQLite, path)
			if err != nil {
				errs[i] = err
				return
			}
			defer s.Close()
			_, errs[i] = s.AppendTransactions(ctx, batch)
		}()
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	s, err := Open(ctx, DriverSQLite, path)
	require.NoError(t, err)
	defer s.Close()
	all, err := s.ListTransactions(ctx, DateRange{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGetTransaction(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	ids, err := s.AppendTransactions(ctx, []model.Transaction{txn(5, "-12.50", "Tarifa mensal", tarifa)})
	require.NoError(t, err)

	got, err := s.GetTransaction(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, ids[0], got.ID)
	assert.Equal(t, "2024-03-05", got.DateString())
	assert.Equal(t, "-12.50", got.Amount.StringFixed(2))
	assert.Equal(t, "Tarifa mensal", got.Description)
	assert.Equal(t, tarifa, got.Classification)

	_, err = s.GetTransaction(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListTransactions_DateRange(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	_, err := s.AppendTransactions(ctx, []model.Transaction{
		txn(10, "-3.00", "C", tarifa),
		txn(1, "-1.00", "A", tarifa),
		txn(5, "-2.00", "B", tarifa),
	})
	require.NoError(t, err)

	got, err := s.ListTransactions(ctx, DateRange{From: date(2024, 3, 2), To: date(2024, 3, 10)})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].Description)
	assert.Equal(t, "C", got[1].Description)

	got, err = s.ListTransactions(ctx, DateRange{To: date(2024, 3, 5)})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Description)
}

func TestUpdateClassification(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	ids, err := s.AppendTransactions(ctx, []model.Transaction{
		txn(1, "900.00", "Cliente XPTO", model.Unclassified),
		txn(2, "-12.50", "Tarifa", tarifa),
	})
	require.NoError(t, err)

	pending, err := s.ListUnclassified(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, ids[0], pending[0].ID)

	servicos := model.Classification{Type: "Entrada", Category: "Vendas", Subcategory: "Serviços"}
	require.NoError(t, s.UpdateClassification(ctx, ids[0], servicos))

	got, err := s.GetTransaction(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, servicos, got.Classification)

	pending, err = s.ListUnclassified(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	err = s.UpdateClassification(ctx, 9999, servicos)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRules_UpsertLastWriteWins(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	_, ok, err := s.GetRule(ctx, "CLIENTE XPTO")
	require.NoError(t, err)
	assert.False(t, ok)

	first := model.Rule{Description: "CLIENTE XPTO", Classification: model.Classification{Type: "Entrada", Category: "Receitas", Subcategory: "Vendas"}}
	second := model.Rule{Description: "CLIENTE XPTO", Classification: model.Classification{Type: "Entrada", Category: "Vendas", Subcategory: "Serviços"}}
	require.NoError(t, s.UpsertRule(ctx, first))
	require.NoError(t, s.UpsertRule(ctx, second))

	got, ok, err := s.GetRule(ctx, "CLIENTE XPTO")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, second, got)

	rules, err := s.ListRules(ctx)
	require.NoError(t, err)
	assert.Len(t, rules, 1)
}

func TestReopenKeepsData(t *testing.T) {
	s, path := openTestStore(t)
	ctx := context.Background()

	_, err := s.AppendTransactions(ctx, []model.Transaction{txn(1, "-1.00", "A", tarifa)})
	require.NoError(t, err)
	require.NoError(t, s.UpsertRule(ctx, model.Rule{Description: "A", Classification: tarifa}))
	require.NoError(t, s.Close())

	s2, err := Open(ctx, DriverSQLite, path)
	require.NoError(t, err)
	defer s2.Close()

	all, err := s2.ListTransactions(ctx, DateRange{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
	_, ok, err := s2.GetRule(ctx, "A")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}
