package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contflow/contflow/internal/model"
	"github.com/contflow/contflow/internal/taxonomy"
)

func testTaxonomy(t *testing.T) *taxonomy.Service {
	t.Helper()
	svc, err := taxonomy.Load("../../testdata/plano_de_contas.csv")
	require.NoError(t, err)
	return svc
}

func TestContainsWord(t *testing.T) {
	tests := []struct {
		s, word string
		want    bool
	}{
		{"PAY TAX", "TAX", true},
		{"TAX", "TAX", true},
		{"TAX-2024 DARF", "TAX", true},
		{"(TAX)", "TAX", true},
		{"SYNTAX ERROR", "TAX", false},
		{"TAXI AEROPORTO", "TAX", false},
		{"SYNTAX TAX", "TAX", true},
		{"PAGAMENTO SERVIÇOS GERAIS", "SERVIÇOS", true},
		{"PRESTAÇÃOSERVIÇOS", "SERVIÇOS", false},
		{"ÇTAX", "TAX", false},
		{"TARIFA PIX", "TARIFA PIX", true},
		{"TARIFA PIXEL", "TARIFA PIX", false},
		{"", "TAX", false},
		{"TAX", "", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ContainsWord(tt.s, tt.word), "ContainsWord(%q, %q)", tt.s, tt.word)
	}
}

func TestClassify_TaxonomyFirstMatchWins(t *testing.T) {
	c := New(nil, testTaxonomy(t))

	// "Tarifa" precedes "Tarifa Pix" in the chart, so it wins.
	res, err := c.Classify(context.Background(), "Tarifa Pix enviado")
	require.NoError(t, err)
	assert.Equal(t, SourceTaxonomy, res.Source)
	assert.Equal(t, "Tarifa", res.Subcategory)
	assert.Equal(t, "Despesas Bancárias", res.Category)
	assert.Equal(t, "Saída", res.Type)
}

func TestClassify_CaseInsensitive(t *testing.T) {
	c := New(nil, testTaxonomy(t))

	res, err := c.Classify(context.Background(), "  pagamento aluguel sala 3 ")
	require.NoError(t, err)
	assert.Equal(t, "Aluguel", res.Subcategory)
}

func TestClassify_WholeWordOnly(t *testing.T) {
	c := New(nil, testTaxonomy(t))

	res, err := c.Classify(context.Background(), "SYNTAX SOFTWARE LTDA")
	require.NoError(t, err)
	assert.Equal(t, SourceNone, res.Source)
	assert.True(t, res.IsUnclassified())

	res, err = c.Classify(context.Background(), "IRRF TAX retido")
	require.NoError(t, err)
	assert.Equal(t, "TAX", res.Subcategory)
}

func TestClassify_Unclassified(t *testing.T) {
	c := New(NewRuleSet(nil), testTaxonomy(t))

	res, err := c.Classify(context.Background(), "Transferência recebida")
	require.NoError(t, err)
	assert.Equal(t, model.Unclassified, res.Classification)
	assert.Equal(t, SourceNone, res.Source)
}

func TestClassify_RulePrecedence(t *testing.T) {
	// The description also matches the "Aluguel" taxonomy entry.
	rule := model.Rule{
		Description:    "ALUGUEL JOÃO",
		Classification: model.Classification{Type: "Entrada", Category: "Receitas", Subcategory: "Sublocação"},
	}
	c := New(NewRuleSet([]model.Rule{rule}), testTaxonomy(t))

	res, err := c.Classify(context.Background(), " aluguel joão ")
	require.NoError(t, err)
	assert.Equal(t, SourceRule, res.Source)
	assert.Equal(t, rule.Classification, res.Classification)

	// A different description still falls through to the taxonomy.
	res, err = c.Classify(context.Background(), "aluguel maria")
	require.NoError(t, err)
	assert.Equal(t, SourceTaxonomy, res.Source)
	assert.Equal(t, "Aluguel", res.Subcategory)
}

func TestClassify_Deterministic(t *testing.T) {
	c := New(nil, testTaxonomy(t))

	first, err := c.Classify(context.Background(), "Energia e Internet março")
	require.NoError(t, err)
	for range 20 {
		again, err := c.Classify(context.Background(), "Energia e Internet março")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	// File order decides: Energia comes before Internet.
	assert.Equal(t, "Energia", first.Subcategory)
}

type failingRules struct{}

func (failingRules) GetRule(context.Context, string) (model.Rule, bool, error) {
	return model.Rule{}, false, errors.New("database is locked")
}

func TestClassify_RuleLookupError(t *testing.T) {
	c := New(failingRules{}, testTaxonomy(t))

	_, err := c.Classify(context.Background(), "aluguel")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
}

func TestMatch_SkipsEmptyPattern(t *testing.T) {
	entries := []model.TaxonomyEntry{
		{Type: "Saída", Category: "Outros", Subcategory: "", Pattern: ""},
		taxonomy.NewEntry("Saída", "Impostos", "DAS"),
	}
	e, ok := Match(entries, "PAGAMENTO DAS")
	require.True(t, ok)
	assert.Equal(t, "DAS", e.Subcategory)
}
