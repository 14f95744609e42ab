package taxonomy

import "github.com/contflow/contflow/internal/model"

// DefaultChart returns the chart of accounts written by `contflow init`.
// More specific subcategories come first because the first match wins.
func DefaultChart() []model.TaxonomyEntry {
	rows := [][3]string{
		{"Entrada", "Receitas", "Vendas"},
		{"Entrada", "Receitas", "Serviços"},
		{"Entrada", "Receitas Financeiras", "Rendimento"},
		{"Saída", "Impostos", "DAS"},
		{"Saída", "Impostos", "IPTU"},
		{"Saída", "Despesas Fixas", "Aluguel"},
		{"Saída", "Despesas Fixas", "Energia"},
		{"Saída", "Despesas Fixas", "Internet"},
		{"Saída", "Despesas Fixas", "Contabilidade"},
		{"Saída", "Pessoal", "Salário"},
		{"Saída", "Despesas Variáveis", "Combustível"},
		{"Saída", "Despesas Variáveis", "Fornecedor"},
		{"Saída", "Despesas Bancárias", "Tarifa"},
	}
	chart := make([]model.TaxonomyEntry, len(rows))
	for i, r := range rows {
		chart[i] = NewEntry(r[0], r[1], r[2])
	}
	return chart
}
