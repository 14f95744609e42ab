package taxonomy

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTestdata(t *testing.T) {
	f, err := os.Open("../../testdata/plano_de_contas.csv")
	require.NoError(t, err)
	defer f.Close()

	entries, err := ReadEntries(f)
	require.NoError(t, err)
	require.Len(t, entries, 12)

	assert.Equal(t, "Entrada", entries[0].Type)
	assert.Equal(t, "Receitas", entries[0].Category)
	assert.Equal(t, "Vendas", entries[0].Subcategory)
	assert.Equal(t, "VENDAS", entries[0].Pattern)

	assert.Equal(t, "SERVIÇOS", entries[1].Pattern)
	assert.Equal(t, "TARIFA PIX", entries[11].Pattern)
}

func TestReadEntries_HeaderByName(t *testing.T) {
	// Columns in a different order, accented and upper-cased, with an extra column.
	data := "\ufeffSUBCATEGÓRIA,Notas,tipo,CATEGORIA\n Aluguel ,sala,Saída,Despesas Fixas\n"
	entries, err := ReadEntries(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, "Saída", entries[0].Type)
	assert.Equal(t, "Despesas Fixas", entries[0].Category)
	assert.Equal(t, "Aluguel", entries[0].Subcategory)
	assert.Equal(t, "ALUGUEL", entries[0].Pattern)
}

func TestReadEntries_SkipsBlankRows(t *testing.T) {
	data := "Tipo,Categoria,Subcategoria\n,,\nSaída,Impostos,DAS\n"
	entries, err := ReadEntries(strings.NewReader(data))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReadEntries_MissingColumn(t *testing.T) {
	_, err := ReadEntries(strings.NewReader("Tipo,Categoria\nSaída,Impostos\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Subcategoria")
}

func TestReadEntries_Empty(t *testing.T) {
	_, err := ReadEntries(strings.NewReader(""))
	assert.Error(t, err)

	_, err = ReadEntries(strings.NewReader("Tipo,Categoria,Subcategoria\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no entries")
}

func TestReadEntries_ShortRow(t *testing.T) {
	_, err := ReadEntries(strings.NewReader("Tipo,Categoria,Subcategoria\nSaída,Impostos\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestDefaultChartRoundTrip(t *testing.T) {
	chart := DefaultChart()

	var buf bytes.Buffer
	require.NoError(t, WriteEntries(&buf, chart))

	got, err := ReadEntries(&buf)
	require.NoError(t, err)
	require.Len(t, got, len(chart))
	for i := range chart {
		assert.Equal(t, chart[i], got[i])
	}
}
