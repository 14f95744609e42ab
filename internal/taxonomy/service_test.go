package taxonomy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contflow/contflow/internal/model"
)

func TestLoad(t *testing.T) {
	svc, err := Load("../../testdata/plano_de_contas.csv")
	require.NoError(t, err)
	assert.Equal(t, 12, svc.Len())
	assert.True(t, svc.Contains(model.Classification{Type: "Saída", Category: "Impostos", Subcategory: "DAS"}))
	assert.False(t, svc.Contains(model.Classification{Type: "Saída", Category: "Impostos", Subcategory: "ICMS"}))
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plano.csv")
	require.NoError(t, os.WriteFile(path, []byte("Tipo;Categoria;Subcategoria\n"), 0o644))

	_, err := Load(path)
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, path, loadErr.Path)
}

func TestNewService_FillsPattern(t *testing.T) {
	svc := NewService([]model.TaxonomyEntry{{Type: "Saída", Category: "Pessoal", Subcategory: " salário "}})
	require.Equal(t, 1, svc.Len())
	assert.Equal(t, "SALÁRIO", svc.All()[0].Pattern)
	assert.Equal(t, "salário", svc.All()[0].Subcategory)
}

func TestSaveRoundTrip(t *testing.T) {
	svc := NewService(DefaultChart())
	path := filepath.Join(t.TempDir(), "accounts", "plano_de_contas.csv")
	require.NoError(t, svc.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, svc.All(), got.All())
}

func TestDefaultChart(t *testing.T) {
	chart := DefaultChart()
	require.NotEmpty(t, chart)
	for _, e := range chart {
		assert.NotEmpty(t, e.Type)
		assert.NotEmpty(t, e.Category)
		assert.NotEmpty(t, e.Pattern, "entry %s has no pattern", e.Subcategory)
	}
}
