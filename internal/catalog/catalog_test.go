package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tcg-inventory-api/internal/model"
)

const seriesJSON = `{
  "series": {
    "scarlet_violet": {
      "main_sets": [
        {"name": "Mask of Change", "code": "SV6a"},
        {"name": "Battle Partners", "code": "SV9"}
      ],
      "special_sets": [
        {"name": "Terastal Festival ex", "code": "SV8a"}
      ]
    },
    "sword_shield": {
      "main_sets": [{"name": "VSTAR Universe", "code": "S12a", "packs_per_box": 10}]
    }
  }
}`

const setsJSON = `{
  "sets": {
    "Mask of Change": {"series": "Scarlet Violet", "packs_per_box": 30},
    "Shiny Treasure ex": {"series": "Scarlet Violet"}
  }
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func referenceOf(names ...string) *Reference {
	entries := make([]model.CatalogEntry, 0, len(names))
	for _, n := range names {
		entries = append(entries, model.CatalogEntry{Name: n})
	}
	return NewReference(entries...)
}

func TestLoadSeries(t *testing.T) {
	ref := LoadSeries(writeFile(t, "series.json", seriesJSON), zaptest.NewLogger(t))

	require.Equal(t, 4, ref.Len())

	e, ok := ref.Lookup("Mask of Change")
	require.True(t, ok)
	assert.Equal(t, "SV6a", e.Code)
	assert.Equal(t, "Scarlet Violet", e.Series)
	assert.Equal(t, 30, e.PacksPerBox)

	e, ok = ref.Lookup("VSTAR Universe")
	require.True(t, ok)
	assert.Equal(t, 10, e.PacksPerBox)
	assert.Equal(t, "Sword Shield", e.Series)

	assert.Equal(t, "SV8a", ref.Code("Terastal Festival ex"))
	assert.Equal(t, UnknownCode, ref.Code("Nope"))
}

func TestLoadSets(t *testing.T) {
	ref := LoadSets(writeFile(t, "sets.json", setsJSON), zaptest.NewLogger(t))

	require.Equal(t, 2, ref.Len())
	e, ok := ref.Lookup("Shiny Treasure ex")
	require.True(t, ok)
	assert.Equal(t, "shinytreasureex", e.Code)
	assert.Equal(t, 30, e.PacksPerBox)
}

func TestLoadSoftFailure(t *testing.T) {
	logger := zaptest.NewLogger(t)

	assert.Equal(t, 0, LoadSeries(filepath.Join(t.TempDir(), "missing.json"), logger).Len())
	assert.Equal(t, 0, LoadSeries(writeFile(t, "bad.json", "{not json"), logger).Len())
	assert.Equal(t, 0, LoadSets(writeFile(t, "bad.json", "[]"), logger).Len())
}

func TestNormalize(t *testing.T) {
	t.Run("plain name folds ex variants", func(t *testing.T) {
		ref := referenceOf("Foo")
		for _, raw := range []string{"Foo EX", "foo ex", "Foo", "  FOO  "} {
			assert.Equal(t, "Foo", ref.Normalize(raw), raw)
		}
	})

	t.Run("ex name accepts plain variants", func(t *testing.T) {
		ref := referenceOf("Foo EX")
		for _, raw := range []string{"Foo EX", "foo ex", "Foo"} {
			assert.Equal(t, "Foo EX", ref.Normalize(raw), raw)
		}
	})

	t.Run("unknown name returned unchanged", func(t *testing.T) {
		ref := referenceOf("Foo")
		assert.Equal(t, "Bar Ex ", ref.Normalize("Bar Ex "))
		assert.False(t, ref.Contains(ref.Normalize("Bar")))
	})
}

func TestSeriesLabel(t *testing.T) {
	assert.Equal(t, "Scarlet Violet", SeriesLabel("scarlet_violet"))
	assert.Equal(t, "Sun Moon", SeriesLabel("SUN_moon"))
	assert.Equal(t, "", SeriesLabel(""))
	assert.Equal(t, "Écarlate Violet", SeriesLabel("écarlate_VIOLET"))
}
