package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tcg-inventory-api/internal/model"
)

func TestFileDocumentRepository(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "inventory.json")

	repo, err := NewFileDocumentRepository(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	stamp := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return stamp }

	doc, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentVersion, doc.Metadata.Version)
	assert.Empty(t, doc.Opened.Sets)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	doc.Stashed.Sets["Mask of Change"] = &model.StashedSet{
		BoxesPerCase: 6,
		PacksPerBox:  30,
		Cases: model.CaseGroup{Total: 1, Items: []model.Case{{
			ID: "SV6a-C1", PurchaseDate: "2025-02-07", Source: "Swivel", PricePerBox: decimal.RequireFromString("38.00"),
		}}},
		TotalBoxesStashed: 6,
	}
	require.NoError(t, repo.Save(ctx, doc))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, loaded.Validate())
	assert.True(t, stamp.Equal(loaded.Metadata.LastUpdated))
	set := loaded.Stashed.Sets["Mask of Change"]
	require.NotNil(t, set)
	assert.Equal(t, "SV6a-C1", set.Cases.Items[0].ID)
	assert.True(t, decimal.RequireFromString("38").Equal(set.Cases.Items[0].PricePerBox))
	assert.NotNil(t, loaded.SequentialSets.Pokemon)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileDocumentRepositoryCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	repo, err := NewFileDocumentRepository(path, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = repo.Load(context.Background())
	assert.Error(t, err)
}
