package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tcg-inventory-api/internal/catalog"
	"tcg-inventory-api/internal/importer"
	"tcg-inventory-api/internal/model"
	"tcg-inventory-api/internal/repository"
)

type relationalFixture struct {
	store     *repository.SQLStore
	upload    *UploadService
	ledger    *LedgerService
	summary   *SummaryService
	importDir string
}

func newRelationalFixture(t *testing.T) *relationalFixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	dir := t.TempDir()

	store, err := repository.NewSQLiteStore(filepath.Join(dir, "inventory.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.UpsertSets(context.Background(), testEntries))

	ref := catalog.NewReference(testEntries...)
	importDir := filepath.Join(dir, "imports")
	upload := NewUploadService(importer.New(store, ref, filepath.Join(dir, "slabs"), logger), importDir, logger)
	upload.now = func() time.Time { return time.Date(2025, 5, 2, 9, 30, 15, 0, time.UTC) }

	docs, err := repository.NewFileDocumentRepository(filepath.Join(dir, "inventory.json"), logger)
	require.NoError(t, err)
	inventory := NewInventoryService(docs, ref, logger)

	return &relationalFixture{
		store:     store,
		upload:    upload,
		ledger:    NewLedgerService(store, logger),
		summary:   NewSummaryService(store, inventory, logger),
		importDir: importDir,
	}
}

const purchasesCSV = "Source,Purchase Date,Boxes Purchased,Business Boxes,Stashed Boxes,Per Box USD,Total,Set,Packs Per Box,Business Packs\n" +
	"Swivel,2025-02-07,3,2,1,$38.00,$114.00,Mask of Change,30,60\n" +
	"Shop,2025-02-08,1,1,0,$50.00,$50.00,Unknown Line,30,30\n"

func TestUploadKeepsTimestampedCopy(t *testing.T) {
	f := newRelationalFixture(t)

	result, err := f.upload.Upload(context.Background(), model.ImportPurchases, "../purchases.csv", strings.NewReader(purchasesCSV))
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []string{"Unknown Line"}, result.UnmatchedSets)

	stored := filepath.Join(f.importDir, "purchases_20250502_093015.csv")
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, purchasesCSV, string(data))

	boxes, err := f.ledger.Boxes(context.Background(), "Mask of Change")
	require.NoError(t, err)
	assert.Len(t, boxes.Business, 2)
	assert.Len(t, boxes.Stashed, 1)
}

func TestImportPathWithoutExtension(t *testing.T) {
	f := newRelationalFixture(t)
	stamp := f.upload.now()
	assert.Equal(t, filepath.Join(f.importDir, "export_20250502_093015.csv"), f.upload.importPath("export", stamp, 0))
	assert.Equal(t, filepath.Join(f.importDir, "export_20250502_093015_2.csv"), f.upload.importPath("export", stamp, 2))
}

func TestUploadsInSameSecondKeepBothCopies(t *testing.T) {
	f := newRelationalFixture(t)
	ctx := context.Background()
	second := purchasesCSV + "Shop,2025-02-09,1,1,0,$40.00,$40.00,Mask of Change,30,30\n"

	_, err := f.upload.Upload(ctx, model.ImportPurchases, "purchases.csv", strings.NewReader(purchasesCSV))
	require.NoError(t, err)
	_, err = f.upload.Upload(ctx, model.ImportPurchases, "purchases.csv", strings.NewReader(second))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(f.importDir, "purchases_20250502_093015.csv"))
	require.NoError(t, err)
	assert.Equal(t, purchasesCSV, string(data))

	data, err = os.ReadFile(filepath.Join(f.importDir, "purchases_20250502_093015_1.csv"))
	require.NoError(t, err)
	assert.Equal(t, second, string(data))
}

func TestLedgerSlabSaleAndReset(t *testing.T) {
	f := newRelationalFixture(t)
	ctx := context.Background()

	_, err := f.store.InsertNewSlabs(ctx, []model.Slab{{
		CertNumber:     "500",
		SetName:        "Mask of Change",
		Grade:          10,
		SubmissionDate: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		Status:         model.SlabSubmitted,
	}})
	require.NoError(t, err)

	_, err = f.ledger.UpdateSlabStatus(ctx, "500", model.SlabReady)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	_, err = f.ledger.RecordSale(ctx, "500", model.SlabSale{SalePrice: decimal.NewFromInt(80)})
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	_, err = f.ledger.UpdateSlabStatus(ctx, "404", model.SlabStashed)
	assert.ErrorIs(t, err, model.ErrSlabNotFound)

	slab, err := f.ledger.UpdateSlabStatus(ctx, "500", model.SlabStashed)
	require.NoError(t, err)
	assert.Equal(t, model.SlabStashed, slab.Status)

	require.NoError(t, f.ledger.Reset(ctx))
	slabs, err := f.ledger.Slabs(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, slabs)

	series, err := f.store.ListSeries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Scarlet Violet"}, series, "catalog survives reset")
}

func TestOverview(t *testing.T) {
	f := newRelationalFixture(t)
	ctx := context.Background()

	_, err := f.upload.Upload(ctx, model.ImportPurchases, "purchases.csv", strings.NewReader(purchasesCSV))
	require.NoError(t, err)

	overview, err := f.summary.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, overview.Relational.BusinessBoxes)
	assert.Equal(t, 1, overview.Relational.StashedBoxes)
	assert.Equal(t, "76.00", overview.Relational.BusinessSpend.StringFixed(2))
	require.Len(t, overview.Sets, 1)
	assert.Equal(t, "Mask of Change", overview.Sets[0].SetName)
	assert.Equal(t, "38.00", overview.Sets[0].AverageBoxPrice.StringFixed(2))
	assert.Zero(t, overview.Document.OpenedBoxes)
}
