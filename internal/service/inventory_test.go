package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tcg-inventory-api/internal/catalog"
	"tcg-inventory-api/internal/model"
	"tcg-inventory-api/internal/repository"
)

var testEntries = []model.CatalogEntry{
	{Name: "Mask of Change", Code: "SV6a", Series: "Scarlet Violet", PacksPerBox: 30},
	{Name: "Terastal Festival ex", Code: "SV8a", Series: "Scarlet Violet", PacksPerBox: 10},
}

func newInventoryService(t *testing.T) *InventoryService {
	t.Helper()
	logger := zaptest.NewLogger(t)
	repo, err := repository.NewFileDocumentRepository(filepath.Join(t.TempDir(), "inventory.json"), logger)
	require.NoError(t, err)
	return NewInventoryService(repo, catalog.NewReference(testEntries...), logger)
}

func TestAddOpenedBoxes(t *testing.T) {
	svc := newInventoryService(t)
	ctx := context.Background()

	id, err := svc.AddBox(ctx, AddBoxInput{SetName: "Mask of Change", PurchaseDate: "2025-04-12", Source: "Shop", Price: decimal.NewFromInt(45)})
	require.NoError(t, err)
	assert.Equal(t, "SV6a-1", id)

	id, err = svc.AddBox(ctx, AddBoxInput{SetName: "mask of change", PurchaseDate: "2025-04-13", Source: "Shop", Price: decimal.NewFromInt(46)})
	require.NoError(t, err)
	assert.Equal(t, "SV6a-2", id)

	doc, err := svc.Document(ctx)
	require.NoError(t, err)
	set := doc.Opened.Sets["Mask of Change"]
	require.NotNil(t, set)
	assert.Equal(t, 2, set.Boxes.Purchased)
	assert.Equal(t, 60, set.Packs.Total)
	assert.Equal(t, 30, set.Boxes.Boxes[0].TotalPacks)
}

func TestAddBoxUnknownSet(t *testing.T) {
	svc := newInventoryService(t)

	_, err := svc.AddBox(context.Background(), AddBoxInput{SetName: "Nope", PurchaseDate: "2025-04-12"})
	assert.ErrorIs(t, err, model.ErrSetNotFound)
}

func TestCasesAndStashedBoxes(t *testing.T) {
	svc := newInventoryService(t)
	ctx := context.Background()

	caseID, err := svc.AddCase(ctx, AddCaseInput{SetName: "Terastal Festival ex", PurchaseDate: "2025-04-01", PricePerBox: decimal.NewFromInt(40)})
	require.NoError(t, err)
	assert.Equal(t, "SV8a-C1", caseID)

	loose, err := svc.AddBox(ctx, AddBoxInput{SetName: "Terastal Festival ex", PurchaseDate: "2025-04-02", IsStashed: true})
	require.NoError(t, err)
	assert.Equal(t, "SV8a-1", loose)

	for i := 0; i < model.DefaultBoxesPerCase; i++ {
		_, err := svc.AddBox(ctx, AddBoxInput{SetName: "Terastal Festival ex", PurchaseDate: "2025-04-01", IsStashed: true, CaseID: caseID})
		require.NoError(t, err)
	}
	_, err = svc.AddBox(ctx, AddBoxInput{SetName: "Terastal Festival ex", PurchaseDate: "2025-04-01", IsStashed: true, CaseID: caseID})
	assert.ErrorIs(t, err, model.ErrCaseFull)

	_, err = svc.AddBox(ctx, AddBoxInput{SetName: "Terastal Festival ex", PurchaseDate: "2025-04-01", IsStashed: true, CaseID: "SV8a-C9"})
	assert.ErrorIs(t, err, model.ErrCaseNotFound)

	opened, err := svc.AddBox(ctx, AddBoxInput{SetName: "Terastal Festival ex", PurchaseDate: "2025-04-03"})
	require.NoError(t, err)
	assert.Equal(t, "SV8a-8", opened)

	doc, err := svc.Document(ctx)
	require.NoError(t, err)
	set := doc.Stashed.Sets["Terastal Festival ex"]
	require.NotNil(t, set)
	assert.Equal(t, 1, set.Cases.Total)
	assert.Equal(t, 1, set.LooseBoxes.Total)
	assert.Equal(t, 7, set.TotalBoxesStashed)
	assert.Len(t, set.Cases.Items[0].Boxes, model.DefaultBoxesPerCase)

	totals, err := svc.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, totals.OpenedBoxes)
	assert.Equal(t, 10, totals.OpenedPacks)
	assert.Equal(t, 7, totals.StashedBoxes)
}

func TestAddCaseWithoutSetFails(t *testing.T) {
	svc := newInventoryService(t)

	_, err := svc.AddBox(context.Background(), AddBoxInput{SetName: "Mask of Change", IsStashed: true, CaseID: "SV6a-C1"})
	assert.ErrorIs(t, err, model.ErrCaseNotFound)
}

func TestSlabsInDocument(t *testing.T) {
	svc := newInventoryService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddSlab(ctx, AddSlabInput{CertNumber: "100", SetName: "Mask of Change"}))
	require.NoError(t, svc.AddSlab(ctx, AddSlabInput{CertNumber: "101", SetName: "Promo", Status: model.SlabListed}))
	assert.ErrorIs(t, svc.AddSlab(ctx, AddSlabInput{CertNumber: "100", SetName: "Promo"}), model.ErrSlabExists)
	assert.ErrorIs(t, svc.AddSlab(ctx, AddSlabInput{CertNumber: "../100", SetName: "Promo"}), model.ErrInvalidCertNumber)

	require.NoError(t, svc.UpdateSlabStatus(ctx, "100", model.SlabReady))
	assert.ErrorIs(t, svc.UpdateSlabStatus(ctx, "100", model.SlabSold), model.ErrInvalidTransition)
	assert.ErrorIs(t, svc.UpdateSlabStatus(ctx, "999", model.SlabSold), model.ErrSlabNotFound)

	doc, err := svc.Document(ctx)
	require.NoError(t, err)
	slabs := doc.Opened.Sets["Mask of Change"].Slabs
	assert.Equal(t, 1, slabs.Total)
	assert.Equal(t, 0, slabs.Status[model.SlabSubmitted])
	assert.Equal(t, 1, slabs.Status[model.SlabReady])
	assert.Equal(t, 1, doc.Opened.Sets["Promo"].Slabs.Status[model.SlabListed])
}

func TestAddSequentialSets(t *testing.T) {
	svc := newInventoryService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddSequentialSet(ctx, SequenceSetBased, "Mask of Change", []string{"105", "101", "103", "102", "110"}))
	require.NoError(t, svc.AddSequentialSet(ctx, SequencePokemon, "Pikachu", []string{"9", "3"}))

	doc, err := svc.Document(ctx)
	require.NoError(t, err)

	seq := doc.SequentialSets.SetBased["Mask of Change"]
	require.NotNil(t, seq)
	assert.Equal(t, []model.CertRange{
		{Start: "101", End: "103", Count: 3},
		{Start: "105", End: "105", Count: 1},
		{Start: "110", End: "110", Count: 1},
	}, seq.Sequences)
	assert.Equal(t, 5, seq.Total)

	assert.Equal(t, []string{"3", "9"}, doc.SequentialSets.Pokemon["Pikachu"].Slabs)
	assert.Equal(t, 2, doc.SequentialSets.Pokemon["Pikachu"].Total)
}

func TestAddSequentialSetRejectsBadInput(t *testing.T) {
	svc := newInventoryService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		kind  string
		certs []string
	}{
		{"empty", SequenceSetBased, nil},
		{"non numeric", SequenceSetBased, []string{"12", "abc"}},
		{"duplicate", SequenceSetBased, []string{"12", "12"}},
		{"unknown kind", "binder", []string{"1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.AddSequentialSet(ctx, tt.kind, "Group", tt.certs)
			assert.ErrorIs(t, err, model.ErrInvalidSequence)
		})
	}
}
