package repository

import (
	"context"

	"tcg-inventory-api/internal/model"
)

// CatalogRepository defines access to the relational catalog of product lines.
type CatalogRepository interface {
	// CountSets returns the number of catalog rows.
	CountSets(ctx context.Context) (int64, error)

	// UpsertSets inserts or updates catalog entries keyed by name.
	UpsertSets(ctx context.Context, entries []model.CatalogEntry) error

	// SetExists reports whether name is a catalog row.
	SetExists(ctx context.Context, name string) (bool, error)

	// ListSets returns catalog rows, optionally restricted to one series.
	ListSets(ctx context.Context, series string) ([]model.CatalogEntry, error)

	// ListSeries returns the distinct series labels.
	ListSeries(ctx context.Context) ([]string, error)
}

// BoxRepository defines access to purchased boxes.
type BoxRepository interface {
	// ReplaceBoxes deletes every business and stashed box, applies the
	// pack-count updates and inserts the batch, all in one transaction.
	ReplaceBoxes(ctx context.Context, batch model.PurchaseBatch) error

	ListBusinessBoxes(ctx context.Context, setName string) ([]model.BusinessBox, error)
	ListStashedBoxes(ctx context.Context, setName string) ([]model.StashedBox, error)
}

// SaleRepository defines access to the pack-sale ledger.
type SaleRepository interface {
	// InsertSales appends sales in one transaction.
	InsertSales(ctx context.Context, sales []model.PackSale) error

	ListSales(ctx context.Context, setName string) ([]model.PackSale, error)
}

// SlabRepository defines access to graded slabs.
type SlabRepository interface {
	// InsertNewSlabs inserts slabs whose certificate is not yet stored and
	// returns the certificates actually inserted.
	InsertNewSlabs(ctx context.Context, slabs []model.Slab) ([]string, error)

	GetSlab(ctx context.Context, certNumber string) (*model.Slab, error)
	ListSlabs(ctx context.Context, status model.SlabStatus) ([]model.Slab, error)

	// PendingSlabs returns slabs missing grading details or an image.
	PendingSlabs(ctx context.Context) ([]model.Slab, error)

	SaveSlabDetails(ctx context.Context, certNumber string, details model.SlabDetails) error

	// SetSlabImages records image paths. Empty paths leave the stored value unchanged.
	SetSlabImages(ctx context.Context, certNumber, frontPath, backPath string) error

	UpdateSlabStatus(ctx context.Context, certNumber string, to model.SlabStatus, origin model.TransitionOrigin) error
	RecordSlabSale(ctx context.Context, certNumber string, sale model.SlabSale) error

	// PromoteReady moves complete Submitted slabs to Ready and returns their certificates.
	PromoteReady(ctx context.Context) ([]string, error)

	SlabStats(ctx context.Context) (model.SlabStats, error)
}

// SummaryRepository defines the read-side aggregation queries.
type SummaryRepository interface {
	// SetSummaries returns one row per product line, optionally filtered by series.
	SetSummaries(ctx context.Context, series string) ([]model.SetSummary, error)
}

// Store is the relational system of record.
type Store interface {
	CatalogRepository
	BoxRepository
	SaleRepository
	SlabRepository
	SummaryRepository

	// Reset clears every transactional table. The catalog is kept.
	Reset(ctx context.Context) error

	// GetStats returns row counts and backend details.
	GetStats(ctx context.Context) (map[string]interface{}, error)

	Ping(ctx context.Context) error
	Close() error
}

// DocumentRepository persists the inventory document wholesale.
type DocumentRepository interface {
	// Load returns the stored document, or a new empty one when none exists.
	Load(ctx context.Context) (*model.InventoryDocument, error)

	// Save replaces the stored document.
	Save(ctx context.Context, doc *model.InventoryDocument) error

	Close() error
}
