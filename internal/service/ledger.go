package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tcg-inventory-api/internal/model"
	"tcg-inventory-api/internal/repository"
)

// BoxListing groups the relational boxes of one product line, or of all lines.
type BoxListing struct {
	Business []model.BusinessBox `json:"business"`
	Stashed  []model.StashedBox  `json:"stashed"`
}

// LedgerService exposes the relational boxes, sales and slabs.
type LedgerService struct {
	store  repository.Store
	now    func() time.Time
	logger *zap.Logger
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(store repository.Store, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		store:  store,
		now:    time.Now,
		logger: logger.Named("ledger"),
	}
}

// Boxes lists business and stashed boxes. An empty set name lists every line.
func (s *LedgerService) Boxes(ctx context.Context, setName string) (*BoxListing, error) {
	business, err := s.store.ListBusinessBoxes(ctx, setName)
	if err != nil {
		return nil, err
	}
	stashed, err := s.store.ListStashedBoxes(ctx, setName)
	if err != nil {
		return nil, err
	}
	return &BoxListing{Business: business, Stashed: stashed}, nil
}

// Sales lists pack sales. An empty set name lists every line.
func (s *LedgerService) Sales(ctx context.Context, setName string) ([]model.PackSale, error) {
	return s.store.ListSales(ctx, setName)
}

// Slabs lists slabs, optionally in one status.
func (s *LedgerService) Slabs(ctx context.Context, status model.SlabStatus) ([]model.Slab, error) {
	return s.store.ListSlabs(ctx, status)
}

// Slab returns one slab by certificate number.
func (s *LedgerService) Slab(ctx context.Context, certNumber string) (*model.Slab, error) {
	return s.store.GetSlab(ctx, certNumber)
}

// UpdateSlabStatus applies a user-requested status change.
func (s *LedgerService) UpdateSlabStatus(ctx context.Context, certNumber string, status model.SlabStatus) (*model.Slab, error) {
	if err := s.store.UpdateSlabStatus(ctx, certNumber, status, model.OriginUser); err != nil {
		return nil, err
	}
	s.logger.Info("slab status updated", zap.String("cert", certNumber), zap.String("status", string(status)))
	return s.store.GetSlab(ctx, certNumber)
}

// RecordSale marks a listed slab as sold. A zero sale date means today.
func (s *LedgerService) RecordSale(ctx context.Context, certNumber string, sale model.SlabSale) (*model.Slab, error) {
	if sale.SaleDate.IsZero() {
		sale.SaleDate = model.DateOf(s.now())
	}
	if err := s.store.RecordSlabSale(ctx, certNumber, sale); err != nil {
		return nil, err
	}
	s.logger.Info("slab sold", zap.String("cert", certNumber), zap.String("price", sale.SalePrice.StringFixed(2)))
	return s.store.GetSlab(ctx, certNumber)
}

// Reset clears boxes, sales and slabs. The catalog is kept.
func (s *LedgerService) Reset(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset store: %w", err)
	}
	s.logger.Warn("relational store reset")
	return nil
}

// Stats returns backend statistics.
func (s *LedgerService) Stats(ctx context.Context) (map[string]interface{}, error) {
	return s.store.GetStats(ctx)
}

// Ping checks the relational backend.
func (s *LedgerService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
