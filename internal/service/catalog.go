package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tcg-inventory-api/internal/catalog"
	"tcg-inventory-api/internal/model"
	"tcg-inventory-api/internal/repository"
)

// CatalogService owns the reference catalog: the in-memory series reference
// used for name resolution and the relational catalog table.
type CatalogService struct {
	repo     repository.CatalogRepository
	ref      *catalog.Reference
	setsPath string
	logger   *zap.Logger
}

// NewCatalogService creates a catalog service around an already loaded series reference.
// setsPath points at the sets-shaped file used by Reload.
func NewCatalogService(repo repository.CatalogRepository, ref *catalog.Reference, setsPath string, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		repo:     repo,
		ref:      ref,
		setsPath: setsPath,
		logger:   logger.Named("catalog"),
	}
}

// Reference returns the series reference.
func (s *CatalogService) Reference() *catalog.Reference {
	return s.ref
}

// Normalize resolves a raw set name against the series reference.
func (s *CatalogService) Normalize(raw string) string {
	return s.ref.Normalize(raw)
}

// Seed fills an empty relational catalog from the series reference.
// It returns the number of rows written.
func (s *CatalogService) Seed(ctx context.Context) (int, error) {
	count, err := s.repo.CountSets(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	entries := s.ref.Entries()
	if err := s.repo.UpsertSets(ctx, entries); err != nil {
		return 0, fmt.Errorf("failed to seed catalog: %w", err)
	}
	s.logger.Info("catalog seeded", zap.Int("sets", len(entries)))
	return len(entries), nil
}

// Reload upserts every entry of the sets-shaped catalog file.
// A missing or unreadable file loads nothing.
func (s *CatalogService) Reload(ctx context.Context) (int, error) {
	entries := catalog.LoadSets(s.setsPath, s.logger).Entries()
	if len(entries) == 0 {
		return 0, nil
	}

	if err := s.repo.UpsertSets(ctx, entries); err != nil {
		return 0, fmt.Errorf("failed to reload catalog: %w", err)
	}
	s.logger.Info("catalog reloaded", zap.String("path", s.setsPath), zap.Int("sets", len(entries)))
	return len(entries), nil
}

func (s *CatalogService) ListSeries(ctx context.Context) ([]string, error) {
	return s.repo.ListSeries(ctx)
}

func (s *CatalogService) ListSets(ctx context.Context, series string) ([]model.CatalogEntry, error) {
	return s.repo.ListSets(ctx, series)
}
