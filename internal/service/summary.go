package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tcg-inventory-api/internal/model"
	"tcg-inventory-api/internal/repository"
)

// SummaryService serves the aggregated read views.
type SummaryService struct {
	repo      repository.SummaryRepository
	inventory *InventoryService
	logger    *zap.Logger
}

// NewSummaryService creates a new summary service.
func NewSummaryService(repo repository.SummaryRepository, inventory *InventoryService, logger *zap.Logger) *SummaryService {
	return &SummaryService{
		repo:      repo,
		inventory: inventory,
		logger:    logger.Named("summary"),
	}
}

// SetSummaries returns per product line aggregates, optionally for one series.
func (s *SummaryService) SetSummaries(ctx context.Context, series string) ([]model.SetSummary, error) {
	summaries, err := s.repo.SetSummaries(ctx, series)
	if err != nil {
		return nil, fmt.Errorf("failed to compute set summaries: %w", err)
	}
	return summaries, nil
}

// Overview combines the document totals with the relational totals.
// Only product lines with activity are listed.
func (s *SummaryService) Overview(ctx context.Context) (*model.Overview, error) {
	docTotals, err := s.inventory.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory document: %w", err)
	}

	summaries, err := s.SetSummaries(ctx, "")
	if err != nil {
		return nil, err
	}

	overview := &model.Overview{
		Document: docTotals,
		Sets:     make([]model.SetSummary, 0, len(summaries)),
	}
	for _, sum := range summaries {
		overview.Relational.Add(sum)
		if sum.HasActivity() {
			overview.Sets = append(overview.Sets, sum)
		}
	}
	return overview, nil
}
