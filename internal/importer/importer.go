// Package importer reconciles CSV exports from purchase ledgers, marketplace
// sales and grading submissions into the relational store.
//
// Malformed rows are skipped and logged, never returned as errors. Only
// failures to read the input or write the store abort an import.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tcg-inventory-api/internal/model"
)

// Store is the subset of the relational store the reconcilers write to.
type Store interface {
	SetExists(ctx context.Context, name string) (bool, error)
	ReplaceBoxes(ctx context.Context, batch model.PurchaseBatch) error
	InsertSales(ctx context.Context, sales []model.PackSale) error
	InsertNewSlabs(ctx context.Context, slabs []model.Slab) ([]string, error)
}

// Normalizer resolves raw set names to catalog names.
type Normalizer interface {
	Normalize(raw string) string
}

// Importer runs the three CSV reconcilers.
type Importer struct {
	store   Store
	names   Normalizer
	slabDir string
	now     func() time.Time
	logger  *zap.Logger
}

// New creates an importer. slabDir receives one directory per new certificate.
func New(store Store, names Normalizer, slabDir string, logger *zap.Logger) *Importer {
	return &Importer{
		store:   store,
		names:   names,
		slabDir: slabDir,
		now:     time.Now,
		logger:  logger.Named("importer"),
	}
}

// Import dispatches to the reconciler for kind.
func (im *Importer) Import(ctx context.Context, kind model.ImportType, r io.Reader) (*model.ImportResult, error) {
	switch kind {
	case model.ImportPurchases:
		return im.ImportPurchases(ctx, r)
	case model.ImportSales:
		return im.ImportSales(ctx, r)
	case model.ImportGrading:
		return im.ImportGrading(ctx, r)
	}
	return nil, fmt.Errorf("%w: %q", model.ErrUnknownImportType, kind)
}

// readRows returns every record after the header. Records the parser rejects
// are dropped with a log line.
func (im *Importer) readRows(r io.Reader, logger *zap.Logger) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = false

	return collectRows(reader.Read, logger)
}

// collectRows drains next. The first record is the header even when it
// fails to parse.
func collectRows(next func() ([]string, error), logger *zap.Logger) ([][]string, error) {
	var rows [][]string
	header := true
	for {
		record, err := next()
		if errors.Is(err, io.EOF) {
			break
		}
		first := header
		header = false
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				logger.Warn("skipping unparseable line", zap.Int("line", parseErr.Line), zap.Error(err))
				continue
			}
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		if first || isBlank(record) {
			continue
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// cleanNumber strips currency, thousands separators and quote decoration.
func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	return strings.TrimSpace(s)
}

func parseCount(field string) (int, error) {
	n, err := strconv.Atoi(cleanNumber(field))
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative count %d", n)
	}
	return n, nil
}

func parseMoney(field string) (decimal.Decimal, error) {
	return decimal.NewFromString(cleanNumber(field))
}

func text(field string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(field), `"`))
}
