package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tcg-inventory-api/internal/model"
)

const purchaseColumns = 10

type purchaseRow struct {
	source      string
	date        string
	purchased   int
	business    int
	stashed     int
	pricePerBox decimal.Decimal
	rawSet      string
	packsPerBox int
}

func parsePurchaseRow(fields []string) (purchaseRow, error) {
	var (
		row purchaseRow
		err error
	)
	row.source = text(fields[0])
	row.date = text(fields[1])
	if row.purchased, err = parseCount(fields[2]); err != nil {
		return row, fmt.Errorf("boxes purchased: %w", err)
	}
	if row.business, err = parseCount(fields[3]); err != nil {
		return row, fmt.Errorf("business boxes: %w", err)
	}
	if row.stashed, err = parseCount(fields[4]); err != nil {
		return row, fmt.Errorf("stashed boxes: %w", err)
	}
	if row.pricePerBox, err = parseMoney(fields[5]); err != nil {
		return row, fmt.Errorf("per box price: %w", err)
	}
	row.rawSet = text(fields[7])
	if row.packsPerBox, err = parseCount(fields[8]); err != nil {
		return row, fmt.Errorf("packs per box: %w", err)
	}
	return row, nil
}

// ImportPurchases replaces every business and stashed box with the contents
// of a purchase ledger export. The file is parsed completely before anything
// is written; the delete and inserts then run in one transaction, even when
// no row survived validation.
func (im *Importer) ImportPurchases(ctx context.Context, r io.Reader) (*model.ImportResult, error) {
	logger := im.logger.With(zap.String("import", string(model.ImportPurchases)))

	rows, err := im.readRows(r, logger)
	if err != nil {
		return nil, err
	}

	result := model.NewImportResult()
	unmatched := make(map[string]bool)
	var batch model.PurchaseBatch

	for i, fields := range rows {
		line := i + 2
		result.RowsRead++

		if len(fields) < purchaseColumns {
			logger.Warn("skipping row: insufficient columns", zap.Int("line", line), zap.Int("fields", len(fields)))
			result.RowsSkipped++
			continue
		}

		row, err := parsePurchaseRow(fields)
		if err != nil {
			logger.Warn("skipping row: parse failure", zap.Int("line", line), zap.Error(err))
			result.RowsSkipped++
			continue
		}

		purchased, err := model.ParseDate(row.date)
		if err != nil {
			logger.Warn("skipping row: bad purchase date", zap.Int("line", line), zap.String("date", row.date))
			result.RowsSkipped++
			continue
		}

		if row.purchased != row.business+row.stashed {
			logger.Warn("skipping row: box counts do not add up",
				zap.Int("line", line),
				zap.Int("purchased", row.purchased),
				zap.Int("business", row.business),
				zap.Int("stashed", row.stashed),
			)
			result.RowsSkipped++
			continue
		}

		setName := im.names.Normalize(row.rawSet)
		exists, err := im.store.SetExists(ctx, setName)
		if err != nil {
			return nil, err
		}
		if !exists {
			logger.Info("set not found in catalog", zap.Int("line", line), zap.String("set", setName))
			if !unmatched[setName] {
				unmatched[setName] = true
				result.UnmatchedSets = append(result.UnmatchedSets, setName)
			}
			result.RowsSkipped++
			continue
		}

		batch.PacksPerBox = append(batch.PacksPerBox, model.PacksPerBoxUpdate{SetName: setName, PacksPerBox: row.packsPerBox})
		for n := 0; n < row.business; n++ {
			batch.BusinessBoxes = append(batch.BusinessBoxes, model.BusinessBox{
				SetName:      setName,
				PurchaseDate: purchased,
				Source:       row.source,
				Price:        row.pricePerBox,
			})
		}
		for n := 0; n < row.stashed; n++ {
			batch.StashedBoxes = append(batch.StashedBoxes, model.StashedBox{
				SetName:      setName,
				PurchaseDate: purchased,
				Source:       row.source,
				Price:        row.pricePerBox,
			})
		}
		result.RowsImported++
	}

	if err := im.store.ReplaceBoxes(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to replace boxes: %w", err)
	}

	logger.Info("purchase import finished",
		zap.Int("rows", result.RowsRead),
		zap.Int("imported", result.RowsImported),
		zap.Int("skipped", result.RowsSkipped),
		zap.Strings("unmatched", result.UnmatchedSets),
	)
	result.Success = true
	return result, nil
}
