package importer

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"tcg-inventory-api/internal/model"
)

const saleColumns = 7

func parseSaleRow(fields []string) (model.PackSale, error) {
	var (
		sale model.PackSale
		err  error
	)
	sale.SetName = text(fields[0])
	if sale.Quantity, err = parseCount(fields[1]); err != nil {
		return sale, fmt.Errorf("quantity: %w", err)
	}
	if sale.SalePrice, err = parseMoney(fields[2]); err != nil {
		return sale, fmt.Errorf("sale price: %w", err)
	}
	if sale.ShippingCharged, err = parseMoney(fields[3]); err != nil {
		return sale, fmt.Errorf("shipping charged: %w", err)
	}
	if sale.ShippingCost, err = parseMoney(fields[4]); err != nil {
		return sale, fmt.Errorf("shipping cost: %w", err)
	}
	if sale.EbayFees, err = parseMoney(fields[5]); err != nil {
		return sale, fmt.Errorf("ebay fees: %w", err)
	}
	if sale.SaleDate, err = model.ParseDate(text(fields[6])); err != nil {
		return sale, fmt.Errorf("date: %w", err)
	}
	return sale, nil
}

// ImportSales appends marketplace sales. Set names are stored as written.
func (im *Importer) ImportSales(ctx context.Context, r io.Reader) (*model.ImportResult, error) {
	logger := im.logger.With(zap.String("import", string(model.ImportSales)))

	rows, err := im.readRows(r, logger)
	if err != nil {
		return nil, err
	}

	result := model.NewImportResult()
	var sales []model.PackSale

	for i, fields := range rows {
		line := i + 2
		result.RowsRead++

		if len(fields) < saleColumns {
			logger.Warn("skipping row: insufficient columns", zap.Int("line", line), zap.Int("fields", len(fields)))
			result.RowsSkipped++
			continue
		}

		sale, err := parseSaleRow(fields)
		if err != nil {
			logger.Warn("skipping row: parse failure", zap.Int("line", line), zap.Error(err))
			result.RowsSkipped++
			continue
		}
		sales = append(sales, sale)
	}

	if err := im.store.InsertSales(ctx, sales); err != nil {
		return nil, fmt.Errorf("failed to insert sales: %w", err)
	}
	result.RowsImported = len(sales)

	logger.Info("sales import finished",
		zap.Int("rows", result.RowsRead),
		zap.Int("imported", result.RowsImported),
		zap.Int("skipped", result.RowsSkipped),
	)
	result.Success = true
	return result, nil
}
