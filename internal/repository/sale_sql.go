package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"tcg-inventory-api/internal/model"
)

type saleRow struct {
	ID              int64           `db:"id"`
	SetName         string          `db:"set_name"`
	Quantity        int             `db:"quantity"`
	SalePrice       decimal.Decimal `db:"sale_price"`
	ShippingCharged decimal.Decimal `db:"shipping_charged"`
	ShippingCost    decimal.Decimal `db:"shipping_cost"`
	EbayFees        decimal.Decimal `db:"ebay_fees"`
	SaleDate        string          `db:"sale_date"`
}

// InsertSales appends pack sales in one transaction.
func (s *SQLStore) InsertSales(ctx context.Context, sales []model.PackSale) error {
	if len(sales) == 0 {
		return nil
	}

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx, tx.Rebind(`
			INSERT INTO pack_sales (set_name, quantity, sale_price, shipping_charged, shipping_cost, ebay_fees, sale_date)
			VALUES (?, ?, ?, ?, ?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, sale := range sales {
			_, err := stmt.ExecContext(ctx,
				sale.SetName, sale.Quantity, sale.SalePrice, sale.ShippingCharged,
				sale.ShippingCost, sale.EbayFees, model.FormatDate(sale.SaleDate))
			if err != nil {
				return fmt.Errorf("failed to insert sale for %s: %w", sale.SetName, err)
			}
		}
		return nil
	})
}

// ListSales returns the ledger, newest first, optionally for one set.
func (s *SQLStore) ListSales(ctx context.Context, setName string) ([]model.PackSale, error) {
	query := `SELECT id, set_name, quantity, sale_price, shipping_charged, shipping_cost, ebay_fees, sale_date FROM pack_sales`
	var args []interface{}
	if setName != "" {
		query += " WHERE set_name = ?"
		args = append(args, setName)
	}
	query += " ORDER BY sale_date DESC, id DESC"

	var rows []saleRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}

	sales := make([]model.PackSale, 0, len(rows))
	for _, r := range rows {
		date, err := model.ParseDate(r.SaleDate)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date of sale %d: %w", r.ID, err)
		}
		sales = append(sales, model.PackSale{
			ID:              r.ID,
			SetName:         r.SetName,
			Quantity:        r.Quantity,
			SalePrice:       r.SalePrice,
			ShippingCharged: r.ShippingCharged,
			ShippingCost:    r.ShippingCost,
			EbayFees:        r.EbayFees,
			SaleDate:        date,
		})
	}
	return sales, nil
}
