package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tcg-inventory-api/internal/model"
)

type boxRow struct {
	ID           int64           `db:"id"`
	SetName      string          `db:"set_name"`
	PurchaseDate string          `db:"purchase_date"`
	Source       string          `db:"source"`
	Price        decimal.Decimal `db:"price"`
	PacksOpened  int             `db:"packs_opened"`
	PacksSold    int             `db:"packs_sold"`
}

// ReplaceBoxes performs the destructive purchase re-sync in a single transaction.
func (s *SQLStore) ReplaceBoxes(ctx context.Context, batch model.PurchaseBatch) error {
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM business_boxes"); err != nil {
			return fmt.Errorf("failed to clear business boxes: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM stashed_boxes"); err != nil {
			return fmt.Errorf("failed to clear stashed boxes: %w", err)
		}

		for _, u := range batch.PacksPerBox {
			query := tx.Rebind("UPDATE catalog_sets SET packs_per_box = ? WHERE name = ?")
			if _, err := tx.ExecContext(ctx, query, u.PacksPerBox, u.SetName); err != nil {
				return fmt.Errorf("failed to update packs per box for %s: %w", u.SetName, err)
			}
		}

		if len(batch.BusinessBoxes) > 0 {
			stmt, err := tx.PreparexContext(ctx, tx.Rebind(`
				INSERT INTO business_boxes (set_name, purchase_date, source, price, packs_opened, packs_sold)
				VALUES (?, ?, ?, ?, ?, ?)`))
			if err != nil {
				return fmt.Errorf("failed to prepare statement: %w", err)
			}
			defer stmt.Close()

			for _, b := range batch.BusinessBoxes {
				_, err := stmt.ExecContext(ctx, b.SetName, model.FormatDate(b.PurchaseDate), b.Source, b.Price, b.PacksOpened, b.PacksSold)
				if err != nil {
					return fmt.Errorf("failed to insert business box for %s: %w", b.SetName, err)
				}
			}
		}

		if len(batch.StashedBoxes) > 0 {
			stmt, err := tx.PreparexContext(ctx, tx.Rebind(`
				INSERT INTO stashed_boxes (set_name, purchase_date, source, price)
				VALUES (?, ?, ?, ?)`))
			if err != nil {
				return fmt.Errorf("failed to prepare statement: %w", err)
			}
			defer stmt.Close()

			for _, b := range batch.StashedBoxes {
				if _, err := stmt.ExecContext(ctx, b.SetName, model.FormatDate(b.PurchaseDate), b.Source, b.Price); err != nil {
					return fmt.Errorf("failed to insert stashed box for %s: %w", b.SetName, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("boxes replaced",
		zap.Int("business", len(batch.BusinessBoxes)),
		zap.Int("stashed", len(batch.StashedBoxes)),
	)
	return nil
}

// ListBusinessBoxes returns business boxes, optionally for one set.
func (s *SQLStore) ListBusinessBoxes(ctx context.Context, setName string) ([]model.BusinessBox, error) {
	rows, err := s.selectBoxes(ctx, "SELECT id, set_name, purchase_date, source, price, packs_opened, packs_sold FROM business_boxes", setName)
	if err != nil {
		return nil, fmt.Errorf("failed to list business boxes: %w", err)
	}

	boxes := make([]model.BusinessBox, 0, len(rows))
	for _, r := range rows {
		date, err := model.ParseDate(r.PurchaseDate)
		if err != nil {
			return nil, fmt.Errorf("failed to parse purchase date of box %d: %w", r.ID, err)
		}
		boxes = append(boxes, model.BusinessBox{
			ID:           r.ID,
			SetName:      r.SetName,
			PurchaseDate: date,
			Source:       r.Source,
			Price:        r.Price,
			PacksOpened:  r.PacksOpened,
			PacksSold:    r.PacksSold,
		})
	}
	return boxes, nil
}

// ListStashedBoxes returns stashed boxes, optionally for one set.
func (s *SQLStore) ListStashedBoxes(ctx context.Context, setName string) ([]model.StashedBox, error) {
	rows, err := s.selectBoxes(ctx, "SELECT id, set_name, purchase_date, source, price FROM stashed_boxes", setName)
	if err != nil {
		return nil, fmt.Errorf("failed to list stashed boxes: %w", err)
	}

	boxes := make([]model.StashedBox, 0, len(rows))
	for _, r := range rows {
		date, err := model.ParseDate(r.PurchaseDate)
		if err != nil {
			return nil, fmt.Errorf("failed to parse purchase date of box %d: %w", r.ID, err)
		}
		boxes = append(boxes, model.StashedBox{
			ID:           r.ID,
			SetName:      r.SetName,
			PurchaseDate: date,
			Source:       r.Source,
			Price:        r.Price,
		})
	}
	return boxes, nil
}

func (s *SQLStore) selectBoxes(ctx context.Context, query, setName string) ([]boxRow, error) {
	var args []interface{}
	if setName != "" {
		query += " WHERE set_name = ?"
		args = append(args, setName)
	}
	query += " ORDER BY id"

	var rows []boxRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return rows, nil
}
