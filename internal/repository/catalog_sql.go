package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"tcg-inventory-api/internal/model"
)

// CountSets returns the number of catalog rows.
func (s *SQLStore) CountSets(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM catalog_sets"); err != nil {
		return 0, fmt.Errorf("failed to count sets: %w", err)
	}
	return count, nil
}

// UpsertSets inserts or updates catalog entries in one transaction.
func (s *SQLStore) UpsertSets(ctx context.Context, entries []model.CatalogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx, tx.Rebind(s.dialect.upsertSet))
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, e := range entries {
			if _, err := stmt.ExecContext(ctx, e.Name, e.Code, e.Series, e.PacksPerBox); err != nil {
				return fmt.Errorf("failed to upsert set %s: %w", e.Name, err)
			}
		}
		return nil
	})
}

// SetExists reports whether name is a catalog row.
func (s *SQLStore) SetExists(ctx context.Context, name string) (bool, error) {
	var count int
	query := s.db.Rebind("SELECT COUNT(*) FROM catalog_sets WHERE name = ?")
	if err := s.db.GetContext(ctx, &count, query, name); err != nil {
		return false, fmt.Errorf("failed to check set: %w", err)
	}
	return count > 0, nil
}

// ListSets returns catalog rows ordered by name.
func (s *SQLStore) ListSets(ctx context.Context, series string) ([]model.CatalogEntry, error) {
	query := "SELECT name, code, series, packs_per_box FROM catalog_sets"
	var args []interface{}
	if series != "" {
		query += " WHERE series = ?"
		args = append(args, series)
	}
	query += " ORDER BY name"

	sets := []model.CatalogEntry{}
	if err := s.db.SelectContext(ctx, &sets, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list sets: %w", err)
	}
	return sets, nil
}

// ListSeries returns the distinct, non-empty series labels.
func (s *SQLStore) ListSeries(ctx context.Context) ([]string, error) {
	series := []string{}
	query := "SELECT DISTINCT series FROM catalog_sets WHERE series <> '' ORDER BY series"
	if err := s.db.SelectContext(ctx, &series, query); err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}
	return series, nil
}
