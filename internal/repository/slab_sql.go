package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tcg-inventory-api/internal/model"
)

const slabColumns = `cert_number, set_name, card_number, card_name, grade, submission_date, return_date,
	status, psa_details_fetched, psa_pop_higher, psa_total_pop, psa_label_type,
	front_image_path, back_image_path, sale_price, shipping_charged, shipping_cost, ebay_fees, sale_date`

// pendingCondition selects slabs missing grading details or an image.
const pendingCondition = `(psa_details_fetched = ?
	OR front_image_path IS NULL OR front_image_path = ''
	OR back_image_path IS NULL OR back_image_path = '')`

// completeCondition is the negation of pendingCondition.
const completeCondition = `(psa_details_fetched = ?
	AND front_image_path IS NOT NULL AND front_image_path <> ''
	AND back_image_path IS NOT NULL AND back_image_path <> '')`

type slabRow struct {
	CertNumber        string              `db:"cert_number"`
	SetName           string              `db:"set_name"`
	CardNumber        string              `db:"card_number"`
	CardName          string              `db:"card_name"`
	Grade             int                 `db:"grade"`
	SubmissionDate    string              `db:"submission_date"`
	ReturnDate        sql.NullString      `db:"return_date"`
	Status            string              `db:"status"`
	PSADetailsFetched bool                `db:"psa_details_fetched"`
	PSAPopHigher      sql.NullInt64       `db:"psa_pop_higher"`
	PSATotalPop       sql.NullInt64       `db:"psa_total_pop"`
	PSALabelType      sql.NullString      `db:"psa_label_type"`
	FrontImagePath    sql.NullString      `db:"front_image_path"`
	BackImagePath     sql.NullString      `db:"back_image_path"`
	SalePrice         decimal.NullDecimal `db:"sale_price"`
	ShippingCharged   decimal.NullDecimal `db:"shipping_charged"`
	ShippingCost      decimal.NullDecimal `db:"shipping_cost"`
	EbayFees          decimal.NullDecimal `db:"ebay_fees"`
	SaleDate          sql.NullString      `db:"sale_date"`
}

func (r slabRow) toModel() (model.Slab, error) {
	submitted, err := model.ParseDate(r.SubmissionDate)
	if err != nil {
		return model.Slab{}, fmt.Errorf("failed to parse submission date of slab %s: %w", r.CertNumber, err)
	}

	slab := model.Slab{
		CertNumber:        r.CertNumber,
		SetName:           r.SetName,
		CardNumber:        r.CardNumber,
		CardName:          r.CardName,
		Grade:             r.Grade,
		SubmissionDate:    submitted,
		Status:            model.SlabStatus(r.Status),
		PSADetailsFetched: r.PSADetailsFetched,
		PSALabelType:      r.PSALabelType.String,
		FrontImagePath:    r.FrontImagePath.String,
		BackImagePath:     r.BackImagePath.String,
		SalePrice:         r.SalePrice,
		ShippingCharged:   r.ShippingCharged,
		ShippingCost:      r.ShippingCost,
		EbayFees:          r.EbayFees,
	}
	if r.PSAPopHigher.Valid {
		v := int(r.PSAPopHigher.Int64)
		slab.PSAPopHigher = &v
	}
	if r.PSATotalPop.Valid {
		v := int(r.PSATotalPop.Int64)
		slab.PSATotalPop = &v
	}
	if slab.ReturnDate, err = parseNullDate(r.ReturnDate); err != nil {
		return model.Slab{}, fmt.Errorf("failed to parse return date of slab %s: %w", r.CertNumber, err)
	}
	if slab.SaleDate, err = parseNullDate(r.SaleDate); err != nil {
		return model.Slab{}, fmt.Errorf("failed to parse sale date of slab %s: %w", r.CertNumber, err)
	}
	return slab, nil
}

func parseNullDate(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := model.ParseDate(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func toSlabs(rows []slabRow) ([]model.Slab, error) {
	slabs := make([]model.Slab, 0, len(rows))
	for _, r := range rows {
		slab, err := r.toModel()
		if err != nil {
			return nil, err
		}
		slabs = append(slabs, slab)
	}
	return slabs, nil
}

// InsertNewSlabs inserts slabs whose certificate is not already stored.
func (s *SQLStore) InsertNewSlabs(ctx context.Context, slabs []model.Slab) ([]string, error) {
	inserted := []string{}
	if len(slabs) == 0 {
		return inserted, nil
	}

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		exists := tx.Rebind("SELECT COUNT(*) FROM slabs WHERE cert_number = ?")
		insert := tx.Rebind(`
			INSERT INTO slabs (cert_number, set_name, card_number, card_name, grade, submission_date, status, psa_details_fetched)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

		for _, slab := range slabs {
			var count int
			if err := tx.GetContext(ctx, &count, exists, slab.CertNumber); err != nil {
				return fmt.Errorf("failed to check slab %s: %w", slab.CertNumber, err)
			}
			if count > 0 {
				continue
			}

			_, err := tx.ExecContext(ctx, insert,
				slab.CertNumber, slab.SetName, slab.CardNumber, slab.CardName, slab.Grade,
				model.FormatDate(slab.SubmissionDate), string(slab.Status), slab.PSADetailsFetched)
			if err != nil {
				return fmt.Errorf("failed to insert slab %s: %w", slab.CertNumber, err)
			}
			inserted = append(inserted, slab.CertNumber)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

// GetSlab returns a slab by certificate number.
func (s *SQLStore) GetSlab(ctx context.Context, certNumber string) (*model.Slab, error) {
	var row slabRow
	query := s.db.Rebind("SELECT " + slabColumns + " FROM slabs WHERE cert_number = ?")
	if err := s.db.GetContext(ctx, &row, query, certNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrSlabNotFound
		}
		return nil, fmt.Errorf("failed to get slab: %w", err)
	}

	slab, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &slab, nil
}

// ListSlabs returns slabs, optionally with one status.
func (s *SQLStore) ListSlabs(ctx context.Context, status model.SlabStatus) ([]model.Slab, error) {
	query := "SELECT " + slabColumns + " FROM slabs"
	var args []interface{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, string(status))
	}
	query += " ORDER BY submission_date, cert_number"

	var rows []slabRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list slabs: %w", err)
	}
	return toSlabs(rows)
}

// PendingSlabs returns slabs still waiting on grading-service data.
func (s *SQLStore) PendingSlabs(ctx context.Context) ([]model.Slab, error) {
	query := s.db.Rebind("SELECT " + slabColumns + " FROM slabs WHERE " + pendingCondition + " ORDER BY submission_date, cert_number")

	var rows []slabRow
	if err := s.db.SelectContext(ctx, &rows, query, false); err != nil {
		return nil, fmt.Errorf("failed to list pending slabs: %w", err)
	}
	return toSlabs(rows)
}

// SaveSlabDetails stores certificate details and marks them fetched.
func (s *SQLStore) SaveSlabDetails(ctx context.Context, certNumber string, details model.SlabDetails) error {
	query := s.db.Rebind(`
		UPDATE slabs SET psa_details_fetched = ?, psa_pop_higher = ?, psa_total_pop = ?, psa_label_type = ?
		WHERE cert_number = ?`)

	res, err := s.db.ExecContext(ctx, query, true, nullInt(details.PopHigher), nullInt(details.TotalPop), nullString(details.LabelType), certNumber)
	if err != nil {
		return fmt.Errorf("failed to save slab details: %w", err)
	}
	return requireAffected(res)
}

// SetSlabImages stores image paths, keeping existing values for empty arguments.
func (s *SQLStore) SetSlabImages(ctx context.Context, certNumber, frontPath, backPath string) error {
	query := s.db.Rebind(`
		UPDATE slabs SET
			front_image_path = COALESCE(?, front_image_path),
			back_image_path = COALESCE(?, back_image_path)
		WHERE cert_number = ?`)

	res, err := s.db.ExecContext(ctx, query, nullString(frontPath), nullString(backPath), certNumber)
	if err != nil {
		return fmt.Errorf("failed to save slab images: %w", err)
	}
	return requireAffected(res)
}

// UpdateSlabStatus applies a validated status transition.
func (s *SQLStore) UpdateSlabStatus(ctx context.Context, certNumber string, to model.SlabStatus, origin model.TransitionOrigin) error {
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		from, err := currentStatus(ctx, tx, certNumber)
		if err != nil {
			return err
		}
		if err := model.CheckTransition(from, to, origin); err != nil {
			return err
		}

		query := tx.Rebind("UPDATE slabs SET status = ? WHERE cert_number = ?")
		if _, err := tx.ExecContext(ctx, query, string(to), certNumber); err != nil {
			return fmt.Errorf("failed to update slab status: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("slab status updated", zap.String("cert", certNumber), zap.String("status", string(to)))
	return nil
}

// RecordSlabSale marks a listed slab as sold and stores the sale fields.
func (s *SQLStore) RecordSlabSale(ctx context.Context, certNumber string, sale model.SlabSale) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		from, err := currentStatus(ctx, tx, certNumber)
		if err != nil {
			return err
		}
		if err := model.CheckTransition(from, model.SlabSold, model.OriginUser); err != nil {
			return err
		}

		query := tx.Rebind(`
			UPDATE slabs SET status = ?, sale_price = ?, shipping_charged = ?, shipping_cost = ?, ebay_fees = ?, sale_date = ?
			WHERE cert_number = ?`)
		_, err = tx.ExecContext(ctx, query,
			string(model.SlabSold), sale.SalePrice, sale.ShippingCharged, sale.ShippingCost, sale.EbayFees,
			model.FormatDate(sale.SaleDate), certNumber)
		if err != nil {
			return fmt.Errorf("failed to record slab sale: %w", err)
		}
		return nil
	})
}

// PromoteReady moves every complete Submitted slab to Ready.
func (s *SQLStore) PromoteReady(ctx context.Context) ([]string, error) {
	certs := []string{}
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		query := tx.Rebind("SELECT cert_number FROM slabs WHERE status = ? AND " + completeCondition + " ORDER BY cert_number")
		if err := tx.SelectContext(ctx, &certs, query, string(model.SlabSubmitted), true); err != nil {
			return fmt.Errorf("failed to find complete slabs: %w", err)
		}

		update := tx.Rebind("UPDATE slabs SET status = ? WHERE cert_number = ?")
		for _, cert := range certs {
			if err := model.CheckTransition(model.SlabSubmitted, model.SlabReady, model.OriginSystem); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, update, string(model.SlabReady), cert); err != nil {
				return fmt.Errorf("failed to promote slab %s: %w", cert, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return certs, nil
}

// SlabStats counts slabs by grading completeness.
func (s *SQLStore) SlabStats(ctx context.Context) (model.SlabStats, error) {
	var stats model.SlabStats
	if err := s.db.GetContext(ctx, &stats.Total, "SELECT COUNT(*) FROM slabs"); err != nil {
		return stats, fmt.Errorf("failed to count slabs: %w", err)
	}

	query := s.db.Rebind("SELECT COUNT(*) FROM slabs WHERE " + completeCondition)
	if err := s.db.GetContext(ctx, &stats.Complete, query, true); err != nil {
		return stats, fmt.Errorf("failed to count complete slabs: %w", err)
	}
	stats.Incomplete = stats.Total - stats.Complete
	return stats, nil
}

func currentStatus(ctx context.Context, tx *sqlx.Tx, certNumber string) (model.SlabStatus, error) {
	var status string
	query := tx.Rebind("SELECT status FROM slabs WHERE cert_number = ?")
	if err := tx.GetContext(ctx, &status, query, certNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", model.ErrSlabNotFound
		}
		return "", fmt.Errorf("failed to read slab status: %w", err)
	}
	return model.SlabStatus(status), nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return model.ErrSlabNotFound
	}
	return nil
}
