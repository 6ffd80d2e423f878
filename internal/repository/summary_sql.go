package repository

import (
	"context"
	"fmt"
	"strings"

	"tcg-inventory-api/internal/model"
)

// summaryQuery joins per-table aggregates onto every set name seen anywhere,
// so lines with sales or slabs but no catalog row are still reported.
var summaryQuery = `
	SELECT
		n.set_name AS set_name,
		COALESCE(c.code, '') AS code,
		COALESCE(c.series, '') AS series,
		COALESCE(c.packs_per_box, 30) AS packs_per_box,
		COALESCE(b.business_boxes, 0) AS business_boxes,
		COALESCE(b.business_spend, 0) AS business_spend,
		COALESCE(b.packs_opened, 0) AS packs_opened,
		COALESCE(b.packs_sold, 0) AS packs_sold,
		COALESCE(st.stashed_boxes, 0) AS stashed_boxes,
		COALESCE(p.sale_count, 0) AS sale_count,
		COALESCE(p.quantity_sold, 0) AS quantity_sold,
		COALESCE(p.revenue, 0) AS revenue,
		COALESCE(p.net_shipping, 0) AS net_shipping,
		COALESCE(p.ebay_fees, 0) AS ebay_fees,
		COALESCE(sl.slabs_total, 0) AS slabs_total,
		COALESCE(sl.slabs_submitted, 0) AS slabs_submitted,
		COALESCE(sl.slabs_ready, 0) AS slabs_ready,
		COALESCE(sl.slabs_listed, 0) AS slabs_listed,
		COALESCE(sl.slabs_sold, 0) AS slabs_sold,
		COALESCE(sl.slabs_stashed, 0) AS slabs_stashed
	FROM (
		SELECT name AS set_name FROM catalog_sets
		UNION SELECT set_name FROM business_boxes
		UNION SELECT set_name FROM stashed_boxes
		UNION SELECT set_name FROM pack_sales
		UNION SELECT set_name FROM slabs
	) n
	LEFT JOIN catalog_sets c ON c.name = n.set_name
	LEFT JOIN (
		SELECT set_name,
			COUNT(*) AS business_boxes,
			SUM(price) AS business_spend,
			SUM(packs_opened) AS packs_opened,
			SUM(packs_sold) AS packs_sold
		FROM business_boxes GROUP BY set_name
	) b ON b.set_name = n.set_name
	LEFT JOIN (
		SELECT set_name, COUNT(*) AS stashed_boxes
		FROM stashed_boxes GROUP BY set_name
	) st ON st.set_name = n.set_name
	LEFT JOIN (
		SELECT set_name,
			COUNT(*) AS sale_count,
			SUM(quantity) AS quantity_sold,
			SUM(sale_price) AS revenue,
			SUM(shipping_charged - shipping_cost) AS net_shipping,
			SUM(ebay_fees) AS ebay_fees
		FROM pack_sales GROUP BY set_name
	) p ON p.set_name = n.set_name
	LEFT JOIN (
		SELECT set_name,
			COUNT(*) AS slabs_total,
			` + statusCounts() + `
		FROM slabs GROUP BY set_name
	) sl ON sl.set_name = n.set_name`

func statusCounts() string {
	cols := make([]string, 0, len(model.SlabStatuses))
	for _, status := range model.SlabStatuses {
		cols = append(cols, fmt.Sprintf("SUM(CASE WHEN status = '%s' THEN 1 ELSE 0 END) AS slabs_%s",
			status, strings.ToLower(string(status))))
	}
	return strings.Join(cols, ",\n\t\t\t")
}

// SetSummaries aggregates boxes, sales and slabs per product line.
func (s *SQLStore) SetSummaries(ctx context.Context, series string) ([]model.SetSummary, error) {
	query := summaryQuery
	var args []interface{}
	if series != "" {
		query += " WHERE c.series = ?"
		args = append(args, series)
	}
	query += " ORDER BY n.set_name"

	rows := []model.SetSummary{}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to compute set summaries: %w", err)
	}

	for i := range rows {
		rows[i].Derive()
	}
	return rows, nil
}
