package model

import "github.com/shopspring/decimal"

// SetSummary is the per product line aggregate computed from the relational store.
type SetSummary struct {
	SetName     string `json:"set_name" db:"set_name"`
	Code        string `json:"code" db:"code"`
	Series      string `json:"series" db:"series"`
	PacksPerBox int    `json:"packs_per_box" db:"packs_per_box"`

	BusinessBoxes   int             `json:"business_boxes" db:"business_boxes"`
	StashedBoxes    int             `json:"stashed_boxes" db:"stashed_boxes"`
	BusinessSpend   decimal.Decimal `json:"business_spend" db:"business_spend"`
	AverageBoxPrice decimal.Decimal `json:"average_box_price" db:"-"`
	PacksOpened     int             `json:"packs_opened" db:"packs_opened"`
	PacksSold       int             `json:"packs_sold" db:"packs_sold"`
	AvailablePacks  int             `json:"available_packs" db:"-"`

	SaleCount    int             `json:"sale_count" db:"sale_count"`
	QuantitySold int             `json:"quantity_sold" db:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue" db:"revenue"`
	NetShipping  decimal.Decimal `json:"net_shipping" db:"net_shipping"`
	EbayFees     decimal.Decimal `json:"ebay_fees" db:"ebay_fees"`

	SlabsTotal     int `json:"slabs_total" db:"slabs_total"`
	SlabsSubmitted int `json:"slabs_submitted" db:"slabs_submitted"`
	SlabsReady     int `json:"slabs_ready" db:"slabs_ready"`
	SlabsListed    int `json:"slabs_listed" db:"slabs_listed"`
	SlabsSold      int `json:"slabs_sold" db:"slabs_sold"`
	SlabsStashed   int `json:"slabs_stashed" db:"slabs_stashed"`
}

// Derive fills the fields computed from the aggregated columns.
func (s *SetSummary) Derive() {
	s.BusinessSpend = s.BusinessSpend.Round(2)
	s.Revenue = s.Revenue.Round(2)
	s.NetShipping = s.NetShipping.Round(2)
	s.EbayFees = s.EbayFees.Round(2)

	if s.BusinessBoxes > 0 {
		s.AverageBoxPrice = s.BusinessSpend.Div(decimal.NewFromInt(int64(s.BusinessBoxes))).Round(2)
	} else {
		s.AverageBoxPrice = decimal.Zero
	}
	s.AvailablePacks = s.PacksPerBox*s.BusinessBoxes - s.PacksOpened - s.PacksSold
}

// HasActivity reports whether any box, sale or slab references the line.
func (s *SetSummary) HasActivity() bool {
	return s.BusinessBoxes+s.StashedBoxes+s.SaleCount+s.SlabsTotal > 0
}

// PortfolioTotals sums the relational summaries across product lines.
type PortfolioTotals struct {
	BusinessBoxes int             `json:"business_boxes"`
	StashedBoxes  int             `json:"stashed_boxes"`
	BusinessSpend decimal.Decimal `json:"business_spend"`
	PacksSold     int             `json:"packs_sold"`
	Revenue       decimal.Decimal `json:"revenue"`
	NetShipping   decimal.Decimal `json:"net_shipping"`
	EbayFees      decimal.Decimal `json:"ebay_fees"`
	Slabs         int             `json:"slabs"`
}

// Add folds one summary row into the totals.
func (t *PortfolioTotals) Add(s SetSummary) {
	t.BusinessBoxes += s.BusinessBoxes
	t.StashedBoxes += s.StashedBoxes
	t.BusinessSpend = t.BusinessSpend.Add(s.BusinessSpend)
	t.PacksSold += s.QuantitySold
	t.Revenue = t.Revenue.Add(s.Revenue)
	t.NetShipping = t.NetShipping.Add(s.NetShipping)
	t.EbayFees = t.EbayFees.Add(s.EbayFees)
	t.Slabs += s.SlabsTotal
}

// Overview combines the document and relational views.
type Overview struct {
	Document   DocumentTotals  `json:"document"`
	Relational PortfolioTotals `json:"relational"`
	Sets       []SetSummary    `json:"sets"`
}
