package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Slab is a graded card identified by its certificate number.
type Slab struct {
	CertNumber        string     `json:"cert_number"`
	SetName           string     `json:"set_name"`
	CardNumber        string     `json:"card_number"`
	CardName          string     `json:"card_name"`
	Grade             int        `json:"grade"`
	SubmissionDate    time.Time  `json:"submission_date"`
	ReturnDate        *time.Time `json:"return_date,omitempty"`
	Status            SlabStatus `json:"status"`
	PSADetailsFetched bool       `json:"psa_details_fetched"`
	PSAPopHigher      *int       `json:"psa_pop_higher,omitempty"`
	PSATotalPop       *int       `json:"psa_total_pop,omitempty"`
	PSALabelType      string     `json:"psa_label_type,omitempty"`
	FrontImagePath    string     `json:"front_image_path,omitempty"`
	BackImagePath     string     `json:"back_image_path,omitempty"`

	SalePrice       decimal.NullDecimal `json:"sale_price"`
	ShippingCharged decimal.NullDecimal `json:"shipping_charged"`
	ShippingCost    decimal.NullDecimal `json:"shipping_cost"`
	EbayFees        decimal.NullDecimal `json:"ebay_fees"`
	SaleDate        *time.Time          `json:"sale_date,omitempty"`
}

// HasImages reports whether both slab images are on disk.
func (s *Slab) HasImages() bool {
	return s.FrontImagePath != "" && s.BackImagePath != ""
}

// IsComplete reports whether grading-service data and both images have been fetched.
func (s *Slab) IsComplete() bool {
	return s.PSADetailsFetched && s.HasImages()
}

// ValidCertNumber reports whether cert is a non-empty run of ASCII digits.
// Certificate numbers name slab directories and grading-service URLs.
func ValidCertNumber(cert string) bool {
	if cert == "" {
		return false
	}
	for i := 0; i < len(cert); i++ {
		if cert[i] < '0' || cert[i] > '9' {
			return false
		}
	}
	return true
}

// SlabDetails holds the certificate fields written back from the grading service.
type SlabDetails struct {
	PopHigher *int
	TotalPop  *int
	LabelType string
}

// SlabSale is the sale information recorded when a listed slab sells.
type SlabSale struct {
	SalePrice       decimal.Decimal
	ShippingCharged decimal.Decimal
	ShippingCost    decimal.Decimal
	EbayFees        decimal.Decimal
	SaleDate        time.Time
}

// SlabStats summarizes grading progress across all slabs.
type SlabStats struct {
	Total      int64 `json:"total_slabs"`
	Complete   int64 `json:"complete_slabs"`
	Incomplete int64 `json:"incomplete_slabs"`
}
