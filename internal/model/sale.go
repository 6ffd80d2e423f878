package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PackSale is one marketplace sale line. SalePrice is the line total, not a unit price.
type PackSale struct {
	ID              int64           `json:"id"`
	SetName         string          `json:"set_name"`
	Quantity        int             `json:"quantity"`
	SalePrice       decimal.Decimal `json:"sale_price"`
	ShippingCharged decimal.Decimal `json:"shipping_charged"`
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
	EbayFees        decimal.Decimal `json:"ebay_fees"`
	SaleDate        time.Time       `json:"sale_date"`
}
