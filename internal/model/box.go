package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BusinessBox is a sealed box bought for resale by the pack.
// PacksOpened and PacksSold are stored but nothing writes them yet.
type BusinessBox struct {
	ID           int64           `json:"id"`
	SetName      string          `json:"set_name"`
	PurchaseDate time.Time       `json:"purchase_date"`
	Source       string          `json:"source"`
	Price        decimal.Decimal `json:"price"`
	PacksOpened  int             `json:"packs_opened"`
	PacksSold    int             `json:"packs_sold"`
}

// StashedBox is a sealed box kept rather than resold.
type StashedBox struct {
	ID           int64           `json:"id"`
	SetName      string          `json:"set_name"`
	PurchaseDate time.Time       `json:"purchase_date"`
	Source       string          `json:"source"`
	Price        decimal.Decimal `json:"price"`
}

// PacksPerBoxUpdate carries a catalog pack-count correction found during purchase import.
type PacksPerBoxUpdate struct {
	SetName     string
	PacksPerBox int
}

// PurchaseBatch is everything a purchase import writes in one pass.
// Updates are applied in order, so the last row for a set wins.
type PurchaseBatch struct {
	PacksPerBox   []PacksPerBoxUpdate
	BusinessBoxes []BusinessBox
	StashedBoxes  []StashedBox
}
