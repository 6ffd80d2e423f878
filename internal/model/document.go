package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DocumentVersion is written into new inventory documents.
const DocumentVersion = "1.0"

// InventoryDocument is the nested, manually maintained view of the inventory.
type InventoryDocument struct {
	Metadata       DocumentMetadata `json:"metadata"`
	Opened         OpenedInventory  `json:"opened"`
	Stashed        StashedInventory `json:"stashed"`
	SequentialSets SequentialSets   `json:"sequential_sets"`
}

type DocumentMetadata struct {
	LastUpdated time.Time `json:"last_updated"`
	Version     string    `json:"version"`
}

type OpenedInventory struct {
	Sets map[string]*OpenedSet `json:"sets"`
}

type StashedInventory struct {
	Sets map[string]*StashedSet `json:"sets"`
}

// OpenedSet tracks boxes opened for the pack business and the slabs pulled from them.
type OpenedSet struct {
	Boxes OpenedBoxes  `json:"boxes"`
	Packs PackCounters `json:"packs"`
	Slabs *SlabGroup   `json:"slabs,omitempty"`
}

type OpenedBoxes struct {
	Purchased   int         `json:"purchased"`
	Processed   int         `json:"processed"`
	PacksPerBox int         `json:"packs_per_box"`
	Boxes       []OpenedBox `json:"boxes"`
}

type OpenedBox struct {
	ID           string          `json:"id"`
	PurchaseDate string          `json:"purchase_date"`
	Source       string          `json:"source"`
	Price        decimal.Decimal `json:"price"`
	TotalPacks   int             `json:"total_packs"`
	PacksRipped  int             `json:"packs_ripped"`
	PacksSold    int             `json:"packs_sold"`
}

type PackCounters struct {
	Total  int `json:"total"`
	Ripped int `json:"ripped"`
	Sold   int `json:"sold"`
}

// SlabGroup keeps per-status counters alongside the slab items of a set.
type SlabGroup struct {
	Total  int                `json:"total"`
	Status map[SlabStatus]int `json:"status"`
	Items  []DocumentSlab     `json:"items"`
}

type DocumentSlab struct {
	CertNumber string          `json:"cert_number"`
	Status     SlabStatus      `json:"status"`
	Details    json.RawMessage `json:"details,omitempty"`
}

// StashedSet tracks sealed product kept out of the pack business.
type StashedSet struct {
	BoxesPerCase      int        `json:"boxes_per_case"`
	PacksPerBox       int        `json:"packs_per_box"`
	Cases             CaseGroup  `json:"cases"`
	LooseBoxes        LooseGroup `json:"loose_boxes"`
	TotalBoxesStashed int        `json:"total_boxes_stashed"`
}

type CaseGroup struct {
	Total int    `json:"total"`
	Items []Case `json:"items"`
}

type LooseGroup struct {
	Total int           `json:"total"`
	Items []StashedItem `json:"items"`
}

type Case struct {
	ID           string          `json:"id"`
	PurchaseDate string          `json:"purchase_date"`
	Source       string          `json:"source"`
	PricePerBox  decimal.Decimal `json:"price_per_box"`
	Boxes        []StashedItem   `json:"boxes"`
}

type StashedItem struct {
	ID           string          `json:"id"`
	PurchaseDate string          `json:"purchase_date"`
	Source       string          `json:"source"`
	Price        decimal.Decimal `json:"price"`
}

type SequentialSets struct {
	Pokemon  map[string]*PokemonSequence  `json:"pokemon"`
	SetBased map[string]*SetBasedSequence `json:"set_based"`
}

type PokemonSequence struct {
	Slabs []string `json:"slabs"`
	Total int      `json:"total"`
}

type SetBasedSequence struct {
	Sequences []CertRange `json:"sequences"`
	Total     int         `json:"total"`
}

// CertRange is a run of consecutive certificate numbers.
type CertRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Count int    `json:"count"`
}

// NewInventoryDocument returns an empty document stamped with now.
func NewInventoryDocument(now time.Time) *InventoryDocument {
	doc := &InventoryDocument{
		Metadata: DocumentMetadata{LastUpdated: now, Version: DocumentVersion},
	}
	doc.ensureMaps()
	return doc
}

// Normalize fills nil maps left by decoding a sparse document.
func (d *InventoryDocument) Normalize() {
	if d.Metadata.Version == "" {
		d.Metadata.Version = DocumentVersion
	}
	d.ensureMaps()
}

func (d *InventoryDocument) ensureMaps() {
	if d.Opened.Sets == nil {
		d.Opened.Sets = make(map[string]*OpenedSet)
	}
	if d.Stashed.Sets == nil {
		d.Stashed.Sets = make(map[string]*StashedSet)
	}
	if d.SequentialSets.Pokemon == nil {
		d.SequentialSets.Pokemon = make(map[string]*PokemonSequence)
	}
	if d.SequentialSets.SetBased == nil {
		d.SequentialSets.SetBased = make(map[string]*SetBasedSequence)
	}
}

// NewSlabGroup returns a slab group with a zero counter for every status.
func NewSlabGroup() *SlabGroup {
	g := &SlabGroup{Status: make(map[SlabStatus]int, len(SlabStatuses)), Items: []DocumentSlab{}}
	for _, s := range SlabStatuses {
		g.Status[s] = 0
	}
	return g
}

// Validate checks that every counter matches its item list.
func (d *InventoryDocument) Validate() error {
	for name, set := range d.Opened.Sets {
		if set.Boxes.Purchased != len(set.Boxes.Boxes) {
			return fmt.Errorf("opened set %q: purchased %d, boxes %d", name, set.Boxes.Purchased, len(set.Boxes.Boxes))
		}
		if set.Slabs == nil {
			continue
		}
		if set.Slabs.Total != len(set.Slabs.Items) {
			return fmt.Errorf("opened set %q: slab total %d, items %d", name, set.Slabs.Total, len(set.Slabs.Items))
		}
		byStatus := make(map[SlabStatus]int)
		for _, item := range set.Slabs.Items {
			byStatus[item.Status]++
		}
		for status, n := range set.Slabs.Status {
			if byStatus[status] != n {
				return fmt.Errorf("opened set %q: %s count %d, items %d", name, status, n, byStatus[status])
			}
		}
	}

	for name, set := range d.Stashed.Sets {
		if set.Cases.Total != len(set.Cases.Items) {
			return fmt.Errorf("stashed set %q: case total %d, items %d", name, set.Cases.Total, len(set.Cases.Items))
		}
		if set.LooseBoxes.Total != len(set.LooseBoxes.Items) {
			return fmt.Errorf("stashed set %q: loose total %d, items %d", name, set.LooseBoxes.Total, len(set.LooseBoxes.Items))
		}
		want := set.Cases.Total*set.BoxesPerCase + set.LooseBoxes.Total
		if set.TotalBoxesStashed != want {
			return fmt.Errorf("stashed set %q: total boxes %d, expected %d", name, set.TotalBoxesStashed, want)
		}
	}

	for id, seq := range d.SequentialSets.Pokemon {
		if seq.Total != len(seq.Slabs) {
			return fmt.Errorf("sequential set %q: total %d, slabs %d", id, seq.Total, len(seq.Slabs))
		}
	}
	for id, seq := range d.SequentialSets.SetBased {
		sum := 0
		for _, r := range seq.Sequences {
			sum += r.Count
		}
		if seq.Total != sum {
			return fmt.Errorf("sequential set %q: total %d, ranges cover %d", id, seq.Total, sum)
		}
	}
	return nil
}

// DocumentTotals are the portfolio counts shown on the overview.
type DocumentTotals struct {
	OpenedBoxes   int `json:"opened_boxes"`
	OpenedPacks   int `json:"opened_packs"`
	OpenedSlabs   int `json:"opened_slabs"`
	StashedCases  int `json:"stashed_cases"`
	StashedBoxes  int `json:"stashed_boxes"`
	SequentialSet int `json:"sequential_sets"`
}

// Totals sums counters across every set.
func (d *InventoryDocument) Totals() DocumentTotals {
	var t DocumentTotals
	for _, set := range d.Opened.Sets {
		t.OpenedBoxes += set.Boxes.Purchased
		t.OpenedPacks += set.Packs.Total
		if set.Slabs != nil {
			t.OpenedSlabs += set.Slabs.Total
		}
	}
	for _, set := range d.Stashed.Sets {
		t.StashedCases += set.Cases.Total
		t.StashedBoxes += set.TotalBoxesStashed
	}
	t.SequentialSet = len(d.SequentialSets.Pokemon) + len(d.SequentialSets.SetBased)
	return t
}
