package model

import (
	"fmt"
	"strings"
)

// ImportType identifies which CSV reconciler handles an upload.
type ImportType string

const (
	ImportPurchases ImportType = "purchases"
	ImportSales     ImportType = "sales"
	ImportGrading   ImportType = "psa"
)

func ParseImportType(s string) (ImportType, error) {
	switch t := ImportType(strings.ToLower(strings.TrimSpace(s))); t {
	case ImportPurchases, ImportSales, ImportGrading:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownImportType, s)
}

// ImportResult reports the outcome of one CSV import.
type ImportResult struct {
	Success bool `json:"success"`
	// UnmatchedSets lists raw set names that could not be resolved in the catalog.
	UnmatchedSets []string `json:"unmatched_sets"`
	// DuplicateEntries is reserved for duplicate-row detection, which is not implemented.
	DuplicateEntries []string `json:"duplicate_entries"`

	RowsRead     int `json:"rows_read"`
	RowsImported int `json:"rows_imported"`
	RowsSkipped  int `json:"rows_skipped"`
}

// NewImportResult returns a result with non-nil lists.
func NewImportResult() *ImportResult {
	return &ImportResult{UnmatchedSets: []string{}, DuplicateEntries: []string{}}
}

// Warnings renders the non-fatal notices surfaced to the uploader.
func (r *ImportResult) Warnings() []string {
	var out []string
	for _, name := range r.UnmatchedSets {
		out = append(out, fmt.Sprintf("Set not found in catalog: %s", name))
	}
	for _, dup := range r.DuplicateEntries {
		out = append(out, fmt.Sprintf("Duplicate entry: %s", dup))
	}
	return out
}
