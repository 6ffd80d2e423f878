package model

import "time"

// DateLayout is the calendar-date format used in CSV exports, the database and the inventory document.
const DateLayout = "2006-01-02"

// DefaultPacksPerBox is used when a catalog source does not declare a pack count.
const DefaultPacksPerBox = 30

// DefaultBoxesPerCase is the number of sealed boxes in a case.
const DefaultBoxesPerCase = 6

// CatalogEntry represents a product line (set) in the reference catalog.
type CatalogEntry struct {
	Name        string `json:"name" db:"name"`
	Code        string `json:"code" db:"code"`
	Series      string `json:"series" db:"series"`
	PacksPerBox int    `json:"packs_per_box" db:"packs_per_box"`
}

// FormatDate renders t as a calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
