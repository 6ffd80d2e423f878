// Package catalog loads the reference list of product lines and resolves the
// loosely formatted set names found in CSV exports.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"tcg-inventory-api/internal/model"
)

// UnknownCode is returned by Code for names missing from the catalog.
const UnknownCode = "UNK"

// Reference is an immutable, name-keyed view of the catalog.
type Reference struct {
	entries map[string]model.CatalogEntry
	// index maps lower-cased names and ex-less aliases to canonical names.
	index map[string]string
}

func newReference() *Reference {
	return &Reference{
		entries: make(map[string]model.CatalogEntry),
		index:   make(map[string]string),
	}
}

// NewReference builds a reference from entries. Later entries with the same name win.
func NewReference(entries ...model.CatalogEntry) *Reference {
	r := newReference()
	for _, e := range entries {
		r.add(e)
	}
	return r
}

func (r *Reference) add(e model.CatalogEntry) {
	if e.PacksPerBox <= 0 {
		e.PacksPerBox = model.DefaultPacksPerBox
	}
	r.entries[e.Name] = e

	key := strings.ToLower(strings.TrimSpace(e.Name))
	r.index[key] = e.Name
	if strings.Contains(key, " ex") {
		alias := strings.ReplaceAll(key, " ex", "")
		if _, taken := r.index[alias]; !taken {
			r.index[alias] = e.Name
		}
	}
}

// Normalize resolves a raw set name to its canonical catalog name. Unresolved
// names are returned unchanged and must be treated as unknown by the caller.
func (r *Reference) Normalize(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if name, ok := r.index[key]; ok {
		return name
	}
	if strings.Contains(key, " ex") {
		if name, ok := r.index[strings.ReplaceAll(key, " ex", "")]; ok {
			return name
		}
	}
	return raw
}

// Lookup returns the entry stored under the exact canonical name.
func (r *Reference) Lookup(name string) (model.CatalogEntry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Contains reports whether name is a canonical catalog name.
func (r *Reference) Contains(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// Code returns the short set code, or UnknownCode.
func (r *Reference) Code(name string) string {
	if e, ok := r.entries[name]; ok && e.Code != "" {
		return e.Code
	}
	return UnknownCode
}

// Entries returns all entries sorted by name.
func (r *Reference) Entries() []model.CatalogEntry {
	out := make([]model.CatalogEntry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Reference) Len() int {
	return len(r.entries)
}

// seriesFile is the {"series": {...}} catalog shape.
type seriesFile struct {
	Series map[string]struct {
		MainSets    []seriesSet `json:"main_sets"`
		SpecialSets []seriesSet `json:"special_sets"`
	} `json:"series"`
}

type seriesSet struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	PacksPerBox int    `json:"packs_per_box"`
}

// setsFile is the {"sets": {...}} catalog shape.
type setsFile struct {
	Sets map[string]struct {
		Series      string `json:"series"`
		PacksPerBox int    `json:"packs_per_box"`
	} `json:"sets"`
}

// LoadSeries reads the series-shaped catalog. A missing or malformed file is
// logged and yields an empty reference.
func LoadSeries(path string, logger *zap.Logger) *Reference {
	var f seriesFile
	if err := readJSON(path, &f); err != nil {
		logger.Warn("catalog unavailable, using empty reference", zap.String("path", path), zap.Error(err))
		return newReference()
	}
	return fromSeries(f)
}

// fromSeries builds a reference from an already decoded series catalog.
func fromSeries(f seriesFile) *Reference {
	r := newReference()
	keys := make([]string, 0, len(f.Series))
	for k := range f.Series {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		s := f.Series[key]
		label := SeriesLabel(key)
		for _, group := range [][]seriesSet{s.MainSets, s.SpecialSets} {
			for _, set := range group {
				if strings.TrimSpace(set.Name) == "" {
					continue
				}
				r.add(model.CatalogEntry{
					Name:        set.Name,
					Code:        set.Code,
					Series:      label,
					PacksPerBox: set.PacksPerBox,
				})
			}
		}
	}
	return r
}

// LoadSets reads the sets-shaped catalog. A missing or malformed file is
// logged and yields an empty reference.
func LoadSets(path string, logger *zap.Logger) *Reference {
	var f setsFile
	if err := readJSON(path, &f); err != nil {
		logger.Warn("sets catalog unavailable, using empty reference", zap.String("path", path), zap.Error(err))
		return newReference()
	}

	r := newReference()
	for name, set := range f.Sets {
		if strings.TrimSpace(name) == "" {
			continue
		}
		r.add(model.CatalogEntry{
			Name:        name,
			Code:        SetCode(name),
			Series:      set.Series,
			PacksPerBox: set.PacksPerBox,
		})
	}
	return r
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse catalog: %w", err)
	}
	return nil
}

// SeriesLabel turns a series key such as "scarlet_violet" into "Scarlet Violet".
func SeriesLabel(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// SetCode derives a code from a set name for catalogs that carry none.
func SetCode(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "")
}
