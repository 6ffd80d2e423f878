package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tcg-inventory-api/internal/catalog"
	"tcg-inventory-api/internal/model"
	"tcg-inventory-api/internal/repository"
)

// Sequential set kinds.
const (
	SequencePokemon  = "pokemon"
	SequenceSetBased = "set_based"
)

// AddBoxInput describes a box added through the inventory document.
type AddBoxInput struct {
	SetName      string
	PurchaseDate string
	Source       string
	Price        decimal.Decimal
	IsStashed    bool
	CaseID       string
}

// AddCaseInput describes a sealed case.
type AddCaseInput struct {
	SetName      string
	PurchaseDate string
	Source       string
	PricePerBox  decimal.Decimal
}

// AddSlabInput describes a slab added by hand.
type AddSlabInput struct {
	CertNumber string
	SetName    string
	Status     model.SlabStatus
	Details    json.RawMessage
}

// InventoryService maintains the inventory document.
//
// Every mutation loads the document, changes it and saves it while holding a
// mutex, so writers inside one process never interleave. Separate processes
// sharing the same document can still overwrite each other's changes.
type InventoryService struct {
	mu     sync.Mutex
	repo   repository.DocumentRepository
	ref    *catalog.Reference
	logger *zap.Logger
}

// NewInventoryService creates a new inventory service.
func NewInventoryService(repo repository.DocumentRepository, ref *catalog.Reference, logger *zap.Logger) *InventoryService {
	return &InventoryService{
		repo:   repo,
		ref:    ref,
		logger: logger.Named("inventory"),
	}
}

// Document returns the current inventory document.
func (s *InventoryService) Document(ctx context.Context) (*model.InventoryDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Load(ctx)
}

// Totals returns the document's portfolio counters.
func (s *InventoryService) Totals(ctx context.Context) (model.DocumentTotals, error) {
	doc, err := s.Document(ctx)
	if err != nil {
		return model.DocumentTotals{}, err
	}
	return doc.Totals(), nil
}

// mutate runs fn against a freshly loaded document and saves the result.
func (s *InventoryService) mutate(ctx context.Context, fn func(doc *model.InventoryDocument) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("inventory document inconsistent: %w", err)
	}
	return s.repo.Save(ctx, doc)
}

func (s *InventoryService) requireSet(name string) (model.CatalogEntry, error) {
	entry, ok := s.ref.Lookup(s.ref.Normalize(name))
	if !ok {
		return model.CatalogEntry{}, fmt.Errorf("%w: %s", model.ErrSetNotFound, name)
	}
	return entry, nil
}

// AddBox records a box as opened, as a loose stashed box, or inside an
// existing case, and returns its generated ID.
func (s *InventoryService) AddBox(ctx context.Context, in AddBoxInput) (string, error) {
	entry, err := s.requireSet(in.SetName)
	if err != nil {
		return "", err
	}

	var boxID string
	err = s.mutate(ctx, func(doc *model.InventoryDocument) error {
		boxID = fmt.Sprintf("%s-%d", s.ref.Code(entry.Name), nextBoxNumber(doc, entry.Name))

		switch {
		case in.IsStashed && in.CaseID != "":
			return addToCase(doc, entry.Name, in.CaseID, model.StashedItem{
				ID: boxID, PurchaseDate: in.PurchaseDate, Source: in.Source, Price: in.Price,
			})
		case in.IsStashed:
			set := stashedSet(doc, entry)
			set.LooseBoxes.Items = append(set.LooseBoxes.Items, model.StashedItem{
				ID: boxID, PurchaseDate: in.PurchaseDate, Source: in.Source, Price: in.Price,
			})
			set.LooseBoxes.Total++
			set.TotalBoxesStashed++
		default:
			set := openedSet(doc, entry)
			set.Boxes.Boxes = append(set.Boxes.Boxes, model.OpenedBox{
				ID:           boxID,
				PurchaseDate: in.PurchaseDate,
				Source:       in.Source,
				Price:        in.Price,
				TotalPacks:   set.Boxes.PacksPerBox,
			})
			set.Boxes.Purchased++
			set.Packs.Total += set.Boxes.PacksPerBox
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("box added", zap.String("box_id", boxID), zap.String("set", entry.Name), zap.Bool("stashed", in.IsStashed))
	return boxID, nil
}

// AddCase records a sealed case and returns its generated ID.
func (s *InventoryService) AddCase(ctx context.Context, in AddCaseInput) (string, error) {
	entry, err := s.requireSet(in.SetName)
	if err != nil {
		return "", err
	}

	var caseID string
	err = s.mutate(ctx, func(doc *model.InventoryDocument) error {
		set := stashedSet(doc, entry)
		caseID = fmt.Sprintf("%s-C%d", s.ref.Code(entry.Name), nextCaseNumber(set))

		set.Cases.Items = append(set.Cases.Items, model.Case{
			ID:           caseID,
			PurchaseDate: in.PurchaseDate,
			Source:       in.Source,
			PricePerBox:  in.PricePerBox,
			Boxes:        []model.StashedItem{},
		})
		set.Cases.Total++
		set.TotalBoxesStashed += set.BoxesPerCase
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("case added", zap.String("case_id", caseID), zap.String("set", entry.Name))
	return caseID, nil
}

// AddSlab records a slab under the opened inventory of its set.
func (s *InventoryService) AddSlab(ctx context.Context, in AddSlabInput) error {
	if !model.ValidCertNumber(in.CertNumber) {
		return fmt.Errorf("%w: %q", model.ErrInvalidCertNumber, in.CertNumber)
	}
	status := in.Status
	if status == "" {
		status = model.SlabSubmitted
	}

	err := s.mutate(ctx, func(doc *model.InventoryDocument) error {
		if _, _, found := findSlab(doc, in.CertNumber); found {
			return fmt.Errorf("%w: %s", model.ErrSlabExists, in.CertNumber)
		}

		entry, ok := s.ref.Lookup(s.ref.Normalize(in.SetName))
		if !ok {
			entry = model.CatalogEntry{Name: in.SetName, PacksPerBox: model.DefaultPacksPerBox}
		}
		set := openedSet(doc, entry)
		if set.Slabs == nil {
			set.Slabs = model.NewSlabGroup()
		}
		set.Slabs.Items = append(set.Slabs.Items, model.DocumentSlab{
			CertNumber: in.CertNumber,
			Status:     status,
			Details:    in.Details,
		})
		set.Slabs.Total++
		set.Slabs.Status[status]++
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("slab added", zap.String("cert", in.CertNumber), zap.String("status", string(status)))
	return nil
}

// UpdateSlabStatus moves a document slab to a new status.
func (s *InventoryService) UpdateSlabStatus(ctx context.Context, certNumber string, status model.SlabStatus) error {
	return s.mutate(ctx, func(doc *model.InventoryDocument) error {
		group, idx, found := findSlab(doc, certNumber)
		if !found {
			return fmt.Errorf("%w: %s", model.ErrSlabNotFound, certNumber)
		}

		from := group.Items[idx].Status
		if err := model.CheckTransition(from, status, model.OriginManual); err != nil {
			return err
		}

		group.Items[idx].Status = status
		group.Status[from]--
		group.Status[status]++
		return nil
	})
}

// AddSequentialSet records a group of certificate numbers. Pokemon groups
// keep a flat list; set-based groups store runs of consecutive numbers.
func (s *InventoryService) AddSequentialSet(ctx context.Context, kind, identifier string, certNumbers []string) error {
	if identifier == "" || len(certNumbers) == 0 {
		return fmt.Errorf("%w: identifier and cert numbers are required", model.ErrInvalidSequence)
	}

	certs := make([]string, len(certNumbers))
	for i, c := range certNumbers {
		certs[i] = strings.TrimSpace(c)
	}

	var ranges []model.CertRange
	switch kind {
	case SequencePokemon:
		sort.Strings(certs)
	case SequenceSetBased:
		var err error
		if ranges, err = certRanges(certs); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown type %q", model.ErrInvalidSequence, kind)
	}

	return s.mutate(ctx, func(doc *model.InventoryDocument) error {
		if kind == SequencePokemon {
			seq, ok := doc.SequentialSets.Pokemon[identifier]
			if !ok {
				seq = &model.PokemonSequence{Slabs: []string{}}
				doc.SequentialSets.Pokemon[identifier] = seq
			}
			seq.Slabs = append(seq.Slabs, certs...)
			seq.Total += len(certs)
			return nil
		}

		seq, ok := doc.SequentialSets.SetBased[identifier]
		if !ok {
			seq = &model.SetBasedSequence{Sequences: []model.CertRange{}}
			doc.SequentialSets.SetBased[identifier] = seq
		}
		seq.Sequences = append(seq.Sequences, ranges...)
		seq.Total += len(certs)
		return nil
	})
}

// certRanges sorts numeric certificate numbers and collapses consecutive runs.
func certRanges(certs []string) ([]model.CertRange, error) {
	type cert struct {
		raw string
		n   *big.Int
	}

	parsed := make([]cert, 0, len(certs))
	seen := make(map[string]bool, len(certs))
	for _, c := range certs {
		n, ok := new(big.Int).SetString(c, 10)
		if !ok || n.Sign() < 0 {
			return nil, fmt.Errorf("%w: cert number %q is not numeric", model.ErrInvalidSequence, c)
		}
		key := n.String()
		if seen[key] {
			return nil, fmt.Errorf("%w: duplicate cert number %q", model.ErrInvalidSequence, c)
		}
		seen[key] = true
		parsed = append(parsed, cert{raw: c, n: n})
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].n.Cmp(parsed[j].n) < 0 })

	one := big.NewInt(1)
	var ranges []model.CertRange
	var last *big.Int
	for _, c := range parsed {
		if last != nil && new(big.Int).Add(last, one).Cmp(c.n) == 0 {
			r := &ranges[len(ranges)-1]
			r.End = c.raw
			r.Count++
		} else {
			ranges = append(ranges, model.CertRange{Start: c.raw, End: c.raw, Count: 1})
		}
		last = c.n
	}
	return ranges, nil
}

func openedSet(doc *model.InventoryDocument, entry model.CatalogEntry) *model.OpenedSet {
	set, ok := doc.Opened.Sets[entry.Name]
	if !ok {
		packs := entry.PacksPerBox
		if packs <= 0 {
			packs = model.DefaultPacksPerBox
		}
		set = &model.OpenedSet{Boxes: model.OpenedBoxes{PacksPerBox: packs, Boxes: []model.OpenedBox{}}}
		doc.Opened.Sets[entry.Name] = set
	}
	return set
}

func stashedSet(doc *model.InventoryDocument, entry model.CatalogEntry) *model.StashedSet {
	set, ok := doc.Stashed.Sets[entry.Name]
	if !ok {
		packs := entry.PacksPerBox
		if packs <= 0 {
			packs = model.DefaultPacksPerBox
		}
		set = &model.StashedSet{
			BoxesPerCase: model.DefaultBoxesPerCase,
			PacksPerBox:  packs,
			Cases:        model.CaseGroup{Items: []model.Case{}},
			LooseBoxes:   model.LooseGroup{Items: []model.StashedItem{}},
		}
		doc.Stashed.Sets[entry.Name] = set
	}
	return set
}

func addToCase(doc *model.InventoryDocument, setName, caseID string, box model.StashedItem) error {
	set, ok := doc.Stashed.Sets[setName]
	if !ok {
		return fmt.Errorf("%w: no cases for set %s", model.ErrCaseNotFound, setName)
	}
	for i := range set.Cases.Items {
		c := &set.Cases.Items[i]
		if c.ID != caseID {
			continue
		}
		if len(c.Boxes) >= set.BoxesPerCase {
			return fmt.Errorf("%w: %s", model.ErrCaseFull, caseID)
		}
		c.Boxes = append(c.Boxes, box)
		return nil
	}
	return fmt.Errorf("%w: %s", model.ErrCaseNotFound, caseID)
}

func findSlab(doc *model.InventoryDocument, certNumber string) (*model.SlabGroup, int, bool) {
	for _, set := range doc.Opened.Sets {
		if set.Slabs == nil {
			continue
		}
		for i, item := range set.Slabs.Items {
			if item.CertNumber == certNumber {
				return set.Slabs, i, true
			}
		}
	}
	return nil, 0, false
}

// nextBoxNumber scans opened, loose and cased boxes of a set for the highest
// numeric suffix.
func nextBoxNumber(doc *model.InventoryDocument, setName string) int {
	highest := 0
	consider := func(id string) {
		if n, ok := idSuffix(id, "-"); ok && n > highest {
			highest = n
		}
	}

	if set, ok := doc.Opened.Sets[setName]; ok {
		for _, b := range set.Boxes.Boxes {
			consider(b.ID)
		}
	}
	if set, ok := doc.Stashed.Sets[setName]; ok {
		for _, b := range set.LooseBoxes.Items {
			consider(b.ID)
		}
		for _, c := range set.Cases.Items {
			for _, b := range c.Boxes {
				consider(b.ID)
			}
		}
	}
	return highest + 1
}

func nextCaseNumber(set *model.StashedSet) int {
	highest := 0
	for _, c := range set.Cases.Items {
		if n, ok := idSuffix(c.ID, "-C"); ok && n > highest {
			highest = n
		}
	}
	return highest + 1
}

func idSuffix(id, sep string) (int, bool) {
	i := strings.LastIndex(id, sep)
	if i < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(id[i+len(sep):])
	if err != nil {
		return 0, false
	}
	return n, true
}
