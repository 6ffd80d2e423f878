package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tcg-inventory-api/internal/model"
	"tcg-inventory-api/internal/service"
	"tcg-inventory-api/pkg/response"
)

// LedgerHandler serves the relational store views under /api/v1.
type LedgerHandler struct {
	ledgerService  *service.LedgerService
	summaryService *service.SummaryService
	catalogService *service.CatalogService
	logger         *zap.Logger
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(
	ledgerService *service.LedgerService,
	summaryService *service.SummaryService,
	catalogService *service.CatalogService,
	logger *zap.Logger,
) *LedgerHandler {
	return &LedgerHandler{
		ledgerService:  ledgerService,
		summaryService: summaryService,
		catalogService: catalogService,
		logger:         logger.Named("ledger_handler"),
	}
}

type slabSaleRequest struct {
	SalePrice       decimal.Decimal `json:"sale_price" validate:"gt=0"`
	ShippingCharged decimal.Decimal `json:"shipping_charged" validate:"gte=0"`
	ShippingCost    decimal.Decimal `json:"shipping_cost" validate:"gte=0"`
	EbayFees        decimal.Decimal `json:"ebay_fees" validate:"gte=0"`
	SaleDate        string          `json:"sale_date" validate:"omitempty,datetime=2006-01-02"`
}

type ledgerStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Summary handles GET /api/v1/summary
func (h *LedgerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.summaryService.SetSummaries(r.Context(), r.URL.Query().Get("series"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.List(w, summaries, len(summaries))
}

// ListSeries handles GET /api/v1/series
func (h *LedgerHandler) ListSeries(w http.ResponseWriter, r *http.Request) {
	series, err := h.catalogService.ListSeries(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.List(w, series, len(series))
}

// ListSets handles GET /api/v1/sets
func (h *LedgerHandler) ListSets(w http.ResponseWriter, r *http.Request) {
	sets, err := h.catalogService.ListSets(r.Context(), r.URL.Query().Get("series"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.List(w, sets, len(sets))
}

// ListBoxes handles GET /api/v1/boxes
func (h *LedgerHandler) ListBoxes(w http.ResponseWriter, r *http.Request) {
	boxes, err := h.ledgerService.Boxes(r.Context(), r.URL.Query().Get("set"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.List(w, boxes, len(boxes.Business)+len(boxes.Stashed))
}

// ListSales handles GET /api/v1/sales
func (h *LedgerHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.ledgerService.Sales(r.Context(), r.URL.Query().Get("set"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.List(w, sales, len(sales))
}

// ListSlabs handles GET /api/v1/slabs
func (h *LedgerHandler) ListSlabs(w http.ResponseWriter, r *http.Request) {
	var status model.SlabStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		var err error
		if status, err = model.ParseSlabStatus(raw); err != nil {
			writeError(w, h.logger, err)
			return
		}
	}

	slabs, err := h.ledgerService.Slabs(r.Context(), status)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.List(w, slabs, len(slabs))
}

// GetSlab handles GET /api/v1/slabs/{cert}
func (h *LedgerHandler) GetSlab(w http.ResponseWriter, r *http.Request) {
	slab, err := h.ledgerService.Slab(r.Context(), chi.URLParam(r, "cert"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.OK(w, slab)
}

// UpdateSlabStatus handles PUT /api/v1/slabs/{cert}/status
func (h *LedgerHandler) UpdateSlabStatus(w http.ResponseWriter, r *http.Request) {
	var req ledgerStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	status, err := model.ParseSlabStatus(req.Status)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	slab, err := h.ledgerService.UpdateSlabStatus(r.Context(), chi.URLParam(r, "cert"), status)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.OK(w, slab)
}

// RecordSale handles POST /api/v1/slabs/{cert}/sale
func (h *LedgerHandler) RecordSale(w http.ResponseWriter, r *http.Request) {
	var req slabSaleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	var saleDate time.Time
	if req.SaleDate != "" {
		var err error
		if saleDate, err = model.ParseDate(req.SaleDate); err != nil {
			writeError(w, h.logger, validationError(err))
			return
		}
	}

	slab, err := h.ledgerService.RecordSale(r.Context(), chi.URLParam(r, "cert"), model.SlabSale{
		SalePrice:       req.SalePrice,
		ShippingCharged: req.ShippingCharged,
		ShippingCost:    req.ShippingCost,
		EbayFees:        req.EbayFees,
		SaleDate:        saleDate,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.OK(w, slab)
}
