package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tcg-inventory-api/internal/model"
	"tcg-inventory-api/internal/service"
	"tcg-inventory-api/pkg/response"
)

// InventoryHandler handles the inventory document endpoints.
type InventoryHandler struct {
	inventoryService *service.InventoryService
	summaryService   *service.SummaryService
	logger           *zap.Logger
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(inventoryService *service.InventoryService, summaryService *service.SummaryService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		summaryService:   summaryService,
		logger:           logger.Named("inventory_handler"),
	}
}

type addBoxRequest struct {
	SetName      string          `json:"set_name" validate:"required"`
	PurchaseDate string          `json:"purchase_date" validate:"required,datetime=2006-01-02"`
	Source       string          `json:"source"`
	Price        decimal.Decimal `json:"price" validate:"gte=0"`
	IsStashed    bool            `json:"is_stashed"`
	CaseID       string          `json:"case_id"`
}

type addCaseRequest struct {
	SetName      string          `json:"set_name" validate:"required"`
	PurchaseDate string          `json:"purchase_date" validate:"required,datetime=2006-01-02"`
	Source       string          `json:"source"`
	PricePerBox  decimal.Decimal `json:"price_per_box" validate:"gte=0"`
}

type addSlabRequest struct {
	CertNumber  string          `json:"cert_number" validate:"required"`
	SetName     string          `json:"set_name" validate:"required"`
	Status      string          `json:"status"`
	CertDetails json.RawMessage `json:"cert_details"`
}

type slabStatusRequest struct {
	CertNumber string `json:"cert_number" validate:"required"`
	Status     string `json:"status" validate:"required"`
}

type addSequentialRequest struct {
	Type        string   `json:"type" validate:"required,oneof=pokemon set_based"`
	Identifier  string   `json:"identifier" validate:"required"`
	CertNumbers []string `json:"cert_numbers" validate:"required,min=1,dive,required"`
}

// Overview handles GET /
func (h *InventoryHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.summaryService.Overview(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.OK(w, overview)
}

// GetDocument handles GET /api/inventory
func (h *InventoryHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.inventoryService.Document(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.OK(w, doc)
}

// AddBox handles POST /api/box/add
func (h *InventoryHandler) AddBox(w http.ResponseWriter, r *http.Request) {
	var req addBoxRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	boxID, err := h.inventoryService.AddBox(r.Context(), service.AddBoxInput{
		SetName:      req.SetName,
		PurchaseDate: req.PurchaseDate,
		Source:       req.Source,
		Price:        req.Price,
		IsStashed:    req.IsStashed,
		CaseID:       req.CaseID,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.Created(w, map[string]string{"box_id": boxID})
}

// AddCase handles POST /api/case/add
func (h *InventoryHandler) AddCase(w http.ResponseWriter, r *http.Request) {
	var req addCaseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	caseID, err := h.inventoryService.AddCase(r.Context(), service.AddCaseInput{
		SetName:      req.SetName,
		PurchaseDate: req.PurchaseDate,
		Source:       req.Source,
		PricePerBox:  req.PricePerBox,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.Created(w, map[string]string{"case_id": caseID})
}

// AddSlab handles POST /api/slab/add
func (h *InventoryHandler) AddSlab(w http.ResponseWriter, r *http.Request) {
	var req addSlabRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	var status model.SlabStatus
	if req.Status != "" {
		var err error
		if status, err = model.ParseSlabStatus(req.Status); err != nil {
			writeError(w, h.logger, err)
			return
		}
	}

	err := h.inventoryService.AddSlab(r.Context(), service.AddSlabInput{
		CertNumber: req.CertNumber,
		SetName:    req.SetName,
		Status:     status,
		Details:    req.CertDetails,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.Created(w, map[string]string{"cert_number": req.CertNumber})
}

// UpdateSlabStatus handles PUT /api/slab/status
func (h *InventoryHandler) UpdateSlabStatus(w http.ResponseWriter, r *http.Request) {
	var req slabStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	status, err := model.ParseSlabStatus(req.Status)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.inventoryService.UpdateSlabStatus(r.Context(), req.CertNumber, status); err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.OK(w, map[string]string{"cert_number": req.CertNumber, "status": string(status)})
}

// AddSequentialSet handles POST /api/sequential/add
func (h *InventoryHandler) AddSequentialSet(w http.ResponseWriter, r *http.Request) {
	var req addSequentialRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.inventoryService.AddSequentialSet(r.Context(), req.Type, req.Identifier, req.CertNumbers); err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.Created(w, map[string]interface{}{
		"type":       req.Type,
		"identifier": req.Identifier,
		"count":      len(req.CertNumbers),
	})
}
