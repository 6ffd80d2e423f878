package handler

import (
	"net/http"

	"go.uber.org/zap"

	"tcg-inventory-api/internal/service"
	"tcg-inventory-api/pkg/response"
)

// GradingHandler drives the grading-service workflow.
type GradingHandler struct {
	gradingService *service.GradingService
	logger         *zap.Logger
}

// NewGradingHandler creates a new grading handler.
func NewGradingHandler(gradingService *service.GradingService, logger *zap.Logger) *GradingHandler {
	return &GradingHandler{
		gradingService: gradingService,
		logger:         logger.Named("grading_handler"),
	}
}

// Status handles GET /psa-status
func (h *GradingHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.gradingService.Status(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.OK(w, status)
}

// Process handles POST /process-psa
func (h *GradingHandler) Process(w http.ResponseWriter, r *http.Request) {
	run, err := h.gradingService.ProcessPending(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.OK(w, run)
}

// PromoteReady handles POST /update-slabs
func (h *GradingHandler) PromoteReady(w http.ResponseWriter, r *http.Request) {
	certs, err := h.gradingService.PromoteReady(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.OK(w, map[string]interface{}{
		"updated": len(certs),
		"certs":   certs,
	})
}
