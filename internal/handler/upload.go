package handler

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"tcg-inventory-api/internal/model"
	"tcg-inventory-api/internal/service"
	"tcg-inventory-api/pkg/apierror"
	"tcg-inventory-api/pkg/response"
)

// maxUploadSize caps multipart uploads.
const maxUploadSize = 32 << 20

// UploadHandler handles CSV uploads and the store reset.
type UploadHandler struct {
	uploadService *service.UploadService
	ledgerService *service.LedgerService
	logger        *zap.Logger
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(uploadService *service.UploadService, ledgerService *service.LedgerService, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		ledgerService: ledgerService,
		logger:        logger.Named("upload_handler"),
	}
}

// UploadResponse is returned after a successful import.
type UploadResponse struct {
	Message  string              `json:"message"`
	Warnings []string            `json:"warnings,omitempty"`
	Result   *model.ImportResult `json:"result"`
}

// Upload handles POST /upload
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(w, apierror.RequestTooLarge(""))
			return
		}
		response.Error(w, apierror.BadRequest("expected a multipart form"))
		return
	}

	kind, err := model.ParseImportType(r.FormValue("type"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.Error(w, apierror.BadRequest("No file selected"))
		return
	}
	defer file.Close()

	result, err := h.uploadService.Upload(r.Context(), kind, header.Filename, file)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.OK(w, UploadResponse{
		Message:  fmt.Sprintf("Successfully imported %s data", kind),
		Warnings: result.Warnings(),
		Result:   result,
	})
}

// Reset handles POST /reset
func (h *UploadHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.ledgerService.Reset(r.Context()); err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.OK(w, map[string]string{"message": "Database reset successfully"})
}
