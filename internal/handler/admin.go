package handler

import (
	"net/http"
	"runtime"
	"time"

	"go.uber.org/zap"

	"tcg-inventory-api/internal/cache"
	"tcg-inventory-api/internal/service"
	"tcg-inventory-api/pkg/response"
)

// AdminHandler handles admin-related HTTP requests.
type AdminHandler struct {
	ledgerService  *service.LedgerService
	catalogService *service.CatalogService
	quotaCache     cache.Cache
	storeType      string
	documentType   string
	startTime      time.Time
	logger         *zap.Logger
}

// NewAdminHandler creates a new admin handler. quotaCache may be nil when the
// quota log lives in a file.
func NewAdminHandler(
	ledgerService *service.LedgerService,
	catalogService *service.CatalogService,
	quotaCache cache.Cache,
	storeType, documentType string,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		ledgerService:  ledgerService,
		catalogService: catalogService,
		quotaCache:     quotaCache,
		storeType:      storeType,
		documentType:   documentType,
		startTime:      time.Now(),
		logger:         logger.Named("admin_handler"),
	}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats := make(map[string]interface{})

	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)
	stats["store_type"] = h.storeType
	stats["document_type"] = h.documentType
	stats["catalog_sets"] = h.catalogService.Reference().Len()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
		"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
		"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
		"heap_alloc_mb":  float64(memStats.HeapAlloc) / 1024 / 1024,
		"heap_inuse_mb":  float64(memStats.HeapInuse) / 1024 / 1024,
		"num_gc":         memStats.NumGC,
		"goroutines":     runtime.NumGoroutine(),
	}

	if h.quotaCache != nil {
		if err := h.quotaCache.Ping(ctx); err != nil {
			stats["quota_cache"] = map[string]interface{}{"status": "error", "error": err.Error()}
		} else {
			stats["quota_cache"] = map[string]interface{}{"status": "connected"}
		}
	} else {
		stats["quota_cache"] = map[string]interface{}{"status": "not_configured"}
	}

	storeStats, err := h.ledgerService.Stats(ctx)
	if err != nil {
		stats["store"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		storeStats["status"] = "connected"
		stats["store"] = storeStats
	}

	stats["runtime"] = map[string]interface{}{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"cpus":       runtime.NumCPU(),
	}

	response.OK(w, stats)
}

// ReloadCatalog handles POST /api/v1/admin/catalog/reload
func (h *AdminHandler) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	n, err := h.catalogService.Reload(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.OK(w, map[string]int{"sets_loaded": n})
}
