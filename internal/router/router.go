package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"tcg-inventory-api/internal/handler"
	"tcg-inventory-api/internal/middleware"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler          *handler.Handler
	InventoryHandler *handler.InventoryHandler
	UploadHandler    *handler.UploadHandler
	GradingHandler   *handler.GradingHandler
	LedgerHandler    *handler.LedgerHandler
	AdminHandler     *handler.AdminHandler
	AuthMiddleware   func(http.Handler) http.Handler
	Logger           *zap.Logger

	// ImageDir is served read-only under /images/ when set.
	ImageDir string
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-API-Key"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	if cfg.ImageDir != "" {
		fileServer := http.FileServer(http.Dir(cfg.ImageDir))
		r.Handle("/images/*", http.StripPrefix("/images/", fileServer))
	}

	r.Group(func(r chi.Router) {
		if cfg.AuthMiddleware != nil {
			r.Use(cfg.AuthMiddleware)
		}

		if cfg.InventoryHandler != nil {
			r.Get("/", cfg.InventoryHandler.Overview)
			r.Route("/api", func(r chi.Router) {
				r.Get("/inventory", cfg.InventoryHandler.GetDocument)
				r.Post("/box/add", cfg.InventoryHandler.AddBox)
				r.Post("/case/add", cfg.InventoryHandler.AddCase)
				r.Post("/slab/add", cfg.InventoryHandler.AddSlab)
				r.Put("/slab/status", cfg.InventoryHandler.UpdateSlabStatus)
				r.Post("/sequential/add", cfg.InventoryHandler.AddSequentialSet)
			})
		}

		if cfg.UploadHandler != nil {
			r.Post("/upload", cfg.UploadHandler.Upload)
			r.Post("/reset", cfg.UploadHandler.Reset)
		}

		if cfg.GradingHandler != nil {
			r.Get("/psa-status", cfg.GradingHandler.Status)
			r.Post("/process-psa", cfg.GradingHandler.Process)
			r.Post("/update-slabs", cfg.GradingHandler.PromoteReady)
		}

		r.Route("/api/v1", func(r chi.Router) {
			if cfg.Handler != nil {
				r.Get("/health", cfg.Handler.Health)
				r.Get("/ready", cfg.Handler.Ready)
			}

			if cfg.LedgerHandler != nil {
				r.Get("/summary", cfg.LedgerHandler.Summary)
				r.Get("/series", cfg.LedgerHandler.ListSeries)
				r.Get("/sets", cfg.LedgerHandler.ListSets)
				r.Get("/boxes", cfg.LedgerHandler.ListBoxes)
				r.Get("/sales", cfg.LedgerHandler.ListSales)
				r.Route("/slabs", func(r chi.Router) {
					r.Get("/", cfg.LedgerHandler.ListSlabs)
					r.Get("/{cert}", cfg.LedgerHandler.GetSlab)
					r.Put("/{cert}/status", cfg.LedgerHandler.UpdateSlabStatus)
					r.Post("/{cert}/sale", cfg.LedgerHandler.RecordSale)
				})
			}

			if cfg.AdminHandler != nil {
				r.Route("/admin", func(r chi.Router) {
					r.Get("/stats", cfg.AdminHandler.GetStats)
					r.Post("/catalog/reload", cfg.AdminHandler.ReloadCatalog)
				})
			}
		})
	})

	return r
}
