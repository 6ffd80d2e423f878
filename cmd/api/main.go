package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tcg-inventory-api/internal/cache"
	"tcg-inventory-api/internal/catalog"
	"tcg-inventory-api/internal/config"
	"tcg-inventory-api/internal/handler"
	"tcg-inventory-api/internal/importer"
	"tcg-inventory-api/internal/middleware"
	"tcg-inventory-api/internal/psa"
	"tcg-inventory-api/internal/quota"
	"tcg-inventory-api/internal/repository"
	"tcg-inventory-api/internal/router"
	"tcg-inventory-api/internal/service"
)

func main() {
	cfg := config.MustLoad()

	logger := newLogger(cfg.App)
	defer logger.Sync()

	logger.Info("starting",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Environment),
	)

	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		logger.Fatal("failed to create data directory", zap.Error(err))
	}

	store := openStore(cfg, logger)
	defer store.Close()

	documents := openDocuments(cfg, logger)
	defer documents.Close()

	quotaStore, quotaCache := openQuotaStore(cfg, logger)
	if quotaCache != nil {
		defer quotaCache.Close()
	}
	tracker := quota.NewTracker(quotaStore, cfg.Quota.DailyLimit, logger)

	var certClient service.CertClient
	token, err := psa.LoadToken(cfg.Grading.Token, cfg.TokenFile())
	if err != nil {
		logger.Warn("grading service disabled", zap.Error(err))
	} else {
		client, err := psa.NewClient(psa.Config{
			BaseURL:   cfg.Grading.BaseURL,
			Token:     token,
			Timeout:   cfg.Grading.Timeout,
			CallDelay: cfg.Grading.CallDelay,
		}, logger)
		if err != nil {
			logger.Fatal("failed to create grading client", zap.Error(err))
		}
		certClient = client
	}

	ref := catalog.LoadSeries(cfg.Data.SeriesFile(), logger)
	catalogService := service.NewCatalogService(store, ref, cfg.Data.SetsFile(), logger)
	if _, err := catalogService.Seed(context.Background()); err != nil {
		logger.Fatal("failed to seed catalog", zap.Error(err))
	}

	inventoryService := service.NewInventoryService(documents, ref, logger)
	summaryService := service.NewSummaryService(store, inventoryService, logger)
	ledgerService := service.NewLedgerService(store, logger)
	gradingService := service.NewGradingService(store, certClient, tracker, cfg.Data.ImagePath(), logger)
	uploadService := service.NewUploadService(
		importer.New(store, ref, cfg.Data.SlabPath(), logger),
		cfg.Data.ImportPath(),
		logger,
	)

	checks := map[string]handler.Pinger{"store": store}
	if quotaCache != nil {
		checks["quota_cache"] = quotaCache
	}

	r := router.New(router.Config{
		Handler:          handler.New(cfg.App.Name, cfg.App.Version, checks),
		InventoryHandler: handler.NewInventoryHandler(inventoryService, summaryService, logger),
		UploadHandler:    handler.NewUploadHandler(uploadService, ledgerService, logger),
		GradingHandler:   handler.NewGradingHandler(gradingService, logger),
		LedgerHandler:    handler.NewLedgerHandler(ledgerService, summaryService, catalogService, logger),
		AdminHandler:     handler.NewAdminHandler(ledgerService, catalogService, quotaCache, cfg.Store.Type, cfg.Document.Type, logger),
		AuthMiddleware:   middleware.NewAuthMiddleware(middleware.AuthConfig{APIKeys: cfg.Auth.APIKeys}),
		Logger:           logger,
		ImageDir:         cfg.Data.ImagePath(),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Address()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(app config.AppConfig) *zap.Logger {
	zcfg := zap.NewDevelopmentConfig()
	if app.IsProduction() {
		zcfg = zap.NewProductionConfig()
	}
	if level, err := zapcore.ParseLevel(app.LogLevel); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}

	logger, err := zcfg.Build()
	if err != nil {
		panic(err)
	}
	return logger.With(zap.String("service", app.Name))
}

func openStore(cfg *config.Config, logger *zap.Logger) repository.Store {
	var (
		store repository.Store
		err   error
	)
	switch strings.ToLower(cfg.Store.Type) {
	case "postgres", "postgresql":
		store, err = repository.NewPostgresStore(cfg.Store.PostgresDSN(), logger)
	case "mysql":
		store, err = repository.NewMySQLStore(cfg.Store.MySQLDSN(), logger)
	default:
		store, err = repository.NewSQLiteStore(cfg.Store.Path, logger)
	}
	if err != nil {
		logger.Fatal("failed to open store", zap.String("type", cfg.Store.Type), zap.Error(err))
	}
	logger.Info("store initialized", zap.String("type", cfg.Store.Type))
	return store
}

func openDocuments(cfg *config.Config, logger *zap.Logger) repository.DocumentRepository {
	var (
		docs repository.DocumentRepository
		err  error
	)
	switch strings.ToLower(cfg.Document.Type) {
	case "mongodb", "mongo":
		docs, err = repository.NewMongoDBDocumentRepository(
			cfg.Document.MongoURI,
			cfg.Document.MongoDatabase,
			cfg.Document.MongoCollection,
			logger,
		)
	default:
		docs, err = repository.NewFileDocumentRepository(cfg.Document.Path, logger)
	}
	if err != nil {
		logger.Fatal("failed to open inventory document", zap.String("type", cfg.Document.Type), zap.Error(err))
	}
	logger.Info("inventory document initialized", zap.String("type", cfg.Document.Type))
	return docs
}

// openQuotaStore returns the quota store and, for Redis and memory stores,
// the cache behind it.
func openQuotaStore(cfg *config.Config, logger *zap.Logger) (quota.Store, cache.Cache) {
	switch strings.ToLower(cfg.Quota.Store) {
	case "redis":
		c, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:      cfg.Cache.RedisAddress(),
			Password:  cfg.Cache.RedisPassword,
			DB:        cfg.Cache.RedisDB,
			KeyPrefix: cfg.Cache.KeyPrefix,
		})
		if err != nil {
			logger.Fatal("failed to connect to Redis", zap.Error(err))
		}
		logger.Info("quota log stored in Redis", zap.String("addr", cfg.Cache.RedisAddress()))
		return quota.NewCacheStore(c, cfg.Quota.Key), c
	case "memory":
		c := cache.NewMemoryCache()
		logger.Warn("quota log kept in memory; it resets on restart")
		return quota.NewCacheStore(c, cfg.Quota.Key), c
	default:
		return quota.NewFileStore(cfg.Quota.Path), nil
	}
}
