// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/freshdepot/backend-go/internal/api"
	"github.com/freshdepot/backend-go/internal/cache"
	"github.com/freshdepot/backend-go/internal/config"
	"github.com/freshdepot/backend-go/internal/export"
	"github.com/freshdepot/backend-go/internal/repository/postgres"
	"github.com/freshdepot/backend-go/internal/service"
	"github.com/freshdepot/backend-go/internal/storage"
	"github.com/freshdepot/backend-go/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	planningCache, err := cache.NewPlanningCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("cache unavailable, continuing without it")
		planningCache = cache.NewNoopPlanningCache()
	}

	productRepo := postgres.NewProductRepository(db)
	lotRepo := postgres.NewLotRepository(db)
	salesRepo := postgres.NewSalesRepository(db)
	settingsRepo := postgres.NewSettingsRepository(db)
	alertRepo := postgres.NewAlertRepository(db)

	planningService := service.NewPlanningService(productRepo, lotRepo, salesRepo, settingsRepo, alertRepo, planningCache)
	catalogService := service.NewCatalogService(productRepo, lotRepo, salesRepo, settingsRepo, planningService)

	var objectStore storage.ObjectStorage
	if cfg.Storage.Enabled {
		objectStore, err = storage.NewMinioClient(cfg.Storage)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("object storage unavailable, exports disabled")
			objectStore = nil
		}
	}
	exportService := export.NewService(planningService, objectStore)

	router := api.NewRouter(&api.Services{
		Catalog:  catalogService,
		Planning: planningService,
		Export:   exportService,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Run one planning pass at boot so views and alerts are warm.
	func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := planningService.Recompute(ctx); err != nil {
			logger.Log.Warn().Err(err).Msg("initial planning pass failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Log.Info().Msg("server exiting")
}
