package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/freshdepot/backend-go/internal/cache"
	"github.com/freshdepot/backend-go/internal/config"
	"github.com/freshdepot/backend-go/internal/importer"
	"github.com/freshdepot/backend-go/internal/repository/postgres"
	"github.com/freshdepot/backend-go/internal/service"
)

func main() {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Initialize Database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Repositories
	productRepo := postgres.NewProductRepository(db)
	lotRepo := postgres.NewLotRepository(db)
	salesRepo := postgres.NewSalesRepository(db)
	settingsRepo := postgres.NewSettingsRepository(db)
	alertRepo := postgres.NewAlertRepository(db)

	// Imported rows feed the planning pass, so wire a recompute callback.
	planningService := service.NewPlanningService(productRepo, lotRepo, salesRepo, settingsRepo, alertRepo, cache.NewNoopPlanningCache())
	importService := importer.NewService(productRepo, lotRepo, salesRepo)

	// Create router and register routes
	r := mux.NewRouter()
	importHandler := importer.NewHandler(importService, func(ctx context.Context) error {
		_, err := planningService.Recompute(ctx)
		return err
	})
	importHandler.RegisterRoutes(r)

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.IngestPort)
	log.Printf("Ingest server starting on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}
