// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/freshdepot/backend-go/internal/api/handlers"
	"github.com/freshdepot/backend-go/internal/api/middleware"
	"github.com/freshdepot/backend-go/internal/export"
	"github.com/freshdepot/backend-go/internal/service"
)

type Services struct {
	Catalog  *service.CatalogService
	Planning *service.PlanningService
	Export   *export.Service
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil && services.Catalog != nil {
		catalogHandler := handlers.NewCatalogHandler(services.Catalog)
		settingsHandler := handlers.NewSettingsHandler(services.Catalog)

		productGroup := apiGroup.Group("/products")
		{
			productGroup.GET("", catalogHandler.ListProducts)
			productGroup.POST("", catalogHandler.CreateProduct)
			productGroup.GET("/:id", catalogHandler.GetProduct)
			productGroup.PUT("/:id", catalogHandler.UpdateProduct)
			productGroup.DELETE("/:id", catalogHandler.DeleteProduct)
		}

		lotGroup := apiGroup.Group("/lots")
		{
			lotGroup.GET("", catalogHandler.ListLots)
			lotGroup.POST("", catalogHandler.CreateLot)
			lotGroup.PUT("/:id", catalogHandler.UpdateLot)
			lotGroup.DELETE("/:id", catalogHandler.DeleteLot)
		}

		salesGroup := apiGroup.Group("/sales")
		{
			salesGroup.GET("", catalogHandler.ListSales)
			salesGroup.POST("", catalogHandler.UpsertSales)
			salesGroup.DELETE("/:id", catalogHandler.DeleteSales)
		}

		settingsGroup := apiGroup.Group("/settings")
		{
			settingsGroup.GET("", settingsHandler.Get)
			settingsGroup.PUT("", settingsHandler.Update)
		}
	}

	if services != nil && services.Planning != nil {
		planningHandler := handlers.NewPlanningHandler(services.Planning)

		planningGroup := apiGroup.Group("/planning")
		{
			planningGroup.GET("/views", planningHandler.GetViews)
			planningGroup.GET("/summary", planningHandler.GetSummary)
			planningGroup.POST("/recompute", planningHandler.Recompute)
		}

		alertGroup := apiGroup.Group("/alerts")
		{
			alertGroup.GET("", planningHandler.ListAlerts)
			alertGroup.POST("/:id/send", planningHandler.MarkAlertSent)
			alertGroup.POST("/:id/dismiss", planningHandler.DismissAlert)
		}
	}

	if services != nil && services.Export != nil {
		exportHandler := handlers.NewExportHandler(services.Export)
		apiGroup.POST("/export/planning", exportHandler.ExportPlanning)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
