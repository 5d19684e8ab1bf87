package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freshdepot/backend-go/internal/domain"
	"github.com/freshdepot/backend-go/internal/service"
)

// SettingsHandler serves the global planning policy.
type SettingsHandler struct {
	catalog *service.CatalogService
}

func NewSettingsHandler(catalog *service.CatalogService) *SettingsHandler {
	return &SettingsHandler{catalog: catalog}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.catalog.GetSettings(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *SettingsHandler) Update(c *gin.Context) {
	var settings domain.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.catalog.UpdateSettings(c.Request.Context(), &settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, settings)
}
