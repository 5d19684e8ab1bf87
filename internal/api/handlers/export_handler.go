package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freshdepot/backend-go/internal/export"
)

// ExportHandler triggers planning snapshot exports to object storage.
type ExportHandler struct {
	export *export.Service
}

func NewExportHandler(exportService *export.Service) *ExportHandler {
	return &ExportHandler{export: exportService}
}

func (h *ExportHandler) ExportPlanning(c *gin.Context) {
	key, err := h.export.ExportPlanning(c.Request.Context())
	if errors.Is(err, export.ErrStorageDisabled) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key})
}
