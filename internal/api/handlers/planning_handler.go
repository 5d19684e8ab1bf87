package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freshdepot/backend-go/internal/domain"
	"github.com/freshdepot/backend-go/internal/service"
)

// PlanningHandler exposes the derived planning views, the dashboard
// summary and the alert list.
type PlanningHandler struct {
	planning *service.PlanningService
}

func NewPlanningHandler(planning *service.PlanningService) *PlanningHandler {
	return &PlanningHandler{planning: planning}
}

func (h *PlanningHandler) GetViews(c *gin.Context) {
	views, err := h.planning.Views(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"views": views})
}

func (h *PlanningHandler) GetSummary(c *gin.Context) {
	summary, err := h.planning.Summary(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Recompute forces a planning pass outside the usual write triggers,
// e.g. after a bulk import or simply because a day has gone by.
func (h *PlanningHandler) Recompute(c *gin.Context) {
	newAlerts, err := h.planning.Recompute(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if newAlerts == nil {
		newAlerts = []domain.Alert{}
	}
	c.JSON(http.StatusOK, gin.H{"new_alerts": newAlerts})
}

func (h *PlanningHandler) ListAlerts(c *gin.Context) {
	var status domain.AlertStatus
	if raw := c.Query("status"); raw != "" {
		parsed, ok := domain.ParseAlertStatus(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		status = parsed
	}

	alerts, err := h.planning.Alerts(c.Request.Context(), status)
	if err != nil {
		writeError(c, err)
		return
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func (h *PlanningHandler) MarkAlertSent(c *gin.Context) {
	var body struct {
		Recipient string `json:"recipient"`
	}
	_ = c.ShouldBindJSON(&body)

	alert, err := h.planning.MarkAlertSent(c.Request.Context(), c.Param("id"), body.Recipient)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

func (h *PlanningHandler) DismissAlert(c *gin.Context) {
	alert, err := h.planning.DismissAlert(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}
