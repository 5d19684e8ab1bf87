package planning

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/freshdepot/backend-go/internal/domain"
)

// DetectAlerts scans the planning views against the stored alerts and
// returns the alerts that newly qualify. It never mutates its inputs
// and never transitions an existing alert; persisting and merging the
// result is the caller's job. Per product and call it emits at most one
// low-stock and one expiry alert, so re-running detection on an
// unchanged snapshot yields nothing new.
func DetectAlerts(views []domain.PlanningView, existing []domain.Alert, settings domain.Settings, now time.Time) []domain.Alert {
	var alerts []domain.Alert

	for _, view := range views {
		productID := view.Product.ID

		if view.LowStockFlag && !isSuppressed(existing, productID, domain.AlertLowStock, now, settings.NotificationCooldownHours) {
			alerts = append(alerts, newAlert(productID, domain.AlertLowStock, lowStockMessage(view), now))
		}

		if len(view.ExpiringSoonLots) > 0 && !isSuppressed(existing, productID, domain.AlertExpiry, now, settings.NotificationCooldownHours) {
			alerts = append(alerts, newAlert(productID, domain.AlertExpiry, expiryMessage(view), now))
		}
	}

	return alerts
}

// isSuppressed reports whether an existing alert blocks a new one of
// the same product and type: either it is still pending, or its last
// activity (lastSentAt, falling back to createdAt) lies within the
// cooldown window. One predicate serves both alert types so the two
// checks cannot drift apart.
func isSuppressed(existing []domain.Alert, productID int64, alertType domain.AlertType, now time.Time, cooldownHours float64) bool {
	cooldown := time.Duration(cooldownHours * float64(time.Hour))
	for _, alert := range existing {
		if alert.ProductID != productID || alert.Type != alertType {
			continue
		}
		if alert.Status == domain.AlertPending {
			return true
		}
		ref := alert.CreatedAt
		if alert.LastSentAt != nil {
			ref = *alert.LastSentAt
		}
		if now.Sub(ref) < cooldown {
			return true
		}
	}
	return false
}

func newAlert(productID int64, alertType domain.AlertType, message string, now time.Time) domain.Alert {
	return domain.Alert{
		ID:        fmt.Sprintf("%s-%d-%d", alertType, productID, now.UnixNano()),
		ProductID: productID,
		Type:      alertType,
		Message:   message,
		Status:    domain.AlertPending,
		CreatedAt: now,
	}
}

func lowStockMessage(view domain.PlanningView) string {
	return fmt.Sprintf("Low stock: %s has %.0f units left (%.0f days of cover)",
		view.Product.Name, view.AvailableStock, math.Round(view.DaysCover))
}

func expiryMessage(view domain.PlanningView) string {
	parts := make([]string, 0, len(view.ExpiringSoonLots))
	for _, lot := range view.ExpiringSoonLots {
		parts = append(parts, fmt.Sprintf("%s (expires %s)", lot.LotNumber, lot.ExpiryDate.Format("2006-01-02")))
	}
	return fmt.Sprintf("Expiring soon: %s lots %s", view.Product.Name, strings.Join(parts, ", "))
}
