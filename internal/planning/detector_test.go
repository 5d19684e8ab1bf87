package planning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshdepot/backend-go/internal/domain"
)

func lowStockView(productID int64) domain.PlanningView {
	return domain.PlanningView{
		Product:        domain.Product{ID: productID, Name: "Greek Yogurt 500g"},
		AvailableStock: 10,
		DaysCover:      4.6,
		LowStockFlag:   true,
	}
}

func expiryView(productID int64, lotDays ...int) domain.PlanningView {
	view := domain.PlanningView{
		Product:   domain.Product{ID: productID, Name: "Brie Wheel 1kg"},
		DaysCover: float64(UnboundedCover),
	}
	for i, days := range lotDays {
		expiry := testNow.AddDate(0, 0, days)
		view.ExpiringSoonLots = append(view.ExpiringSoonLots, domain.Lot{
			ID:        int64(i + 1),
			ProductID: productID,
			LotNumber: string(rune('A' + i)),
			ExpiryDate: &expiry,
		})
	}
	return view
}

func TestDetectAlerts_EmitsLowStock(t *testing.T) {
	settings := testSettings()
	views := []domain.PlanningView{lowStockView(1)}

	alerts := DetectAlerts(views, nil, settings, testNow)

	require.Len(t, alerts, 1)
	alert := alerts[0]
	assert.Equal(t, domain.AlertLowStock, alert.Type)
	assert.Equal(t, domain.AlertPending, alert.Status)
	assert.Equal(t, int64(1), alert.ProductID)
	assert.Equal(t, testNow, alert.CreatedAt)
	assert.NotEmpty(t, alert.ID)
	assert.Contains(t, alert.Message, "Greek Yogurt 500g")
	assert.Contains(t, alert.Message, "10 units")
	assert.Contains(t, alert.Message, "5 days")
}

func TestDetectAlerts_EmitsExpiryWithLotList(t *testing.T) {
	settings := testSettings()
	views := []domain.PlanningView{expiryView(2, 10, 20)}

	alerts := DetectAlerts(views, nil, settings, testNow)

	require.Len(t, alerts, 1)
	alert := alerts[0]
	assert.Equal(t, domain.AlertExpiry, alert.Type)
	assert.Contains(t, alert.Message, "A (expires 2025-03-25)")
	assert.Contains(t, alert.Message, "B (expires 2025-04-04)")
	assert.Contains(t, alert.Message, ", ")
}

func TestDetectAlerts_AtMostOnePerTypePerProduct(t *testing.T) {
	settings := testSettings()
	view := lowStockView(1)
	view.ExpiringSoonLots = expiryView(1, 5, 6, 7, 8).ExpiringSoonLots

	alerts := DetectAlerts([]domain.PlanningView{view}, nil, settings, testNow)

	require.Len(t, alerts, 2)
	assert.NotEqual(t, alerts[0].Type, alerts[1].Type)
	assert.NotEqual(t, alerts[0].ID, alerts[1].ID)
}

func TestDetectAlerts_PendingSuppresses(t *testing.T) {
	settings := testSettings()
	views := []domain.PlanningView{lowStockView(1)}
	existing := []domain.Alert{{
		ID:        "low_stock-1-1",
		ProductID: 1,
		Type:      domain.AlertLowStock,
		Status:    domain.AlertPending,
		CreatedAt: testNow.Add(-100 * 24 * time.Hour), // age is irrelevant while pending
	}}

	alerts := DetectAlerts(views, existing, settings, testNow)

	assert.Empty(t, alerts)
}

func TestDetectAlerts_PendingLowStockDoesNotSuppressExpiry(t *testing.T) {
	settings := testSettings()
	view := lowStockView(1)
	view.ExpiringSoonLots = expiryView(1, 5).ExpiringSoonLots
	existing := []domain.Alert{{
		ID:        "low_stock-1-1",
		ProductID: 1,
		Type:      domain.AlertLowStock,
		Status:    domain.AlertPending,
		CreatedAt: testNow.Add(-time.Hour),
	}}

	alerts := DetectAlerts([]domain.PlanningView{view}, existing, settings, testNow)

	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertExpiry, alerts[0].Type)
}

func TestDetectAlerts_CooldownSuppressesSent(t *testing.T) {
	settings := testSettings()
	settings.NotificationCooldownHours = 24
	views := []domain.PlanningView{lowStockView(1)}

	sentAt := testNow.Add(-2 * time.Hour)
	existing := []domain.Alert{{
		ID:         "low_stock-1-1",
		ProductID:  1,
		Type:       domain.AlertLowStock,
		Status:     domain.AlertSent,
		CreatedAt:  testNow.Add(-48 * time.Hour),
		LastSentAt: &sentAt,
	}}

	assert.Empty(t, DetectAlerts(views, existing, settings, testNow))

	// Once the cooldown has elapsed a new alert goes out.
	staleSent := testNow.Add(-25 * time.Hour)
	existing[0].LastSentAt = &staleSent
	assert.Len(t, DetectAlerts(views, existing, settings, testNow), 1)
}

func TestDetectAlerts_CooldownFallsBackToCreatedAt(t *testing.T) {
	settings := testSettings()
	settings.NotificationCooldownHours = 24
	views := []domain.PlanningView{lowStockView(1)}

	// Dismissed recently with no lastSentAt: createdAt drives the window.
	existing := []domain.Alert{{
		ID:        "low_stock-1-1",
		ProductID: 1,
		Type:      domain.AlertLowStock,
		Status:    domain.AlertDismissed,
		CreatedAt: testNow.Add(-3 * time.Hour),
	}}
	assert.Empty(t, DetectAlerts(views, existing, settings, testNow))

	existing[0].CreatedAt = testNow.Add(-30 * time.Hour)
	assert.Len(t, DetectAlerts(views, existing, settings, testNow), 1)
}

func TestDetectAlerts_OtherProductDoesNotSuppress(t *testing.T) {
	settings := testSettings()
	views := []domain.PlanningView{lowStockView(1)}
	existing := []domain.Alert{{
		ID:        "low_stock-9-1",
		ProductID: 9,
		Type:      domain.AlertLowStock,
		Status:    domain.AlertPending,
		CreatedAt: testNow,
	}}

	assert.Len(t, DetectAlerts(views, existing, settings, testNow), 1)
}

func TestDetectAlerts_Idempotent(t *testing.T) {
	settings := testSettings()
	views := []domain.PlanningView{lowStockView(1), expiryView(2, 10)}

	first := DetectAlerts(views, nil, settings, testNow)
	require.Len(t, first, 2)

	second := DetectAlerts(views, first, settings, testNow.Add(time.Minute))
	assert.Empty(t, second, "re-running detection on an unchanged snapshot emits nothing")
}

func TestDetectAlerts_DoesNotMutateInputs(t *testing.T) {
	settings := testSettings()
	views := []domain.PlanningView{lowStockView(1)}
	existing := []domain.Alert{{
		ID:        "expiry-1-1",
		ProductID: 1,
		Type:      domain.AlertExpiry,
		Status:    domain.AlertSent,
		CreatedAt: testNow.Add(-100 * time.Hour),
	}}
	before := existing[0]

	DetectAlerts(views, existing, settings, testNow)

	assert.Equal(t, before, existing[0])
}
