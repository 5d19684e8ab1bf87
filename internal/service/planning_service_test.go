package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshdepot/backend-go/internal/domain"
	"github.com/freshdepot/backend-go/internal/repository/memory"
)

var fixedNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	products *memory.ProductRepository
	lots     *memory.LotRepository
	sales    *memory.SalesRepository
	settings *memory.SettingsRepository
	alerts   *memory.AlertRepository
	planning *PlanningService
	catalog  *CatalogService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		products: memory.NewProductRepository(),
		lots:     memory.NewLotRepository(),
		sales:    memory.NewSalesRepository(),
		settings: memory.NewSettingsRepository(),
		alerts:   memory.NewAlertRepository(),
	}
	f.planning = NewPlanningService(f.products, f.lots, f.sales, f.settings, f.alerts, nil)
	f.planning.now = func() time.Time { return fixedNow }
	f.catalog = NewCatalogService(f.products, f.lots, f.sales, f.settings, f.planning)
	return f
}

// seedLowStockProduct stores a product with demand far above its stock,
// so the low-stock condition holds.
func (f *fixture) seedLowStockProduct(t *testing.T) domain.Product {
	t.Helper()
	ctx := context.Background()

	product := domain.Product{Name: "Organic Milk 1L", SKU: "MLK-001", PackSize: 1, MOQ: 10, LeadTimeDays: 5, UnitCost: 1.5}
	require.NoError(t, f.products.Create(ctx, &product))

	lot := domain.Lot{ProductID: product.ID, LotNumber: "L-100", Status: domain.LotAvailable, QuantityRemaining: 10}
	require.NoError(t, f.lots.Create(ctx, &lot))

	rec := domain.SalesRecord{ProductID: product.ID, Month: domain.MonthKey(fixedNow), QuantitySold: 304}
	require.NoError(t, f.sales.Upsert(ctx, &rec))

	return product
}

func TestPlanningService_RecomputeRaisesAndPersistsAlerts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	product := f.seedLowStockProduct(t)

	newAlerts, err := f.planning.Recompute(ctx)
	require.NoError(t, err)
	require.Len(t, newAlerts, 1)
	assert.Equal(t, domain.AlertLowStock, newAlerts[0].Type)
	assert.Equal(t, product.ID, newAlerts[0].ProductID)

	stored, err := f.alerts.List(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestPlanningService_RecomputeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedLowStockProduct(t)

	first, err := f.planning.Recompute(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := f.planning.Recompute(ctx)
	require.NoError(t, err)
	assert.Empty(t, second, "pending alert suppresses re-emission")

	stored, _ := f.alerts.List(ctx)
	assert.Len(t, stored, 1)
}

func TestPlanningService_AlertTransitions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedLowStockProduct(t)

	raised, err := f.planning.Recompute(ctx)
	require.NoError(t, err)
	require.Len(t, raised, 1)
	id := raised[0].ID

	sent, err := f.planning.MarkAlertSent(ctx, id, "buyer@freshdepot.example")
	require.NoError(t, err)
	assert.Equal(t, domain.AlertSent, sent.Status)
	require.NotNil(t, sent.LastSentAt)
	assert.Equal(t, fixedNow, *sent.LastSentAt)
	assert.Equal(t, "buyer@freshdepot.example", sent.Recipient)

	// sent -> dismissed is not a legal transition.
	_, err = f.planning.DismissAlert(ctx, id)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.planning.MarkAlertSent(ctx, id, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPlanningService_CooldownAfterSend(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedLowStockProduct(t)

	raised, err := f.planning.Recompute(ctx)
	require.NoError(t, err)
	require.Len(t, raised, 1)

	_, err = f.planning.MarkAlertSent(ctx, raised[0].ID, "")
	require.NoError(t, err)

	// Still inside the cooldown window: nothing new.
	f.planning.now = func() time.Time { return fixedNow.Add(2 * time.Hour) }
	again, err := f.planning.Recompute(ctx)
	require.NoError(t, err)
	assert.Empty(t, again)

	// Cooldown elapsed: the condition re-alerts.
	f.planning.now = func() time.Time { return fixedNow.Add(25 * time.Hour) }
	again, err = f.planning.Recompute(ctx)
	require.NoError(t, err)
	assert.Len(t, again, 1)
}

func TestPlanningService_ViewsAndSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	product := f.seedLowStockProduct(t)

	_, err := f.planning.Recompute(ctx)
	require.NoError(t, err)

	views, err := f.planning.Views(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, product.ID, views[0].Product.ID)
	assert.True(t, views[0].LowStockFlag)
	assert.Greater(t, views[0].SuggestedOrderQty, 0.0)

	summary, err := f.planning.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Products)
	assert.Equal(t, 1, summary.LowStock)
	assert.Equal(t, 1, summary.PendingAlerts)
	assert.InDelta(t, views[0].SuggestedOrderQty*1.5, summary.OrderValue, 1e-9)
}

func TestCatalogService_WritesTriggerPlanning(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	product := domain.Product{Name: "Sourdough Loaf", SKU: "BRD-001", PackSize: 1, MOQ: 5, LeadTimeDays: 2}
	require.NoError(t, f.catalog.CreateProduct(ctx, &product))

	lot := domain.Lot{ProductID: product.ID, LotNumber: "L-1", Status: domain.LotAvailable, QuantityRemaining: 4}
	require.NoError(t, f.catalog.CreateLot(ctx, &lot))

	// No sales yet: unbounded cover, no alert under the days-cover rule.
	stored, _ := f.alerts.List(ctx)
	assert.Empty(t, stored)

	// Recording strong sales pushes the product below its days-cover
	// threshold, and the upsert's recompute raises the alert.
	rec := domain.SalesRecord{ProductID: product.ID, Month: domain.MonthKey(fixedNow), QuantitySold: 304}
	require.NoError(t, f.catalog.UpsertSales(ctx, &rec))

	stored, _ = f.alerts.List(ctx)
	require.Len(t, stored, 1)
	assert.Equal(t, domain.AlertLowStock, stored[0].Type)
}

func TestCatalogService_RejectsInvalidSettings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	settings, err := f.catalog.GetSettings(ctx)
	require.NoError(t, err)

	bad := settings
	bad.Weights = []float64{1, 2, 3}
	assert.Error(t, f.catalog.UpdateSettings(ctx, &bad))

	bad = settings
	bad.Weights = []float64{1, 1, 1, 1, 1, -1}
	assert.Error(t, f.catalog.UpdateSettings(ctx, &bad))

	bad = settings
	bad.ForecastMethod = "median"
	assert.Error(t, f.catalog.UpdateSettings(ctx, &bad))

	good := settings
	good.ForecastMethod = domain.ForecastWeightedAverage
	assert.NoError(t, f.catalog.UpdateSettings(ctx, &good))
}
