// Package planning holds the order planning and alerting engine. Both
// entry points are pure functions over in-memory snapshots: they never
// read ambient state, never perform I/O, and never mutate their inputs,
// so callers may run them concurrently.
package planning

import (
	"math"
	"time"

	"github.com/freshdepot/backend-go/internal/domain"
)

const (
	// daysPerMonth converts average monthly demand to daily demand.
	daysPerMonth = 30.4

	// freshnessFactor limits orders to the stock sellable within this
	// fraction of the product's shelf life.
	freshnessFactor = 0.8

	// forecastMonths is the length of the weighted-average window.
	forecastMonths = 6

	// UnboundedCover is the days-cover sentinel reported when there is
	// no measurable demand.
	UnboundedCover = 999
)

// ComputePlanning builds the planning view for one product from its
// lots, its sales history and the global settings. now anchors every
// date comparison so results are reproducible.
func ComputePlanning(product domain.Product, lots []domain.Lot, sales []domain.SalesRecord, settings domain.Settings, now time.Time) domain.PlanningView {
	view := domain.PlanningView{Product: product}

	// 1. Keep the product's available lots, split by expiry risk.
	for _, lot := range lots {
		if lot.ProductID != product.ID || lot.Status != domain.LotAvailable {
			continue
		}
		view.ActiveLots = append(view.ActiveLots, lot)

		if lot.ExpiryDate == nil {
			view.AvailableStock += lot.QuantityRemaining
			continue
		}
		days := lot.ExpiryDate.Sub(now).Hours() / 24
		if days > 0 {
			// 2. Stock on hand counts non-expired lots only.
			view.AvailableStock += lot.QuantityRemaining
			if days <= float64(settings.ExpiryWarningDays) {
				view.ExpiringSoonLots = append(view.ExpiringSoonLots, lot)
			}
		}
	}

	history := make([]domain.SalesRecord, 0, len(sales))
	for _, rec := range sales {
		if rec.ProductID == product.ID {
			history = append(history, rec)
		}
	}
	view.SalesHistory = history

	// 3. Demand forecast.
	view.AvgMonthlyDemand = averageMonthlyDemand(history, settings, now)
	view.DailyDemand = view.AvgMonthlyDemand / daysPerMonth

	// 4. Safety stock and reorder point, with the lead-time fallback.
	view.SafetyStock = view.DailyDemand * settings.SafetyStockDays
	leadTime := float64(product.LeadTimeDays)
	if product.LeadTimeDays == 0 {
		leadTime = float64(settings.DefaultLeadTimeDays)
	}
	view.ReorderPoint = view.DailyDemand*leadTime + view.SafetyStock

	// 5. Raw suggestion covers the reorder point plus one review period.
	raw := math.Max(0, view.ReorderPoint+view.DailyDemand*settings.ReviewPeriodDays-view.AvailableStock)

	// 6. Freshness cap: never suggest more than sells within 80% of the
	// shelf life.
	maxFreshStock := view.DailyDemand * float64(product.ShelfLife()) * freshnessFactor
	capQty := math.Max(0, maxFreshStock-view.AvailableStock)
	suggested := math.Min(raw, capQty)
	view.FreshnessCapApplied = suggested < raw
	view.FreshnessCapQty = capQty

	// 7. MOQ and pack-size rounding run after the cap and may push the
	// final quantity back above it. Accepted behavior.
	if suggested > 0 && suggested < product.MOQ {
		suggested = product.MOQ
	}
	if suggested > 0 && product.PackSize > 0 {
		pack := float64(product.PackSize)
		suggested = math.Ceil(suggested/pack) * pack
	}
	view.SuggestedOrderQty = suggested

	// 8. Cover metrics degrade to the sentinel when demand is zero.
	if view.DailyDemand > 0 {
		view.DaysCover = view.AvailableStock / view.DailyDemand
		view.ProjectedDaysCoverAfterOrder = (view.AvailableStock + suggested) / view.DailyDemand
	} else {
		view.DaysCover = UnboundedCover
		view.ProjectedDaysCoverAfterOrder = UnboundedCover
	}

	// 9. Low-stock flag under the configured rule.
	if settings.LowStockRule == domain.RuleBelowDaysCover {
		view.LowStockFlag = view.DaysCover < settings.LowStockDaysCoverThreshold
	} else {
		view.LowStockFlag = view.AvailableStock < view.ReorderPoint
	}

	return view
}

// averageMonthlyDemand applies the configured forecast method.
//
// simpleAverage6Months averages over every sales record found, not over
// a fixed six-month denominator. That is the historical behavior of the
// planner and downstream policy thresholds are tuned to it, so it is
// kept as is.
func averageMonthlyDemand(history []domain.SalesRecord, settings domain.Settings, now time.Time) float64 {
	switch settings.ForecastMethod {
	case domain.ForecastWeightedAverage:
		byMonth := make(map[string]float64, len(history))
		for _, rec := range history {
			byMonth[rec.Month] = rec.QuantitySold
		}

		var sum, weightSum float64
		for i, month := range recentMonths(now, forecastMonths) {
			var weight float64
			if i < len(settings.Weights) {
				weight = settings.Weights[i]
			}
			sum += byMonth[month] * weight
			weightSum += weight
		}
		if weightSum == 0 {
			return 0
		}
		return sum / weightSum

	default:
		if len(history) == 0 {
			return 0
		}
		var total float64
		for _, rec := range history {
			total += rec.QuantitySold
		}
		return total / float64(len(history))
	}
}

// recentMonths lists the n calendar months ending at now (inclusive),
// oldest first, as YYYY-MM keys.
func recentMonths(now time.Time, n int) []string {
	months := make([]string, 0, n)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := n - 1; i >= 0; i-- {
		months = append(months, domain.MonthKey(first.AddDate(0, -i, 0)))
	}
	return months
}
