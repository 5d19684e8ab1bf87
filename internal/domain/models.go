// internal/domain/models.go
package domain

import "time"

// Product is a catalog entry for a perishable good.
type Product struct {
	ID            int64     `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	SKU           string    `json:"sku" db:"sku"`
	Category      string    `json:"category" db:"category"`
	PackSize      int       `json:"pack_size" db:"pack_size"`
	LeadTimeDays  int       `json:"lead_time_days" db:"lead_time_days"`
	MOQ           float64   `json:"moq" db:"moq"`
	UnitCost      float64   `json:"unit_cost" db:"unit_cost"`
	ShelfLifeDays int       `json:"shelf_life_days" db:"shelf_life_days"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultShelfLifeDays is assumed when a product has no shelf life set.
const DefaultShelfLifeDays = 365

// ShelfLife returns the product's shelf life in days, falling back to the
// default when unset.
func (p Product) ShelfLife() int {
	if p.ShelfLifeDays > 0 {
		return p.ShelfLifeDays
	}
	return DefaultShelfLifeDays
}

// Lot is a physical batch of one product. Lots carry their own expiry
// date and are the unit of expiry risk.
type Lot struct {
	ID                int64      `json:"id" db:"id"`
	ProductID         int64      `json:"product_id" db:"product_id"`
	LotNumber         string     `json:"lot_number" db:"lot_number"`
	Status            LotStatus  `json:"status" db:"status"`
	QuantityRemaining float64    `json:"quantity_remaining" db:"quantity_remaining"`
	ReceivedQty       float64    `json:"received_qty" db:"received_qty"`
	ReceivedDate      *time.Time `json:"received_date,omitempty" db:"received_date"`
	ExpiryDate        *time.Time `json:"expiry_date,omitempty" db:"expiry_date"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// SalesRecord holds one product's sales for one calendar month.
// At most one record exists per (product, month); writes are upserts.
type SalesRecord struct {
	ID           int64     `json:"id" db:"id"`
	ProductID    int64     `json:"product_id" db:"product_id"`
	Month        string    `json:"month" db:"month"` // YYYY-MM
	QuantitySold float64   `json:"quantity_sold" db:"quantity_sold"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// MonthKey formats t as a sales record month key (YYYY-MM).
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// Settings is the global planning policy. Exactly one instance exists.
type Settings struct {
	ID                         int64          `json:"id" db:"id"`
	DefaultLeadTimeDays        int            `json:"default_lead_time_days" db:"default_lead_time_days"`
	SafetyStockDays            float64        `json:"safety_stock_days" db:"safety_stock_days"`
	ReviewPeriodDays           float64        `json:"review_period_days" db:"review_period_days"`
	LowStockDaysCoverThreshold float64        `json:"low_stock_days_cover_threshold" db:"low_stock_days_cover_threshold"`
	ExpiryWarningDays          int            `json:"expiry_warning_days" db:"expiry_warning_days"`
	NotificationCooldownHours  float64        `json:"notification_cooldown_hours" db:"notification_cooldown_hours"`
	ForecastMethod             ForecastMethod `json:"forecast_method" db:"forecast_method"`
	Weights                    []float64      `json:"weights" db:"-"` // oldest month first, six entries
	LowStockRule               LowStockRule   `json:"low_stock_rule" db:"low_stock_rule"`
	UpdatedAt                  time.Time      `json:"updated_at" db:"updated_at"`
}

// DefaultSettings returns the policy used until the distributor edits it.
func DefaultSettings() Settings {
	return Settings{
		ID:                         1,
		DefaultLeadTimeDays:        7,
		SafetyStockDays:            7,
		ReviewPeriodDays:           7,
		LowStockDaysCoverThreshold: 14,
		ExpiryWarningDays:          60,
		NotificationCooldownHours:  24,
		ForecastMethod:             ForecastSimpleAverage,
		Weights:                    []float64{1, 1, 1, 2, 3, 4},
		LowStockRule:               RuleBelowDaysCover,
	}
}

// Alert is a low-stock or expiry-risk notification created by the
// detector. Only the user moves it out of pending.
type Alert struct {
	ID         string      `json:"id" db:"id"`
	ProductID  int64       `json:"product_id" db:"product_id"`
	Type       AlertType   `json:"type" db:"type"`
	Message    string      `json:"message" db:"message"`
	Status     AlertStatus `json:"status" db:"status"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	LastSentAt *time.Time  `json:"last_sent_at,omitempty" db:"last_sent_at"`
	Recipient  string      `json:"recipient,omitempty" db:"recipient"`
}

// PlanningView joins one product with its active lots and sales history
// plus every derived planning figure. Views are recomputed on each
// snapshot change and never persisted.
type PlanningView struct {
	Product      Product       `json:"product"`
	ActiveLots   []Lot         `json:"active_lots"`
	SalesHistory []SalesRecord `json:"sales_history"`

	AvailableStock   float64 `json:"available_stock"`
	AvgMonthlyDemand float64 `json:"avg_monthly_demand"`
	DailyDemand      float64 `json:"daily_demand"`
	SafetyStock      float64 `json:"safety_stock"`
	ReorderPoint     float64 `json:"reorder_point"`

	SuggestedOrderQty   float64 `json:"suggested_order_qty"`
	FreshnessCapApplied bool    `json:"freshness_cap_applied"`
	FreshnessCapQty     float64 `json:"freshness_cap_qty"`

	DaysCover                    float64 `json:"days_cover"`
	ProjectedDaysCoverAfterOrder float64 `json:"projected_days_cover_after_order"`

	LowStockFlag     bool  `json:"low_stock_flag"`
	ExpiringSoonLots []Lot `json:"expiring_soon_lots"`
}

// PlanningSummary aggregates the view set for the dashboard.
type PlanningSummary struct {
	Products      int     `json:"products"`
	LowStock      int     `json:"low_stock"`
	ExpiryRisk    int     `json:"expiry_risk"`
	OrderValue    float64 `json:"order_value"`
	PendingAlerts int     `json:"pending_alerts"`
}
