package domain

import "strings"

// LotStatus is the lifecycle state of a lot.
type LotStatus string

const (
	LotAvailable LotStatus = "available"
	LotExpired   LotStatus = "expired"
	LotDamaged   LotStatus = "damaged"
)

// ParseLotStatus returns the status for a given label (case-insensitive).
func ParseLotStatus(label string) (LotStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "available":
		return LotAvailable, true
	case "expired":
		return LotExpired, true
	case "damaged":
		return LotDamaged, true
	}
	return "", false
}

// AlertType distinguishes the two alert conditions.
type AlertType string

const (
	AlertLowStock AlertType = "low_stock"
	AlertExpiry   AlertType = "expiry"
)

// AlertStatus is the lifecycle state of an alert. The only legal
// transitions are pending -> sent and pending -> dismissed.
type AlertStatus string

const (
	AlertPending   AlertStatus = "pending"
	AlertSent      AlertStatus = "sent"
	AlertDismissed AlertStatus = "dismissed"
)

// ParseAlertStatus returns the status for a given label (case-insensitive).
func ParseAlertStatus(label string) (AlertStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "pending":
		return AlertPending, true
	case "sent":
		return AlertSent, true
	case "dismissed":
		return AlertDismissed, true
	}
	return "", false
}

// ForecastMethod selects how monthly demand is averaged.
type ForecastMethod string

const (
	ForecastSimpleAverage   ForecastMethod = "simpleAverage6Months"
	ForecastWeightedAverage ForecastMethod = "weightedAverage"
)

// LowStockRule selects which condition raises the low-stock flag.
type LowStockRule string

const (
	RuleBelowDaysCover    LowStockRule = "belowDaysCover"
	RuleBelowReorderPoint LowStockRule = "belowReorderPoint"
)
