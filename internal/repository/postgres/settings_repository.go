package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/freshdepot/backend-go/internal/domain"
	"github.com/freshdepot/backend-go/internal/repository"
)

type settingsRepository struct {
	db *DB
}

func NewSettingsRepository(db *DB) repository.SettingsRepository {
	return &settingsRepository{db: db}
}

type settingsRow struct {
	ID                         int64           `db:"id"`
	DefaultLeadTimeDays        int             `db:"default_lead_time_days"`
	SafetyStockDays            float64         `db:"safety_stock_days"`
	ReviewPeriodDays           float64         `db:"review_period_days"`
	LowStockDaysCoverThreshold float64         `db:"low_stock_days_cover_threshold"`
	ExpiryWarningDays          int             `db:"expiry_warning_days"`
	NotificationCooldownHours  float64         `db:"notification_cooldown_hours"`
	ForecastMethod             string          `db:"forecast_method"`
	Weights                    pq.Float64Array `db:"weights"`
	LowStockRule               string          `db:"low_stock_rule"`
	UpdatedAt                  time.Time       `db:"updated_at"`
}

func (row settingsRow) toDomain() domain.Settings {
	return domain.Settings{
		ID:                         row.ID,
		DefaultLeadTimeDays:        row.DefaultLeadTimeDays,
		SafetyStockDays:            row.SafetyStockDays,
		ReviewPeriodDays:           row.ReviewPeriodDays,
		LowStockDaysCoverThreshold: row.LowStockDaysCoverThreshold,
		ExpiryWarningDays:          row.ExpiryWarningDays,
		NotificationCooldownHours:  row.NotificationCooldownHours,
		ForecastMethod:             domain.ForecastMethod(row.ForecastMethod),
		Weights:                    []float64(row.Weights),
		LowStockRule:               domain.LowStockRule(row.LowStockRule),
		UpdatedAt:                  row.UpdatedAt,
	}
}

// Get returns the singleton settings row, seeding it with defaults on
// first access.
func (r *settingsRepository) Get(ctx context.Context) (domain.Settings, error) {
	query := `
		SELECT id, default_lead_time_days, safety_stock_days, review_period_days,
		       low_stock_days_cover_threshold, expiry_warning_days,
		       notification_cooldown_hours, forecast_method, weights,
		       low_stock_rule, updated_at
		FROM settings
		WHERE id = 1
	`

	var row settingsRow
	err := r.db.GetContext(ctx, &row, query)
	if errors.Is(err, sql.ErrNoRows) {
		defaults := domain.DefaultSettings()
		if err := r.insertDefaults(ctx, &defaults); err != nil {
			return domain.Settings{}, err
		}
		return defaults, nil
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}

	return row.toDomain(), nil
}

func (r *settingsRepository) insertDefaults(ctx context.Context, s *domain.Settings) error {
	query := `
		INSERT INTO settings (
			id, default_lead_time_days, safety_stock_days, review_period_days,
			low_stock_days_cover_threshold, expiry_warning_days,
			notification_cooldown_hours, forecast_method, weights,
			low_stock_rule, updated_at
		) VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (id) DO NOTHING
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		s.DefaultLeadTimeDays, s.SafetyStockDays, s.ReviewPeriodDays,
		s.LowStockDaysCoverThreshold, s.ExpiryWarningDays,
		s.NotificationCooldownHours, s.ForecastMethod, pq.Float64Array(s.Weights),
		s.LowStockRule,
	).Scan(&s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// Lost the race to another writer; the row exists now.
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to seed default settings: %w", err)
	}

	return nil
}

func (r *settingsRepository) Update(ctx context.Context, settings *domain.Settings) error {
	query := `
		UPDATE settings SET
			default_lead_time_days = $1, safety_stock_days = $2,
			review_period_days = $3, low_stock_days_cover_threshold = $4,
			expiry_warning_days = $5, notification_cooldown_hours = $6,
			forecast_method = $7, weights = $8, low_stock_rule = $9,
			updated_at = NOW()
		WHERE id = 1
		RETURNING updated_at
	`

	settings.ID = 1
	err := r.db.QueryRowxContext(ctx, query,
		settings.DefaultLeadTimeDays, settings.SafetyStockDays,
		settings.ReviewPeriodDays, settings.LowStockDaysCoverThreshold,
		settings.ExpiryWarningDays, settings.NotificationCooldownHours,
		settings.ForecastMethod, pq.Float64Array(settings.Weights),
		settings.LowStockRule,
	).Scan(&settings.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		if insertErr := r.insertDefaults(ctx, settings); insertErr != nil {
			return insertErr
		}
		return r.Update(ctx, settings)
	}
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}

	return nil
}
