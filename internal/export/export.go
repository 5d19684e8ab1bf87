// Package export renders planning results as CSV and ships them to
// object storage, where purchasing and messaging integrations pick
// them up.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freshdepot/backend-go/internal/domain"
	"github.com/freshdepot/backend-go/internal/storage"
)

// ErrStorageDisabled is returned when no object storage is configured.
var ErrStorageDisabled = errors.New("object storage is not configured")

type ViewSource interface {
	Views(ctx context.Context) ([]domain.PlanningView, error)
}

type Service struct {
	views   ViewSource
	storage storage.ObjectStorage
	now     func() time.Time
}

func NewService(views ViewSource, store storage.ObjectStorage) *Service {
	return &Service{views: views, storage: store, now: time.Now}
}

// ExportPlanning writes the current planning views to a dated CSV
// object and returns its key.
func (s *Service) ExportPlanning(ctx context.Context) (string, error) {
	if s.storage == nil {
		return "", ErrStorageDisabled
	}

	views, err := s.views.Views(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load planning views: %w", err)
	}

	data, err := RenderPlanningCSV(views)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("planning/%s.csv", s.now().Format("20060102T150405"))
	if err := s.storage.UploadObject(ctx, key, data, "text/csv"); err != nil {
		return "", err
	}

	log.Info().Str("key", key).Int("rows", len(views)).Msg("export: planning snapshot uploaded")
	return key, nil
}

var planningHeader = []string{
	"sku", "name", "available_stock", "daily_demand", "reorder_point",
	"days_cover", "suggested_order_qty", "freshness_cap_applied",
	"low_stock", "expiring_lots",
}

// RenderPlanningCSV renders one row per planning view.
func RenderPlanningCSV(views []domain.PlanningView) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(planningHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, view := range views {
		row := []string{
			view.Product.SKU,
			view.Product.Name,
			formatFloat(view.AvailableStock),
			formatFloat(view.DailyDemand),
			formatFloat(view.ReorderPoint),
			formatFloat(view.DaysCover),
			formatFloat(view.SuggestedOrderQty),
			strconv.FormatBool(view.FreshnessCapApplied),
			strconv.FormatBool(view.LowStockFlag),
			strconv.Itoa(len(view.ExpiringSoonLots)),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
