package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/freshdepot/backend-go/internal/domain"
	"github.com/freshdepot/backend-go/internal/repository"
)

// CatalogService is the thin CRUD layer over products, lots, sales and
// settings. Every successful write re-triggers planning so views and
// alerts always reflect the latest snapshot.
type CatalogService struct {
	products repository.ProductRepository
	lots     repository.LotRepository
	sales    repository.SalesRepository
	settings repository.SettingsRepository
	planning *PlanningService
}

func NewCatalogService(
	products repository.ProductRepository,
	lots repository.LotRepository,
	sales repository.SalesRepository,
	settings repository.SettingsRepository,
	planningService *PlanningService,
) *CatalogService {
	return &CatalogService{
		products: products,
		lots:     lots,
		sales:    sales,
		settings: settings,
		planning: planningService,
	}
}

// recompute refreshes planning after a write. A failed recompute does
// not undo the write; the next snapshot change will retry it.
func (s *CatalogService) recompute(ctx context.Context) {
	if _, err := s.planning.Recompute(ctx); err != nil {
		log.Error().Err(err).Msg("catalog: planning recompute failed")
	}
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx)
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	return s.products.Get(ctx, id)
}

func (s *CatalogService) CreateProduct(ctx context.Context, product *domain.Product) error {
	if err := s.products.Create(ctx, product); err != nil {
		return err
	}
	s.recompute(ctx)
	return nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, product *domain.Product) error {
	if err := s.products.Update(ctx, product); err != nil {
		return err
	}
	s.recompute(ctx)
	return nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.recompute(ctx)
	return nil
}

func (s *CatalogService) ListLots(ctx context.Context, productID int64) ([]domain.Lot, error) {
	if productID > 0 {
		return s.lots.ListByProduct(ctx, productID)
	}
	return s.lots.List(ctx)
}

func (s *CatalogService) CreateLot(ctx context.Context, lot *domain.Lot) error {
	if _, ok := domain.ParseLotStatus(string(lot.Status)); !ok {
		return fmt.Errorf("invalid lot status %q", lot.Status)
	}
	if err := s.lots.Create(ctx, lot); err != nil {
		return err
	}
	s.recompute(ctx)
	return nil
}

func (s *CatalogService) UpdateLot(ctx context.Context, lot *domain.Lot) error {
	if _, ok := domain.ParseLotStatus(string(lot.Status)); !ok {
		return fmt.Errorf("invalid lot status %q", lot.Status)
	}
	if err := s.lots.Update(ctx, lot); err != nil {
		return err
	}
	s.recompute(ctx)
	return nil
}

func (s *CatalogService) DeleteLot(ctx context.Context, id int64) error {
	if err := s.lots.Delete(ctx, id); err != nil {
		return err
	}
	s.recompute(ctx)
	return nil
}

func (s *CatalogService) ListSales(ctx context.Context, productID int64) ([]domain.SalesRecord, error) {
	if productID > 0 {
		return s.sales.ListByProduct(ctx, productID)
	}
	return s.sales.List(ctx)
}

// UpsertSales records one month's sales for a product, replacing any
// existing record for the same (product, month).
func (s *CatalogService) UpsertSales(ctx context.Context, record *domain.SalesRecord) error {
	if err := s.sales.Upsert(ctx, record); err != nil {
		return err
	}
	s.recompute(ctx)
	return nil
}

func (s *CatalogService) DeleteSales(ctx context.Context, id int64) error {
	if err := s.sales.Delete(ctx, id); err != nil {
		return err
	}
	s.recompute(ctx)
	return nil
}

func (s *CatalogService) GetSettings(ctx context.Context) (domain.Settings, error) {
	return s.settings.Get(ctx)
}

func (s *CatalogService) UpdateSettings(ctx context.Context, settings *domain.Settings) error {
	if err := validateSettings(settings); err != nil {
		return err
	}
	if err := s.settings.Update(ctx, settings); err != nil {
		return err
	}
	s.recompute(ctx)
	return nil
}

// validateSettings sanitizes policy input before it ever reaches the
// engine, which assumes clean settings.
func validateSettings(s *domain.Settings) error {
	switch s.ForecastMethod {
	case domain.ForecastSimpleAverage, domain.ForecastWeightedAverage:
	default:
		return fmt.Errorf("invalid forecast method %q", s.ForecastMethod)
	}

	switch s.LowStockRule {
	case domain.RuleBelowDaysCover, domain.RuleBelowReorderPoint:
	default:
		return fmt.Errorf("invalid low stock rule %q", s.LowStockRule)
	}

	if len(s.Weights) != 6 {
		return fmt.Errorf("weights must have 6 entries, got %d", len(s.Weights))
	}
	for i, w := range s.Weights {
		if w < 0 {
			return fmt.Errorf("weight %d is negative", i)
		}
	}

	if s.ExpiryWarningDays < 0 || s.NotificationCooldownHours < 0 {
		return fmt.Errorf("expiry warning and cooldown must not be negative")
	}

	return nil
}
