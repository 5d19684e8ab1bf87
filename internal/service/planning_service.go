package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/freshdepot/backend-go/internal/cache"
	"github.com/freshdepot/backend-go/internal/domain"
	"github.com/freshdepot/backend-go/internal/planning"
	"github.com/freshdepot/backend-go/internal/repository"
)

// ErrInvalidTransition is returned when an alert is moved out of a
// non-pending state.
var ErrInvalidTransition = errors.New("alert is not pending")

// PlanningService owns the recompute cycle: it loads the current
// snapshot, derives one planning view per product, runs alert detection
// against the stored alerts and persists whatever newly qualifies. The
// engine itself is pure; this service supplies the serialization the
// engine's contract leaves to its caller.
type PlanningService struct {
	products repository.ProductRepository
	lots     repository.LotRepository
	sales    repository.SalesRepository
	settings repository.SettingsRepository
	alerts   repository.AlertRepository
	cache    cache.PlanningCache

	now func() time.Time

	// detectMu keeps two concurrent detection passes from both
	// inserting alerts for the same cooldown window.
	detectMu sync.Mutex
}

func NewPlanningService(
	products repository.ProductRepository,
	lots repository.LotRepository,
	sales repository.SalesRepository,
	settings repository.SettingsRepository,
	alerts repository.AlertRepository,
	cacheImpl cache.PlanningCache,
) *PlanningService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopPlanningCache()
	}
	return &PlanningService{
		products: products,
		lots:     lots,
		sales:    sales,
		settings: settings,
		alerts:   alerts,
		cache:    cacheImpl,
		now:      time.Now,
	}
}

type snapshot struct {
	products []domain.Product
	lots     []domain.Lot
	sales    []domain.SalesRecord
	settings domain.Settings
	alerts   []domain.Alert
}

func (s *PlanningService) loadSnapshot(ctx context.Context) (*snapshot, error) {
	var snap snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.products, err = s.products.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.lots, err = s.lots.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.sales, err = s.sales.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.settings, err = s.settings.Get(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.alerts, err = s.alerts.List(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load planning snapshot: %w", err)
	}

	return &snap, nil
}

func (s *PlanningService) computeViews(snap *snapshot, now time.Time) []domain.PlanningView {
	views := make([]domain.PlanningView, 0, len(snap.products))
	for _, product := range snap.products {
		views = append(views, planning.ComputePlanning(product, snap.lots, snap.sales, snap.settings, now))
	}
	return views
}

// Recompute re-derives every planning view and persists newly-qualifying
// alerts. It runs after every snapshot change and is idempotent: an
// unchanged snapshot with alerts already pending or in cooldown inserts
// nothing.
func (s *PlanningService) Recompute(ctx context.Context) ([]domain.Alert, error) {
	s.detectMu.Lock()
	defer s.detectMu.Unlock()

	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := s.computeViews(snap, now)
	newAlerts := planning.DetectAlerts(views, snap.alerts, snap.settings, now)

	for i := range newAlerts {
		if err := s.alerts.Insert(ctx, &newAlerts[i]); err != nil {
			return nil, fmt.Errorf("failed to persist alert %s: %w", newAlerts[i].ID, err)
		}
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("planning: cache invalidation failed")
	}
	if err := s.cache.SetViews(ctx, views); err != nil {
		log.Warn().Err(err).Msg("planning: cache set views failed")
	}

	if len(newAlerts) > 0 {
		log.Info().Int("count", len(newAlerts)).Msg("planning: new alerts raised")
	}

	return newAlerts, nil
}

// Views returns the current planning views, recomputed from the live
// snapshot on cache miss.
func (s *PlanningService) Views(ctx context.Context) ([]domain.PlanningView, error) {
	if views, ok, err := s.cache.GetViews(ctx); err == nil && ok {
		return views, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("planning: cache get views failed")
	}

	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	views := s.computeViews(snap, s.now())
	if err := s.cache.SetViews(ctx, views); err != nil {
		log.Warn().Err(err).Msg("planning: cache set views failed")
	}

	return views, nil
}

// Summary aggregates the view set for the dashboard.
func (s *PlanningService) Summary(ctx context.Context) (domain.PlanningSummary, error) {
	if summary, ok, err := s.cache.GetSummary(ctx); err == nil && ok {
		return *summary, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("planning: cache get summary failed")
	}

	views, err := s.Views(ctx)
	if err != nil {
		return domain.PlanningSummary{}, err
	}

	pending, err := s.alerts.ListByStatus(ctx, domain.AlertPending)
	if err != nil {
		return domain.PlanningSummary{}, err
	}

	summary := domain.PlanningSummary{
		Products:      len(views),
		PendingAlerts: len(pending),
	}
	for _, view := range views {
		if view.LowStockFlag {
			summary.LowStock++
		}
		if len(view.ExpiringSoonLots) > 0 {
			summary.ExpiryRisk++
		}
		summary.OrderValue += view.SuggestedOrderQty * view.Product.UnitCost
	}

	if err := s.cache.SetSummary(ctx, summary); err != nil {
		log.Warn().Err(err).Msg("planning: cache set summary failed")
	}

	return summary, nil
}

// Alerts lists stored alerts, optionally filtered by status.
func (s *PlanningService) Alerts(ctx context.Context, status domain.AlertStatus) ([]domain.Alert, error) {
	if status == "" {
		return s.alerts.List(ctx)
	}
	return s.alerts.ListByStatus(ctx, status)
}

// MarkAlertSent transitions a pending alert to sent and stamps the send
// time and recipient.
func (s *PlanningService) MarkAlertSent(ctx context.Context, id, recipient string) (domain.Alert, error) {
	alert, err := s.alerts.Get(ctx, id)
	if err != nil {
		return domain.Alert{}, err
	}
	if alert.Status != domain.AlertPending {
		return domain.Alert{}, ErrInvalidTransition
	}

	now := s.now()
	alert.Status = domain.AlertSent
	alert.LastSentAt = &now
	alert.Recipient = recipient
	if err := s.alerts.Update(ctx, &alert); err != nil {
		return domain.Alert{}, err
	}

	return alert, nil
}

// DismissAlert transitions a pending alert to dismissed.
func (s *PlanningService) DismissAlert(ctx context.Context, id string) (domain.Alert, error) {
	alert, err := s.alerts.Get(ctx, id)
	if err != nil {
		return domain.Alert{}, err
	}
	if alert.Status != domain.AlertPending {
		return domain.Alert{}, ErrInvalidTransition
	}

	alert.Status = domain.AlertDismissed
	if err := s.alerts.Update(ctx, &alert); err != nil {
		return domain.Alert{}, err
	}

	return alert, nil
}
