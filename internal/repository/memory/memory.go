// Package memory provides mutex-guarded in-memory implementations of
// the repository interfaces, used by tests and local development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/freshdepot/backend-go/internal/domain"
	"github.com/freshdepot/backend-go/internal/repository"
)

type ProductRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]domain.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{nextID: 1, items: make(map[int64]domain.Product)}
}

func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]domain.Product, 0, len(r.items))
	for _, p := range r.items {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

func (r *ProductRepository) Get(ctx context.Context, id int64) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return domain.Product{}, repository.ErrNotFound
	}
	return p, nil
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product.ID = r.nextID
	r.nextID++
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	r.items[product.ID] = *product
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[product.ID]; !ok {
		return repository.ErrNotFound
	}
	product.UpdatedAt = time.Now()
	r.items[product.ID] = *product
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type LotRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]domain.Lot
}

func NewLotRepository() *LotRepository {
	return &LotRepository{nextID: 1, items: make(map[int64]domain.Lot)}
}

func (r *LotRepository) List(ctx context.Context) ([]domain.Lot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lots := make([]domain.Lot, 0, len(r.items))
	for _, l := range r.items {
		lots = append(lots, l)
	}
	sort.Slice(lots, func(i, j int) bool { return lots[i].ID < lots[j].ID })
	return lots, nil
}

func (r *LotRepository) ListByProduct(ctx context.Context, productID int64) ([]domain.Lot, error) {
	all, _ := r.List(ctx)
	lots := all[:0:0]
	for _, l := range all {
		if l.ProductID == productID {
			lots = append(lots, l)
		}
	}
	return lots, nil
}

func (r *LotRepository) Create(ctx context.Context, lot *domain.Lot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	lot.ID = r.nextID
	r.nextID++
	lot.CreatedAt = time.Now()
	lot.UpdatedAt = lot.CreatedAt
	r.items[lot.ID] = *lot
	return nil
}

func (r *LotRepository) Update(ctx context.Context, lot *domain.Lot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[lot.ID]; !ok {
		return repository.ErrNotFound
	}
	lot.UpdatedAt = time.Now()
	r.items[lot.ID] = *lot
	return nil
}

func (r *LotRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type SalesRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]domain.SalesRecord
}

func NewSalesRepository() *SalesRepository {
	return &SalesRepository{nextID: 1, items: make(map[int64]domain.SalesRecord)}
}

func (r *SalesRepository) List(ctx context.Context) ([]domain.SalesRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]domain.SalesRecord, 0, len(r.items))
	for _, rec := range r.items {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].ProductID != records[j].ProductID {
			return records[i].ProductID < records[j].ProductID
		}
		return records[i].Month < records[j].Month
	})
	return records, nil
}

func (r *SalesRepository) ListByProduct(ctx context.Context, productID int64) ([]domain.SalesRecord, error) {
	all, _ := r.List(ctx)
	records := all[:0:0]
	for _, rec := range all {
		if rec.ProductID == productID {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (r *SalesRepository) Upsert(ctx context.Context, record *domain.SalesRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.items {
		if existing.ProductID == record.ProductID && existing.Month == record.Month {
			record.ID = id
			record.CreatedAt = existing.CreatedAt
			record.UpdatedAt = time.Now()
			r.items[id] = *record
			return nil
		}
	}

	record.ID = r.nextID
	r.nextID++
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt
	r.items[record.ID] = *record
	return nil
}

func (r *SalesRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type SettingsRepository struct {
	mu       sync.RWMutex
	settings domain.Settings
}

func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{settings: domain.DefaultSettings()}
}

func (r *SettingsRepository) Get(ctx context.Context) (domain.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings, nil
}

func (r *SettingsRepository) Update(ctx context.Context, settings *domain.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	settings.ID = 1
	settings.UpdatedAt = time.Now()
	r.settings = *settings
	return nil
}

type AlertRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Alert
	order []string
}

func NewAlertRepository() *AlertRepository {
	return &AlertRepository{items: make(map[string]domain.Alert)}
}

func (r *AlertRepository) List(ctx context.Context) ([]domain.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	alerts := make([]domain.Alert, 0, len(r.order))
	for _, id := range r.order {
		alerts = append(alerts, r.items[id])
	}
	return alerts, nil
}

func (r *AlertRepository) ListByStatus(ctx context.Context, status domain.AlertStatus) ([]domain.Alert, error) {
	all, _ := r.List(ctx)
	alerts := all[:0:0]
	for _, a := range all {
		if a.Status == status {
			alerts = append(alerts, a)
		}
	}
	return alerts, nil
}

func (r *AlertRepository) Get(ctx context.Context, id string) (domain.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.items[id]
	if !ok {
		return domain.Alert{}, repository.ErrNotFound
	}
	return a, nil
}

func (r *AlertRepository) Insert(ctx context.Context, alert *domain.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[alert.ID]; !ok {
		r.order = append(r.order, alert.ID)
	}
	r.items[alert.ID] = *alert
	return nil
}

func (r *AlertRepository) Update(ctx context.Context, alert *domain.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[alert.ID]; !ok {
		return repository.ErrNotFound
	}
	r.items[alert.ID] = *alert
	return nil
}
