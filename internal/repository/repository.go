// internal/repository/repository.go
package repository

import (
	"context"
	"errors"

	"github.com/freshdepot/backend-go/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
}

type LotRepository interface {
	List(ctx context.Context) ([]domain.Lot, error)
	ListByProduct(ctx context.Context, productID int64) ([]domain.Lot, error)
	Create(ctx context.Context, lot *domain.Lot) error
	Update(ctx context.Context, lot *domain.Lot) error
	Delete(ctx context.Context, id int64) error
}

type SalesRepository interface {
	List(ctx context.Context) ([]domain.SalesRecord, error)
	ListByProduct(ctx context.Context, productID int64) ([]domain.SalesRecord, error)
	// Upsert inserts or replaces the record for (ProductID, Month).
	Upsert(ctx context.Context, record *domain.SalesRecord) error
	Delete(ctx context.Context, id int64) error
}

type SettingsRepository interface {
	// Get returns the singleton settings row, creating it with defaults
	// when missing.
	Get(ctx context.Context) (domain.Settings, error)
	Update(ctx context.Context, settings *domain.Settings) error
}

type AlertRepository interface {
	List(ctx context.Context) ([]domain.Alert, error)
	ListByStatus(ctx context.Context, status domain.AlertStatus) ([]domain.Alert, error)
	Get(ctx context.Context, id string) (domain.Alert, error)
	Insert(ctx context.Context, alert *domain.Alert) error
	Update(ctx context.Context, alert *domain.Alert) error
}
