package postgres

import (
	"context"
	"fmt"

	"github.com/freshdepot/backend-go/internal/domain"
	"github.com/freshdepot/backend-go/internal/repository"
)

type lotRepository struct {
	db *DB
}

func NewLotRepository(db *DB) repository.LotRepository {
	return &lotRepository{db: db}
}

const lotColumns = `
	id, product_id, lot_number, status, quantity_remaining,
	received_qty, received_date, expiry_date, created_at, updated_at
`

func (r *lotRepository) List(ctx context.Context) ([]domain.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots ORDER BY expiry_date NULLS LAST, id`

	var lots []domain.Lot
	if err := r.db.SelectContext(ctx, &lots, query); err != nil {
		return nil, fmt.Errorf("failed to list lots: %w", err)
	}

	return lots, nil
}

func (r *lotRepository) ListByProduct(ctx context.Context, productID int64) ([]domain.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE product_id = $1 ORDER BY expiry_date NULLS LAST, id`

	var lots []domain.Lot
	if err := r.db.SelectContext(ctx, &lots, query, productID); err != nil {
		return nil, fmt.Errorf("failed to list lots for product %d: %w", productID, err)
	}

	return lots, nil
}

func (r *lotRepository) Create(ctx context.Context, lot *domain.Lot) error {
	query := `
		INSERT INTO lots (
			product_id, lot_number, status, quantity_remaining,
			received_qty, received_date, expiry_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		lot.ProductID, lot.LotNumber, lot.Status, lot.QuantityRemaining,
		lot.ReceivedQty, lot.ReceivedDate, lot.ExpiryDate,
	).Scan(&lot.ID, &lot.CreatedAt, &lot.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create lot: %w", err)
	}

	return nil
}

func (r *lotRepository) Update(ctx context.Context, lot *domain.Lot) error {
	query := `
		UPDATE lots SET
			product_id = $2, lot_number = $3, status = $4,
			quantity_remaining = $5, received_qty = $6,
			received_date = $7, expiry_date = $8, updated_at = NOW()
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query,
		lot.ID, lot.ProductID, lot.LotNumber, lot.Status, lot.QuantityRemaining,
		lot.ReceivedQty, lot.ReceivedDate, lot.ExpiryDate,
	)
	if err != nil {
		return fmt.Errorf("failed to update lot %d: %w", lot.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *lotRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lot %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}

	return nil
}
