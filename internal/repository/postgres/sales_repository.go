package postgres

import (
	"context"
	"fmt"

	"github.com/freshdepot/backend-go/internal/domain"
	"github.com/freshdepot/backend-go/internal/repository"
)

type salesRepository struct {
	db *DB
}

func NewSalesRepository(db *DB) repository.SalesRepository {
	return &salesRepository{db: db}
}

func (r *salesRepository) List(ctx context.Context) ([]domain.SalesRecord, error) {
	query := `
		SELECT id, product_id, month, quantity_sold, created_at, updated_at
		FROM sales_records
		ORDER BY product_id, month
	`

	var records []domain.SalesRecord
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("failed to list sales records: %w", err)
	}

	return records, nil
}

func (r *salesRepository) ListByProduct(ctx context.Context, productID int64) ([]domain.SalesRecord, error) {
	query := `
		SELECT id, product_id, month, quantity_sold, created_at, updated_at
		FROM sales_records
		WHERE product_id = $1
		ORDER BY month
	`

	var records []domain.SalesRecord
	if err := r.db.SelectContext(ctx, &records, query, productID); err != nil {
		return nil, fmt.Errorf("failed to list sales for product %d: %w", productID, err)
	}

	return records, nil
}

// Upsert enforces the one-record-per-(product, month) invariant at the
// database level.
func (r *salesRepository) Upsert(ctx context.Context, record *domain.SalesRecord) error {
	query := `
		INSERT INTO sales_records (product_id, month, quantity_sold, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (product_id, month)
		DO UPDATE SET
			quantity_sold = EXCLUDED.quantity_sold,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		record.ProductID, record.Month, record.QuantitySold,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert sales record: %w", err)
	}

	return nil
}

func (r *salesRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sales_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sales record %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}

	return nil
}
