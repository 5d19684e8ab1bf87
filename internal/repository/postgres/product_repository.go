package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/freshdepot/backend-go/internal/domain"
	"github.com/freshdepot/backend-go/internal/repository"
)

type productRepository struct {
	db *DB
}

func NewProductRepository(db *DB) repository.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT id, name, sku, category, pack_size, lead_time_days, moq,
		       unit_cost, shelf_life_days, created_at, updated_at
		FROM products
		ORDER BY name
	`

	var products []domain.Product
	if err := r.db.SelectContext(ctx, &products, query); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return products, nil
}

func (r *productRepository) Get(ctx context.Context, id int64) (domain.Product, error) {
	query := `
		SELECT id, name, sku, category, pack_size, lead_time_days, moq,
		       unit_cost, shelf_life_days, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	var product domain.Product
	err := r.db.GetContext(ctx, &product, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, repository.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed to get product %d: %w", id, err)
	}

	return product, nil
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (
			name, sku, category, pack_size, lead_time_days, moq,
			unit_cost, shelf_life_days, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		product.Name, product.SKU, product.Category, product.PackSize,
		product.LeadTimeDays, product.MOQ, product.UnitCost, product.ShelfLifeDays,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products SET
			name = $2, sku = $3, category = $4, pack_size = $5,
			lead_time_days = $6, moq = $7, unit_cost = $8,
			shelf_life_days = $9, updated_at = NOW()
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query,
		product.ID, product.Name, product.SKU, product.Category, product.PackSize,
		product.LeadTimeDays, product.MOQ, product.UnitCost, product.ShelfLifeDays,
	)
	if err != nil {
		return fmt.Errorf("failed to update product %d: %w", product.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}

	return nil
}
