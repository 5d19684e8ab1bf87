package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/freshdepot/backend-go/internal/domain"
	"github.com/freshdepot/backend-go/internal/repository"
)

type alertRepository struct {
	db *DB
}

func NewAlertRepository(db *DB) repository.AlertRepository {
	return &alertRepository{db: db}
}

const alertColumns = `id, product_id, type, message, status, created_at, last_sent_at, recipient`

func (r *alertRepository) List(ctx context.Context) ([]domain.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts ORDER BY created_at DESC`

	var alerts []domain.Alert
	if err := r.db.SelectContext(ctx, &alerts, query); err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	return alerts, nil
}

func (r *alertRepository) ListByStatus(ctx context.Context, status domain.AlertStatus) ([]domain.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE status = $1 ORDER BY created_at DESC`

	var alerts []domain.Alert
	if err := r.db.SelectContext(ctx, &alerts, query, status); err != nil {
		return nil, fmt.Errorf("failed to list %s alerts: %w", status, err)
	}

	return alerts, nil
}

func (r *alertRepository) Get(ctx context.Context, id string) (domain.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id = $1`

	var alert domain.Alert
	err := r.db.GetContext(ctx, &alert, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Alert{}, repository.ErrNotFound
	}
	if err != nil {
		return domain.Alert{}, fmt.Errorf("failed to get alert %s: %w", id, err)
	}

	return alert, nil
}

func (r *alertRepository) Insert(ctx context.Context, alert *domain.Alert) error {
	query := `
		INSERT INTO alerts (id, product_id, type, message, status, created_at, last_sent_at, recipient)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		alert.ID, alert.ProductID, alert.Type, alert.Message,
		alert.Status, alert.CreatedAt, alert.LastSentAt, alert.Recipient,
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert %s: %w", alert.ID, err)
	}

	return nil
}

func (r *alertRepository) Update(ctx context.Context, alert *domain.Alert) error {
	query := `
		UPDATE alerts SET
			status = $2, last_sent_at = $3, recipient = $4
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query,
		alert.ID, alert.Status, alert.LastSentAt, alert.Recipient,
	)
	if err != nil {
		return fmt.Errorf("failed to update alert %s: %w", alert.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}

	return nil
}
