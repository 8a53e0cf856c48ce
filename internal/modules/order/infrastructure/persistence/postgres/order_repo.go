package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/ltaportal/procurement/internal/modules/order/domain"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/database"
)

type PgOrderRepository struct {
	db *sqlx.DB
}

func NewPgOrderRepository(db *sqlx.DB) *PgOrderRepository {
	return &PgOrderRepository{db: db}
}

const orderColumns = `id, client_id, lta_id, items, total_amount, currency, status, cancellation_reason, created_at, updated_at`

func (r *PgOrderRepository) Create(ctx context.Context, o *domain.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now

	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES (:id, :client_id, :lta_id, :items, :total_amount, :currency, :status, :cancellation_reason, :created_at, :updated_at)
	`
	_, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.db), query, o)
	return err
}

func (r *PgOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var o domain.Order
	err := sqlx.GetContext(ctx, database.Conn(ctx, r.db), &o, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PgOrderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int, error) {
	var rows []struct {
		domain.Order
		TotalCount int `db:"total_count"`
	}

	query := `SELECT ` + orderColumns + `, COUNT(*) OVER() AS total_count FROM orders WHERE 1=1`
	args := []any{}
	argID := 1

	if filter.ClientID != nil {
		query += fmt.Sprintf(" AND client_id = $%d", argID)
		args = append(args, *filter.ClientID)
		argID++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, filter.Status)
		argID++
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, err
	}

	orders := make([]domain.Order, len(rows))
	total := 0
	for i, row := range rows {
		orders[i] = row.Order
		total = row.TotalCount
	}
	return orders, total, nil
}

func (r *PgOrderRepository) UpdateState(ctx context.Context, o *domain.Order, from domain.Status) error {
	o.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE orders
		SET status = $3, items = $4, total_amount = $5, cancellation_reason = $6, updated_at = $7
		WHERE id = $1 AND status = $2
	`
	res, err := database.Conn(ctx, r.db).ExecContext(ctx, query,
		o.ID, from, o.Status, o.Items, o.TotalAmount, o.CancellationReason, o.UpdatedAt)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrStatusConflict
	}
	return nil
}

func (r *PgOrderRepository) AppendHistory(ctx context.Context, h *domain.History) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.ChangedAt.IsZero() {
		h.ChangedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO order_history (id, order_id, status, previous_status, changed_by, changed_at, notes, is_admin_note)
		VALUES (:id, :order_id, :status, :previous_status, :changed_by, :changed_at, :notes, :is_admin_note)
	`
	_, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.db), query, h)
	return err
}

func (r *PgOrderRepository) ListHistory(ctx context.Context, orderID uuid.UUID) ([]domain.History, error) {
	history := []domain.History{}
	query := `
		SELECT id, order_id, status, previous_status, changed_by, changed_at, notes, is_admin_note
		FROM order_history
		WHERE order_id = $1
		ORDER BY changed_at ASC
	`
	if err := r.db.SelectContext(ctx, &history, query, orderID); err != nil {
		return nil, err
	}
	return history, nil
}
