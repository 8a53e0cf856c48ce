package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/ltaportal/procurement/internal/modules/order/domain"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/database"
)

type PgModificationRepository struct {
	db *sqlx.DB
}

func NewPgModificationRepository(db *sqlx.DB) *PgModificationRepository {
	return &PgModificationRepository{db: db}
}

const modificationColumns = `id, order_id, requested_by, type, new_items, new_total, reason, previous_status,
	status, admin_response, reviewed_by, reviewed_at, created_at`

// Create fails with ErrModificationPending when the order already has one
// waiting for review.
func (r *PgModificationRepository) Create(ctx context.Context, m *domain.Modification) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO order_modifications (` + modificationColumns + `)
		VALUES (:id, :order_id, :requested_by, :type, :new_items, :new_total, :reason, :previous_status,
			:status, :admin_response, :reviewed_by, :reviewed_at, :created_at)
	`
	_, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.db), query, m)
	if database.IsUniqueViolation(err) {
		return domain.ErrModificationPending
	}
	return err
}

func (r *PgModificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Modification, error) {
	var m domain.Modification
	err := sqlx.GetContext(ctx, database.Conn(ctx, r.db), &m,
		`SELECT `+modificationColumns+` FROM order_modifications WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrModificationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgModificationRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.Modification, error) {
	mods := []domain.Modification{}
	query := `SELECT ` + modificationColumns + ` FROM order_modifications WHERE order_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &mods, query, orderID); err != nil {
		return nil, err
	}
	return mods, nil
}

func (r *PgModificationRepository) Review(ctx context.Context, m *domain.Modification) error {
	query := `
		UPDATE order_modifications
		SET status = $2, admin_response = $3, reviewed_by = $4, reviewed_at = $5
		WHERE id = $1 AND status = 'pending'
	`
	res, err := database.Conn(ctx, r.db).ExecContext(ctx, query, m.ID, m.Status, m.AdminResponse, m.ReviewedBy, m.ReviewedAt)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrModificationReviewed
	}
	return nil
}
