package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/ltaportal/procurement/internal/modules/priceoffer/domain"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/database"
)

type PgRequestRepository struct {
	db *sqlx.DB
}

func NewPgRequestRepository(db *sqlx.DB) *PgRequestRepository {
	return &PgRequestRepository{db: db}
}

const requestColumns = `id, request_number, client_id, lta_id, items, notes, status, created_at, updated_at`

func (r *PgRequestRepository) Create(ctx context.Context, req *domain.PriceRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	now := time.Now().UTC()
	req.CreatedAt, req.UpdatedAt = now, now

	query := `
		INSERT INTO price_requests (` + requestColumns + `)
		VALUES (:id, :request_number, :client_id, :lta_id, :items, :notes, :status, :created_at, :updated_at)
	`
	_, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.db), query, req)
	if database.IsUniqueViolation(err) {
		return domain.ErrDuplicateNumber
	}
	return err
}

func (r *PgRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PriceRequest, error) {
	var req domain.PriceRequest
	err := sqlx.GetContext(ctx, database.Conn(ctx, r.db), &req, `SELECT `+requestColumns+` FROM price_requests WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *PgRequestRepository) List(ctx context.Context, filter domain.RequestFilter) ([]domain.PriceRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM price_requests WHERE 1=1`
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
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, filter.Limit, filter.Offset)

	requests := []domain.PriceRequest{}
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *PgRequestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.RequestStatus) error {
	res, err := database.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE price_requests SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrRequestNotPending
	}
	return nil
}
