package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/ltaportal/procurement/internal/modules/clients/domain"
)

type PgClientRepository struct {
	db *sqlx.DB
}

func NewPgClientRepository(db *sqlx.DB) *PgClientRepository {
	return &PgClientRepository{db: db}
}

const clientColumns = `id, name_en, name_ar, email, phone, is_admin, created_at`

func (r *PgClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	var c domain.Client
	err := r.db.GetContext(ctx, &c, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *PgClientRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Client, error) {
	clients := []domain.Client{}
	if len(ids) == 0 {
		return clients, nil
	}

	query, args, err := sqlx.In(`SELECT `+clientColumns+` FROM clients WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	if err := r.db.SelectContext(ctx, &clients, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *PgClientRepository) ListAdminIDs(ctx context.Context) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	if err := r.db.SelectContext(ctx, &ids, `SELECT id FROM clients WHERE is_admin = TRUE`); err != nil {
		return nil, err
	}
	return ids, nil
}
