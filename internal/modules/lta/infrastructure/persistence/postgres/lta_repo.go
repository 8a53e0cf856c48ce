package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/ltaportal/procurement/internal/modules/lta/domain"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/database"
)

type PgLtaRepository struct {
	db *sqlx.DB
}

func NewPgLtaRepository(db *sqlx.DB) *PgLtaRepository {
	return &PgLtaRepository{db: db}
}

const ltaColumns = `id, client_id, name_en, name_ar, status, currency, start_date, end_date, created_at, updated_at`

func (r *PgLtaRepository) Create(ctx context.Context, lta *domain.Lta) error {
	if lta.ID == uuid.Nil {
		lta.ID = uuid.New()
	}
	now := time.Now().UTC()
	lta.CreatedAt, lta.UpdatedAt = now, now

	query := `
		INSERT INTO ltas (` + ltaColumns + `)
		VALUES (:id, :client_id, :name_en, :name_ar, :status, :currency, :start_date, :end_date, :created_at, :updated_at)
	`
	_, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.db), query, lta)
	return err
}

func (r *PgLtaRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lta, error) {
	var lta domain.Lta
	err := sqlx.GetContext(ctx, database.Conn(ctx, r.db), &lta, `SELECT `+ltaColumns+` FROM ltas WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrLtaNotFound
	}
	if err != nil {
		return nil, err
	}
	return &lta, nil
}

func (r *PgLtaRepository) List(ctx context.Context, filter domain.LtaFilter) ([]domain.Lta, error) {
	query := `SELECT ` + ltaColumns + ` FROM ltas WHERE 1=1`
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

	ltas := []domain.Lta{}
	if err := r.db.SelectContext(ctx, &ltas, query, args...); err != nil {
		return nil, err
	}
	return ltas, nil
}

func (r *PgLtaRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.Status, start, end *time.Time) error {
	query := `
		UPDATE ltas
		SET status = $3,
			start_date = COALESCE($4, start_date),
			end_date = COALESCE($5, end_date),
			updated_at = NOW()
		WHERE id = $1 AND status = $2
	`
	res, err := database.Conn(ctx, r.db).ExecContext(ctx, query, id, from, to, start, end)
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

// UpsertProduct inserts the contract price or overwrites the existing one
// for the same (lta, product) pair.
func (r *PgLtaRepository) UpsertProduct(ctx context.Context, p *domain.LtaProduct) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	query := `
		INSERT INTO lta_products (id, lta_id, product_id, contract_price, currency, created_at, updated_at)
		VALUES (:id, :lta_id, :product_id, :contract_price, :currency, :created_at, :updated_at)
		ON CONFLICT (lta_id, product_id) DO UPDATE
		SET contract_price = EXCLUDED.contract_price,
			currency = EXCLUDED.currency,
			updated_at = EXCLUDED.updated_at
	`
	_, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.db), query, p)
	if database.IsForeignKeyViolation(err) {
		return domain.ErrUnknownProduct
	}
	return err
}

func (r *PgLtaRepository) RemoveProduct(ctx context.Context, ltaID, productID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lta_products WHERE lta_id = $1 AND product_id = $2`, ltaID, productID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrProductNotContracted
	}
	return nil
}

const ltaProductColumns = `id, lta_id, product_id, contract_price, currency, created_at, updated_at`

func (r *PgLtaRepository) ListProducts(ctx context.Context, ltaID uuid.UUID) ([]domain.LtaProduct, error) {
	products := []domain.LtaProduct{}
	err := r.db.SelectContext(ctx, &products,
		`SELECT `+ltaProductColumns+` FROM lta_products WHERE lta_id = $1 ORDER BY created_at`, ltaID)
	return products, err
}

func (r *PgLtaRepository) GetProduct(ctx context.Context, ltaID, productID uuid.UUID) (*domain.LtaProduct, error) {
	var p domain.LtaProduct
	err := r.db.GetContext(ctx, &p,
		`SELECT `+ltaProductColumns+` FROM lta_products WHERE lta_id = $1 AND product_id = $2`, ltaID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProductNotContracted
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListContractedProducts returns active products under the client's active LTAs.
func (r *PgLtaRepository) ListContractedProducts(ctx context.Context, clientID uuid.UUID) ([]domain.ContractedProduct, error) {
	query := `
		SELECT lp.lta_id, p.id AS product_id, p.sku, p.name_en, p.name_ar, p.category, p.unit,
			p.thumbnail_url, lp.contract_price, lp.currency
		FROM lta_products lp
		JOIN ltas l ON l.id = lp.lta_id
		JOIN products p ON p.id = lp.product_id
		WHERE l.client_id = $1 AND l.status = 'active' AND p.is_active = TRUE
		ORDER BY p.name_en
	`
	products := []domain.ContractedProduct{}
	if err := r.db.SelectContext(ctx, &products, query, clientID); err != nil {
		return nil, err
	}
	return products, nil
}
