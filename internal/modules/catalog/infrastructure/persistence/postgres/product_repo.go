package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/ltaportal/procurement/internal/modules/catalog/domain"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/database"
)

type PgProductRepository struct {
	db *sqlx.DB
}

func NewPgProductRepository(db *sqlx.DB) *PgProductRepository {
	return &PgProductRepository{db: db}
}

const productColumns = `id, sku, name_en, name_ar, description_en, description_ar, category, unit,
	unit_price, vendor_id, image_url, thumbnail_url, is_active, created_at, updated_at`

func mapProductWriteErr(err error) error {
	switch {
	case database.IsUniqueViolation(err):
		return domain.ErrDuplicateSKU
	case database.IsForeignKeyViolation(err):
		return domain.ErrUnknownVendor
	}
	return err
}

func (r *PgProductRepository) Create(ctx context.Context, p *domain.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES (:id, :sku, :name_en, :name_ar, :description_en, :description_ar, :category, :unit,
			:unit_price, :vendor_id, :image_url, :thumbnail_url, :is_active, :created_at, :updated_at)
	`
	_, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.db), query, p)
	return mapProductWriteErr(err)
}

func (r *PgProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PgProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error) {
	products := []domain.Product{}
	if len(ids) == 0 {
		return products, nil
	}
	query, args, err := sqlx.In(`SELECT `+productColumns+` FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	if err := r.db.SelectContext(ctx, &products, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return products, nil
}

// List returns one page plus the total number of matches, counted with a
// window function in the same query.
func (r *PgProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error) {
	var rows []struct {
		domain.Product
		TotalCount int `db:"total_count"`
	}

	query := `SELECT ` + productColumns + `, COUNT(*) OVER() AS total_count FROM products WHERE 1=1`
	args := []any{}
	argID := 1

	if filter.ActiveOnly {
		query += " AND is_active = TRUE"
	}
	if filter.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argID)
		args = append(args, filter.Category)
		argID++
	}
	if filter.VendorID != nil {
		query += fmt.Sprintf(" AND vendor_id = $%d", argID)
		args = append(args, *filter.VendorID)
		argID++
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND (name_en ILIKE $%d OR name_ar ILIKE $%d OR sku ILIKE $%d)", argID, argID, argID)
		args = append(args, "%"+filter.Search+"%")
		argID++
	}

	query += fmt.Sprintf(" ORDER BY name_en ASC LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, filter.Limit, filter.Offset)

	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, err
	}

	products := make([]domain.Product, len(rows))
	total := 0
	for i, row := range rows {
		products[i] = row.Product
		total = row.TotalCount
	}
	return products, total, nil
}

func (r *PgProductRepository) Update(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE products SET
			sku = :sku, name_en = :name_en, name_ar = :name_ar,
			description_en = :description_en, description_ar = :description_ar,
			category = :category, unit = :unit, unit_price = :unit_price, vendor_id = :vendor_id,
			image_url = :image_url, thumbnail_url = :thumbnail_url, is_active = :is_active,
			updated_at = :updated_at
		WHERE id = :id
	`
	res, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.db), query, p)
	if err != nil {
		return mapProductWriteErr(err)
	}
	return requireOneRow(res, domain.ErrProductNotFound)
}

func (r *PgProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireOneRow(res, domain.ErrProductNotFound)
}

func (r *PgProductRepository) ListCategories(ctx context.Context) ([]string, error) {
	categories := []string{}
	err := r.db.SelectContext(ctx, &categories, `
		SELECT DISTINCT category FROM products
		WHERE category IS NOT NULL AND category <> '' AND is_active = TRUE
		ORDER BY category
	`)
	return categories, err
}

func requireOneRow(res sql.Result, notFound error) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
