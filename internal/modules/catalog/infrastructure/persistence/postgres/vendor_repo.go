package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/ltaportal/procurement/internal/modules/catalog/domain"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/database"
)

type PgVendorRepository struct {
	db *sqlx.DB
}

func NewPgVendorRepository(db *sqlx.DB) *PgVendorRepository {
	return &PgVendorRepository{db: db}
}

const vendorColumns = `id, vendor_number, name_en, name_ar, contact_email, phone, created_at, updated_at`

func (r *PgVendorRepository) Create(ctx context.Context, v *domain.Vendor) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	now := time.Now().UTC()
	v.CreatedAt, v.UpdatedAt = now, now

	query := `
		INSERT INTO vendors (` + vendorColumns + `)
		VALUES (:id, :vendor_number, :name_en, :name_ar, :contact_email, :phone, :created_at, :updated_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, v)
	if database.IsUniqueViolation(err) {
		return domain.ErrDuplicateVendorNumber
	}
	return err
}

func (r *PgVendorRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Vendor, error) {
	var v domain.Vendor
	err := r.db.GetContext(ctx, &v, `SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrVendorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *PgVendorRepository) List(ctx context.Context, limit, offset int) ([]domain.Vendor, error) {
	vendors := []domain.Vendor{}
	err := r.db.SelectContext(ctx, &vendors,
		`SELECT `+vendorColumns+` FROM vendors ORDER BY name_en ASC LIMIT $1 OFFSET $2`, limit, offset)
	return vendors, err
}

func (r *PgVendorRepository) Update(ctx context.Context, v *domain.Vendor) error {
	v.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE vendors SET
			vendor_number = :vendor_number, name_en = :name_en, name_ar = :name_ar,
			contact_email = :contact_email, phone = :phone, updated_at = :updated_at
		WHERE id = :id
	`
	res, err := r.db.NamedExecContext(ctx, query, v)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrDuplicateVendorNumber
		}
		return err
	}
	return requireOneRow(res, domain.ErrVendorNotFound)
}

// Delete leaves the vendor's products in place; their vendor_id is cleared
// by the foreign key.
func (r *PgVendorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM vendors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireOneRow(res, domain.ErrVendorNotFound)
}
