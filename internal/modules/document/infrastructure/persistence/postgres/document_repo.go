package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/ltaportal/procurement/internal/modules/document/domain"
)

type PgDocumentRepository struct {
	db *sqlx.DB
}

func NewPgDocumentRepository(db *sqlx.DB) *PgDocumentRepository {
	return &PgDocumentRepository{db: db}
}

const documentColumns = `id, document_type, file_name, storage_key, content_type, size, client_id, price_offer_id, order_id, created_by, created_at`

func (r *PgDocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES (:id, :document_type, :file_name, :storage_key, :content_type, :size, :client_id, :price_offer_id, :order_id, :created_by, :created_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, d)
	return err
}

func (r *PgDocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	var d domain.Document
	err := r.db.GetContext(ctx, &d, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *PgDocumentRepository) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE 1=1`
	args := []any{}
	argID := 1

	if filter.ClientID != nil {
		query += fmt.Sprintf(" AND client_id = $%d", argID)
		args = append(args, *filter.ClientID)
		argID++
	}
	if filter.DocumentType != "" {
		query += fmt.Sprintf(" AND document_type = $%d", argID)
		args = append(args, filter.DocumentType)
		argID++
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	docs := []domain.Document{}
	if err := r.db.SelectContext(ctx, &docs, query, args...); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *PgDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}
