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

type PgOfferRepository struct {
	db *sqlx.DB
}

func NewPgOfferRepository(db *sqlx.DB) *PgOfferRepository {
	return &PgOfferRepository{db: db}
}

const offerColumns = `id, offer_number, request_id, client_id, lta_id, items, subtotal, tax, total, currency, status,
	notes, response_note, document_id, valid_until, sent_at, viewed_at, responded_at, created_by, created_at, updated_at`

func (r *PgOfferRepository) Create(ctx context.Context, o *domain.PriceOffer) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now

	query := `
		INSERT INTO price_offers (` + offerColumns + `)
		VALUES (:id, :offer_number, :request_id, :client_id, :lta_id, :items, :subtotal, :tax, :total, :currency, :status,
			:notes, :response_note, :document_id, :valid_until, :sent_at, :viewed_at, :responded_at, :created_by, :created_at, :updated_at)
	`
	_, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.db), query, o)
	if database.IsUniqueViolation(err) {
		return domain.ErrDuplicateNumber
	}
	return err
}

func (r *PgOfferRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PriceOffer, error) {
	var o domain.PriceOffer
	err := sqlx.GetContext(ctx, database.Conn(ctx, r.db), &o, `SELECT `+offerColumns+` FROM price_offers WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOfferNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// List filters on the effective status: expired matches open offers past
// their validity, and sent/viewed exclude them.
func (r *PgOfferRepository) List(ctx context.Context, filter domain.OfferFilter) ([]domain.PriceOffer, error) {
	query := `SELECT ` + offerColumns + ` FROM price_offers WHERE 1=1`
	args := []any{}
	argID := 1

	if filter.ClientID != nil {
		query += fmt.Sprintf(" AND client_id = $%d", argID)
		args = append(args, *filter.ClientID)
		argID++
	}
	if filter.ExcludeDraft {
		query += " AND status <> 'draft'"
	}
	switch filter.Status {
	case "":
	case domain.OfferExpired:
		query += " AND status IN ('sent', 'viewed') AND valid_until < NOW()"
	case domain.OfferSent, domain.OfferViewed:
		query += fmt.Sprintf(" AND status = $%d AND valid_until >= NOW()", argID)
		args = append(args, filter.Status)
		argID++
	default:
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, filter.Status)
		argID++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, filter.Limit, filter.Offset)

	offers := []domain.PriceOffer{}
	if err := r.db.SelectContext(ctx, &offers, query, args...); err != nil {
		return nil, err
	}
	return offers, nil
}

func (r *PgOfferRepository) Transition(ctx context.Context, o *domain.PriceOffer, from domain.OfferStatus) error {
	o.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE price_offers
		SET status = $3, sent_at = $4, viewed_at = $5, responded_at = $6, response_note = $7, updated_at = $8
		WHERE id = $1 AND status = $2
	`
	res, err := database.Conn(ctx, r.db).ExecContext(ctx, query,
		o.ID, from, o.Status, o.SentAt, o.ViewedAt, o.RespondedAt, o.ResponseNote, o.UpdatedAt)
	if err != nil {
		return err
	}
	return expectOne(res, domain.ErrStatusConflict)
}

func (r *PgOfferRepository) SetDocument(ctx context.Context, id, documentID uuid.UUID) error {
	res, err := database.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE price_offers SET document_id = $2, updated_at = NOW() WHERE id = $1`, id, documentID)
	if err != nil {
		return err
	}
	return expectOne(res, domain.ErrOfferNotFound)
}

func (r *PgOfferRepository) DeleteDraft(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM price_offers WHERE id = $1 AND status = 'draft'`, id)
	if err != nil {
		return err
	}
	return expectOne(res, domain.ErrOfferNotDraft)
}

func expectOne(res sql.Result, none error) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return none
	}
	return nil
}
