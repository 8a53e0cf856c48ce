package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/ltaportal/procurement/internal/modules/feedback/domain"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/database"
)

type PgFeedbackRepository struct {
	db *sqlx.DB
}

func NewPgFeedbackRepository(db *sqlx.DB) *PgFeedbackRepository {
	return &PgFeedbackRepository{db: db}
}

const feedbackColumns = `id, order_id, client_id, rating, ordering_process_rating, product_quality_rating,
	delivery_speed_rating, communication_rating, would_recommend, comments, admin_response,
	admin_response_at, responded_by, created_at`

func (r *PgFeedbackRepository) Create(ctx context.Context, f *domain.Feedback) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	f.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO order_feedback (` + feedbackColumns + `)
		VALUES (:id, :order_id, :client_id, :rating, :ordering_process_rating, :product_quality_rating,
			:delivery_speed_rating, :communication_rating, :would_recommend, :comments, :admin_response,
			:admin_response_at, :responded_by, :created_at)
	`
	_, err := sqlx.NamedExecContext(ctx, database.Conn(ctx, r.db), query, f)
	if database.IsUniqueViolation(err) {
		return domain.ErrFeedbackAlreadySubmitted
	}
	if database.IsForeignKeyViolation(err) {
		return domain.ErrOrderNotFound
	}
	return err
}

func (r *PgFeedbackRepository) get(ctx context.Context, where string, arg any) (*domain.Feedback, error) {
	var f domain.Feedback
	err := r.db.GetContext(ctx, &f, `SELECT `+feedbackColumns+` FROM order_feedback WHERE `+where+` = $1`, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrFeedbackNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *PgFeedbackRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Feedback, error) {
	return r.get(ctx, "id", id)
}

func (r *PgFeedbackRepository) GetByOrder(ctx context.Context, orderID uuid.UUID) (*domain.Feedback, error) {
	return r.get(ctx, "order_id", orderID)
}

func (r *PgFeedbackRepository) List(ctx context.Context, filter domain.FeedbackFilter) ([]domain.Feedback, error) {
	query := `SELECT ` + feedbackColumns + ` FROM order_feedback WHERE 1=1`
	args := []any{}
	argID := 1

	if filter.ClientID != nil {
		query += fmt.Sprintf(" AND client_id = $%d", argID)
		args = append(args, *filter.ClientID)
		argID++
	}
	if filter.MinRating > 0 {
		query += fmt.Sprintf(" AND rating >= $%d", argID)
		args = append(args, filter.MinRating)
		argID++
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	feedback := []domain.Feedback{}
	if err := r.db.SelectContext(ctx, &feedback, query, args...); err != nil {
		return nil, err
	}
	return feedback, nil
}

func (r *PgFeedbackRepository) Respond(ctx context.Context, id, adminID uuid.UUID, response string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE order_feedback SET admin_response = $2, responded_by = $3, admin_response_at = $4
		WHERE id = $1
	`, id, response, adminID, at)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrFeedbackNotFound
	}
	return nil
}

func (r *PgFeedbackRepository) Stats(ctx context.Context) (*domain.Stats, error) {
	var s domain.Stats
	err := r.db.GetContext(ctx, &s, `
		SELECT
			COUNT(*) AS count,
			COALESCE(AVG(rating), 0) AS average_rating,
			COALESCE(AVG(CASE WHEN would_recommend THEN 1.0 ELSE 0.0 END), 0) AS recommend_rate,
			COALESCE(AVG(ordering_process_rating), 0) AS average_ordering,
			COALESCE(AVG(product_quality_rating), 0) AS average_product_quality,
			COALESCE(AVG(delivery_speed_rating), 0) AS average_delivery_speed,
			COALESCE(AVG(communication_rating), 0) AS average_communication,
			COUNT(admin_response) AS responded
		FROM order_feedback
	`)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
