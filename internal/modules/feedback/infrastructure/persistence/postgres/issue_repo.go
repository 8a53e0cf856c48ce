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
)

type PgIssueRepository struct {
	db *sqlx.DB
}

func NewPgIssueRepository(db *sqlx.DB) *PgIssueRepository {
	return &PgIssueRepository{db: db}
}

const issueColumns = `id, client_id, order_id, issue_type, severity, title, description, status, created_at, updated_at`

func (r *PgIssueRepository) Create(ctx context.Context, issue *domain.IssueReport) error {
	if issue.ID == uuid.Nil {
		issue.ID = uuid.New()
	}
	now := time.Now().UTC()
	issue.CreatedAt, issue.UpdatedAt = now, now

	query := `
		INSERT INTO issue_reports (` + issueColumns + `)
		VALUES (:id, :client_id, :order_id, :issue_type, :severity, :title, :description, :status, :created_at, :updated_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, issue)
	return err
}

func (r *PgIssueRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.IssueReport, error) {
	var issue domain.IssueReport
	err := r.db.GetContext(ctx, &issue, `SELECT `+issueColumns+` FROM issue_reports WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrIssueNotFound
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *PgIssueRepository) List(ctx context.Context, filter domain.IssueFilter) ([]domain.IssueReport, error) {
	query := `SELECT ` + issueColumns + ` FROM issue_reports WHERE 1=1`
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
	if filter.Severity != "" {
		query += fmt.Sprintf(" AND severity = $%d", argID)
		args = append(args, filter.Severity)
		argID++
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	issues := []domain.IssueReport{}
	if err := r.db.SelectContext(ctx, &issues, query, args...); err != nil {
		return nil, err
	}
	return issues, nil
}

func (r *PgIssueRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.IssueStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE issue_reports SET status = $2, updated_at = $3 WHERE id = $1`, id, status, time.Now().UTC())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrIssueNotFound
	}
	return nil
}
