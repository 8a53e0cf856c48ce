package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type IssueStatus string

const (
	IssueOpen       IssueStatus = "open"
	IssueInProgress IssueStatus = "in_progress"
	IssueResolved   IssueStatus = "resolved"
	IssueClosed     IssueStatus = "closed"
)

func (s IssueStatus) Valid() bool {
	switch s {
	case IssueOpen, IssueInProgress, IssueResolved, IssueClosed:
		return true
	}
	return false
}

type IssueReport struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	ClientID    uuid.UUID   `json:"client_id" db:"client_id"`
	OrderID     *uuid.UUID  `json:"order_id,omitempty" db:"order_id"`
	IssueType   string      `json:"issue_type" db:"issue_type"`
	Severity    Severity    `json:"severity" db:"severity"`
	Title       string      `json:"title" db:"title"`
	Description string      `json:"description" db:"description"`
	Status      IssueStatus `json:"status" db:"status"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

type IssueFilter struct {
	ClientID *uuid.UUID
	Status   IssueStatus
	Severity Severity
	Limit    int
	Offset   int
}

type IssueRepository interface {
	Create(ctx context.Context, issue *IssueReport) error
	GetByID(ctx context.Context, id uuid.UUID) (*IssueReport, error)
	List(ctx context.Context, filter IssueFilter) ([]IssueReport, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status IssueStatus) error
}
