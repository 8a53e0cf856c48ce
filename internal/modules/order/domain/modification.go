package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ModificationType string

const (
	ModificationItems  ModificationType = "items"
	ModificationCancel ModificationType = "cancel"
)

type ModificationStatus string

const (
	ModificationPending  ModificationStatus = "pending"
	ModificationApproved ModificationStatus = "approved"
	ModificationRejected ModificationStatus = "rejected"
)

// Modification is a client's request to change or cancel an order that
// waits for an admin decision.
type Modification struct {
	ID             uuid.UUID          `json:"id" db:"id"`
	OrderID        uuid.UUID          `json:"order_id" db:"order_id"`
	RequestedBy    uuid.UUID          `json:"requested_by" db:"requested_by"`
	Type           ModificationType   `json:"type" db:"type"`
	NewItems       *Items             `json:"new_items,omitempty" db:"new_items"`
	NewTotal       *float64           `json:"new_total,omitempty" db:"new_total"`
	Reason         string             `json:"reason" db:"reason"`
	PreviousStatus Status             `json:"previous_status" db:"previous_status"`
	Status         ModificationStatus `json:"status" db:"status"`
	AdminResponse  *string            `json:"admin_response,omitempty" db:"admin_response"`
	ReviewedBy     *uuid.UUID         `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt     *time.Time         `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt      time.Time          `json:"created_at" db:"created_at"`
}

type ModificationRepository interface {
	Create(ctx context.Context, m *Modification) error
	GetByID(ctx context.Context, id uuid.UUID) (*Modification, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]Modification, error)
	// Review records the decision if the modification is still pending.
	Review(ctx context.Context, m *Modification) error
}
