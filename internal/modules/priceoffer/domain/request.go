package domain

import (
	"context"
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestProcessed RequestStatus = "processed"
	RequestCancelled RequestStatus = "cancelled"
)

type RequestItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type RequestItems []RequestItem

func (i RequestItems) Value() (driver.Value, error) {
	if i == nil {
		return []byte("[]"), nil
	}
	return jsonValue(i)
}

func (i *RequestItems) Scan(src any) error { return jsonScan(src, i) }

// PriceRequest is a client asking for prices on products, optionally under
// an existing agreement.
type PriceRequest struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	RequestNumber string        `json:"request_number" db:"request_number"`
	ClientID      uuid.UUID     `json:"client_id" db:"client_id"`
	LtaID         *uuid.UUID    `json:"lta_id,omitempty" db:"lta_id"`
	Items         RequestItems  `json:"items" db:"items"`
	Notes         *string       `json:"notes,omitempty" db:"notes"`
	Status        RequestStatus `json:"status" db:"status"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

type RequestFilter struct {
	ClientID *uuid.UUID
	Status   RequestStatus
	Limit    int
	Offset   int
}

type RequestRepository interface {
	Create(ctx context.Context, r *PriceRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*PriceRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]PriceRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to RequestStatus) error
}
