package domain

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending               Status = "pending"
	StatusConfirmed             Status = "confirmed"
	StatusProcessing            Status = "processing"
	StatusShipped               Status = "shipped"
	StatusDelivered             Status = "delivered"
	StatusCancelled             Status = "cancelled"
	StatusModificationRequested Status = "modification_requested"
)

var transitions = map[Status][]Status{
	StatusPending:               {StatusConfirmed, StatusCancelled, StatusModificationRequested},
	StatusConfirmed:             {StatusProcessing, StatusCancelled, StatusModificationRequested},
	StatusProcessing:            {StatusShipped, StatusCancelled},
	StatusShipped:               {StatusDelivered, StatusCancelled},
	StatusModificationRequested: {StatusPending, StatusConfirmed, StatusCancelled},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusModificationRequested:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func (s Status) CanTransitionTo(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Modifiable reports whether a client may still ask to change the order.
func (s Status) Modifiable() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Item is one order line. Names and price are copied from the catalog and
// the contract when the order is placed.
type Item struct {
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	NameEn    string    `json:"name_en"`
	NameAr    string    `json:"name_ar"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	LineTotal float64   `json:"line_total"`
}

// Items is stored as a JSONB array.
type Items []Item

func (i Items) Value() (driver.Value, error) {
	if i == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(i)
}

func (i *Items) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*i = nil
		return nil
	case []byte:
		return json.Unmarshal(v, i)
	case string:
		return json.Unmarshal([]byte(v), i)
	}
	return errors.New("items: unsupported source type")
}

// Total sums the line totals rounded to cents.
func (i Items) Total() float64 {
	var sum float64
	for _, it := range i {
		sum += it.LineTotal
	}
	return roundCents(sum)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// LineTotal is quantity times unit price rounded to cents.
func LineTotal(quantity int, unitPrice float64) float64 {
	return roundCents(float64(quantity) * unitPrice)
}

type Order struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	ClientID           uuid.UUID  `json:"client_id" db:"client_id"`
	LtaID              *uuid.UUID `json:"lta_id,omitempty" db:"lta_id"`
	Items              Items      `json:"items" db:"items"`
	TotalAmount        float64    `json:"total_amount" db:"total_amount"`
	Currency           string     `json:"currency" db:"currency"`
	Status             Status     `json:"status" db:"status"`
	CancellationReason *string    `json:"cancellation_reason,omitempty" db:"cancellation_reason"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// History is one append-only row of an order's status timeline.
type History struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrderID        uuid.UUID `json:"order_id" db:"order_id"`
	Status         Status    `json:"status" db:"status"`
	PreviousStatus *Status   `json:"previous_status,omitempty" db:"previous_status"`
	ChangedBy      uuid.UUID `json:"changed_by" db:"changed_by"`
	ChangedAt      time.Time `json:"changed_at" db:"changed_at"`
	Notes          *string   `json:"notes,omitempty" db:"notes"`
	IsAdminNote    bool      `json:"is_admin_note" db:"is_admin_note"`
}

// ClientTimeline drops admin notes from a history.
func ClientTimeline(history []History) []History {
	out := make([]History, 0, len(history))
	for _, h := range history {
		if !h.IsAdminNote {
			out = append(out, h)
		}
	}
	return out
}

type OrderFilter struct {
	ClientID *uuid.UUID
	Status   Status
	Limit    int
	Offset   int
}

type OrderRepository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context, filter OrderFilter) ([]Order, int, error)
	// UpdateState writes status, items, total and cancellation reason if the
	// stored status still equals from.
	UpdateState(ctx context.Context, o *Order, from Status) error
	AppendHistory(ctx context.Context, h *History) error
	ListHistory(ctx context.Context, orderID uuid.UUID) ([]History, error)
}

// OrderDetail is an order with its timeline and modification requests.
type OrderDetail struct {
	*Order
	History       []History      `json:"history"`
	Modifications []Modification `json:"modifications"`
}
