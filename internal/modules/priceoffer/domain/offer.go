package domain

import (
	"context"
	"database/sql/driver"
	"math"
	"time"

	"github.com/google/uuid"
)

type OfferStatus string

const (
	OfferDraft    OfferStatus = "draft"
	OfferSent     OfferStatus = "sent"
	OfferViewed   OfferStatus = "viewed"
	OfferAccepted OfferStatus = "accepted"
	OfferRejected OfferStatus = "rejected"
	// OfferExpired is never stored. It is derived from ValidUntil on read.
	OfferExpired OfferStatus = "expired"
)

func (s OfferStatus) Valid() bool {
	switch s {
	case OfferDraft, OfferSent, OfferViewed, OfferAccepted, OfferRejected, OfferExpired:
		return true
	}
	return false
}

// Open reports whether the client can still respond.
func (s OfferStatus) Open() bool {
	return s == OfferSent || s == OfferViewed
}

type OfferItem struct {
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	NameEn    string    `json:"name_en"`
	NameAr    string    `json:"name_ar"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	LineTotal float64   `json:"line_total"`
}

type OfferItems []OfferItem

func (i OfferItems) Value() (driver.Value, error) {
	if i == nil {
		return []byte("[]"), nil
	}
	return jsonValue(i)
}

func (i *OfferItems) Scan(src any) error { return jsonScan(src, i) }

func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Totals returns subtotal, tax at rate and total, each rounded to cents.
func (i OfferItems) Totals(rate float64) (subtotal, tax, total float64) {
	for _, it := range i {
		subtotal += it.LineTotal
	}
	subtotal = RoundCents(subtotal)
	tax = RoundCents(subtotal * rate)
	return subtotal, tax, RoundCents(subtotal + tax)
}

type PriceOffer struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	OfferNumber  string      `json:"offer_number" db:"offer_number"`
	RequestID    *uuid.UUID  `json:"request_id,omitempty" db:"request_id"`
	ClientID     uuid.UUID   `json:"client_id" db:"client_id"`
	LtaID        uuid.UUID   `json:"lta_id" db:"lta_id"`
	Items        OfferItems  `json:"items" db:"items"`
	Subtotal     float64     `json:"subtotal" db:"subtotal"`
	Tax          float64     `json:"tax" db:"tax"`
	Total        float64     `json:"total" db:"total"`
	Currency     string      `json:"currency" db:"currency"`
	Status       OfferStatus `json:"status" db:"status"`
	Notes        *string     `json:"notes,omitempty" db:"notes"`
	ResponseNote *string     `json:"response_note,omitempty" db:"response_note"`
	DocumentID   *uuid.UUID  `json:"document_id,omitempty" db:"document_id"`
	ValidUntil   time.Time   `json:"valid_until" db:"valid_until"`
	SentAt       *time.Time  `json:"sent_at,omitempty" db:"sent_at"`
	ViewedAt     *time.Time  `json:"viewed_at,omitempty" db:"viewed_at"`
	RespondedAt  *time.Time  `json:"responded_at,omitempty" db:"responded_at"`
	CreatedBy    uuid.UUID   `json:"created_by" db:"created_by"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

// EffectiveStatus is the stored status, or expired when an open offer is
// past its validity.
func (o *PriceOffer) EffectiveStatus(now time.Time) OfferStatus {
	if o.Status.Open() && now.After(o.ValidUntil) {
		return OfferExpired
	}
	return o.Status
}

// Resolve replaces the stored status with the effective one for display.
func (o *PriceOffer) Resolve(now time.Time) *PriceOffer {
	o.Status = o.EffectiveStatus(now)
	return o
}

type OfferFilter struct {
	ClientID     *uuid.UUID
	Status       OfferStatus
	ExcludeDraft bool
	Limit        int
	Offset       int
}

type OfferRepository interface {
	Create(ctx context.Context, o *PriceOffer) error
	GetByID(ctx context.Context, id uuid.UUID) (*PriceOffer, error)
	List(ctx context.Context, filter OfferFilter) ([]PriceOffer, error)
	// Transition writes status, timestamps and response note if the stored
	// status still equals from.
	Transition(ctx context.Context, o *PriceOffer, from OfferStatus) error
	SetDocument(ctx context.Context, id, documentID uuid.UUID) error
	DeleteDraft(ctx context.Context, id uuid.UUID) error
}
