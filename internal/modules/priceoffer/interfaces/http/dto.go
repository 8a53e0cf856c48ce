package http

import (
	"time"

	"github.com/google/uuid"
	"github.com/ltaportal/procurement/internal/modules/priceoffer/application"
)

type RequestItem struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

type SubmitPriceRequest struct {
	LtaID *uuid.UUID    `json:"lta_id"`
	Items []RequestItem `json:"items" validate:"required,min=1,dive"`
	Notes string        `json:"notes" validate:"max=2000"`
}

func (r SubmitPriceRequest) toInput() application.SubmitRequest {
	lines := make([]application.RequestLine, len(r.Items))
	for i, it := range r.Items {
		lines[i] = application.RequestLine{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return application.SubmitRequest{LtaID: r.LtaID, Items: lines, Notes: r.Notes}
}

type OfferItem struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
	UnitPrice *float64  `json:"unit_price" validate:"required,gte=0"`
}

type CreateOfferRequest struct {
	RequestID  *uuid.UUID  `json:"request_id"`
	ClientID   uuid.UUID   `json:"client_id" validate:"required"`
	LtaID      uuid.UUID   `json:"lta_id" validate:"required"`
	Items      []OfferItem `json:"items" validate:"required,min=1,dive"`
	Currency   string      `json:"currency" validate:"omitempty,len=3,uppercase"`
	Notes      string      `json:"notes" validate:"max=2000"`
	ValidUntil *time.Time  `json:"valid_until"`
}

func (r CreateOfferRequest) toInput() application.CreateOffer {
	lines := make([]application.OfferLine, len(r.Items))
	for i, it := range r.Items {
		lines[i] = application.OfferLine{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: *it.UnitPrice}
	}
	return application.CreateOffer{
		RequestID:  r.RequestID,
		ClientID:   r.ClientID,
		LtaID:      r.LtaID,
		Items:      lines,
		Currency:   r.Currency,
		Notes:      r.Notes,
		ValidUntil: r.ValidUntil,
	}
}

type RejectOfferRequest struct {
	Note string `json:"note" validate:"max=2000"`
}
