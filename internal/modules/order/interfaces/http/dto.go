package http

import (
	"github.com/google/uuid"
	"github.com/ltaportal/procurement/internal/modules/order/application"
	"github.com/ltaportal/procurement/internal/modules/order/domain"
)

type ItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

func toItemInputs(items []ItemRequest) []application.ItemInput {
	out := make([]application.ItemInput, len(items))
	for i, it := range items {
		out[i] = application.ItemInput{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return out
}

type CreateOrderRequest struct {
	LtaID uuid.UUID     `json:"lta_id" validate:"required"`
	Items []ItemRequest `json:"items" validate:"required,min=1,dive"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

type ModificationRequest struct {
	Type   domain.ModificationType `json:"type" validate:"required,oneof=items cancel"`
	Items  []ItemRequest           `json:"items" validate:"required_if=Type items,dive"`
	Reason string                  `json:"reason" validate:"required,max=1000"`
}

type UpdateStatusRequest struct {
	Status      domain.Status `json:"status" validate:"required,oneof=pending confirmed processing shipped delivered cancelled"`
	Notes       string        `json:"notes" validate:"max=2000"`
	IsAdminNote bool          `json:"is_admin_note"`
}

type ReviewModificationRequest struct {
	Approve  *bool  `json:"approve" validate:"required"`
	Response string `json:"response" validate:"max=2000"`
}

type ListMetadata struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type ListResponse struct {
	Data     []domain.Order `json:"data"`
	Metadata ListMetadata   `json:"metadata"`
}
