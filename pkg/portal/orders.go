package portal

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ltaportal/procurement/pkg/apiclient"
	"github.com/ltaportal/procurement/pkg/querycache"
)

const ordersPath = "/api/client/orders"

var OrdersKey = querycache.Key{ordersPath}

type OrderItem struct {
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	NameEn    string    `json:"name_en"`
	NameAr    string    `json:"name_ar"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	LineTotal float64   `json:"line_total"`
}

// Name returns the item name in lang, falling back to English.
func (i OrderItem) Name(lang Language) string {
	if lang == Arabic && i.NameAr != "" {
		return i.NameAr
	}
	return i.NameEn
}

type Order struct {
	ID                 uuid.UUID   `json:"id"`
	ClientID           uuid.UUID   `json:"client_id"`
	LtaID              *uuid.UUID  `json:"lta_id,omitempty"`
	Items              []OrderItem `json:"items"`
	TotalAmount        float64     `json:"total_amount"`
	Currency           string      `json:"currency"`
	Status             string      `json:"status"`
	CancellationReason *string     `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

type OrderPage struct {
	Data     []Order `json:"data"`
	Metadata struct {
		Total  int `json:"total"`
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
	} `json:"metadata"`
}

type Orders struct {
	api    API
	cache  *querycache.Cache
	toasts *Toasts
}

func NewOrders(api API, cache *querycache.Cache, toasts *Toasts) *Orders {
	return &Orders{api: api, cache: cache, toasts: toasts}
}

// List returns the first page of the client's orders.
func (o *Orders) List(ctx context.Context) (OrderPage, error) {
	return querycache.FetchQuery[OrderPage](ctx, o.cache, OrdersKey, func(ctx context.Context) ([]byte, error) {
		return o.api.Get(ctx, ordersPath)
	})
}

// Cancel cancels an order with a reason. Cached order lists are
// invalidated whatever the outcome, and the unread count with them since
// the server notifies the client.
func (o *Orders) Cancel(ctx context.Context, id uuid.UUID, reason string) (Order, error) {
	order, err := querycache.Mutate(ctx, o.cache, func(ctx context.Context) (Order, error) {
		raw, err := o.api.Post(ctx, ordersPath+"/"+id.String()+"/cancel", map[string]string{"reason": reason})
		if err != nil {
			return Order{}, err
		}
		return apiclient.Decode[Order](raw)
	})
	if err != nil {
		o.toasts.Error(MsgCancelOrderFailed, err)
	} else {
		o.toasts.Info(MsgOrderCancelled)
	}

	settle := context.WithoutCancel(ctx)
	for _, key := range []querycache.Key{OrdersKey, UnreadCountKey} {
		_ = o.cache.InvalidateQueries(settle, key)
	}
	return order, err
}
