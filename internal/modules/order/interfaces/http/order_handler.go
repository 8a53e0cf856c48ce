package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/ltaportal/procurement/internal/gateway/middleware"
	"github.com/ltaportal/procurement/internal/modules/order/application"
	"github.com/ltaportal/procurement/internal/modules/order/domain"
	"github.com/ltaportal/procurement/internal/shared/httpx"
	"go.uber.org/zap"
)

type OrderService interface {
	Create(ctx context.Context, clientID uuid.UUID, in application.PlaceOrder) (*domain.Order, error)
	ListForClient(ctx context.Context, clientID uuid.UUID, status domain.Status, limit, offset int) ([]domain.Order, int, error)
	GetForClient(ctx context.Context, clientID, id uuid.UUID) (*domain.OrderDetail, error)
	Cancel(ctx context.Context, clientID, id uuid.UUID, reason string) (*domain.Order, error)
	RequestModification(ctx context.Context, clientID, id uuid.UUID, in application.ModificationInput) (*domain.Modification, error)
	List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.OrderDetail, error)
	UpdateStatus(ctx context.Context, adminID, id uuid.UUID, change application.StatusChange) (*domain.Order, error)
	AdminCancel(ctx context.Context, adminID, id uuid.UUID, reason string) (*domain.Order, error)
	ReviewModification(ctx context.Context, adminID, modID uuid.UUID, approve bool, response string) (*domain.Modification, error)
	Export(ctx context.Context, status domain.Status, lang string) ([]byte, error)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var orderErrors = []httpx.ErrorMapping{
	{Err: domain.ErrOrderNotFound, Status: http.StatusNotFound},
	{Err: domain.ErrModificationNotFound, Status: http.StatusNotFound},
	{Err: domain.ErrEmptyOrder, Status: http.StatusBadRequest},
	{Err: domain.ErrInvalidQuantity, Status: http.StatusBadRequest},
	{Err: domain.ErrReasonRequired, Status: http.StatusBadRequest},
	{Err: domain.ErrLtaUnavailable, Status: http.StatusUnprocessableEntity},
	{Err: domain.ErrProductNotContracted, Status: http.StatusUnprocessableEntity},
	{Err: domain.ErrInvalidStatusTransition, Status: http.StatusUnprocessableEntity},
	{Err: domain.ErrModificationNotAllowed, Status: http.StatusUnprocessableEntity},
	{Err: domain.ErrStatusConflict, Status: http.StatusConflict},
	{Err: domain.ErrModificationPending, Status: http.StatusConflict},
	{Err: domain.ErrModificationReviewed, Status: http.StatusConflict},
}

type OrderHandler struct {
	service OrderService
	logger  *zap.Logger
}

func NewOrderHandler(service OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{service: service, logger: logger}
}

func (h *OrderHandler) fail(w http.ResponseWriter, err error) {
	httpx.WriteDomainError(w, h.logger, err, orderErrors...)
}

func (h *OrderHandler) caller(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := middleware.UserID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
	}
	return id, ok
}

func statusFilter(r *http.Request) (domain.Status, error) {
	status := domain.Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		return "", httpx.NewValidationError("status", "unknown status")
	}
	return status, nil
}

// Create handles POST /api/client/orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	order, err := h.service.Create(r.Context(), clientID, application.PlaceOrder{LtaID: req.LtaID, Items: toItemInputs(req.Items)})
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, order)
}

// ListMine handles GET /api/client/orders?status=&limit=&offset=
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.caller(w, r)
	if !ok {
		return
	}
	status, err := statusFilter(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	page := httpx.ParsePage(r)
	orders, total, err := h.service.ListForClient(r.Context(), clientID, status, page.Limit, page.Offset)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ListResponse{Data: orders, Metadata: ListMetadata{Total: total, Limit: page.Limit, Offset: page.Offset}})
}

func (h *OrderHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	detail, err := h.service.GetForClient(r.Context(), clientID, id)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, detail)
}

// CancelMine handles POST /api/client/orders/{id}/cancel
func (h *OrderHandler) CancelMine(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	var req CancelOrderRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	order, err := h.service.Cancel(r.Context(), clientID, id, req.Reason)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, order)
}

// RequestModification handles POST /api/client/orders/{id}/modifications
func (h *OrderHandler) RequestModification(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	var req ModificationRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	mod, err := h.service.RequestModification(r.Context(), clientID, id, application.ModificationInput{
		Type:   req.Type,
		Items:  toItemInputs(req.Items),
		Reason: req.Reason,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, mod)
}

// List handles GET /api/admin/orders?status=&client_id=&limit=&offset=
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	status, err := statusFilter(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	clientID, err := httpx.QueryUUID(r, "client_id")
	if err != nil {
		h.fail(w, err)
		return
	}
	page := httpx.ParsePage(r)
	orders, total, err := h.service.List(r.Context(), domain.OrderFilter{ClientID: clientID, Status: status, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ListResponse{Data: orders, Metadata: ListMetadata{Total: total, Limit: page.Limit, Offset: page.Offset}})
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	detail, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, detail)
}

// UpdateStatus handles PATCH /api/admin/orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	adminID, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	var req UpdateStatusRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	order, err := h.service.UpdateStatus(r.Context(), adminID, id, application.StatusChange{
		Status:      req.Status,
		Notes:       req.Notes,
		IsAdminNote: req.IsAdminNote,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, order)
}

// Cancel handles POST /api/admin/orders/{id}/cancel
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	adminID, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	var req CancelOrderRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	order, err := h.service.AdminCancel(r.Context(), adminID, id, req.Reason)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, order)
}

// ReviewModification handles PATCH /api/admin/order-modifications/{id}
func (h *OrderHandler) ReviewModification(w http.ResponseWriter, r *http.Request) {
	adminID, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	var req ReviewModificationRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	mod, err := h.service.ReviewModification(r.Context(), adminID, id, *req.Approve, req.Response)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, mod)
}

// Export handles GET /api/admin/orders/export?status=&lang=
func (h *OrderHandler) Export(w http.ResponseWriter, r *http.Request) {
	status, err := statusFilter(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	lang := r.URL.Query().Get("lang")
	if lang != "ar" {
		lang = "en"
	}
	data, err := h.service.Export(r.Context(), status, lang)
	if err != nil {
		h.fail(w, err)
		return
	}
	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
