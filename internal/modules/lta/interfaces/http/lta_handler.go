package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/ltaportal/procurement/internal/gateway/middleware"
	"github.com/ltaportal/procurement/internal/modules/lta/domain"
	"github.com/ltaportal/procurement/internal/shared/httpx"
	"go.uber.org/zap"
)

type LtaService interface {
	Create(ctx context.Context, lta *domain.Lta) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Lta, error)
	List(ctx context.Context, filter domain.LtaFilter) ([]domain.Lta, error)
	ListForClient(ctx context.Context, clientID uuid.UUID) ([]domain.Lta, error)
	ListProducts(ctx context.Context, ltaID uuid.UUID) ([]domain.LtaProduct, error)
	SetStatus(ctx context.Context, id uuid.UUID, to domain.Status) (*domain.Lta, error)
	AssignProduct(ctx context.Context, ltaID, productID uuid.UUID, price float64) (*domain.LtaProduct, error)
	RemoveProduct(ctx context.Context, ltaID, productID uuid.UUID) error
	ClientProducts(ctx context.Context, clientID uuid.UUID) ([]domain.ContractedProduct, bool, error)
}

var ltaErrors = []httpx.ErrorMapping{
	{Err: domain.ErrLtaNotFound, Status: http.StatusNotFound},
	{Err: domain.ErrProductNotContracted, Status: http.StatusNotFound},
	{Err: domain.ErrUnknownProduct, Status: http.StatusBadRequest},
	{Err: domain.ErrNegativePrice, Status: http.StatusBadRequest},
	{Err: domain.ErrInvalidStatusTransition, Status: http.StatusUnprocessableEntity},
	{Err: domain.ErrStatusConflict, Status: http.StatusConflict},
}

type CreateLtaRequest struct {
	ClientID uuid.UUID `json:"client_id" validate:"required"`
	NameEn   string    `json:"name_en" validate:"required,max=255"`
	NameAr   string    `json:"name_ar" validate:"required,max=255"`
	Currency string    `json:"currency" validate:"omitempty,len=3,uppercase"`
}

type SetStatusRequest struct {
	Status domain.Status `json:"status" validate:"required,oneof=draft active inactive"`
}

type AssignProductRequest struct {
	ContractPrice *float64 `json:"contract_price" validate:"required,gte=0"`
}

// LtaDetail is an LTA with its contract prices.
type LtaDetail struct {
	*domain.Lta
	Products []domain.LtaProduct `json:"products"`
}

type LtaHandler struct {
	service LtaService
	logger  *zap.Logger
}

func NewLtaHandler(service LtaService, logger *zap.Logger) *LtaHandler {
	return &LtaHandler{service: service, logger: logger}
}

func (h *LtaHandler) fail(w http.ResponseWriter, err error) {
	httpx.WriteDomainError(w, h.logger, err, ltaErrors...)
}

func (h *LtaHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLtaRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	lta := &domain.Lta{ClientID: req.ClientID, NameEn: req.NameEn, NameAr: req.NameAr, Currency: req.Currency}
	if err := h.service.Create(r.Context(), lta); err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, lta)
}

// List handles GET /api/admin/ltas?client_id=&status=
func (h *LtaHandler) List(w http.ResponseWriter, r *http.Request) {
	clientID, err := httpx.QueryUUID(r, "client_id")
	if err != nil {
		h.fail(w, err)
		return
	}
	status := domain.Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		h.fail(w, httpx.NewValidationError("status", "oneof=draft active inactive"))
		return
	}
	page := httpx.ParsePage(r)

	ltas, err := h.service.List(r.Context(), domain.LtaFilter{ClientID: clientID, Status: status, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, ltas)
}

func (h *LtaHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	lta, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	products, err := h.service.ListProducts(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, LtaDetail{Lta: lta, Products: products})
}

func (h *LtaHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	var req SetStatusRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	lta, err := h.service.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, lta)
}

// AssignProduct handles PUT /api/admin/ltas/{id}/products/{productId}
func (h *LtaHandler) AssignProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	productID, err := httpx.PathUUID(r, "productId")
	if err != nil {
		h.fail(w, err)
		return
	}
	var req AssignProductRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	lp, err := h.service.AssignProduct(r.Context(), id, productID, *req.ContractPrice)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, lp)
}

func (h *LtaHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	productID, err := httpx.PathUUID(r, "productId")
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := h.service.RemoveProduct(r.Context(), id, productID); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClientProducts handles GET /api/client/products
func (h *LtaHandler) ClientProducts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	products, hit, err := h.service.ClientProducts(r.Context(), userID)
	if err != nil {
		h.fail(w, err)
		return
	}
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	httpx.WriteData(w, http.StatusOK, products)
}

// ClientLtas handles GET /api/client/ltas
func (h *LtaHandler) ClientLtas(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	ltas, err := h.service.ListForClient(r.Context(), userID)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, ltas)
}
