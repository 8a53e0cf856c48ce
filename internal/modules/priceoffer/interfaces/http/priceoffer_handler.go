package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/ltaportal/procurement/internal/gateway/middleware"
	"github.com/ltaportal/procurement/internal/modules/priceoffer/application"
	"github.com/ltaportal/procurement/internal/modules/priceoffer/domain"
	"github.com/ltaportal/procurement/internal/shared/httpx"
	"go.uber.org/zap"
)

type PriceOfferService interface {
	Submit(ctx context.Context, clientID uuid.UUID, in application.SubmitRequest) (*domain.PriceRequest, error)
	ListRequests(ctx context.Context, filter domain.RequestFilter) ([]domain.PriceRequest, error)
	CreateOffer(ctx context.Context, adminID uuid.UUID, in application.CreateOffer) (*domain.PriceOffer, error)
	ListOffers(ctx context.Context, filter domain.OfferFilter) ([]domain.PriceOffer, error)
	GetOffer(ctx context.Context, id uuid.UUID) (*domain.PriceOffer, error)
	Send(ctx context.Context, id uuid.UUID) (*domain.PriceOffer, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListForClient(ctx context.Context, clientID uuid.UUID, status domain.OfferStatus, limit, offset int) ([]domain.PriceOffer, error)
	GetForClient(ctx context.Context, clientID, id uuid.UUID) (*domain.PriceOffer, error)
	Accept(ctx context.Context, clientID, id uuid.UUID) (*domain.PriceOffer, error)
	Reject(ctx context.Context, clientID, id uuid.UUID, note string) (*domain.PriceOffer, error)
}

var offerErrors = []httpx.ErrorMapping{
	{Err: domain.ErrRequestNotFound, Status: http.StatusNotFound},
	{Err: domain.ErrOfferNotFound, Status: http.StatusNotFound},
	{Err: domain.ErrNoItems, Status: http.StatusBadRequest},
	{Err: domain.ErrInvalidQuantity, Status: http.StatusBadRequest},
	{Err: domain.ErrNegativePrice, Status: http.StatusBadRequest},
	{Err: domain.ErrUnknownProduct, Status: http.StatusBadRequest},
	{Err: domain.ErrInvalidValidity, Status: http.StatusBadRequest},
	{Err: domain.ErrLtaUnavailable, Status: http.StatusUnprocessableEntity},
	{Err: domain.ErrInvalidStatusTransition, Status: http.StatusUnprocessableEntity},
	{Err: domain.ErrOfferNotDraft, Status: http.StatusUnprocessableEntity},
	{Err: domain.ErrOfferExpired, Status: http.StatusGone},
	{Err: domain.ErrRequestNotPending, Status: http.StatusConflict},
	{Err: domain.ErrStatusConflict, Status: http.StatusConflict},
}

type PriceOfferHandler struct {
	service PriceOfferService
	logger  *zap.Logger
}

func NewPriceOfferHandler(service PriceOfferService, logger *zap.Logger) *PriceOfferHandler {
	return &PriceOfferHandler{service: service, logger: logger}
}

func (h *PriceOfferHandler) fail(w http.ResponseWriter, err error) {
	httpx.WriteDomainError(w, h.logger, err, offerErrors...)
}

func (h *PriceOfferHandler) caller(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := middleware.UserID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
	}
	return id, ok
}

func offerStatus(r *http.Request) (domain.OfferStatus, error) {
	status := domain.OfferStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		return "", httpx.NewValidationError("status", "unknown status")
	}
	return status, nil
}

// SubmitRequest handles POST /api/client/price-requests
func (h *PriceOfferHandler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req SubmitPriceRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	pr, err := h.service.Submit(r.Context(), clientID, req.toInput())
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, pr)
}

func (h *PriceOfferHandler) ListMyRequests(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.caller(w, r)
	if !ok {
		return
	}
	page := httpx.ParsePage(r)
	requests, err := h.service.ListRequests(r.Context(), domain.RequestFilter{ClientID: &clientID, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, requests)
}

// ListRequests handles GET /api/admin/price-requests?client_id=&status=
func (h *PriceOfferHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	clientID, err := httpx.QueryUUID(r, "client_id")
	if err != nil {
		h.fail(w, err)
		return
	}
	status := domain.RequestStatus(r.URL.Query().Get("status"))
	page := httpx.ParsePage(r)
	requests, err := h.service.ListRequests(r.Context(), domain.RequestFilter{ClientID: clientID, Status: status, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, requests)
}

// CreateOffer handles POST /api/admin/price-offers
func (h *PriceOfferHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	adminID, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req CreateOfferRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	offer, err := h.service.CreateOffer(r.Context(), adminID, req.toInput())
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, offer)
}

// ListOffers handles GET /api/admin/price-offers?client_id=&status=
func (h *PriceOfferHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	clientID, err := httpx.QueryUUID(r, "client_id")
	if err != nil {
		h.fail(w, err)
		return
	}
	status, err := offerStatus(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	page := httpx.ParsePage(r)
	offers, err := h.service.ListOffers(r.Context(), domain.OfferFilter{ClientID: clientID, Status: status, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, offers)
}

func (h *PriceOfferHandler) GetOffer(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	offer, err := h.service.GetOffer(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, offer)
}

// Send handles POST /api/admin/price-offers/{id}/send
func (h *PriceOfferHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	offer, err := h.service.Send(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, offer)
}

func (h *PriceOfferHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMine handles GET /api/client/price-offers?status=
func (h *PriceOfferHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.caller(w, r)
	if !ok {
		return
	}
	status, err := offerStatus(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	page := httpx.ParsePage(r)
	offers, err := h.service.ListForClient(r.Context(), clientID, status, page.Limit, page.Offset)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, offers)
}

func (h *PriceOfferHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	offer, err := h.service.GetForClient(r.Context(), clientID, id)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, offer)
}

// Accept handles POST /api/client/price-offers/{id}/accept
func (h *PriceOfferHandler) Accept(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	offer, err := h.service.Accept(r.Context(), clientID, id)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, offer)
}

// Reject handles POST /api/client/price-offers/{id}/reject
func (h *PriceOfferHandler) Reject(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	var req RejectOfferRequest
	if r.ContentLength != 0 {
		if err := httpx.DecodeAndValidate(r, &req); err != nil {
			h.fail(w, err)
			return
		}
	}
	offer, err := h.service.Reject(r.Context(), clientID, id, req.Note)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, offer)
}
