package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/ltaportal/procurement/internal/gateway/middleware"
	"github.com/ltaportal/procurement/internal/modules/lta/domain"
	"github.com/ltaportal/procurement/internal/shared/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockLtaService struct{ mock.Mock }

func (m *mockLtaService) Create(ctx context.Context, lta *domain.Lta) error {
	return m.Called(ctx, lta).Error(0)
}
func (m *mockLtaService) Get(ctx context.Context, id uuid.UUID) (*domain.Lta, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lta), args.Error(1)
}
func (m *mockLtaService) List(ctx context.Context, filter domain.LtaFilter) ([]domain.Lta, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Lta), args.Error(1)
}
func (m *mockLtaService) ListForClient(ctx context.Context, clientID uuid.UUID) ([]domain.Lta, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]domain.Lta), args.Error(1)
}
func (m *mockLtaService) ListProducts(ctx context.Context, ltaID uuid.UUID) ([]domain.LtaProduct, error) {
	args := m.Called(ctx, ltaID)
	return args.Get(0).([]domain.LtaProduct), args.Error(1)
}
func (m *mockLtaService) SetStatus(ctx context.Context, id uuid.UUID, to domain.Status) (*domain.Lta, error) {
	args := m.Called(ctx, id, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lta), args.Error(1)
}
func (m *mockLtaService) AssignProduct(ctx context.Context, ltaID, productID uuid.UUID, price float64) (*domain.LtaProduct, error) {
	args := m.Called(ctx, ltaID, productID, price)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LtaProduct), args.Error(1)
}
func (m *mockLtaService) RemoveProduct(ctx context.Context, ltaID, productID uuid.UUID) error {
	return m.Called(ctx, ltaID, productID).Error(0)
}
func (m *mockLtaService) ClientProducts(ctx context.Context, clientID uuid.UUID) ([]domain.ContractedProduct, bool, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]domain.ContractedProduct), args.Bool(1), args.Error(2)
}

func asClient(req *http.Request, id uuid.UUID) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), id, auth.RoleClient))
}

func TestLtaHandler_Create(t *testing.T) {
	svc := new(mockLtaService)
	h := NewLtaHandler(svc, zap.NewNop())

	w := httptest.NewRecorder()
	h.Create(w, httptest.NewRequest(http.MethodPost, "/api/admin/ltas", strings.NewReader(`{"name_en":"x","name_ar":"y","currency":"sar"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "client_id")
	assert.Contains(t, w.Body.String(), "currency")

	svc.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	body := `{"client_id":"` + uuid.NewString() + `","name_en":"Office","name_ar":"مكتب","currency":"SAR"}`
	w = httptest.NewRecorder()
	h.Create(w, httptest.NewRequest(http.MethodPost, "/api/admin/ltas", strings.NewReader(body)))
	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestLtaHandler_SetStatus(t *testing.T) {
	svc := new(mockLtaService)
	h := NewLtaHandler(svc, zap.NewNop())
	id := uuid.New()

	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"status":"archived"}`))
	req.SetPathValue("id", id.String())
	w := httptest.NewRecorder()
	h.SetStatus(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.On("SetStatus", mock.Anything, id, domain.StatusDraft).Return(nil, domain.ErrInvalidStatusTransition).Once()
	req = httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"status":"draft"}`))
	req.SetPathValue("id", id.String())
	w = httptest.NewRecorder()
	h.SetStatus(w, req)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	svc.On("SetStatus", mock.Anything, id, domain.StatusActive).Return(nil, domain.ErrStatusConflict).Once()
	req = httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"status":"active"}`))
	req.SetPathValue("id", id.String())
	w = httptest.NewRecorder()
	h.SetStatus(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLtaHandler_AssignProduct(t *testing.T) {
	svc := new(mockLtaService)
	h := NewLtaHandler(svc, zap.NewNop())
	id, productID := uuid.New(), uuid.New()

	newReq := func(body string) *http.Request {
		req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
		req.SetPathValue("id", id.String())
		req.SetPathValue("productId", productID.String())
		return req
	}

	w := httptest.NewRecorder()
	h.AssignProduct(w, newReq(`{}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.On("AssignProduct", mock.Anything, id, productID, 0.0).Return(&domain.LtaProduct{ContractPrice: 0}, nil).Once()
	w = httptest.NewRecorder()
	h.AssignProduct(w, newReq(`{"contract_price":0}`))
	assert.Equal(t, http.StatusOK, w.Code, "a zero contract price is allowed")

	svc.On("AssignProduct", mock.Anything, id, productID, 12.5).Return(nil, domain.ErrUnknownProduct).Once()
	w = httptest.NewRecorder()
	h.AssignProduct(w, newReq(`{"contract_price":12.5}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertExpectations(t)
}

func TestLtaHandler_ClientProducts(t *testing.T) {
	svc := new(mockLtaService)
	h := NewLtaHandler(svc, zap.NewNop())
	clientID := uuid.New()

	svc.On("ClientProducts", mock.Anything, clientID).Return([]domain.ContractedProduct{{SKU: "A"}}, true, nil).Once()
	w := httptest.NewRecorder()
	h.ClientProducts(w, asClient(httptest.NewRequest(http.MethodGet, "/api/client/products", nil), clientID))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.Contains(t, w.Body.String(), `"sku":"A"`)

	w = httptest.NewRecorder()
	h.ClientProducts(w, httptest.NewRequest(http.MethodGet, "/api/client/products", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLtaHandler_GetAndList(t *testing.T) {
	svc := new(mockLtaService)
	h := NewLtaHandler(svc, zap.NewNop())
	id := uuid.New()

	svc.On("Get", mock.Anything, id).Return(&domain.Lta{ID: id, Status: domain.StatusActive}, nil).Once()
	svc.On("ListProducts", mock.Anything, id).Return([]domain.LtaProduct{{ContractPrice: 3}}, nil).Once()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetPathValue("id", id.String())
	w := httptest.NewRecorder()
	h.Get(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"active"`)
	assert.Contains(t, w.Body.String(), `"products":[`)

	w = httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/api/admin/ltas?status=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.On("List", mock.Anything, domain.LtaFilter{Status: domain.StatusDraft, Limit: 20}).Return([]domain.Lta{}, nil).Once()
	w = httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/api/admin/ltas?status=draft", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	svc.AssertExpectations(t)
}
