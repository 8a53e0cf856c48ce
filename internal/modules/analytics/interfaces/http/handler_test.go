package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ltaportal/procurement/internal/modules/analytics/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockAnalyticsService struct{ mock.Mock }

func (m *mockAnalyticsService) Overview(ctx context.Context, days int, sortBy domain.SortBy) (*domain.Overview, error) {
	args := m.Called(ctx, days, sortBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Overview), args.Error(1)
}

func (m *mockAnalyticsService) TopProducts(ctx context.Context, days, limit int, sortBy domain.SortBy) ([]domain.TopProductStat, error) {
	args := m.Called(ctx, days, limit, sortBy)
	return args.Get(0).([]domain.TopProductStat), args.Error(1)
}

func TestGetOverview(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		setup      func(*mockAnalyticsService)
		wantStatus int
		wantBody   string
	}{
		{
			name:  "defaults",
			query: "",
			setup: func(s *mockAnalyticsService) {
				s.On("Overview", mock.Anything, 0, domain.SortByQuantity).
					Return(&domain.Overview{Days: 30, TotalOrders: 7}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `"total_orders":7`,
		},
		{
			name:  "days and sort",
			query: "?days=7&sort=revenue",
			setup: func(s *mockAnalyticsService) {
				s.On("Overview", mock.Anything, 7, domain.SortByRevenue).Return(&domain.Overview{Days: 7}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `"days":7`,
		},
		{
			name:       "invalid days",
			query:      "?days=week",
			setup:      func(*mockAnalyticsService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   `"days"`,
		},
		{
			name:  "service error",
			query: "",
			setup: func(s *mockAnalyticsService) {
				s.On("Overview", mock.Anything, 0, domain.SortByQuantity).Return(nil, errors.New("db down"))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockAnalyticsService)
			tt.setup(svc)
			h := NewAnalyticsHandler(svc, zap.NewNop())

			rec := httptest.NewRecorder()
			h.GetOverview(rec, httptest.NewRequest(http.MethodGet, "/api/admin/analytics/overview"+tt.query, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestGetTopProducts(t *testing.T) {
	svc := new(mockAnalyticsService)
	svc.On("TopProducts", mock.Anything, 90, 10, domain.SortByRevenue).
		Return([]domain.TopProductStat{{SKU: "PEN-01", Quantity: 40}}, nil)
	h := NewAnalyticsHandler(svc, zap.NewNop())

	rec := httptest.NewRecorder()
	h.GetTopProducts(rec, httptest.NewRequest(http.MethodGet, "/api/admin/analytics/top-products?days=90&limit=10&sortBy=revenue", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[{`)
	assert.Contains(t, rec.Body.String(), `"sku":"PEN-01"`)
	svc.AssertExpectations(t)

	rec = httptest.NewRecorder()
	h.GetTopProducts(rec, httptest.NewRequest(http.MethodGet, "/api/admin/analytics/top-products?limit=-1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
