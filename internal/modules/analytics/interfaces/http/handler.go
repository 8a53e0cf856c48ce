package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ltaportal/procurement/internal/modules/analytics/domain"
	"github.com/ltaportal/procurement/internal/shared/httpx"
	"go.uber.org/zap"
)

type AnalyticsService interface {
	Overview(ctx context.Context, days int, sortBy domain.SortBy) (*domain.Overview, error)
	TopProducts(ctx context.Context, days, limit int, sortBy domain.SortBy) ([]domain.TopProductStat, error)
}

type AnalyticsHandler struct {
	service AnalyticsService
	logger  *zap.Logger
}

func NewAnalyticsHandler(service AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{service: service, logger: logger}
}

// queryInt reads a positive integer query parameter; absent means 0.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, httpx.NewValidationError(name, "must be a positive integer")
	}
	return n, nil
}

// GetOverview handles GET /api/admin/analytics/overview
func (h *AnalyticsHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days")
	if err != nil {
		httpx.WriteDomainError(w, h.logger, err)
		return
	}
	overview, err := h.service.Overview(r.Context(), days, domain.ParseSortBy(r.URL.Query().Get("sort")))
	if err != nil {
		httpx.WriteDomainError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, overview)
}

// GetTopProducts handles GET /api/admin/analytics/top-products
func (h *AnalyticsHandler) GetTopProducts(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days")
	if err != nil {
		httpx.WriteDomainError(w, h.logger, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		httpx.WriteDomainError(w, h.logger, err)
		return
	}
	stats, err := h.service.TopProducts(r.Context(), days, limit, domain.ParseSortBy(r.URL.Query().Get("sortBy")))
	if err != nil {
		httpx.WriteDomainError(w, h.logger, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, stats)
}
