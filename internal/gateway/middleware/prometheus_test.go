package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ltaportal/procurement/internal/shared/infrastructure/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusMiddleware_LabelsByRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/client/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := PrometheusMiddleware(mux)

	counter := metrics.HTTPRequestsTotal.WithLabelValues("GET", "GET /api/client/orders/{id}", "418")
	before := testutil.ToFloat64(counter)

	req := httptest.NewRequest("GET", "/api/client/orders/abc", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestPrometheusMiddleware_CapturesStatus(t *testing.T) {
	testCases := []int{http.StatusOK, http.StatusCreated, http.StatusBadRequest, http.StatusInternalServerError}

	for _, code := range testCases {
		handler := PrometheusMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("POST", "/x", nil))
		assert.Equal(t, code, rec.Code)
	}
}
