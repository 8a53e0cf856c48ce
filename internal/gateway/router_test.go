package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ltaportal/procurement/internal/gateway/middleware"
	"github.com/ltaportal/procurement/internal/shared/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func bearer(t *testing.T, role string) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, time.Hour, uuid.New(), role)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRouter_AccessLevels(t *testing.T) {
	router := NewRouter(middleware.NewAuthMiddleware(testSecret))
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }

	router.Public("GET /open", http.HandlerFunc(ok))
	router.Authenticated("GET /mine", ok)
	router.Admin("GET /admin", ok)

	tests := []struct {
		name   string
		path   string
		auth   string
		status int
	}{
		{"public_anonymous", "/open", "", http.StatusNoContent},
		{"authenticated_anonymous", "/mine", "", http.StatusUnauthorized},
		{"authenticated_client", "/mine", bearer(t, auth.RoleClient), http.StatusNoContent},
		{"admin_client", "/admin", bearer(t, auth.RoleClient), http.StatusForbidden},
		{"admin_admin", "/admin", bearer(t, auth.RoleAdmin), http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			w := httptest.NewRecorder()
			router.Mux().ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
