package gateway

import (
	"net/http"

	"github.com/ltaportal/procurement/internal/gateway/middleware"
)

// Router wraps http.ServeMux and registers handlers behind the access
// level they need.
type Router struct {
	mux  *http.ServeMux
	auth *middleware.AuthMiddleWare
}

func NewRouter(auth *middleware.AuthMiddleWare) *Router {
	return &Router{
		mux:  http.NewServeMux(),
		auth: auth,
	}
}

// Mux returns the underlying http.ServeMux
func (r *Router) Mux() *http.ServeMux {
	return r.mux
}

// Public registers a handler reachable without a token.
func (r *Router) Public(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
}

// Authenticated registers a handler for any signed-in caller.
func (r *Router) Authenticated(pattern string, handler http.HandlerFunc) {
	r.mux.Handle(pattern, r.auth.RequireAuth(handler))
}

// Admin registers a handler restricted to administrators.
func (r *Router) Admin(pattern string, handler http.HandlerFunc) {
	r.mux.Handle(pattern, r.auth.RequireAdmin(handler))
}
