package http

import (
	"net/http"

	"github.com/ltaportal/procurement/internal/gateway/middleware"
	"github.com/ltaportal/procurement/internal/modules/clients/domain"
	"github.com/ltaportal/procurement/internal/shared/httpx"
	"go.uber.org/zap"
)

type ClientHandler struct {
	repo   domain.ClientRepository
	logger *zap.Logger
}

func NewClientHandler(repo domain.ClientRepository, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{repo: repo, logger: logger}
}

// Me handles GET /api/client/me
func (h *ClientHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	client, err := h.repo.GetByID(r.Context(), userID)
	if err != nil {
		httpx.WriteDomainError(w, h.logger, err, httpx.ErrorMapping{Err: domain.ErrClientNotFound, Status: http.StatusNotFound})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, client)
}
