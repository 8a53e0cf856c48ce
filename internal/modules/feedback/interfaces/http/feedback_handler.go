package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/ltaportal/procurement/internal/gateway/middleware"
	"github.com/ltaportal/procurement/internal/modules/feedback/application"
	"github.com/ltaportal/procurement/internal/modules/feedback/domain"
	"github.com/ltaportal/procurement/internal/shared/httpx"
	"go.uber.org/zap"
)

type FeedbackService interface {
	Submit(ctx context.Context, clientID uuid.UUID, in application.SubmitFeedback) (*domain.Feedback, error)
	ForOrder(ctx context.Context, clientID, orderID uuid.UUID) (*domain.Feedback, error)
	List(ctx context.Context, filter domain.FeedbackFilter) ([]domain.Feedback, error)
	Respond(ctx context.Context, adminID, id uuid.UUID, response string) (*domain.Feedback, error)
	Stats(ctx context.Context) (*domain.Stats, error)
	ReportIssue(ctx context.Context, clientID uuid.UUID, in application.ReportIssue) (*domain.IssueReport, error)
	ListIssues(ctx context.Context, filter domain.IssueFilter) ([]domain.IssueReport, error)
	UpdateIssueStatus(ctx context.Context, id uuid.UUID, status domain.IssueStatus) (*domain.IssueReport, error)
}

var feedbackErrors = []httpx.ErrorMapping{
	{Err: domain.ErrFeedbackNotFound, Status: http.StatusNotFound},
	{Err: domain.ErrIssueNotFound, Status: http.StatusNotFound},
	{Err: domain.ErrOrderNotFound, Status: http.StatusNotFound},
	{Err: domain.ErrInvalidRating, Status: http.StatusBadRequest},
	{Err: domain.ErrInvalidStatus, Status: http.StatusBadRequest},
	{Err: domain.ErrFeedbackAlreadySubmitted, Status: http.StatusConflict},
}

type FeedbackHandler struct {
	service FeedbackService
	logger  *zap.Logger
}

func NewFeedbackHandler(service FeedbackService, logger *zap.Logger) *FeedbackHandler {
	return &FeedbackHandler{service: service, logger: logger}
}

func (h *FeedbackHandler) fail(w http.ResponseWriter, err error) {
	httpx.WriteDomainError(w, h.logger, err, feedbackErrors...)
}

func (h *FeedbackHandler) caller(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := middleware.UserID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
	}
	return id, ok
}

// Submit handles POST /api/client/feedback
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req SubmitFeedbackRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	f, err := h.service.Submit(r.Context(), clientID, req.toInput())
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, f)
}

// ForOrder handles GET /api/client/orders/{id}/feedback
func (h *FeedbackHandler) ForOrder(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.caller(w, r)
	if !ok {
		return
	}
	orderID, err := httpx.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	f, err := h.service.ForOrder(r.Context(), clientID, orderID)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, f)
}

// List handles GET /api/admin/feedback?client_id=&min_rating=
func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	clientID, err := httpx.QueryUUID(r, "client_id")
	if err != nil {
		h.fail(w, err)
		return
	}
	minRating := 0
	if raw := r.URL.Query().Get("min_rating"); raw != "" {
		if minRating, err = strconv.Atoi(raw); err != nil || minRating < domain.MinRating || minRating > domain.MaxRating {
			h.fail(w, httpx.NewValidationError("min_rating", "must be between 1 and 5"))
			return
		}
	}
	page := httpx.ParsePage(r)
	feedback, err := h.service.List(r.Context(), domain.FeedbackFilter{ClientID: clientID, MinRating: minRating, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, feedback)
}

func (h *FeedbackHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}

// Respond handles POST /api/admin/feedback/{id}/respond
func (h *FeedbackHandler) Respond(w http.ResponseWriter, r *http.Request) {
	adminID, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	var req RespondRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	f, err := h.service.Respond(r.Context(), adminID, id, req.Response)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, f)
}

// ReportIssue handles POST /api/client/issues
func (h *FeedbackHandler) ReportIssue(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req ReportIssueRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	issue, err := h.service.ReportIssue(r.Context(), clientID, application.ReportIssue{
		OrderID:     req.OrderID,
		IssueType:   req.IssueType,
		Severity:    req.Severity,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, issue)
}

func (h *FeedbackHandler) ListMyIssues(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.caller(w, r)
	if !ok {
		return
	}
	page := httpx.ParsePage(r)
	issues, err := h.service.ListIssues(r.Context(), domain.IssueFilter{ClientID: &clientID, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, issues)
}

// ListIssues handles GET /api/admin/issues?status=&severity=&client_id=
func (h *FeedbackHandler) ListIssues(w http.ResponseWriter, r *http.Request) {
	clientID, err := httpx.QueryUUID(r, "client_id")
	if err != nil {
		h.fail(w, err)
		return
	}
	status := domain.IssueStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		h.fail(w, httpx.NewValidationError("status", "unknown status"))
		return
	}
	page := httpx.ParsePage(r)
	issues, err := h.service.ListIssues(r.Context(), domain.IssueFilter{
		ClientID: clientID,
		Status:   status,
		Severity: domain.Severity(r.URL.Query().Get("severity")),
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, issues)
}

// UpdateIssue handles PATCH /api/admin/issues/{id}
func (h *FeedbackHandler) UpdateIssue(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	var req UpdateIssueRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	issue, err := h.service.UpdateIssueStatus(r.Context(), id, req.Status)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, issue)
}
