package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/ltaportal/procurement/internal/gateway/middleware"
	"github.com/ltaportal/procurement/internal/modules/feedback/application"
	"github.com/ltaportal/procurement/internal/modules/feedback/domain"
	"github.com/ltaportal/procurement/internal/shared/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockFeedbackService struct{ mock.Mock }

func feedbackOrNil(args mock.Arguments) *domain.Feedback {
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*domain.Feedback)
}

func issueOrNil(args mock.Arguments) *domain.IssueReport {
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*domain.IssueReport)
}

func (m *mockFeedbackService) Submit(ctx context.Context, clientID uuid.UUID, in application.SubmitFeedback) (*domain.Feedback, error) {
	args := m.Called(ctx, clientID, in)
	return feedbackOrNil(args), args.Error(1)
}
func (m *mockFeedbackService) ForOrder(ctx context.Context, clientID, orderID uuid.UUID) (*domain.Feedback, error) {
	args := m.Called(ctx, clientID, orderID)
	return feedbackOrNil(args), args.Error(1)
}
func (m *mockFeedbackService) List(ctx context.Context, filter domain.FeedbackFilter) ([]domain.Feedback, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Feedback), args.Error(1)
}
func (m *mockFeedbackService) Respond(ctx context.Context, adminID, id uuid.UUID, response string) (*domain.Feedback, error) {
	args := m.Called(ctx, adminID, id, response)
	return feedbackOrNil(args), args.Error(1)
}
func (m *mockFeedbackService) Stats(ctx context.Context) (*domain.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Stats), args.Error(1)
}
func (m *mockFeedbackService) ReportIssue(ctx context.Context, clientID uuid.UUID, in application.ReportIssue) (*domain.IssueReport, error) {
	args := m.Called(ctx, clientID, in)
	return issueOrNil(args), args.Error(1)
}
func (m *mockFeedbackService) ListIssues(ctx context.Context, filter domain.IssueFilter) ([]domain.IssueReport, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.IssueReport), args.Error(1)
}
func (m *mockFeedbackService) UpdateIssueStatus(ctx context.Context, id uuid.UUID, status domain.IssueStatus) (*domain.IssueReport, error) {
	args := m.Called(ctx, id, status)
	return issueOrNil(args), args.Error(1)
}

func withUser(req *http.Request, id uuid.UUID, role string) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), id, role))
}

func TestFeedbackHandler_Submit(t *testing.T) {
	svc := new(mockFeedbackService)
	h := NewFeedbackHandler(svc, zap.NewNop())
	clientID, orderID := uuid.New(), uuid.New()
	newReq := func(body string) *http.Request {
		return withUser(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), clientID, auth.RoleClient)
	}

	w := httptest.NewRecorder()
	h.Submit(w, newReq(`{"order_id":"`+orderID.String()+`","rating":6}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "rating")

	w = httptest.NewRecorder()
	h.Submit(w, newReq(`{"order_id":"`+orderID.String()+`","rating":4,"delivery_speed_rating":0}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	in := application.SubmitFeedback{OrderID: orderID, Rating: 5, WouldRecommend: true}
	svc.On("Submit", mock.Anything, clientID, in).
		Return(&domain.Feedback{ID: uuid.New(), OrderID: orderID, Rating: 5, WouldRecommend: true}, nil).Once()
	w = httptest.NewRecorder()
	h.Submit(w, newReq(`{"order_id":"`+orderID.String()+`","rating":5,"would_recommend":true}`))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"order_id":"`+orderID.String()+`"`)

	svc.On("Submit", mock.Anything, clientID, in).Return(nil, domain.ErrFeedbackAlreadySubmitted).Once()
	w = httptest.NewRecorder()
	h.Submit(w, newReq(`{"order_id":"`+orderID.String()+`","rating":5,"would_recommend":true}`))
	assert.Equal(t, http.StatusConflict, w.Code)

	svc.AssertExpectations(t)
}

func TestFeedbackHandler_List(t *testing.T) {
	svc := new(mockFeedbackService)
	h := NewFeedbackHandler(svc, zap.NewNop())

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/?min_rating=9", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.On("List", mock.Anything, domain.FeedbackFilter{MinRating: 4, Limit: 20}).Return([]domain.Feedback{{Rating: 5}}, nil).Once()
	w = httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/?min_rating=4", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"rating":5`)

	svc.AssertExpectations(t)
}

func TestFeedbackHandler_Stats(t *testing.T) {
	svc := new(mockFeedbackService)
	h := NewFeedbackHandler(svc, zap.NewNop())

	svc.On("Stats", mock.Anything).Return(&domain.Stats{Count: 3, AverageRating: 4.5, RecommendRate: 1}, nil)
	w := httptest.NewRecorder()
	h.Stats(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"average_rating":4.5`)
	assert.Contains(t, w.Body.String(), `"recommend_rate":1`)
}

func TestFeedbackHandler_UpdateIssue(t *testing.T) {
	svc := new(mockFeedbackService)
	h := NewFeedbackHandler(svc, zap.NewNop())
	id := uuid.New()
	newReq := func(body string) *http.Request {
		req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(body))
		req.SetPathValue("id", id.String())
		return req
	}

	w := httptest.NewRecorder()
	h.UpdateIssue(w, newReq(`{"status":"reopened"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.On("UpdateIssueStatus", mock.Anything, id, domain.IssueInProgress).Return(&domain.IssueReport{ID: id, Status: domain.IssueInProgress}, nil).Once()
	w = httptest.NewRecorder()
	h.UpdateIssue(w, newReq(`{"status":"in_progress"}`))
	assert.Equal(t, http.StatusOK, w.Code)

	svc.On("UpdateIssueStatus", mock.Anything, id, domain.IssueClosed).Return(nil, domain.ErrIssueNotFound).Once()
	w = httptest.NewRecorder()
	h.UpdateIssue(w, newReq(`{"status":"closed"}`))
	assert.Equal(t, http.StatusNotFound, w.Code)

	svc.AssertExpectations(t)
}

func TestFeedbackHandler_ReportIssue(t *testing.T) {
	svc := new(mockFeedbackService)
	h := NewFeedbackHandler(svc, zap.NewNop())
	clientID := uuid.New()

	w := httptest.NewRecorder()
	h.ReportIssue(w, withUser(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"issue_type":"late","title":"Late","description":"x","severity":"urgent"}`)), clientID, auth.RoleClient))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	in := application.ReportIssue{IssueType: "late", Severity: domain.SeverityHigh, Title: "Late", Description: "Two weeks late"}
	svc.On("ReportIssue", mock.Anything, clientID, in).Return(&domain.IssueReport{ID: uuid.New(), Status: domain.IssueOpen}, nil).Once()
	w = httptest.NewRecorder()
	h.ReportIssue(w, withUser(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"issue_type":"late","title":"Late","description":"Two weeks late","severity":"high"}`)), clientID, auth.RoleClient))
	assert.Equal(t, http.StatusCreated, w.Code)

	svc.AssertExpectations(t)
}
