package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ltaportal/procurement/internal/modules/feedback/domain"
	notificationDomain "github.com/ltaportal/procurement/internal/modules/notification/domain"
	orderDomain "github.com/ltaportal/procurement/internal/modules/order/domain"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/events"
	"go.uber.org/zap"
)

const eventTopic = "feedback"

// Orders resolves an order the client owns.
type Orders interface {
	GetForClient(ctx context.Context, clientID, id uuid.UUID) (*orderDomain.OrderDetail, error)
}

type Notifier interface {
	NotifyAsync(ctx context.Context, recipientID uuid.UUID, in notificationDomain.NotificationInput)
	NotifyAdminsAsync(ctx context.Context, in notificationDomain.NotificationInput)
}

type SubmitFeedback struct {
	OrderID               uuid.UUID
	Rating                int
	OrderingProcessRating *int
	ProductQualityRating  *int
	DeliverySpeedRating   *int
	CommunicationRating   *int
	WouldRecommend        bool
	Comments              string
}

type ReportIssue struct {
	OrderID     *uuid.UUID
	IssueType   string
	Severity    domain.Severity
	Title       string
	Description string
}

type FeedbackService struct {
	feedback domain.FeedbackRepository
	issues   domain.IssueRepository
	orders   Orders
	notifier Notifier
	events   events.Publisher
	logger   *zap.Logger
	now      func() time.Time
}

func NewFeedbackService(
	feedback domain.FeedbackRepository,
	issues domain.IssueRepository,
	orders Orders,
	notifier Notifier,
	publisher events.Publisher,
	logger *zap.Logger,
) *FeedbackService {
	return &FeedbackService{
		feedback: feedback,
		issues:   issues,
		orders:   orders,
		notifier: notifier,
		events:   publisher,
		logger:   logger,
		now:      time.Now,
	}
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

func (s *FeedbackService) ownOrder(ctx context.Context, clientID, orderID uuid.UUID) error {
	_, err := s.orders.GetForClient(ctx, clientID, orderID)
	if errors.Is(err, orderDomain.ErrOrderNotFound) {
		return domain.ErrOrderNotFound
	}
	return err
}

// Submit records the client's rating of an order they own. Each order takes
// one feedback; the unique index on order_feedback.order_id enforces it.
func (s *FeedbackService) Submit(ctx context.Context, clientID uuid.UUID, in SubmitFeedback) (*domain.Feedback, error) {
	f := &domain.Feedback{
		OrderID:               in.OrderID,
		ClientID:              clientID,
		Rating:                in.Rating,
		OrderingProcessRating: in.OrderingProcessRating,
		ProductQualityRating:  in.ProductQualityRating,
		DeliverySpeedRating:   in.DeliverySpeedRating,
		CommunicationRating:   in.CommunicationRating,
		WouldRecommend:        in.WouldRecommend,
		Comments:              optional(in.Comments),
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := s.ownOrder(ctx, clientID, in.OrderID); err != nil {
		return nil, err
	}
	if err := s.feedback.Create(ctx, f); err != nil {
		return nil, err
	}

	s.notifier.NotifyAdminsAsync(ctx, notificationDomain.NotificationInput{
		Type:       notificationDomain.TypeFeedbackReceived,
		Title:      "New order feedback",
		Message:    fmt.Sprintf("A client rated order %s with %d/5.", shortID(f.OrderID), f.Rating),
		ActionURL:  "/admin/orders/" + f.OrderID.String(),
		ActionType: notificationDomain.ActionViewOrder,
	})
	events.PublishAsync(s.events, s.logger, eventTopic, events.NewEvent("feedback.submitted", f.ID, map[string]any{
		"order_id":        f.OrderID,
		"client_id":       f.ClientID,
		"rating":          f.Rating,
		"would_recommend": f.WouldRecommend,
	}))
	return f, nil
}

// ForOrder returns the feedback a client left on one of their orders.
func (s *FeedbackService) ForOrder(ctx context.Context, clientID, orderID uuid.UUID) (*domain.Feedback, error) {
	f, err := s.feedback.GetByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if f.ClientID != clientID {
		return nil, domain.ErrFeedbackNotFound
	}
	return f, nil
}

func (s *FeedbackService) List(ctx context.Context, filter domain.FeedbackFilter) ([]domain.Feedback, error) {
	return s.feedback.List(ctx, filter)
}

func (s *FeedbackService) Respond(ctx context.Context, adminID, id uuid.UUID, response string) (*domain.Feedback, error) {
	f, err := s.feedback.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if err := s.feedback.Respond(ctx, id, adminID, response, now); err != nil {
		return nil, err
	}
	f.AdminResponse, f.RespondedBy, f.AdminResponseAt = &response, &adminID, &now

	s.notifier.NotifyAsync(ctx, f.ClientID, notificationDomain.NotificationInput{
		Type:       notificationDomain.TypeSystem,
		Title:      "Response to your feedback",
		Message:    "We replied to your feedback on order " + shortID(f.OrderID) + ".",
		ActionURL:  "/orders/" + f.OrderID.String(),
		ActionType: notificationDomain.ActionViewOrder,
	})
	return f, nil
}

func (s *FeedbackService) Stats(ctx context.Context) (*domain.Stats, error) {
	return s.feedback.Stats(ctx)
}

func (s *FeedbackService) ReportIssue(ctx context.Context, clientID uuid.UUID, in ReportIssue) (*domain.IssueReport, error) {
	if in.OrderID != nil {
		if err := s.ownOrder(ctx, clientID, *in.OrderID); err != nil {
			return nil, err
		}
	}
	severity := in.Severity
	if severity == "" {
		severity = domain.SeverityMedium
	}
	issue := &domain.IssueReport{
		ClientID:    clientID,
		OrderID:     in.OrderID,
		IssueType:   in.IssueType,
		Severity:    severity,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Status:      domain.IssueOpen,
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, err
	}

	note := notificationDomain.NotificationInput{
		Type:    notificationDomain.TypeIssueReported,
		Title:   fmt.Sprintf("Issue reported (%s)", issue.Severity),
		Message: issue.Title,
	}
	if issue.OrderID != nil {
		note.ActionURL = "/admin/orders/" + issue.OrderID.String()
		note.ActionType = notificationDomain.ActionViewOrder
	}
	s.notifier.NotifyAdminsAsync(ctx, note)
	s.logger.Info("Issue reported",
		zap.String("issue_id", issue.ID.String()),
		zap.String("severity", string(issue.Severity)))
	return issue, nil
}

func (s *FeedbackService) ListIssues(ctx context.Context, filter domain.IssueFilter) ([]domain.IssueReport, error) {
	return s.issues.List(ctx, filter)
}

func (s *FeedbackService) UpdateIssueStatus(ctx context.Context, id uuid.UUID, status domain.IssueStatus) (*domain.IssueReport, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	if err := s.issues.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	issue, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if status == domain.IssueResolved {
		s.notifier.NotifyAsync(ctx, issue.ClientID, notificationDomain.NotificationInput{
			Type:    notificationDomain.TypeSystem,
			Title:   "Issue resolved",
			Message: fmt.Sprintf("Your report %q was marked resolved.", issue.Title),
		})
	}
	return issue, nil
}

func shortID(id uuid.UUID) string {
	return strings.ToUpper(id.String()[:8])
}
