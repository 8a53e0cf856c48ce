package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ltaportal/procurement/internal/modules/notification/domain"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/metrics"
	"go.uber.org/zap"
)

// Pusher delivers a raw message to every live connection of a user.
type Pusher interface {
	SendToUser(userID uuid.UUID, message []byte)
}

// AdminDirectory lists the users that receive admin-facing notifications.
type AdminDirectory interface {
	ListAdminIDs(ctx context.Context) ([]uuid.UUID, error)
}

// PushEnvelope is the websocket frame sent when a notification is created.
type PushEnvelope struct {
	Event string               `json:"event"`
	Data  *domain.Notification `json:"data"`
}

const pushEventCreated = "notification.created"

type NotificationService struct {
	repo   domain.NotificationRepository
	pusher Pusher
	admins AdminDirectory
	logger *zap.Logger
}

func NewNotificationService(repo domain.NotificationRepository, pusher Pusher, admins AdminDirectory, logger *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, pusher: pusher, admins: admins, logger: logger}
}

// Notify persists a notification for recipient and pushes it to their open sockets.
func (s *NotificationService) Notify(ctx context.Context, recipientID uuid.UUID, in domain.NotificationInput) (*domain.Notification, error) {
	n := domain.NewNotification(recipientID, in)
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	metrics.NotificationsCreated.WithLabelValues(string(n.Type)).Inc()

	if s.pusher != nil {
		msg, err := json.Marshal(PushEnvelope{Event: pushEventCreated, Data: n})
		if err == nil {
			s.pusher.SendToUser(recipientID, msg)
		}
	}
	return n, nil
}

// NotifyAdmins fans the notification out to every admin. A failure for one
// admin does not stop the others.
func (s *NotificationService) NotifyAdmins(ctx context.Context, in domain.NotificationInput) error {
	if s.admins == nil {
		return nil
	}
	ids, err := s.admins.ListAdminIDs(ctx)
	if err != nil {
		return fmt.Errorf("list admins: %w", err)
	}

	var errs []error
	for _, id := range ids {
		if _, err := s.Notify(ctx, id, in); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NotifyAsync is Notify for callers that must not fail because of a
// notification. Errors are logged.
func (s *NotificationService) NotifyAsync(ctx context.Context, recipientID uuid.UUID, in domain.NotificationInput) {
	if _, err := s.Notify(ctx, recipientID, in); err != nil {
		s.logger.Warn("notification not delivered",
			zap.String("recipient_id", recipientID.String()),
			zap.String("type", string(in.Type)),
			zap.Error(err))
	}
}

// NotifyAdminsAsync is the admin fan-out counterpart of NotifyAsync.
func (s *NotificationService) NotifyAdminsAsync(ctx context.Context, in domain.NotificationInput) {
	if err := s.NotifyAdmins(ctx, in); err != nil {
		s.logger.Warn("admin notification not delivered", zap.String("type", string(in.Type)), zap.Error(err))
	}
}

func (s *NotificationService) List(ctx context.Context, recipientID uuid.UUID, limit, offset int) ([]domain.Notification, error) {
	return s.repo.ListByRecipient(ctx, recipientID, limit, offset)
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int, error) {
	return s.repo.UnreadCount(ctx, recipientID)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID, recipientID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, notificationID, recipientID)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, recipientID)
}

func (s *NotificationService) Delete(ctx context.Context, notificationID, recipientID uuid.UUID) error {
	return s.repo.Delete(ctx, notificationID, recipientID)
}

func (s *NotificationService) DeleteAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return s.repo.DeleteAllRead(ctx, recipientID)
}
