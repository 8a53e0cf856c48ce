package application

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/ltaportal/procurement/internal/modules/notification/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type notificationRepoMock struct {
	createFn          func(context.Context, *domain.Notification) error
	listByRecipientFn func(context.Context, uuid.UUID, int, int) ([]domain.Notification, error)
	markAsReadFn      func(context.Context, uuid.UUID, uuid.UUID) error
	markAllAsReadFn   func(context.Context, uuid.UUID) (int64, error)
	unreadCountFn     func(context.Context, uuid.UUID) (int, error)
	deleteFn          func(context.Context, uuid.UUID, uuid.UUID) error
	deleteAllReadFn   func(context.Context, uuid.UUID) (int64, error)
}

func (m notificationRepoMock) Create(ctx context.Context, n *domain.Notification) error {
	return m.createFn(ctx, n)
}

func (m notificationRepoMock) ListByRecipient(ctx context.Context, id uuid.UUID, limit, offset int) ([]domain.Notification, error) {
	return m.listByRecipientFn(ctx, id, limit, offset)
}

func (m notificationRepoMock) MarkAsRead(ctx context.Context, notificationID, recipientID uuid.UUID) error {
	return m.markAsReadFn(ctx, notificationID, recipientID)
}

func (m notificationRepoMock) MarkAllAsRead(ctx context.Context, id uuid.UUID) (int64, error) {
	return m.markAllAsReadFn(ctx, id)
}

func (m notificationRepoMock) UnreadCount(ctx context.Context, id uuid.UUID) (int, error) {
	return m.unreadCountFn(ctx, id)
}

func (m notificationRepoMock) Delete(ctx context.Context, notificationID, recipientID uuid.UUID) error {
	return m.deleteFn(ctx, notificationID, recipientID)
}

func (m notificationRepoMock) DeleteAllRead(ctx context.Context, id uuid.UUID) (int64, error) {
	return m.deleteAllReadFn(ctx, id)
}

type pushRecorder struct {
	mu   sync.Mutex
	sent map[uuid.UUID][][]byte
}

func (p *pushRecorder) SendToUser(userID uuid.UUID, msg []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sent == nil {
		p.sent = map[uuid.UUID][][]byte{}
	}
	p.sent[userID] = append(p.sent[userID], msg)
}

type adminsStub struct {
	ids []uuid.UUID
	err error
}

func (a adminsStub) ListAdminIDs(context.Context) ([]uuid.UUID, error) { return a.ids, a.err }

func TestNotificationService_Notify(t *testing.T) {
	t.Run("persists then pushes", func(t *testing.T) {
		pusher := &pushRecorder{}
		recipient := uuid.New()
		var captured *domain.Notification
		repo := notificationRepoMock{createFn: func(_ context.Context, n *domain.Notification) error {
			captured = n
			return nil
		}}
		svc := NewNotificationService(repo, pusher, nil, zap.NewNop())

		n, err := svc.Notify(context.Background(), recipient, domain.NotificationInput{
			Type:       domain.TypePriceOfferReady,
			Title:      "Offer ready",
			Message:    "PO-20260101-ABC123 is ready",
			ActionURL:  "/price-offers/1",
			ActionType: domain.ActionReviewRequest,
		})
		require.NoError(t, err)
		assert.Same(t, captured, n)
		assert.False(t, n.IsRead)

		require.Len(t, pusher.sent[recipient], 1)
		var env PushEnvelope
		require.NoError(t, json.Unmarshal(pusher.sent[recipient][0], &env))
		assert.Equal(t, "notification.created", env.Event)
		assert.Equal(t, n.ID, env.Data.ID)
	})

	t.Run("repo error is not pushed", func(t *testing.T) {
		pusher := &pushRecorder{}
		repo := notificationRepoMock{createFn: func(context.Context, *domain.Notification) error {
			return errors.New("insert failed")
		}}
		svc := NewNotificationService(repo, pusher, nil, zap.NewNop())

		_, err := svc.Notify(context.Background(), uuid.New(), domain.NotificationInput{Type: domain.TypeSystem})
		require.ErrorContains(t, err, "insert failed")
		assert.Empty(t, pusher.sent)
	})
}

func TestNotificationService_NotifyAdmins(t *testing.T) {
	a1, a2 := uuid.New(), uuid.New()

	t.Run("fans out to every admin", func(t *testing.T) {
		var recipients []uuid.UUID
		repo := notificationRepoMock{createFn: func(_ context.Context, n *domain.Notification) error {
			recipients = append(recipients, n.RecipientID)
			return nil
		}}
		svc := NewNotificationService(repo, nil, adminsStub{ids: []uuid.UUID{a1, a2}}, zap.NewNop())

		require.NoError(t, svc.NotifyAdmins(context.Background(), domain.NotificationInput{Type: domain.TypePriceRequestReceived}))
		assert.Equal(t, []uuid.UUID{a1, a2}, recipients)
	})

	t.Run("one failure does not stop the rest", func(t *testing.T) {
		calls := 0
		repo := notificationRepoMock{createFn: func(_ context.Context, n *domain.Notification) error {
			calls++
			if n.RecipientID == a1 {
				return errors.New("boom")
			}
			return nil
		}}
		svc := NewNotificationService(repo, nil, adminsStub{ids: []uuid.UUID{a1, a2}}, zap.NewNop())

		err := svc.NotifyAdmins(context.Background(), domain.NotificationInput{Type: domain.TypeIssueReported})
		assert.ErrorContains(t, err, "boom")
		assert.Equal(t, 2, calls)
	})

	t.Run("directory error", func(t *testing.T) {
		svc := NewNotificationService(notificationRepoMock{}, nil, adminsStub{err: errors.New("db down")}, zap.NewNop())
		assert.ErrorContains(t, svc.NotifyAdmins(context.Background(), domain.NotificationInput{}), "db down")
	})

	t.Run("async variants swallow errors", func(t *testing.T) {
		repo := notificationRepoMock{createFn: func(context.Context, *domain.Notification) error { return errors.New("x") }}
		svc := NewNotificationService(repo, nil, adminsStub{ids: []uuid.UUID{a1}}, zap.NewNop())
		svc.NotifyAsync(context.Background(), a1, domain.NotificationInput{})
		svc.NotifyAdminsAsync(context.Background(), domain.NotificationInput{})
	})
}

func TestNotificationService_Delegates(t *testing.T) {
	recipient := uuid.New()
	notificationID := uuid.New()

	repo := notificationRepoMock{
		listByRecipientFn: func(_ context.Context, id uuid.UUID, limit, offset int) ([]domain.Notification, error) {
			assert.Equal(t, recipient, id)
			return []domain.Notification{{ID: notificationID}}, nil
		},
		unreadCountFn:   func(context.Context, uuid.UUID) (int, error) { return 7, nil },
		markAsReadFn:    func(_ context.Context, id, r uuid.UUID) error { return domain.ErrNotificationNotFound },
		markAllAsReadFn: func(context.Context, uuid.UUID) (int64, error) { return 3, nil },
		deleteFn:        func(context.Context, uuid.UUID, uuid.UUID) error { return nil },
		deleteAllReadFn: func(context.Context, uuid.UUID) (int64, error) { return 2, nil },
	}
	svc := NewNotificationService(repo, nil, nil, zap.NewNop())
	ctx := context.Background()

	items, err := svc.List(ctx, recipient, 20, 0)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	count, err := svc.UnreadCount(ctx, recipient)
	require.NoError(t, err)
	assert.Equal(t, 7, count)

	assert.ErrorIs(t, svc.MarkAsRead(ctx, notificationID, recipient), domain.ErrNotificationNotFound)

	n, err := svc.MarkAllAsRead(ctx, recipient)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	require.NoError(t, svc.Delete(ctx, notificationID, recipient))

	n, err = svc.DeleteAllRead(ctx, recipient)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	assert.NoError(t, NewNotificationService(repo, nil, nil, zap.NewNop()).NotifyAdmins(ctx, domain.NotificationInput{}))
}
