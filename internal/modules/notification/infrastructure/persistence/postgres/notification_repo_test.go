package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/ltaportal/procurement/internal/modules/notification/domain"
	"github.com/ltaportal/procurement/internal/modules/notification/infrastructure/persistence/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var notificationCols = []string{"id", "recipient_id", "type", "title", "message", "is_read", "action_url", "action_type", "created_at"}

func TestPgNotificationRepository_CreateAndList(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := postgres.NewPgNotificationRepository(db)
	ctx := context.Background()
	recipientID := uuid.New()

	n := domain.NewNotification(recipientID, domain.NotificationInput{
		Type:       domain.TypeOrderCreated,
		Title:      "Order placed",
		Message:    "Order ORD-1 received",
		ActionURL:  "/orders/1",
		ActionType: domain.ActionViewOrder,
	})

	mock.ExpectExec(`INSERT INTO notifications`).
		WithArgs(n.ID, recipientID, "order_created", "Order placed", "Order ORD-1 received", false, "/orders/1", "view_order", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(ctx, n))

	rows := sqlmock.NewRows(notificationCols).
		AddRow(n.ID, recipientID, "order_created", "Order placed", "Order ORD-1 received", false, "/orders/1", "view_order", time.Now()).
		AddRow(uuid.New(), recipientID, "system", "Hello", "Welcome", true, nil, nil, time.Now())
	mock.ExpectQuery(`SELECT (.+) FROM notifications\s+WHERE recipient_id = \$1`).
		WithArgs(recipientID, 10, 5).
		WillReturnRows(rows)

	items, err := repo.ListByRecipient(ctx, recipientID, 10, 5)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, recipientID, items[0].RecipientID)
	require.NotNil(t, items[0].ActionType)
	assert.Equal(t, domain.ActionViewOrder, *items[0].ActionType)
	assert.Nil(t, items[1].ActionURL)
	assert.True(t, items[1].IsRead)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgNotificationRepository_Create_DefaultsIDAndCreatedAt(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := postgres.NewPgNotificationRepository(db)
	n := &domain.Notification{RecipientID: uuid.New(), Type: domain.TypeSystem, Title: "T", Message: "M"}

	mock.ExpectExec(`INSERT INTO notifications`).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(context.Background(), n))

	assert.NotEqual(t, uuid.Nil, n.ID)
	assert.False(t, n.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgNotificationRepository_ListByRecipient_Error(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := postgres.NewPgNotificationRepository(db)
	recipientID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM notifications`).
		WithArgs(recipientID, 10, 0).
		WillReturnError(errors.New("query fail"))

	items, err := repo.ListByRecipient(context.Background(), recipientID, 10, 0)
	require.Error(t, err)
	assert.Nil(t, items)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgNotificationRepository_MarkAsRead(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := postgres.NewPgNotificationRepository(db)
	ctx := context.Background()
	notificationID := uuid.New()
	recipientID := uuid.New()

	t.Run("only ever sets is_read to true", func(t *testing.T) {
		mock.ExpectExec(`UPDATE notifications\s+SET is_read = TRUE\s+WHERE id = \$1 AND recipient_id = \$2`).
			WithArgs(notificationID, recipientID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, repo.MarkAsRead(ctx, notificationID, recipientID))
	})

	t.Run("exec error", func(t *testing.T) {
		mock.ExpectExec(`UPDATE notifications`).
			WithArgs(notificationID, recipientID).
			WillReturnError(errors.New("exec fail"))
		require.EqualError(t, repo.MarkAsRead(ctx, notificationID, recipientID), "exec fail")
	})

	t.Run("rows affected error", func(t *testing.T) {
		mock.ExpectExec(`UPDATE notifications`).
			WithArgs(notificationID, recipientID).
			WillReturnResult(sqlmock.NewErrorResult(errors.New("rows fail")))
		require.EqualError(t, repo.MarkAsRead(ctx, notificationID, recipientID), "rows fail")
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectExec(`UPDATE notifications`).
			WithArgs(notificationID, recipientID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		require.ErrorIs(t, repo.MarkAsRead(ctx, notificationID, recipientID), domain.ErrNotificationNotFound)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgNotificationRepository_MarkAllAsRead(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := postgres.NewPgNotificationRepository(db)
	recipientID := uuid.New()

	mock.ExpectExec(`UPDATE notifications\s+SET is_read = TRUE\s+WHERE recipient_id = \$1 AND is_read = FALSE`).
		WithArgs(recipientID).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.MarkAllAsRead(context.Background(), recipientID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgNotificationRepository_UnreadCount(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := postgres.NewPgNotificationRepository(db)
	recipientID := uuid.New()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM notifications`).
		WithArgs(recipientID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	count, err := repo.UnreadCount(context.Background(), recipientID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM notifications`).
		WithArgs(recipientID).
		WillReturnError(errors.New("count fail"))
	count, err = repo.UnreadCount(context.Background(), recipientID)
	require.EqualError(t, err, "count fail")
	assert.Equal(t, 0, count)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgNotificationRepository_Delete(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := postgres.NewPgNotificationRepository(db)
	id, recipientID := uuid.New(), uuid.New()

	mock.ExpectExec(`DELETE FROM notifications WHERE id = \$1 AND recipient_id = \$2`).
		WithArgs(id, recipientID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), id, recipientID))

	mock.ExpectExec(`DELETE FROM notifications`).
		WithArgs(id, recipientID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.Delete(context.Background(), id, recipientID), domain.ErrNotificationNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgNotificationRepository_DeleteAllRead(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := postgres.NewPgNotificationRepository(db)
	recipientID := uuid.New()

	mock.ExpectExec(`DELETE FROM notifications WHERE recipient_id = \$1 AND is_read = TRUE`).
		WithArgs(recipientID).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.DeleteAllRead(context.Background(), recipientID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
