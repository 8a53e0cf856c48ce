package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/ltaportal/procurement/internal/modules/analytics/domain"
	"github.com/ltaportal/procurement/internal/modules/analytics/infrastructure/persistence/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var since = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func TestAnalyticsRepository_Totals(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := postgres.NewPgAnalyticsRepository(db)

	mock.ExpectQuery(`SELECT\s+COUNT\(\*\) AS orders.*FROM orders\s+WHERE created_at >= \$1`).
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"orders", "revenue"}).AddRow(12, 4500.5))

	totals, err := repo.Totals(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, domain.Totals{Orders: 12, Revenue: 4500.5}, totals)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepository_OrdersByStatusAndDay(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := postgres.NewPgAnalyticsRepository(db)

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) AS count\s+FROM orders.*GROUP BY status`).
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("delivered", 3).
			AddRow("pending", 5))
	mock.ExpectQuery(`to_char\(date_trunc\('day'.*GROUP BY 1\s+ORDER BY 1`).
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"date", "orders", "revenue"}).
			AddRow("2025-03-01", 2, 300.0).
			AddRow("2025-03-03", 1, 0.0))

	byStatus, err := repo.OrdersByStatus(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, []domain.StatusCount{{Status: "delivered", Count: 3}, {Status: "pending", Count: 5}}, byStatus)

	byDay, err := repo.OrdersByDay(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, byDay, 2)
	assert.Equal(t, "2025-03-03", byDay[1].Date)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepository_TopProducts(t *testing.T) {
	productID := uuid.New()
	tests := []struct {
		name    string
		sortBy  domain.SortBy
		orderBy string
	}{
		{"by quantity", domain.SortByQuantity, `ORDER BY quantity DESC, revenue DESC`},
		{"by revenue", domain.SortByRevenue, `ORDER BY revenue DESC, quantity DESC`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, cleanup := newMockDB(t)
			defer cleanup()
			repo := postgres.NewPgAnalyticsRepository(db)

			mock.ExpectQuery(`jsonb_array_elements\(o\.items\).*status <> 'cancelled'.*`+tt.orderBy+`\s+LIMIT \$2`).
				WithArgs(since, 5).
				WillReturnRows(sqlmock.NewRows([]string{"product_id", "sku", "name_en", "name_ar", "quantity", "revenue"}).
					AddRow(productID.String(), "PEN-01", "Pen", "قلم", 40, 80.0))

			top, err := repo.TopProducts(context.Background(), since, 5, tt.sortBy)
			require.NoError(t, err)
			require.Len(t, top, 1)
			assert.Equal(t, productID, top[0].ProductID)
			assert.Equal(t, 40, top[0].Quantity)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAnalyticsRepository_OfferFunnel(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := postgres.NewPgAnalyticsRepository(db)

	mock.ExpectQuery(`FROM price_offers\s+WHERE created_at >= \$1`).
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"sent", "viewed", "accepted", "rejected"}).AddRow(10, 7, 3, 1))

	f, err := repo.OfferFunnel(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferFunnel{Sent: 10, Viewed: 7, Accepted: 3, Rejected: 1}, f)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepository_Error(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := postgres.NewPgAnalyticsRepository(db)

	mock.ExpectQuery(`FROM orders`).WillReturnError(errors.New("db down"))

	_, err := repo.Totals(context.Background(), since)
	assert.EqualError(t, err, "db down")
}
