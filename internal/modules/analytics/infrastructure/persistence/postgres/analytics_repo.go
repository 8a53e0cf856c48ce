package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/ltaportal/procurement/internal/modules/analytics/domain"
)

type PgAnalyticsRepository struct {
	db *sqlx.DB
}

func NewPgAnalyticsRepository(db *sqlx.DB) *PgAnalyticsRepository {
	return &PgAnalyticsRepository{db: db}
}

func (r *PgAnalyticsRepository) Totals(ctx context.Context, since time.Time) (domain.Totals, error) {
	var t domain.Totals
	err := r.db.GetContext(ctx, &t, `
		SELECT
			COUNT(*) AS orders,
			COALESCE(SUM(total_amount) FILTER (WHERE status <> 'cancelled'), 0) AS revenue
		FROM orders
		WHERE created_at >= $1
	`, since)
	return t, err
}

func (r *PgAnalyticsRepository) OrdersByStatus(ctx context.Context, since time.Time) ([]domain.StatusCount, error) {
	out := []domain.StatusCount{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT status, COUNT(*) AS count
		FROM orders
		WHERE created_at >= $1
		GROUP BY status
		ORDER BY status
	`, since)
	return out, err
}

func (r *PgAnalyticsRepository) OrdersByDay(ctx context.Context, since time.Time) ([]domain.DailyStat, error) {
	out := []domain.DailyStat{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT
			to_char(date_trunc('day', created_at AT TIME ZONE 'UTC'), 'YYYY-MM-DD') AS date,
			COUNT(*) AS orders,
			COALESCE(SUM(total_amount) FILTER (WHERE status <> 'cancelled'), 0) AS revenue
		FROM orders
		WHERE created_at >= $1
		GROUP BY 1
		ORDER BY 1
	`, since)
	return out, err
}

// TopProducts aggregates the line items stored on each order.
func (r *PgAnalyticsRepository) TopProducts(ctx context.Context, since time.Time, limit int, sortBy domain.SortBy) ([]domain.TopProductStat, error) {
	orderBy := "quantity DESC, revenue DESC"
	if sortBy == domain.SortByRevenue {
		orderBy = "revenue DESC, quantity DESC"
	}
	out := []domain.TopProductStat{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT
			(item->>'product_id')::uuid AS product_id,
			MAX(item->>'sku') AS sku,
			MAX(item->>'name_en') AS name_en,
			MAX(item->>'name_ar') AS name_ar,
			SUM((item->>'quantity')::int) AS quantity,
			COALESCE(SUM((item->>'line_total')::numeric), 0) AS revenue
		FROM orders o
		CROSS JOIN LATERAL jsonb_array_elements(o.items) AS item
		WHERE o.created_at >= $1 AND o.status <> 'cancelled'
		GROUP BY 1
		ORDER BY `+orderBy+`
		LIMIT $2
	`, since, limit)
	return out, err
}

// OfferFunnel counts offers that reached each stage. A viewed offer was
// also sent, and a decided one was also viewed or sent.
func (r *PgAnalyticsRepository) OfferFunnel(ctx context.Context, since time.Time) (domain.OfferFunnel, error) {
	var f domain.OfferFunnel
	err := r.db.GetContext(ctx, &f, `
		SELECT
			COUNT(*) FILTER (WHERE status IN ('sent', 'viewed', 'accepted', 'rejected')) AS sent,
			COUNT(*) FILTER (WHERE status IN ('viewed', 'accepted', 'rejected')) AS viewed,
			COUNT(*) FILTER (WHERE status = 'accepted') AS accepted,
			COUNT(*) FILTER (WHERE status = 'rejected') AS rejected
		FROM price_offers
		WHERE created_at >= $1
	`, since)
	return f, err
}
