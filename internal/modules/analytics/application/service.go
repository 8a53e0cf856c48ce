package application

import (
	"context"
	"time"

	"github.com/ltaportal/procurement/internal/modules/analytics/domain"
)

const (
	DefaultDays     = 30
	MaxDays         = 365
	DefaultTopLimit = 5
	MaxTopLimit     = 50
)

type AnalyticsService interface {
	Overview(ctx context.Context, days int, sortBy domain.SortBy) (*domain.Overview, error)
	TopProducts(ctx context.Context, days, limit int, sortBy domain.SortBy) ([]domain.TopProductStat, error)
}

type analyticsService struct {
	repo domain.AnalyticsRepository
	now  func() time.Time
}

func NewAnalyticsService(repo domain.AnalyticsRepository) AnalyticsService {
	return &analyticsService{repo: repo, now: time.Now}
}

func clamp(v, def, maxV int) int {
	if v <= 0 {
		return def
	}
	return min(v, maxV)
}

// since is the start of the UTC day days-1 days ago, so the window
// includes today.
func (s *analyticsService) since(days int) time.Time {
	today := s.now().UTC().Truncate(24 * time.Hour)
	return today.AddDate(0, 0, -(days - 1))
}

func (s *analyticsService) Overview(ctx context.Context, days int, sortBy domain.SortBy) (*domain.Overview, error) {
	days = clamp(days, DefaultDays, MaxDays)
	since := s.since(days)

	totals, err := s.repo.Totals(ctx, since)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.repo.OrdersByStatus(ctx, since)
	if err != nil {
		return nil, err
	}
	byDay, err := s.repo.OrdersByDay(ctx, since)
	if err != nil {
		return nil, err
	}
	top, err := s.repo.TopProducts(ctx, since, DefaultTopLimit, sortBy)
	if err != nil {
		return nil, err
	}
	funnel, err := s.repo.OfferFunnel(ctx, since)
	if err != nil {
		return nil, err
	}
	if decided := funnel.Accepted + funnel.Rejected; decided > 0 {
		funnel.AcceptanceRate = float64(funnel.Accepted) / float64(decided)
	}

	statuses := make(map[string]int, len(byStatus))
	for _, sc := range byStatus {
		statuses[sc.Status] = sc.Count
	}

	return &domain.Overview{
		Days:           days,
		Since:          since,
		TotalOrders:    totals.Orders,
		TotalRevenue:   totals.Revenue,
		OrdersByStatus: statuses,
		OrdersByDay:    fillDays(since, days, byDay),
		TopProducts:    top,
		PriceOffers:    funnel,
	}, nil
}

func (s *analyticsService) TopProducts(ctx context.Context, days, limit int, sortBy domain.SortBy) ([]domain.TopProductStat, error) {
	days = clamp(days, DefaultDays, MaxDays)
	return s.repo.TopProducts(ctx, s.since(days), clamp(limit, DefaultTopLimit, MaxTopLimit), sortBy)
}

// fillDays returns one stat per day of the window, zero where the
// database had no orders.
func fillDays(since time.Time, days int, stats []domain.DailyStat) []domain.DailyStat {
	byDate := make(map[string]domain.DailyStat, len(stats))
	for _, st := range stats {
		byDate[st.Date] = st
	}
	out := make([]domain.DailyStat, days)
	for i := range out {
		date := since.AddDate(0, 0, i).Format(time.DateOnly)
		st, ok := byDate[date]
		if !ok {
			st = domain.DailyStat{Date: date}
		}
		out[i] = st
	}
	return out
}
