package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SortBy orders the top products list.
type SortBy string

const (
	SortByQuantity SortBy = "quantity"
	SortByRevenue  SortBy = "revenue"
)

// ParseSortBy falls back to quantity for unknown values.
func ParseSortBy(s string) SortBy {
	if SortBy(s) == SortByRevenue {
		return SortByRevenue
	}
	return SortByQuantity
}

type Totals struct {
	Orders  int     `json:"orders" db:"orders"`
	Revenue float64 `json:"revenue" db:"revenue"`
}

type StatusCount struct {
	Status string `json:"status" db:"status"`
	Count  int    `json:"count" db:"count"`
}

type DailyStat struct {
	Date    string  `json:"date" db:"date"`
	Orders  int     `json:"orders" db:"orders"`
	Revenue float64 `json:"revenue" db:"revenue"`
}

type TopProductStat struct {
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	SKU       string    `json:"sku" db:"sku"`
	NameEn    string    `json:"name_en" db:"name_en"`
	NameAr    string    `json:"name_ar" db:"name_ar"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Revenue   float64   `json:"revenue" db:"revenue"`
}

// OfferFunnel counts price offers by how far they got.
type OfferFunnel struct {
	Sent           int     `json:"sent" db:"sent"`
	Viewed         int     `json:"viewed" db:"viewed"`
	Accepted       int     `json:"accepted" db:"accepted"`
	Rejected       int     `json:"rejected" db:"rejected"`
	AcceptanceRate float64 `json:"acceptance_rate" db:"-"`
}

// Overview is the admin dashboard for the last Days days. Revenue
// excludes cancelled orders.
type Overview struct {
	Days           int              `json:"days"`
	Since          time.Time        `json:"since"`
	TotalOrders    int              `json:"total_orders"`
	TotalRevenue   float64          `json:"total_revenue"`
	OrdersByStatus map[string]int   `json:"orders_by_status"`
	OrdersByDay    []DailyStat      `json:"orders_by_day"`
	TopProducts    []TopProductStat `json:"top_products"`
	PriceOffers    OfferFunnel      `json:"price_offers"`
}

type AnalyticsRepository interface {
	Totals(ctx context.Context, since time.Time) (Totals, error)
	OrdersByStatus(ctx context.Context, since time.Time) ([]StatusCount, error)
	OrdersByDay(ctx context.Context, since time.Time) ([]DailyStat, error)
	TopProducts(ctx context.Context, since time.Time, limit int, sortBy SortBy) ([]TopProductStat, error)
	OfferFunnel(ctx context.Context, since time.Time) (OfferFunnel, error)
}
