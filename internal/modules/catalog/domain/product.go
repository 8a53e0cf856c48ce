package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Product is a catalog item. UnitPrice is the list price; clients under an
// LTA pay the contract price instead.
type Product struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	SKU           string     `json:"sku" db:"sku"`
	NameEn        string     `json:"name_en" db:"name_en"`
	NameAr        string     `json:"name_ar" db:"name_ar"`
	DescriptionEn *string    `json:"description_en,omitempty" db:"description_en"`
	DescriptionAr *string    `json:"description_ar,omitempty" db:"description_ar"`
	Category      *string    `json:"category,omitempty" db:"category"`
	Unit          string     `json:"unit" db:"unit"`
	UnitPrice     *float64   `json:"unit_price,omitempty" db:"unit_price"`
	VendorID      *uuid.UUID `json:"vendor_id,omitempty" db:"vendor_id"`
	ImageURL      *string    `json:"image_url,omitempty" db:"image_url"`
	ThumbnailURL  *string    `json:"thumbnail_url,omitempty" db:"thumbnail_url"`
	IsActive      bool       `json:"is_active" db:"is_active"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// ProductFilter narrows List. Zero values mean no filter.
type ProductFilter struct {
	Search     string
	Category   string
	VendorID   *uuid.UUID
	ActiveOnly bool
	Limit      int
	Offset     int
}

type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context, filter ProductFilter) ([]Product, int, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context) ([]string, error)
}

// ProductFinder is the read access other modules get to the catalog.
type ProductFinder interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
}
