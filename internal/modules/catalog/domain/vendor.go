package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Vendor struct {
	ID           uuid.UUID `json:"id" db:"id"`
	VendorNumber string    `json:"vendor_number" db:"vendor_number"`
	NameEn       string    `json:"name_en" db:"name_en"`
	NameAr       string    `json:"name_ar" db:"name_ar"`
	ContactEmail *string   `json:"contact_email,omitempty" db:"contact_email"`
	Phone        *string   `json:"phone,omitempty" db:"phone"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type VendorRepository interface {
	Create(ctx context.Context, v *Vendor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Vendor, error)
	List(ctx context.Context, limit, offset int) ([]Vendor, error)
	Update(ctx context.Context, v *Vendor) error
	Delete(ctx context.Context, id uuid.UUID) error
}
