package http

import (
	"github.com/google/uuid"
	"github.com/ltaportal/procurement/internal/modules/catalog/application"
	"github.com/ltaportal/procurement/internal/modules/catalog/domain"
)

type CreateProductRequest struct {
	SKU           string     `json:"sku" validate:"required,max=100"`
	NameEn        string     `json:"name_en" validate:"required,max=255"`
	NameAr        string     `json:"name_ar" validate:"required,max=255"`
	DescriptionEn *string    `json:"description_en"`
	DescriptionAr *string    `json:"description_ar"`
	Category      *string    `json:"category" validate:"omitempty,max=100"`
	Unit          string     `json:"unit" validate:"omitempty,max=50"`
	UnitPrice     *float64   `json:"unit_price" validate:"omitempty,gte=0"`
	VendorID      *uuid.UUID `json:"vendor_id"`
	IsActive      *bool      `json:"is_active"`
}

func (r CreateProductRequest) ToDomain() *domain.Product {
	p := &domain.Product{
		SKU:           r.SKU,
		NameEn:        r.NameEn,
		NameAr:        r.NameAr,
		DescriptionEn: r.DescriptionEn,
		DescriptionAr: r.DescriptionAr,
		Category:      r.Category,
		Unit:          r.Unit,
		UnitPrice:     r.UnitPrice,
		VendorID:      r.VendorID,
		IsActive:      true,
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	return p
}

type UpdateProductRequest struct {
	SKU           *string    `json:"sku" validate:"omitempty,min=1,max=100"`
	NameEn        *string    `json:"name_en" validate:"omitempty,min=1,max=255"`
	NameAr        *string    `json:"name_ar" validate:"omitempty,min=1,max=255"`
	DescriptionEn *string    `json:"description_en"`
	DescriptionAr *string    `json:"description_ar"`
	Category      *string    `json:"category" validate:"omitempty,max=100"`
	Unit          *string    `json:"unit" validate:"omitempty,min=1,max=50"`
	UnitPrice     *float64   `json:"unit_price" validate:"omitempty,gte=0"`
	VendorID      *uuid.UUID `json:"vendor_id"`
	IsActive      *bool      `json:"is_active"`
}

func (r UpdateProductRequest) ToPatch() application.ProductPatch {
	return application.ProductPatch{
		SKU:           r.SKU,
		NameEn:        r.NameEn,
		NameAr:        r.NameAr,
		DescriptionEn: r.DescriptionEn,
		DescriptionAr: r.DescriptionAr,
		Category:      r.Category,
		Unit:          r.Unit,
		UnitPrice:     r.UnitPrice,
		VendorID:      r.VendorID,
		IsActive:      r.IsActive,
	}
}

type CreateVendorRequest struct {
	VendorNumber string  `json:"vendor_number" validate:"required,max=50"`
	NameEn       string  `json:"name_en" validate:"required,max=255"`
	NameAr       string  `json:"name_ar" validate:"required,max=255"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email"`
	Phone        *string `json:"phone" validate:"omitempty,max=50"`
}

type UpdateVendorRequest struct {
	VendorNumber *string `json:"vendor_number" validate:"omitempty,min=1,max=50"`
	NameEn       *string `json:"name_en" validate:"omitempty,min=1,max=255"`
	NameAr       *string `json:"name_ar" validate:"omitempty,min=1,max=255"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email"`
	Phone        *string `json:"phone" validate:"omitempty,max=50"`
}

// ListResponse is the paged list envelope.
type ListResponse[T any] struct {
	Data     []T          `json:"data"`
	Metadata ListMetadata `json:"metadata"`
}

type ListMetadata struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
