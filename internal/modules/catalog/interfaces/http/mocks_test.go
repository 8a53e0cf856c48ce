package http_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/ltaportal/procurement/internal/modules/catalog/application"
	"github.com/ltaportal/procurement/internal/modules/catalog/domain"
	"github.com/stretchr/testify/mock"
)

type mockCatalogService struct{ mock.Mock }

func (m *mockCatalogService) CreateProduct(ctx context.Context, p *domain.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockCatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*domain.Product), args.Bool(1), args.Error(2)
}

func (m *mockCatalogService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *mockCatalogService) ListCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockCatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, patch application.ProductPatch) (*domain.Product, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockCatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCatalogService) SetProductImage(ctx context.Context, id uuid.UUID, data []byte) (*domain.Product, error) {
	args := m.Called(ctx, id, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockCatalogService) CreateVendor(ctx context.Context, v *domain.Vendor) error {
	return m.Called(ctx, v).Error(0)
}

func (m *mockCatalogService) GetVendor(ctx context.Context, id uuid.UUID) (*domain.Vendor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vendor), args.Error(1)
}

func (m *mockCatalogService) ListVendors(ctx context.Context, limit, offset int) ([]domain.Vendor, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]domain.Vendor), args.Error(1)
}

func (m *mockCatalogService) UpdateVendor(ctx context.Context, id uuid.UUID, patch application.VendorPatch) (*domain.Vendor, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vendor), args.Error(1)
}

func (m *mockCatalogService) DeleteVendor(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}
