package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ltaportal/procurement/internal/modules/catalog/domain"
	fileDomain "github.com/ltaportal/procurement/internal/modules/filestorage/domain"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockProducts struct {
	items   map[uuid.UUID]domain.Product
	gets    int
	updates int
	failUpd error
}

func newMockProducts(ps ...domain.Product) *mockProducts {
	m := &mockProducts{items: map[uuid.UUID]domain.Product{}}
	for _, p := range ps {
		m.items[p.ID] = p
	}
	return m
}

func (m *mockProducts) Create(_ context.Context, p *domain.Product) error {
	p.ID = uuid.New()
	m.items[p.ID] = *p
	return nil
}
func (m *mockProducts) GetByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	m.gets++
	p, ok := m.items[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}
func (m *mockProducts) List(context.Context, domain.ProductFilter) ([]domain.Product, int, error) {
	return nil, 0, nil
}
func (m *mockProducts) Update(_ context.Context, p *domain.Product) error {
	if m.failUpd != nil {
		return m.failUpd
	}
	m.updates++
	m.items[p.ID] = *p
	return nil
}
func (m *mockProducts) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}
func (m *mockProducts) ListCategories(context.Context) ([]string, error) { return []string{"a"}, nil }

type mockVendors struct {
	items map[uuid.UUID]domain.Vendor
}

func (m mockVendors) Create(_ context.Context, v *domain.Vendor) error {
	m.items[v.ID] = *v
	return nil
}
func (m mockVendors) GetByID(_ context.Context, id uuid.UUID) (*domain.Vendor, error) {
	v, ok := m.items[id]
	if !ok {
		return nil, domain.ErrVendorNotFound
	}
	return &v, nil
}
func (m mockVendors) List(context.Context, int, int) ([]domain.Vendor, error) { return nil, nil }
func (m mockVendors) Update(_ context.Context, v *domain.Vendor) error {
	m.items[v.ID] = *v
	return nil
}
func (m mockVendors) Delete(context.Context, uuid.UUID) error { return nil }

type mockImages struct {
	uploadErr error
	deleted   []string
	n         int
}

func (m *mockImages) UploadImage(_ context.Context, folder string, _ []byte) (fileDomain.Object, fileDomain.Object, error) {
	if m.uploadErr != nil {
		return fileDomain.Object{}, fileDomain.Object{}, m.uploadErr
	}
	m.n++
	base := "http://files/" + folder + "/" + string(rune('a'+m.n))
	return fileDomain.Object{URL: base + ".png"}, fileDomain.Object{URL: base + "_thumb.jpg"}, nil
}
func (m *mockImages) DeleteByURL(_ context.Context, url string) { m.deleted = append(m.deleted, url) }

func newService(products *mockProducts, images *mockImages) (*CatalogService, *cache.Memory, mockVendors) {
	vendors := mockVendors{items: map[uuid.UUID]domain.Vendor{}}
	c := cache.NewMemory()
	return NewCatalogService(products, vendors, images, c, time.Minute, zap.NewNop()), c, vendors
}

func ptr[T any](v T) *T { return &v }

func TestCatalogService_CreateProductValidation(t *testing.T) {
	svc, _, vendors := newService(newMockProducts(), &mockImages{})
	ctx := context.Background()

	err := svc.CreateProduct(ctx, &domain.Product{SKU: "A", UnitPrice: ptr(-1.0)})
	assert.ErrorIs(t, err, domain.ErrNegativePrice)

	err = svc.CreateProduct(ctx, &domain.Product{SKU: "A", VendorID: ptr(uuid.New())})
	assert.ErrorIs(t, err, domain.ErrUnknownVendor)

	vendorID := uuid.New()
	vendors.items[vendorID] = domain.Vendor{ID: vendorID}
	p := &domain.Product{SKU: "  A-1 ", VendorID: &vendorID}
	require.NoError(t, svc.CreateProduct(ctx, p))
	assert.Equal(t, "A-1", p.SKU)
	assert.Equal(t, "piece", p.Unit)
}

func TestCatalogService_GetProductReadThrough(t *testing.T) {
	id := uuid.New()
	products := newMockProducts(domain.Product{ID: id, SKU: "A", NameEn: "Pens"})
	svc, _, _ := newService(products, &mockImages{})
	ctx := context.Background()

	p, hit, err := svc.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "Pens", p.NameEn)

	p, hit, err = svc.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "Pens", p.NameEn)
	assert.Equal(t, 1, products.gets)

	_, err = svc.UpdateProduct(ctx, id, ProductPatch{NameEn: ptr("Blue pens")})
	require.NoError(t, err)

	p, hit, err = svc.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.False(t, hit, "update evicts the cached copy")
	assert.Equal(t, "Blue pens", p.NameEn)

	_, _, err = svc.GetProduct(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCatalogService_UpdateProductPatch(t *testing.T) {
	id := uuid.New()
	products := newMockProducts(domain.Product{ID: id, SKU: "A", NameEn: "Pens", NameAr: "أقلام", Unit: "box", IsActive: true})
	svc, _, _ := newService(products, &mockImages{})
	ctx := context.Background()

	p, err := svc.UpdateProduct(ctx, id, ProductPatch{UnitPrice: ptr(3.5), IsActive: ptr(false), Category: ptr("office")})
	require.NoError(t, err)
	assert.Equal(t, "Pens", p.NameEn)
	assert.Equal(t, 3.5, *p.UnitPrice)
	assert.False(t, p.IsActive)
	assert.Equal(t, "office", *p.Category)

	_, err = svc.UpdateProduct(ctx, id, ProductPatch{UnitPrice: ptr(-2.0)})
	assert.ErrorIs(t, err, domain.ErrNegativePrice)

	_, err = svc.UpdateProduct(ctx, id, ProductPatch{VendorID: ptr(uuid.New())})
	assert.ErrorIs(t, err, domain.ErrUnknownVendor)
}

func TestCatalogService_SetProductImage(t *testing.T) {
	id := uuid.New()
	oldImg, oldThumb := "http://files/products/old.png", "http://files/products/old_thumb.jpg"
	products := newMockProducts(domain.Product{ID: id, ImageURL: &oldImg, ThumbnailURL: &oldThumb})
	images := &mockImages{}
	svc, _, _ := newService(products, images)

	p, err := svc.SetProductImage(context.Background(), id, []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "http://files/products/b.png", *p.ImageURL)
	assert.Equal(t, "http://files/products/b_thumb.jpg", *p.ThumbnailURL)
	assert.Equal(t, []string{oldImg, oldThumb}, images.deleted)
}

func TestCatalogService_SetProductImageFailures(t *testing.T) {
	id := uuid.New()
	products := newMockProducts(domain.Product{ID: id})
	images := &mockImages{uploadErr: fileDomain.ErrInvalidImage}
	svc, _, _ := newService(products, images)
	ctx := context.Background()

	_, err := svc.SetProductImage(ctx, id, []byte("x"))
	assert.ErrorIs(t, err, fileDomain.ErrInvalidImage)

	images.uploadErr = nil
	products.failUpd = errors.New("db down")
	_, err = svc.SetProductImage(ctx, id, []byte("x"))
	require.Error(t, err)
	assert.Len(t, images.deleted, 2, "uploaded objects are removed when the row update fails")
}

func TestCatalogService_DeleteProductRemovesImages(t *testing.T) {
	id := uuid.New()
	img := "http://files/products/x.png"
	products := newMockProducts(domain.Product{ID: id, ImageURL: &img})
	images := &mockImages{}
	svc, _, _ := newService(products, images)

	require.NoError(t, svc.DeleteProduct(context.Background(), id))
	assert.Equal(t, []string{img}, images.deleted)
	assert.ErrorIs(t, svc.DeleteProduct(context.Background(), id), domain.ErrProductNotFound)
}

func TestCatalogService_Vendors(t *testing.T) {
	svc, _, vendors := newService(newMockProducts(), &mockImages{})
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, svc.CreateVendor(ctx, &domain.Vendor{ID: id, VendorNumber: " V-1 ", NameEn: "Gulf"}))
	assert.Equal(t, "V-1", vendors.items[id].VendorNumber)

	v, err := svc.UpdateVendor(ctx, id, VendorPatch{NameAr: ptr("الخليج"), Phone: ptr("+966")})
	require.NoError(t, err)
	assert.Equal(t, "Gulf", v.NameEn)
	assert.Equal(t, "الخليج", v.NameAr)

	_, err = svc.UpdateVendor(ctx, uuid.New(), VendorPatch{})
	assert.ErrorIs(t, err, domain.ErrVendorNotFound)
}
