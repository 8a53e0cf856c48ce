package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ltaportal/procurement/internal/modules/catalog/domain"
	fileDomain "github.com/ltaportal/procurement/internal/modules/filestorage/domain"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/cache"
	"go.uber.org/zap"
)

// ImageStore uploads product images and cleans up replaced ones.
type ImageStore interface {
	UploadImage(ctx context.Context, folder string, data []byte) (original, thumb fileDomain.Object, err error)
	DeleteByURL(ctx context.Context, url string)
}

// ProductPatch carries the fields of a partial product update.
type ProductPatch struct {
	SKU           *string
	NameEn        *string
	NameAr        *string
	DescriptionEn *string
	DescriptionAr *string
	Category      *string
	Unit          *string
	UnitPrice     *float64
	VendorID      *uuid.UUID
	IsActive      *bool
}

type VendorPatch struct {
	VendorNumber *string
	NameEn       *string
	NameAr       *string
	ContactEmail *string
	Phone        *string
}

type CatalogService struct {
	products domain.ProductRepository
	vendors  domain.VendorRepository
	images   ImageStore
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

func NewCatalogService(
	products domain.ProductRepository,
	vendors domain.VendorRepository,
	images ImageStore,
	c cache.Cache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		products: products,
		vendors:  vendors,
		images:   images,
		cache:    c,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

func productCacheKey(id uuid.UUID) string {
	return "product:" + id.String()
}

func (s *CatalogService) CreateProduct(ctx context.Context, p *domain.Product) error {
	if p.UnitPrice != nil && *p.UnitPrice < 0 {
		return domain.ErrNegativePrice
	}
	p.SKU = strings.TrimSpace(p.SKU)
	if p.Unit == "" {
		p.Unit = "piece"
	}
	if err := s.checkVendor(ctx, p.VendorID); err != nil {
		return err
	}
	return s.products.Create(ctx, p)
}

func (s *CatalogService) checkVendor(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := s.vendors.GetByID(ctx, *id); err != nil {
		if errors.Is(err, domain.ErrVendorNotFound) {
			return domain.ErrUnknownVendor
		}
		return err
	}
	return nil
}

// GetProduct reads through the cache. The bool reports a cache hit.
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, bool, error) {
	key := productCacheKey(id)
	if raw, err := s.cache.Get(ctx, key); err == nil {
		var p domain.Product
		if json.Unmarshal(raw, &p) == nil {
			return &p, true, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("product cache read failed", zap.String("key", key), zap.Error(err))
	}

	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}

	if raw, err := json.Marshal(p); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
			s.logger.Warn("product cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return p, false, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error) {
	return s.products.List(ctx, filter)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]string, error) {
	return s.products.ListCategories(ctx)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, patch ProductPatch) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.UnitPrice != nil && *patch.UnitPrice < 0 {
		return nil, domain.ErrNegativePrice
	}
	if patch.VendorID != nil {
		if err := s.checkVendor(ctx, patch.VendorID); err != nil {
			return nil, err
		}
		p.VendorID = patch.VendorID
	}
	setIf(&p.SKU, patch.SKU)
	setIf(&p.NameEn, patch.NameEn)
	setIf(&p.NameAr, patch.NameAr)
	setIf(&p.Unit, patch.Unit)
	setIf(&p.IsActive, patch.IsActive)
	if patch.DescriptionEn != nil {
		p.DescriptionEn = patch.DescriptionEn
	}
	if patch.DescriptionAr != nil {
		p.DescriptionAr = patch.DescriptionAr
	}
	if patch.Category != nil {
		p.Category = patch.Category
	}
	if patch.UnitPrice != nil {
		p.UnitPrice = patch.UnitPrice
	}

	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	s.evict(ctx, id)
	return p, nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.evict(ctx, id)

	if p.ImageURL != nil {
		s.images.DeleteByURL(ctx, *p.ImageURL)
	}
	if p.ThumbnailURL != nil {
		s.images.DeleteByURL(ctx, *p.ThumbnailURL)
	}
	return nil
}

// SetProductImage uploads a new image with its thumbnail and removes the
// previous pair once the row points at the new one.
func (s *CatalogService) SetProductImage(ctx context.Context, id uuid.UUID, data []byte) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	original, thumb, err := s.images.UploadImage(ctx, "products", data)
	if err != nil {
		return nil, err
	}

	oldImage, oldThumb := p.ImageURL, p.ThumbnailURL
	p.ImageURL, p.ThumbnailURL = &original.URL, &thumb.URL
	if err := s.products.Update(ctx, p); err != nil {
		s.images.DeleteByURL(ctx, original.URL)
		s.images.DeleteByURL(ctx, thumb.URL)
		return nil, err
	}
	s.evict(ctx, id)

	if oldImage != nil {
		s.images.DeleteByURL(ctx, *oldImage)
	}
	if oldThumb != nil {
		s.images.DeleteByURL(ctx, *oldThumb)
	}
	return p, nil
}

func (s *CatalogService) evict(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Delete(ctx, productCacheKey(id)); err != nil {
		s.logger.Warn("product cache eviction failed", zap.String("product_id", id.String()), zap.Error(err))
	}
}

func (s *CatalogService) CreateVendor(ctx context.Context, v *domain.Vendor) error {
	v.VendorNumber = strings.TrimSpace(v.VendorNumber)
	return s.vendors.Create(ctx, v)
}

func (s *CatalogService) GetVendor(ctx context.Context, id uuid.UUID) (*domain.Vendor, error) {
	return s.vendors.GetByID(ctx, id)
}

func (s *CatalogService) ListVendors(ctx context.Context, limit, offset int) ([]domain.Vendor, error) {
	return s.vendors.List(ctx, limit, offset)
}

func (s *CatalogService) UpdateVendor(ctx context.Context, id uuid.UUID, patch VendorPatch) (*domain.Vendor, error) {
	v, err := s.vendors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	setIf(&v.VendorNumber, patch.VendorNumber)
	setIf(&v.NameEn, patch.NameEn)
	setIf(&v.NameAr, patch.NameAr)
	if patch.ContactEmail != nil {
		v.ContactEmail = patch.ContactEmail
	}
	if patch.Phone != nil {
		v.Phone = patch.Phone
	}
	if err := s.vendors.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *CatalogService) DeleteVendor(ctx context.Context, id uuid.UUID) error {
	return s.vendors.Delete(ctx, id)
}
