package http

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/ltaportal/procurement/internal/modules/catalog/application"
	"github.com/ltaportal/procurement/internal/modules/catalog/domain"
	fileDomain "github.com/ltaportal/procurement/internal/modules/filestorage/domain"
	"github.com/ltaportal/procurement/internal/shared/httpx"
	"go.uber.org/zap"
)

// CatalogService is what the handler needs from the application layer.
type CatalogService interface {
	CreateProduct(ctx context.Context, p *domain.Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, bool, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error)
	ListCategories(ctx context.Context) ([]string, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, patch application.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	SetProductImage(ctx context.Context, id uuid.UUID, data []byte) (*domain.Product, error)
	CreateVendor(ctx context.Context, v *domain.Vendor) error
	GetVendor(ctx context.Context, id uuid.UUID) (*domain.Vendor, error)
	ListVendors(ctx context.Context, limit, offset int) ([]domain.Vendor, error)
	UpdateVendor(ctx context.Context, id uuid.UUID, patch application.VendorPatch) (*domain.Vendor, error)
	DeleteVendor(ctx context.Context, id uuid.UUID) error
}

const maxImageUpload = 5 << 20

var catalogErrors = []httpx.ErrorMapping{
	{Err: domain.ErrProductNotFound, Status: http.StatusNotFound},
	{Err: domain.ErrVendorNotFound, Status: http.StatusNotFound},
	{Err: domain.ErrDuplicateSKU, Status: http.StatusConflict},
	{Err: domain.ErrDuplicateVendorNumber, Status: http.StatusConflict},
	{Err: domain.ErrUnknownVendor, Status: http.StatusBadRequest},
	{Err: domain.ErrNegativePrice, Status: http.StatusBadRequest},
	{Err: fileDomain.ErrUnsupportedContentType, Status: http.StatusUnsupportedMediaType, Message: "image must be JPEG or PNG"},
	{Err: fileDomain.ErrFileTooLarge, Status: http.StatusRequestEntityTooLarge},
	{Err: fileDomain.ErrEmptyFile, Status: http.StatusBadRequest},
	{Err: fileDomain.ErrInvalidImage, Status: http.StatusBadRequest},
}

type CatalogHandler struct {
	service CatalogService
	logger  *zap.Logger
}

func NewCatalogHandler(service CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{service: service, logger: logger}
}

func (h *CatalogHandler) fail(w http.ResponseWriter, err error) {
	httpx.WriteDomainError(w, h.logger, err, catalogErrors...)
}

// ListProducts handles GET /api/products?search=&category=&vendor_id=&limit=&offset=
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	vendorID, err := httpx.QueryUUID(r, "vendor_id")
	if err != nil {
		h.fail(w, err)
		return
	}
	page := httpx.ParsePage(r)

	filter := domain.ProductFilter{
		Search:     q.Get("search"),
		Category:   q.Get("category"),
		VendorID:   vendorID,
		ActiveOnly: q.Get("include_inactive") != "true",
		Limit:      page.Limit,
		Offset:     page.Offset,
	}

	products, total, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ListResponse[domain.Product]{
		Data:     products,
		Metadata: ListMetadata{Total: total, Limit: page.Limit, Offset: page.Offset},
	})
}

// GetProduct handles GET /api/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}

	product, hit, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	httpx.WriteJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, categories)
}

func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		h.fail(w, err)
		return
	}

	product := req.ToDomain()
	if err := h.service.CreateProduct(r.Context(), product); err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, product)
}

func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	var req UpdateProductRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		h.fail(w, err)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, req.ToPatch())
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadImage handles POST /api/admin/products/{id}/image (multipart field "image").
func (h *CatalogHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageUpload+(1<<20))
	if err := r.ParseMultipartForm(maxImageUpload); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid multipart form", err)
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "image file is required", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageUpload+1))
	if err != nil {
		h.fail(w, err)
		return
	}
	if len(data) > maxImageUpload {
		h.fail(w, fileDomain.ErrFileTooLarge)
		return
	}

	product, err := h.service.SetProductImage(r.Context(), id, data)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) ListVendors(w http.ResponseWriter, r *http.Request) {
	page := httpx.ParsePage(r)
	vendors, err := h.service.ListVendors(r.Context(), page.Limit, page.Offset)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, vendors)
}

func (h *CatalogHandler) GetVendor(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	vendor, err := h.service.GetVendor(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, vendor)
}

func (h *CatalogHandler) CreateVendor(w http.ResponseWriter, r *http.Request) {
	var req CreateVendorRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	vendor := &domain.Vendor{
		VendorNumber: req.VendorNumber,
		NameEn:       req.NameEn,
		NameAr:       req.NameAr,
		ContactEmail: req.ContactEmail,
		Phone:        req.Phone,
	}
	if err := h.service.CreateVendor(r.Context(), vendor); err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, vendor)
}

func (h *CatalogHandler) UpdateVendor(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	var req UpdateVendorRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	vendor, err := h.service.UpdateVendor(r.Context(), id, application.VendorPatch{
		VendorNumber: req.VendorNumber,
		NameEn:       req.NameEn,
		NameAr:       req.NameAr,
		ContactEmail: req.ContactEmail,
		Phone:        req.Phone,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, vendor)
}

func (h *CatalogHandler) DeleteVendor(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := h.service.DeleteVendor(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
