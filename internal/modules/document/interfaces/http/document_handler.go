package http

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/ltaportal/procurement/internal/gateway/middleware"
	"github.com/ltaportal/procurement/internal/modules/document/application"
	"github.com/ltaportal/procurement/internal/modules/document/domain"
	fileDomain "github.com/ltaportal/procurement/internal/modules/filestorage/domain"
	"github.com/ltaportal/procurement/internal/shared/httpx"
	"go.uber.org/zap"
)

type DocumentService interface {
	Upload(ctx context.Context, adminID uuid.UUID, in application.Upload) (*domain.Document, error)
	List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
	IssueToken(ctx context.Context, caller application.Caller, id uuid.UUID) (*domain.DownloadGrant, error)
	Redeem(ctx context.Context, id uuid.UUID, token string) (string, error)
}

const maxDocumentUpload = 20 << 20

var documentErrors = []httpx.ErrorMapping{
	{Err: domain.ErrDocumentNotFound, Status: http.StatusNotFound},
	{Err: domain.ErrInvalidType, Status: http.StatusBadRequest},
	{Err: domain.ErrInvalidToken, Status: http.StatusForbidden},
	{Err: fileDomain.ErrEmptyFile, Status: http.StatusBadRequest},
	{Err: fileDomain.ErrFileTooLarge, Status: http.StatusRequestEntityTooLarge},
	{Err: fileDomain.ErrUnsupportedContentType, Status: http.StatusUnsupportedMediaType},
}

type DocumentHandler struct {
	service DocumentService
	logger  *zap.Logger
}

func NewDocumentHandler(service DocumentService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{service: service, logger: logger}
}

func (h *DocumentHandler) fail(w http.ResponseWriter, err error) {
	httpx.WriteDomainError(w, h.logger, err, documentErrors...)
}

func (h *DocumentHandler) caller(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := middleware.UserID(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
	}
	return id, ok
}

func formUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.FormValue(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, httpx.NewValidationError(name, "invalid id")
	}
	return &id, nil
}

// Upload handles POST /api/admin/documents (multipart field "file" plus
// document_type, client_id, price_offer_id and order_id).
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	adminID, ok := h.caller(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentUpload+(1<<20))
	if err := r.ParseMultipartForm(maxDocumentUpload); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid multipart form", err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "file is required", err)
		return
	}
	defer file.Close()

	in := application.Upload{
		Type:        domain.DocumentType(r.FormValue("document_type")),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}
	for name, dst := range map[string]**uuid.UUID{"client_id": &in.ClientID, "price_offer_id": &in.PriceOfferID, "order_id": &in.OrderID} {
		if *dst, err = formUUID(r, name); err != nil {
			h.fail(w, err)
			return
		}
	}

	in.Data, err = io.ReadAll(io.LimitReader(file, maxDocumentUpload+1))
	if err != nil {
		h.fail(w, err)
		return
	}
	if len(in.Data) > maxDocumentUpload {
		h.fail(w, fileDomain.ErrFileTooLarge)
		return
	}

	doc, err := h.service.Upload(r.Context(), adminID, in)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, doc)
}

// List handles GET /api/admin/documents?client_id=&type=
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	clientID, err := httpx.QueryUUID(r, "client_id")
	if err != nil {
		h.fail(w, err)
		return
	}
	docType := domain.DocumentType(r.URL.Query().Get("type"))
	if docType != "" && !docType.Valid() {
		h.fail(w, domain.ErrInvalidType)
		return
	}
	page := httpx.ParsePage(r)
	docs, err := h.service.List(r.Context(), domain.DocumentFilter{ClientID: clientID, DocumentType: docType, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, docs)
}

func (h *DocumentHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.caller(w, r)
	if !ok {
		return
	}
	page := httpx.ParsePage(r)
	docs, err := h.service.List(r.Context(), domain.DocumentFilter{ClientID: &clientID, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, docs)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// IssueToken handles POST /api/documents/{id}/token
func (h *DocumentHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	grant, err := h.service.IssueToken(r.Context(), application.Caller{ID: userID, Admin: middleware.IsAdmin(r.Context())}, id)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	httpx.WriteJSON(w, http.StatusOK, grant)
}

// Download handles GET /api/documents/{id}/download?token=. The token is
// the credential, so the route is not behind the auth middleware.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		h.fail(w, err)
		return
	}
	url, err := h.service.Redeem(r.Context(), id, r.URL.Query().Get("token"))
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, url, http.StatusFound)
}
