package http

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ltaportal/procurement/internal/gateway/middleware"
	"github.com/ltaportal/procurement/internal/modules/document/application"
	"github.com/ltaportal/procurement/internal/modules/document/domain"
	fileDomain "github.com/ltaportal/procurement/internal/modules/filestorage/domain"
	"github.com/ltaportal/procurement/internal/shared/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockDocumentService struct{ mock.Mock }

func (m *mockDocumentService) Upload(ctx context.Context, adminID uuid.UUID, in application.Upload) (*domain.Document, error) {
	args := m.Called(ctx, adminID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}
func (m *mockDocumentService) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Document), args.Error(1)
}
func (m *mockDocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockDocumentService) IssueToken(ctx context.Context, caller application.Caller, id uuid.UUID) (*domain.DownloadGrant, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DownloadGrant), args.Error(1)
}
func (m *mockDocumentService) Redeem(ctx context.Context, id uuid.UUID, token string) (string, error) {
	args := m.Called(ctx, id, token)
	return args.String(0), args.Error(1)
}

func withUser(req *http.Request, id uuid.UUID, role string) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), id, role))
}

func multipartBody(t *testing.T, fields map[string]string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile("file", "offer.pdf")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestDocumentHandler_Upload(t *testing.T) {
	svc := new(mockDocumentService)
	h := NewDocumentHandler(svc, zap.NewNop())
	adminID, offerID := uuid.New(), uuid.New()
	pdf := []byte("%PDF-1.4 body")

	newReq := func(fields map[string]string, file []byte) *http.Request {
		body, contentType := multipartBody(t, fields, file)
		req := httptest.NewRequest(http.MethodPost, "/api/admin/documents", body)
		req.Header.Set("Content-Type", contentType)
		return withUser(req, adminID, auth.RoleAdmin)
	}

	w := httptest.NewRecorder()
	h.Upload(w, newReq(map[string]string{"document_type": "price_offer"}, nil))
	assert.Equal(t, http.StatusBadRequest, w.Code, "file is required")

	w = httptest.NewRecorder()
	h.Upload(w, newReq(map[string]string{"document_type": "price_offer", "price_offer_id": "nope"}, pdf))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "price_offer_id")

	svc.On("Upload", mock.Anything, adminID, mock.MatchedBy(func(in application.Upload) bool {
		return in.Type == domain.TypePriceOffer && in.FileName == "offer.pdf" &&
			in.PriceOfferID != nil && *in.PriceOfferID == offerID && in.ClientID == nil && bytes.Equal(in.Data, pdf)
	})).Return(&domain.Document{ID: uuid.New(), DocumentType: domain.TypePriceOffer, FileName: "offer.pdf"}, nil).Once()
	w = httptest.NewRecorder()
	h.Upload(w, newReq(map[string]string{"document_type": "price_offer", "price_offer_id": offerID.String()}, pdf))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "storage_key")

	svc.On("Upload", mock.Anything, adminID, mock.Anything).Return(nil, fileDomain.ErrUnsupportedContentType).Once()
	w = httptest.NewRecorder()
	h.Upload(w, newReq(map[string]string{"document_type": "invoice"}, []byte("plain text")))
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	svc.AssertExpectations(t)
}

func TestDocumentHandler_IssueToken(t *testing.T) {
	svc := new(mockDocumentService)
	h := NewDocumentHandler(svc, zap.NewNop())
	clientID, id := uuid.New(), uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.SetPathValue("id", id.String())

	w := httptest.NewRecorder()
	h.IssueToken(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	expires := time.Date(2025, 3, 1, 9, 5, 0, 0, time.UTC)
	svc.On("IssueToken", mock.Anything, application.Caller{ID: clientID}, id).
		Return(&domain.DownloadGrant{Token: "abc", ExpiresAt: expires, DownloadURL: "https://portal.test/api/documents/x/download?token=abc"}, nil).Once()
	w = httptest.NewRecorder()
	h.IssueToken(w, withUser(req, clientID, auth.RoleClient))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"token":"abc","expiresAt":"2025-03-01T09:05:00Z","downloadUrl":"https://portal.test/api/documents/x/download?token=abc"}`, w.Body.String())

	svc.On("IssueToken", mock.Anything, application.Caller{ID: clientID, Admin: true}, id).Return(nil, domain.ErrDocumentNotFound).Once()
	w = httptest.NewRecorder()
	h.IssueToken(w, withUser(req, clientID, auth.RoleAdmin))
	assert.Equal(t, http.StatusNotFound, w.Code)

	svc.AssertExpectations(t)
}

func TestDocumentHandler_Download(t *testing.T) {
	svc := new(mockDocumentService)
	h := NewDocumentHandler(svc, zap.NewNop())
	id := uuid.New()

	newReq := func(token string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/api/documents/"+id.String()+"/download?token="+token, nil)
		req.SetPathValue("id", id.String())
		return req
	}

	svc.On("Redeem", mock.Anything, id, "good").Return("https://storage.test/doc.pdf?sig=1", nil).Once()
	w := httptest.NewRecorder()
	h.Download(w, newReq("good"))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://storage.test/doc.pdf?sig=1", w.Header().Get("Location"))

	svc.On("Redeem", mock.Anything, id, "good").Return("", domain.ErrInvalidToken).Once()
	w = httptest.NewRecorder()
	h.Download(w, newReq("good"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	svc.AssertExpectations(t)
}
