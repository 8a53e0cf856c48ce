package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ltaportal/procurement/internal/modules/document/domain"
	fileDomain "github.com/ltaportal/procurement/internal/modules/filestorage/domain"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/cache"
	"github.com/ltaportal/procurement/internal/shared/infrastructure/metrics"
	"go.uber.org/zap"
)

const (
	tokenBytes  = 32
	tokenPrefix = "doctoken:"
	// presignTTL bounds the storage URL a redeemed token redirects to.
	presignTTL = 2 * time.Minute
)

// Files is the subset of the file storage service documents use.
type Files interface {
	UploadDocument(ctx context.Context, folder, declaredType string, data []byte) (fileDomain.Object, error)
	DownloadURL(ctx context.Context, key, filename string, ttl time.Duration) (string, error)
	DeleteQuietly(ctx context.Context, key string)
}

// OfferLinker attaches an uploaded PDF to its price offer.
type OfferLinker interface {
	AttachDocument(ctx context.Context, offerID, documentID uuid.UUID) error
}

type Upload struct {
	Type         domain.DocumentType
	FileName     string
	ContentType  string
	Data         []byte
	ClientID     *uuid.UUID
	PriceOfferID *uuid.UUID
	OrderID      *uuid.UUID
}

// Caller identifies who asks for a download token.
type Caller struct {
	ID    uuid.UUID
	Admin bool
}

type DocumentService struct {
	docs     domain.DocumentRepository
	files    Files
	offers   OfferLinker
	tokens   cache.Cache
	tokenTTL time.Duration
	baseURL  string
	logger   *zap.Logger
	now      func() time.Time
}

func NewDocumentService(docs domain.DocumentRepository, files Files, offers OfferLinker, tokens cache.Cache, tokenTTL time.Duration, baseURL string, logger *zap.Logger) *DocumentService {
	return &DocumentService{
		docs:     docs,
		files:    files,
		offers:   offers,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
		now:      time.Now,
	}
}

// Upload stores a generated PDF and records it. A document for a price
// offer is linked to the offer; when linking fails nothing is kept.
func (s *DocumentService) Upload(ctx context.Context, adminID uuid.UUID, in Upload) (*domain.Document, error) {
	if !in.Type.Valid() {
		return nil, domain.ErrInvalidType
	}
	obj, err := s.files.UploadDocument(ctx, "documents/"+string(in.Type), in.ContentType, in.Data)
	if err != nil {
		return nil, err
	}

	name := path.Base(strings.ReplaceAll(in.FileName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = path.Base(obj.Key)
	}
	doc := &domain.Document{
		DocumentType: in.Type,
		FileName:     name,
		StorageKey:   obj.Key,
		ContentType:  obj.ContentType,
		Size:         obj.Size,
		ClientID:     in.ClientID,
		PriceOfferID: in.PriceOfferID,
		OrderID:      in.OrderID,
		CreatedBy:    adminID,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		s.files.DeleteQuietly(ctx, obj.Key)
		return nil, fmt.Errorf("record document: %w", err)
	}

	if doc.PriceOfferID != nil {
		if err := s.offers.AttachDocument(ctx, *doc.PriceOfferID, doc.ID); err != nil {
			if delErr := s.docs.Delete(ctx, doc.ID); delErr != nil {
				s.logger.Warn("failed to remove unlinked document", zap.String("document_id", doc.ID.String()), zap.Error(delErr))
			}
			s.files.DeleteQuietly(ctx, obj.Key)
			return nil, err
		}
	}

	s.logger.Info("Document uploaded",
		zap.String("document_id", doc.ID.String()),
		zap.String("type", string(doc.DocumentType)),
		zap.Int64("size", doc.Size))
	return doc, nil
}

func (s *DocumentService) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	return s.docs.List(ctx, filter)
}

func (s *DocumentService) Get(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	return s.docs.GetByID(ctx, id)
}

func (s *DocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.docs.Delete(ctx, id); err != nil {
		return err
	}
	s.files.DeleteQuietly(ctx, doc.StorageKey)
	return nil
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// IssueToken grants the owner or an admin a single-use download token.
// Documents the caller may not see are reported as missing.
func (s *DocumentService) IssueToken(ctx context.Context, caller Caller, id uuid.UUID) (*domain.DownloadGrant, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Admin && !doc.VisibleTo(caller.ID) {
		return nil, domain.ErrDocumentNotFound
	}

	token, err := newToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	if err := s.tokens.Set(ctx, tokenPrefix+token, []byte(doc.ID.String()), s.tokenTTL); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}
	metrics.DocumentTokensIssued.Inc()

	return &domain.DownloadGrant{
		Token:       token,
		ExpiresAt:   s.now().UTC().Add(s.tokenTTL),
		DownloadURL: fmt.Sprintf("%s/api/documents/%s/download?token=%s", s.baseURL, doc.ID, token),
	}, nil
}

// Redeem consumes token and returns a presigned storage URL for the document.
func (s *DocumentService) Redeem(ctx context.Context, id uuid.UUID, token string) (string, error) {
	if token == "" {
		return "", domain.ErrInvalidToken
	}
	val, err := s.tokens.Take(ctx, tokenPrefix+token)
	if errors.Is(err, cache.ErrMiss) {
		return "", domain.ErrInvalidToken
	}
	if err != nil {
		return "", fmt.Errorf("redeem token: %w", err)
	}
	if string(val) != id.String() {
		return "", domain.ErrInvalidToken
	}

	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return s.files.DownloadURL(ctx, doc.StorageKey, doc.FileName, presignTTL)
}
