package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type DocumentType string

const (
	TypePriceOffer DocumentType = "price_offer"
	TypeInvoice    DocumentType = "invoice"
	TypeOrder      DocumentType = "order"
	TypeContract   DocumentType = "contract"
)

func (t DocumentType) Valid() bool {
	switch t {
	case TypePriceOffer, TypeInvoice, TypeOrder, TypeContract:
		return true
	}
	return false
}

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidType      = errors.New("unknown document type")
	ErrInvalidToken     = errors.New("download token is invalid or expired")
)

// Document is a generated PDF kept in file storage.
type Document struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	DocumentType DocumentType `json:"document_type" db:"document_type"`
	FileName     string       `json:"file_name" db:"file_name"`
	StorageKey   string       `json:"-" db:"storage_key"`
	ContentType  string       `json:"content_type" db:"content_type"`
	Size         int64        `json:"size" db:"size"`
	ClientID     *uuid.UUID   `json:"client_id,omitempty" db:"client_id"`
	PriceOfferID *uuid.UUID   `json:"price_offer_id,omitempty" db:"price_offer_id"`
	OrderID      *uuid.UUID   `json:"order_id,omitempty" db:"order_id"`
	CreatedBy    uuid.UUID    `json:"created_by" db:"created_by"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
}

// VisibleTo reports whether a client may download the document.
func (d *Document) VisibleTo(clientID uuid.UUID) bool {
	return d.ClientID != nil && *d.ClientID == clientID
}

type DocumentFilter struct {
	ClientID     *uuid.UUID
	DocumentType DocumentType
	Limit        int
	Offset       int
}

type DocumentRepository interface {
	Create(ctx context.Context, d *Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*Document, error)
	List(ctx context.Context, filter DocumentFilter) ([]Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// DownloadGrant is a short-lived single-use download token.
type DownloadGrant struct {
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expiresAt"`
	DownloadURL string    `json:"downloadUrl"`
}
