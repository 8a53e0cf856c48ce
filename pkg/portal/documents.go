package portal

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/ltaportal/procurement/pkg/apiclient"
	"github.com/ltaportal/procurement/pkg/querycache"
)

const documentsPath = "/api/client/documents"

var DocumentsKey = querycache.Key{documentsPath}

type Document struct {
	ID           uuid.UUID  `json:"id"`
	DocumentType string     `json:"document_type"`
	FileName     string     `json:"file_name"`
	ContentType  string     `json:"content_type"`
	Size         int64      `json:"size"`
	ClientID     *uuid.UUID `json:"client_id,omitempty"`
	PriceOfferID *uuid.UUID `json:"price_offer_id,omitempty"`
	OrderID      *uuid.UUID `json:"order_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// DownloadGrant is a single-use token for one document download.
type DownloadGrant struct {
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expiresAt"`
	DownloadURL string    `json:"downloadUrl"`
}

type Documents struct {
	api     API
	cache   *querycache.Cache
	toasts  *Toasts
	baseURL string
}

// NewDocuments resolves relative download URLs against baseURL.
func NewDocuments(api API, cache *querycache.Cache, toasts *Toasts, baseURL string) *Documents {
	return &Documents{api: api, cache: cache, toasts: toasts, baseURL: baseURL}
}

func (d *Documents) List(ctx context.Context) ([]Document, error) {
	return querycache.FetchQuery[[]Document](ctx, d.cache, DocumentsKey, dataFetcher(d.api, documentsPath))
}

// DownloadURL exchanges a fresh token for the URL that downloads the
// document. The URL works once.
func (d *Documents) DownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	grant, err := querycache.Mutate(ctx, d.cache, func(ctx context.Context) (DownloadGrant, error) {
		raw, err := d.api.Post(ctx, "/api/documents/"+id.String()+"/token", nil)
		if err != nil {
			return DownloadGrant{}, err
		}
		return apiclient.Decode[DownloadGrant](raw)
	})
	if err != nil {
		d.toasts.Error(MsgDownloadFailed, err)
		return "", err
	}
	return d.resolve(grant.DownloadURL)
}

func (d *Documents) resolve(ref string) (string, error) {
	target, err := url.Parse(ref)
	if err != nil || target.IsAbs() || d.baseURL == "" {
		return ref, err
	}
	base, err := url.Parse(d.baseURL)
	if err != nil {
		return ref, err
	}
	return base.ResolveReference(target).String(), nil
}
