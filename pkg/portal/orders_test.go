package portal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/ltaportal/procurement/pkg/apiclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrders_CancelInvalidatesOrders(t *testing.T) {
	id := uuid.New()
	f := &fakePortal{orders: []Order{{ID: id, Status: "pending", Currency: "SAR", TotalAmount: 120}}}
	toaster := &recordingToaster{}
	cache := newTestCache()
	orders := NewOrders(newFakePortal(t, f), cache, NewToasts(toaster, NewLocale(English)))
	ctx := context.Background()

	page, err := orders.List(ctx)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, 1, page.Metadata.Total)

	order, err := orders.Cancel(ctx, id, "ordered twice")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", order.Status)
	require.NotNil(t, order.CancellationReason)
	assert.Equal(t, "ordered twice", *order.CancellationReason)

	assert.Equal(t, 2, f.count("GET", "/api/client/orders"))
	page, err = orders.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", page.Data[0].Status)

	toasts := toaster.all()
	require.Len(t, toasts, 1)
	assert.Equal(t, ToastDefault, toasts[0].Variant)
	assert.Equal(t, "Order cancelled", toasts[0].Title)
}

func TestOrders_CancelFailureToasts(t *testing.T) {
	id := uuid.New()
	f := &fakePortal{orders: []Order{{ID: id, Status: "shipped"}}, failWith: http.StatusConflict}
	toaster := &recordingToaster{}
	orders := NewOrders(newFakePortal(t, f), newTestCache(), NewToasts(toaster, NewLocale(English)))
	ctx := context.Background()

	_, err := orders.List(ctx)
	require.NoError(t, err)

	_, err = orders.Cancel(ctx, id, "late")
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apiclient.StatusOf(err))
	assert.Equal(t, 1, f.count("POST", "/api/client/orders/"+id.String()+"/cancel"), "4xx is not retried")
	assert.Equal(t, 2, f.count("GET", "/api/client/orders"), "invalidated after failure too")

	toasts := toaster.all()
	require.Len(t, toasts, 1)
	assert.Equal(t, ToastDestructive, toasts[0].Variant)
	assert.Equal(t, T(English, MsgCancelOrderFailed), toasts[0].Title)
	assert.Contains(t, toasts[0].Description, "409")
}

func TestOrderItem_Name(t *testing.T) {
	item := OrderItem{NameEn: "Pen", NameAr: "قلم"}
	assert.Equal(t, "قلم", item.Name(Arabic))
	assert.Equal(t, "Pen", item.Name(English))
	assert.Equal(t, "Pen", OrderItem{NameEn: "Pen"}.Name(Arabic))
}

func TestDocuments_DownloadURL(t *testing.T) {
	id := uuid.New()
	var tokenRequests atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/documents/{id}/token", func(w http.ResponseWriter, r *http.Request) {
		tokenRequests.Add(1)
		if r.PathValue("id") != id.String() {
			http.Error(w, `{"error":"Document not found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, DownloadGrant{Token: "abc", DownloadURL: "/api/documents/" + id.String() + "/download?token=abc"})
	})
	mux.HandleFunc("GET /api/client/documents", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"data": []Document{{ID: id, DocumentType: "invoice", FileName: "INV-1.pdf"}}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	toaster := &recordingToaster{}
	docs := NewDocuments(apiclient.New(srv.URL), newTestCache(), NewToasts(toaster, NewLocale(English)), srv.URL)
	ctx := context.Background()

	list, err := docs.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "INV-1.pdf", list[0].FileName)

	url, err := docs.DownloadURL(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/api/documents/"+id.String()+"/download?token=abc", url)

	_, err = docs.DownloadURL(ctx, uuid.New())
	assert.True(t, apiclient.StatusOf(err) == http.StatusNotFound)
	assert.EqualValues(t, 2, tokenRequests.Load())
	assert.Len(t, toaster.all(), 1)
}
