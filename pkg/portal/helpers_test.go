package portal

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ltaportal/procurement/pkg/apiclient"
	"github.com/ltaportal/procurement/pkg/querycache"
)

// fakePortal serves the client notification and order endpoints from
// memory.
type fakePortal struct {
	mu            sync.Mutex
	notifications []Notification
	orders        []Order
	requests      []string
	failWith      int
	beforeWrite   func()
}

func (f *fakePortal) record(r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.mu.Unlock()
}

func (f *fakePortal) count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r == method+" "+path {
			n++
		}
	}
	return n
}

func (f *fakePortal) unread() int {
	n := 0
	for _, item := range f.notifications {
		if !item.IsRead {
			n++
		}
	}
	return n
}

// write runs the hook, then fails or applies fn under the lock.
func (f *fakePortal) write(w http.ResponseWriter, fn func() any) {
	if f.beforeWrite != nil {
		f.beforeWrite()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != 0 {
		http.Error(w, `{"error":"unavailable"}`, f.failWith)
		return
	}
	body := fn()
	if body == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, body)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakePortal) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/client/notifications", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, map[string]any{"data": f.notifications})
	})
	mux.HandleFunc("GET /api/client/notifications/unread-count", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, map[string]int{"count": f.unread()})
	})
	mux.HandleFunc("PATCH /api/client/notifications/{id}/read", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.write(w, func() any {
			for i := range f.notifications {
				if f.notifications[i].ID.String() == r.PathValue("id") {
					f.notifications[i].IsRead = true
				}
			}
			return map[string]string{"message": "ok"}
		})
	})
	mux.HandleFunc("PATCH /api/client/notifications/mark-all-read", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.write(w, func() any {
			for i := range f.notifications {
				f.notifications[i].IsRead = true
			}
			return map[string]string{"message": "ok"}
		})
	})
	mux.HandleFunc("DELETE /api/client/notifications/read", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.write(w, func() any {
			kept := f.notifications[:0]
			for _, item := range f.notifications {
				if !item.IsRead {
					kept = append(kept, item)
				}
			}
			f.notifications = kept
			return nil
		})
	})
	mux.HandleFunc("DELETE /api/client/notifications/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.write(w, func() any {
			kept := f.notifications[:0]
			for _, item := range f.notifications {
				if item.ID.String() != r.PathValue("id") {
					kept = append(kept, item)
				}
			}
			f.notifications = kept
			return nil
		})
	})
	mux.HandleFunc("GET /api/client/orders", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.mu.Lock()
		defer f.mu.Unlock()
		page := OrderPage{Data: f.orders}
		page.Metadata.Total = len(f.orders)
		page.Metadata.Limit = 20
		writeJSON(w, page)
	})
	mux.HandleFunc("POST /api/client/orders/{id}/cancel", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		var body struct {
			Reason string `json:"reason"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.write(w, func() any {
			for i := range f.orders {
				if f.orders[i].ID.String() == r.PathValue("id") {
					f.orders[i].Status = "cancelled"
					f.orders[i].CancellationReason = &body.Reason
					return f.orders[i]
				}
			}
			return map[string]string{}
		})
	})
	return mux
}

func newFakePortal(t *testing.T, f *fakePortal) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return apiclient.New(srv.URL)
}

func newTestCache() *querycache.Cache {
	return querycache.New(querycache.WithRetry(querycache.NoRetry, querycache.NoRetry))
}

func notification(read bool, actionURL string) Notification {
	n := Notification{
		ID:        uuid.New(),
		Type:      "order_status_changed",
		Title:     "Order updated",
		Message:   "Your order was confirmed",
		IsRead:    read,
		CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	if actionURL != "" {
		action := ActionViewOrder
		n.ActionURL = &actionURL
		n.ActionType = &action
	}
	return n
}

type recordingToaster struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *recordingToaster) Show(t Toast) {
	r.mu.Lock()
	r.toasts = append(r.toasts, t)
	r.mu.Unlock()
}

func (r *recordingToaster) all() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Toast(nil), r.toasts...)
}

func (f *fakePortal) requestsWithPrefix(prefix string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.requests {
		if strings.HasPrefix(r, prefix) {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakePortal) current() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Notification(nil), f.notifications...)
}
