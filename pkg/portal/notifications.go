package portal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/ltaportal/procurement/pkg/apiclient"
	"github.com/ltaportal/procurement/pkg/querycache"
)

const notificationsPath = "/api/client/notifications"

var (
	NotificationsKey = querycache.Key{notificationsPath}
	UnreadCountKey   = querycache.Key{notificationsPath + "/unread-count"}
)

type ActionType string

const (
	ActionViewOrder     ActionType = "view_order"
	ActionReviewRequest ActionType = "review_request"
	ActionDownloadPDF   ActionType = "download_pdf"
	ActionViewRequest   ActionType = "view_request"
)

type Notification struct {
	ID          uuid.UUID   `json:"id"`
	RecipientID uuid.UUID   `json:"recipient_id"`
	Type        string      `json:"type"`
	Title       string      `json:"title"`
	Message     string      `json:"message"`
	IsRead      bool        `json:"is_read"`
	ActionURL   *string     `json:"action_url,omitempty"`
	ActionType  *ActionType `json:"action_type,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Notifications reads and mutates the signed-in client's notifications
// through the query cache.
type Notifications struct {
	api    API
	cache  *querycache.Cache
	toasts *Toasts
}

func NewNotifications(api API, cache *querycache.Cache, toasts *Toasts) *Notifications {
	return &Notifications{api: api, cache: cache, toasts: toasts}
}

func (n *Notifications) List(ctx context.Context) ([]Notification, error) {
	return querycache.FetchQuery[[]Notification](ctx, n.cache, NotificationsKey, dataFetcher(n.api, notificationsPath))
}

func (n *Notifications) UnreadCount(ctx context.Context) (int, error) {
	return querycache.FetchQuery[int](ctx, n.cache, UnreadCountKey, n.fetchUnreadCount)
}

// RefreshUnreadCount loads the count from the server even when the cached
// value is fresh.
func (n *Notifications) RefreshUnreadCount(ctx context.Context) (int, error) {
	data, err := n.cache.Refresh(ctx, UnreadCountKey, n.fetchUnreadCount)
	if err != nil {
		return 0, err
	}
	return apiclient.Decode[int](data)
}

func (n *Notifications) fetchUnreadCount(ctx context.Context) ([]byte, error) {
	raw, err := n.api.Get(ctx, UnreadCountKey[0])
	if err != nil {
		return nil, err
	}
	body, err := apiclient.Decode[struct {
		Count int `json:"count"`
	}](raw)
	if err != nil {
		return nil, err
	}
	return json.Marshal(max(body.Count, 0))
}

// MarkAsRead marks one notification read. The unread count drops only
// when the cached entry was unread.
func (n *Notifications) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	return n.mutate(ctx, MsgMarkReadFailed,
		func(c *querycache.Cache) error {
			wasUnread := false
			_, err := querycache.UpdateQueryData(c, NotificationsKey, func(list []Notification) []Notification {
				for i := range list {
					if list[i].ID == id {
						wasUnread = wasUnread || !list[i].IsRead
						list[i].IsRead = true
					}
				}
				return list
			})
			if err != nil || !wasUnread {
				return err
			}
			return adjustUnread(c, -1)
		},
		func(ctx context.Context) (json.RawMessage, error) {
			return n.api.Patch(ctx, notificationsPath+"/"+id.String()+"/read", nil)
		})
}

// Delete removes one notification.
func (n *Notifications) Delete(ctx context.Context, id uuid.UUID) error {
	return n.mutate(ctx, MsgDeleteFailed,
		func(c *querycache.Cache) error {
			wasUnread := false
			_, err := querycache.UpdateQueryData(c, NotificationsKey, func(list []Notification) []Notification {
				kept := list[:0]
				for _, item := range list {
					if item.ID == id {
						wasUnread = wasUnread || !item.IsRead
						continue
					}
					kept = append(kept, item)
				}
				return kept
			})
			if err != nil || !wasUnread {
				return err
			}
			return adjustUnread(c, -1)
		},
		func(ctx context.Context) (json.RawMessage, error) {
			return n.api.Delete(ctx, notificationsPath+"/"+id.String())
		})
}

// MarkAllAsRead marks every notification read with a single request.
func (n *Notifications) MarkAllAsRead(ctx context.Context) error {
	return n.mutate(ctx, MsgMarkAllReadFailed,
		func(c *querycache.Cache) error {
			_, err := querycache.UpdateQueryData(c, NotificationsKey, func(list []Notification) []Notification {
				for i := range list {
					list[i].IsRead = true
				}
				return list
			})
			if err != nil {
				return err
			}
			_, err = querycache.UpdateQueryData(c, UnreadCountKey, func(int) int { return 0 })
			return err
		},
		func(ctx context.Context) (json.RawMessage, error) {
			return n.api.Patch(ctx, notificationsPath+"/mark-all-read", nil)
		})
}

// DeleteAllRead removes every read notification. The unread count is
// unchanged.
func (n *Notifications) DeleteAllRead(ctx context.Context) error {
	return n.mutate(ctx, MsgDeleteAllReadFailed,
		func(c *querycache.Cache) error {
			_, err := querycache.UpdateQueryData(c, NotificationsKey, func(list []Notification) []Notification {
				kept := list[:0]
				for _, item := range list {
					if !item.IsRead {
						kept = append(kept, item)
					}
				}
				return kept
			})
			return err
		},
		func(ctx context.Context) (json.RawMessage, error) {
			return n.api.Delete(ctx, notificationsPath+"/read")
		})
}

// Open marks an unread notification read and returns where its action
// leads. The URL is returned even when marking fails.
func (n *Notifications) Open(ctx context.Context, item Notification) (string, error) {
	var url string
	if item.ActionURL != nil {
		url = *item.ActionURL
	}
	if item.IsRead {
		return url, nil
	}
	return url, n.MarkAsRead(ctx, item.ID)
}

func (n *Notifications) mutate(ctx context.Context, failure MessageID, apply func(*querycache.Cache) error, send func(context.Context) (json.RawMessage, error)) error {
	_, err := querycache.RunOptimistic(ctx, n.cache, querycache.Optimistic[json.RawMessage]{
		Keys:    []querycache.Key{NotificationsKey, UnreadCountKey},
		Apply:   apply,
		Mutate:  send,
		OnError: func(err error) { n.toasts.Error(failure, err) },
	})
	return err
}

func adjustUnread(c *querycache.Cache, delta int) error {
	_, err := querycache.UpdateQueryData(c, UnreadCountKey, func(count int) int {
		return max(count+delta, 0)
	})
	return err
}
