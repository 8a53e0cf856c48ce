package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	TypeOrderCreated               NotificationType = "order_created"
	TypeOrderStatusChanged         NotificationType = "order_status_changed"
	TypeOrderModificationRequested NotificationType = "order_modification_requested"
	TypeOrderModificationReviewed  NotificationType = "order_modification_reviewed"
	TypePriceRequestReceived       NotificationType = "price_request_received"
	TypePriceOfferReady            NotificationType = "price_offer_ready"
	TypePriceOfferResponded        NotificationType = "price_offer_responded"
	TypeDocumentReady              NotificationType = "document_ready"
	TypeIssueReported              NotificationType = "issue_reported"
	TypeFeedbackReceived           NotificationType = "feedback_received"
	TypeSystem                     NotificationType = "system"
)

// ActionType tells the client what opening the notification does.
type ActionType string

const (
	ActionViewOrder     ActionType = "view_order"
	ActionReviewRequest ActionType = "review_request"
	ActionDownloadPDF   ActionType = "download_pdf"
	ActionViewRequest   ActionType = "view_request"
)

// Notification is addressed to exactly one recipient. IsRead only ever goes
// from false to true.
type Notification struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	RecipientID uuid.UUID        `json:"recipient_id" db:"recipient_id"`
	Type        NotificationType `json:"type" db:"type"`
	Title       string           `json:"title" db:"title"`
	Message     string           `json:"message" db:"message"`
	IsRead      bool             `json:"is_read" db:"is_read"`
	ActionURL   *string          `json:"action_url,omitempty" db:"action_url"`
	ActionType  *ActionType      `json:"action_type,omitempty" db:"action_type"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
}

// NotificationInput is what other modules pass to Notify.
type NotificationInput struct {
	Type       NotificationType
	Title      string
	Message    string
	ActionURL  string
	ActionType ActionType
}

// NewNotification builds an unread notification for recipient.
func NewNotification(recipient uuid.UUID, in NotificationInput) *Notification {
	n := &Notification{
		ID:          uuid.New(),
		RecipientID: recipient,
		Type:        in.Type,
		Title:       in.Title,
		Message:     in.Message,
		CreatedAt:   time.Now().UTC(),
	}
	if in.ActionURL != "" {
		url := in.ActionURL
		n.ActionURL = &url
	}
	if in.ActionType != "" {
		at := in.ActionType
		n.ActionType = &at
	}
	return n
}
