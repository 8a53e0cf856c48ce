package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrClientNotFound = errors.New("client not found")

// Client is a portal account. Admins are clients with IsAdmin set.
type Client struct {
	ID        uuid.UUID `json:"id" db:"id"`
	NameEn    string    `json:"name_en" db:"name_en"`
	NameAr    string    `json:"name_ar" db:"name_ar"`
	Email     string    `json:"email" db:"email"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	IsAdmin   bool      `json:"is_admin" db:"is_admin"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Name returns the display name for lang, falling back to English.
func (c Client) Name(lang string) string {
	if lang == "ar" && c.NameAr != "" {
		return c.NameAr
	}
	return c.NameEn
}

type ClientRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Client, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]Client, error)
	ListAdminIDs(ctx context.Context) ([]uuid.UUID, error)
}
