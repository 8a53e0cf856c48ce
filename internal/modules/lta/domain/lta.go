package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

var transitions = map[Status][]Status{
	StatusDraft:    {StatusActive, StatusInactive},
	StatusActive:   {StatusInactive},
	StatusInactive: {StatusActive},
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether an LTA may move from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// DefaultTerm is how long an LTA runs when activated without explicit dates.
const DefaultTerm = 365 * 24 * time.Hour

// Lta is a long-term agreement fixing contract prices for one client.
type Lta struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	ClientID  uuid.UUID  `json:"client_id" db:"client_id"`
	NameEn    string     `json:"name_en" db:"name_en"`
	NameAr    string     `json:"name_ar" db:"name_ar"`
	Status    Status     `json:"status" db:"status"`
	Currency  string     `json:"currency" db:"currency"`
	StartDate *time.Time `json:"start_date,omitempty" db:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty" db:"end_date"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// LtaProduct is the contract price of one product under one LTA.
type LtaProduct struct {
	ID            uuid.UUID `json:"id" db:"id"`
	LtaID         uuid.UUID `json:"lta_id" db:"lta_id"`
	ProductID     uuid.UUID `json:"product_id" db:"product_id"`
	ContractPrice float64   `json:"contract_price" db:"contract_price"`
	Currency      string    `json:"currency" db:"currency"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// ContractedProduct is a product as a client sees it: catalog data plus
// the contract price of the LTA that covers it.
type ContractedProduct struct {
	LtaID         uuid.UUID `json:"lta_id" db:"lta_id"`
	ProductID     uuid.UUID `json:"product_id" db:"product_id"`
	SKU           string    `json:"sku" db:"sku"`
	NameEn        string    `json:"name_en" db:"name_en"`
	NameAr        string    `json:"name_ar" db:"name_ar"`
	Category      *string   `json:"category,omitempty" db:"category"`
	Unit          string    `json:"unit" db:"unit"`
	ThumbnailURL  *string   `json:"thumbnail_url,omitempty" db:"thumbnail_url"`
	ContractPrice float64   `json:"contract_price" db:"contract_price"`
	Currency      string    `json:"currency" db:"currency"`
}

// ContractLine is one product/price pair written by UpsertProducts.
type ContractLine struct {
	ProductID     uuid.UUID
	ContractPrice float64
}

type LtaFilter struct {
	ClientID *uuid.UUID
	Status   Status
	Limit    int
	Offset   int
}

type LtaRepository interface {
	Create(ctx context.Context, lta *Lta) error
	GetByID(ctx context.Context, id uuid.UUID) (*Lta, error)
	List(ctx context.Context, filter LtaFilter) ([]Lta, error)
	// UpdateStatus moves the LTA from `from` to `to` and fails with
	// ErrStatusConflict when the stored status is no longer `from`.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, start, end *time.Time) error

	UpsertProduct(ctx context.Context, p *LtaProduct) error
	RemoveProduct(ctx context.Context, ltaID, productID uuid.UUID) error
	ListProducts(ctx context.Context, ltaID uuid.UUID) ([]LtaProduct, error)
	GetProduct(ctx context.Context, ltaID, productID uuid.UUID) (*LtaProduct, error)
	ListContractedProducts(ctx context.Context, clientID uuid.UUID) ([]ContractedProduct, error)
}
