package domain

import "errors"

var (
	ErrRequestNotFound         = errors.New("price request not found")
	ErrOfferNotFound           = errors.New("price offer not found")
	ErrNoItems                 = errors.New("at least one item is required")
	ErrInvalidQuantity         = errors.New("quantity must be positive")
	ErrNegativePrice           = errors.New("unit price cannot be negative")
	ErrUnknownProduct          = errors.New("unknown product")
	ErrLtaUnavailable          = errors.New("agreement cannot take new prices")
	ErrRequestNotPending       = errors.New("price request is no longer pending")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrStatusConflict          = errors.New("price offer status changed concurrently")
	ErrOfferExpired            = errors.New("price offer has expired")
	ErrOfferNotDraft           = errors.New("only draft offers can be changed")
	ErrInvalidValidity         = errors.New("valid_until must be in the future")
	ErrDuplicateNumber         = errors.New("document number already used")
)
