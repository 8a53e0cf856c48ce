package domain

import "errors"

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrModificationNotFound    = errors.New("modification not found")
	ErrEmptyOrder              = errors.New("order has no items")
	ErrInvalidQuantity         = errors.New("quantity must be positive")
	ErrLtaUnavailable          = errors.New("agreement is not active for this client")
	ErrProductNotContracted    = errors.New("product is not part of the agreement")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrStatusConflict          = errors.New("order status changed concurrently")
	ErrReasonRequired          = errors.New("a reason is required")
	ErrModificationNotAllowed  = errors.New("order can no longer be modified")
	ErrModificationPending     = errors.New("a modification is already pending")
	ErrModificationReviewed    = errors.New("modification already reviewed")
)
