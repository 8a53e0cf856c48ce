package domain

import "errors"

var (
	ErrLtaNotFound             = errors.New("lta not found")
	ErrLtaNotActive            = errors.New("lta is not active")
	ErrProductNotContracted    = errors.New("product is not part of this lta")
	ErrUnknownProduct          = errors.New("product does not exist")
	ErrInvalidStatusTransition = errors.New("invalid lta status transition")
	ErrStatusConflict          = errors.New("lta status was changed by another request")
	ErrNegativePrice           = errors.New("contract price cannot be negative")
)
