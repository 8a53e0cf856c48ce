package domain

import "errors"

var (
	ErrProductNotFound       = errors.New("product not found")
	ErrVendorNotFound        = errors.New("vendor not found")
	ErrDuplicateSKU          = errors.New("a product with this sku already exists")
	ErrDuplicateVendorNumber = errors.New("a vendor with this number already exists")
	ErrUnknownVendor         = errors.New("vendor does not exist")
	ErrNegativePrice         = errors.New("price cannot be negative")
)
