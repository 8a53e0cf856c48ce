package domain

import (
	"crypto/rand"
	"time"
)

const (
	RequestPrefix = "PR"
	OfferPrefix   = "PO"
)

const numberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewNumber returns a human-readable reference like PO-20250301-7KQ2MX.
func NewNumber(prefix string, now time.Time) string {
	suffix := make([]byte, 6)
	rand.Read(suffix)
	for i, b := range suffix {
		suffix[i] = numberAlphabet[int(b)%len(numberAlphabet)]
	}
	return prefix + "-" + now.UTC().Format("20060102") + "-" + string(suffix)
}
