package querycache

import "strings"

// Key identifies a cache entry by URL path segments, for example
// Key{"/api/client/orders", "pending"}.
type Key []string

// HasPrefix reports whether prefix matches the leading segments of k.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

func (k Key) String() string {
	return strings.Join(k, " ")
}

func (k Key) id() string {
	return strings.Join(k, "\x1f")
}

func (k Key) clone() Key {
	return append(Key(nil), k...)
}
