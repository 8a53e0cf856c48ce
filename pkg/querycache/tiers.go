package querycache

import (
	"strings"
	"time"
)

// Tier groups resources by how quickly they change.
type Tier int

const (
	Static Tier = iota
	SemiDynamic
	SemiDynamicLong
	Frequent
	Realtime
)

// Options are the freshness settings of a cache entry. Data older than
// StaleTime is refetched on the next read; an entry unused for GCTime is
// dropped.
type Options struct {
	StaleTime            time.Duration
	GCTime               time.Duration
	RefetchOnWindowFocus bool
}

var tierOptions = map[Tier]Options{
	Static:          {StaleTime: 30 * time.Minute, GCTime: 60 * time.Minute},
	SemiDynamic:     {StaleTime: 5 * time.Minute, GCTime: 10 * time.Minute},
	SemiDynamicLong: {StaleTime: 10 * time.Minute, GCTime: 20 * time.Minute},
	Frequent:        {StaleTime: time.Minute, GCTime: 3 * time.Minute, RefetchOnWindowFocus: true},
	Realtime:        {StaleTime: 30 * time.Second, GCTime: 60 * time.Second},
}

func (t Tier) Options() Options {
	if o, ok := tierOptions[t]; ok {
		return o
	}
	return tierOptions[SemiDynamic]
}

func (t Tier) String() string {
	switch t {
	case Static:
		return "static"
	case SemiDynamic:
		return "semi-dynamic"
	case SemiDynamicLong:
		return "semi-dynamic-long"
	case Frequent:
		return "frequent"
	case Realtime:
		return "realtime"
	}
	return "unknown"
}

// Longest matching prefix wins.
var tierPrefixes = []struct {
	prefix string
	tier   Tier
}{
	{"/api/client/notifications", Realtime},
	{"/api/admin/notifications", Realtime},
	{"/api/client/orders", Frequent},
	{"/api/admin/orders", Frequent},
	{"/api/admin/order-modifications", Frequent},
	{"/api/client/price-offers", Frequent},
	{"/api/admin/price-offers", Frequent},
	{"/api/admin/price-requests", Frequent},
	{"/api/client/price-requests", Frequent},
	{"/api/client/issues", Frequent},
	{"/api/admin/issues", Frequent},
	{"/api/admin/clients", SemiDynamic},
	{"/api/client/me", SemiDynamic},
	{"/api/client/ltas", SemiDynamic},
	{"/api/admin/ltas", SemiDynamic},
	{"/api/client/documents", SemiDynamic},
	{"/api/admin/documents", SemiDynamic},
	{"/api/admin/templates", SemiDynamicLong},
	{"/api/admin/feedback", SemiDynamicLong},
	{"/api/products", Static},
	{"/api/client/products", Static},
	{"/api/admin/vendors", Static},
}

// TierFor maps a key to its tier by the longest known path prefix of its
// first segment. Unknown keys are SemiDynamic.
func TierFor(key Key) Tier {
	if len(key) == 0 {
		return SemiDynamic
	}
	best, bestLen := SemiDynamic, -1
	for _, p := range tierPrefixes {
		if strings.HasPrefix(key[0], p.prefix) && len(p.prefix) > bestLen {
			best, bestLen = p.tier, len(p.prefix)
		}
	}
	return best
}

func OptionsFor(key Key) Options {
	return TierFor(key).Options()
}
