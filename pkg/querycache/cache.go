// Package querycache is a client-side cache of API responses keyed by URL
// path segments, with per-tier freshness, request de-duplication, retry
// and optimistic mutations.
package querycache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrNoFetcher = errors.New("querycache: no fetcher registered for key")
	ErrCancelled = errors.New("querycache: query cancelled")
)

// Fetcher loads the raw JSON for one key.
type Fetcher func(ctx context.Context) ([]byte, error)

type call struct {
	done      chan struct{}
	data      []byte
	err       error
	cancel    context.CancelFunc
	cancelled bool
}

type entry struct {
	key       Key
	data      []byte
	hasData   bool
	updatedAt time.Time
	usedAt    time.Time
	invalid   bool
	fetcher   Fetcher
	inflight  *call
}

// Cache is safe for concurrent use. Construct one per session and pass it
// to every consumer.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	optionsFor func(Key) Options
	queries    Policy
	mutations  Policy
	now        func() time.Time
	logger     *zap.Logger
}

type Option func(*Cache)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithRetry replaces the query and mutation retry policies.
func WithRetry(queries, mutations Policy) Option {
	return func(c *Cache) {
		c.queries = queries
		c.mutations = mutations
	}
}

// WithOptions replaces the key to freshness mapping.
func WithOptions(fn func(Key) Options) Option {
	return func(c *Cache) { c.optionsFor = fn }
}

func New(opts ...Option) *Cache {
	c := &Cache{
		entries:    map[string]*entry{},
		optionsFor: OptionsFor,
		queries:    QueryPolicy,
		mutations:  MutationPolicy,
		now:        time.Now,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

// lookup returns the entry for key, creating it when create is set.
// Callers hold c.mu.
func (c *Cache) lookup(key Key, create bool) *entry {
	id := key.id()
	e, ok := c.entries[id]
	if !ok && create {
		e = &entry{key: key.clone(), usedAt: c.now()}
		c.entries[id] = e
	}
	return e
}

func (c *Cache) matching(prefix Key) []*entry {
	var out []*entry
	for _, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			out = append(out, e)
		}
	}
	return out
}

func (c *Cache) isStale(e *entry) bool {
	if !e.hasData || e.invalid {
		return true
	}
	return c.now().Sub(e.updatedAt) >= c.optionsFor(e.key).StaleTime
}

// Fetch returns fresh cached data for key or loads it with fetcher.
// Concurrent fetches of one key share a single request. fetcher is
// remembered for Refetch and invalidation. A nil fetcher reuses the
// registered one.
func (c *Cache) Fetch(ctx context.Context, key Key, fetcher Fetcher) ([]byte, error) {
	c.mu.Lock()
	e := c.lookup(key, true)
	if fetcher != nil {
		e.fetcher = fetcher
	}
	e.usedAt = c.now()
	if !c.isStale(e) {
		data := cloneBytes(e.data)
		c.mu.Unlock()
		return data, nil
	}
	if e.fetcher == nil && e.inflight == nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNoFetcher, key)
	}
	cl := c.start(ctx, e)
	c.mu.Unlock()
	return c.wait(ctx, cl)
}

// Refetch loads key again regardless of freshness, joining a request
// already in flight.
func (c *Cache) Refetch(ctx context.Context, key Key) ([]byte, error) {
	c.mu.Lock()
	e := c.lookup(key, false)
	if e == nil || e.fetcher == nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNoFetcher, key)
	}
	cl := c.start(ctx, e)
	c.mu.Unlock()
	return c.wait(ctx, cl)
}

// Refresh registers fetcher for key and loads it regardless of
// freshness, joining a request already in flight.
func (c *Cache) Refresh(ctx context.Context, key Key, fetcher Fetcher) ([]byte, error) {
	c.mu.Lock()
	e := c.lookup(key, true)
	e.fetcher = fetcher
	e.usedAt = c.now()
	cl := c.start(ctx, e)
	c.mu.Unlock()
	return c.wait(ctx, cl)
}

// start returns the in-flight call for e or launches one. Callers hold c.mu.
func (c *Cache) start(ctx context.Context, e *entry) *call {
	if e.inflight != nil {
		return e.inflight
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	cl := &call{done: make(chan struct{}), cancel: cancel}
	e.inflight = cl
	fetcher := e.fetcher
	key := e.key

	go func() {
		defer cancel()
		var data []byte
		err := c.queries.Do(fetchCtx, func(ctx context.Context) error {
			var ferr error
			data, ferr = fetcher(ctx)
			return ferr
		}, func(err error, wait time.Duration) {
			c.logger.Debug("query retry", zap.String("key", key.String()), zap.Duration("wait", wait), zap.Error(err))
		})

		c.mu.Lock()
		switch {
		case cl.cancelled:
			cl.err = ErrCancelled
		case err != nil:
			cl.err = err
		default:
			cl.data = data
			e.data = cloneBytes(data)
			e.hasData = true
			e.invalid = false
			e.updatedAt = c.now()
		}
		if e.inflight == cl {
			e.inflight = nil
		}
		c.mu.Unlock()
		close(cl.done)
	}()
	return cl
}

func (c *Cache) wait(ctx context.Context, cl *call) ([]byte, error) {
	select {
	case <-cl.done:
		return cloneBytes(cl.data), cl.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// CancelQueries aborts in-flight fetches for keys under prefix. Their
// results are discarded and never written to the cache.
func (c *Cache) CancelQueries(prefix Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.matching(prefix) {
		if cl := e.inflight; cl != nil {
			cl.cancelled = true
			cl.cancel()
			e.inflight = nil
		}
	}
}

// InvalidateQueries marks keys under prefix stale and refetches those
// with a registered fetcher. Refetch errors are returned joined.
func (c *Cache) InvalidateQueries(ctx context.Context, prefix Key) error {
	c.mu.Lock()
	var refetch []Key
	for _, e := range c.matching(prefix) {
		e.invalid = true
		if e.fetcher != nil {
			refetch = append(refetch, e.key.clone())
		}
	}
	c.mu.Unlock()

	var errs []error
	for _, key := range refetch {
		if _, err := c.Refetch(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("refetch %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// GetQueryData returns a copy of the cached bytes for key.
func (c *Cache) GetQueryData(key Key) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.lookup(key, false)
	if e == nil || !e.hasData {
		return nil, false
	}
	e.usedAt = c.now()
	return cloneBytes(e.data), true
}

// SetQueryData stores data for key as fresh.
func (c *Cache) SetQueryData(key Key, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.lookup(key, true)
	e.data = cloneBytes(data)
	e.hasData = true
	e.invalid = false
	e.updatedAt = c.now()
	e.usedAt = e.updatedAt
}

// RemoveQueries drops entries under prefix, fetchers included.
func (c *Cache) RemoveQueries(prefix Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.matching(prefix) {
		if e.inflight != nil {
			e.inflight.cancelled = true
			e.inflight.cancel()
		}
		delete(c.entries, e.key.id())
	}
}

// IsStale reports whether a read of key would go to the network.
func (c *Cache) IsStale(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.lookup(key, false)
	return e == nil || c.isStale(e)
}

type snapshotEntry struct {
	key       Key
	data      []byte
	present   bool
	updatedAt time.Time
}

// Snapshot holds the exact bytes of a set of entries.
type Snapshot struct {
	entries map[string]snapshotEntry
}

// Snapshot captures every entry under each prefix, and records each
// prefix itself as absent when it has no data.
func (c *Cache) Snapshot(prefixes ...Key) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{entries: map[string]snapshotEntry{}}
	for _, p := range prefixes {
		s.entries[p.id()] = snapshotEntry{key: p.clone()}
		for _, e := range c.matching(p) {
			if !e.hasData {
				continue
			}
			s.entries[e.key.id()] = snapshotEntry{
				key:       e.key.clone(),
				data:      cloneBytes(e.data),
				present:   true,
				updatedAt: e.updatedAt,
			}
		}
	}
	return s
}

// Restore puts every snapshotted entry back byte for byte. Entries that
// were absent lose any data written since.
func (c *Cache) Restore(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, se := range s.entries {
		e := c.lookup(se.key, se.present)
		if e == nil {
			continue
		}
		if !se.present {
			e.data, e.hasData = nil, false
			continue
		}
		e.data = cloneBytes(se.data)
		e.hasData = true
		e.updatedAt = se.updatedAt
	}
}

// Equal reports whether two snapshots hold the same keys and bytes.
func (s Snapshot) Equal(o Snapshot) bool {
	if len(s.entries) != len(o.entries) {
		return false
	}
	for id, a := range s.entries {
		b, ok := o.entries[id]
		if !ok || a.present != b.present || !bytes.Equal(a.data, b.data) {
			return false
		}
	}
	return true
}

// GC drops entries unused for longer than their GCTime. Entries with a
// request in flight are kept.
func (c *Cache) GC() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	removed := 0
	for id, e := range c.entries {
		if e.inflight != nil {
			continue
		}
		if now.Sub(e.usedAt) > c.optionsFor(e.key).GCTime {
			delete(c.entries, id)
			removed++
		}
	}
	return removed
}

// StartGC runs GC every interval until ctx is done or stop is called.
func (c *Cache) StartGC(ctx context.Context, interval time.Duration) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := c.GC(); n > 0 {
					c.logger.Debug("query cache gc", zap.Int("removed", n))
				}
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

// RefetchOnFocus refetches stale entries whose tier asks for it. Call it
// when the host window regains focus.
func (c *Cache) RefetchOnFocus(ctx context.Context) error {
	c.mu.Lock()
	var keys []Key
	for _, e := range c.entries {
		if e.fetcher != nil && c.optionsFor(e.key).RefetchOnWindowFocus && c.isStale(e) {
			keys = append(keys, e.key.clone())
		}
	}
	c.mu.Unlock()

	var errs []error
	for _, key := range keys {
		if _, err := c.Refetch(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
