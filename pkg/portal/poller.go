package portal

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPollInterval = 30 * time.Second
	pollFetchTimeout    = 15 * time.Second
)

// Visibility tracks whether the host surface is visible and tells
// subscribers about every change.
type Visibility struct {
	mu      sync.Mutex
	visible bool
	subs    map[int]chan bool
	nextID  int
}

func NewVisibility(visible bool) *Visibility {
	return &Visibility{visible: visible, subs: make(map[int]chan bool)}
}

func (v *Visibility) Visible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visible
}

// Set records the state. Subscribers only hear about actual changes and
// always see the latest value.
func (v *Visibility) Set(visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.setLocked(visible)
}

// Toggle flips the state and returns the new value.
func (v *Visibility) Toggle() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	next := !v.visible
	v.setLocked(next)
	return next
}

// setLocked requires v.mu.
func (v *Visibility) setLocked(visible bool) {
	if v.visible == visible {
		return
	}
	v.visible = visible
	for _, ch := range v.subs {
		select {
		case <-ch:
		default:
		}
		ch <- visible
	}
}

// Subscribe returns a channel of changes and a func that ends the
// subscription.
func (v *Visibility) Subscribe() (<-chan bool, func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	id := v.nextID
	v.nextID++
	ch := make(chan bool, 1)
	v.subs[id] = ch
	return ch, func() {
		v.mu.Lock()
		delete(v.subs, id)
		v.mu.Unlock()
	}
}

// UnreadSource refreshes the unread count. *Notifications implements it.
type UnreadSource interface {
	RefreshUnreadCount(ctx context.Context) (int, error)
}

// UnreadPoller refreshes the unread count on an interval while visible,
// and right away when the surface becomes visible again.
type UnreadPoller struct {
	source     UnreadSource
	visibility *Visibility
	logger     *zap.Logger
	interval   time.Duration
	onUpdate   func(count int)
	fetching   atomic.Bool
}

type PollerOption func(*UnreadPoller)

func WithPollInterval(d time.Duration) PollerOption {
	return func(p *UnreadPoller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithOnUpdate registers fn to receive every successfully fetched count.
func WithOnUpdate(fn func(count int)) PollerOption {
	return func(p *UnreadPoller) { p.onUpdate = fn }
}

func NewUnreadPoller(source UnreadSource, visibility *Visibility, logger *zap.Logger, opts ...PollerOption) *UnreadPoller {
	p := &UnreadPoller{
		source:     source,
		visibility: visibility,
		logger:     logger,
		interval:   DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PollHandle stops a running poller.
type PollHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Stop ends polling and waits for the loop to exit. A fetch already in
// progress still completes and writes its result. Stop may be called
// more than once.
func (h *PollHandle) Stop() {
	h.cancel()
	<-h.done
}

// Done is closed once the loop has exited.
func (h *PollHandle) Done() <-chan struct{} {
	return h.done
}

// Start runs the polling loop until ctx ends or Stop is called.
func (p *UnreadPoller) Start(ctx context.Context) *PollHandle {
	ctx, cancel := context.WithCancel(ctx)
	h := &PollHandle{cancel: cancel, done: make(chan struct{})}
	changes, unsubscribe := p.visibility.Subscribe()

	go func() {
		defer close(h.done)
		defer unsubscribe()

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		if p.visibility.Visible() {
			p.refresh(ctx)
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if p.visibility.Visible() {
					p.refresh(ctx)
				}
			case visible := <-changes:
				if visible {
					p.refresh(ctx)
				}
			}
		}
	}()
	return h
}

// refresh fetches in the background so Stop never waits on the network.
// Overlapping refreshes are skipped.
func (p *UnreadPoller) refresh(ctx context.Context) {
	if !p.fetching.CompareAndSwap(false, true) {
		return
	}
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pollFetchTimeout)
	go func() {
		defer cancel()
		defer p.fetching.Store(false)
		count, err := p.source.RefreshUnreadCount(fetchCtx)
		if err != nil {
			p.logger.Warn("unread count poll failed", zap.Error(err))
			return
		}
		if p.onUpdate != nil {
			p.onUpdate(count)
		}
	}()
}
