package querycache

import (
	"context"

	"go.uber.org/zap"
)

// Optimistic describes a mutation whose effect is shown before the server
// confirms it.
type Optimistic[T any] struct {
	// Keys are cancelled, snapshotted and invalidated as prefixes.
	Keys []Key
	// Apply patches the cache synchronously.
	Apply func(c *Cache) error
	// Mutate issues the request. It runs under the mutation retry policy.
	Mutate func(ctx context.Context) (T, error)
	// OnError runs after the rollback, for example to show a toast.
	OnError func(err error)
}

// RunOptimistic cancels in-flight fetches of m.Keys, snapshots them,
// applies the patch and sends the mutation. A failed mutation restores
// the snapshot. Either way the keys are invalidated afterwards.
func RunOptimistic[T any](ctx context.Context, c *Cache, m Optimistic[T]) (T, error) {
	for _, k := range m.Keys {
		c.CancelQueries(k)
	}
	snap := c.Snapshot(m.Keys...)

	var (
		result T
		err    error
	)
	if m.Apply != nil {
		err = m.Apply(c)
	}
	if err == nil {
		result, err = Mutate(ctx, c, m.Mutate)
	}
	if err != nil {
		c.Restore(snap)
		if m.OnError != nil {
			m.OnError(err)
		}
	}

	settle := context.WithoutCancel(ctx)
	for _, k := range m.Keys {
		if ierr := c.InvalidateQueries(settle, k); ierr != nil {
			c.logger.Warn("invalidate after mutation failed", zap.String("key", k.String()), zap.Error(ierr))
		}
	}
	return result, err
}
