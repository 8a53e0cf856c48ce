package querycache

import (
	"context"
	"encoding/json"
	"fmt"
)

// FetchQuery is Fetch with the result decoded into a T.
func FetchQuery[T any](ctx context.Context, c *Cache, key Key, fetcher Fetcher) (T, error) {
	var v T
	data, err := c.Fetch(ctx, key, fetcher)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decode %s: %w", key, err)
	}
	return v, nil
}

// GetQueryData decodes the cached value of key.
func GetQueryData[T any](c *Cache, key Key) (T, bool, error) {
	var v T
	data, ok := c.GetQueryData(key)
	if !ok {
		return v, false, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, true, fmt.Errorf("decode %s: %w", key, err)
	}
	return v, true, nil
}

func SetQueryData[T any](c *Cache, key Key, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	c.SetQueryData(key, data)
	return nil
}

// UpdateQueryData rewrites the cached value of key with fn. It does
// nothing when key holds no data.
func UpdateQueryData[T any](c *Cache, key Key, fn func(T) T) (bool, error) {
	v, ok, err := GetQueryData[T](c, key)
	if err != nil || !ok {
		return false, err
	}
	return true, SetQueryData(c, key, fn(v))
}

// Mutate runs fn under the cache's mutation retry policy.
func Mutate[T any](ctx context.Context, c *Cache, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := c.mutations.Do(ctx, func(ctx context.Context) error {
		var ferr error
		result, ferr = fn(ctx)
		return ferr
	}, nil)
	return result, err
}
