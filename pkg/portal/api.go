// Package portal is the client side of the procurement portal: cached
// queries, optimistic mutations and unread-count polling on top of
// querycache and apiclient.
package portal

import (
	"context"
	"encoding/json"

	"github.com/ltaportal/procurement/pkg/apiclient"
)

// API is the subset of *apiclient.Client the portal uses.
type API interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
	Patch(ctx context.Context, path string, body any) (json.RawMessage, error)
	Delete(ctx context.Context, path string) (json.RawMessage, error)
}

var _ API = (*apiclient.Client)(nil)

// dataFetcher loads path and keeps the "data" member of the response.
func dataFetcher(api API, path string) func(ctx context.Context) ([]byte, error) {
	return func(ctx context.Context) ([]byte, error) {
		raw, err := api.Get(ctx, path)
		if err != nil {
			return nil, err
		}
		env, err := apiclient.Decode[apiclient.Envelope[json.RawMessage]](raw)
		if err != nil {
			return nil, err
		}
		if len(env.Data) == 0 || string(env.Data) == "null" {
			return []byte("[]"), nil
		}
		return env.Data, nil
	}
}
