package querycache

import (
	"encoding/json"
	"fmt"
	"time"
)

type dehydratedEntry struct {
	Key       Key             `json:"key"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type dehydratedState struct {
	Version int               `json:"version"`
	Entries []dehydratedEntry `json:"entries"`
}

const stateVersion = 1

// Dehydrate serializes every entry holding data.
func (c *Cache) Dehydrate() ([]byte, error) {
	c.mu.Lock()
	state := dehydratedState{Version: stateVersion}
	for _, e := range c.entries {
		if !e.hasData || !json.Valid(e.data) {
			continue
		}
		state.Entries = append(state.Entries, dehydratedEntry{
			Key:       e.key.clone(),
			Data:      cloneBytes(e.data),
			UpdatedAt: e.updatedAt,
		})
	}
	c.mu.Unlock()
	return json.Marshal(state)
}

// Hydrate loads a Dehydrate result. Entries past their GCTime and entries
// older than what the cache already holds are skipped. It returns the
// number of entries restored.
func (c *Cache) Hydrate(data []byte) (int, error) {
	var state dehydratedState
	if err := json.Unmarshal(data, &state); err != nil {
		return 0, fmt.Errorf("hydrate: %w", err)
	}
	if state.Version != stateVersion {
		return 0, fmt.Errorf("hydrate: unsupported version %d", state.Version)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	restored := 0
	for _, de := range state.Entries {
		if len(de.Key) == 0 || now.Sub(de.UpdatedAt) > c.optionsFor(de.Key).GCTime {
			continue
		}
		e := c.lookup(de.Key, true)
		if e.hasData && !e.updatedAt.Before(de.UpdatedAt) {
			continue
		}
		e.data = cloneBytes(de.Data)
		e.hasData = true
		e.updatedAt = de.UpdatedAt
		e.usedAt = now
		restored++
	}
	return restored, nil
}
