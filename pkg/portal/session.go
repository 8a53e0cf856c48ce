package portal

import (
	"context"
	"fmt"

	"github.com/ltaportal/procurement/pkg/querycache"
	"go.uber.org/zap"
)

const (
	languageKey   = "language"
	cacheStateKey = "query_cache"
)

// Store persists small values across runs. localstore.Store implements it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Session owns the state restored at startup: the language preference
// and the query cache.
type Session struct {
	Cache  *querycache.Cache
	Locale *Locale

	store  Store
	logger *zap.Logger
}

// RestoreSession loads the saved language and hydrates cache. A saved
// cache that cannot be read is logged and ignored.
func RestoreSession(ctx context.Context, store Store, cache *querycache.Cache, logger *zap.Logger) (*Session, error) {
	s := &Session{Cache: cache, Locale: NewLocale(English), store: store, logger: logger}

	lang, ok, err := store.Get(ctx, languageKey)
	if err != nil {
		return nil, fmt.Errorf("loading language: %w", err)
	}
	if ok {
		s.Locale.Set(ParseLanguage(string(lang)))
	}

	state, ok, err := store.Get(ctx, cacheStateKey)
	if err != nil {
		return nil, fmt.Errorf("loading query cache: %w", err)
	}
	if ok {
		n, err := cache.Hydrate(state)
		if err != nil {
			logger.Warn("discarding saved query cache", zap.Error(err))
		} else {
			logger.Debug("query cache restored", zap.Int("entries", n))
		}
	}
	return s, nil
}

func (s *Session) Language() Language {
	return s.Locale.Language()
}

// SetLanguage switches and saves the language preference.
func (s *Session) SetLanguage(ctx context.Context, lang Language) error {
	s.Locale.Set(lang)
	if err := s.store.Put(ctx, languageKey, []byte(lang)); err != nil {
		return fmt.Errorf("saving language: %w", err)
	}
	return nil
}

// Persist saves the query cache for the next RestoreSession.
func (s *Session) Persist(ctx context.Context) error {
	state, err := s.Cache.Dehydrate()
	if err != nil {
		return fmt.Errorf("dehydrating query cache: %w", err)
	}
	if err := s.store.Put(ctx, cacheStateKey, state); err != nil {
		return fmt.Errorf("saving query cache: %w", err)
	}
	return nil
}
