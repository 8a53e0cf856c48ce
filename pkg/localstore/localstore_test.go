package localstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.db")
	s, err := Open(path)
	require.NoError(t, err)
	return s, path
}

func TestStore_PutGetDelete(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "language")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "language", []byte("en")))
	require.NoError(t, s.Put(ctx, "language", []byte("ar")))

	v, ok, err := s.Get(ctx, "language")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("ar"), v)

	require.NoError(t, s.Delete(ctx, "language"))
	_, ok, err = s.Get(ctx, "language")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_EmptyValue(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "empty", nil))
	v, ok, err := s.Get(ctx, "empty")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestStore_SurvivesReopen(t *testing.T) {
	s, path := openTemp(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "query_cache", []byte(`{"version":1,"entries":[]}`)))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	v, ok, err := reopened.Get(ctx, "query_cache")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"version":1,"entries":[]}`, string(v))
}
