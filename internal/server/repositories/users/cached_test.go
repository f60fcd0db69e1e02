package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cuxvas/peliculas/internal/common"
	"github.com/cuxvas/peliculas/internal/logging"
	"github.com/cuxvas/peliculas/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

type memCache struct {
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	b, ok := m.data[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return b, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type countingFinder struct {
	p     *auth.Principal
	err   error
	calls int
}

func (f *countingFinder) FindPrincipal(context.Context, string) (*auth.Principal, error) {
	f.calls++
	return f.p, f.err
}

func TestCachedFinder_ReadThrough(t *testing.T) {
	store := &countingFinder{p: &auth.Principal{ID: "u1", Roles: []string{"Usuario"}, Claims: map[string]string{"k": "v"}}}
	cache := newMemCache()
	f := NewCachedFinder(store, cache, 5*time.Minute, nopLogger{})
	ctx := context.Background()

	first, err := f.FindPrincipal(ctx, "u1")
	require.NoError(t, err)
	second, err := f.FindPrincipal(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, 1, store.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, 5*time.Minute, cache.ttls["principal:u1"])

	require.NoError(t, f.Invalidate(ctx, "u1"))
	_, err = f.FindPrincipal(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, store.calls)
}

func TestCachedFinder_CacheFailuresFallBack(t *testing.T) {
	store := &countingFinder{p: &auth.Principal{ID: "u1"}}
	cache := newMemCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")
	f := NewCachedFinder(store, cache, time.Minute, nopLogger{})

	p, err := f.FindPrincipal(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.ID)
	assert.Equal(t, 1, store.calls)
}

func TestCachedFinder_CorruptEntry(t *testing.T) {
	store := &countingFinder{p: &auth.Principal{ID: "u1"}}
	cache := newMemCache()
	cache.data["principal:u1"] = []byte("{not json")
	f := NewCachedFinder(store, cache, time.Minute, nopLogger{})

	p, err := f.FindPrincipal(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.ID)
	assert.Equal(t, 1, store.calls)
	assert.JSONEq(t, `{"id":"u1"}`, string(cache.data["principal:u1"]))
}

func TestCachedFinder_StoreErrorNotCached(t *testing.T) {
	store := &countingFinder{err: common.ErrorNotFound}
	cache := newMemCache()
	f := NewCachedFinder(store, cache, time.Minute, nopLogger{})

	_, err := f.FindPrincipal(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Empty(t, cache.data)
}
