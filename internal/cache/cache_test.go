package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache map[string][]byte

func (m mapCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m mapCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m[key] = value
	return nil
}

func (m mapCache) Delete(ctx context.Context, key string) error {
	delete(m, key)
	return nil
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c := mapCache{}

	require.NoError(t, SetJSON(ctx, c, "tests:all", []string{"CBC", "LFT"}, time.Minute))

	var got []string
	assert.True(t, GetJSON(ctx, c, "tests:all", &got))
	assert.Equal(t, []string{"CBC", "LFT"}, got)

	c["broken"] = []byte("{")
	assert.False(t, GetJSON(ctx, c, "broken", &got))
	assert.False(t, GetJSON(ctx, c, "missing", &got))
}

func TestNoopAndNilCache(t *testing.T) {
	ctx := context.Background()
	var out []string

	require.NoError(t, SetJSON(ctx, NewNoop(), "k", []string{"x"}, time.Minute))
	assert.False(t, GetJSON(ctx, NewNoop(), "k", &out))
	assert.False(t, GetJSON(ctx, nil, "k", &out))
	assert.NoError(t, SetJSON(ctx, nil, "k", out, time.Minute))
}

func TestNewRedisFromURLRejectsBadScheme(t *testing.T) {
	_, err := NewRedisFromURL("http://localhost:6379")
	assert.Error(t, err)

	c, err := NewRedisFromURL("redis://:secret@localhost:6379/2")
	require.NoError(t, err)
	assert.NoError(t, c.Close())
}
