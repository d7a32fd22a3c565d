package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisad "estate_dashboard/internal/adapters/redis"
	"estate_dashboard/internal/domain"
)

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_MissSetHit(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))

	var got domain.Insights
	ok, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	want := domain.Insights{Count: 2, MinPrice: 1, MaxPrice: 3, AveragePrice: 2,
		ModalBin: &domain.HistogramBin{Start: 1, End: 2, Count: 1}}
	require.NoError(t, c.Set(ctx, "k", want, 60))

	ok, err = c.Get(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestCache_TTLAndPrefix(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "dashboard:x", map[string]int{"a": 1}, 30))
	assert.True(t, mr.Exists("estate:dashboard:x"))
	assert.Equal(t, 30*time.Second, mr.TTL("estate:dashboard:x"))

	mr.FastForward(31 * time.Second)
	var out map[string]int
	ok, err := c.Get(ctx, "dashboard:x", &out)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_Del(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "gone", 1, 0))
	require.NoError(t, c.Del(ctx, "gone"))
	assert.False(t, mr.Exists("estate:gone"))
}
