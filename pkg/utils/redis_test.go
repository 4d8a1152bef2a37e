package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-harvester/internal/config"
	"review-harvester/pkg/models"
)

func newTestCache(t *testing.T, ttl time.Duration) (*ReviewCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewReviewCacheWithClient(client, ttl), mr
}

func TestReviewCache_Miss(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)

	reviews, ok, err := cache.Get(context.Background(), "https://pt.aliexpress.com/item/1.html")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, reviews)
}

func TestReviewCache_SetGet(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()
	url := "https://pt.aliexpress.com/item/1.html?spm=abc"

	want := []models.Review{{
		ReviewDraft: models.ReviewDraft{Text: "Ótimo", Rating: 5, Images: []string{"https://a/1.jpg"}},
		Name:        "Ana Maria Silva",
	}}
	require.NoError(t, cache.Set(ctx, url, want))

	got, ok, err := cache.Get(ctx, url)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.NotContains(t, keys[0], "spm")
	assert.Equal(t, time.Minute, mr.TTL(keys[0]))
}

func TestReviewCache_Expiry(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "u", []models.Review{}))
	mr.FastForward(2 * time.Minute)

	_, ok, err := cache.Get(ctx, "u")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReviewCache_CorruptEntryIsMiss(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	require.NoError(t, mr.Set(cache.key("u"), "not json"))

	_, ok, err := cache.Get(context.Background(), "u")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReviewCache_Delete(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "u", []models.Review{}))
	require.NoError(t, cache.Delete(ctx, "u"))

	_, ok, err := cache.Get(ctx, "u")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReviewCache_ServerDown(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	mr.Close()

	_, _, err := cache.Get(context.Background(), "u")
	assert.Error(t, err)
	assert.Error(t, cache.Ping(context.Background()))
}

func TestNewReviewCache_FromConfig(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Redis.URL = "redis://" + mr.Addr()

	cache := NewReviewCache(cfg)
	t.Cleanup(func() { _ = cache.Close() })
	require.NoError(t, cache.Ping(context.Background()))
	assert.Equal(t, cfg.Redis.TTL, cache.ttl)
}
