package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockpick/pkg/config"
)

func TestNewClient_Disabled(t *testing.T) {
	client, err := New(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestRateLimiter_Disabled(t *testing.T) {
	client, _ := New(context.Background(), &config.Config{})
	limiter := NewRateLimiter(client, "test", MinIntervalConfig("yahoo", time.Second))

	// Redis 비활성화 시 모든 요청 허용
	allowed, remaining, err := limiter.Allow(context.Background())
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, remaining)

	assert.NoError(t, limiter.Wait(context.Background()))
}

func TestMinIntervalConfig(t *testing.T) {
	cfg := MinIntervalConfig("yahoo", 2*time.Second)
	assert.Equal(t, "yahoo", cfg.Key)
	assert.Equal(t, 1, cfg.Limit)
	assert.Equal(t, 2*time.Second, cfg.Window)
}

func TestRateLimiter_Integration(t *testing.T) {
	if os.Getenv("REDIS_ENABLED") != "true" {
		t.Skip("REDIS_ENABLED not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	ctx := context.Background()
	client, err := New(ctx, cfg)
	require.NoError(t, err)
	defer client.Close()

	limiter := NewRateLimiter(client, "stockpick-test-"+time.Now().Format("150405.000"), MinIntervalConfig("yahoo", 300*time.Millisecond))

	allowed, _, err := limiter.Allow(ctx)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, _, err = limiter.Allow(ctx)
	require.NoError(t, err)
	assert.False(t, allowed, "second request inside the window must be rejected")

	start := time.Now()
	require.NoError(t, limiter.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}
