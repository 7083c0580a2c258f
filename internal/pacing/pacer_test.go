package pacing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockpick/internal/contracts"
)

func TestFixed_WaitsEveryCall(t *testing.T) {
	pacer := NewFixed(20 * time.Millisecond)

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, pacer.Wait(context.Background()))
	}

	// 첫 호출 전에도 대기
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestFixed_ZeroInterval(t *testing.T) {
	pacer := NewFixed(0)
	assert.NoError(t, pacer.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pacer.Wait(ctx), context.Canceled)
}

func TestFixed_Cancelled(t *testing.T) {
	pacer := NewFixed(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := pacer.Wait(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestLimiter_SharedAcrossGoroutines(t *testing.T) {
	limiter := NewLimiter(20 * time.Millisecond)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, limiter.Wait(context.Background()))
		}()
	}
	wg.Wait()

	// burst 1: 첫 토큰은 즉시, 나머지 3개는 20ms 간격
	assert.GreaterOrEqual(t, time.Since(start), 55*time.Millisecond)
}

func TestLimiter_ZeroIntervalIsUnlimited(t *testing.T) {
	limiter := NewLimiter(0)

	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, limiter.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), time.Second)
}

type countingPacer struct {
	calls int
	err   error
}

func (c *countingPacer) Wait(ctx context.Context) error {
	c.calls++
	return c.err
}

func TestChain(t *testing.T) {
	first := &countingPacer{}
	second := &countingPacer{}

	require.NoError(t, Chain{first, second}.Wait(context.Background()))
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)

	failing := &countingPacer{err: errors.New("redis down")}
	third := &countingPacer{}
	var chain contracts.Pacer = Chain{failing, third}
	assert.Error(t, chain.Wait(context.Background()))
	assert.Equal(t, 0, third.calls)
}
