package upstream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPool(t *testing.T, strategy string) *Pool {
	t.Helper()

	pool, err := NewPool(PoolConfig{
		Targets:         []string{"http://app-1:3000", "http://app-2:3000"},
		Strategy:        strategy,
		BreakerFailures: 2,
		BreakerCooldown: time.Minute,
	})
	require.NoError(t, err)
	return pool
}

func TestPool_RequiresTargets(t *testing.T) {
	_, err := NewPool(PoolConfig{})
	assert.Error(t, err)
}

func TestPool_RoundRobinRotates(t *testing.T) {
	pool := testPool(t, "round-robin")

	first, err := pool.Pick()
	require.NoError(t, err)
	second, err := pool.Pick()
	require.NoError(t, err)
	third, err := pool.Pick()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, first, third)
}

func TestPool_SkipsUnhealthyTargets(t *testing.T) {
	pool := testPool(t, "round-robin")
	pool.MarkUnhealthy("http://app-1:3000")

	for i := 0; i < 4; i++ {
		target, err := pool.Pick()
		require.NoError(t, err)
		assert.Equal(t, "http://app-2:3000", target)
	}
}

func TestPool_NoUsableTargets(t *testing.T) {
	pool := testPool(t, "round-robin")
	pool.MarkUnhealthy("http://app-1:3000")
	pool.MarkUnhealthy("http://app-2:3000")

	_, err := pool.Pick()
	assert.ErrorIs(t, err, ErrNoHealthyTargets)
	assert.False(t, pool.HasHealthy())
}

func TestPool_SkipsOpenBreakers(t *testing.T) {
	pool := testPool(t, "round-robin")

	b := pool.Breaker("http://app-1:3000")
	b.Call(func() error { return errBackend })
	b.Call(func() error { return errBackend })
	require.Equal(t, BreakerOpen, b.State())

	for i := 0; i < 4; i++ {
		target, err := pool.Pick()
		require.NoError(t, err)
		assert.Equal(t, "http://app-2:3000", target)
	}
}

func TestPool_LeastConnectionsPrefersIdle(t *testing.T) {
	pool := testPool(t, "least-connections")

	pool.Acquire("http://app-1:3000")
	pool.Acquire("http://app-1:3000")
	pool.Acquire("http://app-2:3000")

	target, err := pool.Pick()
	require.NoError(t, err)
	assert.Equal(t, "http://app-2:3000", target)

	pool.Release("http://app-2:3000")
	pool.Release("http://app-2:3000") // extra release must not go negative

	target, err = pool.Pick()
	require.NoError(t, err)
	assert.Equal(t, "http://app-2:3000", target)
}

func TestPool_StartStop(t *testing.T) {
	pool, err := NewPool(PoolConfig{
		Targets:    []string{"http://127.0.0.1:1"},
		ProbeEvery: 10 * time.Millisecond,
	})
	require.NoError(t, err)

	pool.Start()
	time.Sleep(30 * time.Millisecond)
	pool.Stop()

	// The probe against a closed port marks the target unhealthy
	assert.False(t, pool.HasHealthy())
}
