package upstream

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend error")

func TestBreaker_OpensAfterMaxFailures(t *testing.T) {
	b := NewBreaker(3, time.Minute)

	for i := 0; i < 3; i++ {
		err := b.Call(func() error { return errBackend })
		require.Error(t, err)
	}

	assert.Equal(t, BreakerOpen, b.State())

	err := b.Call(func() error { return nil })
	assert.ErrorIs(t, err, ErrBreakerOpen)
}

func TestBreaker_SuccessResetsFailureStreak(t *testing.T) {
	b := NewBreaker(3, time.Minute)

	b.Call(func() error { return errBackend })
	b.Call(func() error { return errBackend })
	b.Call(func() error { return nil })
	b.Call(func() error { return errBackend })
	b.Call(func() error { return errBackend })

	assert.Equal(t, BreakerClosed, b.State())
}

func TestBreaker_HalfOpenProbeCloses(t *testing.T) {
	b := NewBreaker(1, 20*time.Millisecond)

	b.Call(func() error { return errBackend })
	require.Equal(t, BreakerOpen, b.State())

	time.Sleep(30 * time.Millisecond)

	err := b.Call(func() error { return nil })
	require.NoError(t, err)
	assert.Equal(t, BreakerClosed, b.State())
}

func TestBreaker_HalfOpenProbeFailureReopens(t *testing.T) {
	b := NewBreaker(1, 20*time.Millisecond)

	b.Call(func() error { return errBackend })
	time.Sleep(30 * time.Millisecond)

	err := b.Call(func() error { return errBackend })
	require.Error(t, err)
	assert.Equal(t, BreakerOpen, b.State())
}

func TestBreaker_Reset(t *testing.T) {
	b := NewBreaker(1, time.Minute)

	b.Call(func() error { return errBackend })
	require.Equal(t, BreakerOpen, b.State())

	b.Reset()
	assert.Equal(t, BreakerClosed, b.State())

	err := b.Call(func() error { return nil })
	assert.NoError(t, err)
}
