package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var (
	errBackend = errors.New("connection refused")
	errBusy    = errors.New("busy")
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newBreaker(clock *fakeClock, transitions *[]State) *Breaker {
	return New("redis-lock", Config{
		MaxFailures: 3,
		Cooldown:    10 * time.Second,
		IsFailure:   func(err error) bool { return !errors.Is(err, errBusy) },
		OnStateChange: func(_ string, _, to State) {
			*transitions = append(*transitions, to)
		},
		Now: clock.Now,
	})
}

func fail() error    { return errBackend }
func succeed() error { return nil }

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var transitions []State
	b := newBreaker(clock, &transitions)

	assert.ErrorIs(t, b.Do(fail), errBackend)
	assert.ErrorIs(t, b.Do(fail), errBackend)
	assert.Equal(t, StateClosed, b.State())
	assert.ErrorIs(t, b.Do(fail), errBackend)
	assert.Equal(t, StateOpen, b.State())

	called := false
	err := b.Do(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
	assert.Equal(t, []State{StateOpen}, transitions)
}

func TestBreaker_SuccessResetsFailures(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var transitions []State
	b := newBreaker(clock, &transitions)

	_ = b.Do(fail)
	_ = b.Do(fail)
	assert.NoError(t, b.Do(succeed))
	_ = b.Do(fail)
	_ = b.Do(fail)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_IgnoredErrorsDoNotTrip(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var transitions []State
	b := newBreaker(clock, &transitions)

	for i := 0; i < 10; i++ {
		assert.ErrorIs(t, b.Do(func() error { return errBusy }), errBusy)
	}
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var transitions []State
	b := newBreaker(clock, &transitions)

	for i := 0; i < 3; i++ {
		_ = b.Do(fail)
	}
	clock.Advance(10 * time.Second)
	assert.Equal(t, StateHalfOpen, b.State())

	t.Run("探测失败重新打开", func(t *testing.T) {
		assert.ErrorIs(t, b.Do(fail), errBackend)
		assert.Equal(t, StateOpen, b.State())
	})

	t.Run("探测成功关闭", func(t *testing.T) {
		clock.Advance(10 * time.Second)
		assert.NoError(t, b.Do(succeed))
		assert.Equal(t, StateClosed, b.State())
	})

	assert.Equal(t, []State{StateOpen, StateHalfOpen, StateOpen, StateHalfOpen, StateClosed}, transitions)
}

func TestBreaker_HalfOpenAllowsSingleProbe(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var transitions []State
	b := newBreaker(clock, &transitions)

	for i := 0; i < 3; i++ {
		_ = b.Do(fail)
	}
	clock.Advance(10 * time.Second)

	err := b.Do(func() error {
		// 探测进行中，其他请求快速失败
		assert.ErrorIs(t, b.Do(succeed), ErrOpen)
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, StateClosed, b.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half_open", StateHalfOpen.String())
}
