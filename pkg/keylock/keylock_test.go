package keylock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyLock_MutualExclusion(t *testing.T) {
	k := New()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		holders int
		maxSeen int
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := k.Lock(context.Background(), "wine:1")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			mu.Lock()
			holders++
			if holders > maxSeen {
				maxSeen = holders
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			holders--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 0, k.Len())
}

func TestKeyLock_IndependentKeys(t *testing.T) {
	k := New()
	unlockA, err := k.Lock(context.Background(), "wine:1")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := k.Lock(ctx, "wine:2")
	require.NoError(t, err)
	unlockB()

	assert.Equal(t, 1, k.Len())
}

func TestKeyLock_ContextCancel(t *testing.T) {
	k := New()
	unlock, err := k.Lock(context.Background(), "wine:1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = k.Lock(ctx, "wine:1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock() // 重复调用无副作用
	assert.Equal(t, 0, k.Len())

	again, err := k.Lock(context.Background(), "wine:1")
	require.NoError(t, err)
	again()
}
