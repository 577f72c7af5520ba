package redis

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/winestock/internal/infrastructure/config"
	"github.com/xiebiao/winestock/internal/infrastructure/logger"
	apperrors "github.com/xiebiao/winestock/pkg/errors"
)

func newTestLocker(t *testing.T) (*Locker, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{Lock: config.LockConfig{
		TTL:             5 * time.Second,
		RetryBackoff:    10 * time.Millisecond,
		MaxRetries:      3,
		BreakerFailures: 2,
		BreakerCooldown: time.Minute,
	}}
	return NewLocker(client, cfg, logger.NewNop()), mr
}

func TestLocker_ObtainAndRelease(t *testing.T) {
	l, mr := newTestLocker(t)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "wine:1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("winestock:lock:wine:1"))

	unlock()
	assert.False(t, mr.Exists("winestock:lock:wine:1"))
}

func TestLocker_NotObtained(t *testing.T) {
	l, _ := newTestLocker(t)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "wine:1")
	require.NoError(t, err)
	defer unlock()

	_, err = l.Lock(ctx, "wine:1")
	assert.ErrorIs(t, err, ErrLockNotObtained)

	// 不同酒款互不影响
	other, err := l.Lock(ctx, "wine:2")
	require.NoError(t, err)
	other()
}

func TestLocker_BreakerOpensWhenRedisDown(t *testing.T) {
	l, mr := newTestLocker(t)
	ctx := context.Background()

	// 锁竞争不触发熔断
	unlock, err := l.Lock(ctx, "wine:1")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = l.Lock(ctx, "wine:1")
		assert.ErrorIs(t, err, ErrLockNotObtained)
	}
	unlock()

	mr.Close()
	for i := 0; i < 2; i++ {
		_, err = l.Lock(ctx, "wine:2")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeRedisError, apperrors.CodeOf(err))
	}

	_, err = l.Lock(ctx, "wine:2")
	assert.ErrorIs(t, err, ErrLockUnavailable)
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{Redis: config.RedisConfig{
		Host:        mr.Host(),
		Port:        mustPort(t, mr),
		DialTimeout: time.Second,
		ReadTimeout: time.Second,
		PoolSize:    2,
	}}

	client, err := NewClient(cfg, logger.NewNop())
	require.NoError(t, err)
	defer client.Close()
	assert.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
}

func mustPort(t *testing.T, mr *miniredis.Miniredis) int {
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	return port
}
