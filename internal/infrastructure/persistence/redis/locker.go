package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/xiebiao/winestock/internal/infrastructure/config"
	"github.com/xiebiao/winestock/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/winestock/pkg/errors"
)

// ErrLockNotObtained 重试后仍未拿到锁
var ErrLockNotObtained = apperrors.New(apperrors.ErrCodeConflict, "资源正被其他请求处理，请稍后重试")

// ErrLockUnavailable Redis故障，熔断期间快速失败
var ErrLockUnavailable = apperrors.New(apperrors.ErrCodeRedisError, "锁服务暂不可用，请稍后重试")

// Locker 基于Redis的分布式锁
// 多个进程共享同一个数据库时，用它代替进程内的keylock串行化同一酒款的写入
// Key设计：winestock:lock:{key}
// Redis连续出错时熔断，锁竞争和请求取消不计入失败
type Locker struct {
	client  *redislock.Client
	breaker *circuitbreaker.Breaker
	ttl     time.Duration
	backoff time.Duration
	retries int
	log     logrus.FieldLogger
}

// NewLocker 创建分布式锁
func NewLocker(client *redis.Client, cfg *config.Config, log logrus.FieldLogger) *Locker {
	return &Locker{
		client: redislock.New(client),
		breaker: circuitbreaker.New("redis-lock", circuitbreaker.Config{
			MaxFailures: cfg.Lock.BreakerFailures,
			Cooldown:    cfg.Lock.BreakerCooldown,
			IsFailure:   isBackendFailure,
			OnStateChange: func(name string, from, to circuitbreaker.State) {
				log.WithFields(logrus.Fields{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				}).Warn("熔断器状态变化")
			},
		}),
		ttl:     cfg.Lock.TTL,
		backoff: cfg.Lock.RetryBackoff,
		retries: cfg.Lock.MaxRetries,
		log:     log,
	}
}

// isBackendFailure 只有Redis本身的错误计入熔断
func isBackendFailure(err error) bool {
	return !errors.Is(err, redislock.ErrNotObtained) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

// Lock 获取锁，返回释放函数
// TTL兜底防止进程崩溃后锁不释放，TTL需要大于一次记账事务的耗时
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := fmt.Sprintf("winestock:lock:%s", key)
	var lock *redislock.Lock
	err := l.breaker.Do(func() error {
		var err error
		lock, err = l.client.Obtain(ctx, lockKey, l.ttl, &redislock.Options{
			RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(l.backoff), l.retries),
		})
		return err
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return nil, ErrLockUnavailable
	}
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLockNotObtained
	}
	if err != nil {
		return nil, apperrors.WithCode(apperrors.ErrCodeRedisError, err, "获取锁失败")
	}

	return func() {
		// 释放不受请求ctx取消影响
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.WithError(err).WithField("key", lockKey).Warn("释放Redis锁失败")
		}
	}, nil
}
