// Package circuitbreaker 熔断器
//
// 用于保护外部依赖(目前是Redis锁)：连续失败达到阈值后打开，
// 冷却期内直接返回ErrOpen，不再等待连接超时；冷却期结束后放行一个探测请求，
// 成功则关闭，失败则重新打开。
//
// 哪些错误算失败由IsFailure决定，例如锁被占用是正常竞争，不应计入失败。
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State 熔断器状态
type State int

const (
	StateClosed   State = iota // 正常放行
	StateOpen                  // 熔断，快速失败
	StateHalfOpen              // 冷却结束，放行一个探测请求
)

// String 状态名称
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// ErrOpen 熔断器打开
var ErrOpen = errors.New("circuit breaker is open")

// Config 熔断器配置
type Config struct {
	// MaxFailures 连续失败多少次后打开，<=0时使用5
	MaxFailures int
	// Cooldown 打开后多久进入半开，<=0时使用30s
	Cooldown time.Duration
	// IsFailure 判断错误是否计入失败，为nil时所有非nil错误都算
	IsFailure func(err error) bool
	// OnStateChange 状态变化回调
	OnStateChange func(name string, from, to State)
	// Now 时钟，测试时注入
	Now func() time.Time
}

// Breaker 熔断器
type Breaker struct {
	name string
	cfg  Config

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool
}

// New 创建熔断器
func New(name string, cfg Config) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	if cfg.IsFailure == nil {
		cfg.IsFailure = func(err error) bool { return err != nil }
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Breaker{name: name, cfg: cfg}
}

// Do 执行fn，熔断器打开时不调用fn直接返回ErrOpen
func (b *Breaker) Do(fn func() error) error {
	if err := b.allow(); err != nil {
		return err
	}
	err := fn()
	b.record(err)
	return err
}

// State 当前状态
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh()
	return b.state
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refresh()
	switch b.state {
	case StateOpen:
		return ErrOpen
	case StateHalfOpen:
		// 半开只放行一个探测请求
		if b.probing {
			return ErrOpen
		}
		b.probing = true
	}
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	failed := err != nil && b.cfg.IsFailure(err)
	switch b.state {
	case StateHalfOpen:
		b.probing = false
		if failed {
			b.open()
		} else {
			b.failures = 0
			b.setState(StateClosed)
		}
	case StateClosed:
		if !failed {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.cfg.MaxFailures {
			b.open()
		}
	}
}

// refresh 冷却期结束后转为半开，调用方持有锁
func (b *Breaker) refresh() {
	if b.state == StateOpen && !b.cfg.Now().Before(b.openedAt.Add(b.cfg.Cooldown)) {
		b.setState(StateHalfOpen)
	}
}

func (b *Breaker) open() {
	b.openedAt = b.cfg.Now()
	b.failures = 0
	b.setState(StateOpen)
}

func (b *Breaker) setState(to State) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	if b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(b.name, from, to)
	}
}
