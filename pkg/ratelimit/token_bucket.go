package ratelimit

import (
	"context"
	"strings"
	"sync"
	"time"
)

// TokenBucket 基于QPM的令牌桶限流器，用于约束对Gemini接口的调用频率
type TokenBucket struct {
	ratePerSec    float64   // 每秒补充的令牌数，由QPM换算
	capacity      float64   // 桶容量，决定允许的突发量
	tokens        float64   // 当前可用令牌
	lastRefill    time.Time // 上次补充时间
	mu            sync.Mutex
	retryBaseWait time.Duration // 重试的基础等待时间，按次数指数放大
	maxRetries    int
}

// NewTokenBucket 创建令牌桶。capacity不大于0时取QPM的一半，最少为1
func NewTokenBucket(qpm int, capacity int) *TokenBucket {
	if capacity <= 0 {
		capacity = qpm / 2
		if capacity <= 0 {
			capacity = 1
		}
	}

	return &TokenBucket{
		ratePerSec:    float64(qpm) / 60.0,
		capacity:      float64(capacity),
		tokens:        float64(capacity),
		lastRefill:    time.Now(),
		retryBaseWait: 1 * time.Second,
		maxRetries:    3,
	}
}

// WithRetryPolicy 覆盖默认的重试等待与次数
func (tb *TokenBucket) WithRetryPolicy(baseWait time.Duration, maxRetries int) *TokenBucket {
	tb.retryBaseWait = baseWait
	tb.maxRetries = maxRetries
	return tb
}

// refill 按经过时间补充令牌，调用方需持有锁
func (tb *TokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.lastRefill = now

	tb.tokens += elapsed * tb.ratePerSec
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
}

// Allow 非阻塞地尝试消耗一个令牌
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}
	return false
}

// Wait 阻塞直到取得一个令牌，或上下文被取消
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		tb.mu.Lock()
		tb.refill()

		if tb.tokens >= 1.0 {
			tb.tokens -= 1.0
			tb.mu.Unlock()
			return nil
		}

		// 估算凑够一个令牌所需的时间
		wait := time.Duration((1.0 - tb.tokens) / tb.ratePerSec * float64(time.Second))
		tb.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// RetryWithBackoff 在限流约束下执行fn，对可重试错误按指数退避重试
func (tb *TokenBucket) RetryWithBackoff(ctx context.Context, fn func() error) error {
	var err error

	for attempt := 0; attempt <= tb.maxRetries; attempt++ {
		if err = tb.Wait(ctx); err != nil {
			return err
		}

		err = fn()
		if err == nil {
			return nil
		}

		if !isRetryableError(err) || attempt >= tb.maxRetries {
			return err
		}

		backoff := tb.retryBaseWait * time.Duration(1<<uint(attempt))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	return err
}

// isRetryableError 根据错误文本判断是否值得重试。
// 覆盖网络瞬断与Gemini的限额、过载类状态。
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	for _, marker := range []string{
		"timeout",
		"deadline exceeded",
		"connection reset",
		"connection refused",
		"no such host",
		"EOF",
		"状态码: 429",
		"状态码: 5",
		"RESOURCE_EXHAUSTED",
		"UNAVAILABLE",
		"rate limit",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
