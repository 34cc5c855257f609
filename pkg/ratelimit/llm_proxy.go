package ratelimit

import (
	"context"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// RateLimitedLLMModel 包装eino聊天模型，在调用前取令牌并对瞬时错误重试。
// 建议和文案生成共用一个代理，使两类调用共享同一份配额。
type RateLimitedLLMModel struct {
	original    model.ToolCallingChatModel
	rateLimiter *TokenBucket
}

// NewRateLimitedLLMModel 按QPM创建限流代理，桶容量取QPM的一半以容忍突发
func NewRateLimitedLLMModel(original model.ToolCallingChatModel, qpm int) *RateLimitedLLMModel {
	return &RateLimitedLLMModel{
		original:    original,
		rateLimiter: NewTokenBucket(qpm, qpm/2),
	}
}

// WithRetryPolicy 覆盖底层令牌桶的重试策略
func (rl *RateLimitedLLMModel) WithRetryPolicy(baseWait time.Duration, maxRetries int) *RateLimitedLLMModel {
	rl.rateLimiter.WithRetryPolicy(baseWait, maxRetries)
	return rl
}

// Generate 限流并重试地调用底层Generate
func (rl *RateLimitedLLMModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	var response *schema.Message

	err := rl.rateLimiter.RetryWithBackoff(ctx, func() error {
		var genErr error
		response, genErr = rl.original.Generate(ctx, messages, options...)
		return genErr
	})

	return response, err
}

// Stream 限流并重试地调用底层Stream
func (rl *RateLimitedLLMModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	var stream *schema.StreamReader[*schema.Message]

	err := rl.rateLimiter.RetryWithBackoff(ctx, func() error {
		var streamErr error
		stream, streamErr = rl.original.Stream(ctx, messages, options...)
		return streamErr
	})

	return stream, err
}

// WithTools 返回绑定工具后的新代理，沿用同一个令牌桶
func (rl *RateLimitedLLMModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	bound, err := rl.original.WithTools(tools)
	if err != nil {
		return nil, err
	}

	return &RateLimitedLLMModel{
		original:    bound,
		rateLimiter: rl.rateLimiter,
	}, nil
}
