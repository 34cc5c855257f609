package ratelimit

import (
	"context"
	"time"

	"github.com/cloudwego/eino/components/embedding"
)

// Embedder 被代理的嵌入器需要满足的接口 - 与processor包中定义相同
type Embedder interface {
	EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error)
	GetDimensions() int
	ModelID() string
}

// RateLimitedEmbedder 对嵌入模型的调用进行限流的代理
type RateLimitedEmbedder struct {
	original    Embedder
	rateLimiter *TokenBucket
}

// NewRateLimitedEmbedder 创建一个新的限流嵌入代理
func NewRateLimitedEmbedder(original Embedder, qpm int) *RateLimitedEmbedder {
	return &RateLimitedEmbedder{
		original:    original,
		rateLimiter: NewTokenBucket(qpm, qpm/2),
	}
}

// WithRetryPolicy 设置重试策略
func (re *RateLimitedEmbedder) WithRetryPolicy(waitTime time.Duration, maxRetries int) *RateLimitedEmbedder {
	re.rateLimiter.WithRetryPolicy(waitTime, maxRetries)
	return re
}

// EmbedStrings 代理EmbedStrings方法，增加限流和重试逻辑
func (re *RateLimitedEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	var vectors [][]float64

	err := re.rateLimiter.RetryWithBackoff(ctx, func() error {
		var embedErr error
		vectors, embedErr = re.original.EmbedStrings(ctx, texts, opts...)
		return embedErr
	})

	return vectors, err
}

// GetDimensions 透传原始嵌入器的输出维度
func (re *RateLimitedEmbedder) GetDimensions() int {
	return re.original.GetDimensions()
}

// ModelID 透传原始嵌入器的模型标识
func (re *RateLimitedEmbedder) ModelID() string {
	return re.original.ModelID()
}
