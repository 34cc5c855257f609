package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrorType 按子系统划分错误来源，方便在追踪后端按类型过滤
type ErrorType string

const (
	// ErrorTypeDB MySQL访问错误
	ErrorTypeDB ErrorType = "db"
	// ErrorTypeRedis 缓存访问错误
	ErrorTypeRedis ErrorType = "redis"
	// ErrorTypeEmbedding 嵌入服务调用错误
	ErrorTypeEmbedding ErrorType = "embedding"
	// ErrorTypeLLM 文本生成服务调用错误
	ErrorTypeLLM ErrorType = "llm"
)

// RecordError 在span上记录错误事件并标记错误状态。
// span或err为nil时不做任何事。
func RecordError(span trace.Span, err error, errorType ErrorType) {
	if span == nil || err == nil {
		return
	}

	span.RecordError(err)
	span.SetAttributes(
		attribute.String("error.type", string(errorType)),
		attribute.String("error.message", err.Error()),
	)
	span.SetStatus(codes.Error, err.Error())
}
