package processor

import (
	"io"
	"log"
	"time"
)

// MatchProcessorOption 匹配处理器选项函数类型
type MatchProcessorOption func(*MatchProcessor)

// WithEmbedder 设置嵌入服务客户端，nil表示结构性缺失，全程走降级嵌入
func WithEmbedder(embedder TextEmbedder) MatchProcessorOption {
	return func(p *MatchProcessor) {
		p.embedder = embedder
	}
}

// WithFallbackEmbedder 设置降级嵌入器
func WithFallbackEmbedder(fallback FallbackEmbedder) MatchProcessorOption {
	return func(p *MatchProcessor) {
		if fallback != nil {
			p.fallback = fallback
		}
	}
}

// WithEmbeddingCache 在进程内缓存之外挂接持久缓存层
// 内存层始终留在最前面做并发合并，持久层只在内存未命中时参与
func WithEmbeddingCache(cache EmbeddingCache) MatchProcessorOption {
	return func(p *MatchProcessor) {
		if cache != nil {
			p.cache = NewLayeredEmbeddingCache(NewMemoryEmbeddingCache(), cache)
		}
	}
}

// WithSuggestionGenerator 设置建议生成器，nil时跳过建议生成
func WithSuggestionGenerator(generator SuggestionGenerator) MatchProcessorOption {
	return func(p *MatchProcessor) {
		p.suggester = generator
	}
}

// WithOutreachGenerator 设置触达文案生成器
func WithOutreachGenerator(generator OutreachGenerator) MatchProcessorOption {
	return func(p *MatchProcessor) {
		p.outreach = generator
	}
}

// WithAnalysisStore 设置分析结果持久化，保存失败不影响分析返回
func WithAnalysisStore(store AnalysisStore) MatchProcessorOption {
	return func(p *MatchProcessor) {
		p.store = store
	}
}

// WithEventPublisher 设置分析完成事件发布器
func WithEventPublisher(publisher AnalysisEventPublisher) MatchProcessorOption {
	return func(p *MatchProcessor) {
		p.publisher = publisher
	}
}

// WithOracleTimeout 设置单次外部模型调用的超时
func WithOracleTimeout(timeout time.Duration) MatchProcessorOption {
	return func(p *MatchProcessor) {
		if timeout > 0 {
			p.oracleTimeout = timeout
		}
	}
}

// WithCompareWorkers 设置批量对比的并发度
func WithCompareWorkers(workers int) MatchProcessorOption {
	return func(p *MatchProcessor) {
		if workers > 0 {
			p.compareWorkers = workers
		}
	}
}

// WithScoreWeights 设置语义/技能两通道的融合权重
func WithScoreWeights(semanticWeight, skillWeight float64) MatchProcessorOption {
	return func(p *MatchProcessor) {
		if semanticWeight > 0 && skillWeight > 0 {
			p.semanticWeight = semanticWeight
			p.skillWeight = skillWeight
		}
	}
}

// WithProcessorLogger 设置自定义日志记录器
func WithProcessorLogger(logger *log.Logger) MatchProcessorOption {
	return func(p *MatchProcessor) {
		if logger != nil {
			p.logger = logger
		} else {
			p.logger = log.New(io.Discard, "", 0)
		}
	}
}
