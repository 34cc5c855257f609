package processor

import (
	"context"
	"io"

	"github.com/cloudwego/eino/components/embedding"

	"resume-match-go/internal/types"
)

//
// PDF解析相关接口
//

// PDFExtractor PDF提取器接口
type PDFExtractor interface {
	// ExtractFromFile 从PDF文件提取文本和元数据
	ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error)

	// ExtractFromReader 从io.Reader提取文本和元数据
	ExtractFromReader(ctx context.Context, reader io.Reader, uri string) (string, map[string]interface{}, error)

	// ExtractFromBytes 从字节数组提取文本和元数据
	ExtractFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error)
}

//
// 向量嵌入相关接口
//

// TextEmbedder 文本向量化接口 (符合 cloudwego/eino 规范)
type TextEmbedder interface {
	// EmbedStrings 将文本转换为向量表示
	EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error)

	// GetDimensions 返回嵌入向量的维度
	GetDimensions() int

	// ModelID 返回模型标识，参与缓存指纹计算
	ModelID() string
}

// FallbackEmbedder 嵌入服务结构性缺失时的确定性降级嵌入
// 同一抽取结果必须产生同一向量
type FallbackEmbedder interface {
	EmbedDocument(doc *types.ExtractedDocument) []float64
	Dimensions() int
	ModelID() string
}

// ComputeFunc 缓存未命中时计算向量的回调
type ComputeFunc func(ctx context.Context) ([]float64, error)

// EmbeddingCache 嵌入向量缓存接口
// 可由内存map、Redis等任意实现承载，命中时不得调用compute
type EmbeddingCache interface {
	GetOrCompute(ctx context.Context, text string, modelID string, compute ComputeFunc) ([]float64, error)
}

//
// 文本生成相关接口
//

// SuggestionGenerator 简历改进建议生成器接口
type SuggestionGenerator interface {
	GenerateSuggestions(ctx context.Context, input types.SuggestionInput) (*types.MatchSuggestions, error)
}

// OutreachGenerator 求职触达文案生成器接口
type OutreachGenerator interface {
	GenerateOutreach(ctx context.Context, input types.OutreachInput) (*types.OutreachMessages, error)
}

//
// 存储相关接口
//

// AnalysisStore 分析结果持久化接口
type AnalysisStore interface {
	// SaveAnalysis 保存分析结果
	SaveAnalysis(ctx context.Context, result *types.AnalysisResult) error

	// GetAnalysis 按分析ID读取结果，未找到返回ErrAnalysisNotFound
	GetAnalysis(ctx context.Context, analysisID string) (*types.AnalysisResult, error)
}

// AnalysisEventPublisher 分析完成事件发布接口
type AnalysisEventPublisher interface {
	PublishAnalysisCompleted(ctx context.Context, event *types.AnalysisCompletedEvent) error
}
