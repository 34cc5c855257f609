package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/embedding"

	"resume-match-go/internal/config"
)

// GeminiEmbedder 调用Gemini Embedding REST API，实现 cloudwego/eino embedding.Embedder 接口
type GeminiEmbedder struct {
	apiKey     string
	model      string // 默认模型
	dimensions int    // 输出维度，0表示使用模型默认
	baseURL    string
	maxRetries int
	httpClient *http.Client
	logger     *log.Logger
}

// NewGeminiEmbedder 创建Gemini嵌入客户端
func NewGeminiEmbedder(apiKey string, embeddingCfg config.EmbeddingConfig) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API密钥不能为空")
	}

	model := embeddingCfg.Model
	if model == "" {
		model = "text-embedding-004"
	}
	baseURL := strings.TrimRight(embeddingCfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	timeout := time.Duration(embeddingCfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &GeminiEmbedder{
		apiKey:     apiKey,
		model:      model,
		dimensions: embeddingCfg.Dimensions,
		baseURL:    baseURL,
		maxRetries: embeddingCfg.MaxRetries,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.New(os.Stderr, "[GeminiEmbedder] ", log.LstdFlags|log.Lshortfile),
	}, nil
}

// GetDimensions 返回配置的输出维度
func (g *GeminiEmbedder) GetDimensions() int {
	return g.dimensions
}

// ModelID 返回嵌入模型标识，用于缓存指纹
func (g *GeminiEmbedder) ModelID() string {
	return g.model
}

// geminiEmbedContent batchEmbedContents请求中的单条内容
type geminiEmbedContent struct {
	Parts []geminiTextPart `json:"parts"`
}

type geminiTextPart struct {
	Text string `json:"text"`
}

// geminiEmbedRequest batchEmbedContents请求中的单条请求
type geminiEmbedRequest struct {
	Model                string             `json:"model"`
	Content              geminiEmbedContent `json:"content"`
	OutputDimensionality int                `json:"outputDimensionality,omitempty"`
}

// geminiBatchEmbedRequest batchEmbedContents请求体
type geminiBatchEmbedRequest struct {
	Requests []geminiEmbedRequest `json:"requests"`
}

// geminiEmbedding 响应中的单条向量
type geminiEmbedding struct {
	Values []float64 `json:"values"`
}

// geminiAPIError Gemini标准错误体
type geminiAPIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// geminiBatchEmbedResponse batchEmbedContents响应体
type geminiBatchEmbedResponse struct {
	Embeddings []geminiEmbedding `json:"embeddings"`
	Error      *geminiAPIError   `json:"error,omitempty"`
}

// EmbedStrings 将文本批量转换为向量
// 对429和5xx做有限次退避重试，其余错误直接返回
func (g *GeminiEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	options := &embedding.Options{}
	embedding.GetCommonOptions(options, opts...)

	effectiveModel := g.model
	if options.Model != nil && *options.Model != "" {
		effectiveModel = *options.Model
	}

	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	reqBody := geminiBatchEmbedRequest{Requests: make([]geminiEmbedRequest, 0, len(texts))}
	for _, text := range texts {
		req := geminiEmbedRequest{
			Model:   "models/" + effectiveModel,
			Content: geminiEmbedContent{Parts: []geminiTextPart{{Text: text}}},
		}
		if g.dimensions > 0 {
			req.OutputDimensionality = g.dimensions
		}
		reqBody.Requests = append(reqBody.Requests, req)
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("序列化嵌入请求失败: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:batchEmbedContents?key=%s", g.baseURL, effectiveModel, g.apiKey)
	g.logger.Printf("嵌入请求: 模型=%s, 文本数=%d", effectiveModel, len(texts))

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			g.logger.Printf("嵌入请求重试 %d/%d，等待 %s: %v", attempt, g.maxRetries, backoff, lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		vectors, retryable, err := g.doEmbedRequest(ctx, url, jsonData, len(texts))
		if err == nil {
			return vectors, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

// doEmbedRequest 发送一次嵌入请求，第二个返回值标记错误是否可重试
func (g *GeminiEmbedder) doEmbedRequest(ctx context.Context, url string, jsonData []byte, wantCount int) ([][]float64, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, false, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("发送HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("读取响应体失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		var parsed geminiBatchEmbedResponse
		if json.Unmarshal(body, &parsed) == nil && parsed.Error != nil && parsed.Error.Message != "" {
			return nil, retryable, fmt.Errorf("嵌入API调用失败, 状态码: %d, 状态: %s, 错误: %s",
				resp.StatusCode, parsed.Error.Status, parsed.Error.Message)
		}
		return nil, retryable, fmt.Errorf("嵌入API调用失败, 状态码: %d, 响应: %.200s", resp.StatusCode, string(body))
	}

	var parsed geminiBatchEmbedResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, false, fmt.Errorf("解析嵌入响应失败: %w", err)
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return nil, false, fmt.Errorf("嵌入API返回错误: 状态=%s, 消息=%s", parsed.Error.Status, parsed.Error.Message)
	}
	if len(parsed.Embeddings) != wantCount {
		return nil, false, fmt.Errorf("嵌入响应数量不符: 期望%d, 实际%d", wantCount, len(parsed.Embeddings))
	}

	vectors := make([][]float64, len(parsed.Embeddings))
	for i, entry := range parsed.Embeddings {
		if len(entry.Values) == 0 {
			return nil, false, fmt.Errorf("嵌入响应第%d条为空向量", i)
		}
		vectors[i] = entry.Values
	}
	g.logger.Printf("嵌入成功: %d条向量, 维度=%d", len(vectors), len(vectors[0]))
	return vectors, false, nil
}
