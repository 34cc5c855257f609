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

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const defaultGeminiModelName = "gemini-1.5-flash"

// GeminiChatModel 调用Gemini generateContent REST API，
// 实现 model.ToolCallingChatModel 接口供建议/触达生成器使用
type GeminiChatModel struct {
	apiKey      string
	modelName   string
	baseURL     string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
	boundTools  []*schema.ToolInfo
	logger      *log.Logger
}

// GeminiChatOption 聊天模型配置选项
type GeminiChatOption func(*GeminiChatModel)

// WithChatTemperature 设置采样温度
func WithChatTemperature(temperature float64) GeminiChatOption {
	return func(g *GeminiChatModel) {
		g.temperature = temperature
	}
}

// WithChatMaxTokens 设置输出token上限
func WithChatMaxTokens(maxTokens int) GeminiChatOption {
	return func(g *GeminiChatModel) {
		g.maxTokens = maxTokens
	}
}

// NewGeminiChatModel 创建Gemini聊天模型客户端
func NewGeminiChatModel(apiKey, modelName, baseURL string, options ...GeminiChatOption) (*GeminiChatModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API密钥不能为空")
	}
	if strings.TrimSpace(modelName) == "" {
		modelName = defaultGeminiModelName
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}

	g := &GeminiChatModel{
		apiKey:      apiKey,
		modelName:   modelName,
		baseURL:     baseURL,
		temperature: 0.4,
		maxTokens:   2048,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		logger:      log.New(os.Stderr, "[GeminiChat] ", log.LstdFlags),
	}
	for _, option := range options {
		option(g)
	}

	g.logger.Printf("使用Gemini聊天模型客户端, 模型: %s", modelName)
	return g, nil
}

// --- Gemini REST 请求/响应结构 ---

type geminiChatPart struct {
	Text string `json:"text"`
}

type geminiChatContent struct {
	Role  string           `json:"role,omitempty"` // "user" 或 "model"
	Parts []geminiChatPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiGenerateRequest struct {
	Contents          []geminiChatContent    `json:"contents"`
	SystemInstruction *geminiChatContent     `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiCandidate struct {
	Content      geminiChatContent `json:"content"`
	FinishReason string            `json:"finishReason"`
}

type geminiGenerateResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
	Error      *geminiAPIError   `json:"error,omitempty"`
}

// Generate 实现 model.BaseChatModel 接口
func (g *GeminiChatModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	for _, opt := range options {
		_ = opt // 本实现的核心配置在构造时完成，通用选项暂不处理
	}

	reqPayload := geminiGenerateRequest{
		GenerationConfig: geminiGenerationConfig{
			Temperature:     g.temperature,
			MaxOutputTokens: g.maxTokens,
		},
	}

	// schema角色到Gemini角色的映射：system进systemInstruction，assistant即model
	for _, msg := range messages {
		switch msg.Role {
		case schema.System:
			reqPayload.SystemInstruction = &geminiChatContent{
				Parts: []geminiChatPart{{Text: msg.Content}},
			}
		case schema.Assistant:
			reqPayload.Contents = append(reqPayload.Contents, geminiChatContent{
				Role:  "model",
				Parts: []geminiChatPart{{Text: msg.Content}},
			})
		default:
			reqPayload.Contents = append(reqPayload.Contents, geminiChatContent{
				Role:  "user",
				Parts: []geminiChatPart{{Text: msg.Content}},
			})
		}
	}
	if len(reqPayload.Contents) == 0 {
		return nil, fmt.Errorf("没有可发送的消息")
	}

	jsonData, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("序列化请求体失败: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, g.modelName, g.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	g.logger.Printf("发送生成请求, 模型 %s, 消息数 %d", g.modelName, len(messages))

	httpResp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("发送HTTP请求失败: %w", err)
	}
	defer httpResp.Body.Close()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var parsed geminiGenerateResponse
		if json.Unmarshal(bodyBytes, &parsed) == nil && parsed.Error != nil && parsed.Error.Message != "" {
			return nil, fmt.Errorf("生成API调用失败, 状态码: %d, 状态: %s, 错误: %s",
				httpResp.StatusCode, parsed.Error.Status, parsed.Error.Message)
		}
		return nil, fmt.Errorf("生成API调用失败, 状态码: %d, 响应: %.200s", httpResp.StatusCode, string(bodyBytes))
	}

	var parsed geminiGenerateResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return nil, fmt.Errorf("反序列化API响应失败: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		return nil, fmt.Errorf("API未返回候选结果: %.200s", string(bodyBytes))
	}

	var content strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		content.WriteString(part.Text)
	}

	return &schema.Message{
		Role:    schema.Assistant,
		Content: content.String(),
	}, nil
}

// Stream 实现 model.BaseChatModel 接口 (未实现流式)
func (g *GeminiChatModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("GeminiChatModel 的 Stream 方法未实现")
}

// WithTools 实现 model.ToolCallingChatModel 接口
// 当前prompt全部为纯文本JSON输出，工具信息仅记录不生效
func (g *GeminiChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	g.logger.Printf("WithTools 被调用, 包含 %d 个工具(当前实现不发送工具定义)", len(tools))
	g.boundTools = tools
	return g, nil
}
