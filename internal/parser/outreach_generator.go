package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/cloudwego/eino/components/model"
	einoschema "github.com/cloudwego/eino/schema"

	"resume-match-go/internal/constants"
	"resume-match-go/internal/tracing"
	"resume-match-go/internal/types"
)

// LLMOutreachGenerator 基于LLM生成求职触达文案（求职信、LinkedIn私信、冷邮件）
type LLMOutreachGenerator struct {
	llmModel       model.ToolCallingChatModel
	promptTemplate string
	logger         *log.Logger
}

// LLMOutreachGeneratorOption 触达文案生成器的配置选项
type LLMOutreachGeneratorOption func(*LLMOutreachGenerator)

// WithOutreachPromptTemplate 设置自定义提示词模板
func WithOutreachPromptTemplate(template string) LLMOutreachGeneratorOption {
	return func(g *LLMOutreachGenerator) {
		if template != "" {
			g.promptTemplate = template
		}
	}
}

// NewLLMOutreachGenerator 创建触达文案生成器实例
func NewLLMOutreachGenerator(llmModel model.ToolCallingChatModel, logger *log.Logger, options ...LLMOutreachGeneratorOption) *LLMOutreachGenerator {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	generator := &LLMOutreachGenerator{
		llmModel: llmModel,
		logger:   logger,
	}
	generator.generatePromptTemplate()

	for _, opt := range options {
		opt(generator)
	}
	return generator
}

func (g *LLMOutreachGenerator) generatePromptTemplate() {
	g.promptTemplate = `你是一位专业的求职文案写手。请基于以下信息，为候选人生成三种英文求职触达文案。

**候选人信息：**
- 姓名: %s
- 邮箱: %s
- 目标公司: %s
- 目标岗位: %s
- 核心优势: %s

【候选人简历摘录】:
"""
%s
"""

【岗位描述摘录】:
"""
%s
"""

**请严格按以下JSON格式输出：**
{
  "cover_letter": "正式求职信，250-350词，三段式结构",
  "linkedin_message": "LinkedIn私信，80词以内，语气自然",
  "cold_mail": "冷邮件，120词以内，含主题行，以 Subject: 开头"
}

**JSON格式细节要求：**
- 完整输出必须是一个合法的JSON对象。
- 所有字段名和字符串值都必须使用双引号。
- 字符串值内部的双引号必须用反斜杠转义，换行写成\n。
- 禁止在JSON结构之外输出任何额外文本或Markdown标记。`
}

// GenerateOutreach 生成三种渠道的触达文案
func (g *LLMOutreachGenerator) GenerateOutreach(ctx context.Context, input types.OutreachInput) (*types.OutreachMessages, error) {
	if g.llmModel == nil {
		return nil, fmt.Errorf("触达文案生成器: llmModel未初始化")
	}

	candidateName := input.CandidateName
	if strings.TrimSpace(candidateName) == "" {
		candidateName = "The candidate"
	}

	userMsgContent := fmt.Sprintf(g.promptTemplate,
		candidateName,
		input.CandidateEmail,
		input.CompanyName,
		input.JobTitle,
		joinOrNone(input.KeyStrengths),
		tracing.TruncateString(input.ResumeExcerpt, constants.MaxPromptExcerptRunes),
		tracing.TruncateString(input.JDExcerpt, constants.MaxPromptExcerptRunes),
	)

	systemMsg := einoschema.SystemMessage("你是一位专业的英文求职文案写手，输出标准JSON格式。")
	userMsg := einoschema.UserMessage(userMsgContent)

	g.logger.Printf("[触达文案] 公司=%s, 岗位=%s", input.CompanyName, input.JobTitle)

	response, err := g.llmModel.Generate(ctx, []*einoschema.Message{systemMsg, userMsg})
	if err != nil {
		return nil, fmt.Errorf("触达文案: LLM调用失败: %w", err)
	}
	if response == nil || response.Content == "" {
		return nil, fmt.Errorf("触达文案: LLM返回空响应")
	}

	processedContent := strings.TrimPrefix(response.Content, "\uFEFF")

	jsonStr := extractJSONObject(processedContent)
	if jsonStr == "" {
		return nil, fmt.Errorf("触达文案: 无法从LLM响应中提取JSON: %.200s", processedContent)
	}
	if !utf8.ValidString(jsonStr) {
		jsonStr = strings.ToValidUTF8(jsonStr, "")
	}

	var messages types.OutreachMessages
	if err := json.Unmarshal([]byte(jsonStr), &messages); err != nil {
		fixedJSONStr := sanitizeJSON(jsonStr)
		if jsonErr := json.Unmarshal([]byte(fixedJSONStr), &messages); jsonErr != nil {
			return nil, fmt.Errorf("触达文案: JSON反序列化失败(含修复重试). 原始错误: %w. 修复后错误: %v", err, jsonErr)
		}
	}

	if strings.TrimSpace(messages.CoverLetter) == "" &&
		strings.TrimSpace(messages.LinkedInMessage) == "" &&
		strings.TrimSpace(messages.ColdMail) == "" {
		return nil, fmt.Errorf("触达文案: 三种文案全部为空")
	}
	return &messages, nil
}
