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

// LLMSuggestionGenerator 基于LLM生成简历改进建议
// 分数和技能差距由确定性引擎算出后注入prompt，LLM只负责解释和建议，
// 不参与评分，因此它的失败不影响分析主流程
type LLMSuggestionGenerator struct {
	llmModel       model.ToolCallingChatModel
	promptTemplate string
	logger         *log.Logger
}

// LLMSuggestionGeneratorOption 建议生成器的配置选项
type LLMSuggestionGeneratorOption func(*LLMSuggestionGenerator)

// WithSuggestionPromptTemplate 设置自定义提示词模板
func WithSuggestionPromptTemplate(template string) LLMSuggestionGeneratorOption {
	return func(g *LLMSuggestionGenerator) {
		if template != "" {
			g.promptTemplate = template
		}
	}
}

// NewLLMSuggestionGenerator 创建建议生成器实例
func NewLLMSuggestionGenerator(llmModel model.ToolCallingChatModel, logger *log.Logger, options ...LLMSuggestionGeneratorOption) *LLMSuggestionGenerator {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	generator := &LLMSuggestionGenerator{
		llmModel: llmModel,
		logger:   logger,
	}
	generator.generatePromptTemplate()

	for _, opt := range options {
		opt(generator)
	}
	return generator
}

func (g *LLMSuggestionGenerator) generatePromptTemplate() {
	g.promptTemplate = `你是一位资深的求职辅导专家。下面提供一次简历与岗位匹配分析的结果（分数和技能差距已由确定性引擎算出，不要重新评分），请据此生成具体、可执行的简历改进建议。

**匹配分析结果：**
- 综合匹配分: %d / 100（语义相似度 %d，技能重合度 %d）
- 已匹配技能: %s
- 缺失的必备技能: %s
- 缺失的加分技能: %s

【候选人简历摘录】:
"""
%s
"""

【岗位描述摘录】:
"""
%s
"""

**请严格按以下JSON格式输出（所有字段名保持英文原样）：**
{
  "score_explanation": "用2-3句话向候选人解释为什么得到这个分数",
  "key_strengths": ["候选人与岗位高度匹配的具体优势，2-4项"],
  "missing_skills_to_add": ["建议补充到简历中的技能（仅限候选人可能实际具备但未写出的）"],
  "ats_keywords_to_include": ["建议加入简历的ATS关键词，取自岗位描述"],
  "projects_to_build": ["为弥补技能差距建议做的小项目，1-3项"],
  "bullet_rewrites": [{"before": "简历中原有的一条要点", "after": "改写后更有力的版本"}]
}

**JSON格式细节要求：**
- 完整输出必须是一个合法的JSON对象。
- 所有字段名和字符串值都必须使用双引号。
- 字符串值内部如果包含双引号(")，必须使用反斜杠(\")进行转义。
- 禁止在JSON结构之外输出任何额外文本、解释或Markdown标记。`
}

// GenerateSuggestions 生成改进建议
func (g *LLMSuggestionGenerator) GenerateSuggestions(ctx context.Context, input types.SuggestionInput) (*types.MatchSuggestions, error) {
	if g.llmModel == nil {
		return nil, fmt.Errorf("建议生成器: llmModel未初始化")
	}

	userMsgContent := fmt.Sprintf(g.promptTemplate,
		input.FinalScore, input.SemanticScore, input.SkillScore,
		joinOrNone(input.Matching),
		joinOrNone(input.MissingRequired),
		joinOrNone(input.NiceToHave),
		tracing.TruncateString(input.ResumeExcerpt, constants.MaxPromptExcerptRunes),
		tracing.TruncateString(input.JDExcerpt, constants.MaxPromptExcerptRunes),
	)

	systemMsg := einoschema.SystemMessage("你是一位专业的求职辅导专家，擅长把匹配分析结果转化为候选人能执行的简历改进建议，并输出标准JSON格式。")
	userMsg := einoschema.UserMessage(userMsgContent)

	g.logger.Printf("[建议生成] 综合分=%d, 缺失必备技能数=%d", input.FinalScore, len(input.MissingRequired))

	response, err := g.llmModel.Generate(ctx, []*einoschema.Message{systemMsg, userMsg})
	if err != nil {
		return nil, fmt.Errorf("建议生成: LLM调用失败: %w", err)
	}
	if response == nil || response.Content == "" {
		return nil, fmt.Errorf("建议生成: LLM返回空响应")
	}

	processedContent := strings.TrimPrefix(response.Content, "\uFEFF")

	jsonStr := extractJSONObject(processedContent)
	if jsonStr == "" {
		return nil, fmt.Errorf("建议生成: 无法从LLM响应中提取JSON: %.200s", processedContent)
	}
	if !utf8.ValidString(jsonStr) {
		jsonStr = strings.ToValidUTF8(jsonStr, "")
	}

	var suggestions types.MatchSuggestions
	// ① 正常解析
	if err := json.Unmarshal([]byte(jsonStr), &suggestions); err != nil {
		// ② 解析失败 -> 自动修复再试一次
		fixedJSONStr := sanitizeJSON(jsonStr)
		if jsonErr := json.Unmarshal([]byte(fixedJSONStr), &suggestions); jsonErr != nil {
			return nil, fmt.Errorf("建议生成: JSON反序列化失败(含修复重试). 原始错误: %w. 修复后错误: %v. JSON: %.300s", err, jsonErr, jsonStr)
		}
	}

	if err := validateSuggestions(&suggestions); err != nil {
		return nil, fmt.Errorf("建议生成: 结果校验失败: %w", err)
	}
	return &suggestions, nil
}

// validateSuggestions 验证建议结果是否可用
func validateSuggestions(s *types.MatchSuggestions) error {
	if strings.TrimSpace(s.ScoreExplanation) == "" {
		return fmt.Errorf("score_explanation 不能为空")
	}
	for i, rewrite := range s.BulletRewrites {
		if strings.TrimSpace(rewrite.After) == "" {
			return fmt.Errorf("bullet_rewrites[%d].after 不能为空", i)
		}
	}
	return nil
}

// joinOrNone 拼接技能列表，空列表输出占位词避免prompt出现空串
func joinOrNone(skills []string) string {
	if len(skills) == 0 {
		return "（无）"
	}
	return strings.Join(skills, ", ")
}
