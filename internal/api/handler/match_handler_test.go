package handler_test

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"

	"resume-match-go/internal/api/handler"
	"resume-match-go/internal/config"
	"resume-match-go/internal/parser"
	"resume-match-go/internal/processor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestHandler 组装一个无外部依赖的处理器，嵌入走降级向量
func newTestHandler(t *testing.T) *handler.MatchHandler {
	t.Helper()
	cfg := &config.Config{}
	extractor := parser.NewSkillExtractor(parser.DefaultSkillTaxonomy())
	matchProcessor := processor.NewMatchProcessor(extractor,
		processor.WithProcessorLogger(log.New(io.Discard, "", 0)))
	return handler.NewMatchHandler(cfg, nil, matchProcessor, nil)
}

// TestAnalyzeMatch_InputValidation 测试请求参数校验
func TestAnalyzeMatch_InputValidation(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	_, err := h.AnalyzeMatch(ctx, handler.AnalyzeMatchRequest{JDText: "some jd"})
	require.Error(t, err, "缺少简历来源时应报错")
	assert.Contains(t, err.Error(), "resume_text")

	_, err = h.AnalyzeMatch(ctx, handler.AnalyzeMatchRequest{ResumeText: "resume with python"})
	require.Error(t, err, "缺少JD文本时应报错")
	assert.Contains(t, err.Error(), "jd_text")
}

// TestAnalyzeMatch_Degraded 无嵌入器时仍应产出完整的降级分析结果
func TestAnalyzeMatch_Degraded(t *testing.T) {
	h := newTestHandler(t)

	result, err := h.AnalyzeMatch(context.Background(), handler.AnalyzeMatchRequest{
		ResumeText: "Backend engineer with Python and SQL experience across five years.",
		JDText:     "Requirements: Python, SQL, Kubernetes. Nice to have: Docker.",
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.NotEmpty(t, result.AnalysisID)
	assert.True(t, result.DegradedSemantic, "无嵌入器时语义通道应标记为降级")
	assert.Contains(t, result.SkillGap.MatchingSkills, "python")
}

// TestExtractSkills_Validation 测试技能抽取的入参校验与正常路径
func TestExtractSkills_Validation(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	_, err := h.ExtractSkills(ctx, handler.ExtractSkillsRequest{Text: "   "})
	require.Error(t, err, "空文本应报错")

	doc, err := h.ExtractSkills(ctx, handler.ExtractSkillsRequest{Text: "Senior Go and Redis developer"})
	require.NoError(t, err)
	assert.Contains(t, doc.SkillNames(), "go")
	assert.Contains(t, doc.SkillNames(), "redis")
}

// TestGetAnalysis_Validation 空ID与未配置存储的行为
func TestGetAnalysis_Validation(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	_, err := h.GetAnalysis(ctx, "  ")
	require.Error(t, err, "空analysis_id应报错")

	_, err = h.GetAnalysis(ctx, "missing-id")
	require.ErrorIs(t, err, processor.ErrAnalysisNotFound)
}

// TestGenerateOutreach_NotConfigured 未配置生成器时应返回触达错误
func TestGenerateOutreach_NotConfigured(t *testing.T) {
	h := newTestHandler(t)

	_, err := h.GenerateOutreach(context.Background(), handler.OutreachRequest{
		CandidateName: "Li Lei",
		CompanyName:   "Acme",
		JobTitle:      "Backend Engineer",
	})
	require.ErrorIs(t, err, processor.ErrOutreachGeneration)
}

// TestGetResume_Validation 空ID与未配置数据库的行为
func TestGetResume_Validation(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	_, err := h.GetResume(ctx, "  ")
	require.Error(t, err, "空resume_id应报错")
	assert.Contains(t, err.Error(), "resume_id")

	_, err = h.GetResume(ctx, "some-resume-id")
	require.Error(t, err, "未配置数据库时应报错")
	assert.Contains(t, err.Error(), "未配置")
}

// TestUploadResume_StorageRequired 未配置对象存储和数据库时上传应直接失败
func TestUploadResume_StorageRequired(t *testing.T) {
	h := newTestHandler(t)

	_, err := h.UploadResume(context.Background(), strings.NewReader("resume text"), "resume.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "未配置")
}
