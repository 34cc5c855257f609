package parser_test

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"resume-match-go/internal/parser"
	"resume-match-go/internal/types"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func sampleSuggestionInput() types.SuggestionInput {
	return types.SuggestionInput{
		FinalScore:      67,
		SemanticScore:   70,
		SkillScore:      62,
		Matching:        []string{"python", "sql"},
		MissingRequired: []string{"docker"},
		NiceToHave:      []string{"kubernetes"},
		ResumeExcerpt:   "Backend engineer with Python and SQL.",
		JDExcerpt:       "Requirements: Python, SQL, Docker.",
	}
}

// TestSuggestionGenerator_Success 正常JSON响应被解析为建议
func TestSuggestionGenerator_Success(t *testing.T) {
	responseJSON := "```json\n" + `{
		"score_explanation": "候选人覆盖了大部分必备技能，但缺少Docker。",
		"key_strengths": ["Python", "SQL"],
		"missing_skills_to_add": ["Docker"],
		"ats_keywords_to_include": ["docker", "ci/cd"],
		"projects_to_build": ["容器化一个现有服务"],
		"bullet_rewrites": [{"before": "did backend work", "after": "Built Python services handling 1M requests/day"}]
	}` + "\n```"

	mockClient := parser.NewMockChatClient(responseJSON, nil)
	generator := parser.NewLLMSuggestionGenerator(mockClient, quietLogger())

	suggestions, err := generator.GenerateSuggestions(context.Background(), sampleSuggestionInput())
	require.NoError(t, err)
	require.NotNil(t, suggestions)

	assert.NotEmpty(t, suggestions.ScoreExplanation)
	assert.Equal(t, []string{"Python", "SQL"}, suggestions.KeyStrengths)
	assert.Equal(t, []string{"Docker"}, suggestions.MissingSkillsToAdd)
	require.Len(t, suggestions.BulletRewrites, 1)
	assert.NotEmpty(t, suggestions.BulletRewrites[0].After)

	// 应发送system+user两条消息，user消息携带分数与技能
	received := mockClient.GetReceivedMessages()
	require.Len(t, received, 2)
	assert.Equal(t, schema.System, received[0].Role)
	assert.Equal(t, schema.User, received[1].Role)
	assert.Contains(t, received[1].Content, "67")
	assert.Contains(t, received[1].Content, "docker")
}

// TestSuggestionGenerator_SanitizeRetry 内嵌未转义引号的JSON经修复后可解析
func TestSuggestionGenerator_SanitizeRetry(t *testing.T) {
	brokenJSON := `{
		"score_explanation": "matched "python" closely",
		"key_strengths": [],
		"missing_skills_to_add": [],
		"ats_keywords_to_include": [],
		"projects_to_build": [],
		"bullet_rewrites": []
	}`

	mockClient := parser.NewMockChatClient(brokenJSON, nil)
	generator := parser.NewLLMSuggestionGenerator(mockClient, quietLogger())

	suggestions, err := generator.GenerateSuggestions(context.Background(), sampleSuggestionInput())
	require.NoError(t, err, "含未转义引号的JSON应被修复后解析")
	assert.Contains(t, suggestions.ScoreExplanation, "python")
}

// TestSuggestionGenerator_LLMError LLM调用失败应透传错误
func TestSuggestionGenerator_LLMError(t *testing.T) {
	mockClient := parser.NewMockChatClient("", errors.New("rate limited"))
	generator := parser.NewLLMSuggestionGenerator(mockClient, quietLogger())

	_, err := generator.GenerateSuggestions(context.Background(), sampleSuggestionInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

// TestSuggestionGenerator_NoJSONInResponse 响应中没有JSON对象时报错
func TestSuggestionGenerator_NoJSONInResponse(t *testing.T) {
	mockClient := parser.NewMockChatClient("抱歉，我无法完成该请求。", nil)
	generator := parser.NewLLMSuggestionGenerator(mockClient, quietLogger())

	_, err := generator.GenerateSuggestions(context.Background(), sampleSuggestionInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "无法从LLM响应中提取JSON")
}

// TestSuggestionGenerator_ValidationFailure 缺少score_explanation的结果被拒绝
func TestSuggestionGenerator_ValidationFailure(t *testing.T) {
	mockClient := parser.NewMockChatClient(`{"score_explanation": "", "key_strengths": ["x"]}`, nil)
	generator := parser.NewLLMSuggestionGenerator(mockClient, quietLogger())

	_, err := generator.GenerateSuggestions(context.Background(), sampleSuggestionInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "score_explanation")
}
