package parser_test

import (
	"io"
	"log"
	"testing"

	"resume-match-go/internal/parser"
	"resume-match-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newQuietExtractor 创建静默日志的抽取器，避免测试输出噪音
func newQuietExtractor() *parser.SkillExtractor {
	return parser.NewSkillExtractor(nil, parser.WithExtractorLogger(log.New(io.Discard, "", 0)))
}

// findMention 按规范名查找技能提及
func findMention(doc *types.ExtractedDocument, skill string) *types.SkillMention {
	for i := range doc.Skills {
		if doc.Skills[i].Skill == skill {
			return &doc.Skills[i]
		}
	}
	return nil
}

// TestSkillExtractor_Deterministic 相同输入必须产生相同输出
func TestSkillExtractor_Deterministic(t *testing.T) {
	extractor := newQuietExtractor()
	text := "Senior Backend Engineer. 6 years of experience with Go, Kubernetes, PostgreSQL and Kafka. Skills: Docker, Terraform."

	first := extractor.Extract(text)
	second := extractor.Extract(text)

	require.Equal(t, first, second, "两次抽取结果应完全一致")
	assert.NotEmpty(t, first.Skills)
}

// TestSkillExtractor_EmptyInput 空输入返回空结果而非nil
func TestSkillExtractor_EmptyInput(t *testing.T) {
	extractor := newQuietExtractor()

	doc := extractor.Extract("")
	require.NotNil(t, doc)
	assert.Empty(t, doc.Skills)
	assert.Empty(t, doc.RoleKeywords)
	assert.Equal(t, "", doc.ExperienceLevelEstimate)
	for _, section := range types.StandardSections {
		assert.False(t, doc.DetectedSections[section], "空输入不应探测到章节 %s", section)
	}
}

// TestSkillExtractor_WordBoundary java不应命中javascript内部
func TestSkillExtractor_WordBoundary(t *testing.T) {
	extractor := newQuietExtractor()

	doc := extractor.Extract("Experienced JavaScript developer.")
	assert.NotNil(t, findMention(doc, "javascript"))
	assert.Nil(t, findMention(doc, "java"), "javascript内部的java不是独立命中")

	doc = extractor.Extract("Worked with Java and JavaScript.")
	assert.NotNil(t, findMention(doc, "java"))
	assert.NotNil(t, findMention(doc, "javascript"))
}

// TestSkillExtractor_ConfidenceTiers 精确/别名/变体三档基础置信度
func TestSkillExtractor_ConfidenceTiers(t *testing.T) {
	extractor := newQuietExtractor()

	// 精确命中：基础分100，封顶100
	doc := extractor.Extract("Deployed on kubernetes.")
	mention := findMention(doc, "kubernetes")
	require.NotNil(t, mention)
	assert.InDelta(t, 100.0, mention.Confidence, 0.01)

	// 别名命中：90 + 出现1次加2 = 92
	doc = extractor.Extract("Deployed workloads on k8s.")
	mention = findMention(doc, "kubernetes")
	require.NotNil(t, mention)
	assert.InDelta(t, 92.0, mention.Confidence, 0.01)
	assert.Equal(t, "k8s", mention.OriginalText, "原文应保留实际命中的写法")

	// 变体命中：85 + 2 = 87
	doc = extractor.Extract("Wrote tooling in python3.")
	mention = findMention(doc, "python")
	require.NotNil(t, mention)
	assert.InDelta(t, 87.0, mention.Confidence, 0.01)
}

// TestSkillExtractor_OccurrenceAndCueBoost 出现次数与上下文线索的加成
func TestSkillExtractor_OccurrenceAndCueBoost(t *testing.T) {
	extractor := newQuietExtractor()

	// 出现3次：90 + min(5, 2*3) = 95；证据片段最多保留2条
	doc := extractor.Extract("k8s cluster. k8s operators. k8s upgrades.")
	mention := findMention(doc, "kubernetes")
	require.NotNil(t, mention)
	assert.InDelta(t, 95.0, mention.Confidence, 0.01)
	assert.Len(t, mention.SourceSnippets, 2)

	// 上下文线索：90 + 2 + 2 = 94
	doc = extractor.Extract("Proficient in k8s.")
	mention = findMention(doc, "kubernetes")
	require.NotNil(t, mention)
	assert.InDelta(t, 94.0, mention.Confidence, 0.01)
}

// TestSkillExtractor_MentionOrdering 置信度降序，同分按技能名
func TestSkillExtractor_MentionOrdering(t *testing.T) {
	extractor := newQuietExtractor()

	doc := extractor.Extract("python and java and redis, plus k8s somewhere.")
	require.GreaterOrEqual(t, len(doc.Skills), 4)
	for i := 1; i < len(doc.Skills); i++ {
		prev, cur := doc.Skills[i-1], doc.Skills[i]
		if prev.Confidence == cur.Confidence {
			assert.Less(t, prev.Skill, cur.Skill, "同置信度应按技能名升序")
		} else {
			assert.Greater(t, prev.Confidence, cur.Confidence, "置信度应降序排列")
		}
	}
}

// TestSkillExtractor_Sections 章节探测，含中文标题
func TestSkillExtractor_Sections(t *testing.T) {
	extractor := newQuietExtractor()

	doc := extractor.Extract("Work Experience\n\nBuilt services.\n\nSkills: Python, SQL")
	assert.True(t, doc.DetectedSections[types.SectionExperience])
	assert.True(t, doc.DetectedSections[types.SectionSkills])
	assert.False(t, doc.DetectedSections[types.SectionEducation])

	doc = extractor.Extract("工作经历\n\n负责后端开发\n\n教育背景\n\n计算机科学学士")
	assert.True(t, doc.DetectedSections[types.SectionExperience], "中文章节标题应被识别")
	assert.True(t, doc.DetectedSections[types.SectionEducation])
}

// TestSkillExtractor_ExperienceLevel 经验级别估计
func TestSkillExtractor_ExperienceLevel(t *testing.T) {
	extractor := newQuietExtractor()

	cases := []struct {
		text string
		want string
	}{
		{"Senior Software Engineer", types.ExperienceSenior},
		{"Tech Lead for the platform team", types.ExperienceLead},
		{"Junior developer with 10 years ahead", types.ExperienceJunior}, // 头衔优先于年限
		{"Software engineering intern", types.ExperienceJunior},
		{"2 years of backend development", types.ExperienceJunior},
		{"4 years of backend development", types.ExperienceMid},
		{"8 years of experience building APIs", types.ExperienceSenior},
		{"12 years of experience", types.ExperienceLead},
		{"Built web apps.", types.ExperienceUnknown},
	}
	for _, tc := range cases {
		doc := extractor.Extract(tc.text)
		assert.Equal(t, tc.want, doc.ExperienceLevelEstimate, "文本: %q", tc.text)
	}
}

// TestSkillExtractor_RoleKeywords 角色关键词去重、去停用词、保持顺序
func TestSkillExtractor_RoleKeywords(t *testing.T) {
	extractor := newQuietExtractor()

	doc := extractor.Extract("Backend engineer building backend services with strong ownership")
	assert.Contains(t, doc.RoleKeywords, "backend")
	assert.Contains(t, doc.RoleKeywords, "engineer")
	assert.NotContains(t, doc.RoleKeywords, "with", "停用词应被过滤")
	assert.NotContains(t, doc.RoleKeywords, "strong")

	count := 0
	for _, kw := range doc.RoleKeywords {
		if kw == "backend" {
			count++
		}
	}
	assert.Equal(t, 1, count, "关键词应去重")
}

// TestSkillExtractor_EvidenceOffsetsWithWidthChangingRunes
// İ这类字符经Unicode小写后字节数会变, 证据片段的下标必须不受影响
func TestSkillExtractor_EvidenceOffsetsWithWidthChangingRunes(t *testing.T) {
	extractor := newQuietExtractor()

	doc := extractor.Extract("İstanbul İzmir teams. Skills: Python and Redis.")

	python := findMention(doc, "python")
	require.NotNil(t, python)
	assert.Equal(t, "Python", python.OriginalText, "原文片段应保留原始大小写且不错位")
	require.NotEmpty(t, python.SourceSnippets)
	assert.Contains(t, python.SourceSnippets[0], "Python and Redis")

	redis := findMention(doc, "redis")
	require.NotNil(t, redis)
	assert.Equal(t, "Redis", redis.OriginalText)
}
