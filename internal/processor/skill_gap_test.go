package processor_test

import (
	"testing"

	"resume-match-go/internal/parser"
	"resume-match-go/internal/processor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAnalyzeSkillGap_Basic 三分区划分与技能重叠分的基准场景
func TestAnalyzeSkillGap_Basic(t *testing.T) {
	tax := parser.DefaultSkillTaxonomy()
	resume := []string{"Python", "SQL"}
	required := []string{"Python", "SQL", "Kubernetes"}
	preferred := []string{"Docker"}

	gap := processor.AnalyzeSkillGap(resume, required, preferred, tax)
	assert.ElementsMatch(t, []string{"python", "sql"}, gap.MatchingSkills)
	assert.ElementsMatch(t, []string{"kubernetes"}, gap.MissingRequiredSkills)
	assert.ElementsMatch(t, []string{"docker"}, gap.NiceToHaveSkills)

	score := processor.SkillOverlapScore(resume, required, preferred, tax)
	assert.Equal(t, 67, score, "2/3必备覆盖应四舍五入到67")
}

// TestAnalyzeSkillGap_AliasEquality 别名按规范名判等
func TestAnalyzeSkillGap_AliasEquality(t *testing.T) {
	tax := parser.DefaultSkillTaxonomy()

	gap := processor.AnalyzeSkillGap([]string{"JS", "golang"}, []string{"JavaScript", "Go"}, nil, tax)
	assert.ElementsMatch(t, []string{"javascript", "go"}, gap.MatchingSkills)
	assert.Empty(t, gap.MissingRequiredSkills)
}

// TestAnalyzeSkillGap_Disjoint 三个集合互不相交
func TestAnalyzeSkillGap_Disjoint(t *testing.T) {
	tax := parser.DefaultSkillTaxonomy()
	gap := processor.AnalyzeSkillGap(
		[]string{"python", "docker"},
		[]string{"python", "kubernetes", "docker"},
		[]string{"docker", "kubernetes", "terraform"},
		tax,
	)

	inAll := make(map[string]int)
	for _, s := range gap.MatchingSkills {
		inAll[s]++
	}
	for _, s := range gap.MissingRequiredSkills {
		inAll[s]++
	}
	for _, s := range gap.NiceToHaveSkills {
		inAll[s]++
	}
	for skill, count := range inAll {
		assert.Equal(t, 1, count, "技能 %s 出现在多个分区", skill)
	}

	// missing-required的技能不得再出现在nice-to-have
	assert.Contains(t, gap.MissingRequiredSkills, "kubernetes")
	assert.NotContains(t, gap.NiceToHaveSkills, "kubernetes")
}

// TestSkillOverlapScore_PreferredBonus 加分项覆盖率的固定加成
func TestSkillOverlapScore_PreferredBonus(t *testing.T) {
	tax := parser.DefaultSkillTaxonomy()

	// 必备全中 + 加分全中: 100 + 10, 封顶100
	score := processor.SkillOverlapScore([]string{"python", "docker"}, []string{"python"}, []string{"docker"}, tax)
	assert.Equal(t, 100, score)

	// 必备一半 + 加分全中: 50 + 10 = 60
	score = processor.SkillOverlapScore([]string{"python", "docker"}, []string{"python", "sql"}, []string{"docker"}, tax)
	assert.Equal(t, 60, score)

	// 必备一半, 没有加分项: 50
	score = processor.SkillOverlapScore([]string{"python"}, []string{"python", "sql"}, nil, tax)
	assert.Equal(t, 50, score)
}

// TestSkillOverlapScore_EmptyInputs 空集合的边界行为
func TestSkillOverlapScore_EmptyInputs(t *testing.T) {
	tax := parser.DefaultSkillTaxonomy()

	assert.Equal(t, 0, processor.SkillOverlapScore(nil, []string{"python"}, nil, tax))
	assert.Equal(t, 0, processor.SkillOverlapScore([]string{"python"}, nil, nil, tax), "没有必备技能时基础分为0")

	gap := processor.AnalyzeSkillGap(nil, nil, nil, tax)
	require.NotNil(t, gap)
	assert.Empty(t, gap.MatchingSkills)
	assert.Empty(t, gap.MissingRequiredSkills)
	assert.Empty(t, gap.NiceToHaveSkills)
}

// TestAnalyzeSkillGap_NilTaxonomy 无分类表时退化为小写判等
func TestAnalyzeSkillGap_NilTaxonomy(t *testing.T) {
	gap := processor.AnalyzeSkillGap([]string{"Python"}, []string{"python"}, nil, nil)
	assert.ElementsMatch(t, []string{"python"}, gap.MatchingSkills)
}
