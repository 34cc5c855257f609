package processor

import (
	"math"
	"sort"
	"strings"

	"resume-match-go/internal/constants"
	"resume-match-go/internal/parser"
	"resume-match-go/internal/types"
)

// normalizeSkillSet 把技能列表归一为规范名集合
// taxonomy为nil时退化为小写修剪，保证别名如"JS"与"JavaScript"判等
func normalizeSkillSet(skills []string, taxonomy *parser.SkillTaxonomy) map[string]bool {
	set := make(map[string]bool, len(skills))
	for _, skill := range skills {
		var canon string
		if taxonomy != nil {
			canon = taxonomy.Normalize(skill)
		} else {
			canon = strings.ToLower(strings.TrimSpace(skill))
		}
		if canon != "" {
			set[canon] = true
		}
	}
	return set
}

// sortedKeys 集合转有序切片，保证输出稳定
func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AnalyzeSkillGap 将JD技能按简历持有情况划分为三个互不相交的集合:
// matching = resume ∩ (required ∪ preferred)
// missing_required = required − resume
// nice_to_have = preferred − resume − required
func AnalyzeSkillGap(resumeSkills, requiredSkills, preferredSkills []string, taxonomy *parser.SkillTaxonomy) *types.SkillGapResult {
	resume := normalizeSkillSet(resumeSkills, taxonomy)
	required := normalizeSkillSet(requiredSkills, taxonomy)
	preferred := normalizeSkillSet(preferredSkills, taxonomy)

	matching := make(map[string]bool)
	missingRequired := make(map[string]bool)
	niceToHave := make(map[string]bool)

	for skill := range required {
		if resume[skill] {
			matching[skill] = true
		} else {
			missingRequired[skill] = true
		}
	}
	for skill := range preferred {
		if resume[skill] {
			matching[skill] = true
		} else if !required[skill] {
			niceToHave[skill] = true
		}
	}

	return &types.SkillGapResult{
		MatchingSkills:        sortedKeys(matching),
		MissingRequiredSkills: sortedKeys(missingRequired),
		NiceToHaveSkills:      sortedKeys(niceToHave),
	}
}

// SkillOverlapScore 词法技能重叠分，0-100整数
// 必备覆盖率为基础分，加分项覆盖率乘以固定权重后叠加
func SkillOverlapScore(resumeSkills, requiredSkills, preferredSkills []string, taxonomy *parser.SkillTaxonomy) int {
	resume := normalizeSkillSet(resumeSkills, taxonomy)
	required := normalizeSkillSet(requiredSkills, taxonomy)
	preferred := normalizeSkillSet(preferredSkills, taxonomy)

	matchedRequired := 0
	for skill := range required {
		if resume[skill] {
			matchedRequired++
		}
	}
	requiredDenom := len(required)
	if requiredDenom < 1 {
		requiredDenom = 1
	}

	var preferredCoverage float64
	if len(preferred) > 0 {
		matchedPreferred := 0
		for skill := range preferred {
			if resume[skill] {
				matchedPreferred++
			}
		}
		preferredCoverage = float64(matchedPreferred) / float64(len(preferred))
	}

	score := 100*float64(matchedRequired)/float64(requiredDenom) +
		constants.PreferredCoverageBonus*preferredCoverage
	return clampScore(int(math.Round(score)))
}

// clampScore 约束到[0,100]
func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
