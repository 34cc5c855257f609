package processor

import (
	"math"

	"resume-match-go/internal/constants"
)

// FuseScores 用默认权重融合语义分与技能重叠分
func FuseScores(semanticScore, skillScore int) int {
	return FuseScoresWeighted(semanticScore, skillScore,
		constants.DefaultSemanticWeight, constants.DefaultSkillWeight)
}

// FuseScoresWeighted 带权重的分数融合，纯函数
// 权重非法（非正或和为0）时回退到默认权重；权重和不为1时归一化
func FuseScoresWeighted(semanticScore, skillScore int, semanticWeight, skillWeight float64) int {
	if semanticWeight <= 0 || skillWeight <= 0 {
		semanticWeight = constants.DefaultSemanticWeight
		skillWeight = constants.DefaultSkillWeight
	}
	total := semanticWeight + skillWeight
	semanticWeight /= total
	skillWeight /= total

	semantic := float64(clampScore(semanticScore))
	skill := float64(clampScore(skillScore))

	return clampScore(int(math.Round(semanticWeight*semantic + skillWeight*skill)))
}
