package parser

import (
	"hash/fnv"
	"math"

	"resume-match-go/internal/constants"
	"resume-match-go/internal/types"
)

// BagOfSkillsEmbedder 确定性降级嵌入器
// 嵌入服务不可用时用技能和角色关键词的哈希散布构造稀疏向量，
// 同一抽取结果永远产生同一向量。只用于降级路径，不具备真实语义
type BagOfSkillsEmbedder struct {
	dimensions int
}

// 降级向量中各成分的权重
const (
	fallbackSkillWeightScale = 1.0 / 100.0 // 技能按置信度加权
	fallbackKeywordWeight    = 0.25
)

// NewBagOfSkillsEmbedder 创建降级嵌入器，dim<=0时使用256维
func NewBagOfSkillsEmbedder(dimensions int) *BagOfSkillsEmbedder {
	if dimensions <= 0 {
		dimensions = 256
	}
	return &BagOfSkillsEmbedder{dimensions: dimensions}
}

// Dimensions 返回向量维度
func (b *BagOfSkillsEmbedder) Dimensions() int {
	return b.dimensions
}

// ModelID 返回降级嵌入的模型标识
func (b *BagOfSkillsEmbedder) ModelID() string {
	return constants.FallbackEmbeddingModelID
}

// EmbedDocument 由抽取结果构造L2归一化的降级向量
func (b *BagOfSkillsEmbedder) EmbedDocument(doc *types.ExtractedDocument) []float64 {
	vector := make([]float64, b.dimensions)
	if doc == nil {
		return vector
	}

	for _, mention := range doc.Skills {
		b.scatter(vector, "skill:"+mention.Skill, mention.Confidence*fallbackSkillWeightScale)
	}
	for _, keyword := range doc.RoleKeywords {
		b.scatter(vector, "kw:"+keyword, fallbackKeywordWeight)
	}

	var norm float64
	for _, v := range vector {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vector {
			vector[i] /= norm
		}
	}
	return vector
}

// scatter 把词条按FNV哈希散布到一个维度上，最高位决定符号
func (b *BagOfSkillsEmbedder) scatter(vector []float64, term string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(term))
	sum := h.Sum64()

	idx := int(sum % uint64(b.dimensions))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vector[idx] += weight
}
