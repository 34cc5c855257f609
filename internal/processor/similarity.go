package processor

import (
	"math"
	"sort"
)

// CosineSimilarity 计算两个向量的余弦相似度，取值[-1,1]
// 维度不一致或任一向量为零向量时返回0，零向量不携带任何信号
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// 浮点误差可能越过边界
	if sim > 1 {
		return 1
	}
	if sim < -1 {
		return -1
	}
	return sim
}

// SemanticScore 将余弦相似度映射到0-100整数分
func SemanticScore(cosine float64) int {
	scaled := (cosine + 1) / 2
	if scaled < 0 {
		scaled = 0
	}
	if scaled > 1 {
		scaled = 1
	}
	return int(math.Round(scaled * 100))
}

// RankBySimilarity 计算query对每个候选向量的相似度并按相似度降序返回候选下标
// 相似度相同的候选保持输入顺序（稳定排序）
func RankBySimilarity(query []float64, candidates [][]float64) []int {
	similarities := make([]float64, len(candidates))
	indices := make([]int, len(candidates))
	for i, candidate := range candidates {
		similarities[i] = CosineSimilarity(query, candidate)
		indices[i] = i
	}

	sort.SliceStable(indices, func(i, j int) bool {
		return similarities[indices[i]] > similarities[indices[j]]
	})
	return indices
}
