package parser_test

import (
	"math"
	"testing"

	"resume-match-go/internal/constants"
	"resume-match-go/internal/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBagOfSkillsEmbedder_Deterministic 同一抽取结果必须产生同一向量
func TestBagOfSkillsEmbedder_Deterministic(t *testing.T) {
	extractor := newQuietExtractor()
	embedder := parser.NewBagOfSkillsEmbedder(256)
	doc := extractor.Extract("Senior engineer with Python, Kubernetes and PostgreSQL.")

	first := embedder.EmbedDocument(doc)
	second := embedder.EmbedDocument(doc)

	require.Equal(t, first, second)
	assert.Len(t, first, 256)
}

// TestBagOfSkillsEmbedder_Normalized 非空向量应为单位长度
func TestBagOfSkillsEmbedder_Normalized(t *testing.T) {
	extractor := newQuietExtractor()
	embedder := parser.NewBagOfSkillsEmbedder(128)
	doc := extractor.Extract("Worked with Go, Redis and Kafka.")

	vector := embedder.EmbedDocument(doc)
	var norm float64
	for _, v := range vector {
		norm += v * v
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9, "向量应做L2归一化")
}

// TestBagOfSkillsEmbedder_NilAndEmpty nil文档和无内容文档返回零向量
func TestBagOfSkillsEmbedder_NilAndEmpty(t *testing.T) {
	embedder := parser.NewBagOfSkillsEmbedder(64)

	vector := embedder.EmbedDocument(nil)
	require.Len(t, vector, 64)
	for _, v := range vector {
		assert.Zero(t, v)
	}
}

// TestBagOfSkillsEmbedder_Distinguishes 不同技能组合产生不同向量
func TestBagOfSkillsEmbedder_Distinguishes(t *testing.T) {
	extractor := newQuietExtractor()
	embedder := parser.NewBagOfSkillsEmbedder(256)

	pythonDoc := extractor.Extract("Python developer")
	javaDoc := extractor.Extract("Java developer")

	assert.NotEqual(t, embedder.EmbedDocument(pythonDoc), embedder.EmbedDocument(javaDoc))
}

// TestBagOfSkillsEmbedder_Defaults 非法维度回退到默认值
func TestBagOfSkillsEmbedder_Defaults(t *testing.T) {
	embedder := parser.NewBagOfSkillsEmbedder(0)
	assert.Equal(t, 256, embedder.Dimensions())
	assert.Equal(t, constants.FallbackEmbeddingModelID, embedder.ModelID())
}
