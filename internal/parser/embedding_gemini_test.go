package parser_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"resume-match-go/internal/config"
	"resume-match-go/internal/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// geminiEmbedFixture batchEmbedContents响应的测试夹具
type geminiEmbedFixture struct {
	Embeddings []struct {
		Values []float64 `json:"values"`
	} `json:"embeddings"`
}

func embedFixture(vectors ...[]float64) geminiEmbedFixture {
	var fixture geminiEmbedFixture
	for _, v := range vectors {
		fixture.Embeddings = append(fixture.Embeddings, struct {
			Values []float64 `json:"values"`
		}{Values: v})
	}
	return fixture
}

// TestGeminiEmbedder_EmbedStrings_Success 测试成功获取嵌入
func TestGeminiEmbedder_EmbedStrings_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "batchEmbedContents")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		requests, ok := body["requests"].([]interface{})
		require.True(t, ok)
		assert.Len(t, requests, 2)

		json.NewEncoder(w).Encode(embedFixture([]float64{0.1, 0.2, 0.3}, []float64{0.4, 0.5, 0.6}))
	}))
	defer server.Close()

	embedder, err := parser.NewGeminiEmbedder("test-key", config.EmbeddingConfig{
		Model:   "text-embedding-004",
		BaseURL: server.URL,
	})
	require.NoError(t, err)

	vectors, err := embedder.EmbedStrings(context.Background(), []string{"resume text", "jd text"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, vectors[0])
	assert.Equal(t, []float64{0.4, 0.5, 0.6}, vectors[1])
}

// TestGeminiEmbedder_EmbedStrings_EmptyInput 空输入返回空切片且不发请求
func TestGeminiEmbedder_EmbedStrings_EmptyInput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("空输入不应发起HTTP请求")
	}))
	defer server.Close()

	embedder, err := parser.NewGeminiEmbedder("test-key", config.EmbeddingConfig{BaseURL: server.URL})
	require.NoError(t, err)

	vectors, err := embedder.EmbedStrings(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, vectors)
	assert.Empty(t, vectors)
}

// TestGeminiEmbedder_RetryOnServerError 5xx触发重试，重试成功后正常返回
func TestGeminiEmbedder_RetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, `{"error":{"code":500,"message":"internal","status":"INTERNAL"}}`, http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(embedFixture([]float64{1, 0}))
	}))
	defer server.Close()

	embedder, err := parser.NewGeminiEmbedder("test-key", config.EmbeddingConfig{
		BaseURL:    server.URL,
		MaxRetries: 2,
	})
	require.NoError(t, err)

	vectors, err := embedder.EmbedStrings(context.Background(), []string{"text"})
	require.NoError(t, err)
	require.Len(t, vectors, 1)
	assert.Equal(t, int32(2), calls.Load(), "第一次失败后应重试一次")
}

// TestGeminiEmbedder_NoRetryOnBadRequest 4xx（非429）不重试直接返回错误
func TestGeminiEmbedder_NoRetryOnBadRequest(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":{"code":400,"message":"bad input","status":"INVALID_ARGUMENT"}}`, http.StatusBadRequest)
	}))
	defer server.Close()

	embedder, err := parser.NewGeminiEmbedder("test-key", config.EmbeddingConfig{
		BaseURL:    server.URL,
		MaxRetries: 3,
	})
	require.NoError(t, err)

	_, err = embedder.EmbedStrings(context.Background(), []string{"text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_ARGUMENT")
	assert.Equal(t, int32(1), calls.Load(), "不可重试错误只应请求一次")
}

// TestGeminiEmbedder_CountMismatch 响应数量与请求数量不符时报错
func TestGeminiEmbedder_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedFixture([]float64{1, 0}))
	}))
	defer server.Close()

	embedder, err := parser.NewGeminiEmbedder("test-key", config.EmbeddingConfig{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = embedder.EmbedStrings(context.Background(), []string{"one", "two"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "数量不符")
}

// TestGeminiEmbedder_NoAPIKey 没有API Key时初始化失败
func TestGeminiEmbedder_NoAPIKey(t *testing.T) {
	_, err := parser.NewGeminiEmbedder("", config.EmbeddingConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API密钥不能为空")
}
