package processor_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"resume-match-go/internal/processor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFingerprint_Stability 指纹只由模型标识和文本决定
func TestFingerprint_Stability(t *testing.T) {
	fp1 := processor.Fingerprint("model-a", "some resume text")
	fp2 := processor.Fingerprint("model-a", "some resume text")
	assert.Equal(t, fp1, fp2)
	assert.Len(t, fp1, 64, "sha256十六进制长度应为64")

	assert.NotEqual(t, fp1, processor.Fingerprint("model-b", "some resume text"), "不同模型应有不同指纹")
	assert.NotEqual(t, fp1, processor.Fingerprint("model-a", "other text"))
	// 分隔符防止模型名与文本的拼接歧义
	assert.NotEqual(t, processor.Fingerprint("ab", "c"), processor.Fingerprint("a", "bc"))
}

// TestMemoryEmbeddingCache_ComputeOnce 命中时不再调用compute
func TestMemoryEmbeddingCache_ComputeOnce(t *testing.T) {
	cache := processor.NewMemoryEmbeddingCache()
	var calls atomic.Int32
	compute := func(ctx context.Context) ([]float64, error) {
		calls.Add(1)
		return []float64{1, 2, 3}, nil
	}

	first, err := cache.GetOrCompute(context.Background(), "text", "model", compute)
	require.NoError(t, err)
	second, err := cache.GetOrCompute(context.Background(), "text", "model", compute)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load(), "第二次调用应命中缓存")
	assert.Equal(t, 1, cache.Len())
}

// TestMemoryEmbeddingCache_FailureNotCached 计算失败不写入缓存
func TestMemoryEmbeddingCache_FailureNotCached(t *testing.T) {
	cache := processor.NewMemoryEmbeddingCache()
	var calls atomic.Int32

	_, err := cache.GetOrCompute(context.Background(), "text", "model", func(ctx context.Context) ([]float64, error) {
		calls.Add(1)
		return nil, errors.New("quota exceeded")
	})
	require.Error(t, err)
	assert.Equal(t, 0, cache.Len())

	// 失败后再次请求应重新计算
	vector, err := cache.GetOrCompute(context.Background(), "text", "model", func(ctx context.Context) ([]float64, error) {
		calls.Add(1)
		return []float64{1}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, vector)
	assert.Equal(t, int32(2), calls.Load())
}

// TestMemoryEmbeddingCache_ConcurrentSingleCompute 相同指纹的并发请求只计算一次
func TestMemoryEmbeddingCache_ConcurrentSingleCompute(t *testing.T) {
	cache := processor.NewMemoryEmbeddingCache()
	var calls atomic.Int32
	release := make(chan struct{})

	compute := func(ctx context.Context) ([]float64, error) {
		calls.Add(1)
		<-release
		return []float64{42}, nil
	}

	const goroutines = 16
	var wg sync.WaitGroup
	results := make([][]float64, goroutines)
	errs := make([]error, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = cache.GetOrCompute(context.Background(), "shared", "model", compute)
		}(i)
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "并发请求应合并为一次计算")
	for i := 0; i < goroutines; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, []float64{42}, results[i])
	}
}

// countingCache 记录GetOrCompute被触达次数的透传缓存, 模拟持久层
type countingCache struct {
	inner *processor.MemoryEmbeddingCache
	calls atomic.Int32
}

func (c *countingCache) GetOrCompute(ctx context.Context, text, modelID string, compute processor.ComputeFunc) ([]float64, error) {
	c.calls.Add(1)
	return c.inner.GetOrCompute(ctx, text, modelID, compute)
}

// TestLayeredEmbeddingCache_FrontHitSkipsBack 内存层命中后不再触达持久层
func TestLayeredEmbeddingCache_FrontHitSkipsBack(t *testing.T) {
	back := &countingCache{inner: processor.NewMemoryEmbeddingCache()}
	layered := processor.NewLayeredEmbeddingCache(processor.NewMemoryEmbeddingCache(), back)

	var computes atomic.Int32
	compute := func(ctx context.Context) ([]float64, error) {
		computes.Add(1)
		return []float64{7}, nil
	}

	first, err := layered.GetOrCompute(context.Background(), "text", "model", compute)
	require.NoError(t, err)
	second, err := layered.GetOrCompute(context.Background(), "text", "model", compute)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), computes.Load())
	assert.Equal(t, int32(1), back.calls.Load(), "内存层命中后持久层不应再被访问")
}

// TestLayeredEmbeddingCache_ConcurrentMissesMergeInFront 并发未命中在内存层合并,
// 持久层和计算函数都只被触发一次
func TestLayeredEmbeddingCache_ConcurrentMissesMergeInFront(t *testing.T) {
	back := &countingCache{inner: processor.NewMemoryEmbeddingCache()}
	layered := processor.NewLayeredEmbeddingCache(processor.NewMemoryEmbeddingCache(), back)

	var computes atomic.Int32
	release := make(chan struct{})
	compute := func(ctx context.Context) ([]float64, error) {
		computes.Add(1)
		<-release
		return []float64{3, 1, 4}, nil
	}

	const goroutines = 8
	var wg sync.WaitGroup
	errs := make([]error, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = layered.GetOrCompute(context.Background(), "shared", "model", compute)
		}(i)
	}
	close(release)
	wg.Wait()

	for i := 0; i < goroutines; i++ {
		require.NoError(t, errs[i])
	}
	assert.Equal(t, int32(1), computes.Load())
	assert.Equal(t, int32(1), back.calls.Load())
}

// TestMemoryEmbeddingCache_DifferentModels 不同模型的同一文本各自缓存
func TestMemoryEmbeddingCache_DifferentModels(t *testing.T) {
	cache := processor.NewMemoryEmbeddingCache()
	var calls atomic.Int32
	compute := func(ctx context.Context) ([]float64, error) {
		calls.Add(1)
		return []float64{float64(calls.Load())}, nil
	}

	a, err := cache.GetOrCompute(context.Background(), "text", "model-a", compute)
	require.NoError(t, err)
	b, err := cache.GetOrCompute(context.Background(), "text", "model-b", compute)
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, cache.Len())
}
