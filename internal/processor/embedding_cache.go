package processor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Fingerprint 计算嵌入缓存键: sha256(模型标识 + 0x00 + 原始文本)
// 分隔符保证 ("ab","c") 与 ("a","bc") 不会撞键
func Fingerprint(modelID, text string) string {
	h := sha256.New()
	h.Write([]byte(modelID))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// inflightCompute 正在计算中的条目，后到者等待首个计算完成
type inflightCompute struct {
	done   chan struct{}
	vector []float64
	err    error
}

// MemoryEmbeddingCache 进程内嵌入缓存
// 无上限、并发安全；相同指纹的并发请求只触发一次计算，
// 计算失败不写入缓存，后续请求会重新计算
type MemoryEmbeddingCache struct {
	mu       sync.Mutex
	entries  map[string][]float64
	inflight map[string]*inflightCompute
}

// NewMemoryEmbeddingCache 创建内存嵌入缓存
func NewMemoryEmbeddingCache() *MemoryEmbeddingCache {
	return &MemoryEmbeddingCache{
		entries:  make(map[string][]float64),
		inflight: make(map[string]*inflightCompute),
	}
}

// GetOrCompute 命中直接返回缓存向量；未命中时调用compute并缓存结果
// 持锁期间绝不执行compute，计算在锁外进行
func (c *MemoryEmbeddingCache) GetOrCompute(ctx context.Context, text string, modelID string, compute ComputeFunc) ([]float64, error) {
	fp := Fingerprint(modelID, text)

	c.mu.Lock()
	if vector, ok := c.entries[fp]; ok {
		c.mu.Unlock()
		return vector, nil
	}
	if call, ok := c.inflight[fp]; ok {
		c.mu.Unlock()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-call.done:
			return call.vector, call.err
		}
	}
	call := &inflightCompute{done: make(chan struct{})}
	c.inflight[fp] = call
	c.mu.Unlock()

	vector, err := compute(ctx)

	c.mu.Lock()
	delete(c.inflight, fp)
	if err == nil {
		c.entries[fp] = vector
	}
	c.mu.Unlock()

	call.vector = vector
	call.err = err
	close(call.done)

	return vector, err
}

// Len 返回已缓存条目数，测试用
func (c *MemoryEmbeddingCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// LayeredEmbeddingCache 两级嵌入缓存
// 前层负责进程内的并发合并，后层提供跨进程、跨重启的持久命中；
// 前层未命中时才会触达后层，后层未命中时才触发真正的计算
type LayeredEmbeddingCache struct {
	front EmbeddingCache
	back  EmbeddingCache
}

// NewLayeredEmbeddingCache 组合前层与后层缓存
func NewLayeredEmbeddingCache(front, back EmbeddingCache) *LayeredEmbeddingCache {
	return &LayeredEmbeddingCache{front: front, back: back}
}

// GetOrCompute 先查前层，前层未命中时以"查后层"作为前层的计算函数
// 并发的相同请求在前层合并，保证后层与计算函数对同一指纹各至多触发一次
func (c *LayeredEmbeddingCache) GetOrCompute(ctx context.Context, text string, modelID string, compute ComputeFunc) ([]float64, error) {
	return c.front.GetOrCompute(ctx, text, modelID, func(cctx context.Context) ([]float64, error) {
		return c.back.GetOrCompute(cctx, text, modelID, compute)
	})
}
