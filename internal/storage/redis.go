package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"resume-match-go/internal/config"
	"resume-match-go/internal/constants"
	"resume-match-go/internal/processor"
	"resume-match-go/internal/tracing"
	"resume-match-go/internal/types"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// ErrNotFound is returned when a key is not found in Redis.
// It wraps the underlying redis.Nil error for abstraction.
var ErrNotFound = redis.Nil

// 为Redis操作定义专用tracer
var redisTracer = otel.Tracer("resume-match-go/storage/redis")

// Redis操作前缀采样率配置
var redisKeySamplingRates = map[string]float64{
	constants.AppPrefix + ":" + constants.EmbedModulePrefix + ":": 0.01, // 嵌入向量缓存读写非常高频, 采样1%
	constants.AppPrefix + ":" + constants.MatchModulePrefix + ":": 0.1,  // 分析结果快照采样10%
	constants.AppPrefix + ":" + constants.FileModulePrefix + ":":  0.25, // 去重操作采样25%
	"lock:": 0.5, // 锁操作采样50%
}

// 随机数生成器
var (
	rnd      *rand.Rand
	rndMutex sync.Mutex
)

func init() {
	source := rand.NewSource(time.Now().UnixNano())
	rnd = rand.New(source)
}

// shouldSampleRedisOp 根据key前缀决定是否需要创建span
func shouldSampleRedisOp(key string) bool {
	if key == "" {
		return false
	}

	for prefix, rate := range redisKeySamplingRates {
		if strings.HasPrefix(key, prefix) {
			return randFloat() < rate
		}
	}

	// 默认采样率5%
	return randFloat() < 0.05
}

// 生成0-1之间的随机数
func randFloat() float64 {
	rndMutex.Lock()
	defer rndMutex.Unlock()
	return rnd.Float64()
}

// 确保Redis实现了嵌入缓存接口
var _ processor.EmbeddingCache = (*Redis)(nil)

// Redis wraps the Redis client
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
	logger *log.Logger
}

// NewRedisAdapter creates a new Redis client connection
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	opt := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		// 连接池设置
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		// 超时设置
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,

		// 重试设置
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: time.Duration(cfg.MinRetryBackoffMS) * time.Millisecond,
		MaxRetryBackoff: time.Duration(cfg.MaxRetryBackoffMS) * time.Millisecond,

		// 连接生命周期
		ConnMaxLifetime: time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute,
		ConnMaxIdleTime: time.Duration(cfg.ConnMaxIdleTimeMinutes) * time.Minute,
	}

	client := redis.NewClient(opt)

	// 添加OpenTelemetry钩子, 记录所有Redis操作
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return &Redis{
		Client: client,
		config: cfg,
		logger: log.New(log.Writer(), "[Redis缓存] ", log.LstdFlags),
	}, nil
}

// Close closes the Redis client connection
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping checks the Redis connection
func (r *Redis) Ping(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Ping(ctx).Err()
}

// GetMD5ExpireDuration 返回配置的MD5记录过期时间
func (r *Redis) GetMD5ExpireDuration() time.Duration {
	days := r.config.MD5RecordExpireDays
	if days <= 0 {
		days = 365
	}
	return time.Duration(days) * 24 * time.Hour
}

// GetOrCompute 经Redis缓存取文本的嵌入向量
// 命中直接返回; 未命中则计算并回填; Redis读写失败只降级为直接计算,
// 不把缓存故障放大成嵌入故障
func (r *Redis) GetOrCompute(ctx context.Context, text, modelID string, compute processor.ComputeFunc) ([]float64, error) {
	fingerprint := processor.Fingerprint(modelID, text)
	cacheKey := fmt.Sprintf(constants.KeyEmbeddingVector, fingerprint)

	if r.Client != nil {
		cached, err := r.Client.Get(ctx, cacheKey).Result()
		if err == nil {
			var vector []float64
			if jsonErr := json.Unmarshal([]byte(cached), &vector); jsonErr == nil && len(vector) > 0 {
				return vector, nil
			}
			r.logger.Printf("[WARN] 嵌入缓存内容损坏, 重新计算: key=%s", cacheKey)
		} else if err != redis.Nil {
			r.logger.Printf("[WARN] 读取嵌入缓存失败, 降级为直接计算: %v", err)
		}
	}

	vector, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	if r.Client != nil {
		vectorJSON, jsonErr := json.Marshal(vector)
		if jsonErr == nil {
			if setErr := r.Client.Set(ctx, cacheKey, vectorJSON, constants.EmbeddingCacheDuration).Err(); setErr != nil {
				r.logger.Printf("[WARN] 回填嵌入缓存失败: %v", setErr)
			}
		}
	}
	return vector, nil
}

// CacheAnalysis 缓存分析结果快照
func (r *Redis) CacheAnalysis(ctx context.Context, result *types.AnalysisResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("序列化分析结果失败: %w", err)
	}
	key := fmt.Sprintf(constants.KeyAnalysisResult, result.AnalysisID)
	return r.Set(ctx, key, string(resultJSON), constants.AnalysisCacheDuration)
}

// GetCachedAnalysis 读取分析结果快照, 未命中返回ErrNotFound
func (r *Redis) GetCachedAnalysis(ctx context.Context, analysisID string) (*types.AnalysisResult, error) {
	key := fmt.Sprintf(constants.KeyAnalysisResult, analysisID)
	val, err := r.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var result types.AnalysisResult
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		return nil, fmt.Errorf("反序列化分析结果失败: %w", err)
	}
	return &result, nil
}

// CheckAndAddResumeTextMD5 检查并添加简历文本MD5到去重集合, 是一个原子操作
// 返回该MD5是否已存在
func (r *Redis) CheckAndAddResumeTextMD5(ctx context.Context, md5Hex string) (exists bool, err error) {
	ctx, span := redisTracer.Start(ctx, "Redis.CheckAndAddResumeTextMD5",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		semconv.DBSystemRedis,
		attribute.String("db.redis.database", fmt.Sprintf("%d", r.config.DB)),
		attribute.String("net.peer.name", r.config.Address),
		attribute.String("db.operation", "EVAL"),
		attribute.String("db.redis.key", constants.KeyResumeTextMD5Set),
		attribute.String("db.redis.member", md5Hex),
	)

	if r.Client == nil {
		err = fmt.Errorf("redis client is not initialized")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}

	// 使用Lua脚本进行原子检查和添加
	script := `
		local exists = redis.call('SISMEMBER', KEYS[1], ARGV[1])
		redis.call('SADD', KEYS[1], ARGV[1])
		redis.call('EXPIRE', KEYS[1], ARGV[2])
		return exists
	`

	expiry := r.GetMD5ExpireDuration().Seconds()

	res, err := r.Client.Eval(ctx, script, []string{constants.KeyResumeTextMD5Set}, md5Hex, expiry).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("执行原子检查和添加操作失败: %w", err)
	}

	existsVal, ok := res.(int64)
	if !ok {
		err := fmt.Errorf("意外的Redis返回类型: %T", res)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}

	exists = existsVal == 1
	span.SetAttributes(attribute.Bool("already_exists", exists))
	span.SetStatus(codes.Ok, "")

	return exists, nil
}

// MapResumeMD5ToID 记录MD5到已入库简历ID的映射, 供去重命中时回查
func (r *Redis) MapResumeMD5ToID(ctx context.Context, md5Hex, resumeID string) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	key := fmt.Sprintf(constants.KeyResumeMD5ToID, md5Hex)
	return r.Client.SetNX(ctx, key, resumeID, r.GetMD5ExpireDuration()).Err()
}

// GetResumeIDByMD5 通过文本MD5反查简历ID, 未命中返回ErrNotFound
func (r *Redis) GetResumeIDByMD5(ctx context.Context, md5Hex string) (string, error) {
	if r.Client == nil {
		return "", fmt.Errorf("redis client is not initialized")
	}
	key := fmt.Sprintf(constants.KeyResumeMD5ToID, md5Hex)
	return r.Client.Get(ctx, key).Result()
}

// RemoveResumeTextMD5 从去重集合中移除简历文本MD5
func (r *Redis) RemoveResumeTextMD5(ctx context.Context, md5Hex string) error {
	ctx, span := redisTracer.Start(ctx, "Redis.RemoveResumeTextMD5",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		semconv.DBSystemRedis,
		attribute.String("db.redis.database", fmt.Sprintf("%d", r.config.DB)),
		attribute.String("net.peer.name", r.config.Address),
		attribute.String("db.operation", "SREM"),
		attribute.String("db.redis.key", constants.KeyResumeTextMD5Set),
		attribute.String("db.redis.member", md5Hex),
	)

	result, err := r.Client.SRem(ctx, constants.KeyResumeTextMD5Set, md5Hex).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("从集合中移除MD5失败: %w", err)
	}

	span.SetAttributes(attribute.Int64("removed_count", result))
	span.SetStatus(codes.Ok, "")

	return nil
}

// Get 获取键的值
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	if r.Client == nil {
		return "", fmt.Errorf("redis客户端未初始化")
	}

	var span trace.Span

	// 根据key前缀决定是否创建span
	if shouldSampleRedisOp(key) {
		ctx, span = redisTracer.Start(ctx, "Redis.Get", trace.WithSpanKind(trace.SpanKindClient))
		defer span.End()

		span.SetAttributes(
			attribute.String("db.system", "redis"),
			attribute.String("db.operation", "GET"),
			attribute.String("db.redis.key", tracing.SafeRedisKey(key)),
			// 设置标志位，表示不要在子span中传播，避免与redisotel hook产生的span重复
			attribute.Bool("otel.propagate_to_child", false),
		)
	}

	val, err := r.Client.Get(ctx, key).Result()

	if span != nil {
		if err != nil {
			// 对于key不存在的情况，不应该算作错误
			if err == redis.Nil {
				span.SetStatus(codes.Ok, "key not found")
				span.SetAttributes(attribute.Bool("db.redis.key_exists", false))
			} else {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return "", err
		}

		span.SetAttributes(
			attribute.Bool("db.redis.key_exists", true),
			attribute.Int("db.redis.value_length", len(val)),
		)
		span.SetStatus(codes.Ok, "")
	}

	return val, err
}

// Set 设置键的值
func (r *Redis) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	if r.Client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}

	var span trace.Span

	if shouldSampleRedisOp(key) {
		ctx, span = redisTracer.Start(ctx, "Redis.Set", trace.WithSpanKind(trace.SpanKindClient))
		defer span.End()

		span.SetAttributes(
			attribute.String("db.system", "redis"),
			attribute.String("db.operation", "SET"),
			attribute.String("db.redis.key", tracing.SafeRedisKey(key)),
			attribute.Int("db.redis.value_length", len(value)),
			attribute.Bool("otel.propagate_to_child", false),
		)

		if expiration > 0 {
			span.SetAttributes(attribute.Int64("db.redis.expiration_ms", expiration.Milliseconds()))
		}
	}

	err := r.Client.Set(ctx, key, value, expiration).Err()

	if span != nil {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		span.SetStatus(codes.Ok, "")
	}

	return err
}

// AcquireLock 尝试获取一个分布式锁
func (r *Redis) AcquireLock(ctx context.Context, lockKey string, expiration time.Duration) (string, error) {
	if r.Client == nil {
		return "", fmt.Errorf("redis client is not initialized")
	}
	lockValue := fmt.Sprintf("%d", time.Now().UnixNano())
	ok, err := r.Client.SetNX(ctx, lockKey, lockValue, expiration).Result()
	if err != nil {
		return "", err
	}
	if ok {
		return lockValue, nil
	}
	return "", nil
}

// ReleaseLock 释放一个分布式锁，使用Lua脚本保证原子性
func (r *Redis) ReleaseLock(ctx context.Context, lockKey string, lockValue string) (bool, error) {
	if r.Client == nil {
		return false, fmt.Errorf("redis client is not initialized")
	}
	script := `
        if redis.call("get", KEYS[1]) == ARGV[1] then
            return redis.call("del", KEYS[1])
        else
            return 0
        end
    `
	res, err := r.Client.Eval(ctx, script, []string{lockKey}, lockValue).Result()
	if err != nil {
		return false, err
	}

	if released, ok := res.(int64); ok && released == 1 {
		return true, nil
	}

	return false, nil
}
