package constants

import "time"

// 技能抽取常量
const (
	// ConfidenceExact 规范名精确命中的基础置信度
	ConfidenceExact = 100.0
	// ConfidenceAlias 别名命中的基础置信度
	ConfidenceAlias = 90.0
	// ConfidenceVariation 变体写法命中的基础置信度
	ConfidenceVariation = 85.0

	// OccurrenceBoostStep 每次出现的置信度加成
	OccurrenceBoostStep = 2.0
	// OccurrenceBoostCap 出现次数加成上限
	OccurrenceBoostCap = 5.0
	// ContextCueBoost 证据片段中出现上下文线索词时的加成
	ContextCueBoost = 2.0
	// ConfidenceCeiling 置信度上限
	ConfidenceCeiling = 100.0

	// MaxEvidenceSnippets 每个技能保留的证据片段数上限
	MaxEvidenceSnippets = 2
	// SnippetContextRunes 证据片段向命中两侧扩展的字符数
	SnippetContextRunes = 50
	// MaxRoleKeywords 角色关键词数上限
	MaxRoleKeywords = 25
)

// 评分常量
const (
	// DefaultSemanticWeight 语义相似度通道默认权重
	DefaultSemanticWeight = 0.6
	// DefaultSkillWeight 技能重合通道默认权重
	DefaultSkillWeight = 0.4
	// PreferredCoverageBonus 加分项技能覆盖率的满分加成
	PreferredCoverageBonus = 10.0
)

// ATS报告常量
const (
	// ATSRequiredWeight 必备技能覆盖率在ATS总分中的权重
	ATSRequiredWeight = 0.6
	// ATSPreferredWeight 加分项技能覆盖率在ATS总分中的权重
	ATSPreferredWeight = 0.2
	// ATSSectionWeight 标准章节齐备度在ATS总分中的权重
	ATSSectionWeight = 0.2
	// ATSShortResumeRunes 简历文本低于该长度时记一条红旗
	ATSShortResumeRunes = 400
	// ATSMaxRecommendations 报告中建议条数上限
	ATSMaxRecommendations = 5
)

// 批量对比常量
const (
	// MinComparisonJobs 批量对比最少JD数
	MinComparisonJobs = 2
	// MinComparableJDLength 可用JD文本的最小长度（去除首尾空白后）
	MinComparableJDLength = 50
	// MaxComparisonJobs 单次对比JD数上限，防止一次请求打满嵌入配额
	MaxComparisonJobs = 20
	// DefaultCompareWorkers 批量对比的默认并发度
	DefaultCompareWorkers = 4
)

// 嵌入与LLM常量
const (
	// DefaultEmbeddingModel 默认嵌入模型
	DefaultEmbeddingModel = "text-embedding-004"
	// DefaultGenerationModel 默认文本生成模型
	DefaultGenerationModel = "gemini-1.5-flash"
	// FallbackEmbeddingModelID 降级嵌入的model_id标识
	FallbackEmbeddingModelID = "bag-of-skills-v1"
	// MaxEmbeddingInputRunes 送入嵌入服务的文本截断长度
	MaxEmbeddingInputRunes = 12000
	// MaxPromptExcerptRunes 注入LLM prompt的文档摘录截断长度
	MaxPromptExcerptRunes = 1800
	// DefaultOracleTimeout 单次外部模型调用的默认超时
	DefaultOracleTimeout = 30 * time.Second
)

// 缓存过期时间
const (
	// EmbeddingCacheDuration 嵌入向量在Redis中的保留时间
	EmbeddingCacheDuration = 7 * 24 * time.Hour
	// AnalysisCacheDuration 分析结果快照在Redis中的保留时间
	AnalysisCacheDuration = 24 * time.Hour
)
