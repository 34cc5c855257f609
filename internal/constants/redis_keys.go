package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// EmbedModulePrefix 嵌入模块
	EmbedModulePrefix = "embed"
	// MatchModulePrefix 匹配分析模块
	MatchModulePrefix = "match"
	// FileModulePrefix 文件模块
	FileModulePrefix = "file"

	// EntityVector 向量实体
	EntityVector = "vector"
	// EntityResult 分析结果实体
	EntityResult = "result"
	// EntityDedupSet 去重集合实体
	EntityDedupSet = "dedup_set"
	// EntityMD5ToID MD5到简历ID的映射实体
	EntityMD5ToID = "md5_to_id"

	// KeyEmbeddingVector 嵌入向量缓存 (STRING, JSON序列化)
	// 格式: app:embed:vector:{fingerprint}
	KeyEmbeddingVector = AppPrefix + ":" + EmbedModulePrefix + ":" + EntityVector + ":%s"

	// KeyAnalysisResult 分析结果快照缓存 (STRING, JSON序列化)
	// 格式: app:match:result:{analysisID}
	KeyAnalysisResult = AppPrefix + ":" + MatchModulePrefix + ":" + EntityResult + ":%s"

	// KeyResumeTextMD5Set 简历文本MD5集合，用于快速去重 (SET)
	// 格式: app:file:dedup_set
	KeyResumeTextMD5Set = AppPrefix + ":" + FileModulePrefix + ":" + EntityDedupSet

	// KeyResumeMD5ToID MD5到已入库简历ID的映射 (STRING)
	// 格式: app:file:md5_to_id:{md5}
	KeyResumeMD5ToID = AppPrefix + ":" + FileModulePrefix + ":" + EntityMD5ToID + ":%s"

	// KeyResumeUploadLock 同一份简历文本的并发上传互斥锁 (STRING, SETNX)
	// 格式: lock:file:upload:{md5}
	KeyResumeUploadLock = "lock:" + FileModulePrefix + ":upload:%s"
)
