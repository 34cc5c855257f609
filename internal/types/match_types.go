package types

// 本文件定义匹配分析流水线中流转的核心数据结构。
// 所有 json tag 即对外 API 的字段名，修改前需确认客户端兼容性。

// 标准章节名，detected_sections 的键集合固定为这五个
const (
	SectionExperience = "experience"
	SectionEducation  = "education"
	SectionSkills     = "skills"
	SectionProjects   = "projects"
	SectionSummary    = "summary"
)

// StandardSections 按固定顺序列出全部标准章节
var StandardSections = []string{
	SectionExperience,
	SectionEducation,
	SectionSkills,
	SectionProjects,
	SectionSummary,
}

// 经验级别估计值
const (
	ExperienceJunior  = "junior"
	ExperienceMid     = "mid"
	ExperienceSenior  = "senior"
	ExperienceLead    = "lead"
	ExperienceUnknown = ""
)

// SkillMention 表示文档中一次技能提及，抽取完成后不再修改
type SkillMention struct {
	Skill          string   `json:"skill"`           // 规范名（分类表中的canonical名称）
	Confidence     float64  `json:"confidence"`      // 0-100，保留一位小数
	OriginalText   string   `json:"original_text"`   // 文档中实际命中的写法
	SourceSnippets []string `json:"source_snippets"` // 证据片段，最多2条
}

// ExtractedDocument 统一结构承载简历或JD的抽取结果
type ExtractedDocument struct {
	RawText                 string          `json:"raw_text"`
	Skills                  []SkillMention  `json:"skills"`
	DetectedSections        map[string]bool `json:"detected_sections"`
	RoleKeywords            []string        `json:"role_keywords"`
	ExperienceLevelEstimate string          `json:"experience_level_estimate"`
}

// SkillNames 返回全部规范技能名，保持抽取输出顺序
func (d *ExtractedDocument) SkillNames() []string {
	if d == nil || len(d.Skills) == 0 {
		return nil
	}
	names := make([]string, 0, len(d.Skills))
	for _, m := range d.Skills {
		names = append(names, m.Skill)
	}
	return names
}

// JobDescriptionSignals JD在通用抽取之上的增量信号
type JobDescriptionSignals struct {
	Document        *ExtractedDocument `json:"document"`
	RequiredSkills  []string           `json:"required_skills"`
	PreferredSkills []string           `json:"preferred_skills"`
	CleanedText     string             `json:"-"`
}

// EmbeddingVector 带来源指纹的嵌入向量
type EmbeddingVector struct {
	Values      []float64 `json:"values"`
	Fingerprint string    `json:"fingerprint"` // sha256(model_id + 0x00 + text)
	ModelID     string    `json:"model_id"`
	Fallback    bool      `json:"fallback,omitempty"` // true表示来自确定性降级嵌入
}

// SkillGapResult 技能差距三分区，三个列表互不相交
type SkillGapResult struct {
	MatchingSkills        []string `json:"matching_skills"`
	MissingRequiredSkills []string `json:"missing_required_skills"`
	NiceToHaveSkills      []string `json:"nice_to_have_skills"`
}

// MatchScore 各通道分数与融合结果，均为0-100整数
type MatchScore struct {
	SemanticSimilarityScore int `json:"semantic_similarity_score"`
	SkillOverlapScore       int `json:"skill_overlap_score"`
	FinalMatchScore         int `json:"final_match_score"`
}

// ATSReport 简历对单个JD的ATS风格检查报告
type ATSReport struct {
	OverallScore         int      `json:"overall_score"`
	RequiredCoveragePct  float64  `json:"required_coverage_pct"`
	PreferredCoveragePct float64  `json:"preferred_coverage_pct"`
	MatchedRequired      []string `json:"matched_required"`
	MissingRequired      []string `json:"missing_required"`
	MatchedPreferred     []string `json:"matched_preferred"`
	MissingPreferred     []string `json:"missing_preferred"`
	SectionsPresent      []string `json:"sections_present"`
	SectionsMissing      []string `json:"sections_missing"`
	RedFlags             []string `json:"red_flags"`
	Recommendations      []string `json:"recommendations"`
}

// BulletRewrite 简历要点改写建议
type BulletRewrite struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// MatchSuggestions LLM生成的改进建议，字段名与生成prompt中的schema一致
type MatchSuggestions struct {
	ScoreExplanation     string          `json:"score_explanation"`
	KeyStrengths         []string        `json:"key_strengths"`
	MissingSkillsToAdd   []string        `json:"missing_skills_to_add"`
	ATSKeywordsToInclude []string        `json:"ats_keywords_to_include"`
	ProjectsToBuild      []string        `json:"projects_to_build"`
	BulletRewrites       []BulletRewrite `json:"bullet_rewrites"`
}

// SuggestionInput 建议生成器的输入摘要
type SuggestionInput struct {
	FinalScore      int
	SemanticScore   int
	SkillScore      int
	Matching        []string
	MissingRequired []string
	NiceToHave      []string
	ResumeExcerpt   string
	JDExcerpt       string
}

// OutreachInput 求职触达文案生成的输入
type OutreachInput struct {
	CandidateName  string
	CandidateEmail string
	CompanyName    string
	JobTitle       string
	KeyStrengths   []string
	ResumeExcerpt  string
	JDExcerpt      string
}

// OutreachMessages 三种渠道的触达文案
type OutreachMessages struct {
	CoverLetter     string `json:"cover_letter"`
	LinkedInMessage string `json:"linkedin_message"`
	ColdMail        string `json:"cold_mail"`
}

// AnalysisResult 一次简历-JD匹配分析的完整产物
type AnalysisResult struct {
	AnalysisID       string                 `json:"analysis_id"`
	Resume           *ExtractedDocument     `json:"resume"`
	Job              *JobDescriptionSignals `json:"job"`
	SkillGap         *SkillGapResult        `json:"skill_gap"`
	Score            *MatchScore            `json:"score"`
	ATS              *ATSReport             `json:"ats,omitempty"`
	DegradedSemantic bool                   `json:"degraded_semantic"`
	EmbeddingWarning string                 `json:"embedding_warning,omitempty"`
	Suggestions      *MatchSuggestions      `json:"suggestions,omitempty"`
	SuggestionError  string                 `json:"suggestion_error,omitempty"`
	CreatedAt        int64                  `json:"created_at"`
}

// JobDescriptionInput 批量对比接口的单条JD输入
type JobDescriptionInput struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// ComparedAnalysis 批量对比中的单条结果，JobIndex对应输入下标
type ComparedAnalysis struct {
	JobIndex int             `json:"job_index"`
	Title    string          `json:"title"`
	Analysis *AnalysisResult `json:"analysis"`
}

// AnalysisCompletedEvent 分析完成后发布到消息队列的事件
type AnalysisCompletedEvent struct {
	AnalysisID       string `json:"analysis_id"`
	ResumeID         string `json:"resume_id,omitempty"`
	FinalScore       int    `json:"final_match_score"`
	DegradedSemantic bool   `json:"degraded_semantic"`
	CreatedAt        int64  `json:"created_at"`
}
