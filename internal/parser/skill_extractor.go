package parser

import (
	"log"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"resume-match-go/internal/constants"
	"resume-match-go/internal/types"
)

// contextCues 证据片段中的能力线索词，命中时提升置信度
var contextCues = []string{
	"experience with", "proficient in", "worked with", "hands-on",
	"expertise in", "knowledge of", "familiar with", "skilled in",
	"years of", "built", "developed", "designed", "implemented",
	"精通", "熟悉", "掌握", "负责",
}

// 章节探测模式。\b只对ASCII生效，中文标题用独立分支
var sectionPatterns = map[string]*regexp.Regexp{
	types.SectionExperience: regexp.MustCompile(`(?i)\b(work experience|professional experience|employment history|employment|experience)\b|工作经历|工作经验`),
	types.SectionEducation:  regexp.MustCompile(`(?i)\b(education|academic background|academics|qualifications)\b|教育经历|教育背景`),
	types.SectionSkills:     regexp.MustCompile(`(?i)\b(technical skills|core skills|skills|technologies|tools)\b|技能|专业技能`),
	types.SectionProjects:   regexp.MustCompile(`(?i)\b(projects|project experience|personal projects|portfolio)\b|项目经历|项目经验`),
	types.SectionSummary:    regexp.MustCompile(`(?i)\b(summary|objective|profile|about me)\b|个人简介|自我评价`),
}

// 经验级别探测模式
var (
	leadLevelRe   = regexp.MustCompile(`(?i)\b(principal|staff engineer|tech lead|team lead|lead engineer|architect|head of|director)\b`)
	seniorLevelRe = regexp.MustCompile(`(?i)\b(senior|sr)\b`)
	juniorLevelRe = regexp.MustCompile(`(?i)\b(junior|jr|intern|internship|graduate|fresher)\b|entry[ -]level`)
	yearsExpRe    = regexp.MustCompile(`(?i)\b(\d{1,2})\s*\+?\s*years?\b`)
)

// roleTokenRe 角色关键词分词前的清洗，保留技术词中常见的 + - # .
var roleTokenRe = regexp.MustCompile(`[^a-z0-9+\-#. ]+`)

// roleStopwords 角色关键词停用词
var roleStopwords = map[string]bool{
	"and": true, "or": true, "the": true, "a": true, "an": true,
	"with": true, "for": true, "of": true, "in": true, "on": true,
	"to": true, "is": true, "are": true, "we": true, "you": true,
	"our": true, "as": true, "at": true, "by": true, "be": true,
	"will": true, "have": true, "has": true, "from": true, "this": true,
	"that": true, "your": true, "their": true, "they": true, "it": true,
	"its": true, "us": true, "must": true, "should": true, "can": true,
	"able": true, "years": true, "year": true, "work": true,
	"working": true, "team": true, "strong": true, "plus": true,
	"etc": true, "using": true, "use": true, "used": true,
	"including": true, "required": true, "preferred": true,
	"skills": true, "skill": true, "experience": true,
	"knowledge": true, "ability": true, "excellent": true, "good": true,
	"familiarity": true, "who": true, "what": true, "not": true,
}

// SkillExtractor 基于分类表的确定性技能抽取器
// 无状态（分类表只读），可并发使用
type SkillExtractor struct {
	taxonomy *SkillTaxonomy
	logger   *log.Logger
}

// SkillExtractorOption 抽取器配置选项
type SkillExtractorOption func(*SkillExtractor)

// WithExtractorLogger 配置自定义日志记录器
func WithExtractorLogger(logger *log.Logger) SkillExtractorOption {
	return func(e *SkillExtractor) {
		e.logger = logger
	}
}

// NewSkillExtractor 创建技能抽取器，taxonomy为nil时使用内置分类表
func NewSkillExtractor(taxonomy *SkillTaxonomy, options ...SkillExtractorOption) *SkillExtractor {
	if taxonomy == nil {
		taxonomy = DefaultSkillTaxonomy()
	}
	e := &SkillExtractor{
		taxonomy: taxonomy,
		logger:   log.New(log.Writer(), "[技能抽取] ", log.LstdFlags),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Taxonomy 返回抽取器使用的分类表
func (e *SkillExtractor) Taxonomy() *SkillTaxonomy {
	return e.taxonomy
}

// skillHit 单个规范技能的累计命中信息
type skillHit struct {
	kind     MatchKind
	count    int
	original string
	snippets []string
}

// Extract 对文本做归一化后抽取技能、章节、角色关键词和经验级别
// 相同输入总是产生相同输出
func (e *SkillExtractor) Extract(text string) *types.ExtractedDocument {
	cleaned := CleanText(text)

	doc := &types.ExtractedDocument{
		RawText:          cleaned,
		Skills:           []types.SkillMention{},
		DetectedSections: make(map[string]bool, len(types.StandardSections)),
		RoleKeywords:     []string{},
	}
	for _, section := range types.StandardSections {
		doc.DetectedSections[section] = false
	}

	if cleaned == "" {
		return doc
	}

	lower := lowerASCII(cleaned)

	doc.Skills = e.extractMentions(cleaned, lower)
	for section, pattern := range sectionPatterns {
		doc.DetectedSections[section] = pattern.MatchString(lower)
	}
	doc.RoleKeywords = extractRoleKeywords(lower)
	doc.ExperienceLevelEstimate = estimateExperienceLevel(lower)

	e.logger.Printf("抽取完成: %d个技能, %d个角色关键词, 经验级别=%q", len(doc.Skills), len(doc.RoleKeywords), doc.ExperienceLevelEstimate)
	return doc
}

// extractMentions 扫描全部检索词并聚合为技能提及列表
// 检索词按长度降序处理，命中区间一旦被占用不再参与更短词的匹配，
// 避免 "java" 命中 "javascript" 内部这类误报
func (e *SkillExtractor) extractMentions(cleaned, lower string) []types.SkillMention {
	claimed := make([]bool, len(lower))
	hits := make(map[string]*skillHit)

	for _, pattern := range e.taxonomy.patterns {
		searchFrom := 0
		for searchFrom < len(lower) {
			rel := strings.Index(lower[searchFrom:], pattern.term)
			if rel < 0 {
				break
			}
			start := searchFrom + rel
			end := start + len(pattern.term)
			searchFrom = start + 1

			if !onWordBoundary(lower, start, end) {
				continue
			}
			if spanClaimed(claimed, start, end) {
				continue
			}
			for i := start; i < end; i++ {
				claimed[i] = true
			}

			hit, ok := hits[pattern.canonical]
			if !ok {
				hit = &skillHit{kind: pattern.kind, original: sliceSafe(cleaned, start, end)}
				hits[pattern.canonical] = hit
			}
			if pattern.kind < hit.kind {
				hit.kind = pattern.kind
				hit.original = sliceSafe(cleaned, start, end)
			}
			hit.count++
			if len(hit.snippets) < constants.MaxEvidenceSnippets {
				hit.snippets = append(hit.snippets, snippetAround(cleaned, start, end))
			}
		}
	}

	mentions := make([]types.SkillMention, 0, len(hits))
	for canonical, hit := range hits {
		mentions = append(mentions, types.SkillMention{
			Skill:          canonical,
			Confidence:     scoreConfidence(hit),
			OriginalText:   hit.original,
			SourceSnippets: hit.snippets,
		})
	}

	// 置信度降序，同分按技能名字典序，保证输出稳定
	sort.Slice(mentions, func(i, j int) bool {
		if mentions[i].Confidence != mentions[j].Confidence {
			return mentions[i].Confidence > mentions[j].Confidence
		}
		return mentions[i].Skill < mentions[j].Skill
	})

	return mentions
}

// scoreConfidence 由命中方式、出现次数和上下文线索计算置信度，保留一位小数
func scoreConfidence(hit *skillHit) float64 {
	var base float64
	switch hit.kind {
	case MatchExact:
		base = constants.ConfidenceExact
	case MatchAlias:
		base = constants.ConfidenceAlias
	default:
		base = constants.ConfidenceVariation
	}

	occBoost := math.Min(constants.OccurrenceBoostCap, constants.OccurrenceBoostStep*float64(hit.count))

	var cueBoost float64
	for _, snippet := range hit.snippets {
		lowerSnippet := strings.ToLower(snippet)
		for _, cue := range contextCues {
			if strings.Contains(lowerSnippet, cue) {
				cueBoost += constants.ContextCueBoost
				break
			}
		}
	}

	conf := math.Min(constants.ConfidenceCeiling, base+occBoost+cueBoost)
	return math.Round(conf*10) / 10
}

// lowerASCII 只折叠A-Z，字节长度与原文严格一致
// 折叠文本上算出的下标可以直接切原文本取证据片段；
// strings.ToLower对İ这类字符会改变字节数，下标会错位
func lowerASCII(s string) string {
	hasUpper := false
	for i := 0; i < len(s); i++ {
		if 'A' <= s[i] && s[i] <= 'Z' {
			hasUpper = true
			break
		}
	}
	if !hasUpper {
		return s
	}
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// isWordByte 等价于ASCII语义下的\w，多字节字符视作边界
func isWordByte(b byte) bool {
	return b == '_' ||
		('0' <= b && b <= '9') ||
		('a' <= b && b <= 'z') ||
		('A' <= b && b <= 'Z')
}

// onWordBoundary 检查[start,end)两侧是否为词边界
func onWordBoundary(s string, start, end int) bool {
	if start > 0 && isWordByte(s[start-1]) {
		return false
	}
	if end < len(s) && isWordByte(s[end]) {
		return false
	}
	return true
}

// spanClaimed 区间内是否存在已被占用的字节
func spanClaimed(claimed []bool, start, end int) bool {
	for i := start; i < end; i++ {
		if claimed[i] {
			return true
		}
	}
	return false
}

// sliceSafe 带边界保护的切片，起止点对齐到合法位置
func sliceSafe(s string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(s) {
		end = len(s)
	}
	if start >= end {
		return ""
	}
	return s[start:end]
}

// snippetAround 提取命中位置前后各SnippetContextRunes个字符的证据片段
func snippetAround(text string, start, end int) string {
	left := start
	for i := 0; i < constants.SnippetContextRunes && left > 0; i++ {
		r, size := utf8.DecodeLastRuneInString(text[:left])
		if r == utf8.RuneError && size == 0 {
			break
		}
		left -= size
	}

	right := end
	for i := 0; i < constants.SnippetContextRunes && right < len(text); i++ {
		r, size := utf8.DecodeRuneInString(text[right:])
		if r == utf8.RuneError && size == 0 {
			break
		}
		right += size
	}

	snippet := strings.ReplaceAll(sliceSafe(text, left, right), "\n", " ")
	return strings.TrimSpace(snippet)
}

// extractRoleKeywords 提取去除停用词后的角色关键词，保持首次出现顺序
func extractRoleKeywords(lower string) []string {
	tokens := strings.Fields(roleTokenRe.ReplaceAllString(lower, " "))

	keywords := make([]string, 0, constants.MaxRoleKeywords)
	seen := make(map[string]bool)
	for _, token := range tokens {
		token = strings.Trim(token, ".-")
		if len(token) < 2 || len(token) > 24 {
			continue
		}
		if roleStopwords[token] || seen[token] {
			continue
		}
		if _, err := strconv.Atoi(token); err == nil {
			continue
		}
		seen[token] = true
		keywords = append(keywords, token)
		if len(keywords) >= constants.MaxRoleKeywords {
			break
		}
	}
	return keywords
}

// estimateExperienceLevel 由头衔线索和年限估计经验级别
// 头衔线索优先于年限，均缺失时返回空串
func estimateExperienceLevel(lower string) string {
	switch {
	case leadLevelRe.MatchString(lower):
		return types.ExperienceLead
	case seniorLevelRe.MatchString(lower):
		return types.ExperienceSenior
	case juniorLevelRe.MatchString(lower):
		return types.ExperienceJunior
	}

	maxYears := -1
	for _, m := range yearsExpRe.FindAllStringSubmatch(lower, -1) {
		if years, err := strconv.Atoi(m[1]); err == nil && years > maxYears {
			maxYears = years
		}
	}
	switch {
	case maxYears < 0:
		return types.ExperienceUnknown
	case maxYears <= 2:
		return types.ExperienceJunior
	case maxYears <= 5:
		return types.ExperienceMid
	case maxYears <= 9:
		return types.ExperienceSenior
	default:
		return types.ExperienceLead
	}
}
