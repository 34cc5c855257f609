package processor

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"resume-match-go/internal/constants"
	"resume-match-go/internal/parser"
	"resume-match-go/internal/types"
)

// MatchProcessor 匹配分析编排器
// 每次调用是输入上的一次纯变换加缓存读写，不在调用间保留可变状态
type MatchProcessor struct {
	extractor *parser.SkillExtractor

	embedder  TextEmbedder
	fallback  FallbackEmbedder
	cache     EmbeddingCache
	suggester SuggestionGenerator
	outreach  OutreachGenerator
	store     AnalysisStore
	publisher AnalysisEventPublisher

	semanticWeight float64
	skillWeight    float64
	oracleTimeout  time.Duration
	compareWorkers int
	logger         *log.Logger
}

// NewMatchProcessor 创建匹配处理器
// 只有extractor是硬依赖，其余组件缺失时走相应的降级或跳过路径
func NewMatchProcessor(extractor *parser.SkillExtractor, options ...MatchProcessorOption) *MatchProcessor {
	if extractor == nil {
		extractor = parser.NewSkillExtractor(nil)
	}
	p := &MatchProcessor{
		extractor:      extractor,
		fallback:       parser.NewBagOfSkillsEmbedder(0),
		cache:          NewMemoryEmbeddingCache(),
		semanticWeight: constants.DefaultSemanticWeight,
		skillWeight:    constants.DefaultSkillWeight,
		oracleTimeout:  constants.DefaultOracleTimeout,
		compareWorkers: constants.DefaultCompareWorkers,
		logger:         log.New(os.Stderr, "[匹配处理器] ", log.LstdFlags),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Taxonomy 返回底层技能分类表
func (p *MatchProcessor) taxonomy() *parser.SkillTaxonomy {
	return p.extractor.Taxonomy()
}

// ExtractSkills 独立的技能抽取入口，供上传后的技能摘要使用
func (p *MatchProcessor) ExtractSkills(text string) *types.ExtractedDocument {
	return p.extractor.Extract(text)
}

// AnalyzeMatch 执行一次完整的简历-JD匹配分析
// 嵌入失败降级、建议生成失败降级，只要抽取可用就不返回错误
func (p *MatchProcessor) AnalyzeMatch(ctx context.Context, resumeText, jdText string) (*types.AnalysisResult, error) {
	analysisID := uuid.New().String()
	startTime := time.Now()

	// 简历与JD的抽取相互独立，并行执行
	var resumeDoc *types.ExtractedDocument
	var jdSignals *types.JobDescriptionSignals
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		resumeDoc = p.extractor.Extract(resumeText)
	}()
	go func() {
		defer wg.Done()
		jdSignals = parser.ProcessJobDescription(jdText, p.extractor)
	}()
	wg.Wait()

	result := p.analyzePair(ctx, analysisID, resumeDoc, jdSignals)
	p.attachSuggestions(ctx, result)
	p.persistAndPublish(ctx, result)

	p.logger.Printf("分析完成: id=%s, 最终分=%d, 语义降级=%v, 用时=%s",
		result.AnalysisID, result.Score.FinalMatchScore, result.DegradedSemantic, time.Since(startTime))
	return result, nil
}

// CompareMany 把一份简历与多份JD批量对比
// 输入校验在任何外部模型调用之前完成；各JD的分析互不影响，
// 通过有界工作池并发执行；结果按最终分降序、同分保持输入顺序。
// 批量路径不生成建议、不落库，只做排名
func (p *MatchProcessor) CompareMany(ctx context.Context, resumeText string, jds []types.JobDescriptionInput) ([]types.ComparedAnalysis, error) {
	if len(jds) < constants.MinComparisonJobs {
		return nil, NewComparisonInputError(fmt.Sprintf("至少需要%d份JD, 实际%d份", constants.MinComparisonJobs, len(jds)))
	}
	if len(jds) > constants.MaxComparisonJobs {
		return nil, NewComparisonInputError(fmt.Sprintf("单次最多对比%d份JD, 实际%d份", constants.MaxComparisonJobs, len(jds)))
	}
	for i, jd := range jds {
		if utf8.RuneCountInString(strings.TrimSpace(jd.Text)) < constants.MinComparableJDLength {
			return nil, NewComparisonInputError(fmt.Sprintf("第%d份JD文本过短, 不足%d字符", i, constants.MinComparableJDLength))
		}
	}

	// 简历只抽取一次，所有配对复用
	resumeDoc := p.extractor.Extract(resumeText)

	results := make([]types.ComparedAnalysis, len(jds))
	jobs := make(chan int)
	workers := p.compareWorkers
	if workers > len(jds) {
		workers = len(jds)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				jdSignals := parser.ProcessJobDescription(jds[i].Text, p.extractor)
				analysis := p.analyzePair(ctx, uuid.New().String(), resumeDoc, jdSignals)
				results[i] = types.ComparedAnalysis{
					JobIndex: i,
					Title:    jds[i].Title,
					Analysis: analysis,
				}
			}
		}()
	}
	for i := range jds {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Analysis.Score.FinalMatchScore > results[j].Analysis.Score.FinalMatchScore
	})

	p.logger.Printf("批量对比完成: JD数=%d, 最高分=%d", len(jds), results[0].Analysis.Score.FinalMatchScore)
	return results, nil
}

// GenerateOutreach 生成触达文案，独立于匹配分析的可选操作
func (p *MatchProcessor) GenerateOutreach(ctx context.Context, input types.OutreachInput) (*types.OutreachMessages, error) {
	if p.outreach == nil {
		return nil, NewOutreachError("", "触达文案生成器未配置")
	}
	tctx, cancel := context.WithTimeout(ctx, p.oracleTimeout)
	defer cancel()

	messages, err := p.outreach.GenerateOutreach(tctx, input)
	if err != nil {
		return nil, NewOutreachError("", err.Error())
	}
	return messages, nil
}

// GetAnalysis 按ID读取已保存的分析结果
func (p *MatchProcessor) GetAnalysis(ctx context.Context, analysisID string) (*types.AnalysisResult, error) {
	if p.store == nil {
		return nil, ErrAnalysisNotFound
	}
	return p.store.GetAnalysis(ctx, analysisID)
}

// analyzePair 单个配对的核心计算：嵌入、相似度、技能差距、分数融合、ATS报告
func (p *MatchProcessor) analyzePair(ctx context.Context, analysisID string, resumeDoc *types.ExtractedDocument, jdSignals *types.JobDescriptionSignals) *types.AnalysisResult {
	resumeVec, jdVec, warning := p.embedPair(ctx, analysisID, resumeDoc, jdSignals.Document)
	degraded := resumeVec.Fallback || jdVec.Fallback

	semanticScore := SemanticScore(CosineSimilarity(resumeVec.Values, jdVec.Values))
	gap := AnalyzeSkillGap(resumeDoc.SkillNames(), jdSignals.RequiredSkills, jdSignals.PreferredSkills, p.taxonomy())
	skillScore := SkillOverlapScore(resumeDoc.SkillNames(), jdSignals.RequiredSkills, jdSignals.PreferredSkills, p.taxonomy())
	finalScore := FuseScoresWeighted(semanticScore, skillScore, p.semanticWeight, p.skillWeight)

	return &types.AnalysisResult{
		AnalysisID: analysisID,
		Resume:     resumeDoc,
		Job:        jdSignals,
		SkillGap:   gap,
		Score: &types.MatchScore{
			SemanticSimilarityScore: semanticScore,
			SkillOverlapScore:       skillScore,
			FinalMatchScore:         finalScore,
		},
		ATS:              BuildATSReport(resumeDoc, jdSignals, p.taxonomy()),
		DegradedSemantic: degraded,
		EmbeddingWarning: warning,
		CreatedAt:        time.Now().Unix(),
	}
}

// embedPair 为简历和JD取嵌入向量
// 嵌入服务结构性缺失或任一侧失败时，两侧都改用降级向量，
// 保证参与余弦计算的向量处于同一空间
func (p *MatchProcessor) embedPair(ctx context.Context, analysisID string, resumeDoc, jdDoc *types.ExtractedDocument) (*types.EmbeddingVector, *types.EmbeddingVector, string) {
	if p.embedder == nil {
		warn := NewEmbeddingError(analysisID, "embedding oracle not configured; similarity computed from deterministic fallback vectors")
		return p.fallbackVector(resumeDoc), p.fallbackVector(jdDoc), warn.Error()
	}

	resumeInput := truncateRunes(resumeDoc.RawText, constants.MaxEmbeddingInputRunes)
	jdInput := truncateRunes(jdDoc.RawText, constants.MaxEmbeddingInputRunes)

	tctx, cancel := context.WithTimeout(ctx, p.oracleTimeout)
	defer cancel()

	var (
		wg               sync.WaitGroup
		resumeVec, jdVec []float64
		resumeErr, jdErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		resumeVec, resumeErr = p.cachedEmbedding(tctx, resumeInput)
	}()
	go func() {
		defer wg.Done()
		jdVec, jdErr = p.cachedEmbedding(tctx, jdInput)
	}()
	wg.Wait()

	if resumeErr != nil || jdErr != nil {
		firstErr := resumeErr
		if firstErr == nil {
			firstErr = jdErr
		}
		warn := NewEmbeddingError(analysisID, fmt.Sprintf("embedding unavailable (%v); similarity computed from deterministic fallback vectors", firstErr))
		p.logger.Printf("[WARN] 嵌入失败, 降级为确定性向量: %v", warn)
		return p.fallbackVector(resumeDoc), p.fallbackVector(jdDoc), warn.Error()
	}

	modelID := p.embedder.ModelID()
	return &types.EmbeddingVector{
			Values:      resumeVec,
			Fingerprint: Fingerprint(modelID, resumeInput),
			ModelID:     modelID,
		}, &types.EmbeddingVector{
			Values:      jdVec,
			Fingerprint: Fingerprint(modelID, jdInput),
			ModelID:     modelID,
		}, ""
}

// cachedEmbedding 经缓存取单条文本的嵌入向量
func (p *MatchProcessor) cachedEmbedding(ctx context.Context, text string) ([]float64, error) {
	return p.cache.GetOrCompute(ctx, text, p.embedder.ModelID(), func(cctx context.Context) ([]float64, error) {
		vectors, err := p.embedder.EmbedStrings(cctx, []string{text})
		if err != nil {
			return nil, err
		}
		if len(vectors) != 1 || len(vectors[0]) == 0 {
			return nil, fmt.Errorf("嵌入服务返回了%d条向量, 期望1条", len(vectors))
		}
		return vectors[0], nil
	})
}

// fallbackVector 由抽取结果构造降级向量
func (p *MatchProcessor) fallbackVector(doc *types.ExtractedDocument) *types.EmbeddingVector {
	values := p.fallback.EmbedDocument(doc)
	return &types.EmbeddingVector{
		Values:      values,
		Fingerprint: Fingerprint(p.fallback.ModelID(), doc.RawText),
		ModelID:     p.fallback.ModelID(),
		Fallback:    true,
	}
}

// attachSuggestions 尽力而为的建议生成，失败只记录到suggestion_error
func (p *MatchProcessor) attachSuggestions(ctx context.Context, result *types.AnalysisResult) {
	if p.suggester == nil {
		return
	}
	tctx, cancel := context.WithTimeout(ctx, p.oracleTimeout)
	defer cancel()

	suggestions, err := p.suggester.GenerateSuggestions(tctx, types.SuggestionInput{
		FinalScore:      result.Score.FinalMatchScore,
		SemanticScore:   result.Score.SemanticSimilarityScore,
		SkillScore:      result.Score.SkillOverlapScore,
		Matching:        result.SkillGap.MatchingSkills,
		MissingRequired: result.SkillGap.MissingRequiredSkills,
		NiceToHave:      result.SkillGap.NiceToHaveSkills,
		ResumeExcerpt:   result.Resume.RawText,
		JDExcerpt:       result.Job.CleanedText,
	})
	if err != nil {
		serr := NewSuggestionError(result.AnalysisID, err.Error())
		p.logger.Printf("[WARN] %v", serr)
		result.SuggestionError = serr.Error()
		return
	}
	result.Suggestions = suggestions
}

// persistAndPublish 尽力而为的持久化与事件发布，失败不影响分析返回
func (p *MatchProcessor) persistAndPublish(ctx context.Context, result *types.AnalysisResult) {
	if p.store != nil {
		if err := p.store.SaveAnalysis(ctx, result); err != nil {
			p.logger.Printf("[WARN] %v", NewPersistError(result.AnalysisID, err.Error()))
		}
	}
	if p.publisher != nil {
		event := &types.AnalysisCompletedEvent{
			AnalysisID:       result.AnalysisID,
			FinalScore:       result.Score.FinalMatchScore,
			DegradedSemantic: result.DegradedSemantic,
			CreatedAt:        result.CreatedAt,
		}
		if err := p.publisher.PublishAnalysisCompleted(ctx, event); err != nil {
			p.logger.Printf("[WARN] 发布分析完成事件失败: id=%s, err=%v", result.AnalysisID, err)
		}
	}
}

// truncateRunes 按字符数截断，截断点对齐到rune边界
func truncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxRunes])
}
