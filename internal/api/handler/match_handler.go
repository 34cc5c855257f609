package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"resume-match-go/internal/config"
	"resume-match-go/internal/constants"
	"resume-match-go/internal/logger"
	"resume-match-go/internal/parser"
	"resume-match-go/internal/processor"
	"resume-match-go/internal/storage"
	"resume-match-go/internal/storage/models"
	"resume-match-go/internal/types"
	"resume-match-go/pkg/utils"
)

// MatchHandler 匹配分析接口的业务处理器
// HTTP参数解析在router层完成, 这里只做业务编排
type MatchHandler struct {
	cfg          *config.Config
	storage      *storage.Storage
	processor    *processor.MatchProcessor
	pdfExtractor processor.PDFExtractor
}

// NewMatchHandler 创建匹配处理器
func NewMatchHandler(
	cfg *config.Config,
	storage *storage.Storage,
	matchProcessor *processor.MatchProcessor,
	pdfExtractor processor.PDFExtractor,
) *MatchHandler {
	return &MatchHandler{
		cfg:          cfg,
		storage:      storage,
		processor:    matchProcessor,
		pdfExtractor: pdfExtractor,
	}
}

// AnalyzeMatchRequest 单次匹配分析请求
// resume_text 与 resume_id 二选一, 都给时以 resume_text 为准
type AnalyzeMatchRequest struct {
	ResumeText string `json:"resume_text"`
	ResumeID   string `json:"resume_id"`
	JDText     string `json:"jd_text"`
}

// CompareJobsRequest 批量对比请求
type CompareJobsRequest struct {
	ResumeText string                      `json:"resume_text"`
	ResumeID   string                      `json:"resume_id"`
	Jobs       []types.JobDescriptionInput `json:"jobs"`
}

// ExtractSkillsRequest 技能抽取请求
type ExtractSkillsRequest struct {
	Text string `json:"text"`
}

// OutreachRequest 触达文案生成请求
type OutreachRequest struct {
	CandidateName  string   `json:"candidate_name"`
	CandidateEmail string   `json:"candidate_email"`
	CompanyName    string   `json:"company_name"`
	JobTitle       string   `json:"job_title"`
	KeyStrengths   []string `json:"key_strengths"`
	ResumeExcerpt  string   `json:"resume_excerpt"`
	JDExcerpt      string   `json:"jd_excerpt"`
}

// ResumeDetailResponse 简历元数据查询响应
type ResumeDetailResponse struct {
	ResumeID        string   `json:"resume_id"`
	Filename        string   `json:"filename"`
	Status          string   `json:"status"`
	Skills          []string `json:"skills"`
	ExperienceLevel string   `json:"experience_level,omitempty"`
	TextLength      int      `json:"text_length"`
	TextURL         string   `json:"text_url,omitempty"`
}

// UploadResumeResponse 简历上传响应
type UploadResumeResponse struct {
	ResumeID        string   `json:"resume_id"`
	Status          string   `json:"status"`
	Skills          []string `json:"skills"`
	ExperienceLevel string   `json:"experience_level,omitempty"`
	TextLength      int      `json:"text_length"`
}

// AnalyzeMatch 执行一次简历-JD匹配分析
func (h *MatchHandler) AnalyzeMatch(ctx context.Context, req AnalyzeMatchRequest) (*types.AnalysisResult, error) {
	resumeText, err := h.resolveResumeText(ctx, req.ResumeText, req.ResumeID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.JDText) == "" {
		return nil, fmt.Errorf("jd_text不能为空")
	}

	result, err := h.processor.AnalyzeMatch(ctx, resumeText, req.JDText)
	if err != nil {
		return nil, err
	}

	// 结果快照进Redis, 失败不影响响应
	if h.storage != nil && h.storage.Redis != nil {
		if err := h.storage.Redis.CacheAnalysis(ctx, result); err != nil {
			logger.Warn().Err(err).Str("analysis_id", result.AnalysisID).Msg("缓存分析结果快照失败")
		}
	}
	return result, nil
}

// CompareJobs 把一份简历与多份JD批量对比
func (h *MatchHandler) CompareJobs(ctx context.Context, req CompareJobsRequest) ([]types.ComparedAnalysis, error) {
	resumeText, err := h.resolveResumeText(ctx, req.ResumeText, req.ResumeID)
	if err != nil {
		return nil, err
	}
	return h.processor.CompareMany(ctx, resumeText, req.Jobs)
}

// ExtractSkills 对任意文本做技能抽取
func (h *MatchHandler) ExtractSkills(ctx context.Context, req ExtractSkillsRequest) (*types.ExtractedDocument, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("text不能为空")
	}
	return h.processor.ExtractSkills(req.Text), nil
}

// GetAnalysis 按ID读取分析结果, 先查Redis快照再回源数据库
func (h *MatchHandler) GetAnalysis(ctx context.Context, analysisID string) (*types.AnalysisResult, error) {
	if strings.TrimSpace(analysisID) == "" {
		return nil, fmt.Errorf("analysis_id不能为空")
	}

	if h.storage != nil && h.storage.Redis != nil {
		result, err := h.storage.Redis.GetCachedAnalysis(ctx, analysisID)
		if err == nil {
			return result, nil
		}
		if err != storage.ErrNotFound {
			logger.Warn().Err(err).Str("analysis_id", analysisID).Msg("读取分析结果快照失败, 回源数据库")
		}
	}

	return h.processor.GetAnalysis(ctx, analysisID)
}

// GenerateOutreach 生成三种渠道的求职触达文案
func (h *MatchHandler) GenerateOutreach(ctx context.Context, req OutreachRequest) (*types.OutreachMessages, error) {
	return h.processor.GenerateOutreach(ctx, types.OutreachInput{
		CandidateName:  req.CandidateName,
		CandidateEmail: req.CandidateEmail,
		CompanyName:    req.CompanyName,
		JobTitle:       req.JobTitle,
		KeyStrengths:   req.KeyStrengths,
		ResumeExcerpt:  req.ResumeExcerpt,
		JDExcerpt:      req.JDExcerpt,
	})
}

// ListRecentAnalyses 最近分析摘要列表
func (h *MatchHandler) ListRecentAnalyses(ctx context.Context, limit int) ([]models.AnalysisRecord, error) {
	if h.storage == nil || h.storage.MySQL == nil {
		return nil, fmt.Errorf("数据库未配置")
	}
	return h.storage.MySQL.ListRecentAnalyses(ctx, limit)
}

// UploadResume 处理简历上传: 解析文本、MD5去重、文本入对象存储、元数据入库
func (h *MatchHandler) UploadResume(ctx context.Context, reader io.Reader, filename string) (*UploadResumeResponse, error) {
	if h.storage == nil || h.storage.MinIO == nil || h.storage.MySQL == nil {
		return nil, fmt.Errorf("简历上传需要对象存储和数据库, 当前未配置")
	}

	fileBytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("读取上传文件内容失败: %w", err)
	}

	text, err := h.extractText(ctx, fileBytes, filename)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(strings.TrimSpace(text)) == 0 {
		return nil, fmt.Errorf("简历文件中没有可用文本")
	}

	textMD5 := utils.CalculateMD5([]byte(text))

	// 同一份文本的并发上传先抢互斥锁, 抢不到的请求由后面的原子去重拦住
	if h.storage.Redis != nil {
		lockKey := fmt.Sprintf(constants.KeyResumeUploadLock, textMD5)
		if lockValue, err := h.storage.Redis.AcquireLock(ctx, lockKey, 30*time.Second); err != nil {
			logger.Warn().Err(err).Str("md5", textMD5).Msg("获取上传互斥锁失败, 继续处理")
		} else if lockValue != "" {
			defer func() {
				if _, err := h.storage.Redis.ReleaseLock(ctx, lockKey, lockValue); err != nil {
					logger.Warn().Err(err).Str("md5", textMD5).Msg("释放上传互斥锁失败")
				}
			}()
		}
	}

	// Redis去重是第一道防线, 故障时退化为仅靠数据库查询
	dedupRecorded := false
	if h.storage.Redis != nil {
		exists, err := h.storage.Redis.CheckAndAddResumeTextMD5(ctx, textMD5)
		if err != nil {
			logger.Warn().Err(err).Str("md5", textMD5).Msg("Redis文本去重检查失败, 退化为数据库查询")
		} else if exists {
			if resumeID, err := h.storage.Redis.GetResumeIDByMD5(ctx, textMD5); err == nil && resumeID != "" {
				logger.Info().Str("md5", textMD5).Str("resume_id", resumeID).Msg("检测到重复的简历文本")
				return &UploadResumeResponse{ResumeID: resumeID, Status: "DUPLICATE_TEXT"}, nil
			}
		} else {
			dedupRecorded = true
		}
	}

	if existing, err := h.storage.MySQL.GetResumeRecordByMD5(ctx, textMD5); err != nil {
		logger.Warn().Err(err).Str("md5", textMD5).Msg("数据库去重查询失败")
	} else if existing != nil {
		return &UploadResumeResponse{ResumeID: existing.ResumeID, Status: "DUPLICATE_TEXT"}, nil
	}

	doc := h.processor.ExtractSkills(text)

	resumeID, err := h.persistResume(ctx, doc, filename, text, textMD5)
	if err != nil {
		// 去重集合里的MD5要撤掉, 否则重试会被误判为重复
		if dedupRecorded {
			if remErr := h.storage.Redis.RemoveResumeTextMD5(ctx, textMD5); remErr != nil {
				logger.Warn().Err(remErr).Str("md5", textMD5).Msg("回滚去重记录失败")
			}
		}
		return nil, err
	}

	return &UploadResumeResponse{
		ResumeID:        resumeID,
		Status:          "PARSED",
		Skills:          doc.SkillNames(),
		ExperienceLevel: doc.ExperienceLevelEstimate,
		TextLength:      utf8.RuneCountInString(text),
	}, nil
}

// GetResume 按ID读取简历元数据, 配置了对象存储时附带限时文本下载链接
func (h *MatchHandler) GetResume(ctx context.Context, resumeID string) (*ResumeDetailResponse, error) {
	if strings.TrimSpace(resumeID) == "" {
		return nil, fmt.Errorf("resume_id不能为空")
	}
	if h.storage == nil || h.storage.MySQL == nil {
		return nil, fmt.Errorf("数据库未配置")
	}

	record, err := h.storage.MySQL.GetResumeRecord(ctx, resumeID)
	if err != nil {
		return nil, fmt.Errorf("简历记录不存在: %s", resumeID)
	}

	var skills []string
	if len(record.ExtractedSkills) > 0 {
		if err := json.Unmarshal(record.ExtractedSkills, &skills); err != nil {
			logger.Warn().Err(err).Str("resume_id", resumeID).Msg("解析已存技能列表失败")
		}
	}

	resp := &ResumeDetailResponse{
		ResumeID:        record.ResumeID,
		Filename:        record.OriginalFilename,
		Status:          record.ProcessingStatus,
		Skills:          skills,
		ExperienceLevel: record.ExperienceLevel,
		TextLength:      record.TextLength,
	}

	if h.storage.MinIO != nil && record.TextPathOSS != "" {
		url, err := h.storage.MinIO.GetPresignedURL(ctx, record.TextPathOSS, time.Hour)
		if err != nil {
			logger.Warn().Err(err).Str("resume_id", resumeID).Msg("生成简历文本下载链接失败")
		} else {
			resp.TextURL = url
		}
	}
	return resp, nil
}

// resolveResumeText 解析请求中的简历文本来源
func (h *MatchHandler) resolveResumeText(ctx context.Context, resumeText, resumeID string) (string, error) {
	if strings.TrimSpace(resumeText) != "" {
		return resumeText, nil
	}
	if strings.TrimSpace(resumeID) == "" {
		return "", fmt.Errorf("resume_text和resume_id至少需要一个")
	}
	if h.storage == nil || h.storage.MySQL == nil || h.storage.MinIO == nil {
		return "", fmt.Errorf("按resume_id取简历需要对象存储和数据库, 当前未配置")
	}

	record, err := h.storage.MySQL.GetResumeRecord(ctx, resumeID)
	if err != nil {
		return "", fmt.Errorf("简历记录不存在: %s", resumeID)
	}
	text, err := h.storage.MinIO.GetResumeText(ctx, record.TextPathOSS)
	if err != nil {
		return "", fmt.Errorf("读取简历文本失败: %w", err)
	}
	return text, nil
}

// extractText 按文件类型提取纯文本
func (h *MatchHandler) extractText(ctx context.Context, fileBytes []byte, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		if h.pdfExtractor == nil {
			return "", fmt.Errorf("PDF解析器未配置, 无法处理PDF上传")
		}
		text, _, err := h.pdfExtractor.ExtractFromBytes(ctx, fileBytes, filename)
		if err != nil {
			return "", fmt.Errorf("提取PDF文本失败: %w", err)
		}
		return text, nil
	case ".txt", ".md", "":
		return parser.CleanText(string(fileBytes)), nil
	default:
		return "", fmt.Errorf("不支持的文件类型: %s", ext)
	}
}

// persistResume 文本入MinIO、元数据入MySQL、MD5映射入Redis
func (h *MatchHandler) persistResume(ctx context.Context, doc *types.ExtractedDocument, filename, text, textMD5 string) (string, error) {
	objectKey, _, err := h.storage.MinIO.SaveResumeText(ctx, textMD5, text)
	if err != nil {
		return "", fmt.Errorf("保存简历文本到对象存储失败: %w", err)
	}

	resumeID, err := h.storage.MySQL.SaveResumeRecord(ctx, doc, filename, objectKey, textMD5)
	if err != nil {
		if delErr := h.storage.MinIO.DeleteResumeText(ctx, objectKey); delErr != nil {
			logger.Warn().Err(delErr).Str("object", objectKey).Msg("回滚对象存储中的简历文本失败")
		}
		return "", fmt.Errorf("保存简历元数据失败: %w", err)
	}

	if h.storage.Redis != nil {
		if err := h.storage.Redis.MapResumeMD5ToID(ctx, textMD5, resumeID); err != nil {
			logger.Warn().Err(err).Str("resume_id", resumeID).Msg("记录MD5到简历ID映射失败")
		}
	}

	logger.Info().
		Str("resume_id", resumeID).
		Str("filename", filename).
		Int("skills", len(doc.Skills)).
		Msg("简历上传处理完成")
	return resumeID, nil
}
