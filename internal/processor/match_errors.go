package processor

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	ErrEmbeddingUnavailable   = errors.New("嵌入服务不可用")
	ErrSuggestionGeneration   = errors.New("建议生成失败")
	ErrOutreachGeneration     = errors.New("触达文案生成失败")
	ErrInvalidComparisonInput = errors.New("批量对比输入不合法")
	ErrAnalysisNotFound       = errors.New("分析结果不存在")
	ErrPersistAnalysisFailed  = errors.New("保存分析结果失败")
)

// MatchProcessError 包含详细错误信息的自定义错误
type MatchProcessError struct {
	AnalysisID string
	Op         string
	BaseErr    error
	Detail     string
}

func (e *MatchProcessError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, 分析ID:%s): %s", e.BaseErr, e.Op, e.AnalysisID, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, 分析ID:%s)", e.BaseErr, e.Op, e.AnalysisID)
}

func (e *MatchProcessError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *MatchProcessError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// 错误构造函数

func NewEmbeddingError(analysisID, detail string) error {
	return &MatchProcessError{
		AnalysisID: analysisID,
		Op:         "embed",
		BaseErr:    ErrEmbeddingUnavailable,
		Detail:     detail,
	}
}

func NewSuggestionError(analysisID, detail string) error {
	return &MatchProcessError{
		AnalysisID: analysisID,
		Op:         "suggest",
		BaseErr:    ErrSuggestionGeneration,
		Detail:     detail,
	}
}

func NewOutreachError(analysisID, detail string) error {
	return &MatchProcessError{
		AnalysisID: analysisID,
		Op:         "outreach",
		BaseErr:    ErrOutreachGeneration,
		Detail:     detail,
	}
}

func NewComparisonInputError(detail string) error {
	return &MatchProcessError{
		Op:      "compare",
		BaseErr: ErrInvalidComparisonInput,
		Detail:  detail,
	}
}

func NewPersistError(analysisID, detail string) error {
	return &MatchProcessError{
		AnalysisID: analysisID,
		Op:         "persist",
		BaseErr:    ErrPersistAnalysisFailed,
		Detail:     detail,
	}
}
