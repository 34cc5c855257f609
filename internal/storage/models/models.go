package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// ResumeRecord 已上传简历的元数据表
// 简历正文存对象存储, 这里只留路径与去重指纹
type ResumeRecord struct {
	ResumeID          string         `gorm:"type:char(36);primaryKey"`
	OriginalFilename  string         `gorm:"type:varchar(255)"`
	TextPathOSS       string         `gorm:"type:varchar(1024)"`
	RawTextMD5        string         `gorm:"type:char(32);index:idx_resumes_raw_text_md5"`
	TextLength        int            `gorm:"type:int"`
	ExperienceLevel   string         `gorm:"type:varchar(20)"`
	ExtractedSkills   datatypes.JSON `gorm:"type:json"`
	DetectedSections  datatypes.JSON `gorm:"type:json"`
	ProcessingStatus  string         `gorm:"type:varchar(50);default:'PARSED';index:idx_resumes_processing_status"`
	ExtractionMetaRaw datatypes.JSON `gorm:"type:json"`
	CreatedAt         time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt         time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (ResumeRecord) TableName() string {
	return "resume_records"
}

// AnalysisRecord 单次简历-JD匹配分析的持久化记录
// 分析完整产物以JSON整体落库, 高频查询字段冗余成列
type AnalysisRecord struct {
	AnalysisID       string         `gorm:"type:char(36);primaryKey"`
	ResumeID         *string        `gorm:"type:char(36);index:idx_analyses_resume_id"`
	JobTitle         string         `gorm:"type:varchar(255)"`
	FinalScore       int            `gorm:"type:int;index:idx_analyses_final_score"`
	SemanticScore    int            `gorm:"type:int"`
	SkillScore       int            `gorm:"type:int"`
	DegradedSemantic bool           `gorm:"default:false"`
	ResultJSON       datatypes.JSON `gorm:"type:json;not null"`
	CreatedAt        time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);index:idx_analyses_created_at"`
	UpdatedAt        time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`

	Resume *ResumeRecord `gorm:"foreignKey:ResumeID;references:ResumeID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (AnalysisRecord) TableName() string {
	return "analysis_records"
}

// MapToJSON Helper function to convert map[string]interface{} to datatypes.JSON
func MapToJSON(m map[string]interface{}) (datatypes.JSON, error) {
	bytes, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}

// SliceToJSON Helper function to convert a string slice to datatypes.JSON
func SliceToJSON(items []string) (datatypes.JSON, error) {
	bytes, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}
