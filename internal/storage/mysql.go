package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"resume-match-go/internal/config"
	"resume-match-go/internal/processor"
	"resume-match-go/internal/storage/models"
	"resume-match-go/internal/tracing"
	"resume-match-go/internal/types"

	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var mysqlTracer = otel.Tracer("resume-match-go/storage/mysql")

// GormTracingPlugin 是一个GORM插件，用于向OpenTelemetry中添加数据库操作的追踪点
type GormTracingPlugin struct {
	tracer         trace.Tracer
	dbName         string
	dbSystem       string
	disableErrSkip bool
}

// Name 返回插件名称
func (p *GormTracingPlugin) Name() string {
	return "GormOpenTelemetryPlugin"
}

// Initialize 注册GORM回调以启用追踪
func (p *GormTracingPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	if err := cb.Create().Before("gorm:create").Register("otel:before_create", p.before("CREATE")); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("otel:after_create", p.after()); err != nil {
		return err
	}

	if err := cb.Query().Before("gorm:query").Register("otel:before_query", p.before("SELECT")); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("otel:after_query", p.after()); err != nil {
		return err
	}

	if err := cb.Update().Before("gorm:update").Register("otel:before_update", p.before("UPDATE")); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("otel:after_update", p.after()); err != nil {
		return err
	}

	if err := cb.Delete().Before("gorm:delete").Register("otel:before_delete", p.before("DELETE")); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("otel:after_delete", p.after()); err != nil {
		return err
	}

	if err := cb.Row().Before("gorm:row").Register("otel:before_row", p.before("ROW")); err != nil {
		return err
	}
	if err := cb.Row().After("gorm:row").Register("otel:after_row", p.after()); err != nil {
		return err
	}

	if err := cb.Raw().Before("gorm:raw").Register("otel:before_raw", p.before("RAW")); err != nil {
		return err
	}
	if err := cb.Raw().After("gorm:raw").Register("otel:after_raw", p.after()); err != nil {
		return err
	}

	return nil
}

// before 返回在GORM操作之前执行的回调函数
func (p *GormTracingPlugin) before(operation string) func(db *gorm.DB) {
	return func(db *gorm.DB) {
		if p.disableErrSkip && db.Statement.SkipHooks {
			return
		}

		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}

		tableName := db.Statement.Table
		if tableName == "" {
			tableName = "unknown"
		}

		spanName := fmt.Sprintf("%s %s", operation, tableName)
		opts := []trace.SpanStartOption{
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				semconv.DBSystemMySQL,
				attribute.String("db.name", p.dbName),
				attribute.String("db.operation", operation),
				attribute.String("db.sql.table", tableName),
			),
		}

		sqlStatement := db.Statement.SQL.String()
		if sqlStatement != "" {
			opts = append(opts, trace.WithAttributes(
				attribute.String("db.statement", tracing.SafeSQL(sqlStatement)),
			))
		}

		newCtx, span := p.tracer.Start(ctx, spanName, opts...)

		// 将span保存在DB上下文中，以便在after回调中使用
		db.Statement.Context = context.WithValue(newCtx, "otel-span", span)
	}
}

// after 返回在GORM操作之后执行的回调函数
func (p *GormTracingPlugin) after() func(db *gorm.DB) {
	return func(db *gorm.DB) {
		span, ok := db.Statement.Context.Value("otel-span").(trace.Span)
		if !ok {
			return
		}
		defer span.End()

		if db.Statement.RowsAffected > 0 {
			span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		} else {
			span.SetAttributes(attribute.Int64("db.rows_affected", 0))
		}

		// ErrRecordNotFound 是业务逻辑正常情况的一部分，不应作为错误处理
		if db.Error != nil {
			if db.Error == gorm.ErrRecordNotFound {
				span.SetAttributes(attribute.String("error.type", "record_not_found"))
				span.SetStatus(codes.Ok, "record not found")
			} else {
				tracing.RecordError(span, db.Error, tracing.ErrorTypeDB)
			}
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}
}

// NewGormTracingPlugin 创建一个新的GORM追踪插件
func NewGormTracingPlugin(dbName string) *GormTracingPlugin {
	return &GormTracingPlugin{
		tracer:         mysqlTracer,
		dbName:         dbName,
		dbSystem:       "mysql",
		disableErrSkip: true,
	}
}

// WithDisableErrSkip 设置是否禁用错误跳过
func (p *GormTracingPlugin) WithDisableErrSkip(disable bool) *GormTracingPlugin {
	p.disableErrSkip = disable
	return p
}

// 确保MySQL实现了分析结果存储接口
var _ processor.AnalysisStore = (*MySQL)(nil)

// MySQL 提供关系数据库功能
type MySQL struct {
	db  *gorm.DB
	cfg *config.MySQLConfig
}

// NewMySQL 创建MySQL客户端
func NewMySQL(cfg *config.MySQLConfig) (*MySQL, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MySQL配置不能为空")
	}

	// 构建DSN，添加超时设置
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%ds&readTimeout=%ds&writeTimeout=%ds",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
		cfg.ConnectTimeoutSeconds, cfg.ReadTimeoutSeconds, cfg.WriteTimeoutSeconds)

	var logLevel logger.LogLevel
	switch cfg.LogLevel {
	case 1:
		logLevel = logger.Silent
	case 2:
		logLevel = logger.Error
	case 3:
		logLevel = logger.Warn
	case 4:
		logLevel = logger.Info
	default:
		logLevel = logger.Info
	}

	gormConfig := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logLevel),
		PrepareStmt:                              true,
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	}

	db, err := gorm.Open(mysql.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("连接MySQL失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}

	// 设置连接池参数
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTimeMinutes) * time.Minute)

	m := &MySQL{
		db:  db,
		cfg: cfg,
	}

	// 注册OpenTelemetry追踪插件
	tracingPlugin := NewGormTracingPlugin(cfg.Database).WithDisableErrSkip(true)
	if err := db.Use(tracingPlugin); err != nil {
		return nil, fmt.Errorf("注册追踪插件失败: %w", err)
	}

	if err := m.autoMigrateSchema(); err != nil {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		return nil, fmt.Errorf("自动迁移数据库结构失败: %w", err)
	}

	log.Println("成功连接到MySQL并自动迁移数据库结构")
	return m, nil
}

// autoMigrateSchema 使用GORM自动迁移数据库表结构
func (m *MySQL) autoMigrateSchema() error {
	currentLogger := m.db.Logger

	// 迁移阶段关闭SQL日志打印
	silentLogger := logger.New(
		log.New(log.Writer(), "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	silentDB := m.db.Session(&gorm.Session{Logger: silentLogger})

	err := silentDB.AutoMigrate(
		&models.ResumeRecord{},
		&models.AnalysisRecord{},
	)

	m.db = m.db.Session(&gorm.Session{Logger: currentLogger})

	if err != nil {
		return fmt.Errorf("GORM自动迁移失败: %w", err)
	}
	log.Println("GORM数据库结构迁移成功")
	return nil
}

// DB 返回GORM数据库连接实例
func (m *MySQL) DB() *gorm.DB {
	return m.db
}

// Close 关闭数据库连接
func (m *MySQL) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	return sqlDB.Close()
}

// SaveAnalysis 持久化一次匹配分析的完整产物
// 主键冲突时整体覆盖, 重复保存同一分析是幂等的
func (m *MySQL) SaveAnalysis(ctx context.Context, result *types.AnalysisResult) error {
	ctx, span := mysqlTracer.Start(ctx, "MySQL.SaveAnalysis",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		semconv.DBSystemMySQL,
		attribute.String("db.sql.table", "analysis_records"),
		attribute.String("analysis.id", result.AnalysisID),
	)

	resultJSON, err := json.Marshal(result)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("序列化分析结果失败: %w", err)
	}

	record := models.AnalysisRecord{
		AnalysisID:       result.AnalysisID,
		FinalScore:       result.Score.FinalMatchScore,
		SemanticScore:    result.Score.SemanticSimilarityScore,
		SkillScore:       result.Score.SkillOverlapScore,
		DegradedSemantic: result.DegradedSemantic,
		ResultJSON:       resultJSON,
	}
	if result.Job != nil && result.Job.Document != nil {
		record.JobTitle = firstLine(result.Job.Document.RawText, 255)
	}

	err = m.db.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns: []clause.Column{{Name: "analysis_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"final_score", "semantic_score", "skill_score", "degraded_semantic", "result_json",
			}),
		}).Create(&record).Error
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// GetAnalysis 按ID读取分析结果, 未找到时返回统一的哨兵错误
func (m *MySQL) GetAnalysis(ctx context.Context, analysisID string) (*types.AnalysisResult, error) {
	var record models.AnalysisRecord
	err := m.db.WithContext(ctx).Where("analysis_id = ?", analysisID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, processor.ErrAnalysisNotFound
		}
		return nil, fmt.Errorf("查询分析记录失败: %w", err)
	}

	var result types.AnalysisResult
	if err := json.Unmarshal(record.ResultJSON, &result); err != nil {
		return nil, fmt.Errorf("反序列化分析结果失败: %w", err)
	}
	return &result, nil
}

// ListRecentAnalyses 按创建时间倒序取最近的分析摘要
func (m *MySQL) ListRecentAnalyses(ctx context.Context, limit int) ([]models.AnalysisRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var records []models.AnalysisRecord
	err := m.db.WithContext(ctx).
		Select("analysis_id", "resume_id", "job_title", "final_score", "semantic_score", "skill_score", "degraded_semantic", "created_at").
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("查询最近分析列表失败: %w", err)
	}
	return records, nil
}

// SaveResumeRecord 保存上传简历的元数据, 返回新记录ID
func (m *MySQL) SaveResumeRecord(ctx context.Context, doc *types.ExtractedDocument, filename, textPath, textMD5 string) (string, error) {
	ctx, span := mysqlTracer.Start(ctx, "MySQL.SaveResumeRecord",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	newUUID, err := uuid.NewV7()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("生成UUIDv7失败: %w", err)
	}

	skillsJSON, err := models.SliceToJSON(doc.SkillNames())
	if err != nil {
		return "", fmt.Errorf("序列化技能列表失败: %w", err)
	}
	sections := make([]string, 0, len(doc.DetectedSections))
	for section, present := range doc.DetectedSections {
		if present {
			sections = append(sections, section)
		}
	}
	sectionsJSON, err := models.SliceToJSON(sections)
	if err != nil {
		return "", fmt.Errorf("序列化章节列表失败: %w", err)
	}
	metaJSON, err := models.MapToJSON(map[string]interface{}{
		"skill_count":        len(doc.Skills),
		"section_count":      len(sections),
		"role_keyword_count": len(doc.RoleKeywords),
	})
	if err != nil {
		return "", fmt.Errorf("序列化抽取元信息失败: %w", err)
	}

	record := models.ResumeRecord{
		ResumeID:          newUUID.String(),
		OriginalFilename:  filename,
		TextPathOSS:       textPath,
		RawTextMD5:        textMD5,
		TextLength:        len(doc.RawText),
		ExperienceLevel:   doc.ExperienceLevelEstimate,
		ExtractedSkills:   skillsJSON,
		DetectedSections:  sectionsJSON,
		ProcessingStatus:  "PARSED",
		ExtractionMetaRaw: metaJSON,
	}
	if err := m.db.WithContext(ctx).Create(&record).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("保存简历记录失败: %w", err)
	}

	span.SetAttributes(attribute.String("resume.id", record.ResumeID))
	span.SetStatus(codes.Ok, "")
	return record.ResumeID, nil
}

// GetResumeRecordByMD5 通过文本MD5查找已上传的简历, 用于上传去重
func (m *MySQL) GetResumeRecordByMD5(ctx context.Context, textMD5 string) (*models.ResumeRecord, error) {
	var record models.ResumeRecord
	err := m.db.WithContext(ctx).Where("raw_text_md5 = ?", textMD5).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询简历记录失败: %w", err)
	}
	return &record, nil
}

// GetResumeRecord 按ID读取简历元数据
func (m *MySQL) GetResumeRecord(ctx context.Context, resumeID string) (*models.ResumeRecord, error) {
	var record models.ResumeRecord
	err := m.db.WithContext(ctx).Where("resume_id = ?", resumeID).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// firstLine 取文本首行并按字节截断, 作为冗余的岗位标题列
func firstLine(s string, maxBytes int) string {
	for i, r := range s {
		if r == '\n' {
			s = s[:i]
			break
		}
	}
	for len(s) > maxBytes {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
	}
	return s
}
