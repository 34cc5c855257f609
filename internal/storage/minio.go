package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"time"

	"resume-match-go/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
)

// ObjectStorage 对象存储接口
type ObjectStorage interface {
	// SaveResumeText 保存简历纯文本, 返回对象键和文本MD5
	SaveResumeText(ctx context.Context, resumeID string, text string) (string, string, error)

	// GetResumeText 读取简历纯文本
	GetResumeText(ctx context.Context, objectName string) (string, error)

	// DeleteResumeText 删除简历文本对象
	DeleteResumeText(ctx context.Context, objectName string) error

	// GetPresignedURL 获取预签名下载URL
	GetPresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// 确保MinIO实现了ObjectStorage接口
var _ ObjectStorage = (*MinIO)(nil)

// MinIO 提供对象存储功能
type MinIO struct {
	client *minio.Client
	cfg    *config.MinIOConfig
	bucket string
	logger *log.Logger
}

// NewMinIO 创建MinIO客户端
func NewMinIO(cfg *config.MinIOConfig, logger *log.Logger) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	logger.Printf("[MinIO] Initializing MinIO client with endpoint: %s, bucket: %s", cfg.Endpoint, cfg.BucketName)

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		logger.Printf("[MinIO] Initialization failed: %v", err)
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	m := &MinIO{
		client: client,
		cfg:    cfg,
		bucket: cfg.BucketName,
		logger: logger,
	}

	if err := m.ensureBucketExists(cfg.BucketName, cfg.Location); err != nil {
		logger.Printf("[MinIO] Failed to ensure bucket %s exists: %v", cfg.BucketName, err)
		return nil, fmt.Errorf("确保简历文本存储桶 %s 存在失败: %w", cfg.BucketName, err)
	}

	if cfg.ResumeTextExpireDays > 0 {
		if err := m.setupBucketLifecycle(context.Background(), cfg.BucketName, "expire-resume-texts", cfg.ResumeTextExpireDays); err != nil {
			logger.Printf("[MinIO] Warning: Failed to set up lifecycle rules: %v", err)
		}
	}

	logger.Printf("[MinIO] Client initialized successfully for endpoint: %s", cfg.Endpoint)
	return m, nil
}

// ensureBucketExists 确保存储桶存在
func (m *MinIO) ensureBucketExists(bucketName, location string) error {
	exists, err := m.client.BucketExists(context.Background(), bucketName)
	if err != nil {
		return fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", bucketName, err)
	}
	if !exists {
		m.logger.Printf("[MinIO] Bucket %s does not exist, attempting to create...", bucketName)
		err = m.client.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{Region: location})
		if err != nil {
			return fmt.Errorf("创建存储桶 %s 失败: %w", bucketName, err)
		}
		m.logger.Printf("[MinIO] Bucket %s created successfully.", bucketName)
	}
	return nil
}

// setupBucketLifecycle 为指定存储桶设置生命周期规则
func (m *MinIO) setupBucketLifecycle(ctx context.Context, bucketName, ruleID string, expiryDays int) error {
	m.logger.Printf("[MinIO] Setting lifecycle rule for bucket %s: ID=%s, ExpiryDays=%d", bucketName, ruleID, expiryDays)
	config := lifecycle.NewConfiguration()
	config.Rules = []lifecycle.Rule{
		{
			ID:     ruleID,
			Status: "Enabled",
			Expiration: lifecycle.Expiration{
				Days: lifecycle.ExpirationDays(expiryDays),
			},
		},
	}

	if err := m.client.SetBucketLifecycle(ctx, bucketName, config); err != nil {
		m.logger.Printf("[MinIO] Error setting lifecycle for bucket %s: %v", bucketName, err)
		return err
	}
	return nil
}

// SaveResumeText 保存简历纯文本, 对象键形如 resume/{resumeID}/text.txt
// 返回对象键和文本的MD5, MD5供上传去重使用
func (m *MinIO) SaveResumeText(ctx context.Context, resumeID string, text string) (string, string, error) {
	objectName := fmt.Sprintf("resume/%s/text.txt", resumeID)
	data := []byte(text)

	hash := md5.Sum(data)
	textMD5 := hex.EncodeToString(hash[:])

	_, err := m.client.PutObject(ctx, m.bucket, objectName, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "text/plain; charset=utf-8"})
	if err != nil {
		return "", "", fmt.Errorf("上传简历文本 %s/%s 失败: %w", m.bucket, objectName, err)
	}

	m.logger.Printf("[MinIO] Saved resume text: object=%s, size=%d", objectName, len(data))
	return objectName, textMD5, nil
}

// GetResumeText 读取简历纯文本
func (m *MinIO) GetResumeText(ctx context.Context, objectName string) (string, error) {
	object, err := m.client.GetObject(ctx, m.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("获取对象 %s/%s 失败: %w", m.bucket, objectName, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return "", fmt.Errorf("读取对象 %s/%s 内容失败: %w", m.bucket, objectName, err)
	}
	return string(data), nil
}

// DeleteResumeText 删除简历文本对象
func (m *MinIO) DeleteResumeText(ctx context.Context, objectName string) error {
	err := m.client.RemoveObject(ctx, m.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("删除对象 %s/%s 失败: %w", m.bucket, objectName, err)
	}
	return nil
}

// GetPresignedURL 获取预签名下载URL
func (m *MinIO) GetPresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = time.Hour
	}
	presignedURL, err := m.client.PresignedGetObject(ctx, m.bucket, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("生成预签名URL失败: %w", err)
	}
	return presignedURL.String(), nil
}
