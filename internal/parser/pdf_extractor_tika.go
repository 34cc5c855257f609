package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// TikaPDFExtractor 基于Apache Tika服务的简历PDF文本提取器
// 作为 ResumePDFExtractor 的替代后端, 用于扫描件等Eino解析效果不佳的PDF
type TikaPDFExtractor struct {
	// Tika服务器地址，例如 http://localhost:9998
	ServerURL string
	// HTTP客户端，可配置超时等参数
	Client *http.Client
	// 是否提取完整元数据
	extractFullMetadata bool
	// 是否提取精简元数据
	extractMinimalMetadata bool
	logger                 *log.Logger
}

// TikaOption 定义配置选项函数
type TikaOption func(*TikaPDFExtractor)

// WithFullMetadata 配置是否提取完整元数据
func WithFullMetadata(extract bool) TikaOption {
	return func(e *TikaPDFExtractor) {
		e.extractFullMetadata = extract
	}
}

// WithMinimalMetadata 配置是否提取精简的关键元数据
func WithMinimalMetadata(extract bool) TikaOption {
	return func(e *TikaPDFExtractor) {
		e.extractMinimalMetadata = extract
	}
}

// WithTikaLogger 配置自定义日志记录器
func WithTikaLogger(logger *log.Logger) TikaOption {
	return func(e *TikaPDFExtractor) {
		e.logger = logger
	}
}

// WithTimeout 配置HTTP客户端超时时间
func WithTimeout(timeout time.Duration) TikaOption {
	return func(e *TikaPDFExtractor) {
		e.Client.Timeout = timeout
	}
}

// NewTikaPDFExtractor 创建一个新的Tika PDF解析器
func NewTikaPDFExtractor(serverURL string, options ...TikaOption) *TikaPDFExtractor {
	client := &http.Client{
		Timeout: 60 * time.Second,
	}

	extractor := &TikaPDFExtractor{
		ServerURL:              serverURL,
		Client:                 client,
		extractFullMetadata:    false,
		extractMinimalMetadata: true,
		logger:                 log.New(os.Stderr, "[TikaPDF] ", log.LstdFlags),
	}

	for _, option := range options {
		option(extractor)
	}

	return extractor
}

// ExtractFromFile 从PDF文件提取文本内容
func (e *TikaPDFExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", nil, fmt.Errorf("打开PDF文件 %s 失败: %w", filePath, err)
	}
	defer file.Close()

	return e.ExtractFromReader(ctx, file, filePath)
}

// ExtractFromReader 从io.Reader提取文本内容
func (e *TikaPDFExtractor) ExtractFromReader(ctx context.Context, reader io.Reader, uri string) (string, map[string]interface{}, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, fmt.Errorf("读取PDF内容失败: %w", err)
	}
	return e.ExtractFromBytes(ctx, data, uri)
}

// ExtractFromBytes 从字节数组提取文本内容
// 返回清洗后的简历文本和Tika元数据
func (e *TikaPDFExtractor) ExtractFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error) {
	startTime := time.Now()
	e.logger.Printf("开始通过Tika提取PDF文本 (URI: %s)", uri)

	baseMetadata := map[string]interface{}{
		"extraction_time": time.Now().Format(time.RFC3339),
		"source_uri":      uri,
	}

	req, err := http.NewRequestWithContext(ctx, "PUT", fmt.Sprintf("%s/tika", e.ServerURL), bytes.NewReader(data))
	if err != nil {
		return "", baseMetadata, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/pdf")
	req.Header.Set("Accept", "text/plain")
	if uri != "" {
		req.Header.Set("X-Tika-Resource-Name", uri)
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return "", baseMetadata, fmt.Errorf("发送请求到Tika服务器失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", baseMetadata, fmt.Errorf("tika服务器返回错误状态码: %d", resp.StatusCode)
	}

	textBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", baseMetadata, fmt.Errorf("读取Tika响应失败: %w", err)
	}

	text := CleanText(string(textBytes))
	baseMetadata["text_length"] = len(text)
	baseMetadata["processing_duration_ms"] = time.Since(startTime).Milliseconds()

	if e.extractFullMetadata || e.extractMinimalMetadata {
		rawMetadata, err := e.extractMetadata(ctx, data, uri)
		if err != nil {
			e.logger.Printf("元数据提取失败: %v, 继续使用基本元数据", err)
		} else {
			for k, v := range rawMetadata {
				if e.extractFullMetadata || isImportantMetadata(k) {
					baseMetadata[k] = v
				}
			}
		}
	}

	e.logger.Printf("Tika提取完成: 提取了 %d 个字符 (用时 %.2f秒)", len(text), time.Since(startTime).Seconds())
	return text, baseMetadata, nil
}

// 判断元数据字段是否重要
func isImportantMetadata(key string) bool {
	importantKeys := map[string]bool{
		"pdf:PDFVersion":                true,
		"xmpTPg:NPages":                 true,
		"dcterms:created":               true,
		"language":                      true,
		"pdf:charsPerPage":              true,
		"dc:title":                      true,
		"Content-Type":                  true,
		"pdf:docinfo:title":             true,
		"pdf:docinfo:created":           true,
		"pdf:totalUnmappedUnicodeChars": true,
	}
	return importantKeys[key]
}

// extractMetadata 提取文档元数据
func (e *TikaPDFExtractor) extractMetadata(ctx context.Context, data []byte, uri string) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, "PUT", fmt.Sprintf("%s/meta", e.ServerURL), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/pdf")
	req.Header.Set("Accept", "application/json")
	if uri != "" {
		req.Header.Set("X-Tika-Resource-Name", uri)
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送请求到Tika服务器失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tika服务器返回错误状态码: %d", resp.StatusCode)
	}

	metadataBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取Tika响应失败: %w", err)
	}

	var metadata map[string]interface{}
	if err := json.Unmarshal(metadataBytes, &metadata); err != nil {
		return nil, fmt.Errorf("解析元数据JSON失败: %w", err)
	}

	return metadata, nil
}
