package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
)

// pdfParseTimeout 单次PDF解析的超时时间
const pdfParseTimeout = 30 * time.Second

// ResumePDFExtractor 使用 Eino PDF Parser 从简历PDF中提取纯文本
type ResumePDFExtractor struct {
	parser *pdf.PDFParser
	logger *log.Logger
}

// ResumePDFOption PDF提取器的配置选项
type ResumePDFOption func(*ResumePDFExtractor)

// WithPDFLogger 配置自定义日志记录器
func WithPDFLogger(logger *log.Logger) ResumePDFOption {
	return func(e *ResumePDFExtractor) {
		e.logger = logger
	}
}

// NewResumePDFExtractor 初始化简历PDF文本提取器
// 默认配置为不按页面分割，以获取整个文档的连续文本
func NewResumePDFExtractor(ctx context.Context, options ...ResumePDFOption) (*ResumePDFExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{
		ToPages: false, // 整份简历作为单个字符串返回
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF parser: %w", err)
	}

	extractor := &ResumePDFExtractor{
		parser: p,
		logger: log.New(os.Stderr, "[PDF解析器] ", log.LstdFlags),
	}

	for _, option := range options {
		option(extractor)
	}

	return extractor, nil
}

// ExtractFromFile 从PDF文件路径提取纯文本与元数据
func (e *ResumePDFExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	startTime := time.Now()
	e.logger.Printf("开始处理PDF文件: %s", filePath)

	file, err := os.Open(filePath)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open PDF file %s: %w", filePath, err)
	}
	defer file.Close()

	if fileInfo, statErr := file.Stat(); statErr == nil {
		e.logger.Printf("PDF文件大小: %.2f MB", float64(fileInfo.Size())/1024/1024)
	}

	text, metadata, err := e.ExtractFromReader(ctx, file, filePath)

	duration := time.Since(startTime)
	if err != nil {
		e.logger.Printf("PDF处理失败: %s (用时 %.2f秒)", err, duration.Seconds())
		return "", nil, err
	}

	e.logger.Printf("PDF处理完成: 提取了 %d 个字符 (用时 %.2f秒)", len(text), duration.Seconds())
	return text, metadata, nil
}

// ExtractFromBytes 从内存中的PDF字节提取纯文本 (用于HTTP上传场景)
func (e *ResumePDFExtractor) ExtractFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error) {
	return e.ExtractFromReader(ctx, bytes.NewReader(data), uri)
}

// ExtractFromReader 从 io.Reader 中提取PDF文本
// 返回清洗后的文本内容和解析器元数据
func (e *ResumePDFExtractor) ExtractFromReader(ctx context.Context, reader io.Reader, uri string) (string, map[string]interface{}, error) {
	startTime := time.Now()
	e.logger.Printf("开始从Reader提取PDF文本 (URI: %s)", uri)

	ctx, cancel := context.WithTimeout(ctx, pdfParseTimeout)
	defer cancel()

	extraMeta := map[string]interface{}{
		"source_uri":      uri,
		"extraction_time": time.Now().Format(time.RFC3339),
	}

	docs, err := e.parser.Parse(ctx, reader,
		einoParser.WithURI(uri),
		einoParser.WithExtraMeta(extraMeta),
	)

	duration := time.Since(startTime)
	if err != nil {
		e.logger.Printf("从Reader提取PDF失败: %s (用时 %.2f秒)", err, duration.Seconds())
		return "", extraMeta, fmt.Errorf("PDF parse failed for URI %s: %w", uri, err)
	}

	if len(docs) == 0 {
		e.logger.Printf("PDF解析无结果 (用时 %.2f秒)", duration.Seconds())
		return "", extraMeta, fmt.Errorf("PDF parser returned no documents for URI %s", uri)
	}

	// 合并所有文档的内容（以防万一返回了多个）
	var sb strings.Builder
	for i, doc := range docs {
		sb.WriteString(doc.Content)
		if i < len(docs)-1 {
			sb.WriteString("\n\n")
		}
	}
	fullContent := CleanText(sb.String())

	finalMetadata := make(map[string]interface{})
	if docs[0].MetaData != nil {
		for k, v := range docs[0].MetaData {
			finalMetadata[k] = v
		}
	}
	for k, v := range extraMeta {
		finalMetadata[k] = v
	}
	finalMetadata["processing_duration_ms"] = duration.Milliseconds()
	finalMetadata["document_count"] = len(docs)
	finalMetadata["text_length"] = len(fullContent)

	e.logger.Printf("PDF提取完成: 提取了 %d 个字符 (用时 %.2f秒)", len(fullContent), duration.Seconds())
	return fullContent, finalMetadata, nil
}
