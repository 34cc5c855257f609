package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/hertz/pkg/app/server"
	hlog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	"github.com/spf13/pflag"

	"resume-match-go/internal/api/handler"
	"resume-match-go/internal/api/router"
	"resume-match-go/internal/config"
	appLogger "resume-match-go/internal/logger"
	"resume-match-go/internal/parser"
	"resume-match-go/internal/processor"
	"resume-match-go/internal/storage"
	"resume-match-go/pkg/ratelimit"
)

// @title Resume Match API
// @version 1.0
// @description 简历与JD匹配分析服务
// @BasePath /api/v1
func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "", "配置文件路径，留空则按默认位置查找")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	initLogger(cfg)
	hlog.Info("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		hlog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()
	hlog.Info("存储服务初始化成功")

	matchProcessor, err := initializeProcessor(cfg, storageManager)
	if err != nil {
		hlog.Fatalf("初始化匹配处理器失败: %v", err)
	}
	hlog.Info("匹配处理器初始化成功")

	pdfExtractor, err := initializePDFExtractor(ctx, cfg)
	if err != nil {
		hlog.Fatalf("初始化PDF解析器失败: %v", err)
	}

	matchHandler := handler.NewMatchHandler(cfg, storageManager, matchProcessor, pdfExtractor)

	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
	)
	router.RegisterRoutes(h, matchHandler)
	hlog.Infof("HTTP服务器启动中，监听地址: %s", cfg.Server.Address)

	go func() {
		if err := h.Run(); err != nil {
			hlog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	hlog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		hlog.Fatalf("服务器关闭失败: %v", err)
	}
	hlog.Info("优雅退出完成")
}

// initLogger 初始化zerolog全局日志并把Hertz接到同一输出上
func initLogger(cfg *config.Config) {
	appLogger.Init(appLogger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})

	appLogger.Logger = appLogger.Logger.With().
		Str("app", "resume-match-go").
		Logger()

	hlog.SetLogger(hertzadapter.From(appLogger.Logger))
}

// initializeProcessor 按配置组装匹配处理器及其可选组件
// 嵌入器、建议生成器、存储任一缺失时处理器走对应的降级路径
func initializeProcessor(cfg *config.Config, storageManager *storage.Storage) (*processor.MatchProcessor, error) {
	taxonomy, err := loadTaxonomy(cfg)
	if err != nil {
		return nil, err
	}
	extractor := parser.NewSkillExtractor(taxonomy)

	options := []processor.MatchProcessorOption{
		processor.WithProcessorLogger(log.New(appLogger.Logger, "[匹配处理器] ", log.LstdFlags)),
	}

	if cfg.Match.SemanticWeight > 0 && cfg.Match.SkillWeight > 0 {
		options = append(options, processor.WithScoreWeights(cfg.Match.SemanticWeight, cfg.Match.SkillWeight))
	}
	if cfg.Match.CompareWorkers > 0 {
		options = append(options, processor.WithCompareWorkers(cfg.Match.CompareWorkers))
	}
	if cfg.Match.OracleTimeout != "" {
		if timeout, err := time.ParseDuration(cfg.Match.OracleTimeout); err == nil {
			options = append(options, processor.WithOracleTimeout(timeout))
		} else {
			hlog.Warnf("解析oracle_timeout失败 (%s): %v, 使用默认值", cfg.Match.OracleTimeout, err)
		}
	}

	if cfg.Gemini.APIKey != "" {
		embedder, err := parser.NewGeminiEmbedder(cfg.Gemini.APIKey, cfg.Gemini.Embedding)
		if err != nil {
			hlog.Warnf("初始化Gemini嵌入器失败: %v, 语义通道将使用降级向量", err)
		} else {
			var textEmbedder processor.TextEmbedder = embedder
			if cfg.Gemini.QPM > 0 {
				textEmbedder = ratelimit.NewRateLimitedEmbedder(embedder, cfg.Gemini.QPM)
			}
			options = append(options, processor.WithEmbedder(textEmbedder))
			hlog.Info("Gemini嵌入器初始化成功")
		}

		chatModel, err := parser.NewGeminiChatModel(
			cfg.Gemini.APIKey,
			cfg.Gemini.Model,
			cfg.Gemini.BaseURL,
			parser.WithChatTemperature(cfg.Suggestion.Temperature),
			parser.WithChatMaxTokens(cfg.Suggestion.MaxTokens),
		)
		if err != nil {
			hlog.Warnf("初始化Gemini聊天模型失败: %v, 建议与触达文案功能不可用", err)
		} else {
			var llmModel model.ToolCallingChatModel = chatModel
			if cfg.Gemini.QPM > 0 {
				llmModel = ratelimit.NewRateLimitedLLMModel(chatModel, cfg.Gemini.QPM)
			}

			generatorLogger := log.New(io.Discard, "", 0)
			if cfg.Logger.Level == "debug" {
				generatorLogger = log.New(os.Stderr, "[文案生成] ", log.LstdFlags)
			}

			var suggestionOptions []parser.LLMSuggestionGeneratorOption
			if cfg.Suggestion.PromptTemplate != "" {
				suggestionOptions = append(suggestionOptions, parser.WithSuggestionPromptTemplate(cfg.Suggestion.PromptTemplate))
			}
			options = append(options,
				processor.WithSuggestionGenerator(parser.NewLLMSuggestionGenerator(llmModel, generatorLogger, suggestionOptions...)),
				processor.WithOutreachGenerator(parser.NewLLMOutreachGenerator(llmModel, generatorLogger)),
			)
			hlog.Info("Gemini聊天模型初始化成功")
		}
	} else {
		hlog.Warn("未配置Gemini API密钥, 语义评分降级, 建议与触达文案不可用")
	}

	if storageManager.Redis != nil {
		options = append(options, processor.WithEmbeddingCache(storageManager.Redis))
	}
	if storageManager.MySQL != nil {
		options = append(options, processor.WithAnalysisStore(storageManager.MySQL))
	}
	if storageManager.RabbitMQ != nil {
		options = append(options, processor.WithEventPublisher(storageManager.RabbitMQ))
	}

	return processor.NewMatchProcessor(extractor, options...), nil
}

// loadTaxonomy 加载技能分类表，未配置路径时使用内置表
func loadTaxonomy(cfg *config.Config) (*parser.SkillTaxonomy, error) {
	if cfg.Taxonomy.Path == "" {
		return parser.DefaultSkillTaxonomy(), nil
	}
	taxonomy, err := parser.LoadSkillTaxonomy(cfg.Taxonomy.Path)
	if err != nil {
		return nil, err
	}
	hlog.Infof("已加载自定义技能分类表: %s", cfg.Taxonomy.Path)
	return taxonomy, nil
}

// initializePDFExtractor 选择PDF解析后端，配置了Tika服务时优先使用
func initializePDFExtractor(ctx context.Context, cfg *config.Config) (processor.PDFExtractor, error) {
	if cfg.Tika.ServerURL != "" {
		var tikaOptions []parser.TikaOption
		switch cfg.Tika.MetadataMode {
		case "full":
			tikaOptions = append(tikaOptions, parser.WithFullMetadata(true))
		case "none":
			tikaOptions = append(tikaOptions, parser.WithMinimalMetadata(false))
		default:
			tikaOptions = append(tikaOptions, parser.WithMinimalMetadata(true))
		}
		if cfg.Tika.TimeoutSeconds > 0 {
			tikaOptions = append(tikaOptions, parser.WithTimeout(time.Duration(cfg.Tika.TimeoutSeconds)*time.Second))
		}
		tikaOptions = append(tikaOptions, parser.WithTikaLogger(log.New(appLogger.Logger, "[TikaPDF] ", log.LstdFlags)))
		hlog.Info("使用Tika PDF解析器")
		return parser.NewTikaPDFExtractor(cfg.Tika.ServerURL, tikaOptions...), nil
	}

	extractor, err := parser.NewResumePDFExtractor(ctx, parser.WithPDFLogger(log.New(appLogger.Logger, "[PDF解析器] ", log.LstdFlags)))
	if err != nil {
		return nil, err
	}
	hlog.Info("使用Eino PDF解析器")
	return extractor, nil
}
