package router

import (
	"context"
	"errors"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"resume-match-go/internal/api/handler"
	"resume-match-go/internal/processor"
)

// RegisterRoutes 注册 API 路由
func RegisterRoutes(h *server.Hertz, matchHandler *handler.MatchHandler) {
	api := h.Group("/api/v1")

	api.POST("/match/analyze", func(c context.Context, ctx *app.RequestContext) {
		var req handler.AnalyzeMatchRequest
		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
			return
		}

		result, err := matchHandler.AnalyzeMatch(c, req)
		if err != nil {
			ctx.JSON(statusFor(err), utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, result)
	})

	api.POST("/match/compare", func(c context.Context, ctx *app.RequestContext) {
		var req handler.CompareJobsRequest
		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
			return
		}

		results, err := matchHandler.CompareJobs(c, req)
		if err != nil {
			ctx.JSON(statusFor(err), utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, utils.H{"results": results})
	})

	api.POST("/skills/extract", func(c context.Context, ctx *app.RequestContext) {
		var req handler.ExtractSkillsRequest
		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
			return
		}

		doc, err := matchHandler.ExtractSkills(c, req)
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, doc)
	})

	api.POST("/resume/upload", func(c context.Context, ctx *app.RequestContext) {
		fileHeader, err := ctx.FormFile("file")
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "文件未找到"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "打开文件失败"})
			return
		}
		defer file.Close()

		resp, err := matchHandler.UploadResume(c, file, fileHeader.Filename)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	api.GET("/resume/:id", func(c context.Context, ctx *app.RequestContext) {
		resumeID := ctx.Param("id")

		resp, err := matchHandler.GetResume(c, resumeID)
		if err != nil {
			ctx.JSON(statusFor(err), utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	api.GET("/analysis/:id", func(c context.Context, ctx *app.RequestContext) {
		analysisID := ctx.Param("id")

		result, err := matchHandler.GetAnalysis(c, analysisID)
		if err != nil {
			ctx.JSON(statusFor(err), utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, result)
	})

	api.GET("/analyses/recent", func(c context.Context, ctx *app.RequestContext) {
		limit, _ := strconv.Atoi(ctx.Query("limit"))

		records, err := matchHandler.ListRecentAnalyses(c, limit)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, utils.H{"analyses": records})
	})

	api.POST("/outreach", func(c context.Context, ctx *app.RequestContext) {
		var req handler.OutreachRequest
		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体解析失败"})
			return
		}

		messages, err := matchHandler.GenerateOutreach(c, req)
		if err != nil {
			ctx.JSON(statusFor(err), utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, messages)
	})

	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})
}

// statusFor 把业务错误映射成HTTP状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, processor.ErrInvalidComparisonInput):
		return consts.StatusBadRequest
	case errors.Is(err, processor.ErrAnalysisNotFound):
		return consts.StatusNotFound
	case errors.Is(err, processor.ErrOutreachGeneration):
		return consts.StatusServiceUnavailable
	default:
		return consts.StatusInternalServerError
	}
}
