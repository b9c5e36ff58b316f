package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"dreamwriter-api/internal/application/story"
	"dreamwriter-api/internal/interfaces/http/dto"
	"dreamwriter-api/internal/interfaces/http/middleware"
	"dreamwriter-api/pkg/logger"
)

// ChapterGenerator 章节流式生成，由 story.ChapterStreamer 实现
type ChapterGenerator interface {
	Stream(ctx context.Context, req story.ChapterRequest, w story.FrameWriter) error
}

// OutlineGenerator 大纲流式生成，由 story.OutlineStreamer 实现
type OutlineGenerator interface {
	Stream(ctx context.Context, req story.OutlineRequest, w story.FrameWriter) error
}

// GenerationHandler 流式生成处理器
type GenerationHandler struct {
	chapters ChapterGenerator
	outlines OutlineGenerator
}

// NewGenerationHandler 创建流式生成处理器
func NewGenerationHandler(chapters ChapterGenerator, outlines OutlineGenerator) *GenerationHandler {
	return &GenerationHandler{
		chapters: chapters,
		outlines: outlines,
	}
}

// GenerateChapter 流式生成章节并在完成后追加保存
// @Summary 流式生成章节
// @Description 逐 token 推送 data 帧，失败时推送 [Error] 帧，最后总是推送 [DONE]
// @Tags Generation
// @Accept json
// @Produce text/event-stream
// @Param Authorization header string true "Bearer <上游 API Key>"
// @Param body body dto.GenerateChapterRequest true "生成请求"
// @Success 200 "SSE stream"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/generate/chapter [post]
func (h *GenerationHandler) GenerateChapter(c *gin.Context) {
	var req dto.GenerateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	ctx := logger.WithContext(c.Request.Context(), logger.ChapterIDKey, req.ChapterID)
	if err := h.chapters.Stream(ctx, req.ToChapterRequest(middleware.APIKey(c)), newSSEWriter(c)); err != nil {
		logger.Debug(ctx, "chapter stream closed early", "error", err.Error())
	}
}

// GenerateOutline 流式生成大纲，不落库
// @Summary 流式生成大纲
// @Tags Generation
// @Accept json
// @Produce text/event-stream
// @Param Authorization header string true "Bearer <上游 API Key>"
// @Param body body dto.GenerateOutlineRequest true "生成请求"
// @Success 200 "SSE stream"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/generate/outline [post]
func (h *GenerationHandler) GenerateOutline(c *gin.Context) {
	var req dto.GenerateOutlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	if err := h.outlines.Stream(ctx, req.ToOutlineRequest(middleware.APIKey(c)), newSSEWriter(c)); err != nil {
		logger.Debug(ctx, "outline stream closed early", "error", err.Error())
	}
}
