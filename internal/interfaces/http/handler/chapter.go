package handler

import (
	"github.com/gin-gonic/gin"

	"dreamwriter-api/internal/domain/repository"
	"dreamwriter-api/internal/interfaces/http/dto"
	apperrors "dreamwriter-api/pkg/errors"
)

// ChapterHandler 章节处理器
type ChapterHandler struct {
	chapterRepo repository.ChapterRepository
}

// NewChapterHandler 创建章节处理器
func NewChapterHandler(chapterRepo repository.ChapterRepository) *ChapterHandler {
	return &ChapterHandler{chapterRepo: chapterRepo}
}

// ListChapters 获取小说的章节，按 order 升序
// @Summary 获取章节列表
// @Tags Chapters
// @Produce json
// @Param id path string true "小说 ID"
// @Success 200 {object} dto.Response[[]dto.ChapterResponse]
// @Router /api/novels/{id}/chapters [get]
func (h *ChapterHandler) ListChapters(c *gin.Context) {
	chapters, err := h.chapterRepo.ListByNovel(c.Request.Context(), dto.BindID(c))
	if err != nil {
		respondError(c, err, "failed to list chapters")
		return
	}
	dto.Success(c, dto.ToChapterListResponse(chapters))
}

// CreateChapter 创建章节
// @Summary 创建章节
// @Tags Chapters
// @Accept json
// @Produce json
// @Param body body dto.CreateChapterRequest true "章节"
// @Success 201 {object} dto.Response[dto.ChapterResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/chapters [post]
func (h *ChapterHandler) CreateChapter(c *gin.Context) {
	var req dto.CreateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	chapter := req.ToChapterEntity()
	if err := h.chapterRepo.Create(c.Request.Context(), chapter); err != nil {
		respondError(c, err, "failed to create chapter")
		return
	}
	dto.Created(c, dto.ToChapterResponse(chapter))
}

// GetChapter 获取章节
// @Summary 获取章节
// @Tags Chapters
// @Produce json
// @Param id path string true "章节 ID"
// @Success 200 {object} dto.Response[dto.ChapterResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/chapters/{id} [get]
func (h *ChapterHandler) GetChapter(c *gin.Context) {
	chapter, err := h.chapterRepo.GetByID(c.Request.Context(), dto.BindID(c))
	if err != nil {
		respondError(c, err, "failed to get chapter")
		return
	}
	if chapter == nil {
		dto.AppError(c, apperrors.ErrChapterNotFound)
		return
	}
	dto.Success(c, dto.ToChapterResponse(chapter))
}

// UpdateChapter 部分更新章节
// @Summary 更新章节
// @Tags Chapters
// @Accept json
// @Produce json
// @Param id path string true "章节 ID"
// @Param body body dto.UpdateChapterRequest true "更新内容"
// @Success 200 {object} dto.Response[dto.ChapterResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/chapters/{id} [put]
func (h *ChapterHandler) UpdateChapter(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpdateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	chapter, err := h.chapterRepo.GetByID(ctx, dto.BindID(c))
	if err != nil {
		respondError(c, err, "failed to get chapter")
		return
	}
	if chapter == nil {
		dto.AppError(c, apperrors.ErrChapterNotFound)
		return
	}

	req.ApplyToChapter(chapter)
	if err := h.chapterRepo.Update(ctx, chapter); err != nil {
		respondError(c, err, "failed to update chapter")
		return
	}
	dto.Success(c, dto.ToChapterResponse(chapter))
}

// DeleteChapter 删除章节
// @Summary 删除章节
// @Tags Chapters
// @Produce json
// @Param id path string true "章节 ID"
// @Success 200 {object} dto.Response[dto.MessageResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/chapters/{id} [delete]
func (h *ChapterHandler) DeleteChapter(c *gin.Context) {
	if err := h.chapterRepo.Delete(c.Request.Context(), dto.BindID(c)); err != nil {
		respondError(c, err, "failed to delete chapter")
		return
	}
	dto.Deleted(c, "Chapter")
}
