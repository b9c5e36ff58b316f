package handler

import (
	"github.com/gin-gonic/gin"

	"dreamwriter-api/internal/domain/repository"
	"dreamwriter-api/internal/interfaces/http/dto"
	apperrors "dreamwriter-api/pkg/errors"
)

// NovelHandler 小说处理器
type NovelHandler struct {
	novelRepo repository.NovelRepository
}

// NewNovelHandler 创建小说处理器
func NewNovelHandler(novelRepo repository.NovelRepository) *NovelHandler {
	return &NovelHandler{novelRepo: novelRepo}
}

// ListNovels 获取小说列表
// @Summary 获取小说列表
// @Tags Novels
// @Produce json
// @Success 200 {object} dto.Response[[]dto.NovelResponse]
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/novels [get]
func (h *NovelHandler) ListNovels(c *gin.Context) {
	novels, err := h.novelRepo.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "failed to list novels")
		return
	}
	dto.Success(c, dto.ToNovelListResponse(novels))
}

// CreateNovel 创建小说
// @Summary 创建小说
// @Description 未提供 id 时由服务端生成
// @Tags Novels
// @Accept json
// @Produce json
// @Param body body dto.CreateNovelRequest true "小说信息"
// @Success 201 {object} dto.Response[dto.NovelResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/novels [post]
func (h *NovelHandler) CreateNovel(c *gin.Context) {
	var req dto.CreateNovelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	novel := req.ToNovelEntity()
	if err := h.novelRepo.Create(c.Request.Context(), novel); err != nil {
		respondError(c, err, "failed to create novel")
		return
	}
	dto.Created(c, dto.ToNovelResponse(novel))
}

// GetNovel 获取小说详情
// @Summary 获取小说详情
// @Tags Novels
// @Produce json
// @Param id path string true "小说 ID"
// @Success 200 {object} dto.Response[dto.NovelResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/novels/{id} [get]
func (h *NovelHandler) GetNovel(c *gin.Context) {
	novel, err := h.novelRepo.GetByID(c.Request.Context(), dto.BindID(c))
	if err != nil {
		respondError(c, err, "failed to get novel")
		return
	}
	if novel == nil {
		dto.AppError(c, apperrors.ErrNovelNotFound)
		return
	}
	dto.Success(c, dto.ToNovelResponse(novel))
}

// UpdateNovel 部分更新小说，同时用于保存生成的大纲
// @Summary 更新小说
// @Tags Novels
// @Accept json
// @Produce json
// @Param id path string true "小说 ID"
// @Param body body dto.UpdateNovelRequest true "更新内容"
// @Success 200 {object} dto.Response[dto.NovelResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/novels/{id} [put]
func (h *NovelHandler) UpdateNovel(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpdateNovelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	novel, err := h.novelRepo.GetByID(ctx, dto.BindID(c))
	if err != nil {
		respondError(c, err, "failed to get novel")
		return
	}
	if novel == nil {
		dto.AppError(c, apperrors.ErrNovelNotFound)
		return
	}

	req.ApplyToNovel(novel)
	if err := h.novelRepo.Update(ctx, novel); err != nil {
		respondError(c, err, "failed to update novel")
		return
	}
	dto.Success(c, dto.ToNovelResponse(novel))
}

// DeleteNovel 删除小说，人物卡与章节保留
// @Summary 删除小说
// @Tags Novels
// @Produce json
// @Param id path string true "小说 ID"
// @Success 200 {object} dto.Response[dto.MessageResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/novels/{id} [delete]
func (h *NovelHandler) DeleteNovel(c *gin.Context) {
	if err := h.novelRepo.Delete(c.Request.Context(), dto.BindID(c)); err != nil {
		respondError(c, err, "failed to delete novel")
		return
	}
	dto.Deleted(c, "Novel")
}
