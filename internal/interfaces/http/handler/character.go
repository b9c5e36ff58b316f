package handler

import (
	"github.com/gin-gonic/gin"

	"dreamwriter-api/internal/domain/repository"
	"dreamwriter-api/internal/interfaces/http/dto"
	apperrors "dreamwriter-api/pkg/errors"
)

// CharacterHandler 人物卡处理器
type CharacterHandler struct {
	characterRepo repository.CharacterRepository
}

// NewCharacterHandler 创建人物卡处理器
func NewCharacterHandler(characterRepo repository.CharacterRepository) *CharacterHandler {
	return &CharacterHandler{characterRepo: characterRepo}
}

// ListCharacters 获取小说的人物卡
// @Summary 获取人物卡列表
// @Tags Characters
// @Produce json
// @Param id path string true "小说 ID"
// @Success 200 {object} dto.Response[[]dto.CharacterResponse]
// @Router /api/novels/{id}/characters [get]
func (h *CharacterHandler) ListCharacters(c *gin.Context) {
	chars, err := h.characterRepo.ListByNovel(c.Request.Context(), dto.BindID(c))
	if err != nil {
		respondError(c, err, "failed to list characters")
		return
	}
	dto.Success(c, dto.ToCharacterListResponse(chars))
}

// CreateCharacter 创建人物卡
// @Summary 创建人物卡
// @Tags Characters
// @Accept json
// @Produce json
// @Param body body dto.CreateCharacterRequest true "人物卡"
// @Success 201 {object} dto.Response[dto.CharacterResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/characters [post]
func (h *CharacterHandler) CreateCharacter(c *gin.Context) {
	var req dto.CreateCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	ch := req.ToCharacterEntity()
	if err := h.characterRepo.Create(c.Request.Context(), ch); err != nil {
		respondError(c, err, "failed to create character")
		return
	}
	dto.Created(c, dto.ToCharacterResponse(ch))
}

// GetCharacter 获取人物卡
// @Summary 获取人物卡
// @Tags Characters
// @Produce json
// @Param id path string true "人物卡 ID"
// @Success 200 {object} dto.Response[dto.CharacterResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/characters/{id} [get]
func (h *CharacterHandler) GetCharacter(c *gin.Context) {
	ch, err := h.characterRepo.GetByID(c.Request.Context(), dto.BindID(c))
	if err != nil {
		respondError(c, err, "failed to get character")
		return
	}
	if ch == nil {
		dto.AppError(c, apperrors.ErrCharacterNotFound)
		return
	}
	dto.Success(c, dto.ToCharacterResponse(ch))
}

// UpdateCharacter 部分更新人物卡
// @Summary 更新人物卡
// @Tags Characters
// @Accept json
// @Produce json
// @Param id path string true "人物卡 ID"
// @Param body body dto.UpdateCharacterRequest true "更新内容"
// @Success 200 {object} dto.Response[dto.CharacterResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/characters/{id} [put]
func (h *CharacterHandler) UpdateCharacter(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpdateCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	ch, err := h.characterRepo.GetByID(ctx, dto.BindID(c))
	if err != nil {
		respondError(c, err, "failed to get character")
		return
	}
	if ch == nil {
		dto.AppError(c, apperrors.ErrCharacterNotFound)
		return
	}

	req.ApplyToCharacter(ch)
	if err := h.characterRepo.Update(ctx, ch); err != nil {
		respondError(c, err, "failed to update character")
		return
	}
	dto.Success(c, dto.ToCharacterResponse(ch))
}

// DeleteCharacter 删除人物卡
// @Summary 删除人物卡
// @Tags Characters
// @Produce json
// @Param id path string true "人物卡 ID"
// @Success 200 {object} dto.Response[dto.MessageResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/characters/{id} [delete]
func (h *CharacterHandler) DeleteCharacter(c *gin.Context) {
	if err := h.characterRepo.Delete(c.Request.Context(), dto.BindID(c)); err != nil {
		respondError(c, err, "failed to delete character")
		return
	}
	dto.Deleted(c, "Character")
}
