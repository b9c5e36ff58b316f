package dto

import (
	"dreamwriter-api/internal/domain/entity"
)

// CreateCharacterRequest 创建人物卡请求，name 必须出现但允许空串
type CreateCharacterRequest struct {
	ID          string  `json:"id" binding:"omitempty,max=64"`
	NovelID     string  `json:"novel_id" binding:"required,max=64"`
	Name        *string `json:"name" binding:"required"`
	Role        string  `json:"role"`
	Description string  `json:"description"`
	Traits      string  `json:"traits"`
}

// UpdateCharacterRequest 更新人物卡请求
type UpdateCharacterRequest struct {
	Name        *string `json:"name,omitempty"`
	Role        *string `json:"role,omitempty"`
	Description *string `json:"description,omitempty"`
	Traits      *string `json:"traits,omitempty"`
}

// CharacterResponse 人物卡响应
type CharacterResponse struct {
	ID          string `json:"id"`
	NovelID     string `json:"novel_id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	Description string `json:"description"`
	Traits      string `json:"traits"`
}

// ToCharacterEntity 转换为领域实体
func (r *CreateCharacterRequest) ToCharacterEntity() *entity.Character {
	return &entity.Character{
		ID:          idOrNew(r.ID),
		NovelID:     r.NovelID,
		Name:        *r.Name,
		Role:        r.Role,
		Description: r.Description,
		Traits:      r.Traits,
	}
}

// ApplyToCharacter 将更新应用到人物卡
func (r *UpdateCharacterRequest) ApplyToCharacter(ch *entity.Character) {
	if r.Name != nil {
		ch.Name = *r.Name
	}
	if r.Role != nil {
		ch.Role = *r.Role
	}
	if r.Description != nil {
		ch.Description = *r.Description
	}
	if r.Traits != nil {
		ch.Traits = *r.Traits
	}
}

// ToCharacterResponse 将领域实体转换为响应 DTO
func ToCharacterResponse(ch *entity.Character) *CharacterResponse {
	if ch == nil {
		return nil
	}
	return &CharacterResponse{
		ID:          ch.ID,
		NovelID:     ch.NovelID,
		Name:        ch.Name,
		Role:        ch.Role,
		Description: ch.Description,
		Traits:      ch.Traits,
	}
}

// ToCharacterListResponse 转换人物卡列表
func ToCharacterListResponse(chars []*entity.Character) []*CharacterResponse {
	out := make([]*CharacterResponse, 0, len(chars))
	for _, ch := range chars {
		out = append(out, ToCharacterResponse(ch))
	}
	return out
}
