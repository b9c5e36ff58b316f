package dto

import (
	"time"

	"dreamwriter-api/internal/domain/entity"
)

// CreateNovelRequest 创建小说请求，title 必须出现但允许空串
type CreateNovelRequest struct {
	ID          string  `json:"id" binding:"omitempty,max=64"`
	Title       *string `json:"title" binding:"required"`
	Description string  `json:"description"`
	Genre       string  `json:"genre"`
	Outline     string  `json:"outline"`
}

// UpdateNovelRequest 更新小说请求，仅非空字段生效
type UpdateNovelRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Genre       *string `json:"genre,omitempty"`
	Outline     *string `json:"outline,omitempty"`
}

// NovelResponse 小说响应
type NovelResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Genre       string    `json:"genre"`
	Outline     string    `json:"outline"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToNovelEntity 转换为领域实体
func (r *CreateNovelRequest) ToNovelEntity() *entity.Novel {
	novel := entity.NewNovel(idOrNew(r.ID), *r.Title)
	novel.Description = r.Description
	novel.Genre = r.Genre
	novel.Outline = r.Outline
	return novel
}

// ApplyToNovel 将更新应用到小说实体并刷新更新时间
func (r *UpdateNovelRequest) ApplyToNovel(n *entity.Novel) {
	if r.Title != nil {
		n.Title = *r.Title
	}
	if r.Description != nil {
		n.Description = *r.Description
	}
	if r.Genre != nil {
		n.Genre = *r.Genre
	}
	if r.Outline != nil {
		n.Outline = *r.Outline
	}
	n.Touch()
}

// ToNovelResponse 将领域实体转换为响应 DTO
func ToNovelResponse(n *entity.Novel) *NovelResponse {
	if n == nil {
		return nil
	}
	return &NovelResponse{
		ID:          n.ID,
		Title:       n.Title,
		Description: n.Description,
		Genre:       n.Genre,
		Outline:     n.Outline,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

// ToNovelListResponse 转换小说列表
func ToNovelListResponse(novels []*entity.Novel) []*NovelResponse {
	out := make([]*NovelResponse, 0, len(novels))
	for _, n := range novels {
		out = append(out, ToNovelResponse(n))
	}
	return out
}
