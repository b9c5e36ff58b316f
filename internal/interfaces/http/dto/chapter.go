package dto

import (
	"dreamwriter-api/internal/domain/entity"
)

// CreateChapterRequest 创建章节请求
type CreateChapterRequest struct {
	ID      string `json:"id" binding:"omitempty,max=64"`
	NovelID string `json:"novel_id" binding:"required,max=64"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Order   int    `json:"order"`
	Status  string `json:"status"`
}

// UpdateChapterRequest 更新章节请求
type UpdateChapterRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	Order   *int    `json:"order,omitempty"`
	Status  *string `json:"status,omitempty"`
}

// ChapterResponse 章节响应
type ChapterResponse struct {
	ID      string `json:"id"`
	NovelID string `json:"novel_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Order   int    `json:"order"`
	Status  string `json:"status"`
}

// ToChapterEntity 转换为领域实体，未指定状态时为草稿
func (r *CreateChapterRequest) ToChapterEntity() *entity.Chapter {
	status := r.Status
	if status == "" {
		status = entity.ChapterStatusDraft
	}
	return &entity.Chapter{
		ID:      idOrNew(r.ID),
		NovelID: r.NovelID,
		Title:   r.Title,
		Content: r.Content,
		Order:   r.Order,
		Status:  status,
	}
}

// ApplyToChapter 将更新应用到章节
func (r *UpdateChapterRequest) ApplyToChapter(ch *entity.Chapter) {
	if r.Title != nil {
		ch.Title = *r.Title
	}
	if r.Content != nil {
		ch.Content = *r.Content
	}
	if r.Order != nil {
		ch.Order = *r.Order
	}
	if r.Status != nil {
		ch.Status = *r.Status
	}
}

// ToChapterResponse 将领域实体转换为响应 DTO
func ToChapterResponse(ch *entity.Chapter) *ChapterResponse {
	if ch == nil {
		return nil
	}
	return &ChapterResponse{
		ID:      ch.ID,
		NovelID: ch.NovelID,
		Title:   ch.Title,
		Content: ch.Content,
		Order:   ch.Order,
		Status:  ch.Status,
	}
}

// ToChapterListResponse 转换章节列表
func ToChapterListResponse(chapters []*entity.Chapter) []*ChapterResponse {
	out := make([]*ChapterResponse, 0, len(chapters))
	for _, ch := range chapters {
		out = append(out, ToChapterResponse(ch))
	}
	return out
}
