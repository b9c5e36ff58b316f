package dto

import (
	"dreamwriter-api/internal/application/story"
)

// GenerateChapterRequest 章节流式生成请求
// model_name 与 base_url 为空时使用服务端默认配置
type GenerateChapterRequest struct {
	NovelID      string `json:"novel_id" binding:"required"`
	ChapterID    string `json:"chapter_id"`
	ChapterTitle string `json:"chapter_title"`
	Guidance     string `json:"guidance"`
	ModelName    string `json:"model_name"`
	BaseURL      string `json:"base_url"`
}

// GenerateOutlineRequest 大纲流式生成请求
type GenerateOutlineRequest struct {
	Topic       string `json:"topic" binding:"required"`
	Genre       string `json:"genre"`
	Description string `json:"description"`
	ModelName   string `json:"model_name"`
	BaseURL     string `json:"base_url"`
}

// ToChapterRequest 转换为应用层请求
func (r *GenerateChapterRequest) ToChapterRequest(apiKey string) story.ChapterRequest {
	return story.ChapterRequest{
		APIKey:       apiKey,
		BaseURL:      r.BaseURL,
		Model:        r.ModelName,
		NovelID:      r.NovelID,
		ChapterID:    r.ChapterID,
		ChapterTitle: r.ChapterTitle,
		Guidance:     r.Guidance,
	}
}

// ToOutlineRequest 转换为应用层请求
func (r *GenerateOutlineRequest) ToOutlineRequest(apiKey string) story.OutlineRequest {
	return story.OutlineRequest{
		APIKey:      apiKey,
		BaseURL:     r.BaseURL,
		Model:       r.ModelName,
		Topic:       r.Topic,
		Genre:       r.Genre,
		Description: r.Description,
	}
}
