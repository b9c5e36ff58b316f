package prompt

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/schema"

	"dreamwriter-api/internal/domain/entity"
)

const (
	// PreviousExcerptRunes 前情提要截取上一章正文的字符数
	PreviousExcerptRunes = 500

	firstChapterPlaceholder = "这是小说的第一章。请直接切入核心矛盾，开局要有吸引力！"
	noCharactersPlaceholder = "无特定人物卡，按大纲自由发挥"
)

// ChapterInput 章节提示词输入
type ChapterInput struct {
	Outline         string
	Characters      string
	PreviousSummary string
	ChapterTitle    string
	Guidance        string
}

// OutlineInput 大纲提示词输入
type OutlineInput struct {
	Topic       string
	Genre       string
	Description string
}

// ChapterMessages 构造章节生成消息，前情提要为空时使用第一章提示
func (r *Registry) ChapterMessages(ctx context.Context, in ChapterInput) ([]*schema.Message, error) {
	previous := in.PreviousSummary
	if previous == "" {
		previous = firstChapterPlaceholder
	}
	return r.Format(ctx, PromptChapterGenV1, map[string]any{
		"outline":          in.Outline,
		"characters":       in.Characters,
		"previous_summary": previous,
		"guidance":         in.Guidance,
		"chapter_title":    in.ChapterTitle,
	})
}

// OutlineMessages 构造大纲生成消息
func (r *Registry) OutlineMessages(ctx context.Context, in OutlineInput) ([]*schema.Message, error) {
	return r.Format(ctx, PromptOutlineGenV1, map[string]any{
		"topic":       in.Topic,
		"genre":       in.Genre,
		"description": in.Description,
	})
}

// CharacterContext 人物卡上下文取自小说描述
func CharacterContext(novel *entity.Novel) string {
	if novel == nil || novel.Description == "" {
		return noCharactersPlaceholder
	}
	return novel.Description
}

// PreviousSummary 取最后一章正文的前 500 个字符，没有章节时返回空串
func PreviousSummary(chapters []*entity.Chapter) string {
	if len(chapters) == 0 {
		return ""
	}
	last := chapters[len(chapters)-1]
	return "上一章讲到：" + truncateRunes(last.Content, PreviousExcerptRunes) + "..."
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Text 合并消息内容，便于日志与测试
func Text(msgs []*schema.Message) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, m.Content)
	}
	return strings.Join(parts, "\n")
}
