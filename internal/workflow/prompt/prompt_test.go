package prompt

import (
	"context"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/require"

	"dreamwriter-api/internal/domain/entity"
)

func TestChapterMessagesFillsSections(t *testing.T) {
	msgs, err := NewRegistry().ChapterMessages(context.Background(), ChapterInput{
		Outline:         "少年在边城觉醒{血脉}",
		Characters:      "林舟：沉默寡言",
		PreviousSummary: "上一章讲到：城破...",
		ChapterTitle:    "夜袭",
		Guidance:        "主角初次出手",
	})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, schema.User, msgs[0].Role)

	text := msgs[0].Content
	require.Contains(t, text, "[世界观与大纲参考]\n少年在边城觉醒{血脉}")
	require.Contains(t, text, "[主要人物卡参考]\n林舟：沉默寡言")
	require.Contains(t, text, "[前情提要]\n上一章讲到：城破...")
	require.Contains(t, text, "[本章目标与走向说明]\n主角初次出手")
	require.Contains(t, text, "请撰写章节名：【夜袭】")
}

func TestChapterMessagesFirstChapterPlaceholder(t *testing.T) {
	msgs, err := NewRegistry().ChapterMessages(context.Background(), ChapterInput{ChapterTitle: "开篇"})
	require.NoError(t, err)
	require.Contains(t, msgs[0].Content, "[前情提要]\n"+firstChapterPlaceholder)
}

func TestOutlineMessagesRequiresSections(t *testing.T) {
	msgs, err := NewRegistry().OutlineMessages(context.Background(), OutlineInput{
		Topic:       "废柴逆袭",
		Genre:       "玄幻",
		Description: "宗门流",
	})
	require.NoError(t, err)

	text := Text(msgs)
	require.Contains(t, text, "题材：玄幻\n主题：废柴逆袭\n补充描述：宗门流")
	for _, heading := range []string{"# 背景设定 (World-building)", "# 核心看点 (Hooks)", "# 剧情分卷 (Volumes)"} {
		require.Contains(t, text, heading)
	}
}

func TestPreviousSummaryTruncatesTo500Runes(t *testing.T) {
	long := strings.Repeat("字", 600)
	summary := PreviousSummary([]*entity.Chapter{
		{Order: 1, Content: "第一章"},
		{Order: 2, Content: long},
	})

	require.Equal(t, "上一章讲到："+strings.Repeat("字", 500)+"...", summary)
}

func TestPreviousSummaryShortAndEmpty(t *testing.T) {
	require.Empty(t, PreviousSummary(nil))
	require.Equal(t, "上一章讲到：短...", PreviousSummary([]*entity.Chapter{{Content: "短"}}))
}

func TestCharacterContext(t *testing.T) {
	require.Equal(t, noCharactersPlaceholder, CharacterContext(&entity.Novel{}))
	require.Equal(t, "人物", CharacterContext(&entity.Novel{Description: "人物"}))
}

func TestUnknownPromptID(t *testing.T) {
	_, err := NewRegistry().ChatTemplate("missing")
	require.Error(t, err)
}
