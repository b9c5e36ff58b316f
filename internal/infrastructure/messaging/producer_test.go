package messaging

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"dreamwriter-api/internal/domain/entity"
)

func TestPublishChapterGenerated(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	producer := NewProducer(rdb, "test:chapters", 100)
	chapter := entity.NewGeneratedChapter("c-1", "n-1", "第一章", "风起云涌", 0)

	require.NoError(t, producer.PublishChapterGenerated(context.Background(), chapter, "gpt-4o-mini"))

	entries, err := rdb.XRange(context.Background(), "test:chapters", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, TypeChapterGenerated, entries[0].Values["type"])

	var msg Message
	require.NoError(t, json.Unmarshal([]byte(entries[0].Values["data"].(string)), &msg))
	require.Equal(t, "n-1", msg.NovelID)
	require.Equal(t, "completed", msg.Metadata["status"])

	var payload ChapterGeneratedPayload
	require.NoError(t, msg.UnmarshalPayload(&payload))
	require.Equal(t, 1, payload.Order)
	require.Equal(t, 4, payload.Chars)
	require.Equal(t, "gpt-4o-mini", payload.Model)
}
