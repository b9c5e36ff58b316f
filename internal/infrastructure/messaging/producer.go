package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"dreamwriter-api/internal/domain/entity"
	"dreamwriter-api/pkg/metrics"
)

var tracer = otel.Tracer("messaging")

// Producer 消息生产者
type Producer struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewProducer 创建消息生产者
func NewProducer(client *redis.Client, stream string, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = 10000
	}
	return &Producer{
		client: client,
		stream: stream,
		maxLen: maxLen,
	}
}

// Publish 发布消息
func (p *Producer) Publish(ctx context.Context, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", p.stream),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	result, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]any{
			"type": msg.Type,
			"data": string(data),
		},
	}).Result()
	if err != nil {
		span.RecordError(err)
		metrics.StreamPublished.WithLabelValues(p.stream, "error").Inc()
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	metrics.StreamPublished.WithLabelValues(p.stream, "success").Inc()
	span.SetAttributes(attribute.String("stream.message_id", result))
	return result, nil
}

// PublishChapterGenerated 发布章节生成完成事件
func (p *Producer) PublishChapterGenerated(ctx context.Context, chapter *entity.Chapter, model string) error {
	msg, err := NewMessage(chapter.ID, TypeChapterGenerated, chapter.NovelID, &ChapterGeneratedPayload{
		ChapterID: chapter.ID,
		NovelID:   chapter.NovelID,
		Title:     chapter.Title,
		Order:     chapter.Order,
		Chars:     utf8.RuneCountInString(chapter.Content),
		Model:     model,
	})
	if err != nil {
		return err
	}
	msg.SetMetadata("status", chapter.Status)

	_, err = p.Publish(ctx, msg)
	return err
}
