package repository

import (
	"context"

	"dreamwriter-api/internal/domain/entity"
)

// ChapterRepository 章节仓储接口
type ChapterRepository interface {
	// Create 创建章节
	Create(ctx context.Context, chapter *entity.Chapter) error

	// GetByID 根据 ID 获取章节
	GetByID(ctx context.Context, id string) (*entity.Chapter, error)

	// ListByNovel 获取小说章节列表（按 order 升序）
	ListByNovel(ctx context.Context, novelID string) ([]*entity.Chapter, error)

	// CountByNovel 统计小说章节数
	CountByNovel(ctx context.Context, novelID string) (int64, error)

	// Update 更新章节
	Update(ctx context.Context, chapter *entity.Chapter) error

	// Delete 删除章节
	Delete(ctx context.Context, id string) error
}
