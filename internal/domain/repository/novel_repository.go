package repository

import (
	"context"

	"dreamwriter-api/internal/domain/entity"
)

// NovelRepository 小说仓储接口
type NovelRepository interface {
	// Create 创建小说
	Create(ctx context.Context, novel *entity.Novel) error

	// GetByID 根据 ID 获取小说，不存在时返回 nil, nil
	GetByID(ctx context.Context, id string) (*entity.Novel, error)

	// List 获取全部小说（按创建时间升序）
	List(ctx context.Context) ([]*entity.Novel, error)

	// Update 保存小说全部字段
	Update(ctx context.Context, novel *entity.Novel) error

	// Delete 删除小说，不存在时返回 ErrNovelNotFound
	Delete(ctx context.Context, id string) error
}
