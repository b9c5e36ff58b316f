package repository

import (
	"context"

	"dreamwriter-api/internal/domain/entity"
)

// CharacterRepository 人物卡仓储接口
type CharacterRepository interface {
	Create(ctx context.Context, character *entity.Character) error
	GetByID(ctx context.Context, id string) (*entity.Character, error)
	ListByNovel(ctx context.Context, novelID string) ([]*entity.Character, error)
	Update(ctx context.Context, character *entity.Character) error
	Delete(ctx context.Context, id string) error
}
