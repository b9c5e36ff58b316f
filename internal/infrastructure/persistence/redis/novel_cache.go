package redis

import (
	"context"
	"encoding/json"
	"time"

	"dreamwriter-api/internal/domain/entity"
	"dreamwriter-api/internal/domain/repository"
	"dreamwriter-api/pkg/logger"
	"dreamwriter-api/pkg/metrics"
)

// CachedNovelRepository 为小说仓储加一层 Read-Through 缓存
// 写操作先落库再删除缓存键
type CachedNovelRepository struct {
	repository.NovelRepository
	cache *Cache
	ttl   time.Duration
}

// NewCachedNovelRepository 创建带缓存的小说仓储
func NewCachedNovelRepository(inner repository.NovelRepository, cache *Cache, ttl time.Duration) *CachedNovelRepository {
	return &CachedNovelRepository{
		NovelRepository: inner,
		cache:           cache,
		ttl:             ttl,
	}
}

// GetByID 优先读取缓存，缓存故障时回落到数据库
func (r *CachedNovelRepository) GetByID(ctx context.Context, id string) (*entity.Novel, error) {
	data, hit, err := r.cache.GetOrLoadSafe(ctx, NovelKey(id), r.ttl, func() (any, error) {
		novel, err := r.NovelRepository.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if novel == nil {
			return nil, ErrSkipCache
		}
		return novel, nil
	})
	if err != nil {
		metrics.CacheRequestsTotal.WithLabelValues("novel", "error").Inc()
		logger.Warn(ctx, "novel cache lookup failed, falling back to store", "novel_id", id, "error", err.Error())
		return r.NovelRepository.GetByID(ctx, id)
	}
	if data == nil {
		metrics.CacheRequestsTotal.WithLabelValues("novel", "miss").Inc()
		return nil, nil
	}

	if hit {
		metrics.CacheRequestsTotal.WithLabelValues("novel", "hit").Inc()
	} else {
		metrics.CacheRequestsTotal.WithLabelValues("novel", "miss").Inc()
	}

	var novel entity.Novel
	if err := json.Unmarshal(data, &novel); err != nil {
		return r.NovelRepository.GetByID(ctx, id)
	}
	return &novel, nil
}

// Update 更新并失效缓存
func (r *CachedNovelRepository) Update(ctx context.Context, novel *entity.Novel) error {
	if err := r.NovelRepository.Update(ctx, novel); err != nil {
		return err
	}
	r.invalidate(ctx, novel.ID)
	return nil
}

// Delete 删除并失效缓存
func (r *CachedNovelRepository) Delete(ctx context.Context, id string) error {
	if err := r.NovelRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *CachedNovelRepository) invalidate(ctx context.Context, id string) {
	if err := r.cache.Delete(ctx, NovelKey(id)); err != nil {
		logger.Warn(ctx, "failed to invalidate novel cache", "novel_id", id, "error", err.Error())
	}
}
