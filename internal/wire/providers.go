package wire

import (
	"context"
	"fmt"

	"github.com/google/wire"

	"dreamwriter-api/internal/application/story"
	"dreamwriter-api/internal/config"
	"dreamwriter-api/internal/domain/repository"
	"dreamwriter-api/internal/infrastructure/llm"
	"dreamwriter-api/internal/infrastructure/messaging"
	"dreamwriter-api/internal/infrastructure/persistence/redis"
	"dreamwriter-api/internal/infrastructure/persistence/store"
	"dreamwriter-api/internal/interfaces/http/handler"
	"dreamwriter-api/internal/interfaces/http/middleware"
	"dreamwriter-api/internal/interfaces/http/router"
	"dreamwriter-api/internal/workflow/chain"
	workflowport "dreamwriter-api/internal/workflow/port"
	workflowprompt "dreamwriter-api/internal/workflow/prompt"
	"dreamwriter-api/pkg/logger"
)

// StoreSet 数据库提供者集合
var StoreSet = wire.NewSet(
	ProvideStoreClient,
	store.NewTxManager,
	store.NewNovelRepository,
	store.NewCharacterRepository,
	store.NewChapterRepository,
	wire.Bind(new(repository.Transactor), new(*store.TxManager)),
	wire.Bind(new(repository.CharacterRepository), new(*store.CharacterRepository)),
	wire.Bind(new(repository.ChapterRepository), new(*store.ChapterRepository)),
)

// RedisSet Redis 提供者集合，Redis 未启用时各项为 nil
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	ProvideNovelRepository,
	ProvideRateLimiter,
	ProvideChapterPublisher,
)

// WorkflowSet LLM 调用链提供者集合
var WorkflowSet = wire.NewSet(
	llm.NewEinoFactory,
	workflowprompt.NewRegistry,
	chain.NewChapterChain,
	chain.NewOutlineChain,
	wire.Bind(new(workflowport.ChatModelFactory), new(*llm.EinoFactory)),
)

// StorySet 应用层提供者集合
var StorySet = wire.NewSet(
	ProvideStoryOptions,
	ProvideChapterStreamer,
	ProvideOutlineStreamer,
	wire.Bind(new(story.ChapterStream), new(*chain.ChapterChain)),
	wire.Bind(new(story.OutlineStream), new(*chain.OutlineChain)),
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideHealthHandler,
	handler.NewNovelHandler,
	handler.NewCharacterHandler,
	handler.NewChapterHandler,
	handler.NewGenerationHandler,
	wire.Bind(new(handler.ChapterGenerator), new(*story.ChapterStreamer)),
	wire.Bind(new(handler.OutlineGenerator), new(*story.OutlineStreamer)),
	wire.Struct(new(router.RouterHandlers), "*"),
	router.NewWithDeps,
)

// ProvideStoreClient 提供数据库客户端并建表
func ProvideStoreClient(ctx context.Context, cfg *config.Config) (*store.Client, func(), error) {
	client, err := store.NewClient(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := client.AutoMigrate(ctx); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
// 未启用时返回 nil；启用但不可达时启动失败
func ProvideRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		logger.Info(ctx, "redis disabled, cache and rate limiting off")
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideNovelRepository 提供小说仓储，Redis 可用时叠加缓存
func ProvideNovelRepository(cfg *config.Config, base *store.NovelRepository, rc *redis.Client) repository.NovelRepository {
	if rc == nil {
		return base
	}
	return redis.NewCachedNovelRepository(base, redis.NewCache(rc), cfg.Cache.NovelTTL)
}

// ProvideRateLimiter 提供限流器，Redis 未启用时返回 nil 接口
func ProvideRateLimiter(rc *redis.Client) middleware.RateLimiter {
	if rc == nil {
		return nil
	}
	return redis.NewRateLimiter(rc)
}

// ProvideChapterPublisher 提供章节事件发布者
func ProvideChapterPublisher(cfg *config.Config, rc *redis.Client) story.ChapterEventPublisher {
	sc := cfg.Messaging.RedisStream
	if rc == nil || !sc.Enabled {
		return nil
	}
	return messaging.NewProducer(rc.Redis(), sc.Stream, sc.MaxLen)
}

// ProvideStoryOptions 组装流式生成器的公共选项
func ProvideStoryOptions(factory *llm.EinoFactory, publisher story.ChapterEventPublisher) []story.Option {
	opts := []story.Option{
		story.WithSpecResolver(factory.Resolve),
		story.WithProviderName(llm.ProviderName),
	}
	if publisher != nil {
		opts = append(opts, story.WithPublisher(publisher))
	}
	return opts
}

// ProvideChapterStreamer 提供章节流式生成器
func ProvideChapterStreamer(
	novels repository.NovelRepository,
	chapters repository.ChapterRepository,
	tx repository.Transactor,
	stream story.ChapterStream,
	opts []story.Option,
) *story.ChapterStreamer {
	return story.NewChapterStreamer(novels, chapters, tx, stream, opts...)
}

// ProvideOutlineStreamer 提供大纲流式生成器
func ProvideOutlineStreamer(stream story.OutlineStream, opts []story.Option) *story.OutlineStreamer {
	return story.NewOutlineStreamer(stream, opts...)
}

// ProvideHealthHandler 提供健康检查处理器
func ProvideHealthHandler(cfg *config.Config, sc *store.Client, rc *redis.Client) *handler.HealthHandler {
	var redisChecker handler.HealthChecker
	if rc != nil {
		redisChecker = rc
	}
	return handler.NewHealthHandler(cfg.App.Version, sc, redisChecker)
}
