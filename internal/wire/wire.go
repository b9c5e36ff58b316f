//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"dreamwriter-api/internal/config"
	"dreamwriter-api/internal/infrastructure/persistence/store"
	"dreamwriter-api/internal/interfaces/http/router"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		StoreSet,
		RedisSet,
		WorkflowSet,
		StorySet,
		RouterSet,
	)
	return nil, nil, nil
}

// InitializeStore 仅初始化数据库并建表（用于 migrate 命令）
func InitializeStore(ctx context.Context, cfg *config.Config) (*store.Client, func(), error) {
	wire.Build(ProvideStoreClient)
	return nil, nil, nil
}
