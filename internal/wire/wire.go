//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"linkedin-post-ai/internal/application/post"
	"linkedin-post-ai/internal/config"
	"linkedin-post-ai/internal/infrastructure/llm"
	"linkedin-post-ai/internal/infrastructure/persistence/postgres"
	"linkedin-post-ai/internal/interfaces/http/handler"
	"linkedin-post-ai/internal/interfaces/http/router"
	"linkedin-post-ai/internal/workflow/chain"
	workflowport "linkedin-post-ai/internal/workflow/port"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		DataSet,
		GenerationSet,
		RouterSet,
	)
	return nil, nil, nil
}

// InitializeBootstrap 仅初始化 PostgreSQL 数据层（用于 bootstrap）
func InitializeBootstrap(ctx context.Context, cfg *config.Config) (*BootstrapLayer, func(), error) {
	wire.Build(
		ProvidePostgresClient,
		postgres.NewTxManager,
		postgres.NewFewShotRepository,
		wire.Struct(new(BootstrapLayer), "*"),
	)
	return nil, nil, nil
}

// DataSet 数据层：PostgreSQL / 文件示例库，Redis 缓存与限流均为可选
var DataSet = wire.NewSet(
	ProvidePostgresClientOptional,
	ProvideRedisClientOptional,
	ProvideFewShotRepository,
	ProvideExampleCache,
	ProvideRateLimiter,
	ProvideFewShotService,
)

// GenerationSet 生成链与帖子流程
var GenerationSet = wire.NewSet(
	ProvideEinoFactory,
	wire.Bind(new(workflowport.ChatModelFactory), new(*llm.EinoFactory)),
	chain.NewPostChain,
	wire.Bind(new(post.PostChain), new(*chain.PostChain)),
	ProvideGenerator,
	wire.Bind(new(handler.PostStreamer), new(*post.Generator)),
	ProvideFlow,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideHealthHandler,
	handler.NewPostHandler,
	handler.NewStreamHandler,
	ProvidePageHandler,
	wire.Struct(new(router.RouterHandlers), "*"),
	router.NewWithDeps,
)
