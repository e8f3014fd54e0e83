package wire

import (
	"context"

	"linkedin-post-ai/internal/application/fewshot"
	"linkedin-post-ai/internal/application/post"
	"linkedin-post-ai/internal/config"
	"linkedin-post-ai/internal/domain/repository"
	"linkedin-post-ai/internal/infrastructure/llm"
	"linkedin-post-ai/internal/infrastructure/persistence/file"
	"linkedin-post-ai/internal/infrastructure/persistence/postgres"
	"linkedin-post-ai/internal/infrastructure/persistence/redis"
	"linkedin-post-ai/internal/interfaces/http/handler"
	"linkedin-post-ai/internal/interfaces/http/middleware"
	"linkedin-post-ai/internal/workflow/chain"
	"linkedin-post-ai/pkg/logger"
)

// SourcePostgres / SourceFile 示例库来源
const (
	SourcePostgres = "postgres"
	SourceFile     = "file"
)

// BootstrapLayer bootstrap 使用的数据层
type BootstrapLayer struct {
	PgClient    *postgres.Client
	TxManager   *postgres.TxManager
	FewShotRepo *postgres.FewShotRepository
}

// ProvidePostgresClient 提供 PostgreSQL 客户端，连接失败直接返回错误
func ProvidePostgresClient(ctx context.Context, cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(ctx, &cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvidePostgresClientOptional 示例库来源为 postgres 时连接；不可达时回退到文件来源
func ProvidePostgresClientOptional(ctx context.Context, cfg *config.Config) (*postgres.Client, func(), error) {
	if cfg.FewShot.Source != SourcePostgres {
		return nil, func() {}, nil
	}
	client, cleanup, err := ProvidePostgresClient(ctx, cfg)
	if err != nil {
		logger.Warn(ctx, "postgres not available, falling back to file dataset",
			"error", err.Error(),
			"data_file", cfg.FewShot.DataFile,
		)
		return nil, func() {}, nil
	}
	return client, cleanup, nil
}

// ProvideRedisClientOptional Redis 未启用或不可达时返回 nil，缓存与限流随之关闭
func ProvideRedisClientOptional(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(ctx, &cfg.Cache.Redis)
	if err != nil {
		logger.Warn(ctx, "redis not available, cache and rate limit disabled", "error", err.Error())
		return nil, func() {}, nil
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideFewShotRepository 优先使用 PostgreSQL，否则加载 JSON 数据集
func ProvideFewShotRepository(ctx context.Context, cfg *config.Config, pg *postgres.Client) (repository.FewShotRepository, error) {
	if pg != nil {
		return postgres.NewFewShotRepository(pg), nil
	}
	repo, err := file.NewFewShotRepository(cfg.FewShot.DataFile)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "few-shot dataset loaded", "source", SourceFile, "path", cfg.FewShot.DataFile)
	return repo, nil
}

// ProvideExampleCache Redis 未启用时返回 nil 接口
func ProvideExampleCache(client *redis.Client) fewshot.ExampleCache {
	if client == nil {
		return nil
	}
	return redis.NewCache(client)
}

// ProvideRateLimiter Redis 未启用时返回 nil 接口
func ProvideRateLimiter(client *redis.Client) middleware.RateLimiter {
	if client == nil {
		return nil
	}
	return redis.NewRateLimiter(client)
}

// ProvideFewShotService 提供话题目录与示例查询服务
func ProvideFewShotService(repo repository.FewShotRepository, cache fewshot.ExampleCache, cfg *config.Config) *fewshot.Service {
	return fewshot.NewService(repo, cache, cfg.FewShot)
}

// ProvideEinoFactory 提供 ChatModel 工厂
func ProvideEinoFactory(cfg *config.Config) *llm.EinoFactory {
	return llm.NewEinoFactory(&cfg.LLM)
}

// ProvideGenerator 提供生成器
func ProvideGenerator(postChain post.PostChain, svc *fewshot.Service, cfg *config.Config) *post.Generator {
	return post.NewGenerator(postChain, svc, cfg.LLM.DefaultProvider)
}

// ProvideFlow 提供帖子请求流程
func ProvideFlow(svc *fewshot.Service, gen *post.Generator, cfg *config.Config) *post.Flow {
	return post.NewFlow(svc, gen, nil, cfg.UI.Facts, cfg.UI.Tips)
}

// ProvideHealthHandler 提供健康检查处理器
func ProvideHealthHandler(pg *postgres.Client, rc *redis.Client, cfg *config.Config) *handler.HealthHandler {
	return handler.NewHealthHandler(pg, rc, cfg.App.Version)
}

// ProvidePageHandler 提供页面处理器
func ProvidePageHandler(flow *post.Flow, cfg *config.Config) *handler.PageHandler {
	return handler.NewPageHandler(flow, cfg.UI)
}

var _ post.PostChain = (*chain.PostChain)(nil)
