// Package fewshot 提供话题目录与 few-shot 示例查询
package fewshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"linkedin-post-ai/internal/config"
	"linkedin-post-ai/internal/domain/entity"
	"linkedin-post-ai/internal/domain/repository"
	"linkedin-post-ai/pkg/logger"
	"linkedin-post-ai/pkg/metrics"
)

const defaultExampleCount = 2

// ExampleCache 示例查询缓存（Redis 实现）
type ExampleCache interface {
	Key(parts ...string) string
	GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) ([]byte, error)
}

// Service 话题目录与示例查询服务
type Service struct {
	repo  repository.FewShotRepository
	cache ExampleCache
	ttl   time.Duration
	limit int
}

// NewService 创建服务；cache 为 nil 或 ttl <= 0 时不缓存
func NewService(repo repository.FewShotRepository, cache ExampleCache, cfg config.FewShotConfig) *Service {
	limit := cfg.ExampleCount
	if limit < 0 {
		limit = defaultExampleCount
	}
	return &Service{
		repo:  repo,
		cache: cache,
		ttl:   cfg.CacheTTL,
		limit: limit,
	}
}

// Source 底层数据来源
func (s *Service) Source() string {
	return s.repo.Source()
}

// Topics 返回话题目录，每次直接查询数据源
func (s *Service) Topics(ctx context.Context) ([]string, error) {
	tags, err := s.repo.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	metrics.TopicCatalogSize.Set(float64(len(tags)))
	return tags, nil
}

// Examples 返回与长度、语言、话题都匹配的示例，最多 example_count 条
func (s *Service) Examples(ctx context.Context, length entity.Length, language entity.Language, topic string) ([]*entity.FewShotPost, error) {
	if s.limit == 0 {
		return nil, nil
	}
	filter := repository.ExampleFilter{
		Length:   length,
		Language: language,
		Topic:    topic,
		Limit:    s.limit,
	}

	if s.cache == nil || s.ttl <= 0 {
		return s.lookup(ctx, filter, "direct")
	}

	loaded := false
	key := s.cache.Key("fewshot", s.repo.Source(), string(length), string(language), topic)
	raw, err := s.cache.GetOrLoadSafe(ctx, key, s.ttl, func(ctx context.Context) (interface{}, error) {
		loaded = true
		return s.repo.ListExamples(ctx, filter)
	})
	if err != nil {
		if loaded {
			// 数据源本身失败，不再重复查询
			metrics.FewShotLookupTotal.WithLabelValues(s.repo.Source(), "error").Inc()
			return nil, fmt.Errorf("list examples: %w", err)
		}
		logger.Warn(ctx, "fewshot cache unavailable, falling back to direct lookup", "error", err.Error())
		return s.lookup(ctx, filter, "direct")
	}

	var posts []*entity.FewShotPost
	if err := json.Unmarshal(raw, &posts); err != nil {
		logger.Warn(ctx, "fewshot cache entry corrupted, falling back to direct lookup", "key", key, "error", err.Error())
		return s.lookup(ctx, filter, "direct")
	}

	result := "hit"
	if loaded {
		result = "miss"
	}
	if len(posts) == 0 {
		result = "empty"
	}
	metrics.FewShotLookupTotal.WithLabelValues(s.repo.Source(), result).Inc()
	return posts, nil
}

func (s *Service) lookup(ctx context.Context, filter repository.ExampleFilter, result string) ([]*entity.FewShotPost, error) {
	posts, err := s.repo.ListExamples(ctx, filter)
	if err != nil {
		metrics.FewShotLookupTotal.WithLabelValues(s.repo.Source(), "error").Inc()
		return nil, fmt.Errorf("list examples: %w", err)
	}
	if len(posts) == 0 {
		result = "empty"
	}
	metrics.FewShotLookupTotal.WithLabelValues(s.repo.Source(), result).Inc()
	return posts, nil
}
