package repository

import (
	"context"

	"linkedin-post-ai/internal/domain/entity"
)

// ExampleFilter few-shot 示例过滤条件，三个维度必须同时匹配
type ExampleFilter struct {
	Length   entity.Length
	Language entity.Language
	Topic    string
	// Limit <= 0 表示不限制
	Limit int
}

// FewShotRepository few-shot 示例只读仓储
type FewShotRepository interface {
	// ListTags 返回全部话题标签，去重并升序
	ListTags(ctx context.Context) ([]string, error)
	// ListExamples 按条件返回示例，互动量高者优先
	ListExamples(ctx context.Context, filter ExampleFilter) ([]*entity.FewShotPost, error)
	// Source 数据来源标识（postgres / file），用于指标与缓存键
	Source() string
}

// FewShotWriter few-shot 示例写入（仅 bootstrap 使用）
type FewShotWriter interface {
	// Upsert 按正文去重写入，返回是否新建
	Upsert(ctx context.Context, post *entity.FewShotPost) (bool, error)
	// Migrate 建表
	Migrate(ctx context.Context) error
}
