package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"linkedin-post-ai/internal/domain/entity"
	"linkedin-post-ai/internal/domain/repository"
)

// FewShotRepository few-shot 示例仓储实现
type FewShotRepository struct {
	client *Client
}

var (
	_ repository.FewShotRepository = (*FewShotRepository)(nil)
	_ repository.FewShotWriter     = (*FewShotRepository)(nil)
)

// NewFewShotRepository 创建 few-shot 示例仓储
func NewFewShotRepository(client *Client) *FewShotRepository {
	return &FewShotRepository{client: client}
}

// Source 数据来源
func (r *FewShotRepository) Source() string {
	return "postgres"
}

// Migrate 建表
func (r *FewShotRepository) Migrate(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "postgres.FewShotRepository.Migrate")
	defer span.End()

	if err := getDB(ctx, r.client.db).AutoMigrate(&entity.FewShotPost{}); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to migrate fewshot_posts: %w", err)
	}
	return nil
}

// ListTags 返回全部话题标签
func (r *FewShotRepository) ListTags(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "postgres.FewShotRepository.ListTags")
	defer span.End()

	var tags []string
	err := getDB(ctx, r.client.db).
		Raw("SELECT DISTINCT unnest(tags) AS tag FROM fewshot_posts ORDER BY tag").
		Scan(&tags).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// ListExamples 按长度、语言、话题过滤示例
func (r *FewShotRepository) ListExamples(ctx context.Context, filter repository.ExampleFilter) ([]*entity.FewShotPost, error) {
	ctx, span := tracer.Start(ctx, "postgres.FewShotRepository.ListExamples")
	defer span.End()

	q := getDB(ctx, r.client.db).
		Where("length = ? AND language = ? AND ? = ANY(tags)", filter.Length, filter.Language, filter.Topic).
		Order("engagement DESC").
		Order("created_at ASC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var posts []*entity.FewShotPost
	if err := q.Find(&posts).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list examples: %w", err)
	}
	return posts, nil
}

// Upsert 按正文去重写入
func (r *FewShotRepository) Upsert(ctx context.Context, post *entity.FewShotPost) (bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.FewShotRepository.Upsert")
	defer span.End()

	post.Normalize()
	if post.Text == "" {
		return false, fmt.Errorf("empty post text")
	}

	db := getDB(ctx, r.client.db)
	var existing entity.FewShotPost
	err := db.Where("text = ?", post.Text).First(&existing).Error
	switch {
	case err == nil:
		post.ID = existing.ID
		post.CreatedAt = existing.CreatedAt
		if err := db.Model(&existing).Updates(map[string]interface{}{
			"engagement": post.Engagement,
			"line_count": post.LineCount,
			"language":   post.Language,
			"tags":       post.Tags,
			"length":     post.Length,
		}).Error; err != nil {
			span.RecordError(err)
			return false, fmt.Errorf("failed to update fewshot post: %w", err)
		}
		return false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := db.Create(post).Error; err != nil {
			span.RecordError(err)
			return false, fmt.Errorf("failed to create fewshot post: %w", err)
		}
		return true, nil
	default:
		span.RecordError(err)
		return false, fmt.Errorf("failed to look up fewshot post: %w", err)
	}
}
