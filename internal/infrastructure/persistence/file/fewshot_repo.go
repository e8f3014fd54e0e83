// Package file 提供基于本地 JSON 数据集的 few-shot 示例仓储
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"linkedin-post-ai/internal/domain/entity"
	"linkedin-post-ai/internal/domain/repository"
)

// FewShotRepository 启动时一次性加载数据集，之后只读
type FewShotRepository struct {
	posts []*entity.FewShotPost
	tags  []string
}

var _ repository.FewShotRepository = (*FewShotRepository)(nil)

// LoadPosts 读取并规范化 JSON 数据集
func LoadPosts(path string) ([]*entity.FewShotPost, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	var posts []*entity.FewShotPost
	if err := json.Unmarshal(raw, &posts); err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", path, err)
	}
	out := posts[:0]
	for _, p := range posts {
		if p == nil {
			continue
		}
		p.Normalize()
		if p.Text == "" {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// NewFewShotRepository 从数据集文件创建仓储
func NewFewShotRepository(path string) (*FewShotRepository, error) {
	posts, err := LoadPosts(path)
	if err != nil {
		return nil, err
	}
	return NewFewShotRepositoryFromPosts(posts), nil
}

// NewFewShotRepositoryFromPosts 从内存数据创建仓储
func NewFewShotRepositoryFromPosts(posts []*entity.FewShotPost) *FewShotRepository {
	seen := make(map[string]struct{})
	tags := make([]string, 0)
	for _, p := range posts {
		for _, t := range p.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)

	sorted := make([]*entity.FewShotPost, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Engagement > sorted[j].Engagement
	})

	return &FewShotRepository{posts: sorted, tags: tags}
}

// Source 数据来源
func (r *FewShotRepository) Source() string {
	return "file"
}

// ListTags 返回全部话题标签
func (r *FewShotRepository) ListTags(context.Context) ([]string, error) {
	out := make([]string, len(r.tags))
	copy(out, r.tags)
	return out, nil
}

// ListExamples 按长度、语言、话题过滤示例
func (r *FewShotRepository) ListExamples(_ context.Context, filter repository.ExampleFilter) ([]*entity.FewShotPost, error) {
	out := make([]*entity.FewShotPost, 0)
	for _, p := range r.posts {
		if p.Length != filter.Length || p.Language != filter.Language || !p.HasTag(filter.Topic) {
			continue
		}
		out = append(out, p)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}
