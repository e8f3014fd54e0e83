// Package port 定义工作流层依赖的外部能力
package port

import (
	"context"

	"github.com/cloudwego/eino/components/model"
)

// ChatModelFactory 工作流层对 LLM ChatModel 的最小依赖
type ChatModelFactory interface {
	Get(ctx context.Context, name string) (model.BaseChatModel, error)
	// ProviderName 解析实际使用的提供商，空值取默认
	ProviderName(name string) string
}
