// Package llm 管理 OpenAI 兼容的 Eino ChatModel 实例
package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"linkedin-post-ai/internal/config"
)

// EinoFactory 按提供商名称惰性创建并缓存 ChatModel
type EinoFactory struct {
	config *config.LLMConfig
	models map[string]model.BaseChatModel
	mu     sync.RWMutex
}

// NewEinoFactory 创建 Eino LLM 工厂
func NewEinoFactory(cfg *config.LLMConfig) *EinoFactory {
	return &EinoFactory{
		config: cfg,
		models: make(map[string]model.BaseChatModel),
	}
}

// ProviderName 解析提供商名称，空值取默认提供商
func (f *EinoFactory) ProviderName(name string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return f.config.DefaultProvider
}

// ModelName 返回提供商配置的模型名
func (f *EinoFactory) ModelName(name string) string {
	return f.config.Providers[f.ProviderName(name)].Model
}

// Register 注册外部创建的 ChatModel（覆盖同名实例）
func (f *EinoFactory) Register(name string, m model.BaseChatModel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.models[f.ProviderName(name)] = m
}

// Get 获取指定提供商的 ChatModel
func (f *EinoFactory) Get(ctx context.Context, name string) (model.BaseChatModel, error) {
	name = f.ProviderName(name)

	f.mu.RLock()
	m, ok := f.models[name]
	f.mu.RUnlock()
	if ok {
		return m, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok = f.models[name]; ok {
		return m, nil
	}

	providerCfg, ok := f.config.Providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %s not found in LLM config", name)
	}
	if strings.TrimSpace(providerCfg.APIKey) == "" {
		return nil, fmt.Errorf("provider %s has no api_key configured", name)
	}

	cmCfg := &openai.ChatModelConfig{
		APIKey:  providerCfg.APIKey,
		BaseURL: providerCfg.BaseURL,
		Model:   providerCfg.Model,
		Timeout: providerCfg.Timeout,
	}
	if providerCfg.MaxTokens > 0 {
		maxTokens := providerCfg.MaxTokens
		cmCfg.MaxTokens = &maxTokens
	}
	temperature := float32(providerCfg.Temperature)
	cmCfg.Temperature = &temperature

	chatModel, err := openai.NewChatModel(ctx, cmCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create eino chat model for %s: %w", name, err)
	}

	f.models[name] = chatModel
	return chatModel, nil
}
