// Package service 定义跨层共享的领域服务约定
package service

import (
	"context"
	"strings"
)

const unknown = "unknown"

type llmCallKey struct{}

// LLMCall 描述一次 LLM 调用所属的工作流与提供商，供回调上报指标使用
type LLMCall struct {
	Workflow string
	Provider string
}

// WithLLMCall 将调用信息写入 context；空字段沿用已有值
func WithLLMCall(ctx context.Context, workflow, provider string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	call := LLMCallFromContext(ctx)
	if w := strings.TrimSpace(workflow); w != "" {
		call.Workflow = w
	}
	if p := strings.TrimSpace(provider); p != "" {
		call.Provider = p
	}
	return context.WithValue(ctx, llmCallKey{}, call)
}

// LLMCallFromContext 读取调用信息，缺失字段返回 unknown
func LLMCallFromContext(ctx context.Context) LLMCall {
	call := LLMCall{Workflow: unknown, Provider: unknown}
	if ctx == nil {
		return call
	}
	if v, ok := ctx.Value(llmCallKey{}).(LLMCall); ok {
		if v.Workflow != "" {
			call.Workflow = v.Workflow
		}
		if v.Provider != "" {
			call.Provider = v.Provider
		}
	}
	return call
}
