// Package model 定义工作流输入输出
package model

import "time"

// LLMUsageMeta 一次生成的模型与用量信息
type LLMUsageMeta struct {
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	GeneratedAt      time.Time
}
