// Package post 实现帖子请求流程：收集话题、长度、语言，调用生成能力并给出结果或失败提示
package post

import (
	"errors"
	"fmt"
)

var (
	// ErrGenerationFailure 生成失败（传输错误、超时、空响应）
	ErrGenerationFailure = errors.New("post generation failed")

	// ErrIllegalTransition 会话状态不允许该操作
	ErrIllegalTransition = errors.New("illegal state transition")
)

// GenerationError 包装生成失败的原因
type GenerationError struct {
	Cause error
}

func (e *GenerationError) Error() string {
	if e.Cause == nil {
		return ErrGenerationFailure.Error()
	}
	return fmt.Sprintf("%s: %v", ErrGenerationFailure.Error(), e.Cause)
}

func (e *GenerationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrGenerationFailure}
	}
	return []error{ErrGenerationFailure, e.Cause}
}

func generationFailure(cause error) error {
	return &GenerationError{Cause: cause}
}
