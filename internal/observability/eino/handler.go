// Package eino 注册 Eino 全局回调，上报 LLM 调用指标与追踪
package eino

import (
	"context"
	"errors"
	"io"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	cbtemplate "github.com/cloudwego/eino/utils/callbacks"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"linkedin-post-ai/internal/domain/service"
	"linkedin-post-ai/pkg/metrics"
)

// startTimeKey 调用开始时间，OnEnd/OnError 时计算耗时
type startTimeKey struct{}

// modelKey OnStart 时记录的模型名，OnError 拿不到输出配置
type modelKey struct{}

func newChatModelCallbackHandler() *cbtemplate.ModelCallbackHandler {
	return &cbtemplate.ModelCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *model.CallbackInput) context.Context {
			call := service.LLMCallFromContext(ctx)
			modelName := modelNameFromInput(input)
			ctx = context.WithValue(ctx, startTimeKey{}, time.Now())
			ctx = context.WithValue(ctx, modelKey{}, modelName)

			attrs := []attribute.KeyValue{
				attribute.String("eino.workflow", call.Workflow),
				attribute.String("llm.provider", call.Provider),
				attribute.String("llm.model", modelName),
			}
			if info != nil {
				attrs = append(attrs,
					attribute.String("eino.node_name", info.Name),
					attribute.String("eino.type", info.Type),
				)
			}
			ctx, _ = otel.Tracer("eino").Start(ctx, "llm.generate", trace.WithAttributes(attrs...))
			return ctx
		},

		OnEnd: func(ctx context.Context, _ *einocb.RunInfo, output *model.CallbackOutput) context.Context {
			modelName := modelNameFromOutput(output)
			if modelName == "" {
				modelName = modelNameFromContext(ctx)
			}
			var usage *model.TokenUsage
			if output != nil {
				usage = output.TokenUsage
			}
			finishCall(ctx, modelName, usage, nil)
			return ctx
		},

		// 流式输出需读完才能拿到 usage，异步消费回调侧的副本
		OnEndWithStreamOutput: func(ctx context.Context, _ *einocb.RunInfo, output *schema.StreamReader[*model.CallbackOutput]) context.Context {
			modelName := modelNameFromContext(ctx)
			go func() {
				defer output.Close()
				var usage *model.TokenUsage
				for {
					chunk, err := output.Recv()
					if errors.Is(err, io.EOF) {
						break
					}
					if err != nil {
						finishCall(ctx, modelName, usage, err)
						return
					}
					if chunk == nil {
						continue
					}
					if chunk.TokenUsage != nil {
						usage = chunk.TokenUsage
					}
					if m := modelNameFromOutput(chunk); m != "" {
						modelName = m
					}
				}
				finishCall(ctx, modelName, usage, nil)
			}()
			return ctx
		},

		OnError: func(ctx context.Context, _ *einocb.RunInfo, err error) context.Context {
			finishCall(ctx, modelNameFromContext(ctx), nil, err)
			return ctx
		},
	}
}

func finishCall(ctx context.Context, modelName string, usage *model.TokenUsage, err error) {
	call := service.LLMCallFromContext(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.LLMCallTotal.WithLabelValues(call.Workflow, call.Provider, modelName, status).Inc()
	if d := elapsedSeconds(ctx); d > 0 {
		metrics.LLMCallDuration.WithLabelValues(call.Workflow, call.Provider, modelName).Observe(d)
	}
	if usage != nil {
		metrics.LLMTokensUsed.WithLabelValues(call.Workflow, call.Provider, modelName, "prompt").Add(float64(usage.PromptTokens))
		metrics.LLMTokensUsed.WithLabelValues(call.Workflow, call.Provider, modelName, "completion").Add(float64(usage.CompletionTokens))
	}

	span := trace.SpanFromContext(ctx)
	if usage != nil {
		span.SetAttributes(
			attribute.Int("llm.prompt_tokens", usage.PromptTokens),
			attribute.Int("llm.completion_tokens", usage.CompletionTokens),
		)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func elapsedSeconds(ctx context.Context) float64 {
	start, ok := ctx.Value(startTimeKey{}).(time.Time)
	if !ok || start.IsZero() {
		return 0
	}
	return time.Since(start).Seconds()
}

func modelNameFromContext(ctx context.Context) string {
	if m, ok := ctx.Value(modelKey{}).(string); ok {
		return m
	}
	return ""
}

func modelNameFromInput(in *model.CallbackInput) string {
	if in == nil || in.Config == nil {
		return ""
	}
	return in.Config.Model
}

func modelNameFromOutput(out *model.CallbackOutput) string {
	if out == nil || out.Config == nil {
		return ""
	}
	return out.Config.Model
}
