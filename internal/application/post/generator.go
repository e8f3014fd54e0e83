package post

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"linkedin-post-ai/internal/domain/entity"
	wfmodel "linkedin-post-ai/internal/workflow/model"
	wfnode "linkedin-post-ai/internal/workflow/node"
	"linkedin-post-ai/pkg/logger"
	"linkedin-post-ai/pkg/metrics"
)

// ExampleSource few-shot 示例来源
type ExampleSource interface {
	Examples(ctx context.Context, length entity.Length, language entity.Language, topic string) ([]*entity.FewShotPost, error)
}

// PostChain 生成链
type PostChain interface {
	Invoke(ctx context.Context, in *wfmodel.PostGenerateInput) (*wfmodel.PostGenerateOutput, error)
	Stream(ctx context.Context, in *wfmodel.PostGenerateInput) (*schema.StreamReader[*schema.Message], error)
}

// Generator 组合示例查询与 LLM 生成链，实现生成端口
type Generator struct {
	chain    PostChain
	examples ExampleSource
	provider string
}

// NewGenerator 创建生成器；provider 为空时使用默认提供商
func NewGenerator(chain PostChain, examples ExampleSource, provider string) *Generator {
	return &Generator{chain: chain, examples: examples, provider: provider}
}

// Generate 生成一篇帖子；任何失败都包装为 GenerationError
func (g *Generator) Generate(ctx context.Context, req entity.GenerationRequest) (entity.GeneratedPost, error) {
	start := time.Now()
	out, err := g.chain.Invoke(ctx, g.buildInput(ctx, req))
	metrics.PostGenerationDuration.WithLabelValues(string(req.Length)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PostGenerationTotal.WithLabelValues(string(req.Length), string(req.Language), "error").Inc()
		return entity.GeneratedPost{}, generationFailure(err)
	}

	text := strings.TrimSpace(out.Text)
	if text == "" {
		metrics.PostGenerationTotal.WithLabelValues(string(req.Length), string(req.Language), "empty").Inc()
		return entity.GeneratedPost{}, generationFailure(nil)
	}

	metrics.PostGenerationTotal.WithLabelValues(string(req.Length), string(req.Language), "success").Inc()
	metrics.PostLineCount.WithLabelValues(string(req.Length)).Observe(float64(wfnode.CountLines(text)))
	logger.Info(ctx, "post generated",
		"length", string(req.Length),
		"language", string(req.Language),
		"provider", out.Meta.Provider,
		"prompt_tokens", out.Meta.PromptTokens,
		"completion_tokens", out.Meta.CompletionTokens,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return entity.GeneratedPost{Text: text}, nil
}

// Stream 流式生成；建立流失败包装为 GenerationError，调用方负责 Close()
func (g *Generator) Stream(ctx context.Context, req entity.GenerationRequest) (*schema.StreamReader[*schema.Message], error) {
	reader, err := g.chain.Stream(ctx, g.buildInput(ctx, req))
	if err != nil {
		metrics.PostGenerationTotal.WithLabelValues(string(req.Length), string(req.Language), "error").Inc()
		return nil, generationFailure(err)
	}
	return reader, nil
}

// FinishStream 清洗流式累积的正文并记录结果指标；正文为空时返回 GenerationError
func (g *Generator) FinishStream(ctx context.Context, req entity.GenerationRequest, raw string) (entity.GeneratedPost, error) {
	text := wfnode.CleanPostText(raw)
	if text == "" {
		metrics.PostGenerationTotal.WithLabelValues(string(req.Length), string(req.Language), "empty").Inc()
		return entity.GeneratedPost{}, generationFailure(nil)
	}
	metrics.PostGenerationTotal.WithLabelValues(string(req.Length), string(req.Language), "success").Inc()
	metrics.PostLineCount.WithLabelValues(string(req.Length)).Observe(float64(wfnode.CountLines(text)))
	logger.Info(ctx, "post streamed",
		"length", string(req.Length),
		"language", string(req.Language),
	)
	return entity.GeneratedPost{Text: text}, nil
}

func (g *Generator) buildInput(ctx context.Context, req entity.GenerationRequest) *wfmodel.PostGenerateInput {
	in := &wfmodel.PostGenerateInput{
		Topic:       req.Topic,
		LengthRange: req.Length.LineRange(),
		Language:    string(req.Language),
		Hinglish:    req.Language == entity.LanguageHinglish,
		Provider:    g.provider,
	}
	if g.examples == nil {
		return in
	}
	// 示例只影响文风，查询失败时不带示例继续生成
	posts, err := g.examples.Examples(ctx, req.Length, req.Language, req.Topic)
	if err != nil {
		logger.Warn(ctx, "few-shot lookup failed, generating without examples", "error", err.Error())
		return in
	}
	for _, p := range posts {
		in.Examples = append(in.Examples, p.Text)
	}
	return in
}
