// Package chain 基于 Eino compose 编排的生成链
package chain

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	llmctx "linkedin-post-ai/internal/domain/service"
	wfmodel "linkedin-post-ai/internal/workflow/model"
	wfnode "linkedin-post-ai/internal/workflow/node"
	workflowport "linkedin-post-ai/internal/workflow/port"
	workflowprompt "linkedin-post-ai/internal/workflow/prompt"
)

const (
	workflowGenerate = "post_generate"
	workflowStream   = "post_stream"

	// 单条示例最多保留的字符数
	maxExampleRunes = 3000
)

const hinglishRule = "If Language is Hinglish then it means it is a mix of Hindi and English. " +
	"The script for the generated post should always be English."

type PostChain struct {
	factory  workflowport.ChatModelFactory
	registry *workflowprompt.Registry

	chainOnce sync.Once
	chain     compose.Runnable[*wfmodel.PostGenerateInput, *wfmodel.PostGenerateOutput]
	chainErr  error
}

func NewPostChain(factory workflowport.ChatModelFactory) *PostChain {
	return &PostChain{factory: factory, registry: workflowprompt.NewRegistry()}
}

// Invoke 同步生成，返回清洗后的正文；正文为空视为失败
func (c *PostChain) Invoke(ctx context.Context, in *wfmodel.PostGenerateInput) (*wfmodel.PostGenerateOutput, error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	chain, err := c.getChain()
	if err != nil {
		return nil, err
	}
	return chain.Invoke(ctx, in)
}

// Stream 返回 Eino StreamReader；调用方负责 Close()
func (c *PostChain) Stream(ctx context.Context, in *wfmodel.PostGenerateInput) (*schema.StreamReader[*schema.Message], error) {
	if c == nil || c.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}

	provider := c.factory.ProviderName(in.Provider)
	ctx = llmctx.WithLLMCall(ctx, workflowStream, provider)
	chatModel, err := c.factory.Get(ctx, provider)
	if err != nil {
		return nil, err
	}
	msgs, err := c.formatMessages(ctx, in)
	if err != nil {
		return nil, err
	}
	return chatModel.Stream(ctx, msgs, buildModelOptions(in)...)
}

type postChainState struct {
	In       *wfmodel.PostGenerateInput
	Provider string
	Messages []*schema.Message
	OutMsg   *schema.Message
}

func (c *PostChain) getChain() (compose.Runnable[*wfmodel.PostGenerateInput, *wfmodel.PostGenerateOutput], error) {
	c.chainOnce.Do(func() {
		c.chain, c.chainErr = c.buildChain(context.Background())
	})
	return c.chain, c.chainErr
}

func (c *PostChain) buildChain(ctx context.Context) (compose.Runnable[*wfmodel.PostGenerateInput, *wfmodel.PostGenerateOutput], error) {
	chain := compose.NewChain[*wfmodel.PostGenerateInput, *wfmodel.PostGenerateOutput]()

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, in *wfmodel.PostGenerateInput) (*postChainState, error) {
			if in == nil {
				return nil, fmt.Errorf("input is nil")
			}
			msgs, err := c.formatMessages(ctx, in)
			if err != nil {
				return nil, err
			}
			return &postChainState{In: in, Provider: c.factory.ProviderName(in.Provider), Messages: msgs}, nil
		}),
		compose.WithNodeName("post.template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *postChainState) (*postChainState, error) {
			if st == nil || st.In == nil {
				return nil, fmt.Errorf("state is nil")
			}
			ctx = llmctx.WithLLMCall(ctx, workflowGenerate, st.Provider)
			chatModel, err := c.factory.Get(ctx, st.Provider)
			if err != nil {
				return nil, err
			}
			outMsg, err := chatModel.Generate(ctx, st.Messages, buildModelOptions(st.In)...)
			if err != nil {
				return nil, err
			}
			if outMsg == nil {
				return nil, fmt.Errorf("empty llm response")
			}
			st.OutMsg = outMsg
			return st, nil
		}),
		compose.WithNodeName("post.llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *postChainState) (*wfmodel.PostGenerateOutput, error) {
			if st == nil || st.OutMsg == nil {
				return nil, fmt.Errorf("state is nil")
			}
			text := wfnode.CleanPostText(st.OutMsg.Content)
			if text == "" {
				return nil, fmt.Errorf("llm returned blank post")
			}
			out := &wfmodel.PostGenerateOutput{
				Text: text,
				Meta: wfmodel.LLMUsageMeta{
					Provider:    st.Provider,
					Model:       strings.TrimSpace(st.In.Model),
					GeneratedAt: time.Now(),
				},
			}
			if rm := st.OutMsg.ResponseMeta; rm != nil && rm.Usage != nil {
				out.Meta.PromptTokens = rm.Usage.PromptTokens
				out.Meta.CompletionTokens = rm.Usage.CompletionTokens
			}
			return out, nil
		}),
		compose.WithNodeName("post.finalize"),
	)

	return chain.Compile(ctx)
}

func (c *PostChain) formatMessages(ctx context.Context, in *wfmodel.PostGenerateInput) ([]*schema.Message, error) {
	tpl, err := c.registry.ChatTemplate(workflowprompt.PromptPostGenV1)
	if err != nil {
		return nil, err
	}
	rule := ""
	if in.Hinglish {
		rule = hinglishRule
	}
	return tpl.Format(ctx, map[string]any{
		"topic":          strings.TrimSpace(in.Topic),
		"length_range":   strings.TrimSpace(in.LengthRange),
		"language":       strings.TrimSpace(in.Language),
		"language_rule":  rule,
		"examples_block": BuildExamplesBlock(in.Examples),
	})
}

// BuildExamplesBlock 拼接写作风格示例；无示例时返回空串
func BuildExamplesBlock(examples []string) string {
	var b strings.Builder
	n := 0
	for _, ex := range examples {
		ex = strings.TrimSpace(ex)
		if ex == "" {
			continue
		}
		if n == 0 {
			b.WriteString("4) Use the writing style as per the following examples.")
		}
		n++
		fmt.Fprintf(&b, "\n\nExample%d:\n%s", n, wfnode.TruncateByRunes(ex, maxExampleRunes))
	}
	return b.String()
}

func buildModelOptions(in *wfmodel.PostGenerateInput) []model.Option {
	opts := make([]model.Option, 0, 3)
	if in.Temperature != nil {
		opts = append(opts, model.WithTemperature(*in.Temperature))
	}
	if in.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*in.MaxTokens))
	}
	if m := strings.TrimSpace(in.Model); m != "" {
		opts = append(opts, model.WithModel(m))
	}
	return opts
}
