package chain

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/require"

	wfmodel "linkedin-post-ai/internal/workflow/model"
)

type fakeModel struct {
	reply  string
	err    error
	chunks []string
	seen   []*schema.Message
}

func (m *fakeModel) Generate(_ context.Context, msgs []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.seen = msgs
	if m.err != nil {
		return nil, m.err
	}
	msg := schema.AssistantMessage(m.reply, nil)
	msg.ResponseMeta = &schema.ResponseMeta{Usage: &schema.TokenUsage{PromptTokens: 11, CompletionTokens: 7}}
	return msg, nil
}

func (m *fakeModel) Stream(_ context.Context, msgs []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	m.seen = msgs
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*schema.Message, 0, len(m.chunks))
	for _, c := range m.chunks {
		out = append(out, schema.AssistantMessage(c, nil))
	}
	return schema.StreamReaderFromArray(out), nil
}

type fakeFactory struct {
	m   model.BaseChatModel
	err error
}

func (f *fakeFactory) Get(context.Context, string) (model.BaseChatModel, error) {
	return f.m, f.err
}

func (f *fakeFactory) ProviderName(name string) string {
	if name == "" {
		return "fake"
	}
	return name
}

func input() *wfmodel.PostGenerateInput {
	return &wfmodel.PostGenerateInput{
		Topic:       "Productivity",
		LengthRange: "1 to 5 lines",
		Language:    "English",
		Examples:    []string{"First example post", "  ", "Second example post"},
	}
}

func TestInvokeBuildsPromptAndReturnsText(t *testing.T) {
	fm := &fakeModel{reply: "  5 tips to stay productive...  "}
	c := NewPostChain(&fakeFactory{m: fm})

	out, err := c.Invoke(context.Background(), input())
	require.NoError(t, err)
	require.Equal(t, "5 tips to stay productive...", out.Text)
	require.Equal(t, "fake", out.Meta.Provider)
	require.Equal(t, 11, out.Meta.PromptTokens)
	require.Equal(t, 7, out.Meta.CompletionTokens)

	require.Len(t, fm.seen, 2)
	user := fm.seen[1].Content
	require.Contains(t, user, "Generate a LinkedIn post using the below information. No preamble.")
	require.Contains(t, user, "1) Topic: Productivity")
	require.Contains(t, user, "2) Length: 1 to 5 lines")
	require.Contains(t, user, "3) Language: English")
	require.Contains(t, user, "Example1:\nFirst example post")
	require.Contains(t, user, "Example2:\nSecond example post")
	require.NotContains(t, user, "Hinglish then")
}

func TestInvokeHinglishAddsRule(t *testing.T) {
	fm := &fakeModel{reply: "Aaj ka topic: growth"}
	c := NewPostChain(&fakeFactory{m: fm})

	in := input()
	in.Language = "Hinglish"
	in.Hinglish = true
	in.Examples = nil
	_, err := c.Invoke(context.Background(), in)
	require.NoError(t, err)

	user := fm.seen[1].Content
	require.Contains(t, user, "mix of Hindi and English")
	require.Contains(t, user, "always be English")
	require.NotContains(t, user, "Example1")
}

func TestInvokeBlankReplyFails(t *testing.T) {
	c := NewPostChain(&fakeFactory{m: &fakeModel{reply: " \n "}})
	_, err := c.Invoke(context.Background(), input())
	require.ErrorContains(t, err, "blank")
}

func TestInvokeModelError(t *testing.T) {
	c := NewPostChain(&fakeFactory{m: &fakeModel{err: errors.New("connection refused")}})
	_, err := c.Invoke(context.Background(), input())
	require.ErrorContains(t, err, "connection refused")
}

func TestInvokeFactoryError(t *testing.T) {
	c := NewPostChain(&fakeFactory{err: errors.New("no api key")})
	_, err := c.Invoke(context.Background(), input())
	require.ErrorContains(t, err, "no api key")
}

func TestStreamRelaysChunks(t *testing.T) {
	fm := &fakeModel{chunks: []string{"5 tips ", "to stay ", "productive..."}}
	c := NewPostChain(&fakeFactory{m: fm})

	reader, err := c.Stream(context.Background(), input())
	require.NoError(t, err)
	defer reader.Close()

	var b strings.Builder
	for {
		msg, err := reader.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		b.WriteString(msg.Content)
	}
	require.Equal(t, "5 tips to stay productive...", b.String())
}

func TestBuildExamplesBlockEmpty(t *testing.T) {
	require.Equal(t, "", BuildExamplesBlock(nil))
	require.Equal(t, "", BuildExamplesBlock([]string{" ", ""}))
}
