package post

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"linkedin-post-ai/internal/domain/entity"
	wfmodel "linkedin-post-ai/internal/workflow/model"
	"linkedin-post-ai/pkg/metrics"
)

type stubChain struct {
	out    *wfmodel.PostGenerateOutput
	err    error
	lastIn *wfmodel.PostGenerateInput
}

func (c *stubChain) Invoke(_ context.Context, in *wfmodel.PostGenerateInput) (*wfmodel.PostGenerateOutput, error) {
	c.lastIn = in
	return c.out, c.err
}

func (c *stubChain) Stream(_ context.Context, in *wfmodel.PostGenerateInput) (*schema.StreamReader[*schema.Message], error) {
	c.lastIn = in
	if c.err != nil {
		return nil, c.err
	}
	return schema.StreamReaderFromArray([]*schema.Message{schema.AssistantMessage(c.out.Text, nil)}), nil
}

type stubExamples struct {
	posts []*entity.FewShotPost
	err   error
}

func (s *stubExamples) Examples(context.Context, entity.Length, entity.Language, string) ([]*entity.FewShotPost, error) {
	return s.posts, s.err
}

func req() entity.GenerationRequest {
	return entity.GenerationRequest{Topic: "Productivity", Length: entity.LengthShort, Language: entity.LanguageHinglish}
}

func TestGeneratorPassesExamplesAndLanguageRule(t *testing.T) {
	ch := &stubChain{out: &wfmodel.PostGenerateOutput{Text: " 5 tips to stay productive... "}}
	ex := &stubExamples{posts: []*entity.FewShotPost{{Text: "ex one"}, {Text: "ex two"}}}
	g := NewGenerator(ch, ex, "groq")

	post, err := g.Generate(context.Background(), req())
	require.NoError(t, err)
	require.Equal(t, "5 tips to stay productive...", post.Text)

	require.Equal(t, "Productivity", ch.lastIn.Topic)
	require.Equal(t, "1 to 5 lines", ch.lastIn.LengthRange)
	require.Equal(t, "Hinglish", ch.lastIn.Language)
	require.True(t, ch.lastIn.Hinglish)
	require.Equal(t, "groq", ch.lastIn.Provider)
	require.Equal(t, []string{"ex one", "ex two"}, ch.lastIn.Examples)
}

func TestGeneratorContinuesWithoutExamplesOnLookupError(t *testing.T) {
	ch := &stubChain{out: &wfmodel.PostGenerateOutput{Text: "ok"}}
	g := NewGenerator(ch, &stubExamples{err: errors.New("redis and db down")}, "")

	_, err := g.Generate(context.Background(), req())
	require.NoError(t, err)
	require.Empty(t, ch.lastIn.Examples)
}

func TestGeneratorWrapsChainError(t *testing.T) {
	cause := errors.New("context deadline exceeded")
	g := NewGenerator(&stubChain{err: cause}, nil, "")

	_, err := g.Generate(context.Background(), req())
	require.ErrorIs(t, err, ErrGenerationFailure)
	require.ErrorIs(t, err, cause)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
}

func TestGeneratorBlankTextFails(t *testing.T) {
	g := NewGenerator(&stubChain{out: &wfmodel.PostGenerateOutput{Text: "  "}}, nil, "")
	_, err := g.Generate(context.Background(), req())
	require.ErrorIs(t, err, ErrGenerationFailure)
}

func TestGeneratorStream(t *testing.T) {
	g := NewGenerator(&stubChain{out: &wfmodel.PostGenerateOutput{Text: "chunk"}}, nil, "")
	reader, err := g.Stream(context.Background(), req())
	require.NoError(t, err)
	defer reader.Close()

	msg, err := reader.Recv()
	require.NoError(t, err)
	require.Equal(t, "chunk", msg.Content)

	_, err = NewGenerator(&stubChain{err: errors.New("boom")}, nil, "").Stream(context.Background(), req())
	require.ErrorIs(t, err, ErrGenerationFailure)
}

func TestGeneratorFinishStreamCleansFences(t *testing.T) {
	g := NewGenerator(&stubChain{}, nil, "")
	r := req()

	before := testutil.ToFloat64(metrics.PostGenerationTotal.WithLabelValues(string(r.Length), string(r.Language), "success"))
	post, err := g.FinishStream(context.Background(), r, "```\nHello world\n```")
	require.NoError(t, err)
	require.Equal(t, "Hello world", post.Text)
	after := testutil.ToFloat64(metrics.PostGenerationTotal.WithLabelValues(string(r.Length), string(r.Language), "success"))
	require.Equal(t, before+1, after)

	_, err = g.FinishStream(context.Background(), r, "```\n```")
	require.ErrorIs(t, err, ErrGenerationFailure)
}
