package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLLMCallDefaultsToUnknown(t *testing.T) {
	call := LLMCallFromContext(context.Background())
	require.Equal(t, "unknown", call.Workflow)
	require.Equal(t, "unknown", call.Provider)
}

func TestWithLLMCallKeepsEarlierFields(t *testing.T) {
	ctx := WithLLMCall(context.Background(), "post_generate", "")
	ctx = WithLLMCall(ctx, "", " groq ")

	call := LLMCallFromContext(ctx)
	require.Equal(t, "post_generate", call.Workflow)
	require.Equal(t, "groq", call.Provider)
}
