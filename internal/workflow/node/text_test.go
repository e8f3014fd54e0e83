package node

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTruncateByRunes(t *testing.T) {
	require.Equal(t, "", TruncateByRunes("abc", 0))
	require.Equal(t, "abc", TruncateByRunes("abc", 5))
	require.Equal(t, "नम", TruncateByRunes("नमस्ते", 2))
}

func TestCleanPostText(t *testing.T) {
	require.Equal(t, "hello\nworld", CleanPostText("  hello\nworld \n"))
	require.Equal(t, "hello", CleanPostText("```text\nhello\n```"))
	require.Equal(t, "hello there", CleanPostText("```hello there```"))
	require.Equal(t, "", CleanPostText(" \n\t "))
}

func TestCountLines(t *testing.T) {
	require.Equal(t, 3, CountLines("one\n\ntwo\nthree\n"))
	require.Equal(t, 0, CountLines("   "))
}
