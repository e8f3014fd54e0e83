package tracer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitDisabledReturnsNoopShutdown(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	ctx, span := Start(context.Background(), "noop")
	defer span.End()
	require.Empty(t, TraceID(ctx))
	require.Empty(t, SpanID(ctx))
}

func TestInitRejectsUnknownExporter(t *testing.T) {
	_, err := Init(context.Background(), Config{Enabled: true, Exporter: "zipkin"})
	require.Error(t, err)
}

func TestSamplerBounds(t *testing.T) {
	require.Contains(t, sampler(1).Description(), "AlwaysOn")
	require.Contains(t, sampler(0).Description(), "AlwaysOff")
	require.Contains(t, sampler(0.5).Description(), "ParentBased")
}
