package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewProvider_None(t *testing.T) {
	for _, exporter := range []string{"", "none"} {
		p, err := NewProvider(context.Background(), Config{Exporter: exporter})
		require.NoError(t, err)
		require.False(t, p.Enabled())

		_, span := p.Tracer().Start(context.Background(), "noop-span")
		span.End()
		require.NoError(t, p.Shutdown(context.Background()))
	}
}

func TestNewProvider_StdoutWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewProvider(context.Background(), Config{Exporter: "stdout", Writer: &buf, ServiceName: "symposium-test"})
	require.NoError(t, err)
	require.True(t, p.Enabled())

	_, span := p.Tracer().Start(context.Background(), "cart.commit")
	span.End()
	require.NoError(t, p.Shutdown(context.Background()))

	require.Contains(t, buf.String(), "cart.commit")
}

func TestNewProvider_UnknownExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Exporter: "zipkin"})
	require.Error(t, err)
}
