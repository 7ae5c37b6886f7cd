package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"bedrock-query-gateway/internal/common/config"
)

func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func TestObservability_RecordGeneration(t *testing.T) {
	ctx := context.Background()
	reader := metric.NewManualReader()

	obs, err := NewWithReader("gateway-test", reader)
	require.NoError(t, err)
	defer obs.Shutdown(ctx)

	obs.RecordGeneration(ctx, 120*time.Millisecond, "ok")
	obs.RecordGeneration(ctx, 80*time.Millisecond, "ok")
	obs.RecordGeneration(ctx, 5*time.Millisecond, "error")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	calls, ok := findMetric(rm, "gateway.generation.calls")
	require.True(t, ok)
	sum, ok := calls.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	byStatus := map[string]int64{}
	for _, dp := range sum.DataPoints {
		status, _ := dp.Attributes.Value(attribute.Key("status"))
		byStatus[status.AsString()] = dp.Value
	}
	assert.Equal(t, int64(2), byStatus["ok"])
	assert.Equal(t, int64(1), byStatus["error"])

	_, ok = findMetric(rm, "gateway.generation.duration")
	assert.True(t, ok)
}

func TestObservability_NilIsSafe(t *testing.T) {
	var obs *Observability
	ctx := context.Background()

	assert.NotPanics(t, func() {
		obs.RecordGeneration(ctx, time.Second, "ok")
		spanCtx, span := obs.StartSpan(ctx, "knowledge-query.generate")
		span.End()
		assert.Equal(t, ctx, spanCtx)
		assert.NoError(t, obs.Shutdown(ctx))
	})
}

func TestObservability_StartSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := newTracerProvider("gateway-test", sdktrace.WithSpanProcessor(recorder))

	obs, err := NewWithReader("gateway-test", metric.NewManualReader())
	require.NoError(t, err)
	obs.WithTracerProvider(provider, "gateway-test")

	_, span := obs.StartSpan(context.Background(), "knowledge-query.generate",
		attribute.String("knowledgeBaseId", "KB1"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "knowledge-query.generate", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String("knowledgeBaseId", "KB1"))
}

func TestNewTracing_Disabled(t *testing.T) {
	tracing, err := NewTracing(config.TracingConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, tracing)
	assert.NoError(t, tracing.Shutdown(context.Background()))
	assert.Equal(t, otel.GetTracerProvider(), tracing.TracerProvider())
}

func TestTracing_TracerProvider(t *testing.T) {
	provider := newTracerProvider("gateway-test")
	tracing := &Tracing{provider: provider}

	assert.Same(t, provider, tracing.TracerProvider())
	assert.NoError(t, tracing.Shutdown(context.Background()))
}
