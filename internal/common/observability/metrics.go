package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
)

// Observability records generation-call telemetry. A nil *Observability is valid
// and records nothing.
type Observability struct {
	meterProvider      *metric.MeterProvider
	meter              otelmetric.Meter
	tracer             trace.Tracer
	generationCalls    otelmetric.Int64Counter
	generationDuration otelmetric.Float64Histogram
}

// New exports metrics through the Prometheus default registry, next to the
// collectors served on /metrics.
func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}
	return NewWithReader(serviceName, exporter)
}

// NewWithReader builds an Observability on an arbitrary metric reader.
func NewWithReader(serviceName string, reader metric.Reader) (*Observability, error) {
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	generationCalls, err := meter.Int64Counter(
		"gateway.generation.calls",
		otelmetric.WithDescription("Number of knowledge base generation calls"),
	)
	if err != nil {
		return nil, fmt.Errorf("create generation counter: %w", err)
	}

	generationDuration, err := meter.Float64Histogram(
		"gateway.generation.duration",
		otelmetric.WithDescription("Knowledge base generation call duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create generation histogram: %w", err)
	}

	return &Observability{
		meterProvider:      provider,
		meter:              meter,
		tracer:             otel.Tracer(serviceName),
		generationCalls:    generationCalls,
		generationDuration: generationDuration,
	}, nil
}

// WithTracerProvider replaces the tracer, which otherwise follows the global provider.
func (o *Observability) WithTracerProvider(tp trace.TracerProvider, name string) *Observability {
	if o == nil {
		return nil
	}
	o.tracer = tp.Tracer(name)
	return o
}

// StartSpan starts a span named name. It returns a non-recording span when o is nil.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if o == nil || o.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordGeneration(ctx context.Context, duration time.Duration, status string) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("status", status))
	if o.generationCalls != nil {
		o.generationCalls.Add(ctx, 1, attrs)
	}
	if o.generationDuration != nil {
		o.generationDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.meterProvider.Shutdown(ctx)
}
