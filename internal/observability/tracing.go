package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/patrickwarner/adslots/internal/models"
)

// ServiceVersion is reported on the tracing resource.
const ServiceVersion = "1.0.0"

// TracingOptions describes where spans go and how many are kept.
type TracingOptions struct {
	ServiceName string
	Environment string
	// Endpoint is the OTLP gRPC collector address (host:port).
	Endpoint   string
	SampleRate float64
}

// InitTracing installs a global tracer provider exporting over OTLP gRPC and
// the W3C propagators. The returned function flushes pending spans.
func InitTracing(ctx context.Context, logger *zap.Logger, opts TracingOptions) (func(context.Context) error, error) {
	res := resource.NewWithAttributes(
		"",
		semconv.ServiceName(opts.ServiceName),
		semconv.ServiceVersion(ServiceVersion),
		semconv.DeploymentEnvironment(opts.Environment),
	)

	exporter, err := otlptrace.New(ctx,
		otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(opts.Endpoint),
			otlptracegrpc.WithInsecure(),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(opts.SampleRate)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("tracing initialized",
		zap.String("endpoint", opts.Endpoint),
		zap.Float64("sample_rate", opts.SampleRate),
	)
	return tp.Shutdown, nil
}

// newSampler honours the caller's sampling decision and applies rate to
// root spans only, so a page request and its resolver span stay together.
func newSampler(rate float64) sdktrace.Sampler {
	var root sdktrace.Sampler
	switch {
	case rate >= 1:
		root = sdktrace.AlwaysSample()
	case rate <= 0:
		root = sdktrace.NeverSample()
	default:
		root = sdktrace.TraceIDRatioBased(rate)
	}
	return sdktrace.ParentBased(root)
}

// Tracer returns a tracer for the given component name
func Tracer(componentName string) trace.Tracer {
	return otel.Tracer(componentName)
}

// ResolutionAttributes summarises a page resolution for a span: how many
// creatives were placed and which zones fell back.
func ResolutionAttributes(res models.Resolution) []attribute.KeyValue {
	var empty []string
	for _, p := range models.Placements {
		if len(res.Zone(p)) == 0 {
			empty = append(empty, string(p))
		}
	}
	return []attribute.KeyValue{
		attribute.String("page_key", res.PageKey),
		attribute.String("date", res.Date.String()),
		attribute.Int("ads.placed", res.Count()),
		attribute.StringSlice("zones.empty", empty),
	}
}
