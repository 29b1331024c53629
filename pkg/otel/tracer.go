package otel

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	provider   *sdktrace.TracerProvider
	providerMu sync.Mutex
)

// collector describes where spans are exported, derived from the endpoint URL
// scheme: grpc/grpcs select OTLP over gRPC, http/https OTLP over HTTP.
type collector struct {
	grpc     bool
	endpoint string
	insecure bool
}

func parseEndpoint(raw string) (collector, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return collector{}, fmt.Errorf("invalid tracing endpoint %q", raw)
	}

	switch u.Scheme {
	case "grpc":
		return collector{grpc: true, endpoint: u.Host, insecure: true}, nil
	case "grpcs":
		return collector{grpc: true, endpoint: u.Host}, nil
	case "http":
		return collector{endpoint: raw, insecure: true}, nil
	case "https":
		return collector{endpoint: raw}, nil
	default:
		return collector{}, fmt.Errorf("unsupported tracing endpoint scheme %q", u.Scheme)
	}
}

// InitTracer installs W3C propagators and, when export is enabled, a batching
// tracer provider for the configured collector. Propagators are installed even
// with export off.
func InitTracer(ctx context.Context, cfg Config) (trace.Tracer, error) {
	providerMu.Lock()
	defer providerMu.Unlock()

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !cfg.Enabled || cfg.EndpointURL == "" {
		tp := noop.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return tp.Tracer(cfg.ServiceName), nil
	}

	target, err := parseEndpoint(cfg.EndpointURL)
	if err != nil {
		return nil, err
	}

	exporter, err := newExporter(ctx, target)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(cfg.resourceAttributes()...))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler(cfg.SampleRatio))),
	)
	otel.SetTracerProvider(tp)
	provider = tp

	return tp.Tracer(cfg.ServiceName), nil
}

func sampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio <= 0:
		return sdktrace.NeverSample()
	case ratio >= 1.0:
		return sdktrace.AlwaysSample()
	default:
		return sdktrace.TraceIDRatioBased(ratio)
	}
}

func newExporter(ctx context.Context, c collector) (sdktrace.SpanExporter, error) {
	if c.grpc {
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(c.endpoint)}
		if c.insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exporter, err := otlptracegrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP gRPC exporter: %w", err)
		}
		return exporter, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(c.endpoint))
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP HTTP exporter: %w", err)
	}
	return exporter, nil
}

// Shutdown flushes pending spans. It is a no-op when export was never enabled.
func Shutdown(ctx context.Context) error {
	providerMu.Lock()
	defer providerMu.Unlock()

	if provider == nil {
		return nil
	}
	if err := provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown tracer provider: %w", err)
	}
	provider = nil
	return nil
}
