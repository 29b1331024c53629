package tracer

import (
	"context"
	"sync"

	"github.com/astro-web3/recipebox/pkg/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	defaultTracer trace.Tracer
	initOnce      sync.Once
	errInit       error
)

// InitTracer sets up the process tracer once; later calls return the first result.
func InitTracer(cfg otel.Config) error {
	initOnce.Do(func() {
		t, err := otel.InitTracer(context.Background(), cfg)
		if err != nil {
			errInit = err
			return
		}

		defaultTracer = t
	})

	return errInit
}

func Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if defaultTracer == nil {
		return noop.NewTracerProvider().Tracer("noop").Start(ctx, spanName, opts...)
	}

	return defaultTracer.Start(ctx, spanName, opts...)
}
