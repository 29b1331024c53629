package http

import (
	"context"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// injectTracingHeaders writes the trace context of ctx onto the outgoing request.
func injectTracingHeaders(ctx context.Context, request *resty.Request) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(request.Header))
}
