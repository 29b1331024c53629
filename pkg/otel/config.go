package otel

import (
	"os"

	"go.opentelemetry.io/otel/attribute"
)

type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// EndpointURL selects the exporter by scheme: grpc://, grpcs://, http:// or https://.
	EndpointURL string
	Enabled     bool
	SampleRatio float64
}

// DefaultConfig samples everything and tags spans with APP_ENV when set.
func DefaultConfig(serviceName string) Config {
	return Config{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    os.Getenv("APP_ENV"),
		SampleRatio:    1.0,
	}
}

func (c Config) resourceAttributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.ServiceVersion),
		attribute.String("service.namespace", "recipebox"),
	}
	if c.Environment != "" {
		attrs = append(attrs, attribute.String("deployment.environment", c.Environment))
	}
	return attrs
}
