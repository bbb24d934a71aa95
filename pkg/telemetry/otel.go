package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// StdoutEndpoint selects the pretty-printing stdout exporter instead of OTLP.
const StdoutEndpoint = "stdout"

const instrumentationName = "github.com/itsneelabh/mymarket"

// OTEL implements Telemetry on top of the OpenTelemetry SDK.
type OTEL struct {
	provider    *sdktrace.TracerProvider
	tracer      trace.Tracer
	meter       metric.Meter
	serviceName string

	mu       sync.Mutex
	counters map[string]metric.Float64Counter
}

type otelOptions struct {
	processors    []sdktrace.SpanProcessor
	meterProvider metric.MeterProvider
	stdout        io.Writer
}

// OTELOption configures NewOTEL.
type OTELOption func(*otelOptions)

// WithSpanProcessor registers an extra span processor, e.g. a tracetest.SpanRecorder.
func WithSpanProcessor(sp sdktrace.SpanProcessor) OTELOption {
	return func(o *otelOptions) {
		o.processors = append(o.processors, sp)
	}
}

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) OTELOption {
	return func(o *otelOptions) {
		o.meterProvider = mp
	}
}

// WithStdoutWriter redirects the stdout exporter.
func WithStdoutWriter(w io.Writer) OTELOption {
	return func(o *otelOptions) {
		o.stdout = w
	}
}

// NewOTEL builds a tracer provider for serviceName. An empty endpoint records
// spans without exporting them, StdoutEndpoint prints them, anything else is
// treated as an OTLP gRPC collector address.
func NewOTEL(ctx context.Context, serviceName, endpoint string, opts ...OTELOption) (*OTEL, error) {
	o := &otelOptions{stdout: os.Stdout}
	for _, opt := range opts {
		opt(o)
	}

	if serviceName == "" {
		serviceName = os.Getenv("OTEL_SERVICE_NAME")
		if serviceName == "" {
			serviceName = "mymarket"
		}
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
		semconv.ServiceVersionKey.String(getServiceVersion()),
	)

	providerOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	switch endpoint {
	case "":
	case StdoutEndpoint:
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(o.stdout), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		providerOpts = append(providerOpts, sdktrace.WithBatcher(exporter))
	default:
		exporter, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		providerOpts = append(providerOpts, sdktrace.WithBatcher(exporter))
	}
	for _, sp := range o.processors {
		providerOpts = append(providerOpts, sdktrace.WithSpanProcessor(sp))
	}

	provider := sdktrace.NewTracerProvider(providerOpts...)

	mp := o.meterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	return &OTEL{
		provider:    provider,
		tracer:      provider.Tracer(instrumentationName),
		meter:       mp.Meter(instrumentationName),
		serviceName: serviceName,
		counters:    make(map[string]metric.Float64Counter),
	}, nil
}

// StartSpan starts a span named name as a child of any span in ctx.
func (o *OTEL) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	ctx, span := o.tracer.Start(ctx, name)
	if id := GetCorrelationID(ctx); id != "" {
		span.SetAttributes(attribute.String("correlation.id", id))
	}
	return ctx, &otelSpan{span: span}
}

// RecordMetric adds value to the counter called name.
func (o *OTEL) RecordMetric(name string, value float64, labels map[string]string) {
	counter, err := o.counter(name)
	if err != nil {
		return
	}

	attrs := make([]attribute.KeyValue, 0, len(labels)+1)
	attrs = append(attrs, attribute.String("service", o.serviceName))
	for k, v := range labels {
		attrs = append(attrs, attribute.String(k, v))
	}
	counter.Add(context.Background(), value, metric.WithAttributes(attrs...))
}

func (o *OTEL) counter(name string) (metric.Float64Counter, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if c, ok := o.counters[name]; ok {
		return c, nil
	}
	c, err := o.meter.Float64Counter(name)
	if err != nil {
		return nil, err
	}
	o.counters[name] = c
	return c, nil
}

// Shutdown flushes pending spans and stops the provider.
func (o *OTEL) Shutdown(ctx context.Context) error {
	if o.provider != nil {
		return o.provider.Shutdown(ctx)
	}
	return nil
}

type otelSpan struct {
	span trace.Span
}

func (s *otelSpan) End() { s.span.End() }

func (s *otelSpan) SetAttribute(key string, value interface{}) {
	switch v := value.(type) {
	case string:
		s.span.SetAttributes(attribute.String(key, v))
	case int:
		s.span.SetAttributes(attribute.Int(key, v))
	case int64:
		s.span.SetAttributes(attribute.Int64(key, v))
	case float64:
		s.span.SetAttributes(attribute.Float64(key, v))
	case bool:
		s.span.SetAttributes(attribute.Bool(key, v))
	default:
		s.span.SetAttributes(attribute.String(key, fmt.Sprint(v)))
	}
}

func (s *otelSpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// getServiceVersion gets the service version from environment or default
func getServiceVersion() string {
	if version := os.Getenv("OTEL_SERVICE_VERSION"); version != "" {
		return version
	}
	return "1.0.0"
}
