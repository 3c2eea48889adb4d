package observability

import (
	"context"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
)

type Observability struct {
	meterProvider   *metric.MeterProvider
	meter           otelmetric.Meter
	tracer          trace.Tracer
	triggerCounter  otelmetric.Int64Counter
	triggerDuration otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{tracer: otel.Tracer(serviceName)}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	triggerCounter, _ := meter.Int64Counter(
		"triggers.processed",
		otelmetric.WithDescription("Number of trigger events processed"),
	)

	triggerDuration, _ := meter.Float64Histogram(
		"triggers.duration",
		otelmetric.WithDescription("Trigger processing duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:   provider,
		meter:           meter,
		tracer:          otel.Tracer(serviceName),
		triggerCounter:  triggerCounter,
		triggerDuration: triggerDuration,
	}
}

// StartSpan begins a tracing span around one trigger event.
func (o *Observability) StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if o.tracer == nil {
		o.tracer = otel.Tracer("trigger-service")
	}
	return o.tracer.Start(ctx, name)
}

func (o *Observability) RecordTriggerProcessed(ctx context.Context, status string) {
	if o.triggerCounter != nil {
		o.triggerCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordTriggerDuration(ctx context.Context, millis float64, status string) {
	if o.triggerDuration != nil {
		o.triggerDuration.Record(ctx, millis, otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(context.Background()); err != nil {
			log.Printf("Failed to shutdown meter provider: %v", err)
		}
	}
}
