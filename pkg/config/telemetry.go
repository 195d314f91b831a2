package config

import (
	"context"
	"errors"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/tilerace/race-engine/log"
	"github.com/tilerace/race-engine/version"
)

const StdoutEndpoint = "stdout"

// Telemetry holds the installed providers.
type Telemetry struct {
	tp *trace.TracerProvider
	mp *metric.MeterProvider
}

// SetupTelemetry installs global trace and meter providers exporting to
// TelemetryEndpoint via OTLP/gRPC, or to stderr for "stdout".
func SetupTelemetry(ctx context.Context) (*Telemetry, error) {
	res, err := resource.Merge(resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName("rce"),
			semconv.ServiceVersion(version.Version)))
	if err != nil {
		return nil, err
	}

	var spanExporter trace.SpanExporter
	var metricExporter metric.Exporter
	if TelemetryEndpoint == StdoutEndpoint {
		if spanExporter, err = stdouttrace.New(stdouttrace.WithWriter(os.Stderr)); err != nil {
			return nil, err
		}
		if metricExporter, err = stdoutmetric.New(stdoutmetric.WithWriter(os.Stderr)); err != nil {
			return nil, err
		}
	} else {
		if spanExporter, err = otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(TelemetryEndpoint),
			otlptracegrpc.WithInsecure()); err != nil {
			return nil, err
		}
		if metricExporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(TelemetryEndpoint),
			otlpmetricgrpc.WithInsecure()); err != nil {
			return nil, err
		}
	}

	ret := &Telemetry{
		tp: trace.NewTracerProvider(
			trace.WithBatcher(spanExporter),
			trace.WithResource(res)),
		mp: metric.NewMeterProvider(
			metric.WithReader(metric.NewPeriodicReader(metricExporter,
				metric.WithInterval(15*time.Second))),
			metric.WithResource(res)),
	}
	otel.SetTracerProvider(ret.tp)
	otel.SetMeterProvider(ret.mp)
	return ret, nil
}

// Shutdown flushes and stops the providers.
func (t *Telemetry) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := errors.Join(t.tp.Shutdown(ctx), t.mp.Shutdown(ctx)); err != nil {
		log.Warn("telemetry shutdown", log.ErrorField(err))
	}
}
