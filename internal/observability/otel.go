// Package observability wires OpenTelemetry tracing for the API. Tracing
// is off unless OTEL_ENABLED is set; without an OTLP endpoint spans are
// pretty-printed to stdout so local runs still show them.
package observability

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"

	"github.com/estuda-app/estuda-backend/internal/logger"
)

type OtelConfig struct {
	ServiceName string
	Environment string
	Version     string
}

// exportSettings collects every OTEL_* knob in one place so the exporter
// construction below stays declarative.
type exportSettings struct {
	enabled     bool
	endpoint    string
	insecure    bool
	headers     map[string]string
	sampleRatio float64
}

// InitOTel installs the global tracer provider and propagators. It is
// called once from app bootstrap; the returned shutdown func is nil when
// tracing is disabled. Failures degrade to a warning, never a crash: the
// API must come up with or without a collector.
func InitOTel(ctx context.Context, log *logger.Logger, cfg OtelConfig) func(context.Context) error {
	settings := readExportSettings()
	if !settings.enabled {
		return nil
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "estuda-backend"
	}
	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceNameKey.String(serviceName),
		semconv.ServiceVersionKey.String(strings.TrimSpace(cfg.Version)),
		attribute.String("deployment.environment", strings.TrimSpace(cfg.Environment)),
	))
	if err != nil && log != nil {
		log.Warn("Tracing resource init failed, continuing with defaults", "error", err)
	}

	sampler := sdktrace.ParentBased(sdktrace.TraceIDRatioBased(settings.sampleRatio))
	providerOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sampler),
		sdktrace.WithResource(res),
	}
	if exporter := settings.buildExporter(ctx, log); exporter != nil {
		providerOpts = append(providerOpts, sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)))
	}
	tp := sdktrace.NewTracerProvider(providerOpts...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	if log != nil {
		log.Info("Tracing initialized", "service", serviceName, "endpoint", settings.endpoint, "sample_ratio", settings.sampleRatio)
	}
	return tp.Shutdown
}

func (s exportSettings) buildExporter(ctx context.Context, log *logger.Logger) sdktrace.SpanExporter {
	if s.endpoint == "" {
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			if log != nil {
				log.Warn("Stdout trace exporter init failed, spans will be dropped", "error", err)
			}
			return nil
		}
		if log != nil {
			log.Warn("No OTLP endpoint configured, exporting traces to stdout")
		}
		return exporter
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(s.endpoint)}
	if s.insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(s.headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(s.headers))
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		if log != nil {
			log.Warn("OTLP trace exporter init failed, spans will be dropped", "error", err)
		}
		return nil
	}
	return exporter
}

func readExportSettings() exportSettings {
	return exportSettings{
		enabled:     envFlag("OTEL_ENABLED"),
		endpoint:    envString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		insecure:    envFlag("OTEL_EXPORTER_OTLP_INSECURE"),
		headers:     envHeaders("OTEL_EXPORTER_OTLP_HEADERS"),
		sampleRatio: envRatio("OTEL_SAMPLER_RATIO", 0.1),
	}
}

func envString(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envFlag(key string) bool {
	switch strings.ToLower(envString(key)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func envRatio(key string, fallback float64) float64 {
	raw := envString(key)
	if raw == "" {
		return fallback
	}
	ratio, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

// envHeaders parses the W3C-style "key1=val1,key2=val2" header list.
func envHeaders(key string) map[string]string {
	raw := envString(key)
	if raw == "" {
		return nil
	}
	headers := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if !ok || name == "" || value == "" {
			continue
		}
		headers[name] = value
	}
	if len(headers) == 0 {
		return nil
	}
	return headers
}
