// pkg/middleware/tracing.go
package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/zap"

	"stapi/pkg/config"
)

var (
	tracingOnce  sync.Once
	instrumented bool
)

// Tracing wraps handlers with otelhttp spans when an OTLP endpoint is
// configured. Without one it is a pass-through; the tracer provider is set up
// once per process.
func Tracing(cfg config.Config, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	tracingOnce.Do(func() {
		if cfg.OTLPEndpoint == "" {
			return
		}
		opts := []otlptracehttp.Option{}
		if strings.HasPrefix(strings.ToLower(cfg.OTLPEndpoint), "http://") {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exp, err := otlptracehttp.New(context.Background(), opts...)
		if err != nil {
			log.Warnw("otlp exporter init failed, tracing disabled", "err", err)
			return
		}
		res, err := resource.New(context.Background(),
			resource.WithAttributes(semconv.ServiceName(cfg.ServiceID)))
		if err != nil {
			log.Warnw("otel resource init failed, tracing disabled", "err", err)
			return
		}
		otel.SetTracerProvider(trace.NewTracerProvider(
			trace.WithBatcher(exp), trace.WithResource(res)))
		instrumented = true
	})
	if !instrumented {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler { return otelhttp.NewHandler(next, "http") }
}
