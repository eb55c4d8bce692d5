package tracing

import (
	"context"
	"strings"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitTracerDisabled(t *testing.T) {
	t.Setenv("TRACING_ENABLED", "false")
	tp, tracer, err := InitTracer(context.Background(), "swapscout")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tp == nil || tracer == nil {
		t.Fatal("expected tracer provider")
	}
}

func TestInitTracerExportsToConfiguredEndpoint(t *testing.T) {
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")

	orig := newTraceExporter
	defer func() { newTraceExporter = orig }()

	stub := &stubExporter{}
	newTraceExporter = func(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
		stub.endpoint = endpoint
		return stub, nil
	}

	tp, tracer, err := InitTracer(context.Background(), "swapscout")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, span := tracer.Start(context.Background(), "probe")
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := tp.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
	if stub.endpoint != "collector:4317" {
		t.Fatalf("expected endpoint to be propagated, got %s", stub.endpoint)
	}
	if stub.spans != 1 {
		t.Fatalf("expected 1 exported span, got %d", stub.spans)
	}
}

func TestSamplerFromEnv(t *testing.T) {
	tests := map[string]string{
		"":     "AlwaysOnSampler",
		"junk": "AlwaysOnSampler",
		"1":    "AlwaysOnSampler",
		"0":    "AlwaysOffSampler",
		"0.25": "TraceIDRatioBased{0.25}",
	}
	for raw, want := range tests {
		t.Setenv("TRACING_SAMPLE_RATIO", raw)
		if got := samplerFromEnv().Description(); !strings.HasPrefix(got, "ParentBased{root:"+want) {
			t.Fatalf("ratio %q: expected sampler %s, got %s", raw, want, got)
		}
	}
}

type stubExporter struct {
	endpoint string
	spans    int
}

func (s *stubExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	s.spans += len(spans)
	return nil
}

func (s *stubExporter) Shutdown(ctx context.Context) error {
	return nil
}
