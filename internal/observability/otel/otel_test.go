package otel

import (
	"context"
	"errors"
	"testing"

	"github.com/patuh/patuh/internal/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "disabled is always valid",
			cfg:     Config{Enabled: false, Protocol: "invalid", SampleRatio: -1},
			wantErr: false,
		},
		{
			name:    "default enabled",
			cfg:     func() Config { c := DefaultConfig(); c.Enabled = true; return c }(),
			wantErr: false,
		},
		{
			name:    "valid otlpgrpc",
			cfg:     Config{Enabled: true, Protocol: ProtocolGRPC, SampleRatio: 1.0, ServiceName: "patuh"},
			wantErr: false,
		},
		{
			name:    "invalid protocol",
			cfg:     Config{Enabled: true, Protocol: "zipkin", SampleRatio: 1.0, ServiceName: "patuh"},
			wantErr: true,
		},
		{
			name:    "sample ratio above 1",
			cfg:     Config{Enabled: true, Protocol: ProtocolHTTP, SampleRatio: 1.5, ServiceName: "patuh"},
			wantErr: true,
		},
		{
			name:    "missing service name",
			cfg:     Config{Enabled: true, Protocol: ProtocolHTTP, SampleRatio: 0.5},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	if got := resolveEndpoint(Config{Protocol: ProtocolGRPC}); got != "localhost:4317" {
		t.Errorf("grpc default = %q", got)
	}
	if got := resolveEndpoint(Config{Protocol: ProtocolHTTP}); got != "http://localhost:4318" {
		t.Errorf("http default = %q", got)
	}
	if got := resolveEndpoint(Config{Endpoint: "collector:4318"}); got != "collector:4318" {
		t.Errorf("explicit endpoint = %q", got)
	}

	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://otel.internal:4318")
	if got := resolveEndpoint(Config{Protocol: ProtocolHTTP}); got != "http://otel.internal:4318" {
		t.Errorf("env endpoint = %q", got)
	}
}

func TestStartCommand_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	ctx := observability.WithOpID(context.Background())
	ctx = WithHandle(ctx, InitWithProvider(tp))

	_, finish := StartCommand(ctx, "validate", attribute.String("patuh.validator", "citation"))
	finish(nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Name() != "patuh.validate" {
		t.Errorf("span name = %q, want patuh.validate", s.Name())
	}
	if s.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", s.Status().Code)
	}

	want := map[string]string{
		"patuh.command":   "validate",
		"patuh.validator": "citation",
		"patuh.op_id":     observability.OpID(ctx),
	}
	for _, attr := range s.Attributes() {
		if v, ok := want[string(attr.Key)]; ok {
			if attr.Value.AsString() != v {
				t.Errorf("%s = %q, want %q", attr.Key, attr.Value.AsString(), v)
			}
			delete(want, string(attr.Key))
		}
	}
	for k := range want {
		t.Errorf("missing attribute: %s", k)
	}
}

func TestStartCommand_RecordsError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	ctx := WithHandle(context.Background(), InitWithProvider(tp))

	_, finish := StartCommand(ctx, "check")
	finish(errors.New("gate failed"))

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("span status = %v, want Error", spans[0].Status().Code)
	}
	found := false
	for _, e := range spans[0].Events() {
		if e.Name == "exception" {
			found = true
		}
	}
	if !found {
		t.Error("expected error event to be recorded")
	}
}

func TestStartCommand_NoHandle(t *testing.T) {
	ctx := context.Background()
	got, finish := StartCommand(ctx, "footer")
	if got != ctx {
		t.Error("context should be unchanged without a handle")
	}
	finish(errors.New("ignored"))
}

func TestContextRoundtrip(t *testing.T) {
	ctx := context.Background()
	if h := From(ctx); h != nil {
		t.Error("expected nil handle from empty context")
	}

	handle := &Handle{}
	ctx = WithHandle(ctx, handle)
	if got := From(ctx); got != handle {
		t.Error("expected to retrieve the same handle from context")
	}
}
