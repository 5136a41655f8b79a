package instrumentation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// recordSpans installs a recording tracer provider for the duration of the test.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func spanAttrs(span sdktrace.ReadOnlySpan) map[string]any {
	out := make(map[string]any)
	for _, kv := range span.Attributes() {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}
	return out
}

func TestSpanAttributeBuilder(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithCommand("get_sheet_data").
		WithService("sheets").
		WithResource("sheet123").
		WithReadOnly(true).
		Build()

	require.Len(t, attrs, 4)
	got := make(map[string]any)
	for _, kv := range attrs {
		got[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, "get_sheet_data", got[SpanAttrCommand])
	assert.Equal(t, "sheets", got[SpanAttrService])
	assert.Equal(t, "sheet123", got[SpanAttrResourceID])
	assert.Equal(t, true, got[SpanAttrReadOnly])
}

func TestSpanAttributeBuilder_EmptyValues(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithCommand("list_files").
		WithService("").
		WithResource("").
		Build()

	assert.Len(t, attrs, 1)
}

func TestStartCommandSpan(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartCommandSpan(context.Background(), "create_document", attribute.String(SpanAttrService, "docs"))
	SetSpanSuccess(span)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "command.create_document", ended[0].Name())
	assert.Equal(t, trace.SpanKindServer, ended[0].SpanKind())
	assert.Equal(t, codes.Ok, ended[0].Status().Code)

	attrs := spanAttrs(ended[0])
	assert.Equal(t, "create_document", attrs[SpanAttrCommand])
	assert.Equal(t, "docs", attrs[SpanAttrService])
}

func TestStartGoogleAPISpan_ChildOfCommand(t *testing.T) {
	recorder := recordSpans(t)

	ctx, parent := StartCommandSpan(context.Background(), "list_sheets")
	_, child := StartGoogleAPISpan(ctx, "sheets", "list_sheets", 2)
	child.End()
	parent.End()

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "google.sheets.list_sheets", ended[0].Name())
	assert.Equal(t, trace.SpanKindClient, ended[0].SpanKind())
	assert.Equal(t, ended[1].SpanContext().SpanID(), ended[0].Parent().SpanID())
	assert.Equal(t, int64(2), spanAttrs(ended[0])[SpanAttrAttempt])
}

func TestSetSpanError(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartCommandSpan(context.Background(), "list_files")
	SetSpanError(span, errors.New("boom"))
	span.End()

	_, ok := StartCommandSpan(context.Background(), "list_sheets")
	SetSpanError(ok, nil)
	ok.End()

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "boom", ended[0].Status().Description)
	assert.Len(t, ended[0].Events(), 1)
	assert.Equal(t, codes.Unset, ended[1].Status().Code)
}

func TestAddSpanEvent(t *testing.T) {
	recorder := recordSpans(t)

	_, span := StartCommandSpan(context.Background(), "list_files")
	AddSpanEvent(span, "retry", attribute.Int(SpanAttrAttempt, 1))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "retry", ended[0].Events()[0].Name)
}

func TestGetTraceID(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
	assert.Empty(t, GetSpanID(context.Background()))

	recordSpans(t)
	ctx, span := StartCommandSpan(context.Background(), "list_files")
	defer span.End()

	assert.Len(t, GetTraceID(ctx), 32)
	assert.Len(t, GetSpanID(ctx), 16)
}
