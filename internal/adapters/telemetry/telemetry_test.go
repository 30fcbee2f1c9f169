package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/modcache/internal/adapters/telemetry"
	"go.trai.ch/modcache/internal/core/ports"
	"go.trai.ch/modcache/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestInterfaceSatisfaction(_ *testing.T) {
	var _ ports.Tracer = (*telemetry.OTelTracer)(nil)
	var _ ports.Span = (*telemetry.OTelSpan)(nil)
	var _ ports.Tracer = (*telemetry.NoOpTracer)(nil)
	var _ ports.Span = telemetry.NoOpSpan{}
}

func TestOTelTracer_Span(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tracer := telemetry.NewOTelTracer("test", sr)
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	_, span := tracer.Start(context.Background(), "resolve")
	span.SetAttribute("specifier", "react")
	span.SetAttribute("depth", 2)
	span.SetAttribute("mustMap", true)
	span.SetAttribute("kind", struct{ Name string }{"pkg"})
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "resolve", ended[0].Name())

	attrs := ended[0].Attributes()
	assert.Contains(t, attrs, attribute.String("specifier", "react"))
	assert.Contains(t, attrs, attribute.Int("depth", 2))
	assert.Contains(t, attrs, attribute.Bool("mustMap", true))
	assert.Contains(t, attrs, attribute.String("kind", "{pkg}"))
}

func TestOTelTracer_RecordError(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tracer := telemetry.NewOTelTracer("test", sr)

	_, span := tracer.Start(context.Background(), "load")
	span.RecordError(errors.New("outdated cache detected"))
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "outdated cache detected", ended[0].Status().Description)
	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "exception", ended[0].Events()[0].Name)
}

func TestOTelTracer_NestedSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tracer := telemetry.NewOTelTracer("test", sr)

	ctx, parent := tracer.Start(context.Background(), "verify")
	_, child := tracer.Start(ctx, "load")
	child.End()
	parent.End()

	ended := sr.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, ended[1].SpanContext().SpanID(), ended[0].Parent().SpanID())
}

func TestLogBridge(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)

	var got string
	log.EXPECT().Debug(gomock.Any()).Do(func(msg string) { got = msg })

	tracer := telemetry.NewOTelTracer("test", telemetry.NewLogBridge(log))
	_, span := tracer.Start(context.Background(), "resolve")
	span.SetAttribute("specifier", "./a.js")
	span.RecordError(errors.New("boom"))
	span.End()

	assert.Contains(t, got, "resolve specifier=./a.js (")
	assert.Contains(t, got, "error=boom")
}

func TestNoOpTracer(t *testing.T) {
	tracer := telemetry.NewNoOpTracer()
	ctx := context.Background()

	got, span := tracer.Start(ctx, "resolve")
	assert.Equal(t, ctx, got)

	span.SetAttribute("k", "v")
	span.RecordError(errors.New("ignored"))
	span.End()
}
