package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func spanContext(t *testing.T) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("0102030405060708")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func fieldMap(entry observer.LoggedEntry) map[string]interface{} {
	return entry.ContextMap()
}

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	l := zap.NewExample()
	ctx := WithContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
}

func TestRequestAndUserIDs(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx, l := WithRequestID(context.Background(), base, "req-1")
	ctx, l = WithUserID(ctx, l, "clerk-7")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "clerk-7", GetUserID(ctx))
	assert.Empty(t, GetRequestID(context.Background()))
	assert.Empty(t, GetUserID(context.Background()))

	l.Info("enriched")
	require.Equal(t, 1, recorded.Len())
	fields := fieldMap(recorded.All()[0])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "clerk-7", fields["user_id"])
}

func TestTraceIDs(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
	assert.Empty(t, GetSpanID(context.Background()))

	ctx := spanContext(t)
	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", GetTraceID(ctx))
	assert.Equal(t, "0102030405060708", GetSpanID(ctx))
}

func TestWithTraceContext(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	assert.Same(t, base, WithTraceContext(context.Background(), base))

	WithTraceContext(spanContext(t), base).Info("traced")
	fields := fieldMap(recorded.All()[0])
	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", fields["trace_id"])
	assert.Equal(t, "0102030405060708", fields["span_id"])
}

func TestContextLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	ctx := WithContext(spanContext(t), base)
	ctx = context.WithValue(ctx, RequestIDKey, "req-9")
	ctx = context.WithValue(ctx, UserIDKey, "clerk-1")

	L(ctx).With(zap.String("reference", "SALE-000001")).Info("Sale recorded")
	L(ctx).Debug("debug")
	L(ctx).Warn("warn")
	L(ctx).Error("error")

	entries := recorded.All()
	require.Len(t, entries, 4)

	fields := fieldMap(entries[0])
	assert.Equal(t, "SALE-000001", fields["reference"])
	assert.Equal(t, "req-9", fields["request_id"])
	assert.Equal(t, "clerk-1", fields["user_id"])
	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", fields["trace_id"])
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestContextLogger_WithLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := context.WithValue(context.Background(), UserIDKey, "clerk-2")

	WithLogger(ctx, zap.New(core)).Zap().Info("explicit")
	WithLogger(ctx, zap.New(core)).Sugar().Infow("sugared", "line", 2)

	require.Equal(t, 2, recorded.Len())
	assert.Equal(t, "clerk-2", fieldMap(recorded.All()[0])["user_id"])
	assert.EqualValues(t, 2, fieldMap(recorded.All()[1])["line"])
}

func TestContextLogger_NilLogger(t *testing.T) {
	cl := &ContextLogger{ctx: context.Background()}
	assert.NotPanics(t, func() { cl.Info("dropped") })
}
