package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func fieldMap(entry observer.LoggedEntry) map[string]string {
	out := make(map[string]string)
	for _, f := range entry.Context {
		out[f.Key] = f.String
	}
	return out
}

func TestContextValues(t *testing.T) {
	ctx := WithUsername(WithRequestID(context.Background(), "req-1"), "admin")
	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "admin", GetUsername(ctx))

	empty := context.Background()
	assert.Empty(t, GetRequestID(empty))
	assert.Empty(t, GetUsername(empty))
	assert.Empty(t, GetTraceID(empty))
}

func TestFromContext(t *testing.T) {
	t.Run("returns the stored logger", func(t *testing.T) {
		log := zap.NewExample()
		assert.Same(t, log, FromContext(WithContext(context.Background(), log)))
	})

	t.Run("returns a no-op logger when missing", func(t *testing.T) {
		assert.NotPanics(t, func() { FromContext(context.Background()).Info("ignored") })
	})
}

func TestContextLogger(t *testing.T) {
	t.Run("enriches entries with context fields", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		ctx := WithContext(context.Background(), zap.New(core))
		ctx = WithUsername(WithRequestID(ctx, "req-9"), "jdoe")

		L(ctx).With(zap.String("calculation", "12")).Info("saved")

		entries := recorded.All()
		if assert.Len(t, entries, 1) {
			fields := fieldMap(entries[0])
			assert.Equal(t, "req-9", fields["request_id"])
			assert.Equal(t, "jdoe", fields["username"])
			assert.Equal(t, "12", fields["calculation"])
		}
	})

	t.Run("adds trace identifiers from the span context", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID: trace.TraceID{0x01},
			SpanID:  trace.SpanID{0x02},
		})
		ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

		WithLogger(ctx, zap.New(core)).Warn("traced")

		fields := fieldMap(recorded.All()[0])
		assert.Equal(t, spanCtx.TraceID().String(), fields["trace_id"])
		assert.Equal(t, spanCtx.SpanID().String(), fields["span_id"])
		assert.Equal(t, spanCtx.TraceID().String(), GetTraceID(ctx))
	})

	t.Run("nil logger does not panic", func(t *testing.T) {
		assert.NotPanics(t, func() { WithLogger(context.Background(), nil).Error("nothing") })
	})
}
