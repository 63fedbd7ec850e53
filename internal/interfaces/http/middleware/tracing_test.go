package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupTestTracer sets up a test tracer provider and returns the span recorder.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prevTP := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
		otel.SetTracerProvider(prevTP)
	})

	return sr
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracing_Disabled(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(Tracing(TracingConfig{ServiceName: "test", Enabled: false}))
	router.GET("/test", func(c *gin.Context) {
		assert.False(t, trace.SpanFromContext(c.Request.Context()).SpanContext().IsValid())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracing_RecordsRouteSpan(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(RequestID(), Actor(), Tracing(TracingConfig{ServiceName: "sales-engine", Enabled: true}), SpanAttributes())
	router.GET("/sales/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/sales/abc", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	req.Header.Set(HeaderUserID, "actor-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Contains(t, span.Name(), "/sales/:id")
	assert.Equal(t, trace.SpanKindServer, span.SpanKind())

	v, ok := attrValue(span.Attributes(), "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-1", v.AsString())

	v, ok = attrValue(span.Attributes(), "actor_id")
	require.True(t, ok)
	assert.Equal(t, "actor-1", v.AsString())

	v, ok = attrValue(span.Attributes(), "http.status_code")
	require.True(t, ok)
	assert.Equal(t, int64(http.StatusOK), v.AsInt64())
}

func TestSpanAttributes_MarksServerErrors(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(Tracing(TracingConfig{ServiceName: "sales-engine", Enabled: true}), SpanAttributes())
	router.GET("/boom", func(c *gin.Context) {
		_ = c.Error(assert.AnError)
		c.Status(http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	_, ok := attrValue(spans[0].Attributes(), "gin.errors")
	assert.True(t, ok)
}

func TestSpanAttributes_NoActiveSpan(t *testing.T) {
	router := gin.New()
	router.Use(SpanAttributes())
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusAccepted) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusAccepted, w.Code)
}
