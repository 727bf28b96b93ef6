package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// withRecorder installs an in-memory span recorder as the service tracer
func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	_, err := Init(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)
	setGlobal(&Telemetry{provider: tp, tracer: tp.Tracer(InstrumentationName)})
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		setGlobal(nil)
	})
	return rec
}

func TestInit_Disabled(t *testing.T) {
	tel, err := Init(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, tel.provider)
	assert.NoError(t, Shutdown(context.Background()))
}

func TestStartSpan_RecordError(t *testing.T) {
	rec := withRecorder(t)

	ctx, span := StartSpan(context.Background(), "service.register")
	RecordError(span, errors.New("boom"))
	span.End()

	assert.NotEmpty(t, GetTraceID(ctx))
	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "service.register", ended[0].Name())
	assert.Equal(t, "Error", ended[0].Status().Code.String())
}

func TestTracingMiddleware(t *testing.T) {
	rec := withRecorder(t)

	r := gin.New()
	r.Use(TracingMiddleware())
	r.GET("/api/v1/visitors/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/visitors/v-1", nil))

	assert.NotEmpty(t, w.Header().Get(TraceIDHeader))
	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "GET /api/v1/visitors/:id", ended[0].Name())
}

func TestInjectHeaders(t *testing.T) {
	withRecorder(t)
	ctx, span := StartSpan(context.Background(), "publish")
	defer span.End()

	headers := InjectHeaders(ctx)
	assert.Contains(t, headers, "traceparent")
}

func TestCounter(t *testing.T) {
	c, err := NewCounter(MetricOpts{Name: "test_total", Description: "test", Unit: "1"})
	require.NoError(t, err)
	c.Inc(context.Background())
	c.Add(context.Background(), 3)
}
