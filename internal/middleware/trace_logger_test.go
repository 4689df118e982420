package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithTraceLoggerAddsPageFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	router := mux.NewRouter()
	router.Use(WithTraceLogger(base))
	router.HandleFunc("/pages/{pageKey}/ads", func(w http.ResponseWriter, r *http.Request) {
		LoggerFromRequest(r, zap.NewNop()).Info("resolved")
	})

	req := httptest.NewRequest(http.MethodGet, "/pages/HOME/ads", nil)
	req.Header.Set(PageSessionHeader, "s-1")
	router.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "HOME", ctx["page_key"])
	assert.Equal(t, "s-1", ctx["page_session"])
	assert.NotContains(t, ctx, "trace_id")
}

func TestLoggerFromContextFallback(t *testing.T) {
	fallback := zap.NewNop()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	assert.Same(t, fallback, LoggerFromRequest(req, fallback))
}
