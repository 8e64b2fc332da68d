package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starterkit/backend/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := middleware.RequestIDMiddleware(
		LoggerMiddleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		})),
	)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login?x=1", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "/api/auth/login", fields["path"])
	assert.Equal(t, "x=1", fields["query"])
	assert.EqualValues(t, http.StatusCreated, fields["status"])
}
