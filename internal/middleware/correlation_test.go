package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrelationID_GeneratesWhenMissing(t *testing.T) {
	var captured string
	handler := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetCorrelationID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.NotEmpty(t, captured)
	assert.Equal(t, captured, rec.Header().Get("X-Correlation-ID"))
}

func TestCorrelationID_PropagatesHeader(t *testing.T) {
	var captured string
	handler := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetCorrelationID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Correlation-ID", "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", captured)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Correlation-ID"))
}

func TestGetCorrelationID_Unknown(t *testing.T) {
	assert.Equal(t, "unknown", GetCorrelationID(t.Context()))
}

func TestWithCorrelationID(t *testing.T) {
	ctx := WithCorrelationID(t.Context(), "xyz")
	assert.Equal(t, "xyz", GetCorrelationID(ctx))
}
