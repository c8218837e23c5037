package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	t.Run("attaches a request scoped logger to the context", func(t *testing.T) {
		t.Parallel()

		var captured *slog.Logger
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			captured = LoggerFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		handler := RequestLogger(slog.Default())(next)

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/rooms", nil))

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.NotNil(t, captured, "expected logger in request context")
	})

	t.Run("tolerates a nil base logger", func(t *testing.T) {
		t.Parallel()

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

		handler := RequestLogger(nil)(next)

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/members", nil))

		assert.Equal(t, http.StatusNoContent, recorder.Code)
	})
}

func TestRecoverer(t *testing.T) {
	t.Parallel()

	t.Run("converts panics into 500 responses", func(t *testing.T) {
		t.Parallel()

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		})

		handler := Recoverer(slog.Default())(next)

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/rooms", nil))

		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	})

	t.Run("passes healthy requests through untouched", func(t *testing.T) {
		t.Parallel()

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})

		handler := Recoverer(nil)(next)

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/rooms", nil))

		assert.Equal(t, http.StatusTeapot, recorder.Code)
	})
}
