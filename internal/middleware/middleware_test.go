package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })

	h := CORS([]string{"http://app.test"}, next)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Origin", "http://APP.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "http://APP.test", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/users", nil)
	req.Header.Set("Origin", "http://evil.test")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_WildcardOmitsCredentials(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	tests := []struct {
		name            string
		allowed         []string
		origin          string
		wantOrigin      string
		wantCredentials string
	}{
		{"wildcard", []string{"*"}, "http://any.test", "*", ""},
		{"listed", []string{"http://app.test"}, "http://app.test", "http://app.test", "true"},
		{"listed beside wildcard", []string{"*", "http://app.test"}, "http://app.test", "http://app.test", "true"},
		{"unlisted beside wildcard", []string{"*", "http://app.test"}, "http://other.test", "*", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/auth/login", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			CORS(tt.allowed, next).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCredentials, rec.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestLogging_AttachesRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	var sawLogger bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("inside")
		sawLogger = true
		w.WriteHeader(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/messages", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	Logging(base, next).ServeHTTP(rec, req)

	require.True(t, sawLogger)
	assert.Equal(t, "req-123", rec.Header().Get(requestIDHeader))

	dec := json.NewDecoder(&buf)
	var inner, done map[string]any
	require.NoError(t, dec.Decode(&inner))
	require.NoError(t, dec.Decode(&done))
	assert.Equal(t, "req-123", inner["request_id"])
	assert.Equal(t, "request completed", done["message"])
	assert.Equal(t, float64(http.StatusCreated), done["status"])
}

func TestLogging_GeneratesRequestID(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	rec := httptest.NewRecorder()
	Logging(zerolog.Nop(), next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, rec.Header().Get(requestIDHeader), 36)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Hour), 2, time.Minute)
	defer rl.Stop()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	reject := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTooManyRequests) }
	h := rl.Wrap(next, reject)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	other := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	other.RemoteAddr = "10.0.0.2:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)

	rl.Stop()
}
