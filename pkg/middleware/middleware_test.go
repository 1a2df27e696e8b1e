package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"parkproof/pkg/auth"
	apperrors "parkproof/pkg/errors"
	"parkproof/pkg/gatesig"
	"parkproof/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute, nil, logger.Discard())
	defer rl.Stop()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("ip:1"))
	assert.True(t, rl.Allow("ip:1"))
	assert.False(t, rl.Allow("ip:1"))
	assert.True(t, rl.Allow("ip:2"), "buckets are independent")
	assert.True(t, rl.Allow(""), "empty key bypasses")

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("ip:1"), "window slid past the old requests")
}

func TestRateLimit_Rejects(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, nil, logger.Discard())
	defer rl.Stop()
	h := RateLimit(rl)(okHandler(http.StatusOK, "ok"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exit", nil)
	req.RemoteAddr = "10.0.0.1:5000"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, apperrors.CodeRateLimited, decodeError(t, rec).Code)
}

func TestCallerKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.4:1234"
	assert.Equal(t, "ip:192.168.1.4", CallerKey(req))

	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: "u1"}))
	assert.Equal(t, "user:u1", CallerKey(req))
}

func TestGateSignatureVerification(t *testing.T) {
	const secret = "gate-secret"
	body := []byte(`{"vehicleNumber":"DL01AB1111"}`)
	h := GateSignatureVerification(secret, []string{"/api/v1/entry"}, logger.Discard())(okHandler(http.StatusCreated, "ok"))

	tests := []struct {
		name      string
		path      string
		signature string
		want      int
	}{
		{"valid signature", "/api/v1/entry", "sha256=" + gatesig.Sign(body, secret), http.StatusCreated},
		{"bare hex accepted", "/api/v1/entry", gatesig.Sign(body, secret), http.StatusCreated},
		{"missing signature", "/api/v1/entry", "", http.StatusUnauthorized},
		{"wrong signature", "/api/v1/entry", "sha256=" + gatesig.Sign(body, "other"), http.StatusUnauthorized},
		{"unprotected path", "/api/v1/booking", "", http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, bytes.NewReader(body))
			if tt.signature != "" {
				req.Header.Set(GateSignatureHeader, tt.signature)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestIdempotency_ReplaysSuccess(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var calls atomic.Int32
	h := Idempotency(store, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte{byte('0' + n)})
	}))

	send := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/entry", strings.NewReader("{}"))
		req.Header.Set(DefaultIdempotencyHeader, key)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := send("k1")
	second := send("k1")
	other := send("k2")

	assert.Equal(t, "1", first.Body.String())
	assert.Equal(t, "1", second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, "2", other.Body.String())
	assert.Equal(t, int32(2), calls.Load())
}

func TestIdempotency_DoesNotStoreFailures(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()
	h := Idempotency(store, "")(okHandler(http.StatusConflict, "busy"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/entry", nil)
	req.Header.Set(DefaultIdempotencyHeader, "k")
	h.ServeHTTP(httptest.NewRecorder(), req)

	_, found := store.Get(context.Background(), "POST /api/v1/entry k")
	assert.False(t, found)
}

func TestRequireIdentity(t *testing.T) {
	const secret = "jwt-secret"
	verifier := auth.NewVerifier(secret)

	var seen auth.Identity
	h := RequireIdentity(verifier, logger.Discard(), func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		seen, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/v1/vehicles", nil), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := auth.IssueToken(secret, "user-1", "PARKER", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/vehicles", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h(rec, req, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", seen.UserID)
}

func TestRequireRole(t *testing.T) {
	const secret = "jwt-secret"
	verifier := auth.NewVerifier(secret)
	h := RequireRole(verifier, logger.Discard(), "ADMIN", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	})

	call := func(role string) int {
		token, err := auth.IssueToken(secret, "user-1", role, time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/parking-lots", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h(rec, req, nil)
		return rec.Code
	}

	assert.Equal(t, http.StatusForbidden, call("PARKER"))
	assert.Equal(t, http.StatusOK, call("ADMIN"))
}

func TestRecovery(t *testing.T) {
	h := Recovery(logger.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apperrors.CodeInternal, decodeError(t, rec).Code)
}

func TestContentTypeValidation(t *testing.T) {
	h := ContentTypeValidation(logger.Discard())(okHandler(http.StatusOK, "ok"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/entry", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/entry", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestLogging_PropagatesRequestID(t *testing.T) {
	var seen string
	h := RequestLogging(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))

	const incoming = "5b9a4c1e-8f2d-4e7a-9c3b-1d2e3f4a5b6c"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, incoming)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, incoming, seen)
	assert.Equal(t, incoming, rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.NotEqual(t, "not-a-uuid", seen)
	assert.NotEmpty(t, seen)
}

func TestRequestTimeout(t *testing.T) {
	h := RequestTimeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, apperrors.CodeTimeout, decodeError(t, rec).Code)
}
