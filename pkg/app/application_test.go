package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"parkproof/pkg/auth"
	"parkproof/pkg/client"
	"parkproof/pkg/config"
	"parkproof/pkg/gatesig"
	"parkproof/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gatePath = "/api/v1/entry"

type echoHandler struct{}

func (echoHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST(gatePath, func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusCreated)
	})
}

type stopRecorder struct {
	stopped *[]string
	name    string
}

func (s stopRecorder) Stop() { *s.stopped = append(*s.stopped, s.name) }

func newTestApp(t *testing.T) *Application {
	t.Helper()
	cfg := &config.Config{
		Port:              "0",
		GateSigningSecret: "gate-secret",
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
		IdempotencyTTL:    time.Minute,
		MaxRequestSize:    1 << 20,
		ShutdownTimeout:   time.Second,
		Log:               logger.Discard(),
		Client:            client.NewClient(),
	}
	a := NewApplication(cfg)
	a.SetApp(auth.NewVerifier("jwt-secret"), []string{gatePath}, echoHandler{})
	t.Cleanup(func() {
		a.idempotencyStore.Stop()
		a.rateLimiter.Stop()
	})
	return a
}

func TestGateSignatureRequired(t *testing.T) {
	a := newTestApp(t)
	body := `{"parkingLotId":"65f1c2a9e4b0a1b2c3d4e5f6","vehicleNumber":"KA01"}`

	req := httptest.NewRequest(http.MethodPost, gatePath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, gatePath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(gatesig.Header, gatesig.HeaderValue([]byte(body), "gate-secret"))
	rec = httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	a := newTestApp(t)
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWorkersStopInReverseOrder(t *testing.T) {
	a := newTestApp(t)
	var stopped []string
	a.AddWorker(stopRecorder{&stopped, "sweeper"})
	a.AddWorker(stopRecorder{&stopped, "publisher"})

	closed := false
	a.OnShutdown(func() error { closed = true; return nil })

	a.gracefulShutdown()
	require.Equal(t, []string{"publisher", "sweeper"}, stopped)
	assert.True(t, closed)
}
