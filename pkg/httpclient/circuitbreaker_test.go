package httpclient

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestBreaker(name string, timeout time.Duration) *CircuitBreakerClient {
	cfg := CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      timeout,
		FailureRatio: 0.5,
		MinRequests:  3,
	}
	return NewCircuitBreakerClient(fastClient(0), cfg, testLogger())
}

func TestCircuitBreaker_ClosedState_Success(t *testing.T) {
	server := stubServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	cb := newTestBreaker("test-closed", time.Second)

	resp, err := cb.Post(context.Background(), server.URL, "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_TripsOnFailures(t *testing.T) {
	server := stubServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	cb := newTestBreaker("test-trip", time.Second)

	// Produce enough 5xx responses to trip the breaker.
	for i := 0; i < 3; i++ {
		_, err := cb.Post(context.Background(), server.URL, "application/json", strings.NewReader(`{}`))
		require.Error(t, err)
	}

	assert.Equal(t, gobreaker.StateOpen, cb.State())

	// Subsequent requests fail fast with ErrCircuitOpen.
	_, err := cb.Post(context.Background(), server.URL, "application/json", strings.NewReader(`{}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_HalfOpenToClosedRecovery(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)

	server := stubServer(t, func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	cb := newTestBreaker("test-recover", 50*time.Millisecond)

	for i := 0; i < 3; i++ {
		_, _ = cb.Post(context.Background(), server.URL, "application/json", strings.NewReader(`{}`))
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())

	// Let the breaker move to half-open, then serve a success.
	failing.Store(false)
	time.Sleep(60 * time.Millisecond)

	resp, err := cb.Post(context.Background(), server.URL, "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}
