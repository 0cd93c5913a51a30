package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func testConfig(attempts int) Config {
	return Config{
		Delay:          DelayConfig{Kind: DelayDisabled},
		Retry:          RetryConfig{Attempts: attempts, BackoffMs: 1},
		TimeoutSeconds: 5,
	}
}

func TestRenderRetriesUntilSuccess(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("<html>ok</html>"))
	}))
	defer server.Close()

	client := NewClient(testConfig(5))
	html, err := client.Render(context.Background(), server.URL)
	require.NoError(t, err)
	require.Contains(t, html, "ok")
	require.Equal(t, int64(3), hits.Load())
}

func TestRenderExhaustedRetriesAreFatal(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(testConfig(3))
	_, err := client.Render(context.Background(), server.URL)
	require.ErrorIs(t, err, ErrRetryLimitExceeded)
	require.Equal(t, int64(3), hits.Load())
}

func TestRenderBackoffGrows(t *testing.T) {
	cfg := testConfig(10)
	client := NewClient(cfg)
	policy := client.retryPolicy(context.Background())

	first := policy.NextBackOff()
	require.Greater(t, first.Milliseconds(), int64(0))
	// the interval climbs instead of repeating the base delay
	grown := false
	for i := 0; i < 10; i++ {
		if policy.NextBackOff() > first {
			grown = true
			break
		}
	}
	require.True(t, grown)
}
