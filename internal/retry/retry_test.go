package retry

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resp(status int, headers map[string]string) *http.Response {
	h := http.Header{}
	for k, v := range headers {
		h.Set(k, v)
	}
	return &http.Response{StatusCode: status, Header: h}
}

func TestDoSucceedsWithoutRetryOn200(t *testing.T) {
	calls := 0
	cfg := Config{Name: "test", Delays: Delays([]int{1, 2, 3})}

	r, err := Do(context.Background(), cfg, func(ctx context.Context) (*http.Response, error) {
		calls++
		return resp(200, nil), nil
	})

	require.NoError(t, err)
	assert.Equal(t, 200, r.StatusCode)
	assert.Equal(t, 1, calls)
}

func TestDoNeverRetriesOn4xx(t *testing.T) {
	calls := 0
	cfg := Config{Name: "test", Delays: Delays([]int{1, 2, 3})}

	_, err := Do(context.Background(), cfg, func(ctx context.Context) (*http.Response, error) {
		calls++
		return resp(404, nil), nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNonRetryable)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesOn429ThenSucceeds(t *testing.T) {
	calls := 0
	cfg := Config{Name: "test", Delays: []time.Duration{time.Millisecond, time.Millisecond}}

	r, err := Do(context.Background(), cfg, func(ctx context.Context) (*http.Response, error) {
		calls++
		if calls < 2 {
			return resp(429, nil), nil
		}
		return resp(200, nil), nil
	})

	require.NoError(t, err)
	assert.Equal(t, 200, r.StatusCode)
	assert.Equal(t, 2, calls)
}

func TestDoExhaustsAllAttemptsAndReturnsError(t *testing.T) {
	calls := 0
	cfg := Config{Name: "test", Delays: []time.Duration{time.Millisecond, time.Millisecond}}

	_, err := Do(context.Background(), cfg, func(ctx context.Context) (*http.Response, error) {
		calls++
		return resp(503, nil), nil
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryAfterHonoredOverConfiguredDelay(t *testing.T) {
	calls := 0
	start := time.Now()
	cfg := Config{Name: "test", Delays: []time.Duration{time.Millisecond}}

	_, _ = Do(context.Background(), cfg, func(ctx context.Context) (*http.Response, error) {
		calls++
		if calls == 1 {
			return resp(429, map[string]string{"Retry-After": "1"}), nil
		}
		return resp(200, nil), nil
	})

	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestRetryAfterParsesSecondsForm(t *testing.T) {
	d, ok := RetryAfter(resp(429, map[string]string{"Retry-After": "5"}))
	require.True(t, ok)
	assert.Equal(t, 5*time.Second, d)
}

func TestRetryAfterAbsentReturnsNotOK(t *testing.T) {
	_, ok := RetryAfter(resp(429, nil))
	assert.False(t, ok)
}

func TestDoRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{Name: "test", Delays: []time.Duration{time.Hour}}

	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := Do(ctx, cfg, func(ctx context.Context) (*http.Response, error) {
		calls++
		return resp(503, nil), nil
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
