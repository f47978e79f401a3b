package adapters

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radiancefleet/core/internal/retry"
)

type failingCSVSource struct {
	calls      int
	failCount  int
	err        error
}

func (f *failingCSVSource) Fetch(ctx context.Context) (io.ReadCloser, error) {
	f.calls++
	if f.calls <= f.failCount {
		return nil, f.err
	}
	return io.NopCloser(nil), nil
}

func testRetryConfig(name string) retry.Config {
	return retry.Config{Name: name, Delays: []time.Duration{time.Millisecond, time.Millisecond}}
}

func TestWrapCSVSourcePassesThroughSuccess(t *testing.T) {
	src := &failingCSVSource{}
	wrapped := WrapCSVSource(testRetryConfig("gfw"), src)

	_, err := wrapped.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)
}

func TestWrapCSVSourceRetriesThenSucceeds(t *testing.T) {
	src := &failingCSVSource{failCount: 2, err: errors.New("connection refused")}
	wrapped := WrapCSVSource(testRetryConfig("ftm"), src)

	_, err := wrapped.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, src.calls)
}

func TestWrapCSVSourceExhaustsRetriesAndReturnsError(t *testing.T) {
	src := &failingCSVSource{failCount: 10, err: errors.New("connection refused")}
	wrapped := WrapCSVSource(testRetryConfig("ftm"), src)

	_, err := wrapped.Fetch(context.Background())

	require.Error(t, err)
	assert.Equal(t, 3, src.calls, "one initial attempt plus 2 configured delays")
}
