package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/radiancefleet/core/internal/adapters/kystverket"
	"github.com/radiancefleet/core/internal/adapters/noaa"
	"github.com/radiancefleet/core/internal/retry"
)

// ResilientFetcher wraps a collaborator fetch function (a CSVSource, NOAA Source, or
// Kystverket Stream's Connect) in internal/retry's bounded backoff, so a feed that has
// started failing (DNS outage, NOAA maintenance window, Kystverket TCP endpoint down)
// is retried on its own provider-specific delay vector instead of failing the whole
// pipeline run on one transient error. None of these fetchers surface an HTTP status
// code of their own, so every failure is classified retryable up to cfg's attempt
// budget; a successful fetch is reported by a nil error on the first return value.
type ResilientFetcher struct {
	cfg retry.Config
}

// NewResilientFetcher builds a fetcher retrying under cfg, typically one of
// FeedRetryConfigs' presets.
func NewResilientFetcher(cfg retry.Config) *ResilientFetcher {
	if cfg.Classify == nil {
		cfg.Classify = classifyFetch
	}
	return &ResilientFetcher{cfg: cfg}
}

// classifyFetch treats any fetch error as retryable: these adapters are contract-only
// (spec.md §1's external-collaborator scope), so there is no status code to distinguish
// a transient failure from a permanent one the way retry.ClassifyHTTP does.
func classifyFetch(_ *http.Response, err error) retry.Classification {
	if err == nil {
		return retry.Success
	}
	return retry.Retryable
}

// Fetch runs fn through the retrier.
func (r *ResilientFetcher) Fetch(ctx context.Context, fn func(ctx context.Context) (io.ReadCloser, error)) (io.ReadCloser, error) {
	var result io.ReadCloser
	_, err := retry.Do(ctx, r.cfg, func(ctx context.Context) (*http.Response, error) {
		rc, err := fn(ctx)
		result = rc
		return nil, err
	})
	if err != nil {
		return nil, fmt.Errorf("adapters: %s: %w", r.cfg.Name, err)
	}
	return result, nil
}

// FeedRetryConfigs holds the pre-configured retry policies for the pipeline's external
// feed collaborators. Kystverket gets the shortest delay vector since its TCP stream is
// latency sensitive; NOAA's daily-archive fetch tolerates a longer one. Values mirror
// spec.md §5's per-provider delay vector example (AISHub's 60/120/180s for a
// 1-req/min service) in shape, scaled to each feed's own rate limit.
type FeedRetryConfigs struct {
	NOAA       retry.Config
	Kystverket retry.Config
	GFW        retry.Config
	FTM        retry.Config
}

// NewFeedRetryConfigs returns the default retry policy for every feed collaborator.
func NewFeedRetryConfigs() *FeedRetryConfigs {
	return &FeedRetryConfigs{
		NOAA: retry.Config{
			Name:   "noaa",
			Delays: []time.Duration{10 * time.Second, 30 * time.Second, 60 * time.Second},
		},
		Kystverket: retry.Config{
			Name:   "kystverket",
			Delays: []time.Duration{5 * time.Second, 15 * time.Second},
		},
		GFW: retry.Config{
			Name:   "gfw",
			Delays: []time.Duration{15 * time.Second, 30 * time.Second, 60 * time.Second},
		},
		FTM: retry.Config{
			Name:   "ftm",
			Delays: []time.Duration{30 * time.Second, 60 * time.Second},
		},
	}
}

// WrapCSVSource decorates a CSVSource's Fetch with bounded retry.
func WrapCSVSource(cfg retry.Config, src CSVSource) CSVSource {
	return &resilientCSVSource{src: src, fetcher: NewResilientFetcher(cfg)}
}

type resilientCSVSource struct {
	src     CSVSource
	fetcher *ResilientFetcher
}

func (r *resilientCSVSource) Fetch(ctx context.Context) (io.ReadCloser, error) {
	return r.fetcher.Fetch(ctx, r.src.Fetch)
}

// WrapNOAASource decorates a noaa.Source's Fetch with bounded retry.
func WrapNOAASource(cfg retry.Config, src noaa.Source) noaa.Source {
	return &resilientNOAASource{src: src, fetcher: NewResilientFetcher(cfg)}
}

type resilientNOAASource struct {
	src     noaa.Source
	fetcher *ResilientFetcher
}

func (r *resilientNOAASource) Fetch(ctx context.Context, date time.Time) (io.ReadCloser, error) {
	return r.fetcher.Fetch(ctx, func(ctx context.Context) (io.ReadCloser, error) {
		return r.src.Fetch(ctx, date)
	})
}

// WrapKystverketStream decorates a kystverket.Stream's Connect with bounded retry.
func WrapKystverketStream(cfg retry.Config, stream kystverket.Stream) kystverket.Stream {
	return &resilientKystverketStream{stream: stream, fetcher: NewResilientFetcher(cfg)}
}

type resilientKystverketStream struct {
	stream  kystverket.Stream
	fetcher *ResilientFetcher
}

func (r *resilientKystverketStream) Connect(ctx context.Context) (io.ReadCloser, error) {
	return r.fetcher.Fetch(ctx, r.stream.Connect)
}
