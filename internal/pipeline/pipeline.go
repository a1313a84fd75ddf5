package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/quake-feed-service/internal/domain"
	"github.com/couchcryptid/quake-feed-service/internal/observability"
)

// Transformer converts a raw feed body into display-ready records.
type Transformer interface {
	Transform(ctx context.Context, body string) ([]domain.Earthquake, error)
}

// Service runs one build-fetch-decode-enrich query per call. It keeps no
// per-query state between calls.
type Service struct {
	fetcher     domain.FeedFetcher
	transformer Transformer
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
}

// New creates a Service with the given stages and observability.
func New(f domain.FeedFetcher, t Transformer, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		fetcher:     f,
		transformer: t,
		logger:      logger,
		metrics:     metrics,
	}
}

// CheckReadiness returns nil once a query has reached the feed successfully,
// or an error describing why the service is not yet ready.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("no successful feed query yet")
	}
	return nil
}

// Prime runs q until one attempt reaches the feed, waiting interval
// between attempts, so readiness does not depend on inbound traffic. It
// returns nil once the service is ready or ctx.Err() if ctx ends first.
func (s *Service) Prime(ctx context.Context, q domain.QueryConfig, interval time.Duration) error {
	for {
		if _, err := s.Fetch(ctx, q); err == nil || s.ready.Load() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-domain.Clock().After(interval):
		}
	}
}

// Fetch queries the feed described by q and returns its records in feed
// order. Any fetch or decode failure is returned with no records; an empty
// slice with a nil error is a legitimate "nothing matched" answer.
func (s *Service) Fetch(ctx context.Context, q domain.QueryConfig) ([]domain.Earthquake, error) {
	start := domain.Clock().Now()
	u := q.URL()

	body, err := s.fetcher.Fetch(ctx, u)
	if err != nil {
		s.fail(u, err)
		return nil, err
	}

	records, err := s.transformer.Transform(ctx, body)
	if err != nil {
		s.fail(u, err)
		return nil, err
	}

	s.ready.Store(true)
	s.metrics.FetchRequests.WithLabelValues("success").Inc()
	s.metrics.FetchDuration.Observe(domain.Clock().Since(start).Seconds())
	s.metrics.LastSuccess.Set(float64(domain.Clock().Now().Unix()))
	s.metrics.RecordsReturned.Observe(float64(len(records)))

	s.logger.Info("feed query complete", "url", u, "records", len(records))
	return records, nil
}

func (s *Service) fail(u string, err error) {
	outcome := Outcome(err)
	s.metrics.FetchRequests.WithLabelValues(outcome).Inc()

	if outcome == OutcomeEmpty {
		// The feed answered but had nothing to say; still counts as reachable.
		s.ready.Store(true)
		s.logger.Info("feed returned no data", "url", u)
		return
	}
	s.logger.Warn("feed query failed", "url", u, "outcome", outcome, "error", err)
}

// Query outcomes, used as metric labels.
const (
	OutcomeSuccess      = "success"
	OutcomeEmpty        = "empty"
	OutcomeNetworkError = "network_error"
	OutcomeHTTPStatus   = "http_status"
	OutcomeMalformed    = "malformed"
	OutcomeUnknown      = "unknown"
)

// Outcome classifies a query error.
func Outcome(err error) string {
	var (
		netErr    *domain.NetworkError
		statusErr *domain.HTTPStatusError
		malformed *domain.MalformedFeedError
	)
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, domain.ErrEmptyInput):
		return OutcomeEmpty
	case errors.As(err, &netErr):
		return OutcomeNetworkError
	case errors.As(err, &statusErr):
		return OutcomeHTTPStatus
	case errors.As(err, &malformed):
		return OutcomeMalformed
	default:
		return OutcomeUnknown
	}
}
