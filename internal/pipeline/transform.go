package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/quake-feed-service/internal/domain"
	"github.com/couchcryptid/quake-feed-service/internal/observability"
)

// FeedTransformer implements Transformer using the domain decode and
// enrich functions.
type FeedTransformer struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewTransformer creates a FeedTransformer.
func NewTransformer(logger *slog.Logger, metrics *observability.Metrics) *FeedTransformer {
	return &FeedTransformer{
		logger:  logger,
		metrics: metrics,
	}
}

// Transform decodes a feed body and enriches every well-formed feature, in
// feed order. Malformed features are logged and dropped.
func (t *FeedTransformer) Transform(_ context.Context, body string) ([]domain.Earthquake, error) {
	results, err := domain.DecodeFeatures(body)
	if err != nil {
		return nil, err
	}

	events, skipped := domain.CollectEvents(results, t.logger)
	t.metrics.FeaturesDecoded.Add(float64(len(events)))
	t.metrics.FeaturesSkipped.Add(float64(skipped))

	return domain.EnrichAll(events), nil
}
