package cli

import (
	"log/slog"

	"github.com/couchcryptid/quake-feed-service/internal/adapter/usgs"
	"github.com/couchcryptid/quake-feed-service/internal/config"
	"github.com/couchcryptid/quake-feed-service/internal/domain"
	"github.com/couchcryptid/quake-feed-service/internal/observability"
	"github.com/couchcryptid/quake-feed-service/internal/pipeline"
)

// newService assembles the fetch, decode, and enrich stages from cfg.
func newService(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *pipeline.Service {
	var fetcher domain.FeedFetcher = usgs.NewClient(cfg.ConnectTimeout, cfg.ReadTimeout, cfg.RateLimit, logger)
	if cfg.CacheTTL > 0 {
		fetcher = usgs.NewCachedFetcher(fetcher, cfg.CacheTTL, metrics)
		logger.Info("feed response cache enabled", "ttl", cfg.CacheTTL)
	}
	if cfg.RateLimit > 0 {
		logger.Info("outbound rate limit enabled", "rps", cfg.RateLimit)
	}

	transformer := pipeline.NewTransformer(logger, metrics)
	return pipeline.New(fetcher, transformer, logger, metrics)
}
