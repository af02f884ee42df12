package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/basketfy/dex-adapter/pkg/model"
)

// CatalogBuilder rebuilds the token catalog for one chain.
type CatalogBuilder interface {
	Build(ctx context.Context, chainID string) ([]model.TokenRecord, string, error)
}

// CatalogCache stores the built catalog.
type CatalogCache interface {
	Put(ctx context.Context, chainID string, records []model.TokenRecord) error
}

// CatalogPublisher announces completed rebuilds.
type CatalogPublisher interface {
	PublishCatalogRefreshed(ctx context.Context, evt model.CatalogRefreshedEvent) error
}

// Refresher periodically rebuilds the token catalog and caches the result.
// A failed cycle leaves the previous cached catalog in place.
type Refresher struct {
	logger   *zap.Logger
	builder  CatalogBuilder
	cache    CatalogCache
	pub      CatalogPublisher
	chainID  string
	interval time.Duration
}

// NewRefresher creates a catalog refresher. pub may be nil when events are
// disabled.
func NewRefresher(logger *zap.Logger, builder CatalogBuilder, cache CatalogCache, pub CatalogPublisher, chainID string, interval time.Duration) *Refresher {
	return &Refresher{
		logger:   logger,
		builder:  builder,
		cache:    cache,
		pub:      pub,
		chainID:  chainID,
		interval: interval,
	}
}

// Run refreshes immediately and then on every tick until ctx ends.
func (r *Refresher) Run(ctx context.Context) {
	r.RefreshOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("jobs.refresher_stopped", zap.String("chain_id", r.chainID))
			return
		case <-ticker.C:
			r.RefreshOnce(ctx)
		}
	}
}

// RefreshOnce runs a single rebuild cycle.
func (r *Refresher) RefreshOnce(ctx context.Context) {
	records, source, err := r.builder.Build(ctx, r.chainID)
	if err != nil {
		r.logger.Error("jobs.catalog_build_failed",
			zap.Error(err),
			zap.String("chain_id", r.chainID))
		return
	}

	if err := r.cache.Put(ctx, r.chainID, records); err != nil {
		r.logger.Error("jobs.catalog_cache_failed",
			zap.Error(err),
			zap.String("chain_id", r.chainID))
		return
	}

	if r.pub != nil {
		evt := model.CatalogRefreshedEvent{
			ChainID:    r.chainID,
			TokenCount: len(records),
			Source:     source,
			Timestamp:  time.Now().UTC(),
		}
		if err := r.pub.PublishCatalogRefreshed(ctx, evt); err != nil {
			r.logger.Warn("jobs.catalog_event_failed", zap.Error(err))
		}
	}

	r.logger.Info("jobs.catalog_refreshed",
		zap.String("chain_id", r.chainID),
		zap.String("source", source),
		zap.Int("tokens", len(records)))
}
