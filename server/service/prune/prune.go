// Package prune removes content that has aged out of the recommendation
// window. Retrieval already filters by age, so pruning only reclaims storage;
// running it late or not at all never changes feed results.
package prune

import (
	"context"
	"log/slog"
	"time"

	"github.com/hrygo/gourmet/internal/metrics"
	"github.com/hrygo/gourmet/internal/profile"
	"github.com/hrygo/gourmet/store"
)

const defaultInterval = time.Hour

// Pruner periodically deletes content older than the retrieval window.
type Pruner struct {
	store    *store.Store
	profile  *profile.Profile
	metrics  *metrics.Exporter
	interval time.Duration
}

// Option configures a Pruner.
type Option func(*Pruner)

// WithMetrics attaches a Prometheus exporter.
func WithMetrics(exporter *metrics.Exporter) Option {
	return func(p *Pruner) { p.metrics = exporter }
}

// WithInterval overrides the sweep interval.
func WithInterval(interval time.Duration) Option {
	return func(p *Pruner) { p.interval = interval }
}

// NewPruner creates a pruner over the given store.
func NewPruner(store *store.Store, profile *profile.Profile, opts ...Option) *Pruner {
	p := &Pruner{
		store:    store,
		profile:  profile,
		interval: defaultInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run sweeps once immediately, then on every tick until the context is
// cancelled.
func (p *Pruner) Run(ctx context.Context) {
	p.sweep(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

// Sweep deletes everything older than the retention window. Exposed for
// one-shot invocation.
func (p *Pruner) Sweep(ctx context.Context) (int64, error) {
	before := time.Now().AddDate(0, 0, -p.profile.MaxContentAgeDays)
	return p.store.DeleteContentBefore(ctx, before)
}

func (p *Pruner) sweep(ctx context.Context) {
	deleted, err := p.Sweep(ctx)
	if err != nil {
		slog.Error("content prune failed", "error", err)
		return
	}
	if p.metrics != nil {
		p.metrics.AddContentPruned(deleted)
	}
	if deleted > 0 {
		slog.Info("content pruned", "deleted", deleted, "retention_days", p.profile.MaxContentAgeDays)
	}
}
