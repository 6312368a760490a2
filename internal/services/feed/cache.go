// Package feed maintains the client's view of the MKfrx ticker feed.
package feed

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mkfrx/desk/internal/domain"
	"github.com/mkfrx/desk/pkg/backoff"
)

// TickerSource fetches one snapshot set from the feed endpoint.
type TickerSource interface {
	Tickers(ctx context.Context) ([]domain.Ticker, error)
}

// Cache holds the latest ticker snapshot generation. Each refresh replaces
// the set wholesale under the lock, so a reader sees either the previous or
// the new generation in full, never a mix. On a failed refresh the previous
// generation is kept: the view must keep working on stale data.
type Cache struct {
	source TickerSource
	logger *zap.Logger

	mu      sync.RWMutex
	snap    *domain.Snapshot
	quotes  []string
	version uint64
}

// NewCache creates an empty cache backed by the given feed source.
func NewCache(source TickerSource, logger *zap.Logger) *Cache {
	return &Cache{
		source: source,
		logger: logger.With(zap.String("component", "feed")),
	}
}

// Snapshot returns the current generation, or an empty one before the first
// successful refresh.
func (c *Cache) Snapshot() *domain.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil {
		return &domain.Snapshot{}
	}
	return c.snap
}

// Version increases by one per applied refresh. Consumers use it to detect
// new generations without comparing snapshots.
func (c *Cache) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// QuoteAssets returns the filter dropdown entries: the "ALL" sentinel plus
// every quote asset observed so far. The list only grows once populated, so
// a poll that briefly returns fewer assets does not make the dropdown
// flicker.
func (c *Cache) QuoteAssets() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.quotes) == 0 {
		return []string{domain.QuoteAll}
	}
	out := make([]string, len(c.quotes))
	copy(out, c.quotes)
	return out
}

// Refresh pulls a fresh snapshot set and swaps it in. A fetch error leaves
// the cache untouched and is returned for the caller to log; it is never
// surfaced to the view.
func (c *Cache) Refresh(ctx context.Context) error {
	tickers, err := c.source.Tickers(ctx)
	if err != nil {
		return err
	}
	// Late-arrival guard: a fetch that outlived its view must not write.
	if ctx.Err() != nil {
		return ctx.Err()
	}

	snap := &domain.Snapshot{Tickers: tickers, TakenAt: time.Now()}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = snap
	c.version++
	c.mergeQuotesLocked(snap.QuoteAssets())
	return nil
}

func (c *Cache) mergeQuotesLocked(observed []string) {
	if len(observed) == 0 {
		return
	}
	if len(c.quotes) == 0 {
		c.quotes = append(c.quotes, domain.QuoteAll)
	}
	known := make(map[string]struct{}, len(c.quotes))
	for _, q := range c.quotes {
		known[q] = struct{}{}
	}
	for _, q := range observed {
		if _, ok := known[q]; !ok {
			c.quotes = append(c.quotes, q)
		}
	}
}

// Run polls the feed every interval until ctx is cancelled. The first
// refresh is retried with bounded backoff so the view does not open empty on
// a transient failure; after that a failed poll just waits for the next tick.
func (c *Cache) Run(ctx context.Context, interval time.Duration) error {
	prime := backoff.New(backoff.WithMaxDelay(interval))
	if err := prime.Do(ctx, c.Refresh); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("initial feed refresh failed, starting with empty snapshot", zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.logger.Info("feed poller started", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("feed poller stopped")
			return ctx.Err()
		case <-ticker.C:
			fetchCtx, cancel := context.WithTimeout(ctx, interval)
			if err := c.Refresh(fetchCtx); err != nil {
				c.logger.Warn("feed refresh failed, keeping previous snapshot", zap.Error(err))
			}
			cancel()
		}
	}
}
