package feed

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mkfrx/desk/internal/domain"
)

const chartPoints = 24

// ChartPoint is one hour-bucket of the displayed intraday series.
type ChartPoint struct {
	Time  string  `json:"time"`
	Price float64 `json:"price"`
}

// ChartPoller independently polls the feed for a single selected symbol and
// derives the displayed intraday series. The backend exposes no historical
// candles, so the series is synthesized around the current last price, the
// same way the original view mocked it.
type ChartPoller struct {
	source TickerSource
	logger *zap.Logger
	rnd    *rand.Rand

	mu      sync.RWMutex
	symbol  string
	series  []ChartPoint
	version uint64
}

// NewChartPoller creates a poller tracking the given symbol. rnd may be nil;
// tests inject a seeded generator for deterministic series.
func NewChartPoller(source TickerSource, symbol string, rnd *rand.Rand, logger *zap.Logger) *ChartPoller {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &ChartPoller{
		source: source,
		symbol: symbol,
		rnd:    rnd,
		logger: logger.With(zap.String("component", "chart")),
	}
}

// SetSymbol switches the tracked symbol. The next poll rebuilds the series.
func (p *ChartPoller) SetSymbol(symbol string) {
	p.mu.Lock()
	p.symbol = symbol
	p.mu.Unlock()
}

// Symbol returns the currently tracked symbol.
func (p *ChartPoller) Symbol() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.symbol
}

// Series returns the latest chart series, empty before the first refresh.
func (p *ChartPoller) Series() []ChartPoint {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]ChartPoint, len(p.series))
	copy(out, p.series)
	return out
}

// Version increases per applied refresh.
func (p *ChartPoller) Version() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.version
}

// Refresh fetches the snapshot and rebuilds the series for the tracked
// symbol. A missing symbol or fetch failure leaves the series untouched.
func (p *ChartPoller) Refresh(ctx context.Context) error {
	symbol := p.Symbol()
	if symbol == "" {
		return nil
	}

	tickers, err := p.source.Tickers(ctx)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	snap := domain.Snapshot{Tickers: tickers}
	t := snap.FindSymbol(symbol)
	if t == nil {
		return fmt.Errorf("symbol %s absent from feed", symbol)
	}

	series := p.synthesize(t.Last())

	p.mu.Lock()
	defer p.mu.Unlock()
	// Symbol may have been switched while the fetch was in flight.
	if p.symbol != symbol {
		return nil
	}
	p.series = series
	p.version++
	return nil
}

// synthesize builds a 24-point walk within ±2% of the current price.
func (p *ChartPoller) synthesize(last decimal.Decimal) []ChartPoint {
	price, _ := last.Float64()
	series := make([]ChartPoint, chartPoints)
	for i := range series {
		series[i] = ChartPoint{
			Time:  fmt.Sprintf("%d:00", i),
			Price: price + (p.rnd.Float64()-0.5)*price*0.02,
		}
	}
	return series
}

// Run polls every interval until ctx is cancelled.
func (p *ChartPoller) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.logger.Info("chart poller started", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("chart poller stopped")
			return ctx.Err()
		case <-ticker.C:
			fetchCtx, cancel := context.WithTimeout(ctx, interval)
			if err := p.Refresh(fetchCtx); err != nil {
				p.logger.Warn("chart refresh failed, keeping previous series",
					zap.String("symbol", p.Symbol()), zap.Error(err))
			}
			cancel()
		}
	}
}
