package feed

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkfrx/desk/internal/domain"
)

type scriptedSource struct {
	mu        sync.Mutex
	responses []func() ([]domain.Ticker, error)
	calls     int
}

func (s *scriptedSource) Tickers(_ context.Context) ([]domain.Ticker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.responses) == 0 {
		return nil, errors.New("no scripted response")
	}
	next := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return next()
}

func (s *scriptedSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func tickersOf(symbols ...string) []domain.Ticker {
	out := make([]domain.Ticker, len(symbols))
	for i, sym := range symbols {
		out[i] = domain.Ticker{Symbol: sym, BaseAsset: sym[:3], QuoteAsset: sym[3:]}
	}
	return out
}

func ok(tickers []domain.Ticker) func() ([]domain.Ticker, error) {
	return func() ([]domain.Ticker, error) { return tickers, nil }
}

func fail(msg string) func() ([]domain.Ticker, error) {
	return func() ([]domain.Ticker, error) { return nil, errors.New(msg) }
}

func TestRefreshReplacesSnapshotWholesale(t *testing.T) {
	source := &scriptedSource{responses: []func() ([]domain.Ticker, error){
		ok(tickersOf("btcinr", "ethinr")),
		ok(tickersOf("xrpinr")),
	}}
	cache := NewCache(source, zap.NewNop())

	require.NoError(t, cache.Refresh(context.Background()))
	assert.Len(t, cache.Snapshot().Tickers, 2)
	assert.EqualValues(t, 1, cache.Version())

	require.NoError(t, cache.Refresh(context.Background()))
	snap := cache.Snapshot()
	require.Len(t, snap.Tickers, 1, "previous generation is discarded, not merged")
	assert.Equal(t, "xrpinr", snap.Tickers[0].Symbol)
	assert.EqualValues(t, 2, cache.Version())
}

func TestRefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	source := &scriptedSource{responses: []func() ([]domain.Ticker, error){
		ok(tickersOf("btcinr", "ethinr")),
		fail("connection reset"),
	}}
	cache := NewCache(source, zap.NewNop())

	require.NoError(t, cache.Refresh(context.Background()))
	before := cache.Snapshot()

	err := cache.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, before, cache.Snapshot(), "tick N equals tick N-1 after a failed poll")
	assert.EqualValues(t, 1, cache.Version(), "failed refresh does not bump the generation")
}

func TestSnapshotEmptyBeforeFirstRefresh(t *testing.T) {
	cache := NewCache(&scriptedSource{}, zap.NewNop())
	snap := cache.Snapshot()
	require.NotNil(t, snap)
	assert.Empty(t, snap.Tickers)
	assert.Equal(t, []string{domain.QuoteAll}, cache.QuoteAssets())
}

func TestQuoteAssetsGrowOnly(t *testing.T) {
	source := &scriptedSource{responses: []func() ([]domain.Ticker, error){
		ok(tickersOf("btcinr", "btcusdt")),
		ok(tickersOf("btcinr")),
		ok(tickersOf("etheur")),
	}}
	cache := NewCache(source, zap.NewNop())

	require.NoError(t, cache.Refresh(context.Background()))
	assert.Equal(t, []string{domain.QuoteAll, "inr", "usdt"}, cache.QuoteAssets())

	// A poll with fewer quote assets must not shrink the dropdown.
	require.NoError(t, cache.Refresh(context.Background()))
	assert.Equal(t, []string{domain.QuoteAll, "inr", "usdt"}, cache.QuoteAssets())

	// New quote assets still get added.
	require.NoError(t, cache.Refresh(context.Background()))
	assert.Equal(t, []string{domain.QuoteAll, "inr", "usdt", "eur"}, cache.QuoteAssets())
}

func TestRefreshCancelledContextDoesNotApply(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	source := &scriptedSource{responses: []func() ([]domain.Ticker, error){
		func() ([]domain.Ticker, error) {
			// Simulate the view unmounting while the fetch is in flight.
			cancel()
			return tickersOf("btcinr"), nil
		},
	}}
	cache := NewCache(source, zap.NewNop())

	err := cache.Refresh(ctx)
	require.Error(t, err)
	assert.Empty(t, cache.Snapshot().Tickers, "late-arriving response must not be applied")
	assert.EqualValues(t, 0, cache.Version())
}

func TestRunStopsOnCancel(t *testing.T) {
	source := &scriptedSource{responses: []func() ([]domain.Ticker, error){
		ok(tickersOf("btcinr")),
	}}
	cache := NewCache(source, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cache.Run(ctx, 10*time.Millisecond) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}

	// No further polls may fire once the loop has been torn down.
	settled := source.callCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, source.callCount())
}
