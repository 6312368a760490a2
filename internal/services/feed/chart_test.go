package feed

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkfrx/desk/internal/domain"
)

func chartSource(symbol, last string) *scriptedSource {
	return &scriptedSource{responses: []func() ([]domain.Ticker, error){
		ok([]domain.Ticker{{Symbol: symbol, BaseAsset: "btc", QuoteAsset: "inr", LastPrice: last}}),
	}}
}

func TestChartRefreshBuildsSeries(t *testing.T) {
	poller := NewChartPoller(chartSource("btcinr", "1000"), "btcinr", rand.New(rand.NewSource(1)), zap.NewNop())

	require.NoError(t, poller.Refresh(context.Background()))

	series := poller.Series()
	require.Len(t, series, 24)
	assert.Equal(t, "0:00", series[0].Time)
	assert.Equal(t, "23:00", series[23].Time)
	for _, p := range series {
		assert.LessOrEqual(t, math.Abs(p.Price-1000), 10.0, "points stay within ±1%% of last price")
	}
	assert.EqualValues(t, 1, poller.Version())
}

func TestChartRefreshDeterministicWithSeededSource(t *testing.T) {
	first := NewChartPoller(chartSource("btcinr", "1000"), "btcinr", rand.New(rand.NewSource(7)), zap.NewNop())
	second := NewChartPoller(chartSource("btcinr", "1000"), "btcinr", rand.New(rand.NewSource(7)), zap.NewNop())

	require.NoError(t, first.Refresh(context.Background()))
	require.NoError(t, second.Refresh(context.Background()))
	assert.Equal(t, first.Series(), second.Series())
}

func TestChartRefreshMissingSymbolKeepsSeries(t *testing.T) {
	source := &scriptedSource{responses: []func() ([]domain.Ticker, error){
		ok([]domain.Ticker{{Symbol: "btcinr", BaseAsset: "btc", QuoteAsset: "inr", LastPrice: "1000"}}),
		ok([]domain.Ticker{{Symbol: "ethinr", BaseAsset: "eth", QuoteAsset: "inr", LastPrice: "50"}}),
	}}
	poller := NewChartPoller(source, "btcinr", rand.New(rand.NewSource(1)), zap.NewNop())

	require.NoError(t, poller.Refresh(context.Background()))
	before := poller.Series()

	err := poller.Refresh(context.Background())
	require.Error(t, err, "tracked symbol vanished from the feed")
	assert.Equal(t, before, poller.Series())
	assert.EqualValues(t, 1, poller.Version())
}

func TestChartSymbolSwitchDiscardsInFlightResult(t *testing.T) {
	poller := NewChartPoller(nil, "btcinr", rand.New(rand.NewSource(1)), zap.NewNop())
	source := &scriptedSource{responses: []func() ([]domain.Ticker, error){
		func() ([]domain.Ticker, error) {
			// User switches the chart while this fetch is in flight.
			poller.SetSymbol("ethinr")
			return []domain.Ticker{{Symbol: "btcinr", BaseAsset: "btc", QuoteAsset: "inr", LastPrice: "1000"}}, nil
		},
	}}
	poller.source = source

	require.NoError(t, poller.Refresh(context.Background()))
	assert.Empty(t, poller.Series(), "stale symbol's series must not be applied")
	assert.EqualValues(t, 0, poller.Version())
	assert.Equal(t, "ethinr", poller.Symbol())
}
