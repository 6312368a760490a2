package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name     string
		open     string
		last     string
		expected string
	}{
		{
			name:     "ten percent gain",
			open:     "100",
			last:     "110",
			expected: "10",
		},
		{
			name:     "loss",
			open:     "200",
			last:     "190",
			expected: "-5",
		},
		{
			name:     "zero open price guards division",
			open:     "0",
			last:     "110",
			expected: "0",
		},
		{
			name:     "unparsable open treated as zero change",
			open:     "n/a",
			last:     "110",
			expected: "0",
		},
		{
			name:     "unparsable last treated as zero change",
			open:     "100",
			last:     "",
			expected: "0",
		},
		{
			name:     "unchanged",
			open:     "42.5",
			last:     "42.5",
			expected: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticker := Ticker{OpenPrice: tt.open, LastPrice: tt.last}
			expected, err := decimal.NewFromString(tt.expected)
			require.NoError(t, err)
			assert.True(t, ticker.PercentChange().Equal(expected),
				"got %s, want %s", ticker.PercentChange(), expected)
		})
	}
}

func TestLast(t *testing.T) {
	ticker := Ticker{LastPrice: "123.45"}
	assert.True(t, ticker.Last().Equal(decimal.RequireFromString("123.45")))

	broken := Ticker{LastPrice: "oops"}
	assert.True(t, broken.Last().IsZero())
}

func TestSnapshotLookups(t *testing.T) {
	snap := &Snapshot{Tickers: []Ticker{
		{Symbol: "btcinr", BaseAsset: "btc", QuoteAsset: "inr"},
		{Symbol: "ethinr", BaseAsset: "eth", QuoteAsset: "inr"},
		{Symbol: "btcusdt", BaseAsset: "btc", QuoteAsset: "usdt"},
	}}

	require.NotNil(t, snap.FindSymbol("ethinr"))
	assert.Nil(t, snap.FindSymbol("ETHINR"), "symbol lookup is exact")

	found := snap.FindBaseAsset("BTC")
	require.NotNil(t, found, "base asset lookup is case-insensitive")
	assert.Equal(t, "btcinr", found.Symbol, "first feed-order match wins")

	assert.Equal(t, []string{"inr", "usdt"}, snap.QuoteAssets())

	var nilSnap *Snapshot
	assert.Nil(t, nilSnap.FindSymbol("btcinr"))
	assert.Nil(t, nilSnap.FindBaseAsset("btc"))
}
