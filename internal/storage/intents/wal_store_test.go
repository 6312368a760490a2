package intents

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkfrx/desk/internal/domain"
)

func intent(side domain.Side, asset string, qty int64, price string) domain.TradeIntent {
	p, _ := decimal.NewFromString(price)
	return domain.TradeIntent{Side: side, Asset: asset, Quantity: qty, Price: p}
}

func TestRecordAndReadBack(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	start := store.CurrentIndex()
	require.NoError(t, store.Record(intent(domain.SideBuy, "btc", 2, "500.25"), "accepted", "sent to admin"))
	require.NoError(t, store.Record(intent(domain.SideSell, "eth", 10, "40"), "failed", "Network error occurred."))

	records, err := store.RecordsAfter(start)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "buy", records[0].Record.Side)
	assert.Equal(t, "btc", records[0].Record.Asset)
	assert.EqualValues(t, 2, records[0].Record.Quantity)
	assert.Equal(t, "500.25", records[0].Record.Price)
	assert.Equal(t, "accepted", records[0].Record.Status)
	assert.False(t, records[0].Record.At.IsZero())

	assert.Equal(t, "sell", records[1].Record.Side)
	assert.Equal(t, "failed", records[1].Record.Status)
	assert.Greater(t, records[1].Index, records[0].Index)
}

func TestRecordsAfterCurrentIndexIsEmpty(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Record(intent(domain.SideBuy, "btc", 1, "1"), "rejected", ""))

	records, err := store.RecordsAfter(store.CurrentIndex())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestJournalSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewWALStore(dir)
	require.NoError(t, err)
	start := store.CurrentIndex()
	require.NoError(t, store.Record(intent(domain.SideBuy, "sol", 5, "120"), "accepted", ""))
	require.NoError(t, store.Close())

	reopened, err := NewWALStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.RecordsAfter(start)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "sol", records[0].Record.Asset)
}

func TestUninitializedStore(t *testing.T) {
	var store *WALStore
	assert.Error(t, store.Record(intent(domain.SideBuy, "btc", 1, "1"), "accepted", ""))
	_, err := store.RecordsAfter(0)
	assert.Error(t, err)
	assert.Zero(t, store.CurrentIndex())
}
