// Package market derives the displayed listing from a ticker snapshot and
// the user's filter state. Pure functions only: same inputs, same output.
package market

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mkfrx/desk/internal/domain"
)

// Apply filters and orders the snapshot for display.
//
// Steps, in order: quote-asset filter (exact, case-sensitive: quote strings
// come verbatim from the feed), case-insensitive substring search over base
// asset and symbol, then gainers/losers ordering by percent change. SortNone
// preserves feed order, and ties keep feed order too (stable sort).
func Apply(snap *domain.Snapshot, filter domain.FilterState) []domain.Ticker {
	if snap == nil {
		return nil
	}

	out := make([]domain.Ticker, 0, len(snap.Tickers))
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	for _, t := range snap.Tickers {
		if filter.QuoteAsset != "" && filter.QuoteAsset != domain.QuoteAll && t.QuoteAsset != filter.QuoteAsset {
			continue
		}
		if search != "" && !matchesSearch(&t, search) {
			continue
		}
		out = append(out, t)
	}

	if filter.Sort == domain.SortNone {
		return out
	}

	type ranked struct {
		ticker domain.Ticker
		change decimal.Decimal
	}
	rankedOut := make([]ranked, len(out))
	for i, t := range out {
		rankedOut[i] = ranked{ticker: t, change: t.PercentChange()}
	}

	sort.SliceStable(rankedOut, func(i, j int) bool {
		cmp := rankedOut[i].change.Cmp(rankedOut[j].change)
		if filter.Sort == domain.SortGainers {
			return cmp > 0
		}
		return cmp < 0
	})

	for i := range rankedOut {
		out[i] = rankedOut[i].ticker
	}
	return out
}

func matchesSearch(t *domain.Ticker, loweredSearch string) bool {
	return strings.Contains(strings.ToLower(t.BaseAsset), loweredSearch) ||
		strings.Contains(strings.ToLower(t.Symbol), loweredSearch)
}
