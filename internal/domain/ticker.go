// Package domain defines core data structures shared across the desk client.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Ticker is one symbol's point-in-time market quote as delivered by the
// MKfrx feed. Price fields are decimal strings taken verbatim from the wire.
type Ticker struct {
	Symbol     string `json:"symbol"`
	BaseAsset  string `json:"baseAsset"`
	QuoteAsset string `json:"quoteAsset"`
	OpenPrice  string `json:"openPrice"`
	LowPrice   string `json:"lowPrice"`
	HighPrice  string `json:"highPrice"`
	LastPrice  string `json:"lastPrice"`
	Volume     string `json:"volume"`
	BidPrice   string `json:"bidPrice"`
	AskPrice   string `json:"askPrice"`
	At         int64  `json:"at"`
}

// Last returns the last traded price, or zero when the field is malformed.
func (t *Ticker) Last() decimal.Decimal {
	last, err := decimal.NewFromString(t.LastPrice)
	if err != nil {
		return decimal.Zero
	}
	return last
}

// PercentChange returns (last-open)/open*100. A zero or unparsable open
// price yields zero instead of an error: the feed is live and occasionally
// malformed, and the listing must keep rendering.
func (t *Ticker) PercentChange() decimal.Decimal {
	open, err := decimal.NewFromString(t.OpenPrice)
	if err != nil || open.IsZero() {
		return decimal.Zero
	}
	last, err := decimal.NewFromString(t.LastPrice)
	if err != nil {
		return decimal.Zero
	}
	return last.Sub(open).Div(open).Mul(decimal.NewFromInt(100))
}

// Snapshot is the full ticker set retrieved in one poll. A new generation
// replaces the previous one wholesale; tickers keep feed order.
type Snapshot struct {
	Tickers []Ticker
	TakenAt time.Time
}

// FindSymbol returns the ticker with the exact symbol, or nil.
func (s *Snapshot) FindSymbol(symbol string) *Ticker {
	if s == nil {
		return nil
	}
	for i := range s.Tickers {
		if s.Tickers[i].Symbol == symbol {
			return &s.Tickers[i]
		}
	}
	return nil
}

// FindBaseAsset returns the first ticker whose base asset matches
// case-insensitively, or nil.
func (s *Snapshot) FindBaseAsset(asset string) *Ticker {
	if s == nil {
		return nil
	}
	for i := range s.Tickers {
		if strings.EqualFold(s.Tickers[i].BaseAsset, asset) {
			return &s.Tickers[i]
		}
	}
	return nil
}

// QuoteAssets returns the distinct quote assets in feed order.
func (s *Snapshot) QuoteAssets() []string {
	if s == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(s.Tickers))
	out := make([]string, 0, len(s.Tickers))
	for i := range s.Tickers {
		q := s.Tickers[i].QuoteAsset
		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}
		out = append(out, q)
	}
	return out
}
