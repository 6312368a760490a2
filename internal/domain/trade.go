package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Side represents the direction of a trade request.
type Side int

const (
	SideBuy Side = iota
	SideSell
)

const (
	sideStringBuy  = "buy"
	sideStringSell = "sell"
)

// String returns the wire representation used in the ledger URL path.
func (s Side) String() string {
	if s == SideSell {
		return sideStringSell
	}
	return sideStringBuy
}

// SideFromString parses a trade side.
func SideFromString(s string) (Side, error) {
	switch s {
	case sideStringBuy:
		return SideBuy, nil
	case sideStringSell:
		return SideSell, nil
	}
	return SideBuy, fmt.Errorf("unknown trade side %q", s)
}

// TradeIntent is an unconfirmed buy/sell request at the last observed price.
// Once handed to the ledger the client holds no further state about it:
// approval happens asynchronously on the backend.
type TradeIntent struct {
	Side     Side
	Asset    string
	Quantity int64
	Price    decimal.Decimal
}

// String returns a human-readable representation.
func (t *TradeIntent) String() string {
	return fmt.Sprintf("%s %d %s @ %s", t.Side.String(), t.Quantity, t.Asset, t.Price.String())
}
