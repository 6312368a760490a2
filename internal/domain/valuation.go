package domain

import "github.com/shopspring/decimal"

// Holding is the user's owned quantity of one base asset. Holdings are owned
// by the backend ledger; the client only reads a snapshot of them.
type Holding struct {
	Asset    string
	Quantity decimal.Decimal
}

// ValuationRow is one priced holding. UnitPrice is zero when the current
// snapshot has no ticker for the asset.
type ValuationRow struct {
	Asset      string          `json:"asset"`
	Quantity   decimal.Decimal `json:"qty"`
	UnitPrice  decimal.Decimal `json:"price"`
	TotalValue decimal.Decimal `json:"totalValue"`
}

// Valuation is the derived portfolio view: ephemeral, recomputed on every
// holdings or snapshot change, never persisted.
type Valuation struct {
	Rows  []ValuationRow  `json:"rows"`
	Total decimal.Decimal `json:"total"`
}
