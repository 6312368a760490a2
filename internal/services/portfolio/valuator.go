// Package portfolio combines ledger-owned holdings with the latest ticker
// snapshot into a valuation view. Pure derivation: inputs are never mutated
// and equal inputs always produce the same rows.
package portfolio

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mkfrx/desk/internal/domain"
)

// Valuate prices every positive holding against the snapshot.
//
// Holdings with quantity <= 0 are dropped. An asset without a matching
// ticker (case-insensitive base-asset lookup) stays in the output priced at
// zero: the user still owns it, the feed just cannot price it right now.
// Rows come back asset-sorted so the derivation is deterministic.
func Valuate(holdings map[string]decimal.Decimal, snap *domain.Snapshot) domain.Valuation {
	rows := make([]domain.ValuationRow, 0, len(holdings))
	total := decimal.Zero

	for asset, qty := range holdings {
		if qty.LessThanOrEqual(decimal.Zero) {
			continue
		}

		unit := decimal.Zero
		if t := snap.FindBaseAsset(asset); t != nil {
			unit = t.Last()
		}

		value := qty.Mul(unit)
		rows = append(rows, domain.ValuationRow{
			Asset:      strings.ToUpper(asset),
			Quantity:   qty,
			UnitPrice:  unit,
			TotalValue: value,
		})
		total = total.Add(value)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Asset < rows[j].Asset })

	return domain.Valuation{Rows: rows, Total: total}
}
