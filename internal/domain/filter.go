package domain

// QuoteAll is the sentinel quote-asset selector matching every pair.
const QuoteAll = "ALL"

// SortMode controls the ordering of the market listing.
type SortMode int

const (
	SortNone SortMode = iota
	SortGainers
	SortLosers
)

const (
	sortStringNone    = "NONE"
	sortStringGainers = "GAINERS"
	sortStringLosers  = "LOSERS"
)

// String returns the string representation of the sort mode.
func (m SortMode) String() string {
	switch m {
	case SortGainers:
		return sortStringGainers
	case SortLosers:
		return sortStringLosers
	default:
		return sortStringNone
	}
}

// SortModeFromString parses a sort mode, defaulting to SortNone.
func SortModeFromString(s string) SortMode {
	switch s {
	case sortStringGainers:
		return SortGainers
	case sortStringLosers:
		return SortLosers
	default:
		return SortNone
	}
}

// FilterState is the user-controlled listing state. It is plain input data:
// it lives wherever the user interacts and is passed into the engine
// explicitly, never held as hidden global state.
type FilterState struct {
	QuoteAsset string
	Search     string
	Sort       SortMode
}

// DefaultFilter returns the state a fresh markets view starts with.
func DefaultFilter() FilterState {
	return FilterState{QuoteAsset: QuoteAll}
}
