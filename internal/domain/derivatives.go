package domain

import "time"

// ExchangeFundingRate is one exchange's current funding view for a perpetual
// contract. RatePct is the funding rate in percent per funding interval.
type ExchangeFundingRate struct {
	Symbol      string    `json:"symbol"`
	RatePct     float64   `json:"rate_pct"`
	MarkPrice   float64   `json:"mark_price,omitempty"`
	NextFunding time.Time `json:"next_funding,omitempty"`
	Exchange    string    `json:"exchange"`
}

// FundingSummary merges funding rates across exchanges for one symbol. A
// persistently positive rate means longs pay shorts (bullish crowding), a
// negative one the reverse.
type FundingSummary struct {
	Symbol     string                `json:"symbol"`
	AvgRatePct float64               `json:"avg_rate_pct"`
	MaxRatePct float64               `json:"max_rate_pct"`
	MinRatePct float64               `json:"min_rate_pct"`
	AlertLevel string                `json:"alert_level"`
	Rates      []ExchangeFundingRate `json:"rates"`
}

// ExchangeOpenInterest is one exchange's open interest for a perpetual,
// in contracts of the base asset.
type ExchangeOpenInterest struct {
	Symbol    string  `json:"symbol"`
	Contracts float64 `json:"contracts"`
	ValueUSD  float64 `json:"value_usd,omitempty"`
	Exchange  string  `json:"exchange"`
}

// OpenInterestSummary aggregates open interest across exchanges for one
// symbol. ChangePct compares against the previous poll cycle and is zero on
// the first observation.
type OpenInterestSummary struct {
	Symbol         string                 `json:"symbol"`
	TotalContracts float64                `json:"total_contracts"`
	TotalValueUSD  float64                `json:"total_value_usd"`
	ChangePct      float64                `json:"change_pct"`
	Trend          string                 `json:"trend"`
	Entries        []ExchangeOpenInterest `json:"entries"`
}

// DerivativesAlert flags a notable funding condition worth surfacing to the
// user: crowded longs, crowded shorts, or cross-exchange divergence.
type DerivativesAlert struct {
	Type     string `json:"type"`
	Symbol   string `json:"symbol"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// DerivativesSnapshot is the merged funding and open-interest view across
// all reachable derivatives exchanges.
type DerivativesSnapshot struct {
	Funding      []FundingSummary      `json:"funding"`
	OpenInterest []OpenInterestSummary `json:"open_interest"`
	Alerts       []DerivativesAlert    `json:"alerts"`
	Exchanges    []string              `json:"exchanges"`
	FetchedAt    time.Time             `json:"fetched_at"`
}

// FundingAlertLevel grades an absolute funding rate in percent. 0.01% per
// 8h is the neutral baseline; anything past 0.1% marks an overheated market.
func FundingAlertLevel(ratePct float64) string {
	abs := ratePct
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 0.1:
		return "CRITICAL"
	case abs >= 0.05:
		return "HIGH"
	case abs >= 0.02:
		return "MEDIUM"
	default:
		return "NORMAL"
	}
}
