package domain

import "time"

// AssetQuote is one asset's market state at a point in time, normalized from
// whichever upstream source produced it. Quotes are immutable once built; each
// aggregation cycle produces a fresh set.
type AssetQuote struct {
	Symbol       string    `json:"symbol"`
	PriceUSD     float64   `json:"price_usd"`
	Change24hPct float64   `json:"change_24h_pct"`
	Volume24hUSD float64   `json:"volume_24h_usd"`
	MarketCapUSD float64   `json:"market_cap_usd"`
	LastUpdated  time.Time `json:"last_updated"`
}

// MarketSentiment bundles the global market-mood indicators that come from
// Alternative.me and the CoinGecko /global endpoint.
type MarketSentiment struct {
	FearGreedIndex          int     `json:"fear_greed_index"`
	FearGreedClassification string  `json:"fear_greed_classification"`
	BTCDominancePct         float64 `json:"btc_dominance_pct"`
	ETHDominancePct         float64 `json:"eth_dominance_pct"`
	TotalMarketCapUSD       float64 `json:"total_market_cap_usd"`
	TotalVolume24hUSD       float64 `json:"total_volume_24h_usd"`
}

// MarketSnapshot is the unit one aggregation cycle produces. It is immutable
// once constructed: partial upstream failures are papered over with fallback
// values, never left as zero-valued holes, and IsRealData is false only when
// every quote source failed and the static fallback set was substituted.
type MarketSnapshot struct {
	Quotes     map[string]AssetQuote `json:"quotes"`
	Sentiment  MarketSentiment       `json:"sentiment"`
	IsRealData bool                  `json:"is_real_data"`
	Sources    []string              `json:"sources"`
	FetchedAt  time.Time             `json:"fetched_at"`
}

// Quote returns the snapshot's quote for symbol, or a zero-valued quote when
// the symbol is missing. Scoring treats a zero quote as a weak asset, not an
// error.
func (s *MarketSnapshot) Quote(symbol string) AssetQuote {
	if s == nil || s.Quotes == nil {
		return AssetQuote{Symbol: symbol}
	}
	q, ok := s.Quotes[symbol]
	if !ok {
		return AssetQuote{Symbol: symbol}
	}
	return q
}

// ClassifyFearGreed maps a 0-100 fear & greed value to the standard
// Alternative.me label set using fixed thresholds.
func ClassifyFearGreed(value int) string {
	switch {
	case value >= 75:
		return "Extreme Greed"
	case value >= 55:
		return "Greed"
	case value >= 45:
		return "Neutral"
	case value >= 25:
		return "Fear"
	default:
		return "Extreme Fear"
	}
}
