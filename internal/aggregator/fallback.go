package aggregator

import (
	"time"

	"coinsight/internal/domain"
)

// Static dataset served when every live source is down. Values are plausible
// but stale by construction; snapshots built from them are flagged as not
// real.
var fallbackQuoteData = []domain.AssetQuote{
	{Symbol: "BTC", PriceUSD: 43250, Change24hPct: 2.1, Volume24hUSD: 2.8e10, MarketCapUSD: 8.5e11},
	{Symbol: "ETH", PriceUSD: 2680, Change24hPct: 1.8, Volume24hUSD: 1.2e10, MarketCapUSD: 3.2e11},
	{Symbol: "SOL", PriceUSD: 98, Change24hPct: -0.5, Volume24hUSD: 8e8, MarketCapUSD: 4.5e10},
	{Symbol: "RNDR", PriceUSD: 7.85, Change24hPct: 3.2, Volume24hUSD: 5e7, MarketCapUSD: 4e9},
	{Symbol: "LINK", PriceUSD: 15.50, Change24hPct: 1.5, Volume24hUSD: 4e8, MarketCapUSD: 8e9},
	{Symbol: "MATIC", PriceUSD: 0.85, Change24hPct: 2.8, Volume24hUSD: 3e8, MarketCapUSD: 7e9},
}

var fallbackSentiment = domain.MarketSentiment{
	FearGreedIndex:          50,
	FearGreedClassification: "Neutral",
	BTCDominancePct:         42,
	ETHDominancePct:         15,
	TotalMarketCapUSD:       1.5e12,
	TotalVolume24hUSD:       5e10,
}

// FallbackQuotes returns a fresh copy of the static quote set, stamped now.
func FallbackQuotes() map[string]domain.AssetQuote {
	now := time.Now()
	out := make(map[string]domain.AssetQuote, len(fallbackQuoteData))
	for _, q := range fallbackQuoteData {
		q.LastUpdated = now
		out[q.Symbol] = q
	}
	return out
}

// FallbackSentiment returns the static sentiment figures.
func FallbackSentiment() domain.MarketSentiment {
	return fallbackSentiment
}
