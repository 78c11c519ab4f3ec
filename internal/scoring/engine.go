package scoring

import (
	"math"
	"sort"

	"coinsight/internal/domain"
	"coinsight/internal/ta"
)

// Engine turns a market snapshot into ranked asset scores. All inputs are
// explicit; identical snapshots always score identically.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// TechnicalScore grades short-term conditions for one asset from its 24h
// momentum, traded volume and position relative to the given price levels.
// Zero levels fall back to a synthetic band around the current price, which
// contributes nothing either way.
func TechnicalScore(quote domain.AssetQuote, levels ta.PriceLevels) float64 {
	score := 50.0

	change := quote.Change24hPct
	switch {
	case change > 5:
		score += 20
	case change > 2:
		score += 10
	case change < -5:
		score -= 20
	case change < -2:
		score -= 10
	}

	score += math.Min(30, quote.Volume24hUSD/1_000_000)

	price := quote.PriceUSD
	support := levels.Support
	resistance := levels.Resistance
	if support == 0 {
		support = price * 0.95
	}
	if resistance == 0 {
		resistance = price * 1.05
	}
	if price > 0 {
		if (price-support)/price < 0.02 {
			score += 15
		}
		if (resistance-price)/price < 0.02 {
			score -= 10
		}
	}

	if change > 0 {
		score += 5
	}

	return clamp(score, 0, 100)
}

// CompositeScore blends the static knowledge-base scores with the live
// technical score.
func CompositeScore(profile domain.AssetProfile, technical float64) float64 {
	return profile.FundamentalScore*0.4 +
		technical*0.3 +
		profile.AdoptionScore*0.2 +
		profile.DevelopmentScore*0.1
}

// RecommendationFor maps a composite score to an action class.
func RecommendationFor(composite float64) domain.Recommendation {
	switch {
	case composite >= 85:
		return domain.StrongBuy
	case composite >= 70:
		return domain.Buy
	case composite >= 55:
		return domain.Hold
	case composite >= 40:
		return domain.WeakHold
	default:
		return domain.Avoid
	}
}

// PhaseFor maps the fear & greed index to a market-cycle phase.
func PhaseFor(fearGreed int) domain.MarketPhase {
	switch {
	case fearGreed < 25:
		return domain.PhaseBearMarket
	case fearGreed < 45:
		return domain.PhaseEarlyBull
	case fearGreed < 75:
		return domain.PhaseMidBull
	default:
		return domain.PhaseLateBull
	}
}

// Score grades every supported asset in the snapshot, ranked by composite
// score descending with the symbol as tiebreaker. levels may be nil or
// partial; missing assets use the synthetic band.
func (e *Engine) Score(snapshot *domain.MarketSnapshot, levels map[string]ta.PriceLevels) []domain.ScoredAsset {
	scored := make([]domain.ScoredAsset, 0, len(AssetProfiles))
	for _, sym := range domain.SupportedSymbols {
		profile, ok := AssetProfiles[sym]
		if !ok {
			continue
		}
		quote := snapshot.Quote(sym)

		technical := TechnicalScore(quote, levels[sym])
		composite := CompositeScore(profile, technical)

		liquidity := 0.0
		if quote.MarketCapUSD > 0 {
			liquidity = quote.Volume24hUSD / quote.MarketCapUSD
		}

		scored = append(scored, domain.ScoredAsset{
			Symbol:         sym,
			Name:           profile.Name,
			Category:       profile.Category,
			CurrentPrice:   quote.PriceUSD,
			Momentum:       quote.Change24hPct,
			LiquidityRatio: liquidity,
			TechnicalScore: technical,
			CompositeScore: composite,
			Recommendation: RecommendationFor(composite),
			RiskLevel:      profile.RiskLevel,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].CompositeScore != scored[j].CompositeScore {
			return scored[i].CompositeScore > scored[j].CompositeScore
		}
		return scored[i].Symbol < scored[j].Symbol
	})
	return scored
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
