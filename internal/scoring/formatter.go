package scoring

import (
	"fmt"
	"strings"
	"time"

	"coinsight/internal/domain"
)

// PhaseStrategy names the playbook for each market phase.
var PhaseStrategy = map[domain.MarketPhase]string{
	domain.PhaseBearMarket: "ACCUMULATE",
	domain.PhaseEarlyBull:  "BUILD_POSITIONS",
	domain.PhaseMidBull:    "DIVERSIFY",
	domain.PhaseLateBull:   "TAKE_PROFITS",
}

// phaseBestAssets are the leaders favored in each phase; alignment raises
// confidence slightly.
var phaseBestAssets = map[domain.MarketPhase][]string{
	domain.PhaseBearMarket: {"BTC", "ETH"},
	domain.PhaseEarlyBull:  {"BTC", "ETH", "LINK"},
	domain.PhaseMidBull:    {"ETH", "SOL"},
	domain.PhaseLateBull:   {},
}

var phaseTimeHorizon = map[domain.MarketPhase]string{
	domain.PhaseBearMarket: "6-12 months",
	domain.PhaseEarlyBull:  "3-6 months",
	domain.PhaseMidBull:    "1-3 months",
	domain.PhaseLateBull:   "2-4 weeks",
}

var allocationBase = map[domain.RiskProfile]float64{
	domain.ProfileConservative: 0.10,
	domain.ProfileModerate:     0.15,
	domain.ProfileAggressive:   0.25,
}

var phaseAllocationMult = map[domain.MarketPhase]float64{
	domain.PhaseBearMarket: 1.2,
	domain.PhaseEarlyBull:  1.1,
	domain.PhaseMidBull:    1.0,
	domain.PhaseLateBull:   0.8,
}

// BuildRecommendations turns ranked scores into the final recommendation
// set for one risk profile: allocation sizing, price targets, reasoning and
// confidence filtering, top five entries.
func BuildRecommendations(scored []domain.ScoredAsset, snapshot *domain.MarketSnapshot, profile domain.RiskProfile) *domain.RecommendationSet {
	fearGreed := 50
	isReal := false
	if snapshot != nil {
		fearGreed = snapshot.Sentiment.FearGreedIndex
		isReal = snapshot.IsRealData
	}
	phase := PhaseFor(fearGreed)

	set := &domain.RecommendationSet{
		Phase:       phase,
		Strategy:    PhaseStrategy[phase],
		FearGreed:   fearGreed,
		RiskProfile: profile,
		IsRealData:  isReal,
		GeneratedAt: time.Now(),
	}

	for _, asset := range scored {
		kb, ok := AssetProfiles[asset.Symbol]
		if !ok {
			continue
		}

		confidence := confidenceFor(asset, phase)
		if confidence < 60 {
			continue
		}

		set.Entries = append(set.Entries, domain.RecommendationEntry{
			Symbol:        asset.Symbol,
			Name:          asset.Name,
			Action:        asset.Recommendation,
			Score:         asset.CompositeScore,
			AllocationPct: allocationFor(profile, phase),
			PriceTarget:   priceTargetFor(kb, profile, phase),
			TimeHorizon:   phaseTimeHorizon[phase],
			RiskLevel:     asset.RiskLevel,
			Catalysts:     kb.Catalysts,
			Reasoning:     reasoningFor(asset, kb, phase),
			Confidence:    confidence,
		})
		if len(set.Entries) == 5 {
			break
		}
	}

	return set
}

func confidenceFor(asset domain.ScoredAsset, phase domain.MarketPhase) float64 {
	confidence := asset.CompositeScore
	if isPhaseLeader(asset.Symbol, phase) {
		confidence += 10
	}
	if phase == domain.PhaseBearMarket && asset.RiskLevel == domain.RiskVeryHigh {
		confidence -= 15
	}
	return clamp(confidence, 30, 95)
}

func isPhaseLeader(symbol string, phase domain.MarketPhase) bool {
	for _, s := range phaseBestAssets[phase] {
		if s == symbol {
			return true
		}
	}
	return false
}

// allocationFor sizes a position as a percentage of the portfolio.
func allocationFor(profile domain.RiskProfile, phase domain.MarketPhase) float64 {
	base, ok := allocationBase[profile]
	if !ok {
		base = allocationBase[domain.ProfileModerate]
	}
	alloc := base * phaseAllocationMult[phase]
	if alloc > 0.40 {
		alloc = 0.40
	}
	return alloc * 100
}

func priceTargetFor(kb domain.AssetProfile, profile domain.RiskProfile, phase domain.MarketPhase) *domain.PriceTarget {
	target := kb.PriceTargets.ForProfile(profile)
	if target == 0 {
		return nil
	}
	switch phase {
	case domain.PhaseBearMarket:
		target *= 0.8
	case domain.PhaseLateBull:
		target *= 1.2
	}

	probability := 50.0
	switch profile {
	case domain.ProfileConservative:
		probability = 70
	case domain.ProfileAggressive:
		probability = 30
	}
	switch phase {
	case domain.PhaseEarlyBull:
		probability += 15
	case domain.PhaseBearMarket:
		probability -= 10
	}

	return &domain.PriceTarget{
		Target:      target,
		Timeframe:   phaseTimeHorizon[phase],
		Probability: clamp(probability, 10, 85),
	}
}

func reasoningFor(asset domain.ScoredAsset, kb domain.AssetProfile, phase domain.MarketPhase) string {
	var reasons []string
	if kb.FundamentalScore > 85 {
		reasons = append(reasons, fmt.Sprintf("Strong fundamentals (%.0f/100)", kb.FundamentalScore))
	}
	if asset.TechnicalScore > 75 {
		reasons = append(reasons, fmt.Sprintf("Positive technical signals (%.0f/100)", asset.TechnicalScore))
	}
	if kb.AdoptionScore > 80 {
		reasons = append(reasons, fmt.Sprintf("High institutional adoption (%.0f/100)", kb.AdoptionScore))
	}
	if phase == domain.PhaseEarlyBull && (asset.Symbol == "BTC" || asset.Symbol == "ETH") {
		reasons = append(reasons, "Early bull phase favors market leaders")
	}
	if len(kb.Narratives) > 0 {
		top := kb.Narratives
		if len(top) > 2 {
			top = top[:2]
		}
		reasons = append(reasons, "Active narratives: "+strings.Join(top, ", "))
	}
	return strings.Join(reasons, " • ")
}
