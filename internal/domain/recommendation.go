package domain

import "time"

// Recommendation is the action class derived from an asset's composite score.
type Recommendation string

const (
	StrongBuy Recommendation = "STRONG_BUY"
	Buy       Recommendation = "BUY"
	Hold      Recommendation = "HOLD"
	WeakHold  Recommendation = "WEAK_HOLD"
	Avoid     Recommendation = "AVOID"
)

// MarketPhase is the market-cycle bucket derived from the fear & greed index.
type MarketPhase string

const (
	PhaseBearMarket MarketPhase = "BEAR_MARKET"
	PhaseEarlyBull  MarketPhase = "EARLY_BULL"
	PhaseMidBull    MarketPhase = "MID_BULL"
	PhaseLateBull   MarketPhase = "LATE_BULL"
)

// ScoredAsset pairs one asset's live quote with its knowledge-base profile and
// the derived scores.
type ScoredAsset struct {
	Symbol         string         `json:"symbol"`
	Name           string         `json:"name"`
	Category       string         `json:"category"`
	CurrentPrice   float64        `json:"current_price"`
	Momentum       float64        `json:"momentum"`
	LiquidityRatio float64        `json:"liquidity_ratio"`
	TechnicalScore float64        `json:"technical_score"`
	CompositeScore float64        `json:"composite_score"`
	Recommendation Recommendation `json:"recommendation"`
	RiskLevel      RiskLevel      `json:"risk_level"`
}

// PriceTarget is one recommendation's upside target with a rough probability
// and timeframe attached.
type PriceTarget struct {
	Target      float64 `json:"target"`
	Timeframe   string  `json:"timeframe"`
	Probability float64 `json:"probability"`
}

// RecommendationEntry is one ranked row of a RecommendationSet.
type RecommendationEntry struct {
	Symbol        string         `json:"symbol"`
	Name          string         `json:"name"`
	Action        Recommendation `json:"action"`
	Score         float64        `json:"score"`
	AllocationPct float64        `json:"allocation_pct"`
	PriceTarget   *PriceTarget   `json:"price_target,omitempty"`
	TimeHorizon   string         `json:"time_horizon"`
	RiskLevel     RiskLevel      `json:"risk_level"`
	Catalysts     []string       `json:"catalysts,omitempty"`
	Reasoning     string         `json:"reasoning"`
	Confidence    float64        `json:"confidence"`
}

// RecommendationSet is the formatter's output: up to five entries ranked by
// composite score descending, plus the market context they were produced in.
type RecommendationSet struct {
	Phase       MarketPhase           `json:"phase"`
	Strategy    string                `json:"strategy"`
	FearGreed   int                   `json:"fear_greed"`
	RiskProfile RiskProfile           `json:"risk_profile"`
	IsRealData  bool                  `json:"is_real_data"`
	GeneratedAt time.Time             `json:"generated_at"`
	Entries     []RecommendationEntry `json:"entries"`
}
