package domain

// RiskLevel grades an asset's inherent risk in the static knowledge base.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskVeryHigh RiskLevel = "VERY_HIGH"
)

// RiskProfile is the caller-supplied investor risk tolerance used to pick
// allocation sizes and price-target tiers.
type RiskProfile string

const (
	ProfileConservative RiskProfile = "CONSERVATIVE"
	ProfileModerate     RiskProfile = "MODERATE"
	ProfileAggressive   RiskProfile = "AGGRESSIVE"
)

// ParseRiskProfile normalizes user input to a known profile, defaulting to
// MODERATE.
func ParseRiskProfile(v string) RiskProfile {
	switch RiskProfile(v) {
	case ProfileConservative, ProfileModerate, ProfileAggressive:
		return RiskProfile(v)
	default:
		return ProfileModerate
	}
}

// PriceTargets holds the tiered upside targets for one asset.
type PriceTargets struct {
	Conservative float64 `json:"conservative"`
	Moderate     float64 `json:"moderate"`
	Aggressive   float64 `json:"aggressive"`
	Moonshot     float64 `json:"moonshot"`
}

// ForProfile selects the target tier matching a risk profile.
func (t PriceTargets) ForProfile(p RiskProfile) float64 {
	switch p {
	case ProfileConservative:
		return t.Conservative
	case ProfileAggressive:
		return t.Aggressive
	default:
		return t.Moderate
	}
}

// AssetProfile is the static per-asset knowledge base entry. Loaded once at
// process start and read-only thereafter; only the technical score comes from
// live data.
type AssetProfile struct {
	Symbol           string       `json:"symbol"`
	Name             string       `json:"name"`
	Category         string       `json:"category"`
	FundamentalScore float64      `json:"fundamental_score"`
	AdoptionScore    float64      `json:"adoption_score"`
	DevelopmentScore float64      `json:"development_score"`
	RiskLevel        RiskLevel    `json:"risk_level"`
	Narratives       []string     `json:"narratives"`
	Catalysts        []string     `json:"catalysts"`
	PriceTargets     PriceTargets `json:"price_targets"`
}
