package scoring

import "coinsight/internal/domain"

// AssetProfiles is the static knowledge base behind the fundamental,
// adoption and development components of the composite score. Prices move
// every cycle; these figures are revised by hand.
var AssetProfiles = map[string]domain.AssetProfile{
	"BTC": {
		Symbol:           "BTC",
		Name:             "Bitcoin",
		Category:         "Store of Value",
		FundamentalScore: 95,
		AdoptionScore:    98,
		DevelopmentScore: 85,
		RiskLevel:        domain.RiskLow,
		Narratives:       []string{"Digital Gold", "Inflation Hedge", "Institutional Adoption"},
		Catalysts:        []string{"ETF Approval", "Halving", "Institutional Buying"},
		PriceTargets:     domain.PriceTargets{Conservative: 50000, Moderate: 75000, Aggressive: 100000, Moonshot: 150000},
	},
	"ETH": {
		Symbol:           "ETH",
		Name:             "Ethereum",
		Category:         "Smart Contract Platform",
		FundamentalScore: 92,
		AdoptionScore:    94,
		DevelopmentScore: 98,
		RiskLevel:        domain.RiskMedium,
		Narratives:       []string{"Web3 Infrastructure", "DeFi Hub", "NFT Platform", "Ethereum 2.0"},
		Catalysts:        []string{"Shanghai Upgrade", "DeFi Growth", "Layer 2 Scaling"},
		PriceTargets:     domain.PriceTargets{Conservative: 3000, Moderate: 5000, Aggressive: 8000, Moonshot: 12000},
	},
	"SOL": {
		Symbol:           "SOL",
		Name:             "Solana",
		Category:         "High Performance Blockchain",
		FundamentalScore: 85,
		AdoptionScore:    82,
		DevelopmentScore: 90,
		RiskLevel:        domain.RiskHigh,
		Narratives:       []string{"Ethereum Killer", "High Speed DeFi", "NFT Platform", "Mobile First"},
		Catalysts:        []string{"Ecosystem Growth", "Institutional Adoption", "DeFi Innovation"},
		PriceTargets:     domain.PriceTargets{Conservative: 120, Moderate: 200, Aggressive: 350, Moonshot: 500},
	},
	"RNDR": {
		Symbol:           "RNDR",
		Name:             "Render Token",
		Category:         "AI & Rendering",
		FundamentalScore: 78,
		AdoptionScore:    65,
		DevelopmentScore: 85,
		RiskLevel:        domain.RiskVeryHigh,
		Narratives:       []string{"AI Revolution", "Metaverse Infrastructure", "GPU Rendering"},
		Catalysts:        []string{"AI Hype", "Metaverse Growth", "Partnership Announcements"},
		PriceTargets:     domain.PriceTargets{Conservative: 10, Moderate: 15, Aggressive: 25, Moonshot: 40},
	},
	"LINK": {
		Symbol:           "LINK",
		Name:             "Chainlink",
		Category:         "Oracle Network",
		FundamentalScore: 88,
		AdoptionScore:    90,
		DevelopmentScore: 92,
		RiskLevel:        domain.RiskMedium,
		Narratives:       []string{"Oracle Leader", "DeFi Infrastructure", "Real World Assets"},
		Catalysts:        []string{"CCIP Launch", "Staking V2", "Enterprise Adoption"},
		PriceTargets:     domain.PriceTargets{Conservative: 20, Moderate: 35, Aggressive: 60, Moonshot: 100},
	},
	"MATIC": {
		Symbol:           "MATIC",
		Name:             "Polygon",
		Category:         "Layer 2 Scaling",
		FundamentalScore: 84,
		AdoptionScore:    88,
		DevelopmentScore: 89,
		RiskLevel:        domain.RiskMedium,
		Narratives:       []string{"Ethereum Scaling", "DeFi Hub", "Enterprise Adoption"},
		Catalysts:        []string{"zkEVM Launch", "Polygon 2.0", "Web3 Gaming"},
		PriceTargets:     domain.PriceTargets{Conservative: 1.5, Moderate: 3.0, Aggressive: 5.0, Moonshot: 8.0},
	},
}
