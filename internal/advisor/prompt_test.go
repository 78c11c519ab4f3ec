package advisor

import (
	"strings"
	"testing"
	"time"

	"coinsight/internal/domain"
)

func TestBuildSystemPromptContainsPhilosophy(t *testing.T) {
	prompt := BuildSystemPrompt("some context")
	if !strings.Contains(prompt, "crypto investment advisor") {
		t.Fatal("expected advisor philosophy in prompt")
	}
	if !strings.Contains(prompt, "Scoring framework") {
		t.Fatal("expected scoring framework in prompt")
	}
	if !strings.Contains(prompt, "LIVE MARKET DATA") {
		t.Fatal("expected market data header in prompt")
	}
	if !strings.Contains(prompt, "some context") {
		t.Fatal("expected market context in prompt")
	}
}

func contextSnapshot() *domain.MarketSnapshot {
	return &domain.MarketSnapshot{
		Quotes: map[string]domain.AssetQuote{
			"BTC": {Symbol: "BTC", PriceUSD: 50000, Change24hPct: 2.5, Volume24hUSD: 1e9},
			"ETH": {Symbol: "ETH", PriceUSD: 3000, Change24hPct: -1.2, Volume24hUSD: 5e8},
		},
		Sentiment: domain.MarketSentiment{
			FearGreedIndex:          62,
			FearGreedClassification: "Greed",
			BTCDominancePct:         48.2,
		},
		IsRealData: true,
		FetchedAt:  time.Now(),
	}
}

func contextRecs() *domain.RecommendationSet {
	return &domain.RecommendationSet{
		Phase:       domain.PhaseMidBull,
		Strategy:    "DIVERSIFY",
		FearGreed:   62,
		RiskProfile: domain.ProfileModerate,
		IsRealData:  true,
		Entries: []domain.RecommendationEntry{
			{
				Symbol:        "BTC",
				Name:          "Bitcoin",
				Action:        domain.StrongBuy,
				Score:         91,
				AllocationPct: 15,
				TimeHorizon:   "1-3 months",
				RiskLevel:     domain.RiskLow,
				Reasoning:     "Strong fundamentals (95/100)",
				Confidence:    91,
				PriceTarget:   &domain.PriceTarget{Target: 75000, Timeframe: "1-3 months", Probability: 50},
			},
		},
	}
}

func TestFormatMarketContextMentionedSymbolsOnly(t *testing.T) {
	ctx := FormatMarketContext(contextSnapshot(), contextRecs(), []string{"BTC"})
	if !strings.Contains(ctx, "BTC: $50000.00") {
		t.Fatal("expected BTC price in context")
	}
	if strings.Contains(ctx, "ETH: $3000.00") {
		t.Fatal("did not expect ETH quote when only BTC was mentioned")
	}
	if !strings.Contains(ctx, "Fear & Greed 62 (Greed)") {
		t.Fatal("expected sentiment line in context")
	}
	if !strings.Contains(ctx, "Market Phase: MID_BULL") {
		t.Fatal("expected phase line in context")
	}
	if !strings.Contains(ctx, "STRONG_BUY score=91") {
		t.Fatal("expected ranked recommendation line in context")
	}
}

func TestFormatMarketContextAllSymbolsWhenNoneMentioned(t *testing.T) {
	ctx := FormatMarketContext(contextSnapshot(), nil, nil)
	if !strings.Contains(ctx, "BTC: $50000.00") || !strings.Contains(ctx, "ETH: $3000.00") {
		t.Fatal("expected all tracked quotes when no symbols mentioned")
	}
}

func TestFormatMarketContextFallbackNote(t *testing.T) {
	snap := contextSnapshot()
	snap.IsRealData = false
	ctx := FormatMarketContext(snap, nil, nil)
	if !strings.Contains(ctx, "static fallback values") {
		t.Fatal("expected fallback warning in context")
	}
}

func TestFormatMarketContextEmpty(t *testing.T) {
	ctx := FormatMarketContext(nil, nil, nil)
	if ctx != "No market data currently available." {
		t.Fatalf("expected fallback text, got: %s", ctx)
	}
}

func TestTemplatedReplyTopPicks(t *testing.T) {
	reply := TemplatedReply(contextRecs())
	if !strings.Contains(reply, "HIGH-CONFIDENCE MARKET ANALYSIS") {
		t.Fatal("expected high-confidence header")
	}
	if !strings.Contains(reply, "(live data)") {
		t.Fatal("expected live data marker")
	}
	if !strings.Contains(reply, "Bitcoin (BTC)") {
		t.Fatal("expected top pick")
	}
	if !strings.Contains(reply, "Target: $75000 (50% prob., 1-3 months)") {
		t.Fatal("expected price target line")
	}
	if !strings.Contains(reply, "under 40%") {
		t.Fatal("expected standard risk management lines")
	}
}

func TestTemplatedReplyNoEntries(t *testing.T) {
	recs := contextRecs()
	recs.Entries = nil
	recs.IsRealData = false
	reply := TemplatedReply(recs)
	if !strings.Contains(reply, "CAUTIOUS MARKET ANALYSIS") {
		t.Fatal("expected cautious header with no entries")
	}
	if !strings.Contains(reply, "(fallback data)") {
		t.Fatal("expected fallback data marker")
	}
	if !strings.Contains(reply, "No asset currently clears the confidence bar") {
		t.Fatal("expected empty-set message")
	}
	if !strings.Contains(reply, "average in gradually") {
		t.Fatal("expected low-confidence risk management line")
	}
}

func TestTemplatedReplyNilSet(t *testing.T) {
	reply := TemplatedReply(nil)
	if !strings.Contains(reply, "temporarily unavailable") {
		t.Fatalf("expected unavailable message, got %q", reply)
	}
}
