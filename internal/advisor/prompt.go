package advisor

import (
	"fmt"
	"strings"
	"time"

	"coinsight/internal/domain"
)

const advisorPhilosophy = `You are a crypto investment advisor bot. Your role is to interpret market data, scores, and ranked recommendations, NOT to invent numbers yourself.

Scoring framework:
- Composite score 0-100 blends fundamentals (40%), technicals (30%), adoption (20%), and development (10%).
- Actions map from the composite score: STRONG_BUY >= 85, BUY >= 70, HOLD >= 55, WEAK_HOLD >= 40, otherwise AVOID.
- The market phase (BEAR_MARKET through LATE_BULL) comes from the Fear & Greed index and drives allocation sizing.

Rules:
- Always reference the provided scores and prices when making observations.
- Never fabricate data. If the context says fallback data is in use, tell the user the numbers are indicative only.
- Include the risk level when discussing any asset.
- Keep responses concise and actionable. You are talking via Telegram.
- Do not provide financial advice disclaimers on every message. The user understands this is informational.
- When asked about an asset, summarize: current price, score, action, and your interpretation.
- Only discuss assets present in the context. If an asset is not tracked, say so honestly.`

func BuildSystemPrompt(marketContext string) string {
	var sb strings.Builder
	sb.WriteString(advisorPhilosophy)
	sb.WriteString("\n\n--- LIVE MARKET DATA (as of ")
	sb.WriteString(time.Now().UTC().Format(time.RFC822))
	sb.WriteString(") ---\n")
	sb.WriteString(marketContext)
	return sb.String()
}

// FormatMarketContext renders the snapshot and recommendation set as plain
// text for the system prompt. When the user mentioned specific symbols only
// those quotes are included, otherwise the full tracked set.
func FormatMarketContext(snapshot *domain.MarketSnapshot, recs *domain.RecommendationSet, symbols []string) string {
	var sb strings.Builder

	if len(symbols) == 0 {
		symbols = domain.SupportedSymbols
	}

	if snapshot != nil {
		if !snapshot.IsRealData {
			sb.WriteString("\nNOTE: all upstream sources are down, figures below are static fallback values.\n")
		}
		sb.WriteString("\nCurrent Prices:\n")
		for _, sym := range symbols {
			q := snapshot.Quote(sym)
			sb.WriteString(fmt.Sprintf("  %s: $%.2f (24h: %+.2f%%, vol: $%.0f)\n",
				q.Symbol, q.PriceUSD, q.Change24hPct, q.Volume24hUSD))
		}
		sb.WriteString(fmt.Sprintf("\nSentiment: Fear & Greed %d (%s), BTC dominance %.1f%%\n",
			snapshot.Sentiment.FearGreedIndex,
			snapshot.Sentiment.FearGreedClassification,
			snapshot.Sentiment.BTCDominancePct))
	}

	if recs != nil {
		sb.WriteString(fmt.Sprintf("\nMarket Phase: %s, strategy: %s\n", recs.Phase, recs.Strategy))
		if len(recs.Entries) > 0 {
			sb.WriteString("\nRanked Recommendations:\n")
			for i, e := range recs.Entries {
				sb.WriteString(fmt.Sprintf("  %d. %s (%s) %s score=%.0f allocation=%.0f%% risk=%s confidence=%.0f%%\n",
					i+1, e.Name, e.Symbol, e.Action, e.Score, e.AllocationPct, e.RiskLevel, e.Confidence))
			}
		}
	}

	if sb.Len() == 0 {
		return "No market data currently available."
	}
	return sb.String()
}

// TemplatedReply builds a deterministic answer from the recommendation set.
// Used whenever no LLM is configured or the LLM call fails.
func TemplatedReply(recs *domain.RecommendationSet) string {
	if recs == nil {
		return "Market analysis is temporarily unavailable. Please try again in a moment."
	}

	var sb strings.Builder

	topConfidence := 0.0
	if len(recs.Entries) > 0 {
		topConfidence = recs.Entries[0].Confidence
	}

	switch {
	case topConfidence > 85:
		sb.WriteString("*HIGH-CONFIDENCE MARKET ANALYSIS*")
	case topConfidence > 70:
		sb.WriteString("*MARKET ANALYSIS*")
	default:
		sb.WriteString("*CAUTIOUS MARKET ANALYSIS*")
	}
	if recs.IsRealData {
		sb.WriteString(" (live data)\n\n")
	} else {
		sb.WriteString(" (fallback data)\n\n")
	}

	sb.WriteString(fmt.Sprintf("Phase: %s (Fear & Greed: %d)\n", recs.Phase, recs.FearGreed))
	sb.WriteString(fmt.Sprintf("Strategy: %s\n\n", recs.Strategy))

	if len(recs.Entries) == 0 {
		sb.WriteString("No asset currently clears the confidence bar. Patience and selectivity recommended.\n")
	} else {
		sb.WriteString("*Top picks:*\n")
		top := recs.Entries
		if len(top) > 3 {
			top = top[:3]
		}
		for i, e := range top {
			sb.WriteString(fmt.Sprintf("%d. *%s (%s)*\n", i+1, e.Name, e.Symbol))
			sb.WriteString(fmt.Sprintf("   Action: %s (score %.0f/100)\n", e.Action, e.Score))
			sb.WriteString(fmt.Sprintf("   Allocation: %.0f%% of portfolio\n", e.AllocationPct))
			if e.PriceTarget != nil {
				sb.WriteString(fmt.Sprintf("   Target: $%.0f (%.0f%% prob., %s)\n",
					e.PriceTarget.Target, e.PriceTarget.Probability, e.PriceTarget.Timeframe))
			}
			sb.WriteString(fmt.Sprintf("   Risk: %s, confidence %.0f%%\n", e.RiskLevel, e.Confidence))
			sb.WriteString(fmt.Sprintf("   Why: %s\n\n", e.Reasoning))
		}
	}

	sb.WriteString("*Risk management:*\n")
	if topConfidence < 60 {
		sb.WriteString("- Uncertain market, keep positions small and average in gradually\n")
	} else {
		sb.WriteString("- Never invest more than you can afford to lose\n")
		sb.WriteString("- Keep single-asset exposure under 40%\n")
	}
	sb.WriteString("- Reassess weekly as the phase shifts\n")

	return sb.String()
}
