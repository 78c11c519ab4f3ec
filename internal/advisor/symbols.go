package advisor

import (
	"strings"

	"coinsight/internal/domain"
)

// Full-name mentions users type instead of tickers.
var symbolAliases = map[string]string{
	"BITCOIN":   "BTC",
	"ETHEREUM":  "ETH",
	"ETHER":     "ETH",
	"SOLANA":    "SOL",
	"RENDER":    "RNDR",
	"CHAINLINK": "LINK",
	"POLYGON":   "MATIC",
}

// ExtractSymbols scans the user message for mentions of tracked crypto
// assets, by ticker or full name. Returns deduplicated uppercase symbols in
// order of first mention.
func ExtractSymbols(text string) []string {
	upper := strings.ToUpper(text)
	words := strings.FieldsFunc(upper, func(r rune) bool {
		return !((r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'))
	})

	seen := make(map[string]bool)
	var result []string
	for _, w := range words {
		if alias, ok := symbolAliases[w]; ok {
			w = alias
		}
		if domain.IsSupported(w) && !seen[w] {
			seen[w] = true
			result = append(result, w)
		}
	}
	return result
}
