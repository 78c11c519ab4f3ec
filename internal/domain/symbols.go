package domain

// SupportedSymbols lists all tracked crypto symbols, in display order.
var SupportedSymbols = []string{"BTC", "ETH", "SOL", "RNDR", "LINK", "MATIC"}

// CoinGeckoID maps internal symbols to CoinGecko API identifiers.
var CoinGeckoID = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"RNDR":  "render-token",
	"LINK":  "chainlink",
	"MATIC": "matic-network",
}

// CoinCapID maps internal symbols to CoinCap asset identifiers.
var CoinCapID = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"RNDR":  "render-token",
	"LINK":  "chainlink",
	"MATIC": "polygon",
}

// BinancePair maps internal symbols to Binance spot trading pairs.
var BinancePair = map[string]string{
	"BTC":   "BTCUSDT",
	"ETH":   "ETHUSDT",
	"SOL":   "SOLUSDT",
	"RNDR":  "RNDRUSDT",
	"LINK":  "LINKUSDT",
	"MATIC": "MATICUSDT",
}

// DerivativesSymbols is the subset of tracked assets with liquid perpetual
// markets on every derivatives venue we poll.
var DerivativesSymbols = []string{"BTC", "ETH", "SOL"}

// OKXSwapInstrument maps internal symbols to OKX perpetual instrument IDs.
// Bybit and Binance futures share the spot pair naming in BinancePair.
var OKXSwapInstrument = map[string]string{
	"BTC": "BTC-USDT-SWAP",
	"ETH": "ETH-USDT-SWAP",
	"SOL": "SOL-USDT-SWAP",
}

// CoinGeckoIDToSymbol is the reverse of CoinGeckoID.
var CoinGeckoIDToSymbol map[string]string

// CoinCapIDToSymbol is the reverse of CoinCapID.
var CoinCapIDToSymbol map[string]string

func init() {
	CoinGeckoIDToSymbol = make(map[string]string, len(CoinGeckoID))
	for sym, id := range CoinGeckoID {
		CoinGeckoIDToSymbol[id] = sym
	}
	CoinCapIDToSymbol = make(map[string]string, len(CoinCapID))
	for sym, id := range CoinCapID {
		CoinCapIDToSymbol[id] = sym
	}
}

// IsSupported reports whether symbol is in the tracked set.
func IsSupported(symbol string) bool {
	_, ok := CoinGeckoID[symbol]
	return ok
}
