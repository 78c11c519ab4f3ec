package domain

import "time"

// Candle is a single OHLCV candle for an asset at a given interval.
type Candle struct {
	Symbol   string    `json:"symbol"`
	Interval string    `json:"interval"`
	OpenTime time.Time `json:"open_time"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
}

// TechnicalSummary holds indicator values computed from stored candles for one
// asset. Unlike the composite score inputs these are real series-derived
// numbers, not heuristics.
type TechnicalSummary struct {
	Symbol     string    `json:"symbol"`
	Interval   string    `json:"interval"`
	RSI14      float64   `json:"rsi_14"`
	MACDLine   float64   `json:"macd_line"`
	MACDSignal float64   `json:"macd_signal"`
	MACDHist   float64   `json:"macd_hist"`
	BBUpper    float64   `json:"bb_upper"`
	BBMiddle   float64   `json:"bb_middle"`
	BBLower    float64   `json:"bb_lower"`
	Support    float64   `json:"support"`
	Resistance float64   `json:"resistance"`
	Trend      string    `json:"trend"`
	ComputedAt time.Time `json:"computed_at"`
}

// SupportedIntervals defines the candle intervals we store.
var SupportedIntervals = []string{"5m", "15m", "1h", "4h", "1d"}
