package ta

import (
	"math"
	"sort"

	"coinsight/internal/domain"
)

// PriceLevels are the nearest support and resistance around a reference
// price, derived from recent candle extremes.
type PriceLevels struct {
	Support    float64
	Resistance float64
}

// SupportResistance picks support as the highest recent low below price and
// resistance as the lowest recent high above it. Returns zero levels when
// the candles give no band on that side.
func SupportResistance(candles []*domain.Candle, price float64) PriceLevels {
	var levels PriceLevels
	if len(candles) == 0 || price <= 0 {
		return levels
	}

	lows := make([]float64, 0, len(candles))
	highs := make([]float64, 0, len(candles))
	for _, c := range candles {
		if c.Low > 0 {
			lows = append(lows, c.Low)
		}
		if c.High > 0 {
			highs = append(highs, c.High)
		}
	}
	sort.Float64s(lows)
	sort.Float64s(highs)

	for i := len(lows) - 1; i >= 0; i-- {
		if lows[i] < price {
			levels.Support = lows[i]
			break
		}
	}
	for _, h := range highs {
		if h > price {
			levels.Resistance = h
			break
		}
	}
	return levels
}

// Latest returns the last non-NaN value of a series, or 0 if none exists.
func Latest(series []float64) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		if !math.IsNaN(series[i]) {
			return series[i]
		}
	}
	return 0
}

// Closes extracts close prices from candles in the given order.
func Closes(candles []*domain.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}
