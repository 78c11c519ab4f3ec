// Package ta implements the indicator math behind the technicals endpoints.
// Series functions return one value per input candle, with math.NaN() marking
// positions where the indicator is not yet defined.
package ta

import "math"

func nanSeries(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

// MeanStd returns the mean and population standard deviation of values.
func MeanStd(values []float64) (float64, float64) {
	n := float64(len(values))
	if n == 0 {
		return 0, 0
	}
	var sum, sumSq float64
	for _, v := range values {
		sum += v
		sumSq += v * v
	}
	mean := sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}

// EMASeries computes an exponential moving average seeded from the first
// value. period <= 1 returns the input unchanged.
func EMASeries(values []float64, period int) []float64 {
	if len(values) == 0 {
		return nil
	}
	out := make([]float64, len(values))
	copy(out, values)
	if period <= 1 {
		return out
	}
	alpha := 2.0 / float64(period+1)
	for i := 1; i < len(out); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// RSISeries computes Wilder-smoothed RSI. The first period entries are NaN.
func RSISeries(closes []float64, period int) []float64 {
	if len(closes) <= period {
		return nil
	}
	out := nanSeries(len(closes))

	var avgGain, avgLoss float64
	for i := 1; i < len(closes); i++ {
		gain := closes[i] - closes[i-1]
		loss := -gain
		if gain < 0 {
			gain = 0
		}
		if loss < 0 {
			loss = 0
		}
		switch {
		case i < period:
			avgGain += gain
			avgLoss += loss
		case i == period:
			avgGain = (avgGain + gain) / float64(period)
			avgLoss = (avgLoss + loss) / float64(period)
		default:
			avgGain = (avgGain*float64(period-1) + gain) / float64(period)
			avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		}
		if i >= period {
			if avgLoss == 0 {
				out[i] = 100
			} else {
				out[i] = 100 - 100/(1+avgGain/avgLoss)
			}
		}
	}
	return out
}

// MACDSeries returns the MACD line (fast EMA minus slow EMA) and its signal
// line.
func MACDSeries(values []float64, fast, slow, signal int) ([]float64, []float64) {
	if len(values) == 0 {
		return nil, nil
	}
	fastEMA := EMASeries(values, fast)
	slowEMA := EMASeries(values, slow)
	macd := make([]float64, len(values))
	for i := range macd {
		macd[i] = fastEMA[i] - slowEMA[i]
	}
	return macd, EMASeries(macd, signal)
}

// BollingerSeries returns middle, upper and lower bands over a rolling window.
func BollingerSeries(values []float64, period int, stdDevs float64) ([]float64, []float64, []float64) {
	if len(values) == 0 {
		return nil, nil, nil
	}
	middle := nanSeries(len(values))
	upper := nanSeries(len(values))
	lower := nanSeries(len(values))
	if period <= 0 {
		return middle, upper, lower
	}
	for i := period - 1; i < len(values); i++ {
		mean, std := MeanStd(values[i-period+1 : i+1])
		middle[i] = mean
		upper[i] = mean + stdDevs*std
		lower[i] = mean - stdDevs*std
	}
	return middle, upper, lower
}
