package service

import (
	"context"
	"fmt"
	"time"

	"coinsight/internal/domain"
	"coinsight/internal/ta"

	"go.opentelemetry.io/otel/trace"
)

const technicalsCandleCount = 200

// TechnicalsService computes indicator summaries from stored candles.
type TechnicalsService struct {
	tracer trace.Tracer
	repo   CandleRepository
}

func NewTechnicalsService(tracer trace.Tracer, repo CandleRepository) *TechnicalsService {
	return &TechnicalsService{tracer: tracer, repo: repo}
}

// Summary computes RSI(14), MACD(12,26,9), Bollinger(20,2) and
// support/resistance for one symbol and interval from stored candles.
func (s *TechnicalsService) Summary(ctx context.Context, symbol, interval string) (*domain.TechnicalSummary, error) {
	ctx, span := s.tracer.Start(ctx, "technicals-service.summary")
	defer span.End()

	if !domain.IsSupported(symbol) {
		return nil, fmt.Errorf("unsupported symbol: %s", symbol)
	}
	if !validInterval(interval) {
		return nil, fmt.Errorf("unsupported interval: %s", interval)
	}
	if s.repo == nil {
		return nil, fmt.Errorf("candle storage not configured")
	}

	candles, err := s.repo.GetCandles(ctx, symbol, interval, technicalsCandleCount)
	if err != nil {
		return nil, fmt.Errorf("load candles for %s/%s: %w", symbol, interval, err)
	}
	if len(candles) < 2 {
		return nil, fmt.Errorf("not enough candles for %s/%s", symbol, interval)
	}

	// Repo returns newest-first; the indicator math wants chronological order.
	ordered := make([]*domain.Candle, len(candles))
	for i, c := range candles {
		ordered[len(candles)-1-i] = c
	}

	closes := ta.Closes(ordered)
	latest := closes[len(closes)-1]

	rsi := ta.Latest(ta.RSISeries(closes, 14))
	macdLine, signalLine := ta.MACDSeries(closes, 12, 26, 9)
	macd := ta.Latest(macdLine)
	signal := ta.Latest(signalLine)
	bbMiddle, bbUpper, bbLower := ta.BollingerSeries(closes, 20, 2)
	levels := ta.SupportResistance(ordered, latest)

	return &domain.TechnicalSummary{
		Symbol:     symbol,
		Interval:   interval,
		RSI14:      rsi,
		MACDLine:   macd,
		MACDSignal: signal,
		MACDHist:   macd - signal,
		BBUpper:    ta.Latest(bbUpper),
		BBMiddle:   ta.Latest(bbMiddle),
		BBLower:    ta.Latest(bbLower),
		Support:    levels.Support,
		Resistance: levels.Resistance,
		Trend:      trendFor(pctChange(closes)),
		ComputedAt: time.Now().UTC(),
	}, nil
}

func validInterval(interval string) bool {
	for _, v := range domain.SupportedIntervals {
		if v == interval {
			return true
		}
	}
	return false
}

// pctChange is the percent move across the loaded window's last 24 closes,
// approximating 24h momentum on 1h candles.
func pctChange(closes []float64) float64 {
	window := 24
	if len(closes) <= window {
		window = len(closes) - 1
	}
	prev := closes[len(closes)-1-window]
	if prev == 0 {
		return 0
	}
	return (closes[len(closes)-1] - prev) / prev * 100
}

func trendFor(change float64) string {
	switch {
	case change > 5:
		return "STRONG_BULL"
	case change > 2:
		return "BULL"
	case change < -5:
		return "STRONG_BEAR"
	case change < -2:
		return "BEAR"
	default:
		return "SIDEWAYS"
	}
}
