package service

import (
	"context"
	"testing"
	"time"

	"coinsight/internal/domain"
)

// descCandles builds a newest-first candle list with linearly rising closes,
// matching the repository's return order.
func descCandles(n int, base float64) []*domain.Candle {
	candles := make([]*domain.Candle, n)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		// Index 0 is the newest candle.
		age := n - 1 - i
		close := base + float64(n-1-age)
		candles[age] = &domain.Candle{
			Symbol:   "BTC",
			Interval: "1h",
			OpenTime: start.Add(time.Duration(i) * time.Hour),
			Open:     close - 0.5,
			High:     close + 1,
			Low:      close - 1,
			Close:    close,
			Volume:   100,
		}
	}
	return candles
}

func TestTechnicalsSummary(t *testing.T) {
	t.Parallel()

	repo := &mockCandleRepo{getResp: descCandles(60, 100)}
	svc := NewTechnicalsService(testTracer, repo)

	summary, err := svc.Summary(context.Background(), "BTC", "1h")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Symbol != "BTC" || summary.Interval != "1h" {
		t.Fatalf("unexpected identity: %+v", summary)
	}
	// Monotonically rising closes pin RSI to 100 and put MACD above signal.
	if summary.RSI14 != 100 {
		t.Fatalf("RSI = %f, want 100", summary.RSI14)
	}
	if summary.MACDHist <= 0 {
		t.Fatalf("uptrend MACD histogram should be positive, got %f", summary.MACDHist)
	}
	// Latest close is 159; the nearest low below is 158 and the nearest
	// high above is 160.
	if summary.Support != 158 || summary.Resistance != 160 {
		t.Fatalf("levels: support=%f resistance=%f, want 158/160", summary.Support, summary.Resistance)
	}
	// Bollinger middle over the last 20 closes (140..159) is their mean.
	if summary.BBMiddle != 149.5 {
		t.Fatalf("BB middle = %f, want 149.5", summary.BBMiddle)
	}
	if summary.BBUpper <= summary.BBMiddle || summary.BBLower >= summary.BBMiddle {
		t.Fatalf("BB bands out of order: %f / %f / %f", summary.BBUpper, summary.BBMiddle, summary.BBLower)
	}
	if summary.Trend != "STRONG_BULL" {
		t.Fatalf("trend = %s, want STRONG_BULL", summary.Trend)
	}
}

func TestTechnicalsSummaryValidation(t *testing.T) {
	t.Parallel()

	svc := NewTechnicalsService(testTracer, &mockCandleRepo{})

	if _, err := svc.Summary(context.Background(), "DOGE", "1h"); err == nil {
		t.Fatal("expected error for unsupported symbol")
	}
	if _, err := svc.Summary(context.Background(), "BTC", "2h"); err == nil {
		t.Fatal("expected error for unsupported interval")
	}
	if _, err := svc.Summary(context.Background(), "BTC", "1h"); err == nil {
		t.Fatal("expected error with no stored candles")
	}
}

func TestTrendBuckets(t *testing.T) {
	t.Parallel()

	cases := map[float64]string{
		6:    "STRONG_BULL",
		3:    "BULL",
		0:    "SIDEWAYS",
		-3:   "BEAR",
		-6:   "STRONG_BEAR",
		1.9:  "SIDEWAYS",
		-1.9: "SIDEWAYS",
	}
	for change, want := range cases {
		if got := trendFor(change); got != want {
			t.Errorf("trendFor(%v) = %s, want %s", change, got, want)
		}
	}
}
