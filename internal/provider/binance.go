package provider

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"coinsight/internal/domain"

	"github.com/adshao/go-binance/v2"
	"go.opentelemetry.io/otel/trace"
)

// tickerClient is the slice of the Binance SDK the provider needs; narrowed
// for test doubles.
type tickerClient interface {
	ListPriceChangeStats(ctx context.Context, symbol string) ([]*binance.PriceChangeStats, error)
}

type binanceSDK struct {
	client *binance.Client
}

func (s binanceSDK) ListPriceChangeStats(ctx context.Context, symbol string) ([]*binance.PriceChangeStats, error) {
	return s.client.NewListPriceChangeStatsService().Symbol(symbol).Do(ctx)
}

// BinanceProvider fetches 24hr ticker statistics from Binance spot. Binance
// has no market-cap figure, so quotes from this source carry a zero cap.
type BinanceProvider struct {
	sdk    tickerClient
	tracer trace.Tracer
}

func NewBinanceProvider(tracer trace.Tracer) *BinanceProvider {
	return &BinanceProvider{
		sdk:    binanceSDK{client: binance.NewClient("", "")},
		tracer: tracer,
	}
}

// Name identifies this source in snapshot provenance.
func (p *BinanceProvider) Name() string { return "binance" }

// FetchQuotes fetches 24hr stats for each supported trading pair. A pair
// that fails is skipped; the call errors only when nothing was fetched.
func (p *BinanceProvider) FetchQuotes(ctx context.Context) (map[string]domain.AssetQuote, error) {
	_, span := p.tracer.Start(ctx, "binance.fetch-quotes")
	defer span.End()

	symbols := make([]string, 0, len(domain.BinancePair))
	for sym := range domain.BinancePair {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	result := make(map[string]domain.AssetQuote, len(symbols))
	var lastErr error
	for _, sym := range symbols {
		pair := domain.BinancePair[sym]
		stats, err := p.sdk.ListPriceChangeStats(ctx, pair)
		if err != nil {
			lastErr = fmt.Errorf("ticker %s: %w", pair, err)
			continue
		}
		if len(stats) == 0 {
			continue
		}
		s := stats[0]
		price, err := strconv.ParseFloat(s.LastPrice, 64)
		if err != nil {
			continue
		}
		result[sym] = domain.AssetQuote{
			Symbol:       sym,
			PriceUSD:     price,
			Change24hPct: parseFloatOrZero(s.PriceChangePercent),
			Volume24hUSD: parseFloatOrZero(s.QuoteVolume),
			LastUpdated:  time.Now(),
		}
	}

	if len(result) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("fetch quotes: %w", lastErr)
		}
		return nil, fmt.Errorf("fetch quotes: no pairs returned data")
	}

	return result, nil
}
