package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"coinsight/internal/domain"

	"github.com/adshao/go-binance/v2/futures"
	"go.opentelemetry.io/otel/trace"
)

// futuresClient is the slice of the Binance futures SDK the provider needs;
// narrowed for test doubles.
type futuresClient interface {
	PremiumIndex(ctx context.Context, symbol string) ([]*futures.PremiumIndex, error)
	OpenInterest(ctx context.Context, symbol string) (*futures.OpenInterest, error)
}

type futuresSDK struct {
	client *futures.Client
}

func (s futuresSDK) PremiumIndex(ctx context.Context, symbol string) ([]*futures.PremiumIndex, error) {
	return s.client.NewPremiumIndexService().Symbol(symbol).Do(ctx)
}

func (s futuresSDK) OpenInterest(ctx context.Context, symbol string) (*futures.OpenInterest, error) {
	return s.client.NewGetOpenInterestService().Symbol(symbol).Do(ctx)
}

// BinanceDerivativesProvider fetches funding rates and open interest from
// Binance USDT-margined perpetuals. Rates come back as fractions per funding
// interval and are normalized to percent.
type BinanceDerivativesProvider struct {
	sdk    futuresClient
	tracer trace.Tracer
}

func NewBinanceDerivativesProvider(tracer trace.Tracer) *BinanceDerivativesProvider {
	return &BinanceDerivativesProvider{
		sdk:    futuresSDK{client: futures.NewClient("", "")},
		tracer: tracer,
	}
}

func (p *BinanceDerivativesProvider) Name() string { return "binance" }

// FetchFundingRates fetches the premium index for each perpetual. A pair
// that fails is skipped; the call errors only when nothing was fetched.
func (p *BinanceDerivativesProvider) FetchFundingRates(ctx context.Context) ([]domain.ExchangeFundingRate, error) {
	_, span := p.tracer.Start(ctx, "binance-derivatives.fetch-funding")
	defer span.End()

	var rates []domain.ExchangeFundingRate
	var lastErr error
	for _, sym := range domain.DerivativesSymbols {
		pair := domain.BinancePair[sym]
		idx, err := p.sdk.PremiumIndex(ctx, pair)
		if err != nil {
			lastErr = fmt.Errorf("premium index %s: %w", pair, err)
			continue
		}
		if len(idx) == 0 {
			continue
		}
		i := idx[0]
		rate, err := strconv.ParseFloat(i.LastFundingRate, 64)
		if err != nil {
			continue
		}
		entry := domain.ExchangeFundingRate{
			Symbol:    sym,
			RatePct:   rate * 100,
			MarkPrice: parseFloatOrZero(i.MarkPrice),
			Exchange:  p.Name(),
		}
		if i.NextFundingTime > 0 {
			entry.NextFunding = time.UnixMilli(i.NextFundingTime)
		}
		rates = append(rates, entry)
	}

	if len(rates) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("fetch funding rates: %w", lastErr)
		}
		return nil, fmt.Errorf("fetch funding rates: no pairs returned data")
	}
	return rates, nil
}

// FetchOpenInterest fetches current open interest per perpetual, in base
// coin units. Binance reports contracts only, so ValueUSD stays zero here.
func (p *BinanceDerivativesProvider) FetchOpenInterest(ctx context.Context) ([]domain.ExchangeOpenInterest, error) {
	_, span := p.tracer.Start(ctx, "binance-derivatives.fetch-open-interest")
	defer span.End()

	var entries []domain.ExchangeOpenInterest
	var lastErr error
	for _, sym := range domain.DerivativesSymbols {
		pair := domain.BinancePair[sym]
		oi, err := p.sdk.OpenInterest(ctx, pair)
		if err != nil {
			lastErr = fmt.Errorf("open interest %s: %w", pair, err)
			continue
		}
		contracts, err := strconv.ParseFloat(oi.OpenInterest, 64)
		if err != nil {
			continue
		}
		entries = append(entries, domain.ExchangeOpenInterest{
			Symbol:    sym,
			Contracts: contracts,
			Exchange:  p.Name(),
		})
	}

	if len(entries) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("fetch open interest: %w", lastErr)
		}
		return nil, fmt.Errorf("fetch open interest: no pairs returned data")
	}
	return entries, nil
}
