package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"coinsight/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const bybitBaseURL = "https://api.bybit.com"

// BybitProvider fetches funding rates and open interest from Bybit's v5
// market API for linear (USDT-margined) perpetuals.
type BybitProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewBybitProvider(tracer trace.Tracer) *BybitProvider {
	return &BybitProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: bybitBaseURL,
		tracer:  tracer,
	}
}

func (p *BybitProvider) Name() string { return "bybit" }

// FetchFundingRates fetches the latest settled funding rate per perpetual.
func (p *BybitProvider) FetchFundingRates(ctx context.Context) ([]domain.ExchangeFundingRate, error) {
	_, span := p.tracer.Start(ctx, "bybit.fetch-funding")
	defer span.End()

	var rates []domain.ExchangeFundingRate
	var lastErr error
	for _, sym := range domain.DerivativesSymbols {
		pair := domain.BinancePair[sym]
		url := fmt.Sprintf("%s/v5/market/funding/history?category=linear&symbol=%s&limit=1", p.baseURL, pair)

		var payload struct {
			RetCode int    `json:"retCode"`
			RetMsg  string `json:"retMsg"`
			Result  struct {
				List []struct {
					FundingRate          string `json:"fundingRate"`
					FundingRateTimestamp string `json:"fundingRateTimestamp"`
				} `json:"list"`
			} `json:"result"`
		}
		if err := p.getJSON(ctx, url, &payload); err != nil {
			lastErr = fmt.Errorf("funding %s: %w", pair, err)
			continue
		}
		if payload.RetCode != 0 || len(payload.Result.List) == 0 {
			lastErr = fmt.Errorf("funding %s: retCode=%d %s", pair, payload.RetCode, payload.RetMsg)
			continue
		}
		item := payload.Result.List[0]
		rate, err := strconv.ParseFloat(item.FundingRate, 64)
		if err != nil {
			continue
		}
		entry := domain.ExchangeFundingRate{
			Symbol:   sym,
			RatePct:  rate * 100,
			Exchange: p.Name(),
		}
		if ms, err := strconv.ParseInt(item.FundingRateTimestamp, 10, 64); err == nil && ms > 0 {
			// Bybit settles every 8 hours; the timestamp is the last
			// settlement, so the next one is an interval later.
			entry.NextFunding = time.UnixMilli(ms).Add(8 * time.Hour)
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

// FetchOpenInterest fetches the latest hourly open-interest point per
// perpetual, in base coin units.
func (p *BybitProvider) FetchOpenInterest(ctx context.Context) ([]domain.ExchangeOpenInterest, error) {
	_, span := p.tracer.Start(ctx, "bybit.fetch-open-interest")
	defer span.End()

	var entries []domain.ExchangeOpenInterest
	var lastErr error
	for _, sym := range domain.DerivativesSymbols {
		pair := domain.BinancePair[sym]
		url := fmt.Sprintf("%s/v5/market/open-interest?category=linear&symbol=%s&intervalTime=1h&limit=1", p.baseURL, pair)

		var payload struct {
			RetCode int    `json:"retCode"`
			RetMsg  string `json:"retMsg"`
			Result  struct {
				List []struct {
					OpenInterest string `json:"openInterest"`
					Timestamp    string `json:"timestamp"`
				} `json:"list"`
			} `json:"result"`
		}
		if err := p.getJSON(ctx, url, &payload); err != nil {
			lastErr = fmt.Errorf("open interest %s: %w", pair, err)
			continue
		}
		if payload.RetCode != 0 || len(payload.Result.List) == 0 {
			lastErr = fmt.Errorf("open interest %s: retCode=%d %s", pair, payload.RetCode, payload.RetMsg)
			continue
		}
		contracts, err := strconv.ParseFloat(payload.Result.List[0].OpenInterest, 64)
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

func (p *BybitProvider) getJSON(ctx context.Context, url string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("bybit API error %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
