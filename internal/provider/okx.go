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

const okxBaseURL = "https://www.okx.com"

// OKXProvider fetches funding rates and open interest from OKX's public v5
// API for USDT-margined perpetual swaps.
type OKXProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewOKXProvider(tracer trace.Tracer) *OKXProvider {
	return &OKXProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: okxBaseURL,
		tracer:  tracer,
	}
}

func (p *OKXProvider) Name() string { return "okx" }

// FetchFundingRates fetches the current funding rate per swap instrument.
func (p *OKXProvider) FetchFundingRates(ctx context.Context) ([]domain.ExchangeFundingRate, error) {
	_, span := p.tracer.Start(ctx, "okx.fetch-funding")
	defer span.End()

	var rates []domain.ExchangeFundingRate
	var lastErr error
	for _, sym := range domain.DerivativesSymbols {
		inst := domain.OKXSwapInstrument[sym]
		url := fmt.Sprintf("%s/api/v5/public/funding-rate?instId=%s", p.baseURL, inst)

		var payload struct {
			Code string `json:"code"`
			Msg  string `json:"msg"`
			Data []struct {
				FundingRate     string `json:"fundingRate"`
				NextFundingTime string `json:"nextFundingTime"`
			} `json:"data"`
		}
		if err := p.getJSON(ctx, url, &payload); err != nil {
			lastErr = fmt.Errorf("funding %s: %w", inst, err)
			continue
		}
		if payload.Code != "0" || len(payload.Data) == 0 {
			lastErr = fmt.Errorf("funding %s: code=%s %s", inst, payload.Code, payload.Msg)
			continue
		}
		item := payload.Data[0]
		rate, err := strconv.ParseFloat(item.FundingRate, 64)
		if err != nil {
			continue
		}
		entry := domain.ExchangeFundingRate{
			Symbol:   sym,
			RatePct:  rate * 100,
			Exchange: p.Name(),
		}
		if ms, err := strconv.ParseInt(item.NextFundingTime, 10, 64); err == nil && ms > 0 {
			entry.NextFunding = time.UnixMilli(ms)
		}
		rates = append(rates, entry)
	}

	if len(rates) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("fetch funding rates: %w", lastErr)
		}
		return nil, fmt.Errorf("fetch funding rates: no instruments returned data")
	}
	return rates, nil
}

// FetchOpenInterest fetches current open interest per swap instrument. OKX
// reports contract counts in oi and the base-coin equivalent in oiCcy; the
// latter is what lines up with the other exchanges.
func (p *OKXProvider) FetchOpenInterest(ctx context.Context) ([]domain.ExchangeOpenInterest, error) {
	_, span := p.tracer.Start(ctx, "okx.fetch-open-interest")
	defer span.End()

	var entries []domain.ExchangeOpenInterest
	var lastErr error
	for _, sym := range domain.DerivativesSymbols {
		inst := domain.OKXSwapInstrument[sym]
		url := fmt.Sprintf("%s/api/v5/public/open-interest?instId=%s", p.baseURL, inst)

		var payload struct {
			Code string `json:"code"`
			Msg  string `json:"msg"`
			Data []struct {
				OICcy string `json:"oiCcy"`
				OIUSD string `json:"oiUsd"`
			} `json:"data"`
		}
		if err := p.getJSON(ctx, url, &payload); err != nil {
			lastErr = fmt.Errorf("open interest %s: %w", inst, err)
			continue
		}
		if payload.Code != "0" || len(payload.Data) == 0 {
			lastErr = fmt.Errorf("open interest %s: code=%s %s", inst, payload.Code, payload.Msg)
			continue
		}
		item := payload.Data[0]
		contracts, err := strconv.ParseFloat(item.OICcy, 64)
		if err != nil {
			continue
		}
		entries = append(entries, domain.ExchangeOpenInterest{
			Symbol:    sym,
			Contracts: contracts,
			ValueUSD:  parseFloatOrZero(item.OIUSD),
			Exchange:  p.Name(),
		})
	}

	if len(entries) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("fetch open interest: %w", lastErr)
		}
		return nil, fmt.Errorf("fetch open interest: no instruments returned data")
	}
	return entries, nil
}

func (p *OKXProvider) getJSON(ctx context.Context, url string, dest any) error {
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
		return fmt.Errorf("okx API error %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
