package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"coinsight/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const coincapBaseURL = "https://api.coincap.io/v2"

// CoinCapProvider fetches quotes from the CoinCap REST API. CoinCap serves
// numeric fields as strings; unparsable optional fields degrade to zero.
type CoinCapProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewCoinCapProvider(tracer trace.Tracer) *CoinCapProvider {
	return &CoinCapProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: coincapBaseURL,
		tracer:  tracer,
	}
}

// Name identifies this source in snapshot provenance.
func (p *CoinCapProvider) Name() string { return "coincap" }

// FetchQuotes fetches current quotes for all supported assets in a single
// API call.
func (p *CoinCapProvider) FetchQuotes(ctx context.Context) (map[string]domain.AssetQuote, error) {
	_, span := p.tracer.Start(ctx, "coincap.fetch-quotes")
	defer span.End()

	ids := make([]string, 0, len(domain.CoinCapID))
	for _, id := range domain.CoinCapID {
		ids = append(ids, id)
	}

	url := fmt.Sprintf("%s/assets?ids=%s", p.baseURL, strings.Join(ids, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch quotes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("coincap API error %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Data []struct {
			ID                string `json:"id"`
			PriceUSD          string `json:"priceUsd"`
			ChangePercent24Hr string `json:"changePercent24Hr"`
			VolumeUSD24Hr     string `json:"volumeUsd24Hr"`
			MarketCapUSD      string `json:"marketCapUsd"`
		} `json:"data"`
		Timestamp int64 `json:"timestamp"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("parse quotes: %w", err)
	}

	updated := time.Now()
	if payload.Timestamp > 0 {
		updated = time.UnixMilli(payload.Timestamp)
	}

	result := make(map[string]domain.AssetQuote, len(payload.Data))
	for _, asset := range payload.Data {
		symbol, ok := domain.CoinCapIDToSymbol[asset.ID]
		if !ok {
			continue
		}
		price, err := strconv.ParseFloat(asset.PriceUSD, 64)
		if err != nil {
			// An asset without a usable price is worthless to us.
			continue
		}
		result[symbol] = domain.AssetQuote{
			Symbol:       symbol,
			PriceUSD:     price,
			Change24hPct: parseFloatOrZero(asset.ChangePercent24Hr),
			Volume24hUSD: parseFloatOrZero(asset.VolumeUSD24Hr),
			MarketCapUSD: parseFloatOrZero(asset.MarketCapUSD),
			LastUpdated:  updated,
		}
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("fetch quotes: no usable assets in response")
	}

	return result, nil
}

func parseFloatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
