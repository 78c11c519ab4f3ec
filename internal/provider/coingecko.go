package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"coinsight/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const coingeckoBaseURL = "https://api.coingecko.com/api/v3"

// GlobalStats carries aggregate market figures from CoinGecko's /global
// endpoint.
type GlobalStats struct {
	BTCDominancePct   float64
	ETHDominancePct   float64
	TotalMarketCapUSD float64
	TotalVolume24hUSD float64
}

// CoinGeckoProvider fetches quotes, global stats and OHLC data from the
// CoinGecko free API.
type CoinGeckoProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
}

// NewCoinGeckoProvider creates a new provider with built-in rate limiting.
// Rate limited to 8 requests per minute (one token every 7.5 seconds).
func NewCoinGeckoProvider(tracer trace.Tracer) *CoinGeckoProvider {
	return &CoinGeckoProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: coingeckoBaseURL,
		tracer:  tracer,
		limiter: NewRateLimiter(8, 7500*time.Millisecond),
	}
}

// Name identifies this source in snapshot provenance.
func (p *CoinGeckoProvider) Name() string { return "coingecko" }

// FetchQuotes fetches current quotes for all supported assets in a single
// API call.
func (p *CoinGeckoProvider) FetchQuotes(ctx context.Context) (map[string]domain.AssetQuote, error) {
	_, span := p.tracer.Start(ctx, "coingecko.fetch-quotes")
	defer span.End()

	ids := make([]string, 0, len(domain.CoinGeckoID))
	for _, id := range domain.CoinGeckoID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd&include_market_cap=true&include_24hr_vol=true&include_24hr_change=true&include_last_updated_at=true",
		p.baseURL, strings.Join(ids, ","))

	body, err := p.doRequest(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch quotes: %w", err)
	}

	// Response shape: {"bitcoin": {"usd": 97000, "usd_market_cap": 1.9e12,
	// "usd_24h_vol": 4.5e10, "usd_24h_change": 2.34, "last_updated_at": 1700000000}, ...}
	var raw map[string]map[string]float64
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse quotes: %w", err)
	}

	result := make(map[string]domain.AssetQuote, len(raw))
	for cgID, data := range raw {
		symbol, ok := domain.CoinGeckoIDToSymbol[cgID]
		if !ok {
			continue
		}
		updated := time.Now()
		if ts := data["last_updated_at"]; ts > 0 {
			updated = time.Unix(int64(ts), 0)
		}
		result[symbol] = domain.AssetQuote{
			Symbol:       symbol,
			PriceUSD:     data["usd"],
			Change24hPct: data["usd_24h_change"],
			Volume24hUSD: data["usd_24h_vol"],
			MarketCapUSD: data["usd_market_cap"],
			LastUpdated:  updated,
		}
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("fetch quotes: no supported assets in response")
	}

	return result, nil
}

// FetchGlobal fetches aggregate market cap, volume and dominance figures.
func (p *CoinGeckoProvider) FetchGlobal(ctx context.Context) (*GlobalStats, error) {
	_, span := p.tracer.Start(ctx, "coingecko.fetch-global")
	defer span.End()

	body, err := p.doRequest(ctx, p.baseURL+"/global")
	if err != nil {
		return nil, fmt.Errorf("fetch global: %w", err)
	}

	var raw struct {
		Data struct {
			TotalMarketCap      map[string]float64 `json:"total_market_cap"`
			TotalVolume         map[string]float64 `json:"total_volume"`
			MarketCapPercentage map[string]float64 `json:"market_cap_percentage"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse global: %w", err)
	}

	return &GlobalStats{
		BTCDominancePct:   raw.Data.MarketCapPercentage["btc"],
		ETHDominancePct:   raw.Data.MarketCapPercentage["eth"],
		TotalMarketCapUSD: raw.Data.TotalMarketCap["usd"],
		TotalVolume24hUSD: raw.Data.TotalVolume["usd"],
	}, nil
}

// FetchMarketChart fetches market_chart data and constructs candles for the given intervals.
// days=1 gives ~5min granularity (for 5m, 15m, 1h candles).
// days=30 gives ~1h granularity (for 4h, 1d candles).
func (p *CoinGeckoProvider) FetchMarketChart(ctx context.Context, symbol string, days int, intervals []string) ([]*domain.Candle, error) {
	_, span := p.tracer.Start(ctx, "coingecko.fetch-market-chart")
	defer span.End()

	cgID, ok := domain.CoinGeckoID[symbol]
	if !ok {
		return nil, fmt.Errorf("unsupported symbol: %s", symbol)
	}

	url := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=usd&days=%d",
		p.baseURL, cgID, days)

	body, err := p.doRequest(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch market chart for %s: %w", symbol, err)
	}

	var raw struct {
		Prices       [][]float64 `json:"prices"`
		TotalVolumes [][]float64 `json:"total_volumes"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse market chart for %s: %w", symbol, err)
	}

	var allCandles []*domain.Candle
	for _, interval := range intervals {
		candles := buildCandlesFromMarketChart(symbol, interval, raw.Prices, raw.TotalVolumes)
		allCandles = append(allCandles, candles...)
	}

	return allCandles, nil
}

func (p *CoinGeckoProvider) doRequest(ctx context.Context, url string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &SourceError{Source: p.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &SourceError{
			Source: p.Name(),
			Err:    fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}
	return io.ReadAll(resp.Body)
}

type volumePoint struct {
	ts  int64
	vol float64
}

// buildCandlesFromMarketChart folds raw market_chart price points into OHLC
// candles of the given interval. The API reports a rolling 24h volume per
// point rather than per-candle volume, so each candle takes the volume sample
// closest to its close time.
func buildCandlesFromMarketChart(symbol, interval string, prices, volumes [][]float64) []*domain.Candle {
	step := intervalToDuration(interval)
	if step == 0 || len(prices) == 0 {
		return nil
	}

	volPoints := make([]volumePoint, 0, len(volumes))
	for _, v := range volumes {
		if len(v) >= 2 {
			volPoints = append(volPoints, volumePoint{ts: int64(v[0]), vol: v[1]})
		}
	}
	sort.Slice(volPoints, func(i, j int) bool { return volPoints[i].ts < volPoints[j].ts })
	sort.Slice(prices, func(i, j int) bool { return prices[i][0] < prices[j][0] })

	stepMs := step.Milliseconds()
	var candles []*domain.Candle
	var cur *domain.Candle
	for _, pt := range prices {
		if len(pt) < 2 {
			continue
		}
		price := pt[1]
		openMs := time.UnixMilli(int64(pt[0])).Truncate(step).UnixMilli()

		if cur == nil || cur.OpenTime.UnixMilli() != openMs {
			cur = &domain.Candle{
				Symbol:   symbol,
				Interval: interval,
				OpenTime: time.UnixMilli(openMs).UTC(),
				Open:     price,
				High:     price,
				Low:      price,
				Close:    price,
			}
			candles = append(candles, cur)
			continue
		}
		cur.High = math.Max(cur.High, price)
		cur.Low = math.Min(cur.Low, price)
		cur.Close = price
	}

	for _, c := range candles {
		c.Volume = findClosestVolume(volPoints, c.OpenTime.UnixMilli()+stepMs)
	}
	return candles
}

// findClosestVolume picks the sample nearest targetMs. volumes must be sorted
// by timestamp.
func findClosestVolume(volumes []volumePoint, targetMs int64) float64 {
	if len(volumes) == 0 {
		return 0
	}
	i := sort.Search(len(volumes), func(i int) bool { return volumes[i].ts >= targetMs })
	if i == len(volumes) {
		return volumes[len(volumes)-1].vol
	}
	if i == 0 {
		return volumes[0].vol
	}
	if volumes[i].ts-targetMs < targetMs-volumes[i-1].ts {
		return volumes[i].vol
	}
	return volumes[i-1].vol
}

func intervalToDuration(interval string) time.Duration {
	switch interval {
	case "5m":
		return 5 * time.Minute
	case "15m":
		return 15 * time.Minute
	case "1h":
		return time.Hour
	case "4h":
		return 4 * time.Hour
	case "1d":
		return 24 * time.Hour
	default:
		return 0
	}
}
