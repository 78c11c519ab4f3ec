package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"coinsight/internal/cache"
	"coinsight/internal/domain"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// DerivativesSource supplies funding rates and open interest for one
// exchange's perpetual markets.
type DerivativesSource interface {
	Name() string
	FetchFundingRates(ctx context.Context) ([]domain.ExchangeFundingRate, error)
	FetchOpenInterest(ctx context.Context) ([]domain.ExchangeOpenInterest, error)
}

const (
	derivativesCacheKey = "market:derivatives"
	derivativesCacheTTL = 60 * time.Second

	derivativesFetchTimeout = 10 * time.Second

	// Funding thresholds in percent per interval, from the alert grading
	// in domain.FundingAlertLevel.
	fundingCrowdedPct    = 0.05
	fundingDivergencePct = 0.02
)

// DerivativesService merges funding rates and open interest across
// exchanges. Failed exchanges are skipped; the snapshot errors only when
// every exchange is down.
type DerivativesService struct {
	tracer  trace.Tracer
	sources []DerivativesSource

	mu          sync.Mutex
	prevOITotal map[string]float64
}

func NewDerivativesService(tracer trace.Tracer, sources ...DerivativesSource) *DerivativesService {
	return &DerivativesService{
		tracer:      tracer,
		sources:     sources,
		prevOITotal: make(map[string]float64),
	}
}

// Snapshot fans out to every exchange concurrently and merges the results
// per symbol. The merged view is held in the shared cache for a minute so
// bursts of requests do not hammer the exchanges.
func (s *DerivativesService) Snapshot(ctx context.Context) (*domain.DerivativesSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "derivatives-service.snapshot")
	defer span.End()

	var cached domain.DerivativesSnapshot
	if cache.GetJSON(ctx, derivativesCacheKey, &cached) {
		return &cached, nil
	}

	var (
		mu        sync.Mutex
		funding   []domain.ExchangeFundingRate
		interest  []domain.ExchangeOpenInterest
		exchanges []string
	)

	// Each leg records its own result and always returns nil: one failed
	// exchange must not cancel the others.
	g, gctx := errgroup.WithContext(ctx)
	for _, src := range s.sources {
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(gctx, derivativesFetchTimeout)
			defer cancel()

			rates, ratesErr := src.FetchFundingRates(fetchCtx)
			oi, oiErr := src.FetchOpenInterest(fetchCtx)
			if ratesErr != nil {
				log.Printf("derivatives: %s funding: %v", src.Name(), ratesErr)
			}
			if oiErr != nil {
				log.Printf("derivatives: %s open interest: %v", src.Name(), oiErr)
			}
			if ratesErr != nil && oiErr != nil {
				return nil
			}

			mu.Lock()
			funding = append(funding, rates...)
			interest = append(interest, oi...)
			exchanges = append(exchanges, src.Name())
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if len(exchanges) == 0 {
		return nil, fmt.Errorf("derivatives: all %d exchanges failed", len(s.sources))
	}
	sort.Strings(exchanges)

	snapshot := &domain.DerivativesSnapshot{
		Funding:      s.mergeFunding(funding),
		OpenInterest: s.mergeOpenInterest(interest),
		Exchanges:    exchanges,
		FetchedAt:    time.Now().UTC(),
	}
	snapshot.Alerts = fundingAlerts(snapshot.Funding)

	cache.SetJSON(ctx, derivativesCacheKey, snapshot, derivativesCacheTTL)
	return snapshot, nil
}

// mergeFunding groups per-exchange rates by symbol, in tracked order.
func (s *DerivativesService) mergeFunding(rates []domain.ExchangeFundingRate) []domain.FundingSummary {
	bySymbol := make(map[string][]domain.ExchangeFundingRate)
	for _, r := range rates {
		bySymbol[r.Symbol] = append(bySymbol[r.Symbol], r)
	}

	var out []domain.FundingSummary
	for _, sym := range domain.DerivativesSymbols {
		group := bySymbol[sym]
		if len(group) == 0 {
			continue
		}
		summary := domain.FundingSummary{
			Symbol:     sym,
			MaxRatePct: group[0].RatePct,
			MinRatePct: group[0].RatePct,
			Rates:      group,
		}
		var sum float64
		for _, r := range group {
			sum += r.RatePct
			if r.RatePct > summary.MaxRatePct {
				summary.MaxRatePct = r.RatePct
			}
			if r.RatePct < summary.MinRatePct {
				summary.MinRatePct = r.RatePct
			}
		}
		summary.AvgRatePct = sum / float64(len(group))
		summary.AlertLevel = domain.FundingAlertLevel(summary.AvgRatePct)
		out = append(out, summary)
	}
	return out
}

// mergeOpenInterest totals per-exchange open interest by symbol and compares
// against the previous poll to derive a trend.
func (s *DerivativesService) mergeOpenInterest(entries []domain.ExchangeOpenInterest) []domain.OpenInterestSummary {
	bySymbol := make(map[string][]domain.ExchangeOpenInterest)
	for _, e := range entries {
		bySymbol[e.Symbol] = append(bySymbol[e.Symbol], e)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.OpenInterestSummary
	for _, sym := range domain.DerivativesSymbols {
		group := bySymbol[sym]
		if len(group) == 0 {
			continue
		}
		summary := domain.OpenInterestSummary{
			Symbol:  sym,
			Entries: group,
			Trend:   "STABLE",
		}
		for _, e := range group {
			summary.TotalContracts += e.Contracts
			summary.TotalValueUSD += e.ValueUSD
		}
		if prev := s.prevOITotal[sym]; prev > 0 {
			summary.ChangePct = (summary.TotalContracts - prev) / prev * 100
			switch {
			case summary.ChangePct > 0.01:
				summary.Trend = "INCREASING"
			case summary.ChangePct < -0.01:
				summary.Trend = "DECREASING"
			}
		}
		s.prevOITotal[sym] = summary.TotalContracts
		out = append(out, summary)
	}
	return out
}

// fundingAlerts flags crowded positioning and cross-exchange divergence.
func fundingAlerts(summaries []domain.FundingSummary) []domain.DerivativesAlert {
	var alerts []domain.DerivativesAlert
	for _, fs := range summaries {
		if fs.AvgRatePct > fundingCrowdedPct {
			alerts = append(alerts, domain.DerivativesAlert{
				Type:     "FUNDING_HIGH_POSITIVE",
				Symbol:   fs.Symbol,
				Severity: fs.AlertLevel,
				Message:  fmt.Sprintf("High funding on %s: +%.4f%%, longs are crowded", fs.Symbol, fs.AvgRatePct),
			})
		}
		if fs.AvgRatePct < -fundingCrowdedPct {
			alerts = append(alerts, domain.DerivativesAlert{
				Type:     "FUNDING_HIGH_NEGATIVE",
				Symbol:   fs.Symbol,
				Severity: fs.AlertLevel,
				Message:  fmt.Sprintf("Negative funding on %s: %.4f%%, shorts are crowded", fs.Symbol, fs.AvgRatePct),
			})
		}
		if spread := fs.MaxRatePct - fs.MinRatePct; spread > fundingDivergencePct && len(fs.Rates) > 1 {
			alerts = append(alerts, domain.DerivativesAlert{
				Type:     "FUNDING_DIVERGENCE",
				Symbol:   fs.Symbol,
				Severity: "MEDIUM",
				Message:  fmt.Sprintf("Funding divergence on %s: %.4f%% spread across exchanges", fs.Symbol, spread),
			})
		}
	}
	return alerts
}
