package job

import (
	"context"
	"log"
	"time"

	"coinsight/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// MarketPoller runs background goroutines that keep the snapshot cache warm
// and the candle store filled.
type MarketPoller struct {
	tracer         trace.Tracer
	market         MarketRefresher
	pollInterval   time.Duration
	candleInterval time.Duration
	retainDays     int
}

type MarketRefresher interface {
	RefreshSnapshot(ctx context.Context) *domain.MarketSnapshot
	RefreshShortCandles(ctx context.Context, symbol string) error
	RefreshLongCandles(ctx context.Context, symbol string) error
	PruneSnapshots(ctx context.Context, retainDays int)
}

func NewMarketPoller(tracer trace.Tracer, market MarketRefresher, pollIntervalSecs, candlePollSecs, retainDays int) *MarketPoller {
	return &MarketPoller{
		tracer:         tracer,
		market:         market,
		pollInterval:   time.Duration(pollIntervalSecs) * time.Second,
		candleInterval: time.Duration(candlePollSecs) * time.Second,
		retainDays:     retainDays,
	}
}

// Start launches background polling goroutines. Blocks until ctx is cancelled.
func (p *MarketPoller) Start(ctx context.Context) {
	log.Println("Market poller starting...")

	// Tier 1: Snapshot refresh every pollInterval (default 30s)
	go p.pollSnapshots(ctx)

	// Tier 2: Short candles (5m, 15m, 1h): 2 coins per candleInterval, round-robin
	go p.pollShortCandles(ctx)

	// Tier 3: Long candles (4h, 1d): 1 coin per 6x candleInterval, round-robin
	go p.pollLongCandles(ctx)

	// Tier 4: Snapshot retention sweep once a day
	go p.pollPrune(ctx)

	<-ctx.Done()
	log.Println("Market poller stopped")
}

func (p *MarketPoller) pollSnapshots(ctx context.Context) {
	// Run immediately on start
	p.market.RefreshSnapshot(ctx)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snapshot := p.market.RefreshSnapshot(ctx)
			if !snapshot.IsRealData {
				log.Println("poller snapshot refresh degraded to fallback data")
			}
		}
	}
}

func (p *MarketPoller) pollShortCandles(ctx context.Context) {
	// Wait a bit before starting to stagger API calls with the snapshot poller
	select {
	case <-ctx.Done():
		return
	case <-time.After(10 * time.Second):
	}

	ticker := time.NewTicker(p.candleInterval)
	defer ticker.Stop()

	coinIndex := 0
	coinsPerTick := 2

	// Run immediately
	p.fetchShortBatch(ctx, &coinIndex, coinsPerTick)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetchShortBatch(ctx, &coinIndex, coinsPerTick)
		}
	}
}

func (p *MarketPoller) fetchShortBatch(ctx context.Context, coinIndex *int, count int) {
	symbols := domain.SupportedSymbols
	for i := 0; i < count; i++ {
		symbol := symbols[*coinIndex%len(symbols)]
		*coinIndex++

		if err := p.market.RefreshShortCandles(ctx, symbol); err != nil {
			log.Printf("short candle refresh error for %s: %v", symbol, err)
		}
	}
}

func (p *MarketPoller) pollLongCandles(ctx context.Context) {
	// Wait before starting to stagger API calls
	select {
	case <-ctx.Done():
		return
	case <-time.After(30 * time.Second):
	}

	ticker := time.NewTicker(6 * p.candleInterval)
	defer ticker.Stop()

	coinIndex := 0

	// Run immediately
	p.fetchLongBatch(ctx, &coinIndex)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetchLongBatch(ctx, &coinIndex)
		}
	}
}

func (p *MarketPoller) fetchLongBatch(ctx context.Context, coinIndex *int) {
	symbols := domain.SupportedSymbols
	symbol := symbols[*coinIndex%len(symbols)]
	*coinIndex++

	if err := p.market.RefreshLongCandles(ctx, symbol); err != nil {
		log.Printf("long candle refresh error for %s: %v", symbol, err)
	}
}

func (p *MarketPoller) pollPrune(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.market.PruneSnapshots(ctx, p.retainDays)
		}
	}
}
