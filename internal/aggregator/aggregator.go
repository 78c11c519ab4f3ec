package aggregator

import (
	"context"
	"log"
	"time"

	"coinsight/internal/cache"
	"coinsight/internal/domain"
	"coinsight/internal/provider"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// QuoteSource supplies current quotes for the supported assets.
type QuoteSource interface {
	Name() string
	FetchQuotes(ctx context.Context) (map[string]domain.AssetQuote, error)
}

// SentimentSource supplies the latest Fear & Greed reading.
type SentimentSource interface {
	Name() string
	FetchLatest(ctx context.Context) (*provider.FearGreedPoint, error)
}

// GlobalSource supplies market-wide cap, volume and dominance figures.
type GlobalSource interface {
	Name() string
	FetchGlobal(ctx context.Context) (*provider.GlobalStats, error)
}

const (
	cacheKeyQuotes    = "quotes"
	cacheKeySentiment = "sentiment"
	cacheKeyGlobal    = "global"

	sourceTimeout = 10 * time.Second
)

type quotesResult struct {
	Quotes map[string]domain.AssetQuote
	Source string
}

// Aggregator assembles market snapshots from external sources with cached
// reads and static fallbacks. Snapshot never returns an error: when every
// source fails it degrades to the fallback dataset and flags the snapshot
// as not real.
type Aggregator struct {
	quoteSources []QuoteSource
	sentiment    SentimentSource
	global       GlobalSource
	memory       *cache.Memory
	tracer       trace.Tracer
	now          func() time.Time
}

func New(quoteSources []QuoteSource, sentiment SentimentSource, global GlobalSource, tracer trace.Tracer) *Aggregator {
	return &Aggregator{
		quoteSources: quoteSources,
		sentiment:    sentiment,
		global:       global,
		memory:       cache.NewMemory(cache.DefaultMaxEntries),
		tracer:       tracer,
		now:          time.Now,
	}
}

// Snapshot builds the current market snapshot. Quotes, sentiment and global
// stats are gathered concurrently; each leg independently falls back to its
// cached value and then to the static dataset.
func (a *Aggregator) Snapshot(ctx context.Context) *domain.MarketSnapshot {
	ctx, span := a.tracer.Start(ctx, "aggregator.snapshot")
	defer span.End()

	var (
		quotes    quotesResult
		quotesOK  bool
		fng       *provider.FearGreedPoint
		fngSource string
		global    *provider.GlobalStats
		globalSrc string
	)

	// Each leg records its own result and always returns nil: one failed
	// source must not cancel the others.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		quotes, quotesOK = a.fetchQuotes(gctx)
		return nil
	})
	g.Go(func() error {
		fng, fngSource = a.fetchSentiment(gctx)
		return nil
	})
	g.Go(func() error {
		global, globalSrc = a.fetchGlobal(gctx)
		return nil
	})
	_ = g.Wait()

	snapshot := &domain.MarketSnapshot{
		Quotes:     quotes.Quotes,
		IsRealData: quotesOK,
		FetchedAt:  a.now(),
	}
	if quotesOK {
		snapshot.Sources = append(snapshot.Sources, quotes.Source)
	}

	snapshot.Sentiment = FallbackSentiment()
	if fng != nil {
		snapshot.Sentiment.FearGreedIndex = fng.Value
		snapshot.Sentiment.FearGreedClassification = fng.Classification
		snapshot.Sources = append(snapshot.Sources, fngSource)
	}
	if global != nil {
		snapshot.Sentiment.BTCDominancePct = global.BTCDominancePct
		snapshot.Sentiment.ETHDominancePct = global.ETHDominancePct
		snapshot.Sentiment.TotalMarketCapUSD = global.TotalMarketCapUSD
		snapshot.Sentiment.TotalVolume24hUSD = global.TotalVolume24hUSD
		snapshot.Sources = append(snapshot.Sources, globalSrc)
	}

	if !quotesOK {
		snapshot.Quotes = FallbackQuotes()
	}

	return snapshot
}

// fetchQuotes walks the source chain in priority order and returns the first
// full result, serving the cached copy before touching the network.
func (a *Aggregator) fetchQuotes(ctx context.Context) (quotesResult, bool) {
	if cached, ok := a.memory.Get(cacheKeyQuotes, cache.TTLQuotes); ok {
		return cached.(quotesResult), true
	}

	for _, src := range a.quoteSources {
		fetchCtx, cancel := context.WithTimeout(ctx, sourceTimeout)
		quotes, err := src.FetchQuotes(fetchCtx)
		cancel()
		if err != nil {
			log.Printf("aggregator: %v", &provider.SourceError{Source: src.Name(), Err: err})
			continue
		}
		result := quotesResult{Quotes: quotes, Source: src.Name()}
		a.memory.Set(cacheKeyQuotes, result)
		return result, true
	}

	log.Printf("aggregator: all %d quote sources failed, serving fallback data", len(a.quoteSources))
	return quotesResult{}, false
}

func (a *Aggregator) fetchSentiment(ctx context.Context) (*provider.FearGreedPoint, string) {
	if a.sentiment == nil {
		return nil, ""
	}
	if cached, ok := a.memory.Get(cacheKeySentiment, cache.TTLSentiment); ok {
		return cached.(*provider.FearGreedPoint), a.sentiment.Name()
	}

	fetchCtx, cancel := context.WithTimeout(ctx, sourceTimeout)
	defer cancel()
	point, err := a.sentiment.FetchLatest(fetchCtx)
	if err != nil {
		log.Printf("aggregator: %v", &provider.SourceError{Source: a.sentiment.Name(), Err: err})
		return nil, ""
	}
	a.memory.Set(cacheKeySentiment, point)
	return point, a.sentiment.Name()
}

func (a *Aggregator) fetchGlobal(ctx context.Context) (*provider.GlobalStats, string) {
	if a.global == nil {
		return nil, ""
	}
	if cached, ok := a.memory.Get(cacheKeyGlobal, cache.TTLSentiment); ok {
		return cached.(*provider.GlobalStats), a.global.Name()
	}

	fetchCtx, cancel := context.WithTimeout(ctx, sourceTimeout)
	defer cancel()
	stats, err := a.global.FetchGlobal(fetchCtx)
	if err != nil {
		log.Printf("aggregator: %v", &provider.SourceError{Source: a.global.Name(), Err: err})
		return nil, ""
	}
	a.memory.Set(cacheKeyGlobal, stats)
	return stats, a.global.Name()
}
