package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"coinsight/internal/domain"
	"coinsight/internal/scoring"
	"coinsight/internal/ta"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const (
	snapshotCacheKey = "market:snapshot"
	snapshotCacheTTL = 30 * time.Second

	levelCandleCount = 50

	lastKnownGoodMaxAge = 15 * time.Minute
)

// Snapshotter assembles the current market snapshot; it never fails.
type Snapshotter interface {
	Snapshot(ctx context.Context) *domain.MarketSnapshot
}

// ChartProvider fetches historical chart data for candle construction.
type ChartProvider interface {
	FetchMarketChart(ctx context.Context, symbol string, days int, intervals []string) ([]*domain.Candle, error)
}

type CandleRepository interface {
	GetCandles(ctx context.Context, symbol, interval string, limit int) ([]*domain.Candle, error)
	GetCandlesInRange(ctx context.Context, symbol, interval string, from, to time.Time) ([]*domain.Candle, error)
	UpsertCandles(ctx context.Context, candles []*domain.Candle) error
}

type SnapshotRepository interface {
	Insert(ctx context.Context, snapshot *domain.MarketSnapshot) error
	Latest(ctx context.Context) (*domain.MarketSnapshot, error)
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// MarketService orchestrates snapshot assembly, shared caching, persistence
// and scoring. The repositories and Redis client may be nil; the service
// degrades to live data only.
type MarketService struct {
	tracer       trace.Tracer
	snapshotter  Snapshotter
	charts       ChartProvider
	candleRepo   CandleRepository
	snapshotRepo SnapshotRepository
	redis        RedisClient
	engine       *scoring.Engine
}

func NewMarketService(
	tracer trace.Tracer,
	snapshotter Snapshotter,
	charts ChartProvider,
	candleRepo CandleRepository,
	snapshotRepo SnapshotRepository,
	redisClient RedisClient,
) *MarketService {
	return &MarketService{
		tracer:       tracer,
		snapshotter:  snapshotter,
		charts:       charts,
		candleRepo:   candleRepo,
		snapshotRepo: snapshotRepo,
		redis:        redisClient,
		engine:       scoring.NewEngine(),
	}
}

// GetMarketData returns the current market snapshot, serving the shared
// Redis copy when fresh. Fallback snapshots are never cached so a recovered
// upstream is picked up on the next call.
func (s *MarketService) GetMarketData(ctx context.Context) *domain.MarketSnapshot {
	ctx, span := s.tracer.Start(ctx, "market-service.get-market-data")
	defer span.End()

	if s.redis != nil {
		if cached, err := s.getSnapshotCache(ctx); err != nil {
			log.Printf("redis cache read error: %v", err)
		} else if cached != nil {
			return cached
		}
	}

	snapshot := s.snapshotter.Snapshot(ctx)
	if snapshot.IsRealData && s.redis != nil {
		if err := s.setSnapshotCache(ctx, snapshot); err != nil {
			log.Printf("redis cache write error: %v", err)
		}
	}
	if !snapshot.IsRealData {
		if stored := s.lastKnownGood(ctx); stored != nil {
			return stored
		}
	}
	return snapshot
}

// lastKnownGood serves the newest persisted real snapshot when every upstream
// is down, if it is recent enough to still be useful.
func (s *MarketService) lastKnownGood(ctx context.Context) *domain.MarketSnapshot {
	if s.snapshotRepo == nil {
		return nil
	}
	stored, err := s.snapshotRepo.Latest(ctx)
	if err != nil {
		log.Printf("last-known-good read error: %v", err)
		return nil
	}
	if stored == nil || !stored.IsRealData || time.Since(stored.FetchedAt) > lastKnownGoodMaxAge {
		return nil
	}
	// Stale data, flagged as such.
	stored.IsRealData = false
	stored.Sources = append(stored.Sources, "stored")
	return stored
}

// RefreshSnapshot builds a fresh snapshot, caches it and persists a trace
// row. Persistence failures are logged, never propagated.
func (s *MarketService) RefreshSnapshot(ctx context.Context) *domain.MarketSnapshot {
	ctx, span := s.tracer.Start(ctx, "market-service.refresh-snapshot")
	defer span.End()

	snapshot := s.snapshotter.Snapshot(ctx)
	if snapshot.IsRealData && s.redis != nil {
		if err := s.setSnapshotCache(ctx, snapshot); err != nil {
			log.Printf("redis cache write error: %v", err)
		}
	}
	if s.snapshotRepo != nil {
		if err := s.snapshotRepo.Insert(ctx, snapshot); err != nil {
			log.Printf("snapshot persist error: %v", err)
		}
	}
	return snapshot
}

// Recommendations scores the current snapshot and builds the ranked set for
// one risk profile. Support/resistance levels come from stored 1h candles
// where available.
func (s *MarketService) Recommendations(ctx context.Context, profile domain.RiskProfile) *domain.RecommendationSet {
	ctx, span := s.tracer.Start(ctx, "market-service.recommendations")
	defer span.End()

	snapshot := s.GetMarketData(ctx)
	levels := s.priceLevels(ctx, snapshot)
	scored := s.engine.Score(snapshot, levels)
	return scoring.BuildRecommendations(scored, snapshot, profile)
}

// ScoredAssets exposes the full ranked scoring for the current snapshot.
func (s *MarketService) ScoredAssets(ctx context.Context) []domain.ScoredAsset {
	ctx, span := s.tracer.Start(ctx, "market-service.scored-assets")
	defer span.End()

	snapshot := s.GetMarketData(ctx)
	return s.engine.Score(snapshot, s.priceLevels(ctx, snapshot))
}

func (s *MarketService) priceLevels(ctx context.Context, snapshot *domain.MarketSnapshot) map[string]ta.PriceLevels {
	if s.candleRepo == nil {
		return nil
	}
	levels := make(map[string]ta.PriceLevels, len(domain.SupportedSymbols))
	for _, sym := range domain.SupportedSymbols {
		candles, err := s.candleRepo.GetCandles(ctx, sym, "1h", levelCandleCount)
		if err != nil {
			log.Printf("load candles for %s: %v", sym, err)
			continue
		}
		if len(candles) == 0 {
			continue
		}
		levels[sym] = ta.SupportResistance(candles, snapshot.Quote(sym).PriceUSD)
	}
	return levels
}

// GetCandles returns historical candles for a symbol and interval from Postgres.
func (s *MarketService) GetCandles(ctx context.Context, symbol, interval string, limit int) ([]*domain.Candle, error) {
	if s.candleRepo == nil {
		return nil, fmt.Errorf("candle storage not configured")
	}
	return s.candleRepo.GetCandles(ctx, symbol, interval, limit)
}

// GetCandlesInRange returns candles inside a time window for backtest-style
// queries.
func (s *MarketService) GetCandlesInRange(ctx context.Context, symbol, interval string, from, to time.Time) ([]*domain.Candle, error) {
	if s.candleRepo == nil {
		return nil, fmt.Errorf("candle storage not configured")
	}
	return s.candleRepo.GetCandlesInRange(ctx, symbol, interval, from, to)
}

// RefreshShortCandles fetches market_chart data (days=1) and stores 5m, 15m, 1h candles.
func (s *MarketService) RefreshShortCandles(ctx context.Context, symbol string) error {
	if s.candleRepo == nil || s.charts == nil {
		return nil
	}
	ctx, span := s.tracer.Start(ctx, "market-service.refresh-short-candles")
	defer span.End()

	candles, err := s.charts.FetchMarketChart(ctx, symbol, 1, []string{"5m", "15m", "1h"})
	if err != nil {
		return err
	}

	if err := s.candleRepo.UpsertCandles(ctx, candles); err != nil {
		return fmt.Errorf("upsert short candles for %s: %w", symbol, err)
	}

	log.Printf("Refreshed short candles for %s (%d candles)", symbol, len(candles))
	return nil
}

// RefreshLongCandles fetches market_chart data (days=30) and stores 4h, 1d candles.
func (s *MarketService) RefreshLongCandles(ctx context.Context, symbol string) error {
	if s.candleRepo == nil || s.charts == nil {
		return nil
	}
	ctx, span := s.tracer.Start(ctx, "market-service.refresh-long-candles")
	defer span.End()

	candles, err := s.charts.FetchMarketChart(ctx, symbol, 30, []string{"4h", "1d"})
	if err != nil {
		return err
	}

	if err := s.candleRepo.UpsertCandles(ctx, candles); err != nil {
		return fmt.Errorf("upsert long candles for %s: %w", symbol, err)
	}

	log.Printf("Refreshed long candles for %s (%d candles)", symbol, len(candles))
	return nil
}

// PruneSnapshots enforces the snapshot retention window.
func (s *MarketService) PruneSnapshots(ctx context.Context, retainDays int) {
	if s.snapshotRepo == nil || retainDays <= 0 {
		return
	}
	ctx, span := s.tracer.Start(ctx, "market-service.prune-snapshots")
	defer span.End()

	cutoff := time.Now().AddDate(0, 0, -retainDays)
	deleted, err := s.snapshotRepo.PruneOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("snapshot prune error: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("Pruned %d snapshot rows older than %s", deleted, cutoff.Format(time.RFC3339))
	}
}

func (s *MarketService) setSnapshotCache(ctx context.Context, snapshot *domain.MarketSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, snapshotCacheKey, data, snapshotCacheTTL).Err()
}

func (s *MarketService) getSnapshotCache(ctx context.Context) (*domain.MarketSnapshot, error) {
	data, err := s.redis.Get(ctx, snapshotCacheKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snapshot domain.MarketSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}
