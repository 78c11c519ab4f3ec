package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"coinsight/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type mockSnapshotter struct {
	snapshot *domain.MarketSnapshot
	calls    int
}

func (m *mockSnapshotter) Snapshot(ctx context.Context) *domain.MarketSnapshot {
	m.calls++
	return m.snapshot
}

type mockChartProvider struct {
	marketCandles []*domain.Candle
	marketErr     error

	marketCalls         int
	lastMarketSymbol    string
	lastMarketDays      int
	lastMarketIntervals []string
}

func (m *mockChartProvider) FetchMarketChart(ctx context.Context, symbol string, days int, intervals []string) ([]*domain.Candle, error) {
	m.marketCalls++
	m.lastMarketSymbol = symbol
	m.lastMarketDays = days
	m.lastMarketIntervals = append([]string(nil), intervals...)
	if m.marketErr != nil {
		return nil, m.marketErr
	}
	return m.marketCandles, nil
}

type mockCandleRepo struct {
	getResp []*domain.Candle
	getErr  error

	lastGetSymbol   string
	lastGetInterval string
	lastGetLimit    int

	upsertArg   []*domain.Candle
	upsertErr   error
	upsertCalls int
}

func (m *mockCandleRepo) GetCandles(ctx context.Context, symbol, interval string, limit int) ([]*domain.Candle, error) {
	m.lastGetSymbol = symbol
	m.lastGetInterval = interval
	m.lastGetLimit = limit
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.getResp, nil
}

func (m *mockCandleRepo) GetCandlesInRange(ctx context.Context, symbol, interval string, from, to time.Time) ([]*domain.Candle, error) {
	m.lastGetSymbol = symbol
	m.lastGetInterval = interval
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.getResp, nil
}

func (m *mockCandleRepo) UpsertCandles(ctx context.Context, candles []*domain.Candle) error {
	m.upsertCalls++
	m.upsertArg = candles
	if m.upsertErr != nil {
		return m.upsertErr
	}
	return nil
}

type mockSnapshotRepo struct {
	insertCalls int
	insertErr   error
	latest      *domain.MarketSnapshot
	latestErr   error
	pruned      int64
	lastCutoff  time.Time
}

func (m *mockSnapshotRepo) Insert(ctx context.Context, snapshot *domain.MarketSnapshot) error {
	m.insertCalls++
	return m.insertErr
}

func (m *mockSnapshotRepo) Latest(ctx context.Context) (*domain.MarketSnapshot, error) {
	return m.latest, m.latestErr
}

func (m *mockSnapshotRepo) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.lastCutoff = cutoff
	return m.pruned, nil
}

type fakeRedis struct {
	data   map[string][]byte
	setErr error
	getErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string][]byte)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = append([]byte(nil), v...)
	case string:
		f.data[key] = []byte(v)
	default:
		bytes, _ := json.Marshal(v)
		f.data[key] = bytes
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(string(v), nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func realSnapshot() *domain.MarketSnapshot {
	return &domain.MarketSnapshot{
		Quotes: map[string]domain.AssetQuote{
			"BTC": {Symbol: "BTC", PriceUSD: 43250, Change24hPct: 2.1, Volume24hUSD: 2.8e10, MarketCapUSD: 8.5e11},
			"ETH": {Symbol: "ETH", PriceUSD: 2680, Change24hPct: 1.8, Volume24hUSD: 1.2e10, MarketCapUSD: 3.2e11},
		},
		Sentiment:  domain.MarketSentiment{FearGreedIndex: 50, FearGreedClassification: "Neutral"},
		IsRealData: true,
		Sources:    []string{"coingecko", "alternative.me"},
		FetchedAt:  time.Unix(1_700_000_000, 0),
	}
}

func TestMarketService_GetMarketDataCacheHit(t *testing.T) {
	t.Parallel()

	fr := newFakeRedis()
	data, _ := json.Marshal(realSnapshot())
	_ = fr.Set(context.Background(), snapshotCacheKey, data, 0)

	snapshotter := &mockSnapshotter{snapshot: realSnapshot()}
	svc := NewMarketService(testTracer, snapshotter, &mockChartProvider{}, nil, nil, fr)

	snap := svc.GetMarketData(context.Background())
	if snapshotter.calls != 0 {
		t.Fatalf("cache hit should skip assembly, got %d calls", snapshotter.calls)
	}
	if snap.Quote("BTC").PriceUSD != 43250 {
		t.Fatalf("unexpected cached snapshot: %+v", snap)
	}
}

func TestMarketService_GetMarketDataCachesRealSnapshots(t *testing.T) {
	t.Parallel()

	fr := newFakeRedis()
	snapshotter := &mockSnapshotter{snapshot: realSnapshot()}
	svc := NewMarketService(testTracer, snapshotter, &mockChartProvider{}, nil, nil, fr)

	svc.GetMarketData(context.Background())
	if snapshotter.calls != 1 {
		t.Fatalf("expected one assembly, got %d", snapshotter.calls)
	}
	if _, ok := fr.data[snapshotCacheKey]; !ok {
		t.Fatal("real snapshot should be cached")
	}
}

func TestMarketService_GetMarketDataSkipsCachingFallback(t *testing.T) {
	t.Parallel()

	fallback := realSnapshot()
	fallback.IsRealData = false
	fallback.Sources = nil

	fr := newFakeRedis()
	svc := NewMarketService(testTracer, &mockSnapshotter{snapshot: fallback}, &mockChartProvider{}, nil, nil, fr)

	svc.GetMarketData(context.Background())
	if _, ok := fr.data[snapshotCacheKey]; ok {
		t.Fatal("fallback snapshot must not be cached")
	}
}

func TestMarketService_GetMarketDataServesLastKnownGood(t *testing.T) {
	t.Parallel()

	fallback := realSnapshot()
	fallback.IsRealData = false
	fallback.Sources = nil

	stored := realSnapshot()
	stored.FetchedAt = time.Now().Add(-time.Minute)
	repo := &mockSnapshotRepo{latest: stored}
	svc := NewMarketService(testTracer, &mockSnapshotter{snapshot: fallback}, &mockChartProvider{}, nil, repo, nil)

	snap := svc.GetMarketData(context.Background())
	if snap.IsRealData {
		t.Fatal("stored snapshot must be flagged as stale")
	}
	if snap.Quote("BTC").PriceUSD != 43250 {
		t.Fatalf("expected stored quotes, got %+v", snap)
	}
	found := false
	for _, s := range snap.Sources {
		if s == "stored" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected stored provenance marker, got %v", snap.Sources)
	}
}

func TestMarketService_GetMarketDataIgnoresExpiredStoredSnapshot(t *testing.T) {
	t.Parallel()

	fallback := realSnapshot()
	fallback.IsRealData = false
	fallback.Sources = nil

	stored := realSnapshot()
	stored.FetchedAt = time.Now().Add(-time.Hour)
	repo := &mockSnapshotRepo{latest: stored}
	svc := NewMarketService(testTracer, &mockSnapshotter{snapshot: fallback}, &mockChartProvider{}, nil, repo, nil)

	snap := svc.GetMarketData(context.Background())
	if len(snap.Sources) != 0 {
		t.Fatalf("expected the static fallback snapshot, got sources %v", snap.Sources)
	}
}

func TestMarketService_RefreshSnapshotPersists(t *testing.T) {
	t.Parallel()

	repo := &mockSnapshotRepo{}
	svc := NewMarketService(testTracer, &mockSnapshotter{snapshot: realSnapshot()}, &mockChartProvider{}, nil, repo, nil)

	svc.RefreshSnapshot(context.Background())
	if repo.insertCalls != 1 {
		t.Fatalf("expected one persist, got %d", repo.insertCalls)
	}
}

func TestMarketService_RefreshSnapshotPersistErrorNonFatal(t *testing.T) {
	t.Parallel()

	repo := &mockSnapshotRepo{insertErr: errors.New("db down")}
	svc := NewMarketService(testTracer, &mockSnapshotter{snapshot: realSnapshot()}, &mockChartProvider{}, nil, repo, nil)

	snap := svc.RefreshSnapshot(context.Background())
	if snap == nil || !snap.IsRealData {
		t.Fatalf("persist failure must not affect the snapshot: %+v", snap)
	}
}

func TestMarketService_Recommendations(t *testing.T) {
	t.Parallel()

	svc := NewMarketService(testTracer, &mockSnapshotter{snapshot: realSnapshot()}, &mockChartProvider{}, nil, nil, nil)

	set := svc.Recommendations(context.Background(), domain.ProfileModerate)
	if set == nil || len(set.Entries) == 0 {
		t.Fatalf("expected recommendations, got %+v", set)
	}
	if set.RiskProfile != domain.ProfileModerate {
		t.Fatalf("unexpected profile: %s", set.RiskProfile)
	}
	if !set.IsRealData {
		t.Fatal("real snapshot should propagate to the set")
	}
}

func TestMarketService_RecommendationsCandleRepoErrorsIgnored(t *testing.T) {
	t.Parallel()

	repo := &mockCandleRepo{getErr: errors.New("db down")}
	svc := NewMarketService(testTracer, &mockSnapshotter{snapshot: realSnapshot()}, &mockChartProvider{}, repo, nil, nil)

	set := svc.Recommendations(context.Background(), domain.ProfileModerate)
	if set == nil || len(set.Entries) == 0 {
		t.Fatalf("level lookup failure must not block recommendations: %+v", set)
	}
}

func TestMarketService_RefreshShortCandles(t *testing.T) {
	t.Parallel()

	candles := []*domain.Candle{{Symbol: "BTC", Interval: "5m"}}
	charts := &mockChartProvider{marketCandles: candles}
	repo := &mockCandleRepo{}
	svc := NewMarketService(testTracer, &mockSnapshotter{snapshot: realSnapshot()}, charts, repo, nil, nil)

	if err := svc.RefreshShortCandles(context.Background(), "BTC"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if charts.lastMarketSymbol != "BTC" || charts.lastMarketDays != 1 {
		t.Fatalf("unexpected market chart args: %+v", charts)
	}
	if repo.upsertCalls != 1 || len(repo.upsertArg) != 1 {
		t.Fatalf("expected 1 upsert call, got %d", repo.upsertCalls)
	}
}

func TestMarketService_RefreshLongCandles(t *testing.T) {
	t.Parallel()

	candles := []*domain.Candle{{Symbol: "BTC", Interval: "1d"}}
	charts := &mockChartProvider{marketCandles: candles}
	repo := &mockCandleRepo{}
	svc := NewMarketService(testTracer, &mockSnapshotter{snapshot: realSnapshot()}, charts, repo, nil, nil)

	if err := svc.RefreshLongCandles(context.Background(), "BTC"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if charts.lastMarketDays != 30 {
		t.Fatalf("expected days=30, got %d", charts.lastMarketDays)
	}
	if repo.upsertCalls != 1 || repo.upsertArg[0].Interval != "1d" {
		t.Fatalf("unexpected upsert payload: %+v", repo.upsertArg)
	}
}

func TestMarketService_GetCandles(t *testing.T) {
	t.Parallel()

	repo := &mockCandleRepo{
		getResp: []*domain.Candle{{Symbol: "BTC", Interval: "1h"}},
	}
	svc := NewMarketService(testTracer, &mockSnapshotter{snapshot: realSnapshot()}, &mockChartProvider{}, repo, nil, nil)

	candles, err := svc.GetCandles(context.Background(), "BTC", "1h", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastGetSymbol != "BTC" || repo.lastGetInterval != "1h" || repo.lastGetLimit != 5 {
		t.Fatalf("unexpected repo args: %s %s %d", repo.lastGetSymbol, repo.lastGetInterval, repo.lastGetLimit)
	}
	if len(candles) != 1 {
		t.Fatalf("expected 1 candle, got %d", len(candles))
	}
}

func TestMarketService_PruneSnapshots(t *testing.T) {
	t.Parallel()

	repo := &mockSnapshotRepo{pruned: 3}
	svc := NewMarketService(testTracer, &mockSnapshotter{snapshot: realSnapshot()}, &mockChartProvider{}, nil, repo, nil)

	svc.PruneSnapshots(context.Background(), 30)
	if repo.lastCutoff.IsZero() {
		t.Fatal("expected prune call with a cutoff")
	}
}
