package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coinsight/internal/domain"
	"coinsight/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type stubSnapshotter struct {
	snapshot *domain.MarketSnapshot
}

func (s stubSnapshotter) Snapshot(ctx context.Context) *domain.MarketSnapshot {
	return s.snapshot
}

type stubCandleRepo struct {
	candles []*domain.Candle
}

func (s stubCandleRepo) GetCandles(ctx context.Context, symbol, interval string, limit int) ([]*domain.Candle, error) {
	return s.candles, nil
}

func (s stubCandleRepo) GetCandlesInRange(ctx context.Context, symbol, interval string, from, to time.Time) ([]*domain.Candle, error) {
	return s.candles, nil
}

func (s stubCandleRepo) UpsertCandles(ctx context.Context, candles []*domain.Candle) error {
	return nil
}

func testSnapshot() *domain.MarketSnapshot {
	return &domain.MarketSnapshot{
		Quotes: map[string]domain.AssetQuote{
			"BTC": {Symbol: "BTC", PriceUSD: 43250, Change24hPct: 2.1, Volume24hUSD: 2.8e10, MarketCapUSD: 8.5e11},
		},
		Sentiment:  domain.MarketSentiment{FearGreedIndex: 50, FearGreedClassification: "Neutral"},
		IsRealData: true,
		Sources:    []string{"coingecko"},
		FetchedAt:  time.Unix(1_700_000_000, 0),
	}
}

func newTestRouter(repo service.CandleRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	market := service.NewMarketService(tracer, stubSnapshotter{snapshot: testSnapshot()}, nil, repo, nil, nil)
	technicals := service.NewTechnicalsService(tracer, repo)
	derivatives := service.NewDerivativesService(tracer, stubDerivativesSource{})
	h := New(tracer, market, technicals, derivatives)
	r := gin.New()
	h.RegisterRoutes(r, "")
	return r
}

func TestGetMarket(t *testing.T) {
	r := newTestRouter(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/market", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var snap domain.MarketSnapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if !snap.IsRealData || snap.Quote("BTC").PriceUSD != 43250 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestGetRecommendations(t *testing.T) {
	r := newTestRouter(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/recommendations?profile=aggressive", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var set domain.RecommendationSet
	if err := json.Unmarshal(w.Body.Bytes(), &set); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if set.RiskProfile != domain.ProfileAggressive {
		t.Fatalf("unexpected profile: %s", set.RiskProfile)
	}
	if len(set.Entries) == 0 || len(set.Entries) > 5 {
		t.Fatalf("unexpected entry count: %d", len(set.Entries))
	}
}

func TestGetRecommendationsUnknownProfileDefaults(t *testing.T) {
	r := newTestRouter(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/recommendations?profile=yolo", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var set domain.RecommendationSet
	_ = json.Unmarshal(w.Body.Bytes(), &set)
	if set.RiskProfile != domain.ProfileModerate {
		t.Fatalf("unknown profile should default to MODERATE, got %s", set.RiskProfile)
	}
}

func TestGetCandlesValidation(t *testing.T) {
	r := newTestRouter(stubCandleRepo{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/candles/DOGE", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported symbol, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/candles/BTC?interval=2h", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported interval, got %d", w.Code)
	}
}

func TestGetCandles(t *testing.T) {
	repo := stubCandleRepo{candles: []*domain.Candle{
		{Symbol: "BTC", Interval: "1h", OpenTime: time.Unix(0, 0).UTC(), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
	}}
	r := newTestRouter(repo)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/candles/btc?interval=1h&limit=10", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Symbol  string           `json:"symbol"`
		Candles []*domain.Candle `json:"candles"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body.Symbol != "BTC" || len(body.Candles) != 1 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestGetCandlesTimeRange(t *testing.T) {
	repo := stubCandleRepo{candles: []*domain.Candle{
		{Symbol: "BTC", Interval: "1h", OpenTime: time.Unix(3600, 0).UTC(), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
	}}
	r := newTestRouter(repo)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/candles/BTC?interval=1h&from=0&to=7200", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/candles/BTC?interval=1h&from=7200&to=0", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for inverted range, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/candles/BTC?interval=1h&from=0", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 when to is missing, got %d", w.Code)
	}
}

func TestGetTechnicalsNotEnoughData(t *testing.T) {
	r := newTestRouter(stubCandleRepo{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/technicals/BTC", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 with no stored candles, got %d", w.Code)
	}
}

func TestRegisterRoutesAPIKeyGuardsOnlyAPIGroup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	market := service.NewMarketService(tracer, stubSnapshotter{snapshot: testSnapshot()}, nil, nil, nil, nil)
	h := New(tracer, market, service.NewTechnicalsService(tracer, nil), service.NewDerivativesService(tracer))
	r := gin.New()
	h.RegisterRoutes(r, "secret")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("health should stay open, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/market", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on /api without key, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/market", nil)
	req.Header.Set("X-API-Key", "secret")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on /api with key, got %d", w.Code)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(APIKeyAuth("secret"))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ping", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/ping", nil)
	req.Header.Set("X-API-Key", "wrong")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with wrong key, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/ping", nil)
	req.Header.Set("X-API-Key", "secret")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid key, got %d", w.Code)
	}
}
