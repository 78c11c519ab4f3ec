package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"coinsight/internal/domain"
	"coinsight/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type stubDerivativesSource struct {
	err error
}

func (s stubDerivativesSource) Name() string { return "stub" }

func (s stubDerivativesSource) FetchFundingRates(ctx context.Context) ([]domain.ExchangeFundingRate, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []domain.ExchangeFundingRate{
		{Symbol: "BTC", RatePct: 0.01, Exchange: "stub"},
	}, nil
}

func (s stubDerivativesSource) FetchOpenInterest(ctx context.Context) ([]domain.ExchangeOpenInterest, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []domain.ExchangeOpenInterest{
		{Symbol: "BTC", Contracts: 85000, Exchange: "stub"},
	}, nil
}

func TestGetDerivatives(t *testing.T) {
	r := newTestRouter(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/derivatives", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var snap domain.DerivativesSnapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(snap.Funding) != 1 || snap.Funding[0].Symbol != "BTC" {
		t.Fatalf("unexpected funding summaries: %+v", snap.Funding)
	}
	if len(snap.OpenInterest) != 1 || snap.OpenInterest[0].TotalContracts != 85000 {
		t.Fatalf("unexpected open interest: %+v", snap.OpenInterest)
	}
}

func TestGetDerivativesAllExchangesDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	market := service.NewMarketService(tracer, stubSnapshotter{snapshot: testSnapshot()}, nil, nil, nil, nil)
	derivatives := service.NewDerivativesService(tracer, stubDerivativesSource{err: errors.New("api down")})
	h := New(tracer, market, service.NewTechnicalsService(tracer, nil), derivatives)
	r := gin.New()
	h.RegisterRoutes(r, "")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/derivatives", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when every exchange fails, got %d", w.Code)
	}
}
