package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestOKXFetchFundingRates(t *testing.T) {
	t.Parallel()

	p := NewOKXProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.baseURL = "http://example"
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if !strings.Contains(req.URL.Path, "/api/v5/public/funding-rate") {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		inst := req.URL.Query().Get("instId")
		if !strings.HasSuffix(inst, "-USDT-SWAP") {
			t.Fatalf("expected a swap instrument, got %s", inst)
		}
		body := fmt.Sprintf(`{"code":"0","data":[
			{"instId":"%s","fundingRate":"-0.0002","nextFundingTime":"1700000000000"}
		]}`, inst)
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     make(http.Header),
		}, nil
	})}

	rates, err := p.FetchFundingRates(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rates) != 3 {
		t.Fatalf("expected one rate per instrument, got %d", len(rates))
	}
	btc := rates[0]
	if btc.Symbol != "BTC" || btc.RatePct != -0.02 || btc.Exchange != "okx" {
		t.Fatalf("unexpected first rate: %+v", btc)
	}
	if btc.NextFunding.UnixMilli() != 1700000000000 {
		t.Fatalf("unexpected next funding time: %v", btc.NextFunding)
	}
}

func TestOKXFetchOpenInterest(t *testing.T) {
	t.Parallel()

	p := NewOKXProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.baseURL = "http://example"
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if !strings.Contains(req.URL.Path, "/api/v5/public/open-interest") {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		body := `{"code":"0","data":[{"oiCcy":"42000.25","oiUsd":"1800000000"}]}`
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     make(http.Header),
		}, nil
	})}

	entries, err := p.FetchOpenInterest(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected one entry per instrument, got %d", len(entries))
	}
	if entries[0].Contracts != 42000.25 || entries[0].ValueUSD != 1.8e9 {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
}

func TestOKXFetchFundingRatesAPIError(t *testing.T) {
	t.Parallel()

	p := NewOKXProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.baseURL = "http://example"
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"code":"51001","msg":"instrument not found","data":[]}`)),
			Header:     make(http.Header),
		}, nil
	})}

	if _, err := p.FetchFundingRates(context.Background()); err == nil {
		t.Fatal("expected an error on a non-zero code")
	}
}
