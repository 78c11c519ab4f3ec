package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"coinsight/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetMarket godoc
// @Summary      Get the current market snapshot
// @Description  Returns quotes for all tracked assets plus market sentiment. Served from fallback data (is_real_data=false) when every upstream is down.
// @Tags         market
// @Produce      json
// @Success      200  {object}  domain.MarketSnapshot
// @Router       /api/market [get]
func (h *Handler) GetMarket(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-market")
	defer span.End()

	snapshot := h.market.GetMarketData(ctx)
	c.JSON(http.StatusOK, snapshot)
}

// GetRecommendations godoc
// @Summary      Get ranked investment recommendations
// @Description  Scores all tracked assets against the current market snapshot and returns up to five ranked entries for the given risk profile
// @Tags         market
// @Produce      json
// @Param        profile  query  string  false  "Risk profile (CONSERVATIVE, MODERATE, AGGRESSIVE)"  default(MODERATE)
// @Success      200  {object}  domain.RecommendationSet
// @Router       /api/recommendations [get]
func (h *Handler) GetRecommendations(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-recommendations")
	defer span.End()

	profile := domain.ParseRiskProfile(strings.ToUpper(c.DefaultQuery("profile", string(domain.ProfileModerate))))
	span.SetAttributes(attribute.String("risk_profile", string(profile)))

	c.JSON(http.StatusOK, h.market.Recommendations(ctx, profile))
}

// GetTechnicals godoc
// @Summary      Get technical indicators for an asset
// @Description  Returns RSI(14), MACD(12,26,9), support/resistance and trend computed from stored candles
// @Tags         market
// @Produce      json
// @Param        symbol    path   string  true   "Asset symbol (e.g., BTC, ETH)"
// @Param        interval  query  string  false  "Candle interval (5m, 15m, 1h, 4h, 1d)"  default(1h)
// @Success      200  {object}  domain.TechnicalSummary
// @Failure      400  {object}  map[string]string
// @Router       /api/technicals/{symbol} [get]
func (h *Handler) GetTechnicals(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-technicals")
	defer span.End()

	symbol := strings.ToUpper(c.Param("symbol"))
	span.SetAttributes(attribute.String("symbol", symbol))

	if !domain.IsSupported(symbol) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "unsupported symbol: " + symbol,
			"supported_symbols": domain.SupportedSymbols,
		})
		return
	}

	interval := c.DefaultQuery("interval", "1h")
	if !supportedInterval(interval) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":               "unsupported interval: " + interval,
			"supported_intervals": domain.SupportedIntervals,
		})
		return
	}

	summary, err := h.technicals.Summary(ctx, symbol, interval)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetCandles godoc
// @Summary      Get historical OHLCV candles
// @Description  Returns historical candle data for a given asset and interval
// @Tags         market
// @Produce      json
// @Param        symbol    path   string  true   "Asset symbol (e.g., BTC, ETH)"
// @Param        interval  query  string  false  "Candle interval (5m, 15m, 1h, 4h, 1d)"  default(1h)
// @Param        limit     query  int     false  "Number of candles (default 100, max 500)"  default(100)
// @Param        from      query  int     false  "Window start as unix seconds (requires to)"
// @Param        to        query  int     false  "Window end as unix seconds (requires from)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/candles/{symbol} [get]
func (h *Handler) GetCandles(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-candles")
	defer span.End()

	symbol := strings.ToUpper(c.Param("symbol"))
	span.SetAttributes(attribute.String("symbol", symbol))

	if !domain.IsSupported(symbol) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "unsupported symbol: " + symbol,
			"supported_symbols": domain.SupportedSymbols,
		})
		return
	}

	interval := c.DefaultQuery("interval", "1h")
	if !supportedInterval(interval) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":               "unsupported interval: " + interval,
			"supported_intervals": domain.SupportedIntervals,
		})
		return
	}

	limit := 100
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	var candles []*domain.Candle
	var err error
	if c.Query("from") != "" || c.Query("to") != "" {
		from, errF := strconv.ParseInt(c.Query("from"), 10, 64)
		to, errT := strconv.ParseInt(c.Query("to"), 10, 64)
		if errF != nil || errT != nil || from > to {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from and to must both be unix seconds with from <= to"})
			return
		}
		candles, err = h.market.GetCandlesInRange(ctx, symbol, interval, time.Unix(from, 0).UTC(), time.Unix(to, 0).UTC())
	} else {
		candles, err = h.market.GetCandles(ctx, symbol, interval, limit)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":   symbol,
		"interval": interval,
		"candles":  candles,
	})
}

func supportedInterval(interval string) bool {
	for _, si := range domain.SupportedIntervals {
		if interval == si {
			return true
		}
	}
	return false
}
