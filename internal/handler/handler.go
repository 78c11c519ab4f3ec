package handler

import (
	"coinsight/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	tracer      trace.Tracer
	market      *service.MarketService
	technicals  *service.TechnicalsService
	derivatives *service.DerivativesService
}

func New(tracer trace.Tracer, market *service.MarketService, technicals *service.TechnicalsService, derivatives *service.DerivativesService) *Handler {
	return &Handler{
		tracer:      tracer,
		market:      market,
		technicals:  technicals,
		derivatives: derivatives,
	}
}

// RegisterRoutes mounts all routes. When apiKey is non-empty the /api group
// requires a matching X-API-Key header; /health stays open for probes.
func (h *Handler) RegisterRoutes(r *gin.Engine, apiKey string) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	if apiKey != "" {
		api.Use(APIKeyAuth(apiKey))
	}
	api.GET("/market", h.GetMarket)
	api.GET("/recommendations", h.GetRecommendations)
	api.GET("/technicals/:symbol", h.GetTechnicals)
	api.GET("/candles/:symbol", h.GetCandles)
	api.GET("/derivatives", h.GetDerivatives)
}
