package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetDerivatives godoc
// @Summary      Get funding rates and open interest
// @Description  Returns funding rates and open interest for tracked perpetuals, merged across Binance, Bybit and OKX, with alerts for crowded positioning
// @Tags         market
// @Produce      json
// @Success      200  {object}  domain.DerivativesSnapshot
// @Failure      503  {object}  map[string]string
// @Router       /api/derivatives [get]
func (h *Handler) GetDerivatives(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-derivatives")
	defer span.End()

	snapshot, err := h.derivatives.Snapshot(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
