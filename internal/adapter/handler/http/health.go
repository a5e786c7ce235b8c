package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const readinessTimeout = time.Second

type HealthHandler struct {
	ping func(ctx context.Context) error
}

// NewHealthHandler takes the storage ping used by the readiness probe. A nil ping is always ready.
func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

// @Summary Liveness
// @Tags health
// @Produce json
// @Success 200 {object} statusResponse
// @Router /healthz [get]
func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, statusResponse{Status: "ok"})
}

// @Summary Readiness
// @Description Проверяет соединение с MongoDB
// @Tags health
// @Produce json
// @Success 200 {object} statusResponse
// @Failure 503 {object} statusResponse
// @Router /readyz [get]
func (h *HealthHandler) Readyz(c *gin.Context) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()

		if err := h.ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, statusResponse{Status: "unavailable"})
			return
		}
	}

	c.JSON(http.StatusOK, statusResponse{Status: "ready"})
}
