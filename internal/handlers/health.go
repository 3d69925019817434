package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *Handler) HealthCheck(ctx *gin.Context) {
	if err := h.store.EnsureReady(ctx.Request.Context()); err != nil {
		h.requestLogger(ctx).WithError(err).Error("Store is not ready")
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unavailable",
			"timestamp": time.Now().Format(time.RFC3339),
		})
		return
	}

	body := gin.H{
		"status":    "ok",
		"message":   "BertoStore is running",
		"clients":   h.hub.Clients(),
		"timestamp": time.Now().Format(time.RFC3339),
	}

	if h.scheduler != nil {
		body["lowStockAlerts"] = h.scheduler.GetStatus()
	}

	ctx.JSON(http.StatusOK, body)
}
