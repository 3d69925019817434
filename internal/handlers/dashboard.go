package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetDashboardStats(ctx *gin.Context) {
	stats, err := h.store.GetDashboardStats(ctx.Request.Context())

	if err != nil {
		h.internalError(ctx, err, "Failed to compute dashboard stats")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"stats": stats})
}
