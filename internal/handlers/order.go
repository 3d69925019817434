package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/bertostore/internal/auth"
	"github.com/monocle-dev/bertostore/internal/checkout"
	"github.com/monocle-dev/bertostore/internal/models"
	"github.com/monocle-dev/bertostore/internal/store"
	"github.com/monocle-dev/bertostore/internal/utils"
	"github.com/monocle-dev/bertostore/internal/validate"
	log "github.com/sirupsen/logrus"
)

const orderNotFound = "Order not found."

type UpdateOrderStatusRequest struct {
	Status *string `json:"status"`
}

// ListOrders returns every order to admins and only their own to customers.
func (h *Handler) ListOrders(ctx *gin.Context) {
	identity := utils.GetIdentity(ctx)

	var (
		orders []models.Order
		err    error
	)

	if identity.IsAdmin() {
		orders, err = h.store.GetOrders(ctx.Request.Context())
	} else {
		orders, err = h.store.GetOrdersForUser(ctx.Request.Context(), identity.ID, identity.Email)
	}

	if err != nil {
		h.internalError(ctx, err, "Failed to list orders")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"orders": orders})
}

// CreateOrder is open to guests. A signed-in caller's id is attached from
// the session.
func (h *Handler) CreateOrder(ctx *gin.Context) {
	var payload map[string]interface{}

	if err := ctx.ShouldBindJSON(&payload); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validate.ErrInvalidBody.Message})
		return
	}

	input, err := validate.ParseOrderCreate(payload)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if identity := utils.GetIdentity(ctx); identity != nil {
		customerID := identity.ID
		input.CustomerUserID = &customerID
	}

	order, err := h.store.CreateOrder(ctx.Request.Context(), *input)

	if err != nil {
		if checkoutErr, ok := checkout.AsError(err); ok {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": checkoutErr.Message})
			return
		}
		h.internalError(ctx, err, "Failed to create order")
		return
	}

	h.requestLogger(ctx).WithFields(log.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total":        order.Total,
	}).Info("Order placed")

	h.refresh("order", order.ID)

	for _, item := range order.Items {
		h.refresh("product", item.ProductID)
	}

	h.notifyOrderPlaced(*order)

	ctx.JSON(http.StatusCreated, gin.H{"order": order})
}

func (h *Handler) notifyOrderPlaced(order models.Order) {
	if h.notifier == nil {
		return
	}

	go func() {
		if err := h.notifier.OrderPlaced(context.Background(), order); err != nil {
			h.logger.WithError(err).WithField("order_id", order.ID).Warn("Failed to send order notification")
		}
	}()
}

func (h *Handler) GetOrder(ctx *gin.Context) {
	id, err := utils.GetResourceID(ctx)

	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": orderNotFound})
		return
	}

	order, err := h.store.FindOrderByID(ctx.Request.Context(), id)

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": orderNotFound})
			return
		}
		h.internalError(ctx, err, "Failed to load order")
		return
	}

	if !auth.CanViewOrder(utils.GetIdentity(ctx), *order) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Forbidden."})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *Handler) UpdateOrderStatus(ctx *gin.Context) {
	id, err := utils.GetResourceID(ctx)

	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": orderNotFound})
		return
	}

	var request UpdateOrderStatusRequest

	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validate.ErrInvalidBody.Message})
		return
	}

	if request.Status == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order status."})
		return
	}

	status, ok := models.ParseOrderStatus(*request.Status)

	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order status."})
		return
	}

	order, err := h.store.UpdateOrderStatus(ctx.Request.Context(), id, status)

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": orderNotFound})
			return
		}
		h.internalError(ctx, err, "Failed to update order status")
		return
	}

	h.refresh("order", order.ID)

	ctx.JSON(http.StatusOK, gin.H{"order": order})
}
