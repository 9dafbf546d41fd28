package api

import (
	"net/http"

	"bakery-api/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) finalizeOrder(c *gin.Context) {
	order, err := h.orders.FinalizeOrder(c.Request.Context(), accountID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *Handler) listMyOrders(c *gin.Context) {
	orders, err := h.orders.ListCustomerOrders(c.Request.Context(), accountID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

func (h *Handler) listAllOrders(c *gin.Context) {
	orders, err := h.orders.ListAllOrders(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req service.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := h.orders.UpdateOrderStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *Handler) cancelOrder(c *gin.Context) {
	orderID, ok := idParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.CancelOrder(c.Request.Context(), accountID(c), orderID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}
