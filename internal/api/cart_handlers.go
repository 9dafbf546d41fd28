package api

import (
	"net/http"

	"bakery-api/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) addCartItem(c *gin.Context) {
	var req service.CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := h.carts.AddItem(c.Request.Context(), accountID(c), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "product added to cart", "item": item})
}

func (h *Handler) viewCart(c *gin.Context) {
	view, err := h.carts.ViewCart(c.Request.Context(), accountID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// setCartItemQuantity answers 204 when a non-positive quantity removed the line
func (h *Handler) setCartItemQuantity(c *gin.Context) {
	var req service.CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	removed, err := h.carts.SetItemQuantity(c.Request.Context(), accountID(c), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if removed {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "quantity updated",
		"productId": req.ProductID,
		"quantity":  req.Quantity,
	})
}

func (h *Handler) removeCartItem(c *gin.Context) {
	productID, ok := idParam(c, "productId")
	if !ok {
		return
	}

	if err := h.carts.RemoveItem(c.Request.Context(), accountID(c), productID); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) clearCart(c *gin.Context) {
	if err := h.carts.ClearCart(c.Request.Context(), accountID(c)); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
