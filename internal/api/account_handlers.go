package api

import (
	"errors"
	"net/http"

	"bakery-api/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	account, err := h.accounts.Register(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, account)
}

func (h *Handler) login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.accounts.Login(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createSellerAccount(c *gin.Context) {
	var req service.CreateSellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	account, err := h.accounts.CreateSellerAccount(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, account)
}

func (h *Handler) requestSellerRole(c *gin.Context) {
	var in service.SellerRequestInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.accounts.RequestSellerRole(c.Request.Context(), &in)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// uploadAvatar accepts the image under "avatar" or "file"
func (h *Handler) uploadAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if errors.Is(err, http.ErrMissingFile) {
		file, err = c.FormFile("file")
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no image file sent"})
		return
	}

	url, err := h.accounts.UploadAvatar(c.Request.Context(), accountID(c), file)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "avatar updated", "avatarUrl": url})
}
