package api

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"bakery-api/internal/models"
	"bakery-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// productBody is the product payload, sent as JSON or as a multipart form
// with an optional "image" file. Absent fields stay nil.
type productBody struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Type        *string          `json:"type"`
	Barcode     *string          `json:"barcode"`
}

func (b productBody) input() service.ProductInput {
	in := service.ProductInput{
		Price:   b.Price,
		Stock:   b.Stock,
		Type:    b.Type,
		Barcode: b.Barcode,
	}
	if b.Name != nil {
		in.Name = *b.Name
	}
	if b.Description != nil {
		in.Description = *b.Description
	}
	return in
}

func (b productBody) patch() models.ProductPatch {
	return models.ProductPatch{
		Name:        b.Name,
		Description: b.Description,
		Price:       b.Price,
		Stock:       b.Stock,
		Type:        b.Type,
		Barcode:     b.Barcode,
	}
}

func isForm(c *gin.Context) bool {
	ct := c.ContentType()
	return ct == gin.MIMEMultipartPOSTForm || ct == gin.MIMEPOSTForm
}

func readProductBody(c *gin.Context) (productBody, *multipart.FileHeader, error) {
	var body productBody
	if !isForm(c) {
		if err := c.ShouldBindJSON(&body); err != nil {
			return body, nil, err
		}
		return body, nil, nil
	}

	text := func(field string) *string {
		if v, ok := c.GetPostForm(field); ok {
			return &v
		}
		return nil
	}
	body.Name = text("name")
	body.Description = text("description")
	body.Type = text("type")
	body.Barcode = text("barcode")

	if raw := text("price"); raw != nil && strings.TrimSpace(*raw) != "" {
		price, err := decimal.NewFromString(strings.TrimSpace(*raw))
		if err != nil {
			return body, nil, fmt.Errorf("price: %w", err)
		}
		body.Price = &price
	}
	if raw := text("stock"); raw != nil && strings.TrimSpace(*raw) != "" {
		stock, err := strconv.Atoi(strings.TrimSpace(*raw))
		if err != nil {
			return body, nil, fmt.Errorf("stock: %w", err)
		}
		body.Stock = &stock
	}

	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return body, nil, nil
	}
	image, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return body, nil, nil
	}
	if err != nil {
		return body, nil, fmt.Errorf("image: %w", err)
	}
	return body, image, nil
}

func (h *Handler) createProduct(c *gin.Context) {
	body, image, err := readProductBody(c)
	if err != nil {
		respondBindError(c, err)
		return
	}

	product, err := h.products.CreateProduct(c.Request.Context(), body.input(), image)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.products.ListProducts(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, products)
}

func (h *Handler) getProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	product, err := h.products.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	body, image, err := readProductBody(c)
	if err != nil {
		respondBindError(c, err)
		return
	}

	product, err := h.products.UpdateProduct(c.Request.Context(), id, body.patch(), image)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.products.DeleteProduct(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
