package service

import (
	"context"
	"errors"
	"fmt"

	"bakery-api/internal/models"
	"bakery-api/internal/store"
	"bakery-api/internal/util"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CartService handles the per-account shopping cart
type CartService struct {
	carts    CartRepository
	products ProductRepository
	logger   *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(carts CartRepository, products ProductRepository) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		logger:   util.GetLogger(),
	}
}

// CartItemRequest names a product and a quantity
type CartItemRequest struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int   `json:"quantity"`
}

// CartView is the cart as returned to its owner
type CartView struct {
	Items     []models.CartLine `json:"items"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
	ItemCount int               `json:"itemCount"`
}

// AddItem adds quantity of a product to the account's cart, creating the cart
// on first use. Adding a product already in the cart accumulates its quantity.
func (s *CartService) AddItem(ctx context.Context, accountID int64, req *CartItemRequest) (*models.CartItem, error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddItem",
		attribute.Int64("account_id", accountID), attribute.Int64("product_id", req.ProductID))
	defer span.End()

	if req.Quantity <= 0 {
		return nil, newError(ErrValidation, "quantity must be greater than zero")
	}

	product, err := s.products.GetProductByID(ctx, req.ProductID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(ErrBadRequest, "product not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product.Stock < req.Quantity {
		return nil, newError(ErrBadRequest, "insufficient stock for %s (available: %d)", product.Name, product.Stock)
	}

	cart, err := s.carts.GetOrCreateCart(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to open cart: %w", err)
	}

	item, err := s.carts.AddCartItem(ctx, cart.ID, req.ProductID, req.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	util.CartItemsAddedTotal.Inc()
	s.logger.Debug("Cart item added",
		zap.Int64("account_id", accountID),
		zap.Int64("product_id", req.ProductID),
		zap.Int("quantity", item.Quantity))
	return item, nil
}

// SetItemQuantity overwrites a line's quantity. A quantity of zero or less
// removes the line, reported by the boolean result. Stock is not re-checked
// here; checkout validates it under lock.
func (s *CartService) SetItemQuantity(ctx context.Context, accountID int64, req *CartItemRequest) (bool, error) {
	ctx, span := util.StartSpan(ctx, "CartService.SetItemQuantity")
	defer span.End()

	cart, err := s.cart(ctx, accountID)
	if err != nil {
		return false, err
	}

	if req.Quantity <= 0 {
		return true, s.deleteLine(ctx, cart.ID, req.ProductID)
	}

	err = s.carts.SetCartItemQuantity(ctx, cart.ID, req.ProductID, req.Quantity)
	if errors.Is(err, store.ErrNotFound) {
		return false, newError(ErrNotFound, "item not found in cart")
	}
	if err != nil {
		return false, fmt.Errorf("failed to update cart item: %w", err)
	}
	return false, nil
}

// RemoveItem deletes a product line from the cart
func (s *CartService) RemoveItem(ctx context.Context, accountID, productID int64) error {
	cart, err := s.cart(ctx, accountID)
	if err != nil {
		return err
	}
	return s.deleteLine(ctx, cart.ID, productID)
}

// ClearCart empties the account's cart. Having no cart is not an error.
func (s *CartService) ClearCart(ctx context.Context, accountID int64) error {
	cart, err := s.carts.GetCartByAccount(ctx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}
	if err := s.carts.ClearCart(ctx, cart.ID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// ViewCart lists the cart lines with product detail in insertion order
func (s *CartService) ViewCart(ctx context.Context, accountID int64) (*CartView, error) {
	ctx, span := util.StartSpan(ctx, "CartService.ViewCart")
	defer span.End()

	view := &CartView{Items: []models.CartLine{}, Subtotal: decimal.Zero}

	cart, err := s.carts.GetCartByAccount(ctx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return view, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	lines, err := s.carts.ListCartLines(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}

	for _, line := range lines {
		view.Subtotal = view.Subtotal.Add(line.LineTotal())
		view.ItemCount += line.Quantity
	}
	if lines != nil {
		view.Items = lines
	}
	return view, nil
}

func (s *CartService) cart(ctx context.Context, accountID int64) (*models.Cart, error) {
	cart, err := s.carts.GetCartByAccount(ctx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(ErrNotFound, "cart not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return cart, nil
}

func (s *CartService) deleteLine(ctx context.Context, cartID, productID int64) error {
	err := s.carts.DeleteCartItem(ctx, cartID, productID)
	if errors.Is(err, store.ErrNotFound) {
		return newError(ErrNotFound, "item not found in cart")
	}
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}
