package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bakery-api/internal/models"

	"github.com/shopspring/decimal"
)

// GetCartByAccount retrieves the cart owned by an account
func (s *Store) GetCartByAccount(ctx context.Context, accountID int64) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.GetContext(ctx, &cart,
		"SELECT id, account_id, created_at FROM carts WHERE account_id = $1", accountID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("cart for account %d: %w", accountID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetOrCreateCart returns the account's cart, creating it on first use
func (s *Store) GetOrCreateCart(ctx context.Context, accountID int64) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.GetContext(ctx, &cart, `
		INSERT INTO carts (account_id) VALUES ($1)
		ON CONFLICT (account_id) DO UPDATE SET account_id = EXCLUDED.account_id
		RETURNING id, account_id, created_at`, accountID)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddCartItem inserts a line or accumulates the quantity of an existing one
func (s *Store) AddCartItem(ctx context.Context, cartID, productID int64, quantity int) (*models.CartItem, error) {
	var item models.CartItem
	err := s.db.GetContext(ctx, &item, `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, cart_id, product_id, quantity`,
		cartID, productID, quantity)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// SetCartItemQuantity overwrites the quantity of a cart line
func (s *Store) SetCartItemQuantity(ctx context.Context, cartID, productID int64, quantity int) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE cart_items SET quantity = $1 WHERE cart_id = $2 AND product_id = $3",
		quantity, cartID, productID)
	if err != nil {
		return err
	}
	return expectRow(result, "cart item", productID)
}

// DeleteCartItem removes a product line from a cart
func (s *Store) DeleteCartItem(ctx context.Context, cartID, productID int64) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2", cartID, productID)
	if err != nil {
		return err
	}
	return expectRow(result, "cart item", productID)
}

// ClearCart removes every line of a cart
func (s *Store) ClearCart(ctx context.Context, cartID int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM cart_items WHERE cart_id = $1", cartID)
	return err
}

type cartLineRow struct {
	ID                 int64           `db:"id"`
	ProductID          int64           `db:"product_id"`
	Quantity           int             `db:"quantity"`
	ProductName        string          `db:"product_name"`
	ProductDescription string          `db:"product_description"`
	ProductPrice       decimal.Decimal `db:"product_price"`
	ProductStock       int             `db:"product_stock"`
	ProductType        *string         `db:"product_type"`
	ProductBarcode     *string         `db:"product_barcode"`
	ProductImageURL    *string         `db:"product_image_url"`
	ProductCreatedAt   time.Time       `db:"product_created_at"`
	ProductUpdatedAt   time.Time       `db:"product_updated_at"`
}

// ListCartLines retrieves the lines of a cart joined with their products
func (s *Store) ListCartLines(ctx context.Context, cartID int64) ([]models.CartLine, error) {
	var rows []cartLineRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT ci.id, ci.product_id, ci.quantity,
			p.name AS product_name, p.description AS product_description,
			p.price AS product_price, p.stock AS product_stock,
			p.product_type AS product_type, p.barcode AS product_barcode,
			p.image_url AS product_image_url,
			p.created_at AS product_created_at, p.updated_at AS product_updated_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id`, cartID)
	if err != nil {
		return nil, err
	}

	lines := make([]models.CartLine, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, models.CartLine{
			ID:        r.ID,
			ProductID: r.ProductID,
			Quantity:  r.Quantity,
			Product: models.Product{
				ID:          r.ProductID,
				Name:        r.ProductName,
				Description: r.ProductDescription,
				Price:       r.ProductPrice,
				Stock:       r.ProductStock,
				Type:        r.ProductType,
				Barcode:     r.ProductBarcode,
				ImageURL:    r.ProductImageURL,
				CreatedAt:   r.ProductCreatedAt,
				UpdatedAt:   r.ProductUpdatedAt,
			},
		})
	}
	return lines, nil
}

func expectRow(result sql.Result, what string, id int64) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return nil
}
