package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"bakery-api/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, account_id, total_amount, status, created_at, updated_at`

type lockedProduct struct {
	ID    int64           `db:"id"`
	Name  string          `db:"name"`
	Price decimal.Decimal `db:"price"`
	Stock int             `db:"stock"`
}

// PlaceOrder converts the cart into an order in a single transaction. The
// cart row and its lines are locked and re-read, then product rows are locked
// and their stock re-checked before anything is written. Unit prices are taken
// from the locked product rows. On any failure stock, orders and the cart are
// left untouched; a cart with no lines yields ErrEmptyCart.
func (s *Store) PlaceOrder(ctx context.Context, accountID, cartID int64) (*models.Order, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var lockedCart int64
	err = tx.GetContext(ctx, &lockedCart,
		"SELECT id FROM carts WHERE id = $1 AND account_id = $2 FOR UPDATE", cartID, accountID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("cart %d: %w", cartID, ErrEmptyCart)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock cart: %w", err)
	}

	var lines []models.CartItem
	err = tx.SelectContext(ctx, &lines, `
		SELECT id, cart_id, product_id, quantity FROM cart_items
		WHERE cart_id = $1 ORDER BY id FOR UPDATE`, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock cart items: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("cart %d: %w", cartID, ErrEmptyCart)
	}

	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	locked, err := lockProducts(ctx, tx, ids)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, line := range lines {
		p, ok := locked[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: product %d is no longer available", ErrInsufficientStock, line.ProductID)
		}
		if p.Stock < line.Quantity {
			return nil, fmt.Errorf("%w: %s (available=%d, requested=%d)",
				ErrInsufficientStock, p.Name, p.Stock, line.Quantity)
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	var order models.Order
	err = tx.GetContext(ctx, &order, `
		INSERT INTO orders (account_id, total_amount, status)
		VALUES ($1, $2, $3)
		RETURNING `+orderColumns,
		accountID, total, models.OrderStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	order.Items = make([]models.OrderItem, 0, len(lines))
	lineIDs := make([]int64, 0, len(lines))
	for _, line := range lines {
		productID := line.ProductID
		item := models.OrderItem{
			OrderID:     order.ID,
			ProductID:   &productID,
			ProductName: locked[productID].Name,
			Quantity:    line.Quantity,
			UnitPrice:   locked[productID].Price,
		}
		err = tx.GetContext(ctx, &item.ID, `
			INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			item.OrderID, productID, item.ProductName, item.Quantity, item.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
		order.Items = append(order.Items, item)
		lineIDs = append(lineIDs, line.ID)

		_, err = tx.ExecContext(ctx,
			"UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2",
			line.Quantity, productID)
		if err != nil {
			return nil, fmt.Errorf("failed to decrement stock: %w", err)
		}
	}

	if err := deleteCartLines(ctx, tx, lineIDs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &order, nil
}

// deleteCartLines removes exactly the ordered lines
func deleteCartLines(ctx context.Context, tx *sqlx.Tx, lineIDs []int64) error {
	query, args, err := sqlx.In("DELETE FROM cart_items WHERE id IN (?)", lineIDs)
	if err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n != int64(len(lineIDs)) {
		return fmt.Errorf("failed to clear cart: removed %d of %d lines", n, len(lineIDs))
	}
	return nil
}

// lockProducts selects the given products FOR UPDATE in id order so that
// concurrent checkouts always acquire row locks in the same sequence.
func lockProducts(ctx context.Context, tx *sqlx.Tx, ids []int64) (map[int64]lockedProduct, error) {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	query, args, err := sqlx.In("SELECT id, name, price, stock FROM products WHERE id IN (?) ORDER BY id FOR UPDATE", sorted)
	if err != nil {
		return nil, err
	}
	query = tx.Rebind(query)

	var rows []lockedProduct
	if err := tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}

	locked := make(map[int64]lockedProduct, len(rows))
	for _, r := range rows {
		locked[r.ID] = r
	}
	return locked, nil
}

// GetOrderByID retrieves an order with its items
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	items, err := s.GetOrderItemsByOrderIDs(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	order.Items = itemsOrEmpty(items[id])
	return &order, nil
}

// GetOrdersByAccount retrieves an account's orders, newest first
func (s *Store) GetOrdersByAccount(ctx context.Context, accountID int64) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.SelectContext(ctx, &orders,
		"SELECT "+orderColumns+" FROM orders WHERE account_id = $1 ORDER BY created_at DESC, id DESC", accountID)
	if err != nil {
		return nil, err
	}
	return orders, s.attachItems(ctx, orders)
}

type orderWithCustomerRow struct {
	models.Order
	CustomerName  string `db:"customer_name"`
	CustomerEmail string `db:"customer_email"`
}

// GetAllOrders retrieves every order with its customer, newest first
func (s *Store) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	var rows []orderWithCustomerRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT o.id, o.account_id, o.total_amount, o.status, o.created_at, o.updated_at,
			a.name AS customer_name, a.email AS customer_email
		FROM orders o
		JOIN accounts a ON a.id = o.account_id
		ORDER BY o.created_at DESC, o.id DESC`)
	if err != nil {
		return nil, err
	}

	orders := make([]models.Order, 0, len(rows))
	for _, r := range rows {
		order := r.Order
		order.Customer = &models.OrderCustomer{Name: r.CustomerName, Email: r.CustomerEmail}
		orders = append(orders, order)
	}
	return orders, s.attachItems(ctx, orders)
}

// GetOrderItemsByOrderIDs retrieves the items of several orders keyed by order ID
func (s *Store) GetOrderItemsByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]models.OrderItem, error) {
	grouped := make(map[int64][]models.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return grouped, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, order_id, product_id, product_name, quantity, unit_price
		FROM order_items WHERE order_id IN (?) ORDER BY id`, orderIDs)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var items []models.OrderItem
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, err
	}
	for _, item := range items {
		grouped[item.OrderID] = append(grouped[item.OrderID], item)
	}
	return grouped, nil
}

func (s *Store) attachItems(ctx context.Context, orders []models.Order) error {
	ids := make([]int64, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}
	grouped, err := s.GetOrderItemsByOrderIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range orders {
		orders[i].Items = itemsOrEmpty(grouped[orders[i].ID])
	}
	return nil
}

func itemsOrEmpty(items []models.OrderItem) []models.OrderItem {
	if items == nil {
		return []models.OrderItem{}
	}
	return items
}

// TransitionCheck validates a status change against the locked order row.
type TransitionCheck func(current *models.Order) error

// TransitionOrder moves an order to a new status under a row lock. Moving to
// CANCELLED returns the ordered quantities to stock in the same transaction.
// The previous status is returned alongside the updated order.
func (s *Store) TransitionOrder(ctx context.Context, orderID int64, to string, check TransitionCheck) (*models.Order, string, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, "", err
	}
	defer tx.Rollback()

	var order models.Order
	err = tx.GetContext(ctx, &order,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1 FOR UPDATE", orderID)
	if err == sql.ErrNoRows {
		return nil, "", fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	if err != nil {
		return nil, "", err
	}

	from := order.Status
	if check != nil {
		if err := check(&order); err != nil {
			return nil, from, err
		}
	}

	if from != to {
		if to == models.OrderStatusCancelled {
			if err := restoreStock(ctx, tx, orderID); err != nil {
				return nil, from, err
			}
		}

		err = tx.GetContext(ctx, &order,
			"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING "+orderColumns,
			to, orderID)
		if err != nil {
			return nil, from, fmt.Errorf("failed to update order status: %w", err)
		}
	}

	var items []models.OrderItem
	err = tx.SelectContext(ctx, &items, `
		SELECT id, order_id, product_id, product_name, quantity, unit_price
		FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, from, err
	}
	order.Items = itemsOrEmpty(items)

	if err := tx.Commit(); err != nil {
		return nil, from, err
	}
	return &order, from, nil
}

// restoreStock adds the quantities of an order back to products that still exist.
func restoreStock(ctx context.Context, tx *sqlx.Tx, orderID int64) error {
	var changes []models.StockChange
	err := tx.SelectContext(ctx, &changes, `
		SELECT product_id, SUM(quantity) AS quantity
		FROM order_items
		WHERE order_id = $1 AND product_id IS NOT NULL
		GROUP BY product_id
		ORDER BY product_id`, orderID)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}

	for _, c := range changes {
		_, err := tx.ExecContext(ctx,
			"UPDATE products SET stock = stock + $1, updated_at = NOW() WHERE id = $2",
			c.Quantity, c.ProductID)
		if err != nil {
			return fmt.Errorf("failed to restore stock: %w", err)
		}
	}
	return nil
}
