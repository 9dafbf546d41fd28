package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"bakery-api/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

//go:embed schema.sql
var schemaSQL string

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("duplicate")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
)

const productColumns = `id, name, description, price, stock, product_type, barcode, image_url, created_at, updated_at`

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// NewStoreWithDB wraps an already opened connection
func NewStoreWithDB(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// CreateProduct inserts a new product
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (name, description, price, stock, product_type, barcode, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		product.Name, product.Description, product.Price, product.Stock,
		product.Type, product.Barcode, product.ImageURL,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("product barcode already registered: %w", ErrDuplicate)
	}
	return err
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product,
		"SELECT "+productColumns+" FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProducts retrieves all products
func (s *Store) GetProducts(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.SelectContext(ctx, &products,
		"SELECT "+productColumns+" FROM products ORDER BY id")
	return products, err
}

// UpdateProduct applies the non-nil fields of patch
func (s *Store) UpdateProduct(ctx context.Context, id int64, patch models.ProductPatch) (*models.Product, error) {
	if patch.Empty() {
		return s.GetProductByID(ctx, id)
	}

	sets := make([]string, 0, 8)
	args := make([]interface{}, 0, 8)
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.Stock != nil {
		add("stock", *patch.Stock)
	}
	switch {
	case patch.ClearType:
		add("product_type", nil)
	case patch.Type != nil:
		add("product_type", *patch.Type)
	}
	switch {
	case patch.ClearBarcode:
		add("barcode", nil)
	case patch.Barcode != nil:
		add("barcode", *patch.Barcode)
	}
	if patch.ImageURL != nil {
		add("image_url", *patch.ImageURL)
	}

	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE products SET %s, updated_at = NOW() WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), productColumns)

	var product models.Product
	err := s.db.GetContext(ctx, &product, query, args...)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("product barcode already registered: %w", ErrDuplicate)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct removes a product permanently
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	return expectRow(result, "product", id)
}
