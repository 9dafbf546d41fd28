package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bakery-api/internal/models"

	"github.com/go-redis/redis/v8"
)

const productListKey = "products:all"

type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClient creates a new Redis client and verifies the connection
func NewClient(addr, password string, db int, ttl time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb, ttl: ttl}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks the Redis connection
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// GetProducts returns the cached product listing. The boolean is false on a miss.
func (c *Client) GetProducts(ctx context.Context) ([]models.Product, bool, error) {
	raw, err := c.rdb.Get(ctx, productListKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", productListKey, err)
	}

	var products []models.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		// a corrupt entry is treated as a miss and dropped
		_ = c.rdb.Del(ctx, productListKey).Err()
		return nil, false, nil
	}
	return products, true, nil
}

// SetProducts caches the product listing for the configured TTL
func (c *Client) SetProducts(ctx context.Context, products []models.Product) error {
	raw, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to marshal products: %w", err)
	}
	return c.rdb.Set(ctx, productListKey, raw, c.ttl).Err()
}

// InvalidateProducts drops the cached product listing
func (c *Client) InvalidateProducts(ctx context.Context) error {
	return c.rdb.Del(ctx, productListKey).Err()
}
