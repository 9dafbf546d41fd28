package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"bakery-api/internal/models"
	"bakery-api/internal/store"
	"bakery-api/internal/uploads"
	"bakery-api/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductService handles catalog business logic
type ProductService struct {
	products ProductRepository
	cache    ProductCache
	files    FileStorage
	logger   *zap.Logger
}

// NewProductService creates a new product service. cache may be nil.
func NewProductService(products ProductRepository, cache ProductCache, files FileStorage) *ProductService {
	return &ProductService{
		products: products,
		cache:    cache,
		files:    files,
		logger:   util.GetLogger(),
	}
}

// ProductInput carries the fields of a new product
type ProductInput struct {
	Name        string
	Description string
	Price       *decimal.Decimal
	Stock       *int
	Type        *string
	Barcode     *string
}

// CreateProduct validates and stores a new product, with an optional image
func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput, image *multipart.FileHeader) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.CreateProduct")
	defer span.End()

	name := strings.TrimSpace(in.Name)
	if name == "" || in.Price == nil || in.Stock == nil {
		return nil, newError(ErrValidation, "name, price and stock are required")
	}
	if err := validatePriceStock(in.Price, in.Stock); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        name,
		Description: in.Description,
		Price:       in.Price.Round(2),
		Stock:       *in.Stock,
		Type:        blankToNil(in.Type),
		Barcode:     blankToNil(in.Barcode),
	}

	if image != nil {
		url, err := s.saveImage(image, name)
		if err != nil {
			return nil, err
		}
		product.ImageURL = &url
	}

	if err := s.products.CreateProduct(ctx, product); err != nil {
		if product.ImageURL != nil {
			s.discardImage(*product.ImageURL)
		}
		if errors.Is(err, store.ErrDuplicate) {
			return nil, newError(ErrConflict, "a product with this barcode already exists")
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.invalidate(ctx)
	s.logger.Info("Product created", zap.Int64("product_id", product.ID))
	return product, nil
}

// ListProducts returns the catalog ordered by id
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.ListProducts")
	defer span.End()

	if s.cache != nil {
		products, ok, err := s.cache.GetProducts(ctx)
		switch {
		case err != nil:
			util.ProductCacheLookups.WithLabelValues("error").Inc()
			s.logger.Warn("Product cache unavailable", zap.Error(err))
		case ok:
			util.ProductCacheLookups.WithLabelValues("hit").Inc()
			return products, nil
		default:
			util.ProductCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	products, err := s.products.GetProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetProducts(ctx, products); err != nil {
			s.logger.Warn("Failed to cache products", zap.Error(err))
		}
	}
	return products, nil
}

// GetProduct returns one product
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.products.GetProductByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(ErrNotFound, "product not found")
	}
	return product, err
}

// UpdateProduct applies only the supplied fields
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, patch models.ProductPatch, image *multipart.FileHeader) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.UpdateProduct")
	defer span.End()

	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, newError(ErrValidation, "name cannot be empty")
	}
	if err := validatePriceStock(patch.Price, patch.Stock); err != nil {
		return nil, err
	}
	if patch.Price != nil {
		rounded := patch.Price.Round(2)
		patch.Price = &rounded
	}
	if patch.Type != nil {
		patch.Type = blankToNil(patch.Type)
		patch.ClearType = patch.Type == nil
	}
	if patch.Barcode != nil {
		patch.Barcode = blankToNil(patch.Barcode)
		patch.ClearBarcode = patch.Barcode == nil
	}

	var previousImage *string
	if image != nil {
		current, err := s.products.GetProductByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return nil, newError(ErrNotFound, "product not found")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load product: %w", err)
		}
		previousImage = current.ImageURL

		label := current.Name
		if patch.Name != nil {
			label = *patch.Name
		}
		url, err := s.saveImage(image, label)
		if err != nil {
			return nil, err
		}
		patch.ImageURL = &url
	}

	product, err := s.products.UpdateProduct(ctx, id, patch)
	if err != nil && patch.ImageURL != nil {
		s.discardImage(*patch.ImageURL)
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(ErrNotFound, "product not found")
	}
	if errors.Is(err, store.ErrDuplicate) {
		return nil, newError(ErrConflict, "a product with this barcode already exists")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if previousImage != nil {
		s.discardImage(*previousImage)
	}
	s.invalidate(ctx)
	return product, nil
}

// DeleteProduct removes a product permanently
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	ctx, span := util.StartSpan(ctx, "ProductService.DeleteProduct")
	defer span.End()

	err := s.products.DeleteProduct(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return newError(ErrNotFound, "product not found")
	}
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.invalidate(ctx)
	s.logger.Info("Product deleted", zap.Int64("product_id", id))
	return nil
}

func (s *ProductService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateProducts(ctx); err != nil {
		s.logger.Warn("Failed to invalidate product cache", zap.Error(err))
	}
}

func (s *ProductService) saveImage(image *multipart.FileHeader, label string) (string, error) {
	url, err := s.files.Save(image, uploads.ProductsDir, label)
	if errors.Is(err, uploads.ErrUnsupportedType) {
		return "", newError(ErrBadRequest, "unsupported image type")
	}
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return url, nil
}

// discardImage removes an uploaded image that no product references
func (s *ProductService) discardImage(url string) {
	if err := s.files.Remove(url); err != nil {
		s.logger.Warn("Failed to remove product image", zap.String("url", url), zap.Error(err))
	}
}

func validatePriceStock(price *decimal.Decimal, stock *int) error {
	if price != nil && price.IsNegative() {
		return newError(ErrValidation, "price cannot be negative")
	}
	if stock != nil && *stock < 0 {
		return newError(ErrValidation, "stock cannot be negative")
	}
	return nil
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	return &trimmed
}
