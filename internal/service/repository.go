package service

import (
	"context"
	"mime/multipart"

	"bakery-api/internal/models"
	"bakery-api/internal/store"
)

// AccountRepository persists accounts and seller requests
type AccountRepository interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	GetAccountByID(ctx context.Context, id int64) (*models.Account, error)
	UpdateAccountAvatar(ctx context.Context, id int64, avatarURL string) error
	CreateSellerRequest(ctx context.Context, req *models.SellerRequest) error
	GetSellerRequestByEmail(ctx context.Context, email string) (*models.SellerRequest, error)
}

// ProductRepository persists the catalog
type ProductRepository interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, id int64) (*models.Product, error)
	GetProducts(ctx context.Context) ([]models.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch models.ProductPatch) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// CartRepository persists account carts
type CartRepository interface {
	GetCartByAccount(ctx context.Context, accountID int64) (*models.Cart, error)
	GetOrCreateCart(ctx context.Context, accountID int64) (*models.Cart, error)
	AddCartItem(ctx context.Context, cartID, productID int64, quantity int) (*models.CartItem, error)
	SetCartItemQuantity(ctx context.Context, cartID, productID int64, quantity int) error
	DeleteCartItem(ctx context.Context, cartID, productID int64) error
	ClearCart(ctx context.Context, cartID int64) error
	ListCartLines(ctx context.Context, cartID int64) ([]models.CartLine, error)
}

// OrderRepository persists orders and runs the checkout transaction
type OrderRepository interface {
	PlaceOrder(ctx context.Context, accountID, cartID int64) (*models.Order, error)
	GetOrdersByAccount(ctx context.Context, accountID int64) ([]models.Order, error)
	GetAllOrders(ctx context.Context) ([]models.Order, error)
	TransitionOrder(ctx context.Context, orderID int64, to string, check store.TransitionCheck) (*models.Order, string, error)
}

// ProductCache holds the product listing
type ProductCache interface {
	GetProducts(ctx context.Context) ([]models.Product, bool, error)
	SetProducts(ctx context.Context, products []models.Product) error
	InvalidateProducts(ctx context.Context) error
}

// EventPublisher emits order domain events
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
}

// FileStorage stores uploaded images and returns their public URL
type FileStorage interface {
	Save(file *multipart.FileHeader, subdir, label string) (string, error)
	Remove(url string) error
}

// TokenIssuer signs bearer tokens
type TokenIssuer interface {
	Issue(id int64, name, role string) (string, error)
}
