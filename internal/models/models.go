package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account roles
const (
	RoleCustomer = "CUSTOMER"
	RoleSeller   = "SELLER"
)

// Account represents a registered user
type Account struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	AvatarURL    *string   `db:"avatar_url" json:"avatarUrl,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// Seller request statuses
const (
	SellerRequestPending  = "PENDING"
	SellerRequestApproved = "APPROVED"
	SellerRequestRejected = "REJECTED"
)

// SellerRequest is a pending application for the seller role
type SellerRequest struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Phone        string    `db:"phone" json:"phone"`
	Address      *string   `db:"address" json:"address,omitempty"`
	Description  *string   `db:"description" json:"description,omitempty"`
	ApprovalCode string    `db:"approval_code" json:"-"`
	Status       string    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// Product represents a catalog entry
type Product struct {
	ID          int64           `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Stock       int             `db:"stock" json:"stock"`
	Type        *string         `db:"product_type" json:"type,omitempty"`
	Barcode     *string         `db:"barcode" json:"barcode,omitempty"`
	ImageURL    *string         `db:"image_url" json:"imageUrl,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}

// ProductPatch carries the fields of a partial product update.
// Nil fields are left untouched. ClearType and ClearBarcode set the
// column to NULL and win over the matching value.
type ProductPatch struct {
	Name         *string
	Description  *string
	Price        *decimal.Decimal
	Stock        *int
	Type         *string
	Barcode      *string
	ImageURL     *string
	ClearType    bool
	ClearBarcode bool
}

// Empty reports whether the patch changes nothing.
func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil && p.Stock == nil &&
		p.Type == nil && p.Barcode == nil && p.ImageURL == nil && !p.ClearType && !p.ClearBarcode
}

// Cart is the per-account shopping cart
type Cart struct {
	ID        int64     `db:"id" json:"id"`
	AccountID int64     `db:"account_id" json:"accountId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// CartItem is one product line of a cart
type CartItem struct {
	ID        int64 `db:"id" json:"id"`
	CartID    int64 `db:"cart_id" json:"cartId"`
	ProductID int64 `db:"product_id" json:"productId"`
	Quantity  int   `db:"quantity" json:"quantity"`
}

// CartLine is a cart item joined with the product it references
type CartLine struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"productId"`
	Quantity  int     `json:"quantity"`
	Product   Product `json:"product"`
}

// LineTotal is the current price of the line.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order statuses
const (
	OrderStatusPending       = "PENDING"
	OrderStatusInPreparation = "IN_PREPARATION"
	OrderStatusInTransit     = "IN_TRANSIT"
	OrderStatusDelivered     = "DELIVERED"
	OrderStatusCancelled     = "CANCELLED"
)

// OrderStatuses lists every valid status in lifecycle order.
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusInPreparation,
	OrderStatusInTransit,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// Order represents a placed customer order
type Order struct {
	ID          int64           `db:"id" json:"id"`
	AccountID   int64           `db:"account_id" json:"accountId"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total"`
	Status      string          `db:"status" json:"status"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
	Customer    *OrderCustomer  `db:"-" json:"customer,omitempty"`
	Items       []OrderItem     `db:"-" json:"items"`
}

// OrderCustomer is the account summary attached to seller-side listings
type OrderCustomer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// OrderItem represents a purchased line with its price frozen at checkout
type OrderItem struct {
	ID          int64           `db:"id" json:"id"`
	OrderID     int64           `db:"order_id" json:"orderId"`
	ProductID   *int64          `db:"product_id" json:"productId"`
	ProductName string          `db:"product_name" json:"productName"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unitPrice"`
}

// StockChange is a per-product quantity applied to stock
type StockChange struct {
	ProductID int64 `db:"product_id"`
	Quantity  int   `db:"quantity"`
}
