package service

import (
	"context"
	"mime/multipart"

	"bakery-api/internal/mailer"
	"bakery-api/internal/models"
	"bakery-api/internal/store"

	"github.com/stretchr/testify/mock"
)

type MockAccountRepo struct {
	mock.Mock
}

func (m *MockAccountRepo) CreateAccount(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	if args.Error(0) == nil {
		account.ID = 1
	}
	return args.Error(0)
}

func (m *MockAccountRepo) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(ctx, email)
	account, _ := args.Get(0).(*models.Account)
	return account, args.Error(1)
}

func (m *MockAccountRepo) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	account, _ := args.Get(0).(*models.Account)
	return account, args.Error(1)
}

func (m *MockAccountRepo) UpdateAccountAvatar(ctx context.Context, id int64, avatarURL string) error {
	return m.Called(ctx, id, avatarURL).Error(0)
}

func (m *MockAccountRepo) CreateSellerRequest(ctx context.Context, req *models.SellerRequest) error {
	args := m.Called(ctx, req)
	if args.Error(0) == nil {
		req.ID = 1
	}
	return args.Error(0)
}

func (m *MockAccountRepo) GetSellerRequestByEmail(ctx context.Context, email string) (*models.SellerRequest, error) {
	args := m.Called(ctx, email)
	req, _ := args.Get(0).(*models.SellerRequest)
	return req, args.Error(1)
}

type MockProductRepo struct {
	mock.Mock
}

func (m *MockProductRepo) CreateProduct(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	if args.Error(0) == nil {
		product.ID = 1
	}
	return args.Error(0)
}

func (m *MockProductRepo) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	args := m.Called(ctx, id)
	product, _ := args.Get(0).(*models.Product)
	return product, args.Error(1)
}

func (m *MockProductRepo) GetProducts(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	products, _ := args.Get(0).([]models.Product)
	return products, args.Error(1)
}

func (m *MockProductRepo) UpdateProduct(ctx context.Context, id int64, patch models.ProductPatch) (*models.Product, error) {
	args := m.Called(ctx, id, patch)
	product, _ := args.Get(0).(*models.Product)
	return product, args.Error(1)
}

func (m *MockProductRepo) DeleteProduct(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockCartRepo struct {
	mock.Mock
}

func (m *MockCartRepo) GetCartByAccount(ctx context.Context, accountID int64) (*models.Cart, error) {
	args := m.Called(ctx, accountID)
	cart, _ := args.Get(0).(*models.Cart)
	return cart, args.Error(1)
}

func (m *MockCartRepo) GetOrCreateCart(ctx context.Context, accountID int64) (*models.Cart, error) {
	args := m.Called(ctx, accountID)
	cart, _ := args.Get(0).(*models.Cart)
	return cart, args.Error(1)
}

func (m *MockCartRepo) AddCartItem(ctx context.Context, cartID, productID int64, quantity int) (*models.CartItem, error) {
	args := m.Called(ctx, cartID, productID, quantity)
	item, _ := args.Get(0).(*models.CartItem)
	return item, args.Error(1)
}

func (m *MockCartRepo) SetCartItemQuantity(ctx context.Context, cartID, productID int64, quantity int) error {
	return m.Called(ctx, cartID, productID, quantity).Error(0)
}

func (m *MockCartRepo) DeleteCartItem(ctx context.Context, cartID, productID int64) error {
	return m.Called(ctx, cartID, productID).Error(0)
}

func (m *MockCartRepo) ClearCart(ctx context.Context, cartID int64) error {
	return m.Called(ctx, cartID).Error(0)
}

func (m *MockCartRepo) ListCartLines(ctx context.Context, cartID int64) ([]models.CartLine, error) {
	args := m.Called(ctx, cartID)
	lines, _ := args.Get(0).([]models.CartLine)
	return lines, args.Error(1)
}

type MockOrderRepo struct {
	mock.Mock
}

func (m *MockOrderRepo) PlaceOrder(ctx context.Context, accountID, cartID int64) (*models.Order, error) {
	args := m.Called(ctx, accountID, cartID)
	order, _ := args.Get(0).(*models.Order)
	return order, args.Error(1)
}

func (m *MockOrderRepo) GetOrdersByAccount(ctx context.Context, accountID int64) ([]models.Order, error) {
	args := m.Called(ctx, accountID)
	orders, _ := args.Get(0).([]models.Order)
	return orders, args.Error(1)
}

func (m *MockOrderRepo) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	args := m.Called(ctx)
	orders, _ := args.Get(0).([]models.Order)
	return orders, args.Error(1)
}

// TransitionOrder returns the configured current row and runs check against
// it the way the store does under its row lock.
func (m *MockOrderRepo) TransitionOrder(ctx context.Context, orderID int64, to string, check store.TransitionCheck) (*models.Order, string, error) {
	args := m.Called(ctx, orderID, to)
	if err := args.Error(1); err != nil {
		return nil, "", err
	}

	current := *args.Get(0).(*models.Order)
	from := current.Status
	if check != nil {
		if err := check(&current); err != nil {
			return nil, from, err
		}
	}
	current.Status = to
	return &current, from, nil
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetProducts(ctx context.Context) ([]models.Product, bool, error) {
	args := m.Called(ctx)
	products, _ := args.Get(0).([]models.Product)
	return products, args.Bool(1), args.Error(2)
}

func (m *MockCache) SetProducts(ctx context.Context, products []models.Product) error {
	return m.Called(ctx, products).Error(0)
}

func (m *MockCache) InvalidateProducts(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockPublisher) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	return m.Called(ctx, event).Error(0)
}

type MockFiles struct {
	mock.Mock
}

func (m *MockFiles) Save(file *multipart.FileHeader, subdir, label string) (string, error) {
	args := m.Called(file, subdir, label)
	return args.String(0), args.Error(1)
}

func (m *MockFiles) Remove(url string) error {
	return m.Called(url).Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg mailer.Message) error {
	return m.Called(ctx, msg).Error(0)
}
