package service

import (
	"context"
	"fmt"
	"testing"

	"bakery-api/internal/models"
	"bakery-api/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	orders    *MockOrderRepo
	carts     *MockCartRepo
	accounts  *MockAccountRepo
	cache     *MockCache
	publisher *MockPublisher
	svc       *OrderService
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders:    new(MockOrderRepo),
		carts:     new(MockCartRepo),
		accounts:  new(MockAccountRepo),
		cache:     new(MockCache),
		publisher: new(MockPublisher),
	}
	f.svc = NewOrderService(f.orders, f.carts, f.accounts, f.cache, f.publisher)
	f.accounts.On("GetAccountByID", mock.Anything, int64(7)).
		Return(&models.Account{ID: 7, Name: "Ana", Email: "ana@padaria.com"}, nil).Maybe()
	return f
}

func TestFinalizeOrder(t *testing.T) {
	f := newOrderFixture()
	total := decimal.RequireFromString("12.00")
	placed := &models.Order{
		ID: 100, AccountID: 7, TotalAmount: total, Status: models.OrderStatusPending,
		Items: []models.OrderItem{
			{ProductName: "Pão", Quantity: 2, UnitPrice: decimal.RequireFromString("4.50")},
			{ProductName: "Bolo", Quantity: 1, UnitPrice: decimal.RequireFromString("3.00")},
		},
	}

	f.carts.On("GetCartByAccount", mock.Anything, int64(7)).Return(&models.Cart{ID: 3, AccountID: 7}, nil)
	f.orders.On("PlaceOrder", mock.Anything, int64(7), int64(3)).Return(placed, nil)
	f.cache.On("InvalidateProducts", mock.Anything).Return(nil)
	f.publisher.On("PublishOrderPlaced", mock.Anything, mock.MatchedBy(func(e *models.OrderPlacedEvent) bool {
		return e.OrderID == 100 && e.CustomerEmail == "ana@padaria.com" &&
			e.EventType == models.EventTypeOrderPlaced && len(e.Items) == 2
	})).Return(nil)

	order, err := f.svc.FinalizeOrder(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, int64(100), order.ID)
	f.orders.AssertExpectations(t)
	f.cache.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestFinalizeOrderEmptyCart(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *orderFixture)
	}{
		{
			name: "no cart",
			setup: func(f *orderFixture) {
				f.carts.On("GetCartByAccount", mock.Anything, int64(7)).Return(nil, store.ErrNotFound)
			},
		},
		{
			name: "cart emptied before checkout",
			setup: func(f *orderFixture) {
				f.carts.On("GetCartByAccount", mock.Anything, int64(7)).Return(&models.Cart{ID: 3}, nil)
				f.orders.On("PlaceOrder", mock.Anything, int64(7), int64(3)).
					Return(nil, fmt.Errorf("cart 3: %w", store.ErrEmptyCart))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture()
			tt.setup(f)

			_, err := f.svc.FinalizeOrder(context.Background(), 7)

			assert.ErrorIs(t, err, ErrBadRequest)
			f.publisher.AssertNotCalled(t, "PublishOrderPlaced", mock.Anything, mock.Anything)
			f.cache.AssertNotCalled(t, "InvalidateProducts", mock.Anything)
		})
	}
}

func TestFinalizeOrderInsufficientStock(t *testing.T) {
	f := newOrderFixture()
	f.carts.On("GetCartByAccount", mock.Anything, int64(7)).Return(&models.Cart{ID: 3}, nil)
	f.orders.On("PlaceOrder", mock.Anything, int64(7), int64(3)).
		Return(nil, fmt.Errorf("%w: Pão (available=0, requested=1)", store.ErrInsufficientStock))

	_, err := f.svc.FinalizeOrder(context.Background(), 7)

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Pão")
	f.publisher.AssertNotCalled(t, "PublishOrderPlaced", mock.Anything, mock.Anything)
	f.cache.AssertNotCalled(t, "InvalidateProducts", mock.Anything)
}

func TestFinalizeOrderPublishFailureStillSucceeds(t *testing.T) {
	f := newOrderFixture()
	f.carts.On("GetCartByAccount", mock.Anything, int64(7)).Return(&models.Cart{ID: 3}, nil)
	f.orders.On("PlaceOrder", mock.Anything, int64(7), int64(3)).
		Return(&models.Order{ID: 1, AccountID: 7, Status: models.OrderStatusPending}, nil)
	f.cache.On("InvalidateProducts", mock.Anything).Return(nil)
	f.publisher.On("PublishOrderPlaced", mock.Anything, mock.Anything).Return(fmt.Errorf("kafka down"))

	order, err := f.svc.FinalizeOrder(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, int64(1), order.ID)
}

func TestUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	for _, status := range []string{"", "SHIPPED", "pending", "PAID"} {
		f := newOrderFixture()

		_, err := f.svc.UpdateOrderStatus(context.Background(), 1, status)

		assert.ErrorIs(t, err, ErrValidation, status)
		f.orders.AssertNotCalled(t, "TransitionOrder", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestUpdateOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		current string
		to      string
		want    error
	}{
		{name: "forward", current: models.OrderStatusPending, to: models.OrderStatusInPreparation},
		{name: "skip ahead", current: models.OrderStatusPending, to: models.OrderStatusDelivered},
		{name: "cancel in transit", current: models.OrderStatusInTransit, to: models.OrderStatusCancelled},
		{name: "backwards", current: models.OrderStatusInTransit, to: models.OrderStatusPending, want: ErrConflict},
		{name: "from delivered", current: models.OrderStatusDelivered, to: models.OrderStatusCancelled, want: ErrConflict},
		{name: "from cancelled", current: models.OrderStatusCancelled, to: models.OrderStatusPending, want: ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture()
			f.orders.On("TransitionOrder", mock.Anything, int64(1), tt.to).
				Return(&models.Order{ID: 1, AccountID: 7, Status: tt.current}, nil)
			f.cache.On("InvalidateProducts", mock.Anything).Return(nil).Maybe()
			f.publisher.On("PublishOrderStatusChanged", mock.Anything, mock.MatchedBy(func(e *models.OrderStatusChangedEvent) bool {
				return e.OldStatus == tt.current && e.NewStatus == tt.to && e.CustomerEmail == "ana@padaria.com"
			})).Return(nil).Maybe()

			order, err := f.svc.UpdateOrderStatus(context.Background(), 1, tt.to)

			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
				f.publisher.AssertNotCalled(t, "PublishOrderStatusChanged", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, order.Status)
			f.publisher.AssertNumberOfCalls(t, "PublishOrderStatusChanged", 1)
		})
	}
}

func TestUpdateOrderStatusSameStatusIsNoop(t *testing.T) {
	f := newOrderFixture()
	f.orders.On("TransitionOrder", mock.Anything, int64(1), models.OrderStatusInTransit).
		Return(&models.Order{ID: 1, Status: models.OrderStatusInTransit}, nil)

	order, err := f.svc.UpdateOrderStatus(context.Background(), 1, models.OrderStatusInTransit)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusInTransit, order.Status)
	f.publisher.AssertNotCalled(t, "PublishOrderStatusChanged", mock.Anything, mock.Anything)
}

func TestUpdateOrderStatusNotFound(t *testing.T) {
	f := newOrderFixture()
	f.orders.On("TransitionOrder", mock.Anything, int64(404), models.OrderStatusInTransit).
		Return(nil, store.ErrNotFound)

	_, err := f.svc.UpdateOrderStatus(context.Background(), 404, models.OrderStatusInTransit)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelOrder(t *testing.T) {
	tests := []struct {
		name    string
		current models.Order
		want    error
	}{
		{name: "own pending order", current: models.Order{ID: 1, AccountID: 7, Status: models.OrderStatusPending}},
		{name: "someone else's order", current: models.Order{ID: 1, AccountID: 8, Status: models.OrderStatusPending}, want: ErrNotFound},
		{name: "already in preparation", current: models.Order{ID: 1, AccountID: 7, Status: models.OrderStatusInPreparation}, want: ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture()
			current := tt.current
			f.orders.On("TransitionOrder", mock.Anything, int64(1), models.OrderStatusCancelled).Return(&current, nil)
			f.cache.On("InvalidateProducts", mock.Anything).Return(nil).Maybe()
			f.publisher.On("PublishOrderStatusChanged", mock.Anything, mock.Anything).Return(nil).Maybe()

			order, err := f.svc.CancelOrder(context.Background(), 7, 1)

			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
				f.cache.AssertNotCalled(t, "InvalidateProducts", mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.OrderStatusCancelled, order.Status)
			f.cache.AssertCalled(t, "InvalidateProducts", mock.Anything)
		})
	}
}

func TestListOrders(t *testing.T) {
	f := newOrderFixture()
	mine := []models.Order{{ID: 2, AccountID: 7}, {ID: 1, AccountID: 7}}
	all := []models.Order{{ID: 3, AccountID: 8, Customer: &models.OrderCustomer{Name: "Rui"}}, mine[0], mine[1]}
	f.orders.On("GetOrdersByAccount", mock.Anything, int64(7)).Return(mine, nil)
	f.orders.On("GetAllOrders", mock.Anything).Return(all, nil)

	got, err := f.svc.ListCustomerOrders(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, mine, got)

	got, err = f.svc.ListAllOrders(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, "Rui", got[0].Customer.Name)
}
