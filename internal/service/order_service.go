package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bakery-api/internal/broker"
	"bakery-api/internal/models"
	"bakery-api/internal/store"
	"bakery-api/internal/util"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// OrderService handles checkout and the order lifecycle
type OrderService struct {
	orders         OrderRepository
	carts          CartRepository
	accounts       AccountRepository
	cache          ProductCache
	eventPublisher EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new order service. cache may be nil.
func NewOrderService(
	orders OrderRepository,
	carts CartRepository,
	accounts AccountRepository,
	cache ProductCache,
	eventPublisher EventPublisher,
) *OrderService {
	return &OrderService{
		orders:         orders,
		carts:          carts,
		accounts:       accounts,
		cache:          cache,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// UpdateStatusRequest carries the target status of an order
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// FinalizeOrder converts the account's cart into an order. Stock is re-checked
// and decremented, and the cart emptied, in one transaction.
func (s *OrderService) FinalizeOrder(ctx context.Context, accountID int64) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.FinalizeOrder",
		attribute.Int64("account_id", accountID))
	defer span.End()

	start := time.Now()
	defer func() {
		util.CheckoutLatency.Observe(time.Since(start).Seconds())
	}()

	cart, err := s.carts.GetCartByAccount(ctx, accountID)
	if errors.Is(err, store.ErrNotFound) {
		util.CheckoutFailuresTotal.WithLabelValues("empty_cart").Inc()
		return nil, newError(ErrBadRequest, "cart is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	order, err := s.orders.PlaceOrder(ctx, accountID, cart.ID)
	if errors.Is(err, store.ErrEmptyCart) {
		util.CheckoutFailuresTotal.WithLabelValues("empty_cart").Inc()
		return nil, newError(ErrBadRequest, "cart is empty")
	}
	if errors.Is(err, store.ErrInsufficientStock) {
		util.CheckoutFailuresTotal.WithLabelValues("insufficient_stock").Inc()
		return nil, newError(ErrInsufficientStock, "%s", err.Error())
	}
	if err != nil {
		util.CheckoutFailuresTotal.WithLabelValues("db_error").Inc()
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	util.OrdersPlacedTotal.Inc()
	s.logger.Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("account_id", accountID),
		zap.String("total", order.TotalAmount.StringFixed(2)))

	s.invalidateProducts(ctx)
	s.publishOrderPlaced(ctx, order)
	return order, nil
}

// ListCustomerOrders returns the account's own orders, newest first
func (s *OrderService) ListCustomerOrders(ctx context.Context, accountID int64) ([]models.Order, error) {
	orders, err := s.orders.GetOrdersByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListAllOrders returns every order with its customer, newest first
func (s *OrderService) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orders.GetAllOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateOrderStatus moves an order along its lifecycle. Cancelling returns
// the ordered quantities to stock.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateOrderStatus",
		attribute.Int64("order_id", orderID), attribute.String("status", status))
	defer span.End()

	status = strings.TrimSpace(status)
	if !models.IsValidOrderStatus(status) {
		return nil, newError(ErrValidation, "invalid status %q, expected one of %s",
			status, strings.Join(models.OrderStatuses, ", "))
	}

	return s.transition(ctx, orderID, status, func(current *models.Order) error {
		return models.CheckOrderTransition(current.Status, status)
	})
}

// CancelOrder lets a customer cancel their own order while it is still pending
func (s *OrderService) CancelOrder(ctx context.Context, accountID, orderID int64) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CancelOrder",
		attribute.Int64("order_id", orderID), attribute.Int64("account_id", accountID))
	defer span.End()

	return s.transition(ctx, orderID, models.OrderStatusCancelled, func(current *models.Order) error {
		if current.AccountID != accountID {
			return newError(ErrNotFound, "order not found")
		}
		if current.Status != models.OrderStatusPending {
			return newError(ErrConflict, "only pending orders can be cancelled")
		}
		return nil
	})
}

func (s *OrderService) transition(ctx context.Context, orderID int64, to string, check store.TransitionCheck) (*models.Order, error) {
	order, from, err := s.orders.TransitionOrder(ctx, orderID, to, check)
	if err != nil {
		var svcErr *Error
		switch {
		case errors.As(err, &svcErr):
			return nil, err
		case errors.Is(err, store.ErrNotFound):
			return nil, newError(ErrNotFound, "order not found")
		case errors.Is(err, models.ErrInvalidOrderTransition):
			return nil, newError(ErrConflict, "%s", err.Error())
		case errors.Is(err, models.ErrInvalidOrderStatus):
			return nil, newError(ErrValidation, "%s", err.Error())
		}
		return nil, fmt.Errorf("failed to update order %d: %w", orderID, err)
	}

	if from == to {
		return order, nil
	}

	util.OrderStatusChangesTotal.WithLabelValues(to).Inc()
	s.logger.Info("Order status changed",
		zap.Int64("order_id", orderID),
		zap.String("from", from),
		zap.String("to", to))

	if to == models.OrderStatusCancelled {
		s.invalidateProducts(ctx)
	}
	s.publishStatusChanged(ctx, order, from)
	return order, nil
}

func (s *OrderService) publishOrderPlaced(ctx context.Context, order *models.Order) {
	event := &models.OrderPlacedEvent{
		BaseEvent:   broker.NewBaseEvent(models.EventTypeOrderPlaced),
		OrderID:     order.ID,
		AccountID:   order.AccountID,
		TotalAmount: order.TotalAmount,
		Items:       make([]models.OrderItemData, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		event.Items = append(event.Items, models.OrderItemData{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	if account := s.customer(ctx, order.AccountID); account != nil {
		event.CustomerName = account.Name
		event.CustomerEmail = account.Email
	}

	if err := s.eventPublisher.PublishOrderPlaced(ctx, event); err != nil {
		util.EventsPublishFailedTotal.WithLabelValues(models.EventTypeOrderPlaced).Inc()
		s.logger.Error("Failed to publish OrderPlaced event",
			zap.Int64("order_id", order.ID), zap.Error(err))
	}
}

func (s *OrderService) publishStatusChanged(ctx context.Context, order *models.Order, from string) {
	event := &models.OrderStatusChangedEvent{
		BaseEvent: broker.NewBaseEvent(models.EventTypeOrderStatusChanged),
		OrderID:   order.ID,
		AccountID: order.AccountID,
		OldStatus: from,
		NewStatus: order.Status,
	}
	if account := s.customer(ctx, order.AccountID); account != nil {
		event.CustomerEmail = account.Email
	}

	if err := s.eventPublisher.PublishOrderStatusChanged(ctx, event); err != nil {
		util.EventsPublishFailedTotal.WithLabelValues(models.EventTypeOrderStatusChanged).Inc()
		s.logger.Error("Failed to publish OrderStatusChanged event",
			zap.Int64("order_id", order.ID), zap.Error(err))
	}
}

func (s *OrderService) customer(ctx context.Context, accountID int64) *models.Account {
	account, err := s.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		s.logger.Warn("Failed to load order customer", zap.Int64("account_id", accountID), zap.Error(err))
		return nil
	}
	return account
}

func (s *OrderService) invalidateProducts(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateProducts(ctx); err != nil {
		s.logger.Warn("Failed to invalidate product cache", zap.Error(err))
	}
}
