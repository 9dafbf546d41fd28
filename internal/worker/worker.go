package worker

import (
	"context"
	"fmt"
	"strings"

	"bakery-api/internal/broker"
	"bakery-api/internal/mailer"
	"bakery-api/internal/models"
	"bakery-api/internal/util"

	"go.uber.org/zap"
)

var statusLabels = map[string]string{
	models.OrderStatusPending:       "pendente",
	models.OrderStatusInPreparation: "em preparação",
	models.OrderStatusInTransit:     "a caminho",
	models.OrderStatusDelivered:     "entregue",
	models.OrderStatusCancelled:     "cancelado",
}

// NotificationWorker emails order events to the operator and to customers
type NotificationWorker struct {
	consumer        *broker.Consumer
	eventHandler    *broker.EventHandler
	mailer          mailer.Mailer
	operatorAddress string
	logger          *zap.Logger
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(consumer *broker.Consumer, m mailer.Mailer, operatorAddress string) *NotificationWorker {
	w := &NotificationWorker{
		consumer:        consumer,
		eventHandler:    broker.NewEventHandler(),
		mailer:          m,
		operatorAddress: operatorAddress,
		logger:          util.Component("notification-worker"),
	}

	w.eventHandler.OnOrderPlaced(w.HandleOrderPlaced)
	w.eventHandler.OnOrderStatusChanged(w.HandleOrderStatusChanged)
	return w
}

// Start blocks consuming events until ctx is cancelled
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notification worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	w.logger.Info("Stopping notification worker")
	return w.consumer.Close()
}

// HandleOrderPlaced tells the operator a new order is waiting
func (w *NotificationWorker) HandleOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	var body strings.Builder
	fmt.Fprintf(&body, "Pedido #%d de %s <%s>\n\n", event.OrderID, event.CustomerName, event.CustomerEmail)
	for _, item := range event.Items {
		fmt.Fprintf(&body, "%dx %s  R$ %s\n", item.Quantity, item.ProductName, item.UnitPrice.StringFixed(2))
	}
	fmt.Fprintf(&body, "\nTotal: R$ %s\n", event.TotalAmount.StringFixed(2))

	err := w.mailer.Send(ctx, mailer.Message{
		To:      []string{w.operatorAddress},
		Subject: fmt.Sprintf("Novo pedido #%d", event.OrderID),
		Body:    body.String(),
	})
	return w.result(err, "order_placed", event.OrderID)
}

// HandleOrderStatusChanged tells the customer where their order is
func (w *NotificationWorker) HandleOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	if event.CustomerEmail == "" {
		w.logger.Warn("Status change without customer email", zap.Int64("order_id", event.OrderID))
		return nil
	}

	err := w.mailer.Send(ctx, mailer.Message{
		To:      []string{event.CustomerEmail},
		Subject: fmt.Sprintf("Seu pedido #%d está %s", event.OrderID, label(event.NewStatus)),
		Body: fmt.Sprintf("O status do pedido #%d mudou de %s para %s.\n",
			event.OrderID, label(event.OldStatus), label(event.NewStatus)),
	})
	return w.result(err, "order_status", event.OrderID)
}

// result logs and counts delivery failures. The event is still committed:
// emails are not retried.
func (w *NotificationWorker) result(err error, kind string, orderID int64) error {
	if err != nil {
		util.NotificationFailuresTotal.WithLabelValues(kind).Inc()
		w.logger.Error("Failed to send notification",
			zap.String("kind", kind),
			zap.Int64("order_id", orderID),
			zap.Error(err))
	}
	return nil
}

func label(status string) string {
	if l, ok := statusLabels[status]; ok {
		return l
	}
	return strings.ToLower(status)
}
