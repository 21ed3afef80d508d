package worker

import (
	"context"
	"fmt"

	"storefront/internal/broker"
	"storefront/internal/models"
	"storefront/internal/notify"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// NotificationWorker consumes order status events and emails the buyer.
// Delivery is best-effort: a failed send is counted and logged, then the
// event is acknowledged anyway so the status change is never replayed just
// to retry an email.
type NotificationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	sender       notify.Sender
	logger       *zap.Logger
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(consumer *broker.Consumer, sender notify.Sender) *NotificationWorker {
	w := &NotificationWorker{
		consumer: consumer,
		sender:   sender,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderStatusChanged(w.handleStatusChanged)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notification worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	w.logger.Info("Stopping notification worker")
	return w.consumer.Close()
}

func (w *NotificationWorker) handleStatusChanged(_ context.Context, event *models.OrderStatusChangedEvent) error {
	subject := fmt.Sprintf("Order #%s Status Update", event.OrderID)
	body := fmt.Sprintf("Your order status has been updated to: %s", event.NewStatus)

	if err := w.sender.Send(event.BuyerEmail, subject, body); err != nil {
		util.NotificationsFailedTotal.Inc()
		w.logger.Error("Failed to send status notification",
			zap.String("order_id", event.OrderID),
			zap.String("buyer_email", event.BuyerEmail),
			zap.Error(err))
		return nil
	}

	util.NotificationsSentTotal.Inc()
	w.logger.Info("Status notification sent",
		zap.String("order_id", event.OrderID),
		zap.String("buyer_email", event.BuyerEmail),
		zap.String("status", event.NewStatus))
	return nil
}
