package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/basket"
	"storefront/internal/models"
	"storefront/internal/store"
	"storefront/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidStatus rejects a status label outside the closed order status
// set, before any store access
var ErrInvalidStatus = errors.New("invalid order status")

// CatalogStore reads authoritative product and delivery-method data
type CatalogStore interface {
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	GetProducts(ctx context.Context, filter store.ProductFilter) ([]models.Product, error)
	GetDeliveryMethodByID(ctx context.Context, id string) (*models.DeliveryMethod, error)
	GetDeliveryMethods(ctx context.Context) ([]models.DeliveryMethod, error)
}

// OrderStore persists orders and their items
type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetOrderForBuyer(ctx context.Context, id, buyerEmail string) (*models.Order, error)
	GetOrdersForBuyer(ctx context.Context, buyerEmail string) ([]models.Order, error)
	GetOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) error
}

// PaymentStore persists payment records
type PaymentStore interface {
	CreatePayment(ctx context.Context, payment *models.Payment) error
}

// BasketStore holds client baskets by id
type BasketStore interface {
	Get(ctx context.Context, basketID string) (*models.Basket, error)
	Put(ctx context.Context, b *models.Basket) error
	Delete(ctx context.Context, basketID string) error
}

// StatusPublisher dispatches order status events to the notification queue
type StatusPublisher interface {
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
}

// OrderService converts baskets into priced orders and drives the order
// status lifecycle
type OrderService struct {
	catalog   CatalogStore
	orders    OrderStore
	payments  PaymentStore
	baskets   BasketStore
	publisher StatusPublisher
	currency  string
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	catalog CatalogStore,
	orders OrderStore,
	payments PaymentStore,
	baskets BasketStore,
	publisher StatusPublisher,
	currency string,
) *OrderService {
	return &OrderService{
		catalog:   catalog,
		orders:    orders,
		payments:  payments,
		baskets:   baskets,
		publisher: publisher,
		currency:  currency,
		logger:    util.GetLogger(),
	}
}

// CreateOrder turns the basket into an immutable, priced order. Items are
// re-priced from the catalog; basket items whose product no longer exists are
// dropped. Returns (nil, nil) when the basket is missing or empty or the
// delivery method is unknown, so callers can report "not created" without
// treating it as a system error. The payment record, the order and the basket
// delete are independent sequential writes with no rollback.
func (s *OrderService) CreateOrder(ctx context.Context, buyerEmail, deliveryMethodID, basketID string) (*models.OrderToReturn, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	bkt, err := s.baskets.Get(ctx, basketID)
	if errors.Is(err, basket.ErrNotFound) {
		util.OrdersDeclinedTotal.WithLabelValues("basket_missing").Inc()
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load basket: %w", err)
	}
	if len(bkt.Items) == 0 {
		util.OrdersDeclinedTotal.WithLabelValues("basket_empty").Inc()
		return nil, nil
	}

	items := make([]models.OrderItem, 0, len(bkt.Items))
	for _, item := range bkt.Items {
		product, err := s.catalog.GetProductByID(ctx, item.ProductID)
		if errors.Is(err, store.ErrNotFound) {
			// Product vanished since it was added to the basket; the order
			// reflects only items that still resolve.
			util.OrderItemsDroppedTotal.Inc()
			s.logger.Warn("Dropping basket item, product no longer exists",
				zap.String("basket_id", basketID),
				zap.String("product_id", item.ProductID))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load product %s: %w", item.ProductID, err)
		}

		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Price:     product.Price,
			Quantity:  item.Quantity,
		})
	}

	method, err := s.catalog.GetDeliveryMethodByID(ctx, deliveryMethodID)
	if errors.Is(err, store.ErrNotFound) {
		util.OrdersDeclinedTotal.WithLabelValues("delivery_method_missing").Inc()
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load delivery method: %w", err)
	}

	var subtotal float64
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}
	total := subtotal + method.Price

	payment := &models.Payment{
		PaymentIntentID: bkt.PaymentIntentID,
		Amount:          total,
		Currency:        s.currency,
	}
	if err := s.payments.CreatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment record: %w", err)
	}

	order := &models.Order{
		BuyerEmail:       buyerEmail,
		DeliveryMethodID: method.ID,
		Subtotal:         subtotal,
		Total:            total,
		Status:           models.OrderStatusPending,
		PaymentIntentID:  bkt.PaymentIntentID,
		PaymentID:        payment.ID,
	}
	if err := s.orders.CreateOrder(ctx, order, items); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Checkout consumes the basket.
	if err := s.baskets.Delete(ctx, basketID); err != nil {
		return nil, fmt.Errorf("failed to delete basket: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("buyer_email", buyerEmail),
		zap.Float64("total", total))

	return projectOrder(order, items, method.Price), nil
}

// UpdateStatus validates and applies an order status change, then publishes
// a status event for the notification worker. A publish failure is logged
// and dropped: the status mutation has already committed.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, newStatus string) error {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateStatus")
	defer span.End()

	if !models.ValidOrderStatus(newStatus) {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, newStatus)
	}

	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}

	if err := s.orders.UpdateOrderStatus(ctx, orderID, newStatus); err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	util.OrderStatusUpdatesTotal.WithLabelValues(newStatus).Inc()
	s.logger.Info("Order status updated",
		zap.String("order_id", orderID),
		zap.String("status", newStatus))

	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID:    orderID,
		BuyerEmail: order.BuyerEmail,
		NewStatus:  newStatus,
	}
	if err := s.publisher.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event",
			zap.String("order_id", orderID),
			zap.Error(err))
	}

	return nil
}

// GetOrderByID retrieves any order by id (admin path)
func (s *OrderService) GetOrderByID(ctx context.Context, orderID string) (*models.OrderToReturn, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, order)
}

// GetOrderForBuyer retrieves an order scoped to its buyer
func (s *OrderService) GetOrderForBuyer(ctx context.Context, orderID, buyerEmail string) (*models.OrderToReturn, error) {
	order, err := s.orders.GetOrderForBuyer(ctx, orderID, buyerEmail)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, order)
}

// GetOrdersForBuyer retrieves a buyer's order history, newest first
func (s *OrderService) GetOrdersForBuyer(ctx context.Context, buyerEmail string) ([]*models.OrderToReturn, error) {
	orders, err := s.orders.GetOrdersForBuyer(ctx, buyerEmail)
	if err != nil {
		return nil, err
	}

	result := make([]*models.OrderToReturn, 0, len(orders))
	for i := range orders {
		dto, err := s.project(ctx, &orders[i])
		if err != nil {
			return nil, err
		}
		result = append(result, dto)
	}
	return result, nil
}

// GetDeliveryMethods retrieves the available delivery methods
func (s *OrderService) GetDeliveryMethods(ctx context.Context) ([]models.DeliveryMethod, error) {
	return s.catalog.GetDeliveryMethods(ctx)
}

// GetProducts retrieves catalog products matching the filter
func (s *OrderService) GetProducts(ctx context.Context, filter store.ProductFilter) ([]models.Product, error) {
	return s.catalog.GetProducts(ctx, filter)
}

// GetProductByID retrieves a single catalog product
func (s *OrderService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.catalog.GetProductByID(ctx, id)
}

func (s *OrderService) project(ctx context.Context, order *models.Order) (*models.OrderToReturn, error) {
	items, err := s.orders.GetOrderItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	method, err := s.catalog.GetDeliveryMethodByID(ctx, order.DeliveryMethodID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve delivery method for order %s: %w", order.ID, err)
	}

	return projectOrder(order, items, method.Price), nil
}

// projectOrder builds the external representation. Totals come from the
// stored order, never recomputed.
func projectOrder(order *models.Order, items []models.OrderItem, shippingPrice float64) *models.OrderToReturn {
	return &models.OrderToReturn{
		ID:               order.ID,
		BuyerEmail:       order.BuyerEmail,
		OrderDate:        order.OrderDate,
		DeliveryMethodID: order.DeliveryMethodID,
		ShippingPrice:    shippingPrice,
		OrderItems:       items,
		Subtotal:         order.Subtotal,
		Total:            order.Total,
		Status:           order.Status,
		PaymentIntentID:  order.PaymentIntentID,
		PaymentID:        order.PaymentID,
	}
}
