package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
)

// CreateOrder persists an order and its items. The order gets a fresh ID and
// order date; items inherit the order ID.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	order.ID = uuid.New().String()
	order.OrderDate = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (id, buyer_email, order_date, delivery_method_id, subtotal, total, status, payment_intent_id, payment_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		order.ID, order.BuyerEmail, order.OrderDate, order.DeliveryMethodID,
		order.Subtotal, order.Total, order.Status, order.PaymentIntentID, order.PaymentID)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range items {
		items[i].OrderID = order.ID
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, price, quantity)
			VALUES ($1, $2, $3, $4)`,
			items[i].OrderID, items[i].ProductID, items[i].Price, items[i].Quantity)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return nil
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderForBuyer retrieves an order only if it belongs to the given buyer
func (s *Store) GetOrderForBuyer(ctx context.Context, id, buyerEmail string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order,
		"SELECT * FROM orders WHERE id = $1 AND buyer_email = $2", id, buyerEmail)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrdersForBuyer retrieves a buyer's orders, newest first
func (s *Store) GetOrdersForBuyer(ctx context.Context, buyerEmail string) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE buyer_email = $1 ORDER BY order_date DESC", buyerEmail)
	return orders, err
}

// GetOrderItems retrieves all items for an order
func (s *Store) GetOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1", orderID)
	return items, err
}

// UpdateOrderStatus updates order status
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1 WHERE id = $2", status, orderID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	return nil
}

// CreatePayment persists a payment record. The record gets a fresh ID and
// creation timestamp.
func (s *Store) CreatePayment(ctx context.Context, payment *models.Payment) error {
	payment.ID = uuid.New().String()
	payment.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (id, payment_intent_id, amount, currency, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		payment.ID, payment.PaymentIntentID, payment.Amount, payment.Currency, payment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

// GetPaymentByID retrieves a payment record by ID
func (s *Store) GetPaymentByID(ctx context.Context, id string) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.GetContext(ctx, &payment, "SELECT * FROM payments WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("payment %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
