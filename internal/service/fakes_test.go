package service

import (
	"context"
	"fmt"

	"storefront/internal/basket"
	"storefront/internal/models"
	"storefront/internal/payments"
	"storefront/internal/store"
)

type fakeCatalog struct {
	products map[string]*models.Product
	methods  map[string]*models.DeliveryMethod
}

func (f *fakeCatalog) GetProductByID(_ context.Context, id string) (*models.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("product %s: %w", id, store.ErrNotFound)
}

func (f *fakeCatalog) GetProducts(_ context.Context, _ store.ProductFilter) ([]models.Product, error) {
	out := []models.Product{}
	for _, p := range f.products {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeCatalog) GetDeliveryMethodByID(_ context.Context, id string) (*models.DeliveryMethod, error) {
	if m, ok := f.methods[id]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("delivery method %s: %w", id, store.ErrNotFound)
}

func (f *fakeCatalog) GetDeliveryMethods(_ context.Context) ([]models.DeliveryMethod, error) {
	out := []models.DeliveryMethod{}
	for _, m := range f.methods {
		out = append(out, *m)
	}
	return out, nil
}

type fakeOrders struct {
	orders        map[string]*models.Order
	items         map[string][]models.OrderItem
	statusUpdates []string
	nextID        int
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{
		orders: map[string]*models.Order{},
		items:  map[string][]models.OrderItem{},
	}
}

func (f *fakeOrders) CreateOrder(_ context.Context, order *models.Order, items []models.OrderItem) error {
	f.nextID++
	order.ID = fmt.Sprintf("order-%d", f.nextID)
	f.orders[order.ID] = order
	f.items[order.ID] = items
	return nil
}

func (f *fakeOrders) GetOrderByID(_ context.Context, id string) (*models.Order, error) {
	if o, ok := f.orders[id]; ok {
		return o, nil
	}
	return nil, fmt.Errorf("order %s: %w", id, store.ErrNotFound)
}

func (f *fakeOrders) GetOrderForBuyer(_ context.Context, id, buyerEmail string) (*models.Order, error) {
	if o, ok := f.orders[id]; ok && o.BuyerEmail == buyerEmail {
		return o, nil
	}
	return nil, fmt.Errorf("order %s: %w", id, store.ErrNotFound)
}

func (f *fakeOrders) GetOrdersForBuyer(_ context.Context, buyerEmail string) ([]models.Order, error) {
	out := []models.Order{}
	for _, o := range f.orders {
		if o.BuyerEmail == buyerEmail {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrders) GetOrderItems(_ context.Context, orderID string) ([]models.OrderItem, error) {
	return f.items[orderID], nil
}

func (f *fakeOrders) UpdateOrderStatus(_ context.Context, orderID, status string) error {
	o, ok := f.orders[orderID]
	if !ok {
		return fmt.Errorf("order %s: %w", orderID, store.ErrNotFound)
	}
	o.Status = status
	f.statusUpdates = append(f.statusUpdates, orderID+":"+status)
	return nil
}

type fakePayments struct {
	created []*models.Payment
	nextID  int
}

func (f *fakePayments) CreatePayment(_ context.Context, payment *models.Payment) error {
	f.nextID++
	payment.ID = fmt.Sprintf("payment-%d", f.nextID)
	f.created = append(f.created, payment)
	return nil
}

type fakeBaskets struct {
	baskets map[string]*models.Basket
	deleted []string
	puts    int
}

func newFakeBaskets(baskets ...*models.Basket) *fakeBaskets {
	f := &fakeBaskets{baskets: map[string]*models.Basket{}}
	for _, b := range baskets {
		f.baskets[b.ID] = b
	}
	return f
}

func (f *fakeBaskets) Get(_ context.Context, basketID string) (*models.Basket, error) {
	if b, ok := f.baskets[basketID]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("basket %s: %w", basketID, basket.ErrNotFound)
}

func (f *fakeBaskets) Put(_ context.Context, b *models.Basket) error {
	f.baskets[b.ID] = b
	f.puts++
	return nil
}

func (f *fakeBaskets) Delete(_ context.Context, basketID string) error {
	delete(f.baskets, basketID)
	f.deleted = append(f.deleted, basketID)
	return nil
}

type fakePublisher struct {
	events []*models.OrderStatusChangedEvent
	err    error
}

func (f *fakePublisher) PublishOrderStatusChanged(_ context.Context, event *models.OrderStatusChangedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type fakeGateway struct {
	createCalls   int
	updateCalls   int
	lastAmount    int64
	updateErr     error
	nextIntentID  string
	nextSecret    string
	updatedIntent string
}

func (f *fakeGateway) CreateIntent(_ context.Context, amount int64) (*payments.Intent, error) {
	f.createCalls++
	f.lastAmount = amount
	id := f.nextIntentID
	if id == "" {
		id = fmt.Sprintf("pi_%d", f.createCalls)
	}
	secret := f.nextSecret
	if secret == "" {
		secret = id + "_secret"
	}
	return &payments.Intent{ID: id, ClientSecret: secret}, nil
}

func (f *fakeGateway) UpdateIntentAmount(_ context.Context, intentID string, amount int64) error {
	f.updateCalls++
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updatedIntent = intentID
	f.lastAmount = amount
	return nil
}
