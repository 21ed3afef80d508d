package service

import (
	"context"
	"testing"

	"storefront/internal/models"
	"storefront/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderServiceForTest(catalog *fakeCatalog, orders *fakeOrders, pays *fakePayments, baskets *fakeBaskets, pub *fakePublisher) *OrderService {
	return NewOrderService(catalog, orders, pays, baskets, pub, "usd")
}

func TestCreateOrderUsesCatalogPrices(t *testing.T) {
	catalog := &fakeCatalog{
		products: map[string]*models.Product{
			"p1": {ID: "p1", Name: "Keyboard", Price: 12.00},
		},
		methods: map[string]*models.DeliveryMethod{
			"d1": {ID: "d1", Price: 5.00},
		},
	}
	baskets := newFakeBaskets(&models.Basket{
		ID: "b1",
		Items: []models.BasketItem{
			// Cached price is stale; the catalog price must win.
			{ProductID: "p1", Price: 8.00, Quantity: 2},
		},
	})
	orders := newFakeOrders()
	pays := &fakePayments{}

	svc := newOrderServiceForTest(catalog, orders, pays, baskets, &fakePublisher{})

	result, err := svc.CreateOrder(context.Background(), "buyer@example.com", "d1", "b1")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 24.00, result.Subtotal)
	assert.Equal(t, 29.00, result.Total)
	assert.Equal(t, 5.00, result.ShippingPrice)
	assert.Equal(t, models.OrderStatusPending, result.Status)
	require.Len(t, result.OrderItems, 1)
	assert.Equal(t, 12.00, result.OrderItems[0].Price)
}

func TestCreateOrderEndToEnd(t *testing.T) {
	catalog := &fakeCatalog{
		products: map[string]*models.Product{
			"p1": {ID: "p1", Price: 10.00},
		},
		methods: map[string]*models.DeliveryMethod{
			"d1": {ID: "d1", Price: 5.00},
		},
	}
	baskets := newFakeBaskets(&models.Basket{
		ID:              "b1",
		PaymentIntentID: "pi_123",
		Items: []models.BasketItem{
			{ProductID: "p1", Price: 10.00, Quantity: 2},
		},
	})
	orders := newFakeOrders()
	pays := &fakePayments{}

	svc := newOrderServiceForTest(catalog, orders, pays, baskets, &fakePublisher{})

	result, err := svc.CreateOrder(context.Background(), "buyer@example.com", "d1", "b1")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 20.00, result.Subtotal)
	assert.Equal(t, 25.00, result.Total)
	assert.Equal(t, models.OrderStatusPending, result.Status)

	// One payment record carrying the basket's intent id and the total.
	require.Len(t, pays.created, 1)
	assert.Equal(t, "pi_123", pays.created[0].PaymentIntentID)
	assert.Equal(t, 25.00, pays.created[0].Amount)
	assert.Equal(t, pays.created[0].ID, result.PaymentID)
	assert.Equal(t, "pi_123", result.PaymentIntentID)

	// Checkout consumed the basket.
	assert.Equal(t, []string{"b1"}, baskets.deleted)
}

func TestCreateOrderDropsVanishedProducts(t *testing.T) {
	catalog := &fakeCatalog{
		products: map[string]*models.Product{
			"p1": {ID: "p1", Price: 10.00},
		},
		methods: map[string]*models.DeliveryMethod{
			"d1": {ID: "d1", Price: 5.00},
		},
	}
	baskets := newFakeBaskets(&models.Basket{
		ID: "b1",
		Items: []models.BasketItem{
			{ProductID: "p1", Price: 10.00, Quantity: 1},
			{ProductID: "gone", Price: 99.00, Quantity: 3},
		},
	})

	svc := newOrderServiceForTest(catalog, newFakeOrders(), &fakePayments{}, baskets, &fakePublisher{})

	result, err := svc.CreateOrder(context.Background(), "buyer@example.com", "d1", "b1")
	require.NoError(t, err)
	require.NotNil(t, result)

	require.Len(t, result.OrderItems, 1)
	assert.Equal(t, "p1", result.OrderItems[0].ProductID)
	assert.Equal(t, 10.00, result.Subtotal)
}

func TestCreateOrderAllProductsVanished(t *testing.T) {
	catalog := &fakeCatalog{
		products: map[string]*models.Product{},
		methods: map[string]*models.DeliveryMethod{
			"d1": {ID: "d1", Price: 5.00},
		},
	}
	baskets := newFakeBaskets(&models.Basket{
		ID: "b1",
		Items: []models.BasketItem{
			{ProductID: "gone", Price: 10.00, Quantity: 1},
		},
	})

	svc := newOrderServiceForTest(catalog, newFakeOrders(), &fakePayments{}, baskets, &fakePublisher{})

	// Every item dropped is still an order, just an empty one.
	result, err := svc.CreateOrder(context.Background(), "buyer@example.com", "d1", "b1")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Empty(t, result.OrderItems)
	assert.Equal(t, 0.00, result.Subtotal)
	assert.Equal(t, 5.00, result.Total)
}

func TestCreateOrderMissingBasket(t *testing.T) {
	catalog := &fakeCatalog{methods: map[string]*models.DeliveryMethod{"d1": {ID: "d1"}}}
	baskets := newFakeBaskets()
	orders := newFakeOrders()
	pays := &fakePayments{}

	svc := newOrderServiceForTest(catalog, orders, pays, baskets, &fakePublisher{})

	result, err := svc.CreateOrder(context.Background(), "buyer@example.com", "d1", "nope")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Empty(t, orders.orders)
	assert.Empty(t, pays.created)
}

func TestCreateOrderEmptyBasket(t *testing.T) {
	catalog := &fakeCatalog{methods: map[string]*models.DeliveryMethod{"d1": {ID: "d1"}}}
	baskets := newFakeBaskets(&models.Basket{ID: "b1"})
	orders := newFakeOrders()
	pays := &fakePayments{}

	svc := newOrderServiceForTest(catalog, orders, pays, baskets, &fakePublisher{})

	result, err := svc.CreateOrder(context.Background(), "buyer@example.com", "d1", "b1")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Empty(t, orders.orders)
	assert.Empty(t, pays.created)
	assert.Empty(t, baskets.deleted)
}

func TestCreateOrderUnknownDeliveryMethod(t *testing.T) {
	catalog := &fakeCatalog{
		products: map[string]*models.Product{"p1": {ID: "p1", Price: 10.00}},
		methods:  map[string]*models.DeliveryMethod{},
	}
	baskets := newFakeBaskets(&models.Basket{
		ID:    "b1",
		Items: []models.BasketItem{{ProductID: "p1", Price: 10.00, Quantity: 1}},
	})
	orders := newFakeOrders()
	pays := &fakePayments{}

	svc := newOrderServiceForTest(catalog, orders, pays, baskets, &fakePublisher{})

	result, err := svc.CreateOrder(context.Background(), "buyer@example.com", "nope", "b1")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Empty(t, orders.orders)
	assert.Empty(t, pays.created)
	assert.Empty(t, baskets.deleted)
}

func TestUpdateStatusRejectsUnknownLabel(t *testing.T) {
	orders := newFakeOrders()
	orders.orders["o1"] = &models.Order{ID: "o1", Status: models.OrderStatusPending}

	svc := newOrderServiceForTest(&fakeCatalog{}, orders, &fakePayments{}, newFakeBaskets(), &fakePublisher{})

	err := svc.UpdateStatus(context.Background(), "o1", "Teleported")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Empty(t, orders.statusUpdates)
	assert.Equal(t, models.OrderStatusPending, orders.orders["o1"].Status)
}

func TestUpdateStatusMissingOrder(t *testing.T) {
	svc := newOrderServiceForTest(&fakeCatalog{}, newFakeOrders(), &fakePayments{}, newFakeBaskets(), &fakePublisher{})

	err := svc.UpdateStatus(context.Background(), "nope", models.OrderStatusShipped)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateStatusPublishesEvent(t *testing.T) {
	orders := newFakeOrders()
	orders.orders["o1"] = &models.Order{ID: "o1", BuyerEmail: "buyer@example.com", Status: models.OrderStatusPending}
	pub := &fakePublisher{}

	svc := newOrderServiceForTest(&fakeCatalog{}, orders, &fakePayments{}, newFakeBaskets(), pub)

	err := svc.UpdateStatus(context.Background(), "o1", models.OrderStatusShipped)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusShipped, orders.orders["o1"].Status)
	require.Len(t, pub.events, 1)
	assert.Equal(t, "o1", pub.events[0].OrderID)
	assert.Equal(t, "buyer@example.com", pub.events[0].BuyerEmail)
	assert.Equal(t, models.OrderStatusShipped, pub.events[0].NewStatus)
	assert.NotEmpty(t, pub.events[0].EventID)
}

func TestUpdateStatusSurvivesPublishFailure(t *testing.T) {
	orders := newFakeOrders()
	orders.orders["o1"] = &models.Order{ID: "o1", BuyerEmail: "buyer@example.com", Status: models.OrderStatusPending}
	pub := &fakePublisher{err: assert.AnError}

	svc := newOrderServiceForTest(&fakeCatalog{}, orders, &fakePayments{}, newFakeBaskets(), pub)

	// The status mutation commits even when the event cannot be dispatched.
	err := svc.UpdateStatus(context.Background(), "o1", models.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, orders.orders["o1"].Status)
}

func TestGetOrderForBuyerScoping(t *testing.T) {
	catalog := &fakeCatalog{
		methods: map[string]*models.DeliveryMethod{"d1": {ID: "d1", Price: 5.00}},
	}
	orders := newFakeOrders()
	orders.orders["o1"] = &models.Order{
		ID: "o1", BuyerEmail: "owner@example.com", DeliveryMethodID: "d1",
		Subtotal: 10.00, Total: 15.00, Status: models.OrderStatusPending,
	}

	svc := newOrderServiceForTest(catalog, orders, &fakePayments{}, newFakeBaskets(), &fakePublisher{})

	got, err := svc.GetOrderForBuyer(context.Background(), "o1", "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, 15.00, got.Total)
	assert.Equal(t, 5.00, got.ShippingPrice)

	_, err = svc.GetOrderForBuyer(context.Background(), "o1", "intruder@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
