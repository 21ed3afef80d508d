package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"storefront/internal/models"
	"storefront/internal/payments"
	"storefront/internal/store"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// PaymentGateway drives the remote payment intent. Amounts are minor
// currency units.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount int64) (*payments.Intent, error)
	UpdateIntentAmount(ctx context.Context, intentID string, amount int64) error
}

// PaymentService keeps a basket's remote payment intent in sync with its
// contents
type PaymentService struct {
	baskets BasketStore
	catalog CatalogStore
	gateway PaymentGateway
	logger  *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(baskets BasketStore, catalog CatalogStore, gateway PaymentGateway) *PaymentService {
	return &PaymentService{
		baskets: baskets,
		catalog: catalog,
		gateway: gateway,
		logger:  util.GetLogger(),
	}
}

// SyncPaymentIntent re-prices the basket against the catalog and creates or
// updates its payment intent to match. This is the only path allowed to
// mutate basket item prices. When an update fails because the remote intent
// no longer exists, a fresh intent replaces it; any other gateway failure
// propagates. Returns basket.ErrNotFound when the basket is absent.
func (ps *PaymentService) SyncPaymentIntent(ctx context.Context, basketID string) (*models.Basket, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.SyncPaymentIntent")
	defer span.End()

	start := time.Now()
	defer func() {
		util.PaymentIntentSyncLatency.Observe(time.Since(start).Seconds())
	}()

	bkt, err := ps.baskets.Get(ctx, basketID)
	if err != nil {
		return nil, err
	}

	var shippingPrice float64
	if bkt.DeliveryMethodID != "" {
		method, err := ps.catalog.GetDeliveryMethodByID(ctx, bkt.DeliveryMethodID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("failed to load delivery method: %w", err)
		}
		if method != nil {
			shippingPrice = method.Price
		}
	}

	// Catalog price wins over the basket's cached snapshot.
	for i := range bkt.Items {
		product, err := ps.catalog.GetProductByID(ctx, bkt.Items[i].ProductID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load product %s: %w", bkt.Items[i].ProductID, err)
		}
		if bkt.Items[i].Price != product.Price {
			bkt.Items[i].Price = product.Price
		}
	}

	amount := intentAmount(bkt.Items, shippingPrice)

	if bkt.PaymentIntentID == "" {
		intent, err := ps.gateway.CreateIntent(ctx, amount)
		if err != nil {
			return nil, err
		}
		bkt.PaymentIntentID = intent.ID
		bkt.ClientSecret = intent.ClientSecret
		util.PaymentIntentSyncsTotal.WithLabelValues("created").Inc()
	} else {
		err := ps.gateway.UpdateIntentAmount(ctx, bkt.PaymentIntentID, amount)
		switch {
		case errors.Is(err, payments.ErrIntentNotFound):
			// The stored intent id expired upstream; replace it.
			ps.logger.Warn("Payment intent vanished upstream, creating a new one",
				zap.String("basket_id", basketID),
				zap.String("intent_id", bkt.PaymentIntentID))
			intent, err := ps.gateway.CreateIntent(ctx, amount)
			if err != nil {
				return nil, err
			}
			bkt.PaymentIntentID = intent.ID
			bkt.ClientSecret = intent.ClientSecret
			util.PaymentIntentSyncsTotal.WithLabelValues("recreated").Inc()
		case err != nil:
			return nil, err
		default:
			util.PaymentIntentSyncsTotal.WithLabelValues("updated").Inc()
		}
	}

	if err := ps.baskets.Put(ctx, bkt); err != nil {
		return nil, fmt.Errorf("failed to persist basket: %w", err)
	}

	ps.logger.Info("Payment intent synced",
		zap.String("basket_id", basketID),
		zap.String("intent_id", bkt.PaymentIntentID),
		zap.Int64("amount", amount))

	return bkt, nil
}

// intentAmount converts the basket value to minor currency units:
// (sum of item price*quantity + shipping) * 100
func intentAmount(items []models.BasketItem, shippingPrice float64) int64 {
	var itemsTotal float64
	for _, item := range items {
		itemsTotal += item.Price * float64(item.Quantity)
	}
	return int64(math.Round(itemsTotal*100)) + int64(math.Round(shippingPrice*100))
}
