package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/basket"
	"storefront/internal/models"
	"storefront/internal/service"
	"storefront/internal/store"
	"storefront/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	orderService   *service.OrderService
	paymentService *service.PaymentService
	baskets        service.BasketStore
}

// NewHandler creates a new HTTP handler
func NewHandler(orderService *service.OrderService, paymentService *service.PaymentService, baskets service.BasketStore) *Handler {
	return &Handler{
		orderService:   orderService,
		paymentService: paymentService,
		baskets:        baskets,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.getProducts)
		v1.GET("/products/:id", h.getProduct)
		v1.GET("/delivery-methods", h.getDeliveryMethods)

		v1.GET("/baskets/:id", h.getBasket)
		v1.POST("/baskets", h.putBasket)
		v1.DELETE("/baskets/:id", h.deleteBasket)
		v1.POST("/baskets/:id/payment-intent", h.syncPaymentIntent)

		v1.POST("/orders", h.createOrder)
		v1.GET("/orders", h.getOrders)
		v1.GET("/orders/:id", h.getOrder)
		v1.PUT("/orders/:id/status", h.updateOrderStatus)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// getProducts handles catalog listing with optional brand/type filter and
// offset/limit paging
func (h *Handler) getProducts(c *gin.Context) {
	offset, _ := strconv.Atoi(c.Query("offset"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	filter := store.ProductFilter{
		BrandID: c.Query("brand_id"),
		TypeID:  c.Query("type_id"),
		Offset:  offset,
		Limit:   limit,
	}

	products, err := h.orderService.GetProducts(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, products)
}

// getProduct handles get product by ID
func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.orderService.GetProductByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// getDeliveryMethods handles delivery method listing
func (h *Handler) getDeliveryMethods(c *gin.Context) {
	methods, err := h.orderService.GetDeliveryMethods(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch delivery methods"})
		return
	}

	c.JSON(http.StatusOK, methods)
}

// getBasket handles get basket by ID
func (h *Handler) getBasket(c *gin.Context) {
	bkt, err := h.baskets.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, basket.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Basket not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch basket"})
		return
	}

	c.JSON(http.StatusOK, bkt)
}

// putBasket stores the client's basket as sent; the basket is a
// client-owned document
func (h *Handler) putBasket(c *gin.Context) {
	var bkt models.Basket
	if err := c.ShouldBindJSON(&bkt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid basket body",
			"details": err.Error(),
		})
		return
	}
	if bkt.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Basket id is required"})
		return
	}

	if err := h.baskets.Put(c.Request.Context(), &bkt); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store basket"})
		return
	}

	c.JSON(http.StatusOK, bkt)
}

// deleteBasket handles basket deletion
func (h *Handler) deleteBasket(c *gin.Context) {
	if err := h.baskets.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete basket"})
		return
	}

	c.Status(http.StatusNoContent)
}

// syncPaymentIntent re-prices the basket and creates or updates its payment
// intent
func (h *Handler) syncPaymentIntent(c *gin.Context) {
	bkt, err := h.paymentService.SyncPaymentIntent(c.Request.Context(), c.Param("id"))
	if errors.Is(err, basket.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Basket not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to sync payment intent",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, bkt)
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	BuyerEmail       string `json:"buyer_email" binding:"required,email"`
	DeliveryMethodID string `json:"delivery_method_id" binding:"required"`
	BasketID         string `json:"basket_id" binding:"required"`
}

// createOrder handles order creation
func (h *Handler) createOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), req.BuyerEmail, req.DeliveryMethodID, req.BasketID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create order",
			"details": err.Error(),
		})
		return
	}
	if order == nil {
		// Declined: missing/empty basket or unknown delivery method.
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order creation failed"})
		return
	}

	c.JSON(http.StatusCreated, order)
}

// getOrders handles a buyer's order history
func (h *Handler) getOrders(c *gin.Context) {
	buyerEmail := c.Query("buyer_email")
	if buyerEmail == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "buyer_email is required"})
		return
	}

	orders, err := h.orderService.GetOrdersForBuyer(c.Request.Context(), buyerEmail)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

// getOrder handles get order by ID, scoped to the buyer when buyer_email is
// given
func (h *Handler) getOrder(c *gin.Context) {
	id := c.Param("id")
	buyerEmail := c.Query("buyer_email")

	var (
		order *models.OrderToReturn
		err   error
	)
	if buyerEmail != "" {
		order, err = h.orderService.GetOrderForBuyer(c.Request.Context(), id, buyerEmail)
	} else {
		order, err = h.orderService.GetOrderByID(c.Request.Context(), id)
	}

	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// UpdateStatusRequest represents an order status change
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// updateOrderStatus handles order status updates
func (h *Handler) updateOrderStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	orderID := c.Param("id")
	err := h.orderService.UpdateStatus(c.Request.Context(), orderID, req.Status)
	if errors.Is(err, service.ErrInvalidStatus) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order status"})
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Order status updated successfully",
		"order_id":   orderID,
		"new_status": req.Status,
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
