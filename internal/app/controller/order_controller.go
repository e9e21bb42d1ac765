package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/service"
	"github.com/ptnguyen/coffeecorner-backend/internal/checkout"
	"github.com/ptnguyen/coffeecorner-backend/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

type StagePaymentRequest struct {
	Method string `json:"method" binding:"required"`
}

type StageDeliveryRequest struct {
	Date string `json:"date" binding:"required"` // YYYY-MM-DD
	Time string `json:"time"`                    // HH:MM, optional
}

type OrderItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	SizeID    uint `json:"size_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type CreateOrderRequest struct {
	Items   []OrderItemRequest `json:"items"` // empty means "order my cart"
	StoreID *uint              `json:"store_id"`
}

// StagePayment records the payment method choice for the pending checkout
// POST /api/v1/checkout/payment
func (ctrl *OrderController) StagePayment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req StagePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid stage payment request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Payment method is required",
		})
		return
	}

	if err := ctrl.orderService.StagePayment(c.Request.Context(), userID, req.Method); err != nil {
		log.Error("Failed to stage payment method", err, map[string]interface{}{
			"user_id": userID,
			"method":  req.Method,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to save payment method",
		})
		return
	}

	log.Info("Payment method staged", map[string]interface{}{
		"user_id": userID,
		"method":  req.Method,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment method saved",
	})
}

// StageDelivery records the delivery slot choice for the pending checkout
// POST /api/v1/checkout/delivery
func (ctrl *OrderController) StageDelivery(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req StageDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid stage delivery request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Delivery date is required",
		})
		return
	}

	if err := ctrl.orderService.StageDelivery(c.Request.Context(), userID, req.Date, req.Time); err != nil {
		if errors.Is(err, service.ErrInvalidDeliverySlot) {
			log.Warn("Invalid delivery slot", map[string]interface{}{
				"user_id": userID,
				"date":    req.Date,
				"time":    req.Time,
			})
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Delivery date must be YYYY-MM-DD and time HH:MM",
			})
			return
		}
		log.Error("Failed to stage delivery slot", err, map[string]interface{}{
			"user_id": userID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to save delivery slot",
		})
		return
	}

	log.Info("Delivery slot staged", map[string]interface{}{
		"user_id": userID,
		"date":    req.Date,
		"time":    req.Time,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Delivery slot saved",
	})
}

// GetStaging returns the currently staged checkout selections
// GET /api/v1/checkout
func (ctrl *OrderController) GetStaging(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	staging, err := ctrl.orderService.GetStaging(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, checkout.ErrNotStaged) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "No checkout in progress",
			})
			return
		}
		log.Error("Failed to read checkout staging", err, map[string]interface{}{
			"user_id": userID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to read checkout state",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"checkout": staging,
	})
}

// CreateOrder places an order from the request items or the user's cart
// POST /api/v1/orders
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		log.Warn("Unauthorized attempt to create order", nil)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create order request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	items := make([]service.OrderItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.OrderItemInput{
			ProductID: item.ProductID,
			SizeID:    item.SizeID,
			Quantity:  item.Quantity,
		}
	}

	log.Debug("Creating order", map[string]interface{}{
		"user_id":   userID,
		"has_items": len(items) > 0,
	})

	order, err := ctrl.orderService.CreateOrder(c.Request.Context(), userID, items, req.StoreID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCheckoutNotStaged):
			log.Warn("Order creation failed: checkout not staged", map[string]interface{}{
				"user_id": userID,
			})
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Select a payment method before placing the order",
			})
			return
		case errors.Is(err, service.ErrEmptyOrder):
			log.Warn("Order creation failed: no items", map[string]interface{}{
				"user_id": userID,
			})
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Order has no items",
			})
			return
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "One or more products are unavailable",
			})
			return
		case errors.Is(err, service.ErrSizeMismatch):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Size does not belong to the requested product",
			})
			return
		case errors.Is(err, service.ErrInsufficientStock):
			log.Warn("Order creation failed: insufficient stock", map[string]interface{}{
				"user_id": userID,
			})
			c.JSON(http.StatusConflict, gin.H{
				"error": "Insufficient stock for one or more items",
			})
			return
		default:
			log.Error("Failed to create order", err, map[string]interface{}{
				"user_id": userID,
			})
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create order",
			})
			return
		}
	}

	log.Info("Order created successfully", map[string]interface{}{
		"user_id":  userID,
		"order_id": order.ID,
		"amount":   order.Payment.Amount,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully",
		"order":   order,
	})
}

// GetOrders returns the user's order history
// GET /api/v1/orders
func (ctrl *OrderController) GetOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		log.Warn("Unauthorized access to orders", nil)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	orders, err := ctrl.orderService.GetUserOrders(userID)
	if err != nil {
		log.Error("Failed to fetch orders", err, map[string]interface{}{
			"user_id": userID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch orders",
		})
		return
	}

	log.Info("Orders fetched successfully", map[string]interface{}{
		"user_id": userID,
		"count":   len(orders),
	})

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrderByID returns one of the user's orders
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		log.Warn("Unauthorized access to order", nil)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		log.Warn("Invalid order ID format", map[string]interface{}{
			"user_id":  userID,
			"order_id": idStr,
			"error":    err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID",
		})
		return
	}

	order, err := ctrl.orderService.GetOrderByID(userID, uint(id))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			log.Warn("Order not found", map[string]interface{}{
				"user_id":  userID,
				"order_id": id,
			})
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
			return
		}
		log.Error("Failed to fetch order", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch order",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// CancelOrder cancels one of the user's pending orders
// POST /api/v1/orders/:id/cancel
func (ctrl *OrderController) CancelOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		log.Warn("Invalid order ID format", map[string]interface{}{
			"user_id":  userID,
			"order_id": idStr,
			"error":    err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID",
		})
		return
	}

	order, err := ctrl.orderService.CancelOrder(userID, uint(id))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
		case errors.Is(err, service.ErrOrderNotPending):
			log.Warn("Cancel rejected: order is not pending", map[string]interface{}{
				"user_id":  userID,
				"order_id": id,
			})
			c.JSON(http.StatusConflict, gin.H{
				"error": "Only pending orders can be cancelled",
			})
		default:
			log.Error("Failed to cancel order", err, map[string]interface{}{
				"user_id":  userID,
				"order_id": id,
			})
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to cancel order",
			})
		}
		return
	}

	log.Info("Order cancelled", map[string]interface{}{
		"user_id":  userID,
		"order_id": order.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Order cancelled",
		"order":   order,
	})
}
