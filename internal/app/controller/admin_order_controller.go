package controller

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/service"
	"github.com/ptnguyen/coffeecorner-backend/internal/middleware"
)

type AdminOrderController struct {
	adminOrderService service.AdminOrderService
}

func NewAdminOrderController(adminOrderService service.AdminOrderService) *AdminOrderController {
	return &AdminOrderController{
		adminOrderService: adminOrderService,
	}
}

type AdminOrderRequest struct {
	UserID        uint               `json:"user_id" binding:"required"`
	StoreID       *uint              `json:"store_id"`
	PaymentMethod string             `json:"payment_method"`
	Items         []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

func (req *AdminOrderRequest) toInput() service.AdminOrderInput {
	items := make([]service.OrderItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.OrderItemInput{
			ProductID: item.ProductID,
			SizeID:    item.SizeID,
			Quantity:  item.Quantity,
		}
	}
	return service.AdminOrderInput{
		UserID:        req.UserID,
		StoreID:       req.StoreID,
		PaymentMethod: req.PaymentMethod,
		Items:         items,
	}
}

// GetOrders returns every order for the back office
// GET /api/v1/admin/orders
func (ctrl *AdminOrderController) GetOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orders, err := ctrl.adminOrderService.ListOrders()
	if err != nil {
		log.Error("Failed to fetch orders", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch orders",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// CreateOrder places an order on behalf of a customer (Admin only)
// POST /api/v1/admin/orders
func (ctrl *AdminOrderController) CreateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req AdminOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid admin order request", map[string]interface{}{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	log.Debug("Creating order for customer", map[string]interface{}{
		"user_id":    req.UserID,
		"item_count": len(req.Items),
	})

	order, err := ctrl.adminOrderService.CreateOrder(req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "One or more products are unavailable"})
		case errors.Is(err, service.ErrSizeMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Size does not belong to the requested product"})
		case errors.Is(err, service.ErrEmptyOrder):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Order has no items"})
		default:
			log.Error("Failed to create order", err, map[string]interface{}{
				"user_id": req.UserID,
			})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		}
		return
	}

	log.Info("Order created for customer", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  req.UserID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully",
		"order":   order,
	})
}

// UpdateOrder replaces an order's lines and payment (Admin only)
// PUT /api/v1/admin/orders/:id
func (ctrl *AdminOrderController) UpdateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		log.Warn("Invalid order ID format", map[string]interface{}{
			"order_id": idStr,
			"error":    err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID",
		})
		return
	}

	var req AdminOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid admin order update request", map[string]interface{}{
			"order_id": id,
			"error":    err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	order, err := ctrl.adminOrderService.UpdateOrder(uint(id), req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, service.ErrOrderTerminalState):
			log.Warn("Update rejected: order is in a terminal state", map[string]interface{}{
				"order_id": id,
			})
			c.JSON(http.StatusConflict, gin.H{"error": "Delivered or cancelled orders cannot be modified"})
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "One or more products are unavailable"})
		case errors.Is(err, service.ErrSizeMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Size does not belong to the requested product"})
		default:
			log.Error("Failed to update order", err, map[string]interface{}{
				"order_id": id,
			})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		}
		return
	}

	log.Info("Order updated", map[string]interface{}{
		"order_id": order.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Order updated successfully",
		"order":   order,
	})
}

// DeleteOrder removes an order with its details and payment (Admin only)
// DELETE /api/v1/admin/orders/:id
func (ctrl *AdminOrderController) DeleteOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		log.Warn("Invalid order ID format", map[string]interface{}{
			"order_id": idStr,
			"error":    err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID",
		})
		return
	}

	if err := ctrl.adminOrderService.DeleteOrder(uint(id)); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		log.Error("Failed to delete order", err, map[string]interface{}{
			"order_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete order"})
		return
	}

	log.Info("Order deleted", map[string]interface{}{
		"order_id": id,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Order deleted successfully",
	})
}

// MarkDelivered transitions an order to Delivered (Admin only)
// POST /api/v1/admin/orders/:id/deliver
func (ctrl *AdminOrderController) MarkDelivered(c *gin.Context) {
	ctrl.transition(c, "Delivered", ctrl.adminOrderService.MarkDelivered)
}

// MarkCancelled transitions an order to Cancelled (Admin only)
// POST /api/v1/admin/orders/:id/cancel
func (ctrl *AdminOrderController) MarkCancelled(c *gin.Context) {
	ctrl.transition(c, "Cancelled", ctrl.adminOrderService.MarkCancelled)
}

func (ctrl *AdminOrderController) transition(c *gin.Context, target string, fn func(uint) (*model.Order, error)) {
	log := middleware.GetLoggerFromContext(c)

	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		log.Warn("Invalid order ID format", map[string]interface{}{
			"order_id": idStr,
			"error":    err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid order ID",
		})
		return
	}

	order, err := fn(uint(id))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, service.ErrOrderTerminalState):
			log.Warn("Transition rejected: order is in a terminal state", map[string]interface{}{
				"order_id": id,
				"target":   target,
			})
			c.JSON(http.StatusConflict, gin.H{"error": "Delivered or cancelled orders cannot transition"})
		default:
			log.Error("Failed to update order status", err, map[string]interface{}{
				"order_id": id,
				"target":   target,
			})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
		}
		return
	}

	log.Info("Order status updated", map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated",
		"order":   order,
	})
}

// ExportOrders streams the full order book as an XLSX workbook (Admin only)
// GET /api/v1/admin/orders/export
func (ctrl *AdminOrderController) ExportOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	data, err := ctrl.adminOrderService.ExportXLSX()
	if err != nil {
		log.Error("Failed to export orders", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to export orders",
		})
		return
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("2006-01-02"))

	log.Info("Orders exported", map[string]interface{}{
		"filename": filename,
		"bytes":    len(data),
	})

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.DataFromReader(
		http.StatusOK,
		int64(len(data)),
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		bytes.NewReader(data),
		nil,
	)
}
