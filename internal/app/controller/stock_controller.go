package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/service"
	"github.com/ptnguyen/coffeecorner-backend/internal/middleware"
)

type StockController struct {
	stockService service.StockService
}

func NewStockController(stockService service.StockService) *StockController {
	return &StockController{
		stockService: stockService,
	}
}

type StockItemRequest struct {
	StoreID  uint   `json:"store_id" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Quantity int    `json:"quantity" binding:"gte=0"`
	Unit     string `json:"unit"`
}

func (req *StockItemRequest) toInput() service.StockItemInput {
	return service.StockItemInput{
		StoreID:  req.StoreID,
		Name:     req.Name,
		Quantity: req.Quantity,
		Unit:     req.Unit,
	}
}

// GetStockItems lists inventory items across stores (Admin only)
// GET /api/v1/admin/stock
func (ctrl *StockController) GetStockItems(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	items, err := ctrl.stockService.ListStockItems()
	if err != nil {
		log.Error("Failed to fetch stock items", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch stock items",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stock_items": items,
		"count":       len(items),
	})
}

// CreateStockItem adds an inventory item (Admin only)
// POST /api/v1/admin/stock
func (ctrl *StockController) CreateStockItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req StockItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create stock item request", map[string]interface{}{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	item, err := ctrl.stockService.CreateStockItem(req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStoreNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		case errors.Is(err, service.ErrInvalidQuantity):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity cannot be negative"})
		default:
			log.Error("Failed to create stock item", err, map[string]interface{}{
				"name": req.Name,
			})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create stock item"})
		}
		return
	}

	log.Info("Stock item created", map[string]interface{}{
		"stock_item_id": item.ID,
		"name":          item.Name,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Stock item created",
		"stock_item": item,
	})
}

// UpdateStockItem edits an inventory item (Admin only)
// PUT /api/v1/admin/stock/:id
func (ctrl *StockController) UpdateStockItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		log.Warn("Invalid stock item ID format", map[string]interface{}{
			"stock_item_id": idStr,
			"error":         err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid stock item ID",
		})
		return
	}

	var req StockItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	item, err := ctrl.stockService.UpdateStockItem(uint(id), req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStockItemNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Stock item not found"})
		case errors.Is(err, service.ErrStoreNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		case errors.Is(err, service.ErrInvalidQuantity):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity cannot be negative"})
		default:
			log.Error("Failed to update stock item", err, map[string]interface{}{
				"stock_item_id": id,
			})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update stock item"})
		}
		return
	}

	log.Info("Stock item updated", map[string]interface{}{
		"stock_item_id": item.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":    "Stock item updated",
		"stock_item": item,
	})
}

// DeleteStockItem removes an inventory item (Admin only)
// DELETE /api/v1/admin/stock/:id
func (ctrl *StockController) DeleteStockItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid stock item ID",
		})
		return
	}

	if err := ctrl.stockService.DeleteStockItem(uint(id)); err != nil {
		if errors.Is(err, service.ErrStockItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Stock item not found"})
			return
		}
		log.Error("Failed to delete stock item", err, map[string]interface{}{
			"stock_item_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete stock item"})
		return
	}

	log.Info("Stock item deleted", map[string]interface{}{
		"stock_item_id": id,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock item deleted",
	})
}
