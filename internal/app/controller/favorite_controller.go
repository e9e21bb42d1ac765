package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/service"
	"github.com/ptnguyen/coffeecorner-backend/internal/middleware"
)

type FavoriteController struct {
	favoriteService service.FavoriteService
}

func NewFavoriteController(favoriteService service.FavoriteService) *FavoriteController {
	return &FavoriteController{
		favoriteService: favoriteService,
	}
}

type AddFavoriteRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// GetFavorites lists the admin's favorited products
// GET /api/v1/admin/favorites
func (ctrl *FavoriteController) GetFavorites(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	adminID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	favorites, err := ctrl.favoriteService.ListFavorites(adminID)
	if err != nil {
		log.Error("Failed to fetch favorites", err, map[string]interface{}{
			"admin_id": adminID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch favorites",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"favorites": favorites,
		"count":     len(favorites),
	})
}

// AddFavorite marks a product as a favorite
// POST /api/v1/admin/favorites
func (ctrl *FavoriteController) AddFavorite(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	adminID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req AddFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add favorite request", map[string]interface{}{
			"admin_id": adminID,
			"error":    err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Product ID is required",
		})
		return
	}

	favorite, err := ctrl.favoriteService.AddFavorite(adminID, req.ProductID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		case errors.Is(err, service.ErrFavoriteExists):
			c.JSON(http.StatusConflict, gin.H{"error": "Product is already a favorite"})
		default:
			log.Error("Failed to add favorite", err, map[string]interface{}{
				"admin_id":   adminID,
				"product_id": req.ProductID,
			})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add favorite"})
		}
		return
	}

	log.Info("Favorite added", map[string]interface{}{
		"admin_id":   adminID,
		"product_id": req.ProductID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Favorite added",
		"favorite": favorite,
	})
}

// RemoveFavorite unmarks a favorited product
// DELETE /api/v1/admin/favorites/:productId
func (ctrl *FavoriteController) RemoveFavorite(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	adminID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	idStr := c.Param("productId")
	productID, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		log.Warn("Invalid product ID format", map[string]interface{}{
			"product_id": idStr,
			"error":      err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	if err := ctrl.favoriteService.RemoveFavorite(adminID, uint(productID)); err != nil {
		if errors.Is(err, service.ErrFavoriteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Favorite not found"})
			return
		}
		log.Error("Failed to remove favorite", err, map[string]interface{}{
			"admin_id":   adminID,
			"product_id": productID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove favorite"})
		return
	}

	log.Info("Favorite removed", map[string]interface{}{
		"admin_id":   adminID,
		"product_id": productID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Favorite removed",
	})
}
