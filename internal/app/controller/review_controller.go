package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/service"
	apperrors "github.com/ptnguyen/coffeecorner-backend/internal/errors"
	"github.com/ptnguyen/coffeecorner-backend/internal/middleware"
)

type ReviewController struct {
	reviewService service.ReviewService
}

func NewReviewController(reviewService service.ReviewService) *ReviewController {
	return &ReviewController{
		reviewService: reviewService,
	}
}

type CreateReviewRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	SizeID    uint   `json:"size_id" binding:"required"`
	OrderID   uint   `json:"order_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment"`
	ImageURL  string `json:"image_url"`
}

// CreateReview submits a review for a delivered order line
// POST /api/v1/reviews
func (ctrl *ReviewController) CreateReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		log.Warn("Unauthorized attempt to create review", nil)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create review request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	log.Debug("Submitting review", map[string]interface{}{
		"user_id":    userID,
		"product_id": req.ProductID,
		"order_id":   req.OrderID,
		"rating":     req.Rating,
	})

	review, err := ctrl.reviewService.SubmitReview(userID, service.ReviewInput{
		ProductID: req.ProductID,
		SizeID:    req.SizeID,
		OrderID:   req.OrderID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		ImageURL:  req.ImageURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRating):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be between 1 and 5"})
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		case errors.Is(err, service.ErrSizeMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Size does not belong to this product"})
		case errors.Is(err, service.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, service.ErrReviewNotDelivered):
			log.Warn("Review rejected: order not delivered", map[string]interface{}{
				"user_id":  userID,
				"order_id": req.OrderID,
			})
			apperrors.Conflict(c, apperrors.ReviewNotDelivered, "Only delivered orders can be reviewed")
		case errors.Is(err, service.ErrReviewExists):
			log.Warn("Review rejected: already reviewed", map[string]interface{}{
				"user_id":    userID,
				"product_id": req.ProductID,
				"order_id":   req.OrderID,
			})
			apperrors.Conflict(c, apperrors.ReviewAlreadyExists, "You have already reviewed this item")
		default:
			log.Error("Failed to create review", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": req.ProductID,
			})
			// The unique index can still fire under concurrent submits.
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create review")
		}
		return
	}

	log.Info("Review created", map[string]interface{}{
		"user_id":   userID,
		"review_id": review.ID,
		"rating":    review.Rating,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Review created successfully",
		"review":  review,
	})
}

// GetProductReviews lists reviews for a product
// GET /api/v1/products/:id/reviews
func (ctrl *ReviewController) GetProductReviews(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
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

	reviews, err := ctrl.reviewService.GetProductReviews(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		log.Error("Failed to fetch product reviews", err, map[string]interface{}{
			"product_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch reviews",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"count":   len(reviews),
	})
}

// CheckReview tells whether the caller already reviewed an order line
// GET /api/v1/reviews/check?product_id=&size_id=&order_id=
func (ctrl *ReviewController) CheckReview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	productID, err := strconv.ParseUint(c.Query("product_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}
	sizeID, err := strconv.ParseUint(c.Query("size_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid size ID"})
		return
	}
	orderID, err := strconv.ParseUint(c.Query("order_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	review, err := ctrl.reviewService.CheckReview(userID, uint(productID), uint(sizeID), uint(orderID))
	if err != nil {
		log.Error("Failed to check review", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
			"order_id":   orderID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to check review",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviewed": review != nil,
		"review":   review,
	})
}
