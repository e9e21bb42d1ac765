package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/service"
	"github.com/ptnguyen/coffeecorner-backend/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

type ProductSizeRequest struct {
	ID    uint   `json:"id"`
	Size  string `json:"size" binding:"required"`
	Price int    `json:"price" binding:"required,gt=0"`
}

type SaveProductRequest struct {
	Name        string               `json:"name" binding:"required"`
	Description string               `json:"description"`
	Category    string               `json:"category" binding:"required"`
	Price       int                  `json:"price" binding:"required,gt=0"`
	Discount    int                  `json:"discount" binding:"gte=0,lte=100"`
	Stock       int                  `json:"stock" binding:"gte=0"`
	ImageURL    string               `json:"image_url"`
	ThumbURL    string               `json:"thumb_url"`
	Sizes       []ProductSizeRequest `json:"sizes" binding:"required,min=1,dive"`
}

func (req *SaveProductRequest) toInput() service.ProductInput {
	sizes := make([]model.ProductSize, 0, len(req.Sizes))
	for _, s := range req.Sizes {
		sizes = append(sizes, model.ProductSize{
			ID:    s.ID,
			Size:  s.Size,
			Price: s.Price,
		})
	}
	return service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    model.ProductCategory(req.Category),
		Price:       req.Price,
		Discount:    req.Discount,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		ThumbURL:    req.ThumbURL,
		Sizes:       sizes,
	}
}

// GetProducts returns the storefront catalog, optionally filtered by category
// GET /api/v1/products?category=Coffees
func (ctrl *ProductController) GetProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	category := c.Query("category")

	products, err := ctrl.productService.ListProducts(category)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCategory) {
			log.Warn("Invalid category filter", map[string]interface{}{
				"category": category,
			})
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid category",
			})
			return
		}
		log.Error("Failed to fetch products", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch products",
		})
		return
	}

	log.Info("Products fetched successfully", map[string]interface{}{
		"category": category,
		"count":    len(products),
	})

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProductByID returns a product with its reviews
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
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

	product, reviews, err := ctrl.productService.GetProduct(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			log.Warn("Product not found", map[string]interface{}{
				"product_id": id,
			})
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}
		log.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch product",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
		"reviews": reviews,
	})
}

// GetBestSellers returns the top products by delivered quantity
// GET /api/v1/products/best-sellers
func (ctrl *ProductController) GetBestSellers(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	bestSellers, err := ctrl.productService.BestSellers()
	if err != nil {
		log.Error("Failed to fetch best sellers", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch best sellers",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"best_sellers": bestSellers,
		"count":        len(bestSellers),
	})
}

// AdminGetProducts returns products decorated with ratings and favorites (Admin only)
// GET /api/v1/admin/products
func (ctrl *ProductController) AdminGetProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	adminID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	products, err := ctrl.productService.AdminListProducts(adminID)
	if err != nil {
		log.Error("Failed to fetch admin product list", err, map[string]interface{}{
			"admin_id": adminID,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch products",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// CreateProduct creates a product with its sizes (Admin only)
// POST /api/v1/admin/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req SaveProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product creation request", map[string]interface{}{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	log.Debug("Creating product", map[string]interface{}{
		"name":     req.Name,
		"category": req.Category,
		"sizes":    len(req.Sizes),
	})

	product, err := ctrl.productService.CreateProduct(req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCategory):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		case errors.Is(err, service.ErrInvalidSize):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Sizes must be one of S, M, L"})
		case errors.Is(err, service.ErrInvalidDiscount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Discount must be between 0 and 100"})
		default:
			log.Error("Failed to create product", err, map[string]interface{}{
				"name": req.Name,
			})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		}
		return
	}

	log.Info("Product created successfully", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"product": product,
	})
}

// UpdateProduct updates a product and reconciles its sizes (Admin only)
// PUT /api/v1/admin/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
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

	var req SaveProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product update request", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	product, err := ctrl.productService.UpdateProduct(uint(id), req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			log.Warn("Product not found for update", map[string]interface{}{
				"product_id": id,
			})
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		case errors.Is(err, service.ErrInvalidCategory):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		case errors.Is(err, service.ErrInvalidSize):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Sizes must be one of S, M, L"})
		case errors.Is(err, service.ErrInvalidDiscount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Discount must be between 0 and 100"})
		default:
			log.Error("Failed to update product", err, map[string]interface{}{
				"product_id": id,
			})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		}
		return
	}

	log.Info("Product updated successfully", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"product": product,
	})
}

// DeleteProduct deletes a product and its sizes (Admin only)
// DELETE /api/v1/admin/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
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

	log.Debug("Deleting product", map[string]interface{}{
		"product_id": id,
	})

	if err := ctrl.productService.DeleteProduct(uint(id)); err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			log.Warn("Product not found for deletion", map[string]interface{}{
				"product_id": id,
			})
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		case errors.Is(err, service.ErrProductInUse):
			log.Warn("Product deletion blocked by existing orders", map[string]interface{}{
				"product_id": id,
			})
			c.JSON(http.StatusConflict, gin.H{"error": "Product has been ordered and cannot be deleted"})
		default:
			log.Error("Failed to delete product", err, map[string]interface{}{
				"product_id": id,
			})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		}
		return
	}

	log.Info("Product deleted successfully", map[string]interface{}{
		"product_id": id,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted successfully",
	})
}
