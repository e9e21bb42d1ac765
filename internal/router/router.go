package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ptnguyen/coffeecorner-backend/config"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/controller"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/internal/middleware"
)

type Router struct {
	authController           *controller.AuthController
	productController        *controller.ProductController
	cartController           *controller.CartController
	orderController          *controller.OrderController
	reviewController         *controller.ReviewController
	favoriteController       *controller.FavoriteController
	addressController        *controller.AddressController
	inboxController          *controller.InboxController
	uploadController         *controller.UploadController
	dashboardController      *controller.DashboardController
	adminOrderController     *controller.AdminOrderController
	stockController          *controller.StockController
	userManagementController *controller.UserManagementController
	eventController          *controller.EventController
	authMiddleware           *middleware.AuthMiddleware
	config                   *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	cartController *controller.CartController,
	orderController *controller.OrderController,
	reviewController *controller.ReviewController,
	favoriteController *controller.FavoriteController,
	addressController *controller.AddressController,
	inboxController *controller.InboxController,
	uploadController *controller.UploadController,
	dashboardController *controller.DashboardController,
	adminOrderController *controller.AdminOrderController,
	stockController *controller.StockController,
	userManagementController *controller.UserManagementController,
	eventController *controller.EventController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:           authController,
		productController:        productController,
		cartController:           cartController,
		orderController:          orderController,
		reviewController:         reviewController,
		favoriteController:       favoriteController,
		addressController:        addressController,
		inboxController:          inboxController,
		uploadController:         uploadController,
		dashboardController:      dashboardController,
		adminOrderController:     adminOrderController,
		stockController:          stockController,
		userManagementController: userManagementController,
		eventController:          eventController,
		authMiddleware:           authMiddleware,
		config:                   cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "COFFEE CORNER API is running",
		})
	})

	// Serve locally stored uploads. Harmless when the S3 backend is
	// active; the directory just stays empty.
	router.Static("/uploads", r.config.Upload.Dir)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
			auth.PUT("/me", r.authMiddleware.Authenticate(), r.authController.UpdateMe)
			auth.PUT("/password", r.authMiddleware.Authenticate(), r.authController.ChangePassword)
		}

		products := v1.Group("/products")
		{
			products.GET("", r.productController.GetProducts)
			products.GET("/best-sellers", r.productController.GetBestSellers)
			products.GET("/:id", r.productController.GetProductByID)
			products.GET("/:id/reviews", r.reviewController.GetProductReviews)
		}

		cart := v1.Group("/cart")
		cart.Use(r.authMiddleware.Authenticate())
		{
			cart.GET("", r.cartController.GetCart)
			cart.POST("", r.cartController.AddToCart)
			cart.PUT("/:id", r.cartController.UpdateCartItem)
			cart.DELETE("/:id", r.cartController.RemoveCartItem)
		}

		checkout := v1.Group("/checkout")
		checkout.Use(r.authMiddleware.Authenticate())
		{
			checkout.GET("", r.orderController.GetStaging)
			checkout.POST("/payment", r.orderController.StagePayment)
			checkout.POST("/delivery", r.orderController.StageDelivery)
		}

		orders := v1.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.GET("", r.orderController.GetOrders)
			orders.POST("", r.orderController.CreateOrder)
			orders.GET("/:id", r.orderController.GetOrderByID)
			orders.POST("/:id/cancel", r.orderController.CancelOrder)
		}

		reviews := v1.Group("/reviews")
		reviews.Use(r.authMiddleware.Authenticate())
		{
			reviews.POST("", r.reviewController.CreateReview)
			reviews.GET("/check", r.reviewController.CheckReview)
		}

		addresses := v1.Group("/addresses")
		addresses.Use(r.authMiddleware.Authenticate())
		{
			addresses.GET("", r.addressController.ListAddresses)
			addresses.POST("", r.addressController.CreateAddress)
			addresses.PUT("/:id", r.addressController.UpdateAddress)
			addresses.DELETE("/:id", r.addressController.DeleteAddress)
			addresses.PUT("/:id/default", r.addressController.SetDefaultAddress)
		}

		inbox := v1.Group("/inbox")
		inbox.Use(r.authMiddleware.Authenticate())
		{
			inbox.GET("", r.inboxController.GetMyThread)
			inbox.POST("", r.inboxController.SendMyMessage)
			// Browsers cannot set headers on websocket dials, so the
			// middleware also accepts ?token=.
			inbox.GET("/ws", r.inboxController.Connect)
		}

		upload := v1.Group("/upload")
		upload.Use(r.authMiddleware.Authenticate())
		{
			upload.POST("", r.uploadController.UploadFile)
			upload.POST("/presign", r.uploadController.GeneratePresignedURL)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole(model.RoleAdmin))
		{
			admin.GET("/dashboard", r.dashboardController.GetSummary)

			adminProducts := admin.Group("/products")
			{
				adminProducts.GET("", r.productController.AdminGetProducts)
				adminProducts.POST("", r.productController.CreateProduct)
				adminProducts.PUT("/:id", r.productController.UpdateProduct)
				adminProducts.DELETE("/:id", r.productController.DeleteProduct)
			}

			adminOrders := admin.Group("/orders")
			{
				adminOrders.GET("", r.adminOrderController.GetOrders)
				adminOrders.GET("/export", r.adminOrderController.ExportOrders)
				adminOrders.POST("", r.adminOrderController.CreateOrder)
				adminOrders.PUT("/:id", r.adminOrderController.UpdateOrder)
				adminOrders.DELETE("/:id", r.adminOrderController.DeleteOrder)
				adminOrders.POST("/:id/deliver", r.adminOrderController.MarkDelivered)
				adminOrders.POST("/:id/cancel", r.adminOrderController.MarkCancelled)
			}

			stock := admin.Group("/stock")
			{
				stock.GET("", r.stockController.GetStockItems)
				stock.POST("", r.stockController.CreateStockItem)
				stock.PUT("/:id", r.stockController.UpdateStockItem)
				stock.DELETE("/:id", r.stockController.DeleteStockItem)
			}

			users := admin.Group("/users")
			{
				users.GET("", r.userManagementController.GetAccounts)
				users.POST("", r.userManagementController.AddAccount)
				users.PUT("/:id", r.userManagementController.EditAccount)
				users.DELETE("/:id", r.userManagementController.DeleteAccount)
			}

			favorites := admin.Group("/favorites")
			{
				favorites.GET("", r.favoriteController.GetFavorites)
				favorites.POST("", r.favoriteController.AddFavorite)
				favorites.DELETE("/:productId", r.favoriteController.RemoveFavorite)
			}

			adminInbox := admin.Group("/inbox")
			{
				adminInbox.GET("", r.inboxController.GetThreads)
				adminInbox.GET("/:userId", r.inboxController.GetThread)
				adminInbox.POST("/:userId", r.inboxController.SendMessage)
				adminInbox.POST("/:userId/assign", r.inboxController.AssignThread)
			}

			events := admin.Group("/events")
			{
				events.GET("", r.eventController.GetEvents)
				events.POST("", r.eventController.CreateEvent)
				events.PUT("/:id", r.eventController.UpdateEvent)
				events.DELETE("/:id", r.eventController.DeleteEvent)
			}
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
