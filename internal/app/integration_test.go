package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ptnguyen/coffeecorner-backend/internal/app/controller"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/repository"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/service"
	"github.com/ptnguyen/coffeecorner-backend/internal/checkout"
	"github.com/ptnguyen/coffeecorner-backend/internal/db"
	"github.com/ptnguyen/coffeecorner-backend/internal/middleware"
)

type TestServer struct {
	Router *gin.Engine
	DB     *gorm.DB
	Store  *model.Store
}

func setupIntegrationTest(t *testing.T) *TestServer {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	store := &model.Store{Name: "Main Branch", Address: "1 Bean Street"}
	require.NoError(t, testDB.Create(store).Error)

	userRepo := repository.NewUserRepository(testDB)
	adminRepo := repository.NewAdminRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	reviewRepo := repository.NewReviewRepository(testDB)
	favoriteRepo := repository.NewFavoriteRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	staging := checkout.NewMemoryStore(30 * time.Minute)

	authService := service.NewAuthService(
		userRepo,
		adminRepo,
		"test-secret",
		15*time.Minute,
		7*24*time.Hour,
	)
	productService := service.NewProductService(productRepo, reviewRepo, favoriteRepo)
	cartService := service.NewCartService(cartRepo, productRepo)
	orderService := service.NewOrderService(orderRepo, cartRepo, productRepo, staging, testDB, store.ID)

	authController := controller.NewAuthController(authService)
	productController := controller.NewProductController(productService)
	cartController := controller.NewCartController(cartService)
	orderController := controller.NewOrderController(orderService)

	authMiddleware := middleware.NewAuthMiddleware("test-secret")

	router := gin.New()

	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.GET("/me", authMiddleware.Authenticate(), authController.GetMe)
	}

	products := router.Group("/api/v1/products")
	{
		products.GET("", productController.GetProducts)
		products.GET("/best-sellers", productController.GetBestSellers)
		products.GET("/:id", productController.GetProductByID)
	}

	cart := router.Group("/api/v1/cart")
	cart.Use(authMiddleware.Authenticate())
	{
		cart.GET("", cartController.GetCart)
		cart.POST("", cartController.AddToCart)
		cart.PUT("/:id", cartController.UpdateCartItem)
		cart.DELETE("/:id", cartController.RemoveCartItem)
	}

	checkoutGroup := router.Group("/api/v1/checkout")
	checkoutGroup.Use(authMiddleware.Authenticate())
	{
		checkoutGroup.POST("/payment", orderController.StagePayment)
		checkoutGroup.POST("/delivery", orderController.StageDelivery)
		checkoutGroup.GET("", orderController.GetStaging)
	}

	orders := router.Group("/api/v1/orders")
	orders.Use(authMiddleware.Authenticate())
	{
		orders.GET("", orderController.GetOrders)
		orders.GET("/:id", orderController.GetOrderByID)
		orders.POST("", orderController.CreateOrder)
		orders.POST("/:id/cancel", orderController.CancelOrder)
	}

	return &TestServer{
		Router: router,
		DB:     testDB,
		Store:  store,
	}
}

func (ts *TestServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	return w
}

func TestCompleteUserJourney(t *testing.T) {
	ts := setupIntegrationTest(t)

	t.Log("Step 1: Register user")
	w := ts.do("POST", "/api/v1/auth/register", "", map[string]string{
		"email":    "buyer@example.com",
		"password": "password123",
		"name":     "Test Buyer",
		"phone":    "0901234567",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var registerResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registerResp))
	accessToken := registerResp["tokens"].(map[string]interface{})["access_token"].(string)

	t.Log("Step 2: Seed catalog")
	product := &model.Product{
		Name:     "Caramel Latte",
		Category: model.CategoryCoffees,
		Price:    50000,
		Discount: 10,
		Stock:    10,
		Sizes: []model.ProductSize{
			{Size: "S", Price: 45000},
			{Size: "M", Price: 50000},
		},
	}
	require.NoError(t, ts.DB.Create(product).Error)

	t.Log("Step 3: Browse products")
	w = ts.do("GET", "/api/v1/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var productsResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &productsResp))
	assert.Equal(t, float64(1), productsResp["count"])

	t.Log("Step 4: Add to cart")
	w = ts.do("POST", "/api/v1/cart", accessToken, map[string]interface{}{
		"product_id": product.ID,
		"size_id":    product.Sizes[1].ID,
		"quantity":   2,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	t.Log("Step 5: View cart")
	w = ts.do("GET", "/api/v1/cart", accessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var cartResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cartResp))
	assert.Len(t, cartResp["cart_items"].([]interface{}), 1)
	// Size M at 50000 with 10% off is 45000 per unit.
	assert.Equal(t, float64(90000), cartResp["total"])

	t.Log("Step 6: Stage checkout")
	w = ts.do("POST", "/api/v1/checkout/payment", accessToken, map[string]string{"method": "card"})
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do("POST", "/api/v1/checkout/delivery", accessToken, map[string]string{
		"date": "2026-09-15",
		"time": "10:30",
	})
	require.Equal(t, http.StatusOK, w.Code)

	t.Log("Step 7: Place the order from the cart")
	w = ts.do("POST", "/api/v1/orders", accessToken, map[string]interface{}{})
	require.Equal(t, http.StatusCreated, w.Code)

	var orderResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orderResp))
	order := orderResp["order"].(map[string]interface{})
	assert.Equal(t, string(model.OrderStatusPending), order["status"])
	payment := order["payment"].(map[string]interface{})
	assert.Equal(t, "card", payment["method"])
	assert.Equal(t, float64(90000), payment["amount"])

	t.Log("Step 8: View order history")
	w = ts.do("GET", "/api/v1/orders", accessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var ordersResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ordersResp))
	assert.Len(t, ordersResp["orders"].([]interface{}), 1)

	t.Log("Step 9: Verify the cart is empty")
	w = ts.do("GET", "/api/v1/cart", accessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cartResp))
	assert.Len(t, cartResp["cart_items"].([]interface{}), 0)

	t.Log("Step 10: Verify stock decreased")
	var updatedProduct model.Product
	require.NoError(t, ts.DB.First(&updatedProduct, product.ID).Error)
	assert.Equal(t, 8, updatedProduct.Stock)

	t.Log("Step 11: Cancel the order")
	orderID := int(order["id"].(float64))
	w = ts.do("POST", fmt.Sprintf("/api/v1/orders/%d/cancel", orderID), accessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var cancelled model.Order
	require.NoError(t, ts.DB.First(&cancelled, orderID).Error)
	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
}

func TestAuthenticationFlow(t *testing.T) {
	ts := setupIntegrationTest(t)

	w := ts.do("POST", "/api/v1/auth/register", "", map[string]string{
		"email":    "test@example.com",
		"password": "password123",
		"name":     "Test User",
		"phone":    "0901234567",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var registerResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registerResp))
	accessToken := registerResp["tokens"].(map[string]interface{})["access_token"].(string)

	w = ts.do("POST", "/api/v1/auth/login", "", map[string]string{
		"email":    "test@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do("GET", "/api/v1/auth/me", accessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var meResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meResp))
	account := meResp["account"].(map[string]interface{})
	assert.Equal(t, "test@example.com", account["email"])
	assert.Equal(t, "Test User", account["name"])
}

func TestUnauthorizedAccess(t *testing.T) {
	ts := setupIntegrationTest(t)

	protectedRoutes := []string{
		"/api/v1/auth/me",
		"/api/v1/cart",
		"/api/v1/checkout",
		"/api/v1/orders",
	}

	for _, route := range protectedRoutes {
		t.Run(route, func(t *testing.T) {
			w := ts.do("GET", route, "", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}
