package controller

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

	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/repository"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/service"
	"github.com/ptnguyen/coffeecorner-backend/internal/checkout"
	"github.com/ptnguyen/coffeecorner-backend/internal/db"
	"github.com/ptnguyen/coffeecorner-backend/internal/middleware"
	"github.com/ptnguyen/coffeecorner-backend/pkg/util"
)

type orderControllerFixture struct {
	router  *gin.Engine
	user    *model.User
	product *model.Product
	token   string
	db      *gorm.DB
}

func setupOrderControllerTest(t *testing.T) *orderControllerFixture {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	store := &model.Store{Name: "Main Branch", Address: "1 Bean Street"}
	require.NoError(t, testDB.Create(store).Error)

	user := &model.User{Email: "test@example.com", PasswordHash: "hash", Name: "Test User"}
	require.NoError(t, testDB.Create(user).Error)

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
	require.NoError(t, testDB.Create(product).Error)

	orderService := service.NewOrderService(
		repository.NewOrderRepository(testDB),
		repository.NewCartRepository(testDB),
		repository.NewProductRepository(testDB),
		checkout.NewMemoryStore(30*time.Minute),
		testDB,
		store.ID,
	)
	ctrl := NewOrderController(orderService)
	authMiddleware := middleware.NewAuthMiddleware("test-secret")

	router := gin.New()
	checkoutGroup := router.Group("/checkout", authMiddleware.Authenticate())
	{
		checkoutGroup.POST("/payment", ctrl.StagePayment)
		checkoutGroup.POST("/delivery", ctrl.StageDelivery)
		checkoutGroup.GET("", ctrl.GetStaging)
	}
	orderGroup := router.Group("/orders", authMiddleware.Authenticate())
	{
		orderGroup.POST("", ctrl.CreateOrder)
		orderGroup.GET("", ctrl.GetOrders)
		orderGroup.GET("/:id", ctrl.GetOrderByID)
		orderGroup.POST("/:id/cancel", ctrl.CancelOrder)
	}

	tokens, err := util.GenerateTokenPair(
		user.ID, user.Email, model.RoleCustomer,
		"test-secret", 15*time.Minute, 7*24*time.Hour,
	)
	require.NoError(t, err)

	return &orderControllerFixture{
		router:  router,
		user:    user,
		product: product,
		token:   tokens.AccessToken,
		db:      testDB,
	}
}

func (f *orderControllerFixture) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.token)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *orderControllerFixture) stageCheckout(t *testing.T) {
	t.Helper()
	w := f.do("POST", "/checkout/payment", StagePaymentRequest{Method: "card"})
	require.Equal(t, http.StatusOK, w.Code)
	w = f.do("POST", "/checkout/delivery", StageDeliveryRequest{Date: "2026-09-15", Time: "10:30"})
	require.Equal(t, http.StatusOK, w.Code)
}

func (f *orderControllerFixture) orderRequest() CreateOrderRequest {
	return CreateOrderRequest{
		Items: []OrderItemRequest{
			{ProductID: f.product.ID, SizeID: f.product.Sizes[1].ID, Quantity: 2},
		},
	}
}

func TestOrderController_StagePayment(t *testing.T) {
	f := setupOrderControllerTest(t)

	w := f.do("POST", "/checkout/payment", StagePaymentRequest{Method: "card"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Payment method saved")
}

func TestOrderController_StagePayment_MissingMethod(t *testing.T) {
	f := setupOrderControllerTest(t)

	w := f.do("POST", "/checkout/payment", map[string]interface{}{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Payment method is required")
}

func TestOrderController_StageDelivery_InvalidSlot(t *testing.T) {
	f := setupOrderControllerTest(t)

	w := f.do("POST", "/checkout/delivery", StageDeliveryRequest{Date: "15-09-2026"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Delivery date must be YYYY-MM-DD")
}

func TestOrderController_GetStaging(t *testing.T) {
	f := setupOrderControllerTest(t)

	// Nothing staged yet.
	w := f.do("GET", "/checkout", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "No checkout in progress")

	f.stageCheckout(t)

	w = f.do("GET", "/checkout", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	staged := response["checkout"].(map[string]interface{})
	assert.Equal(t, "card", staged["payment_method"])
	assert.Equal(t, "2026-09-15", staged["delivery_date"])
}

func TestOrderController_CreateOrder(t *testing.T) {
	f := setupOrderControllerTest(t)
	f.stageCheckout(t)

	w := f.do("POST", "/orders", f.orderRequest())

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Order created successfully", response["message"])

	order := response["order"].(map[string]interface{})
	payment := order["payment"].(map[string]interface{})
	// Size M at 50000 with 10% off is 45000 per unit.
	assert.Equal(t, float64(90000), payment["amount"])
	assert.Equal(t, "card", payment["method"])
}

func TestOrderController_CreateOrder_NotStaged(t *testing.T) {
	f := setupOrderControllerTest(t)

	w := f.do("POST", "/orders", f.orderRequest())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Select a payment method")
}

func TestOrderController_CreateOrder_FromCart(t *testing.T) {
	f := setupOrderControllerTest(t)
	f.stageCheckout(t)

	cartService := service.NewCartService(
		repository.NewCartRepository(f.db),
		repository.NewProductRepository(f.db),
	)
	_, err := cartService.AddToCart(f.user.ID, f.product.ID, f.product.Sizes[0].ID, 1)
	require.NoError(t, err)

	// Empty items means "order whatever is in my cart".
	w := f.do("POST", "/orders", CreateOrderRequest{})

	assert.Equal(t, http.StatusCreated, w.Code)

	var count int64
	f.db.Model(&model.CartItem{}).Where("user_id = ?", f.user.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestOrderController_CreateOrder_EmptyCart(t *testing.T) {
	f := setupOrderControllerTest(t)
	f.stageCheckout(t)

	w := f.do("POST", "/orders", CreateOrderRequest{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Order has no items")
}

func TestOrderController_CreateOrder_InsufficientStock(t *testing.T) {
	f := setupOrderControllerTest(t)
	f.stageCheckout(t)

	req := f.orderRequest()
	req.Items[0].Quantity = 11

	w := f.do("POST", "/orders", req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Insufficient stock")
}

func TestOrderController_GetOrders(t *testing.T) {
	f := setupOrderControllerTest(t)
	f.stageCheckout(t)

	w := f.do("POST", "/orders", f.orderRequest())
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do("GET", "/orders", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(1), response["count"])
}

func TestOrderController_GetOrderByID(t *testing.T) {
	f := setupOrderControllerTest(t)
	f.stageCheckout(t)

	w := f.do("POST", "/orders", f.orderRequest())
	require.Equal(t, http.StatusCreated, w.Code)

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	orderID := uint(created["order"].(map[string]interface{})["id"].(float64))

	w = f.do("GET", fmt.Sprintf("/orders/%d", orderID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Caramel Latte")

	w = f.do("GET", "/orders/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do("GET", "/orders/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderController_CancelOrder(t *testing.T) {
	f := setupOrderControllerTest(t)
	f.stageCheckout(t)

	w := f.do("POST", "/orders", f.orderRequest())
	require.Equal(t, http.StatusCreated, w.Code)

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	orderID := uint(created["order"].(map[string]interface{})["id"].(float64))

	w = f.do("POST", fmt.Sprintf("/orders/%d/cancel", orderID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Order cancelled")

	// A cancelled order cannot be cancelled again.
	w = f.do("POST", fmt.Sprintf("/orders/%d/cancel", orderID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Only pending orders can be cancelled")
}

func TestOrderController_Unauthorized(t *testing.T) {
	f := setupOrderControllerTest(t)

	req := httptest.NewRequest("GET", "/orders", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
