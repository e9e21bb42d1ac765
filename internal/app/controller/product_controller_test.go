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
	"github.com/ptnguyen/coffeecorner-backend/internal/db"
	"github.com/ptnguyen/coffeecorner-backend/internal/middleware"
	"github.com/ptnguyen/coffeecorner-backend/pkg/util"
)

type productControllerFixture struct {
	router     *gin.Engine
	admin      *model.Admin
	adminToken string
	db         *gorm.DB
}

func setupProductControllerTest(t *testing.T) *productControllerFixture {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	admin := &model.Admin{Email: "admin@example.com", PasswordHash: "hash", Name: "Test Admin"}
	require.NoError(t, testDB.Create(admin).Error)

	productService := service.NewProductService(
		repository.NewProductRepository(testDB),
		repository.NewReviewRepository(testDB),
		repository.NewFavoriteRepository(testDB),
	)
	ctrl := NewProductController(productService)
	authMiddleware := middleware.NewAuthMiddleware("test-secret")

	router := gin.New()
	router.GET("/products", ctrl.GetProducts)
	router.GET("/products/best-sellers", ctrl.GetBestSellers)
	router.GET("/products/:id", ctrl.GetProductByID)

	adminGroup := router.Group("/admin/products",
		authMiddleware.Authenticate(),
		authMiddleware.RequireRole(model.RoleAdmin),
	)
	{
		adminGroup.GET("", ctrl.AdminGetProducts)
		adminGroup.POST("", ctrl.CreateProduct)
		adminGroup.PUT("/:id", ctrl.UpdateProduct)
		adminGroup.DELETE("/:id", ctrl.DeleteProduct)
	}

	tokens, err := util.GenerateTokenPair(
		admin.ID, admin.Email, model.RoleAdmin,
		"test-secret", 15*time.Minute, 7*24*time.Hour,
	)
	require.NoError(t, err)

	return &productControllerFixture{
		router:     router,
		admin:      admin,
		adminToken: tokens.AccessToken,
		db:         testDB,
	}
}

func (f *productControllerFixture) seedLatte(t *testing.T) *model.Product {
	t.Helper()
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
	require.NoError(t, f.db.Create(product).Error)
	return product
}

func latteRequest() SaveProductRequest {
	return SaveProductRequest{
		Name:     "Caramel Latte",
		Category: string(model.CategoryCoffees),
		Price:    50000,
		Discount: 10,
		Stock:    10,
		Sizes: []ProductSizeRequest{
			{Size: "S", Price: 45000},
			{Size: "M", Price: 50000},
		},
	}
}

func (f *productControllerFixture) doAdmin(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.adminToken)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestProductController_GetProducts(t *testing.T) {
	f := setupProductControllerTest(t)
	f.seedLatte(t)

	req := httptest.NewRequest("GET", "/products", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(1), response["count"])
}

func TestProductController_GetProducts_CategoryFilter(t *testing.T) {
	f := setupProductControllerTest(t)
	f.seedLatte(t)

	req := httptest.NewRequest("GET", "/products?category=Drinks", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(0), response["count"])

	req = httptest.NewRequest("GET", "/products?category=Jewelry", nil)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductController_GetProductByID(t *testing.T) {
	f := setupProductControllerTest(t)
	product := f.seedLatte(t)

	req := httptest.NewRequest("GET", fmt.Sprintf("/products/%d", product.ID), nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Caramel Latte")

	req = httptest.NewRequest("GET", "/products/9999", nil)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductController_CreateProduct(t *testing.T) {
	f := setupProductControllerTest(t)

	w := f.doAdmin("POST", "/admin/products", latteRequest())

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Product created successfully")
}

func TestProductController_CreateProduct_RequiresAdmin(t *testing.T) {
	f := setupProductControllerTest(t)

	tokens, err := util.GenerateTokenPair(
		1, "customer@example.com", model.RoleCustomer,
		"test-secret", 15*time.Minute, 7*24*time.Hour,
	)
	require.NoError(t, err)

	body, _ := json.Marshal(latteRequest())
	req := httptest.NewRequest("POST", "/admin/products", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProductController_CreateProduct_Validation(t *testing.T) {
	f := setupProductControllerTest(t)

	badCategory := latteRequest()
	badCategory.Category = "Jewelry"
	w := f.doAdmin("POST", "/admin/products", badCategory)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid category")

	badSize := latteRequest()
	badSize.Sizes = []ProductSizeRequest{{Size: "XL", Price: 60000}}
	w = f.doAdmin("POST", "/admin/products", badSize)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	noSizes := latteRequest()
	noSizes.Sizes = nil
	w = f.doAdmin("POST", "/admin/products", noSizes)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductController_UpdateProduct(t *testing.T) {
	f := setupProductControllerTest(t)
	product := f.seedLatte(t)

	update := latteRequest()
	update.Name = "Vanilla Latte"
	update.Discount = 20
	update.Sizes = []ProductSizeRequest{
		{ID: product.Sizes[0].ID, Size: "S", Price: 47000},
		{Size: "L", Price: 58000},
	}

	w := f.doAdmin("PUT", fmt.Sprintf("/admin/products/%d", product.ID), update)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Vanilla Latte")

	w = f.doAdmin("PUT", "/admin/products/9999", latteRequest())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductController_DeleteProduct(t *testing.T) {
	f := setupProductControllerTest(t)
	product := f.seedLatte(t)

	w := f.doAdmin("DELETE", fmt.Sprintf("/admin/products/%d", product.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.doAdmin("DELETE", fmt.Sprintf("/admin/products/%d", product.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductController_DeleteProduct_BlockedByOrders(t *testing.T) {
	f := setupProductControllerTest(t)
	product := f.seedLatte(t)

	store := &model.Store{Name: "Main Branch"}
	require.NoError(t, f.db.Create(store).Error)
	user := &model.User{Email: "buyer@example.com", PasswordHash: "hash", Name: "Buyer"}
	require.NoError(t, f.db.Create(user).Error)
	order := &model.Order{
		UserID: user.ID, StoreID: store.ID,
		Status: model.OrderStatusDelivered, OrderDate: time.Now(),
		Details: []model.OrderDetail{
			{ProductID: product.ID, SizeID: product.Sizes[0].ID, Quantity: 1, UnitPrice: 45000, TotalPrice: 45000},
		},
	}
	require.NoError(t, f.db.Create(order).Error)

	w := f.doAdmin("DELETE", fmt.Sprintf("/admin/products/%d", product.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestProductController_AdminGetProducts(t *testing.T) {
	f := setupProductControllerTest(t)
	product := f.seedLatte(t)

	require.NoError(t, f.db.Create(&model.Favorite{
		AdminID:   f.admin.ID,
		ProductID: product.ID,
	}).Error)

	w := f.doAdmin("GET", "/admin/products", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Products []struct {
			Favorited bool `json:"favorited"`
		} `json:"products"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Products, 1)
	assert.True(t, response.Products[0].Favorited)
}
