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

type reviewControllerFixture struct {
	router  *gin.Engine
	user    *model.User
	product *model.Product
	order   *model.Order
	token   string
	db      *gorm.DB
}

func setupReviewControllerTest(t *testing.T) *reviewControllerFixture {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	store := &model.Store{Name: "Main Branch"}
	require.NoError(t, testDB.Create(store).Error)

	user := &model.User{Email: "test@example.com", PasswordHash: "hash", Name: "Test User"}
	require.NoError(t, testDB.Create(user).Error)

	product := &model.Product{
		Name:     "Caramel Latte",
		Category: model.CategoryCoffees,
		Price:    50000,
		Stock:    10,
		Sizes: []model.ProductSize{
			{Size: "M", Price: 50000},
		},
	}
	require.NoError(t, testDB.Create(product).Error)

	order := &model.Order{
		UserID:    user.ID,
		StoreID:   store.ID,
		Status:    model.OrderStatusDelivered,
		OrderDate: time.Now(),
		Details: []model.OrderDetail{
			{ProductID: product.ID, SizeID: product.Sizes[0].ID, Quantity: 1, UnitPrice: 50000, TotalPrice: 50000},
		},
	}
	require.NoError(t, testDB.Create(order).Error)

	reviewService := service.NewReviewService(
		repository.NewReviewRepository(testDB),
		repository.NewProductRepository(testDB),
		repository.NewOrderRepository(testDB),
	)
	ctrl := NewReviewController(reviewService)
	authMiddleware := middleware.NewAuthMiddleware("test-secret")

	router := gin.New()
	router.POST("/reviews", authMiddleware.Authenticate(), ctrl.CreateReview)
	router.GET("/products/:id/reviews", ctrl.GetProductReviews)

	tokens, err := util.GenerateTokenPair(
		user.ID, user.Email, model.RoleCustomer,
		"test-secret", 15*time.Minute, 7*24*time.Hour,
	)
	require.NoError(t, err)

	return &reviewControllerFixture{
		router:  router,
		user:    user,
		product: product,
		order:   order,
		token:   tokens.AccessToken,
		db:      testDB,
	}
}

func (f *reviewControllerFixture) submit(t *testing.T) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(CreateReviewRequest{
		ProductID: f.product.ID,
		SizeID:    f.product.Sizes[0].ID,
		OrderID:   f.order.ID,
		Rating:    5,
		Comment:   "Perfect crema",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/reviews", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.token)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestReviewController_CreateReview(t *testing.T) {
	f := setupReviewControllerTest(t)

	w := f.submit(t)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Review created successfully")
}

func TestReviewController_CreateReview_Duplicate(t *testing.T) {
	f := setupReviewControllerTest(t)

	w := f.submit(t)
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.submit(t)

	assert.Equal(t, http.StatusConflict, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "REVIEW_ALREADY_EXISTS", response["error"])
	assert.Contains(t, response["message"], "already reviewed")
}

func TestReviewController_CreateReview_NotDelivered(t *testing.T) {
	f := setupReviewControllerTest(t)

	require.NoError(t, f.db.Model(f.order).Update("status", model.OrderStatusPending).Error)

	w := f.submit(t)

	assert.Equal(t, http.StatusConflict, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "REVIEW_ORDER_NOT_DELIVERED", response["error"])
}

func TestReviewController_GetProductReviews(t *testing.T) {
	f := setupReviewControllerTest(t)

	w := f.submit(t)
	require.Equal(t, http.StatusCreated, w.Code)

	req := httptest.NewRequest("GET", fmt.Sprintf("/products/%d/reviews", f.product.ID), nil)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Perfect crema")
}
