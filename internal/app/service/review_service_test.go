package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/repository"
	"github.com/ptnguyen/coffeecorner-backend/internal/db"
)

type reviewServiceFixture struct {
	reviewService ReviewService
	user          *model.User
	product       *model.Product
	size          *model.ProductSize
	order         *model.Order
	db            *gorm.DB
}

// setupReviewServiceTest seeds a delivered order for one latte so the happy
// path can submit straight away.
func setupReviewServiceTest(t *testing.T) *reviewServiceFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	reviewRepo := repository.NewReviewRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	reviewService := NewReviewService(reviewRepo, productRepo, orderRepo)

	store := &model.Store{Name: "Main Branch", Address: "12 Nguyen Hue"}
	require.NoError(t, testDB.Create(store).Error)

	user := &model.User{
		Name:         "Test Customer",
		Email:        "customer@example.com",
		PasswordHash: "hash",
	}
	require.NoError(t, testDB.Create(user).Error)

	product := &model.Product{
		Name:     "Caramel Latte",
		Category: model.CategoryCoffees,
		Price:    50000,
		Discount: 0,
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
			{
				ProductID:  product.ID,
				SizeID:     product.Sizes[0].ID,
				Quantity:   1,
				UnitPrice:  50000,
				TotalPrice: 50000,
			},
		},
	}
	require.NoError(t, testDB.Create(order).Error)

	return &reviewServiceFixture{
		reviewService: reviewService,
		user:          user,
		product:       product,
		size:          &product.Sizes[0],
		order:         order,
		db:            testDB,
	}
}

func (f *reviewServiceFixture) input() ReviewInput {
	return ReviewInput{
		ProductID: f.product.ID,
		SizeID:    f.size.ID,
		OrderID:   f.order.ID,
		Rating:    5,
		Comment:   "Perfect balance of sweet and bitter.",
	}
}

func TestReviewService_SubmitReview_Success(t *testing.T) {
	f := setupReviewServiceTest(t)

	review, err := f.reviewService.SubmitReview(f.user.ID, f.input())

	assert.NoError(t, err)
	assert.NotNil(t, review)
	assert.NotZero(t, review.ID)
	assert.Equal(t, f.user.ID, review.UserID)
	assert.Equal(t, 5, review.Rating)
}

func TestReviewService_SubmitReview_InvalidRating(t *testing.T) {
	f := setupReviewServiceTest(t)

	for _, rating := range []int{0, 6, -1} {
		input := f.input()
		input.Rating = rating
		_, err := f.reviewService.SubmitReview(f.user.ID, input)
		assert.ErrorIs(t, err, ErrInvalidRating)
	}
}

func TestReviewService_SubmitReview_Duplicate(t *testing.T) {
	f := setupReviewServiceTest(t)

	_, err := f.reviewService.SubmitReview(f.user.ID, f.input())
	require.NoError(t, err)

	_, err = f.reviewService.SubmitReview(f.user.ID, f.input())
	assert.ErrorIs(t, err, ErrReviewExists)
}

func TestReviewService_SubmitReview_NotDelivered(t *testing.T) {
	f := setupReviewServiceTest(t)

	require.NoError(t, f.db.Model(f.order).
		Update("status", model.OrderStatusPending).Error)

	_, err := f.reviewService.SubmitReview(f.user.ID, f.input())
	assert.ErrorIs(t, err, ErrReviewNotDelivered)
}

func TestReviewService_SubmitReview_ForeignOrder(t *testing.T) {
	f := setupReviewServiceTest(t)

	other := &model.User{
		Name:         "Other Customer",
		Email:        "other@example.com",
		PasswordHash: "hash",
	}
	require.NoError(t, f.db.Create(other).Error)

	// Someone else's order reads as not found, not as forbidden.
	_, err := f.reviewService.SubmitReview(other.ID, f.input())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestReviewService_SubmitReview_SizeMismatch(t *testing.T) {
	f := setupReviewServiceTest(t)

	other := &model.Product{
		Name:     "Mango Smoothie",
		Category: model.CategoryDrinks,
		Price:    40000,
		Stock:    5,
		Sizes: []model.ProductSize{
			{Size: "L", Price: 45000},
		},
	}
	require.NoError(t, f.db.Create(other).Error)

	input := f.input()
	input.SizeID = other.Sizes[0].ID
	_, err := f.reviewService.SubmitReview(f.user.ID, input)
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

func TestReviewService_GetProductReviews(t *testing.T) {
	f := setupReviewServiceTest(t)

	_, err := f.reviewService.SubmitReview(f.user.ID, f.input())
	require.NoError(t, err)

	reviews, err := f.reviewService.GetProductReviews(f.product.ID)
	assert.NoError(t, err)
	assert.Len(t, reviews, 1)

	_, err = f.reviewService.GetProductReviews(9999)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestReviewService_CheckReview(t *testing.T) {
	f := setupReviewServiceTest(t)

	review, err := f.reviewService.CheckReview(f.user.ID, f.product.ID, f.size.ID, f.order.ID)
	assert.NoError(t, err)
	assert.Nil(t, review)

	_, err = f.reviewService.SubmitReview(f.user.ID, f.input())
	require.NoError(t, err)

	review, err = f.reviewService.CheckReview(f.user.ID, f.product.ID, f.size.ID, f.order.ID)
	assert.NoError(t, err)
	assert.NotNil(t, review)
	assert.Equal(t, 5, review.Rating)
}
