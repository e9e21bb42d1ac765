package service

import (
	"errors"
	"strings"

	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/repository"
	"github.com/ptnguyen/coffeecorner-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrReviewExists       = errors.New("review already exists for this order line")
	ErrReviewNotDelivered = errors.New("only delivered orders can be reviewed")
)

// ReviewInput carries a review submission.
type ReviewInput struct {
	ProductID uint
	SizeID    uint
	OrderID   uint
	Rating    int
	Comment   string
	ImageURL  string
}

type ReviewService interface {
	SubmitReview(userID uint, input ReviewInput) (*model.Review, error)
	GetProductReviews(productID uint) ([]model.Review, error)
	// CheckReview returns the caller's review for the order line, or nil.
	CheckReview(userID, productID, sizeID, orderID uint) (*model.Review, error)
}

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
	}
}

func (s *reviewService) SubmitReview(userID uint, input ReviewInput) (*model.Review, error) {
	logger.Info("Submitting review", map[string]interface{}{
		"user_id":    userID,
		"product_id": input.ProductID,
		"order_id":   input.OrderID,
		"rating":     input.Rating,
	})

	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidRating
	}

	if _, err := s.productRepo.FindByID(input.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	size, err := s.productRepo.FindSizeByID(input.SizeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidSize
		}
		return nil, err
	}
	if size.ProductID != input.ProductID {
		return nil, ErrSizeMismatch
	}

	order, err := s.orderRepo.FindByID(input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != userID {
		logger.Warn("Review rejected: order ownership mismatch", map[string]interface{}{
			"user_id":  userID,
			"order_id": input.OrderID,
			"owner_id": order.UserID,
		})
		return nil, ErrOrderNotFound
	}

	// Historical rows may carry any casing.
	if !strings.EqualFold(string(order.Status), string(model.OrderStatusDelivered)) {
		logger.Warn("Review rejected: order not delivered", map[string]interface{}{
			"user_id":  userID,
			"order_id": input.OrderID,
			"status":   order.Status,
		})
		return nil, ErrReviewNotDelivered
	}

	exists, err := s.reviewRepo.Exists(userID, input.ProductID, input.SizeID, input.OrderID)
	if err != nil {
		return nil, err
	}
	if exists {
		logger.Warn("Review rejected: duplicate", map[string]interface{}{
			"user_id":    userID,
			"product_id": input.ProductID,
			"order_id":   input.OrderID,
		})
		return nil, ErrReviewExists
	}

	review := &model.Review{
		UserID:    userID,
		ProductID: input.ProductID,
		SizeID:    input.SizeID,
		OrderID:   input.OrderID,
		Rating:    input.Rating,
		Comment:   input.Comment,
		ImageURL:  input.ImageURL,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		return nil, err
	}

	logger.Info("Review submitted successfully", map[string]interface{}{
		"review_id": review.ID,
		"user_id":   userID,
	})
	return review, nil
}

func (s *reviewService) GetProductReviews(productID uint) ([]model.Review, error) {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return s.reviewRepo.FindByProductID(productID)
}

func (s *reviewService) CheckReview(userID, productID, sizeID, orderID uint) (*model.Review, error) {
	review, err := s.reviewRepo.FindByUserProductSizeOrder(userID, productID, sizeID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return review, nil
}
