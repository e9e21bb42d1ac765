package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/repository"
	"github.com/ptnguyen/coffeecorner-backend/internal/checkout"
	"github.com/ptnguyen/coffeecorner-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrEmptyOrder          = errors.New("order has no items")
	ErrInsufficientStock   = errors.New("insufficient product stock")
	ErrOrderNotPending     = errors.New("only pending orders can be cancelled")
	ErrCheckoutNotStaged   = errors.New("payment and delivery selection missing")
	ErrOrderTerminalState  = errors.New("order is in a terminal state")
	ErrInvalidDeliverySlot = errors.New("invalid delivery date or time")
)

// OrderItemInput is one requested order line. PriceOverride, when positive,
// replaces the computed discounted size price.
type OrderItemInput struct {
	ProductID     uint `json:"product_id"`
	SizeID        uint `json:"size_id"`
	Quantity      int  `json:"quantity"`
	PriceOverride int  `json:"price_override,omitempty"`
}

type OrderService interface {
	StagePayment(ctx context.Context, userID uint, method string) error
	StageDelivery(ctx context.Context, userID uint, date, timeOfDay string) error
	GetStaging(ctx context.Context, userID uint) (*checkout.Staging, error)

	// CreateOrder places an order from the given items, or from the cart
	// when items is empty. Runs in a single transaction.
	CreateOrder(ctx context.Context, userID uint, items []OrderItemInput, storeID *uint) (*model.Order, error)
	GetUserOrders(userID uint) ([]model.Order, error)
	GetOrderByID(userID, orderID uint) (*model.Order, error)
	CancelOrder(userID, orderID uint) (*model.Order, error)
}

type orderService struct {
	orderRepo      repository.OrderRepository
	cartRepo       repository.CartRepository
	productRepo    repository.ProductRepository
	staging        checkout.Store
	db             *gorm.DB
	defaultStoreID uint
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	staging checkout.Store,
	db *gorm.DB,
	defaultStoreID uint,
) OrderService {
	return &orderService{
		orderRepo:      orderRepo,
		cartRepo:       cartRepo,
		productRepo:    productRepo,
		staging:        staging,
		db:             db,
		defaultStoreID: defaultStoreID,
	}
}

func (s *orderService) StagePayment(ctx context.Context, userID uint, method string) error {
	logger.Debug("Staging payment method", map[string]interface{}{
		"user_id": userID,
		"method":  method,
	})
	return s.staging.StagePayment(ctx, userID, method)
}

func (s *orderService) StageDelivery(ctx context.Context, userID uint, date, timeOfDay string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDeliverySlot, date)
	}
	if timeOfDay != "" {
		if _, err := time.Parse("15:04", timeOfDay); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidDeliverySlot, timeOfDay)
		}
	}
	return s.staging.StageDelivery(ctx, userID, date, timeOfDay)
}

func (s *orderService) GetStaging(ctx context.Context, userID uint) (*checkout.Staging, error) {
	return s.staging.Get(ctx, userID)
}

func (s *orderService) CreateOrder(ctx context.Context, userID uint, items []OrderItemInput, storeID *uint) (*model.Order, error) {
	logger.Info("Creating order", map[string]interface{}{
		"user_id":    userID,
		"item_count": len(items),
	})

	staged, err := s.staging.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, checkout.ErrNotStaged) {
			logger.Warn("Order creation failed: checkout not staged", map[string]interface{}{
				"user_id": userID,
			})
			return nil, ErrCheckoutNotStaged
		}
		return nil, err
	}
	// Both legs must be staged before an order may be placed.
	if staged.PaymentMethod == "" || staged.DeliveryDate == "" {
		return nil, ErrCheckoutNotStaged
	}

	// No explicit items: order the whole cart.
	fromCart := len(items) == 0
	if fromCart {
		cartItems, err := s.cartRepo.FindByUserID(userID)
		if err != nil {
			return nil, err
		}
		for _, cartItem := range cartItems {
			items = append(items, OrderItemInput{
				ProductID: cartItem.ProductID,
				SizeID:    cartItem.SizeID,
				Quantity:  cartItem.Quantity,
			})
		}
	}
	if len(items) == 0 {
		logger.Warn("Order creation failed: no items", map[string]interface{}{
			"user_id": userID,
		})
		return nil, ErrEmptyOrder
	}

	orderDate := time.Now()
	if parsed, err := time.Parse("2006-01-02", staged.DeliveryDate); err == nil {
		orderDate = parsed
	}

	resolvedStoreID := s.defaultStoreID
	if storeID != nil {
		resolvedStoreID = *storeID
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during order creation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": userID,
			})
		}
	}()

	var (
		total   int
		details []model.OrderDetail
	)

	for _, item := range items {
		if item.Quantity <= 0 {
			tx.Rollback()
			return nil, ErrInvalidQuantity
		}

		var product model.Product
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, item.ProductID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("Product not found during order creation", map[string]interface{}{
					"user_id":    userID,
					"product_id": item.ProductID,
				})
				return nil, ErrProductNotFound
			}
			return nil, err
		}

		var size model.ProductSize
		if err := tx.First(&size, item.SizeID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidSize
			}
			return nil, err
		}
		if size.ProductID != product.ID {
			tx.Rollback()
			logger.Warn("Size mismatch during order creation", map[string]interface{}{
				"user_id":    userID,
				"product_id": product.ID,
				"size_id":    size.ID,
			})
			return nil, ErrSizeMismatch
		}

		if product.Stock < item.Quantity {
			tx.Rollback()
			logger.Warn("Order creation failed: insufficient stock", map[string]interface{}{
				"user_id":    userID,
				"product_id": product.ID,
				"requested":  item.Quantity,
				"available":  product.Stock,
			})
			return nil, ErrInsufficientStock
		}

		unitPrice := item.PriceOverride
		if unitPrice <= 0 {
			unitPrice = size.Price
			if product.Discount > 0 {
				unitPrice = unitPrice * (100 - product.Discount) / 100
			}
		}

		details = append(details, model.OrderDetail{
			ProductID:  product.ID,
			SizeID:     size.ID,
			Quantity:   item.Quantity,
			UnitPrice:  unitPrice,
			TotalPrice: unitPrice * item.Quantity,
		})
		total += unitPrice * item.Quantity

		if err := tx.Model(&model.Product{}).
			Where("id = ?", product.ID).
			Update("stock", gorm.Expr("stock - ?", item.Quantity)).Error; err != nil {
			tx.Rollback()
			logger.Error("Failed to decrement product stock", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": product.ID,
			})
			return nil, err
		}
	}

	order := &model.Order{
		UserID:    userID,
		StoreID:   resolvedStoreID,
		Status:    model.OrderStatusPending,
		OrderDate: orderDate,
		Details:   details,
	}

	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create order", err, map[string]interface{}{
			"user_id": userID,
			"total":   total,
		})
		return nil, err
	}

	payment := &model.Payment{
		OrderID: order.ID,
		Method:  staged.PaymentMethod,
		Amount:  total,
	}
	if err := tx.Create(payment).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create payment", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": order.ID,
		})
		return nil, err
	}

	// Consumed cart lines disappear with the order.
	for _, detail := range details {
		if err := tx.Where("user_id = ? AND product_id = ? AND size_id = ?",
			userID, detail.ProductID, detail.SizeID).
			Delete(&model.CartItem{}).Error; err != nil {
			tx.Rollback()
			logger.Error("Failed to clear cart after order creation", err, map[string]interface{}{
				"user_id": userID,
			})
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit order transaction", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": order.ID,
		})
		return nil, err
	}

	if err := s.staging.Clear(ctx, userID); err != nil {
		logger.Warn("Failed to clear checkout staging", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}

	logger.Info("Order created successfully", map[string]interface{}{
		"user_id":  userID,
		"order_id": order.ID,
		"total":    total,
		"items":    len(details),
	})

	return s.orderRepo.FindByID(order.ID)
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	orders, err := s.orderRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

func (s *orderService) GetOrderByID(userID, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if order.UserID != userID {
		logger.Warn("Order access denied: ownership mismatch", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
			"owner_id": order.UserID,
		})
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) CancelOrder(userID, orderID uint) (*model.Order, error) {
	order, err := s.GetOrderByID(userID, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != model.OrderStatusPending {
		logger.Warn("Order cancel rejected: not pending", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
			"status":   order.Status,
		})
		return nil, ErrOrderNotPending
	}

	if err := s.orderRepo.UpdateStatus(orderID, model.OrderStatusCancelled); err != nil {
		return nil, err
	}

	logger.Info("Order cancelled by customer", map[string]interface{}{
		"user_id":  userID,
		"order_id": orderID,
	})
	return s.orderRepo.FindByID(orderID)
}
