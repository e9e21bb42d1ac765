package service

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/internal/app/repository"
	"github.com/ptnguyen/coffeecorner-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// AdminOrderInput describes an order as submitted from the back-office.
type AdminOrderInput struct {
	UserID        uint             `json:"user_id"`
	StoreID       *uint            `json:"store_id,omitempty"`
	PaymentMethod string           `json:"payment_method"`
	Items         []OrderItemInput `json:"items"`
}

type AdminOrderService interface {
	ListOrders() ([]model.Order, error)
	CreateOrder(input AdminOrderInput) (*model.Order, error)
	// UpdateOrder replaces the order's lines and recomputes prices and the
	// payment amount. Rejected for orders in a terminal state.
	UpdateOrder(orderID uint, input AdminOrderInput) (*model.Order, error)
	DeleteOrder(orderID uint) error
	MarkDelivered(orderID uint) (*model.Order, error)
	MarkCancelled(orderID uint) (*model.Order, error)
	ExportXLSX() ([]byte, error)
}

type adminOrderService struct {
	orderRepo      repository.OrderRepository
	userRepo       repository.UserRepository
	db             *gorm.DB
	defaultStoreID uint
}

func NewAdminOrderService(
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	db *gorm.DB,
	defaultStoreID uint,
) AdminOrderService {
	return &adminOrderService{
		orderRepo:      orderRepo,
		userRepo:       userRepo,
		db:             db,
		defaultStoreID: defaultStoreID,
	}
}

func (s *adminOrderService) ListOrders() ([]model.Order, error) {
	orders, err := s.orderRepo.FindAll()
	if err != nil {
		logger.Error("Failed to list orders", err)
		return nil, err
	}
	return orders, nil
}

// buildDetails validates the items inside tx, decrements product stock and
// returns the priced lines. Back-office orders consume stock the same way
// storefront orders do.
func buildDetails(tx *gorm.DB, items []OrderItemInput) ([]model.OrderDetail, int, error) {
	var (
		details []model.OrderDetail
		total   int
	)

	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, 0, ErrInvalidQuantity
		}

		var product model.Product
		if err := tx.First(&product, item.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, 0, ErrProductNotFound
			}
			return nil, 0, err
		}

		var size model.ProductSize
		if err := tx.First(&size, item.SizeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, 0, ErrInvalidSize
			}
			return nil, 0, err
		}
		if size.ProductID != product.ID {
			return nil, 0, ErrSizeMismatch
		}
		if product.Stock < item.Quantity {
			return nil, 0, ErrInsufficientStock
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
			return nil, 0, err
		}
	}

	return details, total, nil
}

// restockDetails returns the quantities of replaced lines to product stock.
func restockDetails(tx *gorm.DB, details []model.OrderDetail) error {
	for _, detail := range details {
		if err := tx.Model(&model.Product{}).
			Where("id = ?", detail.ProductID).
			Update("stock", gorm.Expr("stock + ?", detail.Quantity)).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *adminOrderService) CreateOrder(input AdminOrderInput) (*model.Order, error) {
	logger.Info("Admin creating order", map[string]interface{}{
		"user_id":    input.UserID,
		"item_count": len(input.Items),
	})

	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if _, err := s.userRepo.FindByID(input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	storeID := s.defaultStoreID
	if input.StoreID != nil {
		storeID = *input.StoreID
	}
	method := input.PaymentMethod
	if method == "" {
		method = "cash"
	}

	var orderID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		details, total, err := buildDetails(tx, input.Items)
		if err != nil {
			return err
		}

		order := &model.Order{
			UserID:    input.UserID,
			StoreID:   storeID,
			Status:    model.OrderStatusPending,
			OrderDate: time.Now(),
			Details:   details,
		}
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		payment := &model.Payment{
			OrderID: order.ID,
			Method:  method,
			Amount:  total,
		}
		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		logger.Error("Admin order creation failed", err, map[string]interface{}{
			"user_id": input.UserID,
		})
		return nil, err
	}

	logger.Info("Admin order created successfully", map[string]interface{}{
		"order_id": orderID,
		"user_id":  input.UserID,
	})
	return s.orderRepo.FindByID(orderID)
}

func (s *adminOrderService) UpdateOrder(orderID uint, input AdminOrderInput) (*model.Order, error) {
	logger.Info("Admin updating order", map[string]interface{}{
		"order_id": orderID,
	})

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	// Delivered and cancelled orders are immutable.
	if order.Status.Terminal() {
		logger.Warn("Order update rejected: terminal state", map[string]interface{}{
			"order_id": orderID,
			"status":   order.Status,
		})
		return nil, ErrOrderTerminalState
	}
	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Give the old lines' stock back before pricing the replacements.
		if err := restockDetails(tx, order.Details); err != nil {
			return err
		}

		details, total, err := buildDetails(tx, input.Items)
		if err != nil {
			return err
		}

		if err := tx.Where("order_id = ?", orderID).Delete(&model.OrderDetail{}).Error; err != nil {
			return err
		}
		for i := range details {
			details[i].OrderID = orderID
		}
		if err := tx.Create(&details).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{"amount": total}
		if input.PaymentMethod != "" {
			updates["method"] = input.PaymentMethod
		}
		if err := tx.Model(&model.Payment{}).
			Where("order_id = ?", orderID).
			Updates(updates).Error; err != nil {
			return err
		}

		if input.UserID != 0 && input.UserID != order.UserID {
			if err := tx.Model(&model.Order{}).
				Where("id = ?", orderID).
				Update("user_id", input.UserID).Error; err != nil {
				return err
			}
		}
		if input.StoreID != nil {
			if err := tx.Model(&model.Order{}).
				Where("id = ?", orderID).
				Update("store_id", *input.StoreID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Admin order update failed", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	return s.orderRepo.FindByID(orderID)
}

func (s *adminOrderService) DeleteOrder(orderID uint) error {
	logger.Info("Admin deleting order", map[string]interface{}{
		"order_id": orderID,
	})

	if _, err := s.orderRepo.FindByID(orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	return s.orderRepo.Delete(orderID)
}

func (s *adminOrderService) transition(orderID uint, to model.OrderStatus) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if order.Status.Terminal() {
		logger.Warn("Status transition rejected: terminal state", map[string]interface{}{
			"order_id": orderID,
			"from":     order.Status,
			"to":       to,
		})
		return nil, ErrOrderTerminalState
	}

	if err := s.orderRepo.UpdateStatus(orderID, to); err != nil {
		return nil, err
	}

	logger.Info("Order status updated", map[string]interface{}{
		"order_id": orderID,
		"from":     order.Status,
		"to":       to,
	})
	return s.orderRepo.FindByID(orderID)
}

func (s *adminOrderService) MarkDelivered(orderID uint) (*model.Order, error) {
	return s.transition(orderID, model.OrderStatusDelivered)
}

func (s *adminOrderService) MarkCancelled(orderID uint) (*model.Order, error) {
	return s.transition(orderID, model.OrderStatusCancelled)
}

func (s *adminOrderService) ExportXLSX() ([]byte, error) {
	orders, err := s.orderRepo.FindAll()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Orders"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Order ID", "Customer", "Status", "Order Date", "Products", "Sizes", "Quantity", "Amount", "Payment Method"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, order := range orders {
		var names, sizes []string
		quantity := 0
		for _, detail := range order.Details {
			names = append(names, detail.Product.Name)
			sizes = append(sizes, detail.Size.Size)
			quantity += detail.Quantity
		}

		amount := 0
		method := ""
		if order.Payment != nil {
			amount = order.Payment.Amount
			method = order.Payment.Method
		}

		values := []interface{}{
			order.ID,
			order.User.Name,
			string(order.Status),
			order.OrderDate.Format("2006-01-02"),
			strings.Join(names, ", "),
			strings.Join(sizes, ", "),
			quantity,
			amount,
			method,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write orders workbook: %w", err)
	}

	logger.Info("Orders exported to XLSX", map[string]interface{}{
		"order_count": len(orders),
	})
	return buf.Bytes(), nil
}
