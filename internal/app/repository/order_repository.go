package repository

import (
	"time"

	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/pkg/logger"
	"gorm.io/gorm"
)

// MonthlySales is one month of delivered-order revenue.
type MonthlySales struct {
	Month int `json:"month"` // 1-12
	Total int `json:"total"`
}

type OrderRepository interface {
	Create(order *model.Order) error
	FindByID(id uint) (*model.Order, error)
	FindByUserID(userID uint) ([]model.Order, error)
	FindAll() ([]model.Order, error)
	Update(order *model.Order) error
	UpdateStatus(id uint, status model.OrderStatus) error
	Delete(id uint) error

	StatusCounts() (map[model.OrderStatus]int64, error)
	TotalDeliveredSales() (int64, error)
	MonthlySalesByYear(year int) ([]MonthlySales, error)
	RecentDeals(limit int) ([]model.Order, error)
	SalesForDate(day time.Time) (total int64, delivered int64, pending int64, err error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) preloadOrder() *gorm.DB {
	return r.db.Preload("Details", func(db *gorm.DB) *gorm.DB {
		return db.Preload("Product").Preload("Size")
	}).Preload("Payment").Preload("User").Preload("Store")
}

func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"user_id":  order.UserID,
		"store_id": order.StoreID,
		"status":   order.Status,
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id": order.UserID,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
	})
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	var order model.Order
	if err := r.preloadOrder().First(&order, id).Error; err != nil {
		logger.Error("Failed to find order by ID in database", err, map[string]interface{}{
			"order_id": id,
		})
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByUserID(userID uint) ([]model.Order, error) {
	var orders []model.Order
	if err := r.preloadOrder().Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) FindAll() ([]model.Order, error) {
	var orders []model.Order
	if err := r.preloadOrder().Order("created_at DESC").Find(&orders).Error; err != nil {
		logger.Error("Failed to list orders in database", err)
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) Update(order *model.Order) error {
	logger.Debug("Updating order in database", map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	})

	if err := r.db.Save(order).Error; err != nil {
		logger.Error("Failed to update order in database", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return err
	}
	return nil
}

func (r *orderRepository) UpdateStatus(id uint, status model.OrderStatus) error {
	logger.Debug("Updating order status in database", map[string]interface{}{
		"order_id": id,
		"status":   status,
	})

	if err := r.db.Model(&model.Order{}).Where("id = ?", id).
		Update("status", status).Error; err != nil {
		logger.Error("Failed to update order status in database", err, map[string]interface{}{
			"order_id": id,
			"status":   status,
		})
		return err
	}
	return nil
}

func (r *orderRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&model.OrderDetail{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&model.Payment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Order{}, id).Error
	})
}

func (r *orderRepository) StatusCounts() (map[model.OrderStatus]int64, error) {
	var rows []struct {
		Status model.OrderStatus
		Count  int64
	}
	if err := r.db.Model(&model.Order{}).
		Select("status, COUNT(id) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		logger.Error("Failed to count orders by status in database", err)
		return nil, err
	}

	counts := make(map[model.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *orderRepository) TotalDeliveredSales() (int64, error) {
	var result struct {
		Total int64
	}
	err := r.db.Model(&model.Payment{}).
		Select("COALESCE(SUM(payments.amount), 0) as total").
		Joins("JOIN orders ON orders.id = payments.order_id").
		Where("orders.status = ?", model.OrderStatusDelivered).
		Scan(&result).Error
	if err != nil {
		logger.Error("Failed to sum delivered sales in database", err)
		return 0, err
	}
	return result.Total, nil
}

func (r *orderRepository) MonthlySalesByYear(year int) ([]MonthlySales, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	// SQLite (tests) has no EXTRACT.
	monthExpr := "CAST(EXTRACT(MONTH FROM orders.order_date) AS INTEGER)"
	if r.db.Dialector.Name() == "sqlite" {
		monthExpr = "CAST(strftime('%m', orders.order_date) AS INTEGER)"
	}

	var rows []struct {
		Month int
		Total int
	}
	err := r.db.Model(&model.Payment{}).
		Select(monthExpr+" as month, COALESCE(SUM(payments.amount), 0) as total").
		Joins("JOIN orders ON orders.id = payments.order_id").
		Where("orders.status = ? AND orders.order_date >= ? AND orders.order_date < ?",
			model.OrderStatusDelivered, start, end).
		Group("month").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to query monthly sales in database", err, map[string]interface{}{
			"year": year,
		})
		return nil, err
	}

	totals := make(map[int]int, len(rows))
	for _, row := range rows {
		totals[row.Month] = row.Total
	}

	series := make([]MonthlySales, 12)
	for m := 1; m <= 12; m++ {
		series[m-1] = MonthlySales{Month: m, Total: totals[m]}
	}
	return series, nil
}

func (r *orderRepository) RecentDeals(limit int) ([]model.Order, error) {
	var orders []model.Order
	err := r.preloadOrder().
		Where("status IN ?", []model.OrderStatus{model.OrderStatusDelivered, model.OrderStatusPending}).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to query recent deals in database", err)
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) SalesForDate(day time.Time) (int64, int64, int64, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var result struct {
		Total int64
	}
	err := r.db.Model(&model.Payment{}).
		Select("COALESCE(SUM(payments.amount), 0) as total").
		Joins("JOIN orders ON orders.id = payments.order_id").
		Where("orders.status = ? AND orders.order_date >= ? AND orders.order_date < ?",
			model.OrderStatusDelivered, start, end).
		Scan(&result).Error
	if err != nil {
		return 0, 0, 0, err
	}

	var delivered, pending int64
	if err := r.db.Model(&model.Order{}).
		Where("status = ? AND order_date >= ? AND order_date < ?", model.OrderStatusDelivered, start, end).
		Count(&delivered).Error; err != nil {
		return 0, 0, 0, err
	}
	if err := r.db.Model(&model.Order{}).
		Where("status = ? AND order_date >= ? AND order_date < ?", model.OrderStatusPending, start, end).
		Count(&pending).Error; err != nil {
		return 0, 0, 0, err
	}

	return result.Total, delivered, pending, nil
}
