package repository

import (
	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/pkg/logger"
	"gorm.io/gorm"
)

type StockRepository interface {
	Create(item *model.StockItem) error
	FindByID(id uint) (*model.StockItem, error)
	FindAll() ([]model.StockItem, error)
	Update(item *model.StockItem) error
	Delete(id uint) error
}

type stockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) StockRepository {
	return &stockRepository{db: db}
}

func (r *stockRepository) Create(item *model.StockItem) error {
	logger.Debug("Creating stock item in database", map[string]interface{}{
		"store_id": item.StoreID,
		"name":     item.Name,
	})

	if err := r.db.Create(item).Error; err != nil {
		logger.Error("Failed to create stock item in database", err, map[string]interface{}{
			"store_id": item.StoreID,
			"name":     item.Name,
		})
		return err
	}
	return nil
}

func (r *stockRepository) FindByID(id uint) (*model.StockItem, error) {
	var item model.StockItem
	if err := r.db.Preload("Store").First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *stockRepository) FindAll() ([]model.StockItem, error) {
	var items []model.StockItem
	err := r.db.Preload("Store").
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		logger.Error("Failed to list stock items in database", err)
		return nil, err
	}
	return items, nil
}

func (r *stockRepository) Update(item *model.StockItem) error {
	if err := r.db.Save(item).Error; err != nil {
		logger.Error("Failed to update stock item in database", err, map[string]interface{}{
			"stock_item_id": item.ID,
		})
		return err
	}
	return nil
}

func (r *stockRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.StockItem{}, id).Error; err != nil {
		logger.Error("Failed to delete stock item from database", err, map[string]interface{}{
			"stock_item_id": id,
		})
		return err
	}
	return nil
}
