package repository

import (
	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/pkg/logger"
	"gorm.io/gorm"
)

type FavoriteRepository interface {
	Create(favorite *model.Favorite) error
	FindByAdminID(adminID uint) ([]model.Favorite, error)
	FindByAdminAndProduct(adminID, productID uint) (*model.Favorite, error)
	Delete(id uint) error
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Create(favorite *model.Favorite) error {
	if err := r.db.Create(favorite).Error; err != nil {
		logger.Error("Failed to create favorite in database", err, map[string]interface{}{
			"admin_id":   favorite.AdminID,
			"product_id": favorite.ProductID,
		})
		return err
	}
	return nil
}

func (r *favoriteRepository) FindByAdminID(adminID uint) ([]model.Favorite, error) {
	var favorites []model.Favorite
	err := r.db.Where("admin_id = ?", adminID).
		Preload("Product", func(db *gorm.DB) *gorm.DB {
			return db.Preload("Sizes")
		}).
		Order("created_at DESC").
		Find(&favorites).Error
	if err != nil {
		logger.Error("Failed to find favorites by admin ID in database", err, map[string]interface{}{
			"admin_id": adminID,
		})
		return nil, err
	}
	return favorites, nil
}

func (r *favoriteRepository) FindByAdminAndProduct(adminID, productID uint) (*model.Favorite, error) {
	var favorite model.Favorite
	err := r.db.Where("admin_id = ? AND product_id = ?", adminID, productID).
		First(&favorite).Error
	if err != nil {
		return nil, err
	}
	return &favorite, nil
}

func (r *favoriteRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Favorite{}, id).Error; err != nil {
		logger.Error("Failed to delete favorite from database", err, map[string]interface{}{
			"favorite_id": id,
		})
		return err
	}
	return nil
}
