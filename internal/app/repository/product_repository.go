package repository

import (
	"github.com/ptnguyen/coffeecorner-backend/internal/app/model"
	"github.com/ptnguyen/coffeecorner-backend/pkg/logger"
	"gorm.io/gorm"
)

// BestSeller is one row of the best-sellers ranking. Quantity sums
// order_details of delivered orders only.
type BestSeller struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

// ProductRating is the average delivered-order rating for a product.
type ProductRating struct {
	ProductID uint    `json:"product_id"`
	Average   float64 `json:"average"`
	Count     int64   `json:"count"`
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindByID(id uint) (*model.Product, error)
	FindAll(category string) ([]model.Product, error)
	Update(product *model.Product) error
	Delete(id uint) error

	FindSizeByID(id uint) (*model.ProductSize, error)
	FindSizesByProductID(productID uint) ([]model.ProductSize, error)
	CreateSize(size *model.ProductSize) error

	CountOrderDetailsByProduct(productID uint) (int64, error)
	CountOrderDetailsBySize(sizeID uint) (int64, error)
	CountCartItemsBySize(sizeID uint) (int64, error)

	BestSellers(limit int) ([]BestSeller, error)
	AverageRatings() (map[uint]ProductRating, error)

	// ReconcileSizes applies creates/updates/deletes for a product's size set
	// in one transaction. Sizes absent from keep are deleted only when
	// deletable reports true for them.
	ReconcileSizes(productID uint, keep []model.ProductSize, deletable func(sizeID uint) (bool, error)) error
	DeleteWithSizes(productID uint) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name":     product.Name,
		"category": product.Category,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name": product.Name,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"sizes":      len(product.Sizes),
	})
	return nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("Sizes").First(&product, id).Error
	if err != nil {
		logger.Error("Failed to find product by ID in database", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindAll(category string) ([]model.Product, error) {
	var products []model.Product
	query := r.db.Preload("Sizes").Order("created_at DESC")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to list products in database", err, map[string]interface{}{
			"category": category,
		})
		return nil, err
	}
	return products, nil
}

func (r *productRepository) Update(product *model.Product) error {
	if err := r.db.Save(product).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

func (r *productRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Product{}, id).Error; err != nil {
		logger.Error("Failed to delete product from database", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}
	return nil
}

func (r *productRepository) FindSizeByID(id uint) (*model.ProductSize, error) {
	var size model.ProductSize
	if err := r.db.First(&size, id).Error; err != nil {
		return nil, err
	}
	return &size, nil
}

func (r *productRepository) FindSizesByProductID(productID uint) ([]model.ProductSize, error) {
	var sizes []model.ProductSize
	if err := r.db.Where("product_id = ?", productID).Order("price").Find(&sizes).Error; err != nil {
		return nil, err
	}
	return sizes, nil
}

func (r *productRepository) CreateSize(size *model.ProductSize) error {
	if err := r.db.Create(size).Error; err != nil {
		logger.Error("Failed to create product size in database", err, map[string]interface{}{
			"product_id": size.ProductID,
			"size":       size.Size,
		})
		return err
	}
	return nil
}

func (r *productRepository) CountOrderDetailsByProduct(productID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.OrderDetail{}).Where("product_id = ?", productID).Count(&count).Error
	return count, err
}

func (r *productRepository) CountOrderDetailsBySize(sizeID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.OrderDetail{}).Where("size_id = ?", sizeID).Count(&count).Error
	return count, err
}

func (r *productRepository) CountCartItemsBySize(sizeID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.CartItem{}).Where("size_id = ?", sizeID).Count(&count).Error
	return count, err
}

func (r *productRepository) BestSellers(limit int) ([]BestSeller, error) {
	var rows []BestSeller
	err := r.db.Model(&model.OrderDetail{}).
		Select("order_details.product_id, products.name, SUM(order_details.quantity) as quantity").
		Joins("JOIN orders ON orders.id = order_details.order_id").
		Joins("JOIN products ON products.id = order_details.product_id").
		Where("orders.status = ?", model.OrderStatusDelivered).
		Group("order_details.product_id, products.name").
		Order("quantity DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to query best sellers in database", err)
		return nil, err
	}
	return rows, nil
}

func (r *productRepository) AverageRatings() (map[uint]ProductRating, error) {
	var rows []ProductRating
	err := r.db.Model(&model.Review{}).
		Select("reviews.product_id, AVG(reviews.rating) as average, COUNT(reviews.id) as count").
		Joins("JOIN orders ON orders.id = reviews.order_id").
		Where("orders.status = ?", model.OrderStatusDelivered).
		Group("reviews.product_id").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to query product ratings in database", err)
		return nil, err
	}

	ratings := make(map[uint]ProductRating, len(rows))
	for _, row := range rows {
		ratings[row.ProductID] = row
	}
	return ratings, nil
}

func (r *productRepository) ReconcileSizes(productID uint, keep []model.ProductSize, deletable func(sizeID uint) (bool, error)) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing []model.ProductSize
		if err := tx.Where("product_id = ?", productID).Find(&existing).Error; err != nil {
			return err
		}

		kept := make(map[uint]bool, len(keep))
		for i := range keep {
			size := &keep[i]
			size.ProductID = productID
			if size.ID == 0 {
				if err := tx.Create(size).Error; err != nil {
					return err
				}
				continue
			}
			kept[size.ID] = true
			if err := tx.Model(&model.ProductSize{}).Where("id = ? AND product_id = ?", size.ID, productID).
				Updates(map[string]interface{}{"size": size.Size, "price": size.Price}).Error; err != nil {
				return err
			}
		}

		for _, size := range existing {
			if kept[size.ID] {
				continue
			}
			ok, err := deletable(size.ID)
			if err != nil {
				return err
			}
			// Referenced sizes survive so old orders keep their line data.
			if !ok {
				continue
			}
			if err := tx.Delete(&model.ProductSize{}, size.ID).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *productRepository) DeleteWithSizes(productID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&model.ProductSize{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Product{}, productID).Error
	})
}
