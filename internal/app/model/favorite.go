package model

import (
	"time"

	"gorm.io/gorm"
)

// Favorite bookmarks a product for a back-office admin.
type Favorite struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	AdminID   uint           `gorm:"not null;index;uniqueIndex:idx_favorites_admin_product" json:"admin_id"`
	ProductID uint           `gorm:"not null;index;uniqueIndex:idx_favorites_admin_product" json:"product_id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Admin   Admin   `gorm:"foreignKey:AdminID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (Favorite) TableName() string {
	return "favorites"
}
