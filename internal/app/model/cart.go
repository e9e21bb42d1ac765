package model

import (
	"time"

	"gorm.io/gorm"
)

type CartItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	ProductID uint           `gorm:"not null;index" json:"product_id"`
	SizeID    uint           `gorm:"not null;index" json:"size_id"`
	Quantity  int            `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User    User        `gorm:"foreignKey:UserID" json:"-"`
	Product Product     `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Size    ProductSize `gorm:"foreignKey:SizeID" json:"size,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
