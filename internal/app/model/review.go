package model

import (
	"time"

	"gorm.io/gorm"
)

// Review is tied to a delivered order line: one review per
// (user, product, size, order).
type Review struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	UserID    uint           `gorm:"not null;index;uniqueIndex:idx_reviews_user_product_size_order" json:"user_id"`
	ProductID uint           `gorm:"not null;index;uniqueIndex:idx_reviews_user_product_size_order" json:"product_id"`
	SizeID    uint           `gorm:"not null;uniqueIndex:idx_reviews_user_product_size_order" json:"size_id"`
	OrderID   uint           `gorm:"not null;uniqueIndex:idx_reviews_user_product_size_order" json:"order_id"`
	Rating    int            `gorm:"not null" json:"rating"` // 1-5
	Comment   string         `gorm:"type:text" json:"comment"`
	ImageURL  string         `json:"image_url"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User    User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Product Product     `gorm:"foreignKey:ProductID" json:"-"`
	Size    ProductSize `gorm:"foreignKey:SizeID" json:"size,omitempty"`
	Order   Order       `gorm:"foreignKey:OrderID" json:"-"`
}

func (Review) TableName() string {
	return "reviews"
}
