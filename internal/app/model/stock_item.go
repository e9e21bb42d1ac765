package model

import (
	"time"

	"gorm.io/gorm"
)

// StockItem is an internal inventory entry (beans, cups, milk, ...) tracked
// per store. It is separate from Product.Stock, which counts sellable units.
type StockItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	StoreID   uint           `gorm:"not null;index" json:"store_id"`
	Name      string         `gorm:"not null" json:"name"`
	Quantity  int            `gorm:"not null;default:0" json:"quantity"`
	Unit      string         `gorm:"size:30" json:"unit"` // kg, pcs, l
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Store Store `gorm:"foreignKey:StoreID" json:"store,omitempty"`
}

func (StockItem) TableName() string {
	return "stock_items"
}
