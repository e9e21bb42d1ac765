package model

import (
	"time"

	"gorm.io/gorm"
)

// Store is a physical shop location. Orders without an explicit store fall
// back to the configured default store.
type Store struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Address   string         `json:"address"`
	Phone     string         `json:"phone"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Orders     []Order     `gorm:"foreignKey:StoreID" json:"-"`
	StockItems []StockItem `gorm:"foreignKey:StoreID" json:"-"`
}

func (Store) TableName() string {
	return "stores"
}
