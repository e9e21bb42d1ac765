package model

import (
	"time"

	"gorm.io/gorm"
)

type ProductCategory string

const (
	CategoryCoffees ProductCategory = "Coffees"
	CategoryDrinks  ProductCategory = "Drinks"
	CategoryFoods   ProductCategory = "Foods"
	CategoryYogurts ProductCategory = "Yogurts"
)

// ValidCategory reports whether c is one of the catalog categories.
func ValidCategory(c ProductCategory) bool {
	switch c {
	case CategoryCoffees, CategoryDrinks, CategoryFoods, CategoryYogurts:
		return true
	}
	return false
}

type Product struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Category    ProductCategory `gorm:"type:varchar(50);not null" json:"category"`
	Price       int             `gorm:"not null" json:"price"` // base price, smallest currency unit
	Discount    int             `gorm:"default:0" json:"discount"` // percent, 0-100
	Stock       int             `gorm:"default:0" json:"stock"`
	ImageURL    string          `json:"image_url"`
	ThumbURL    string          `json:"thumb_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Sizes        []ProductSize `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"sizes,omitempty"`
	CartItems    []CartItem    `gorm:"foreignKey:ProductID" json:"-"`
	OrderDetails []OrderDetail `gorm:"foreignKey:ProductID" json:"-"`
	Reviews      []Review      `gorm:"foreignKey:ProductID" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// DiscountedPrice applies the percent discount to the base price.
func (p *Product) DiscountedPrice() int {
	if p.Discount <= 0 {
		return p.Price
	}
	return p.Price * (100 - p.Discount) / 100
}

// ProductSize is a purchasable size variant (S/M/L) with its own price.
type ProductSize struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	ProductID uint           `gorm:"not null;index" json:"product_id"`
	Size      string         `gorm:"type:varchar(5);not null" json:"size"` // S, M or L
	Price     int            `gorm:"not null" json:"price"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

func (ProductSize) TableName() string {
	return "product_sizes"
}

// ValidSize reports whether s is one of the serving sizes.
func ValidSize(s string) bool {
	return s == "S" || s == "M" || s == "L"
}
