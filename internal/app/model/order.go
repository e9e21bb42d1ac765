package model

import (
	"time"

	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Color returns the badge color the back-office renders for a status.
func (s OrderStatus) Color() string {
	switch s {
	case OrderStatusDelivered:
		return "success"
	case OrderStatusPending:
		return "warning"
	case OrderStatusCancelled:
		return "danger"
	case OrderStatusProcessing:
		return "info"
	default:
		return "secondary"
	}
}

type Order struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	StoreID   uint           `gorm:"not null;index" json:"store_id"`
	Status    OrderStatus    `gorm:"type:varchar(20);default:'Pending'" json:"status"`
	OrderDate time.Time      `gorm:"not null" json:"order_date"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User    User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Store   Store         `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	Details []OrderDetail `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"details,omitempty"`
	Payment *Payment      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"payment,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderDetail captures one line of an order. Unit and total price are fixed
// at creation time; later price or discount changes do not touch them.
type OrderDetail struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	OrderID    uint           `gorm:"not null;index" json:"order_id"`
	ProductID  uint           `gorm:"not null;index" json:"product_id"`
	SizeID     uint           `gorm:"not null;index" json:"size_id"`
	Quantity   int            `gorm:"not null" json:"quantity"`
	UnitPrice  int            `gorm:"not null" json:"unit_price"`
	TotalPrice int            `gorm:"not null" json:"total_price"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Order   Order       `gorm:"foreignKey:OrderID" json:"-"`
	Product Product     `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Size    ProductSize `gorm:"foreignKey:SizeID" json:"size,omitempty"`
}

func (OrderDetail) TableName() string {
	return "order_details"
}

// Payment records the method and amount snapshot for an order, one per order.
type Payment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	OrderID   uint           `gorm:"not null;uniqueIndex" json:"order_id"`
	Method    string         `gorm:"type:varchar(50);not null" json:"method"`
	Amount    int            `gorm:"not null" json:"amount"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Order Order `gorm:"foreignKey:OrderID" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}
