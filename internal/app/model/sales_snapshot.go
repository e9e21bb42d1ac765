package model

import (
	"time"

	"github.com/lib/pq"
)

// SalesSnapshot is a daily aggregate row written by the scheduler so the
// dashboard can chart history without rescanning orders.
type SalesSnapshot struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	Date           string         `gorm:"type:varchar(10);uniqueIndex;not null" json:"date"` // 2006-01-02
	TotalSales     int            `gorm:"not null" json:"total_sales"`
	DeliveredCount int            `gorm:"not null" json:"delivered_count"`
	PendingCount   int            `gorm:"not null" json:"pending_count"`
	TopProducts    pq.StringArray `gorm:"type:text[]" json:"top_products"` // product names, best sellers first
	CreatedAt      time.Time      `json:"created_at"`
}

func (SalesSnapshot) TableName() string {
	return "sales_snapshots"
}
