package model

import (
	"time"

	"gorm.io/gorm"
)

// Event is a back-office calendar entry. Color is one of the palette values
// in pkg/util; a random one is assigned when the request omits it.
type Event struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	AdminID   uint           `gorm:"not null;index" json:"admin_id"`
	Title     string         `gorm:"not null" json:"title"`
	Date      string         `gorm:"type:varchar(10);not null;index" json:"date"` // 2006-01-02
	Time      string         `gorm:"type:varchar(5)" json:"time"`                 // 15:04
	Color     string         `gorm:"type:varchar(20);not null" json:"color"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Admin Admin `gorm:"foreignKey:AdminID" json:"-"`
}

func (Event) TableName() string {
	return "events"
}
