package model

import (
	"time"

	"gorm.io/gorm"
)

type MessageDirection string

const (
	DirectionUserToAdmin MessageDirection = "user_to_admin"
	DirectionAdminToUser MessageDirection = "admin_to_user"
)

// Message is one line of a support conversation between a customer and the
// back-office. AdminID is nil while the conversation is unassigned.
type Message struct {
	ID        uint             `gorm:"primarykey" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"user_id"`
	AdminID   *uint            `gorm:"index" json:"admin_id,omitempty"`
	Direction MessageDirection `gorm:"type:varchar(20);not null" json:"direction"`
	Body      string           `gorm:"type:text;not null" json:"body"`
	IsRead    bool             `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
	DeletedAt gorm.DeletedAt   `gorm:"index" json:"-"`

	User  User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Admin *Admin `gorm:"foreignKey:AdminID" json:"admin,omitempty"`
}

func (Message) TableName() string {
	return "messages"
}

// UserAdminAssignment pins a customer conversation to the first admin who
// claimed it. One row per user, never reassigned.
type UserAdminAssignment struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	AdminID   uint      `gorm:"not null;index" json:"admin_id"`
	CreatedAt time.Time `json:"created_at"`

	User  User  `gorm:"foreignKey:UserID" json:"-"`
	Admin Admin `gorm:"foreignKey:AdminID" json:"-"`
}

func (UserAdminAssignment) TableName() string {
	return "user_admin_assignments"
}
