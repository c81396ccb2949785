package models

import (
	"time"

	"gorm.io/gorm"
)

// Contact enums
var (
	ContactCategories = []string{"general", "complaint", "suggestion", "pickup-request", "pricing", "technical"}
	ContactPriorities = []string{"low", "medium", "high", "urgent"}
	ContactStatuses   = []string{"new", "in-progress", "resolved", "closed"}
)

// Contact is an inbound support message with read tracking and an optional threaded response
type Contact struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"not null" json:"email"`
	Phone     string         `json:"phone"`
	Subject   string         `gorm:"not null" json:"subject"`
	Message   string         `gorm:"type:text;not null" json:"message"`
	Category  string         `gorm:"not null;index;default:'general'" json:"category"`
	Priority  string         `gorm:"not null;index;default:'medium'" json:"priority"`
	Status    string         `gorm:"not null;index;default:'new'" json:"status"`
	IsRead    bool           `gorm:"not null;default:false;index" json:"isRead"`
	ReadAt    *time.Time     `json:"readAt,omitempty"`
	ReadByID  *uint          `json:"readBy,omitempty"`
	Response  AdminResponse  `gorm:"embedded;embeddedPrefix:response_" json:"response"`
	UserID    *uint          `gorm:"index" json:"userId,omitempty"`
	User      *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Contact model
func (Contact) TableName() string {
	return "contact_messages"
}

// ContainsString reports membership in one of the contact enum slices
func ContainsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
