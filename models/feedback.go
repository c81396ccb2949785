package models

import (
	"time"

	"gorm.io/gorm"
)

// AdminResponse is an optional reply from an admin, embedded in feedback and contact records
type AdminResponse struct {
	Message       string     `json:"message"`
	RespondedAt   *time.Time `json:"respondedAt,omitempty"`
	RespondedByID *uint      `json:"respondedBy,omitempty"`
}

// Feedback is a customer review, at most one per (user, order) pair
type Feedback struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `gorm:"not null;index;uniqueIndex:idx_feedback_user_order" json:"userId"`
	User           *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OrderID        *uint          `gorm:"index;uniqueIndex:idx_feedback_user_order" json:"orderId,omitempty"`
	Order          *Order         `gorm:"foreignKey:OrderID" json:"-"`
	ServiceID      *uint          `gorm:"index" json:"serviceId,omitempty"`
	Service        *Service       `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Rating         int            `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment        string         `gorm:"type:text;not null" json:"comment"`
	ServiceQuality *int           `json:"serviceQuality,omitempty"`
	DeliverySpeed  *int           `json:"deliverySpeed,omitempty"`
	ValueForMoney  *int           `json:"valueForMoney,omitempty"`
	// No column defaults on the visibility flags: gorm would skip an explicit
	// false on insert and the database default would win. Creation paths set
	// them explicitly instead.
	WouldRecommend bool           `gorm:"not null" json:"wouldRecommend"`
	IsApproved     bool           `gorm:"not null" json:"isApproved"`
	IsPublic       bool           `gorm:"not null" json:"isPublic"`
	AdminResponse  AdminResponse  `gorm:"embedded;embeddedPrefix:response_" json:"adminResponse"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Feedback model
func (Feedback) TableName() string {
	return "feedback"
}
