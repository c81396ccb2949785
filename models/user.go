package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Address is a user's default pickup/delivery address, embedded in the users table
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `gorm:"default:'India'" json:"country"`
}

// User represents a customer or admin account
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"` // bcrypt hash, never serialized
	Phone     string         `json:"phone"`
	Address   Address        `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	IsAdmin   bool           `gorm:"not null;default:false" json:"isAdmin"`
	IsActive  bool           `gorm:"not null" json:"isActive"` // deactivation is soft delete; no column default so an explicit false survives Create
	LastLogin *time.Time     `json:"lastLogin,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// SetPassword hashes the given plaintext password and stores it on the user
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword compares a plaintext password against the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}
