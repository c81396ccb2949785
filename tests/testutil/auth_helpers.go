package testutil

import (
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/freshwash/freshwash-api/config"
	"github.com/freshwash/freshwash-api/middleware"
	"github.com/freshwash/freshwash-api/models"
)

// SetupTestDB opens a fresh in-memory database, migrates every model and
// registers it as the active connection
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Service{},
		&models.Order{},
		&models.OrderItem{},
		&models.StatusHistoryEntry{},
		&models.Feedback{},
		&models.Contact{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	config.SetDB(db)
	return db
}

// CreateTestUser persists a customer account with the given email and a
// known password ("password123")
func CreateTestUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()

	user := models.User{
		Name:     name,
		Email:    email,
		Phone:    "9876543210",
		IsActive: true,
	}
	if err := user.SetPassword("password123"); err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return &user
}

// CreateTestAdmin persists an admin account
func CreateTestAdmin(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()

	admin := CreateTestUser(t, db, name, email)
	if err := db.Model(admin).Update("is_admin", true).Error; err != nil {
		t.Fatalf("Failed to promote test admin: %v", err)
	}
	admin.IsAdmin = true
	return admin
}

// TokenFor issues a signed token for the user with the test secret
func TokenFor(t *testing.T, user *models.User) string {
	t.Helper()

	token, err := middleware.GenerateToken(user, config.GetConfig().JWTSecret)
	if err != nil {
		t.Fatalf("Failed to sign test token: %v", err)
	}
	return token
}

// MockAuthMiddleware injects the given user directly into the request context,
// bypassing token verification
func MockAuthMiddleware(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetUser(c, user)
		c.Next()
	}
}

// CreateTestService persists an active catalog entry
func CreateTestService(t *testing.T, db *gorm.DB, name, category string) *models.Service {
	t.Helper()

	service := models.Service{
		Name:        name,
		Description: "Test description for " + name,
		Category:    category,
		Services: models.SubServices{
			Wash:        models.SubService{Available: true, Price: 25},
			Iron:        models.SubService{Available: true, Price: 15},
			DryClean:    models.SubService{Available: true, Price: 60},
			WashAndIron: models.SubService{Available: true, Price: 35},
		},
		IsActive:    true,
		MinQuantity: 1,
		MaxQuantity: 50,
	}
	if err := db.Create(&service).Error; err != nil {
		t.Fatalf("Failed to create test service: %v", err)
	}
	return &service
}
