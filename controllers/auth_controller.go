package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/freshwash/freshwash-api/config"
	"github.com/freshwash/freshwash-api/middleware"
	"github.com/freshwash/freshwash-api/models"
	"github.com/freshwash/freshwash-api/utils"
)

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone" binding:"omitempty"`
}

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents the request body for updating the caller's profile
type UpdateProfileRequest struct {
	Name     string          `json:"name" binding:"omitempty,min=2,max=50"`
	Phone    string          `json:"phone" binding:"omitempty"`
	Password string          `json:"password" binding:"omitempty,min=6"`
	Address  *models.Address `json:"address" binding:"omitempty"`
}

// Register handles POST /api/auth/register - creates a new customer account
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation errors", "errors": utils.FieldErrors(err)})
		return
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		IsActive: true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create account"})
		return
	}

	db := config.GetDB()
	if err := db.Create(&user).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"message": "A user with this email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create account"})
		return
	}

	token, err := middleware.GenerateToken(&user, config.GetConfig().JWTSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"token":   token,
		"user":    user,
	})
}

// Login handles POST /api/auth/login - authenticates and issues a token
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation errors", "errors": utils.FieldErrors(err)})
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}

	if !user.CheckPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"message": "Account has been deactivated"})
		return
	}

	now := time.Now()
	db.Model(&user).Update("last_login", now)
	user.LastLogin = &now

	token, err := middleware.GenerateToken(&user, config.GetConfig().JWTSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    user,
	})
}

// GetProfile handles GET /api/auth/me - returns the caller's own account
func GetProfile(c *gin.Context) {
	user, err := middleware.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}

// UpdateProfile handles PUT /api/auth/profile - updates the caller's own account
func UpdateProfile(c *gin.Context) {
	user, err := middleware.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation errors", "errors": utils.FieldErrors(err)})
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.Address != nil {
		updates["address_street"] = req.Address.Street
		updates["address_city"] = req.Address.City
		updates["address_state"] = req.Address.State
		updates["address_zip_code"] = req.Address.ZipCode
		if req.Address.Country != "" {
			updates["address_country"] = req.Address.Country
		}
	}
	if req.Password != "" {
		if err := user.SetPassword(req.Password); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update profile"})
			return
		}
		updates["password"] = user.Password
	}

	db := config.GetDB()
	if len(updates) > 0 {
		if err := db.Model(user).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update profile"})
			return
		}
	}

	if err := db.First(user, user.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load updated profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}
