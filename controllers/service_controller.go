package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/freshwash/freshwash-api/config"
	"github.com/freshwash/freshwash-api/models"
	"github.com/freshwash/freshwash-api/utils"
)

// CreateServiceRequest represents the request body for creating a catalog entry
type CreateServiceRequest struct {
	Name                string              `json:"name" binding:"required,max=100"`
	Description         string              `json:"description" binding:"required,max=500"`
	Category            string              `json:"category" binding:"required"`
	Services            *models.SubServices `json:"services" binding:"omitempty"`
	Image               string              `json:"image" binding:"omitempty"`
	MinQuantity         int                 `json:"minQuantity" binding:"omitempty,gte=1"`
	MaxQuantity         int                 `json:"maxQuantity" binding:"omitempty,gte=1"`
	EstimatedTime       string              `json:"estimatedTime" binding:"omitempty"`
	SpecialInstructions string              `json:"specialInstructions" binding:"omitempty,max=200"`
}

// UpdateServiceRequest represents the request body for updating a catalog entry
type UpdateServiceRequest struct {
	Name                string              `json:"name" binding:"omitempty,max=100"`
	Description         string              `json:"description" binding:"omitempty,max=500"`
	Category            string              `json:"category" binding:"omitempty"`
	Services            *models.SubServices `json:"services" binding:"omitempty"`
	Image               string              `json:"image" binding:"omitempty"`
	MinQuantity         int                 `json:"minQuantity" binding:"omitempty,gte=1"`
	MaxQuantity         int                 `json:"maxQuantity" binding:"omitempty,gte=1"`
	EstimatedTime       string              `json:"estimatedTime" binding:"omitempty"`
	SpecialInstructions string              `json:"specialInstructions" binding:"omitempty,max=200"`
	IsActive            *bool               `json:"isActive" binding:"omitempty"`
}

// GetServices handles GET /api/services - public catalog listing with
// category/search filters and sorting
func GetServices(c *gin.Context) {
	db := config.GetDB()
	query := db.Model(&models.Service{}).Where("is_active = ?", true)

	if category := c.Query("category"); category != "" && category != "all" {
		query = query.Where("category = ?", category)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR description LIKE ? OR category LIKE ?", like, like, like)
	}

	sortBy := c.DefaultQuery("sortBy", "name")
	direction := "ASC"
	if c.Query("order") == "desc" {
		direction = "DESC"
	}
	switch sortBy {
	case "name":
		query = query.Order("name " + direction)
	case "category":
		query = query.Order("category " + direction)
	default:
		query = query.Order("created_at DESC")
	}

	var list []models.Service
	if err := query.Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch services"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"count":    len(list),
		"services": list,
	})
}

// GetServiceByID handles GET /api/services/:id - public, active entries only
func GetServiceByID(c *gin.Context) {
	service, ok := findService(c)
	if !ok {
		return
	}
	if !service.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"message": "Service not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"service": service,
	})
}

// GetServicesByCategory handles GET /api/services/category/:category
func GetServicesByCategory(c *gin.Context) {
	category := c.Param("category")

	db := config.GetDB()
	var list []models.Service
	if err := db.Where("category LIKE ? AND is_active = ?", category, true).
		Order("name ASC").Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch services"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"count":    len(list),
		"category": category,
		"services": list,
	})
}

// GetServiceCategories handles GET /api/services/categories - distinct active categories
func GetServiceCategories(c *gin.Context) {
	db := config.GetDB()
	var categories []string
	if err := db.Model(&models.Service{}).Where("is_active = ?", true).
		Distinct("category").Order("category ASC").Pluck("category", &categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"categories": categories,
	})
}

// CreateService handles POST /api/services - admin only
func CreateService(c *gin.Context) {
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation errors", "errors": utils.FieldErrors(err)})
		return
	}
	if !models.ValidCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid service category"})
		return
	}

	service := models.Service{
		Name:                req.Name,
		Description:         req.Description,
		Category:            req.Category,
		Image:               req.Image,
		MinQuantity:         req.MinQuantity,
		MaxQuantity:         req.MaxQuantity,
		EstimatedTime:       req.EstimatedTime,
		SpecialInstructions: req.SpecialInstructions,
		IsActive:            true,
	}
	if req.Services != nil {
		service.Services = *req.Services
	}
	if service.MinQuantity == 0 {
		service.MinQuantity = 1
	}
	if service.MaxQuantity == 0 {
		service.MaxQuantity = 50
	}

	db := config.GetDB()
	if err := db.Create(&service).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"message": "Service with this name already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create service"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"service": service,
	})
}

// UpdateService handles PUT /api/services/:id - admin only
func UpdateService(c *gin.Context) {
	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation errors", "errors": utils.FieldErrors(err)})
		return
	}
	if req.Category != "" && !models.ValidCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid service category"})
		return
	}

	service, ok := findService(c)
	if !ok {
		return
	}

	if req.Name != "" {
		service.Name = req.Name
	}
	if req.Description != "" {
		service.Description = req.Description
	}
	if req.Category != "" {
		service.Category = req.Category
	}
	if req.Services != nil {
		service.Services = *req.Services
	}
	if req.Image != "" {
		service.Image = req.Image
	}
	if req.MinQuantity != 0 {
		service.MinQuantity = req.MinQuantity
	}
	if req.MaxQuantity != 0 {
		service.MaxQuantity = req.MaxQuantity
	}
	if req.EstimatedTime != "" {
		service.EstimatedTime = req.EstimatedTime
	}
	if req.SpecialInstructions != "" {
		service.SpecialInstructions = req.SpecialInstructions
	}
	if req.IsActive != nil {
		service.IsActive = *req.IsActive
	}

	db := config.GetDB()
	if err := db.Save(service).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"message": "Service with this name already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update service"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"service": service,
	})
}

// DeleteService handles DELETE /api/services/:id - soft deactivate, never a
// physical delete; existing orders keep their price snapshots
func DeleteService(c *gin.Context) {
	service, ok := findService(c)
	if !ok {
		return
	}

	db := config.GetDB()
	if err := db.Model(service).Update("is_active", false).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to remove service"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Service removed",
	})
}

// findService loads the catalog entry from the :id path parameter, writing the
// error response itself on failure
func findService(c *gin.Context) (*models.Service, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid service id"})
		return nil, false
	}

	db := config.GetDB()
	var service models.Service
	if err := db.First(&service, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Service not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load service"})
		}
		return nil, false
	}
	return &service, true
}
