package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/freshwash/freshwash-api/config"
	"github.com/freshwash/freshwash-api/middleware"
	"github.com/freshwash/freshwash-api/models"
	"github.com/freshwash/freshwash-api/utils"
)

// CreateFeedbackRequest represents the request body for submitting feedback
type CreateFeedbackRequest struct {
	OrderID        *uint  `json:"orderId" binding:"omitempty"`
	ServiceID      *uint  `json:"serviceId" binding:"omitempty"`
	Rating         int    `json:"rating" binding:"required,gte=1,lte=5"`
	Comment        string `json:"comment" binding:"required,max=1000"`
	ServiceQuality *int   `json:"serviceQuality" binding:"omitempty,gte=1,lte=5"`
	DeliverySpeed  *int   `json:"deliverySpeed" binding:"omitempty,gte=1,lte=5"`
	ValueForMoney  *int   `json:"valueForMoney" binding:"omitempty,gte=1,lte=5"`
	WouldRecommend *bool  `json:"wouldRecommend" binding:"omitempty"`
}

// UpdateFeedbackRequest represents the request body for editing own feedback
type UpdateFeedbackRequest struct {
	Rating         int    `json:"rating" binding:"omitempty,gte=1,lte=5"`
	Comment        string `json:"comment" binding:"omitempty,max=1000"`
	ServiceQuality *int   `json:"serviceQuality" binding:"omitempty,gte=1,lte=5"`
	DeliverySpeed  *int   `json:"deliverySpeed" binding:"omitempty,gte=1,lte=5"`
	ValueForMoney  *int   `json:"valueForMoney" binding:"omitempty,gte=1,lte=5"`
	WouldRecommend *bool  `json:"wouldRecommend" binding:"omitempty"`
}

// RespondFeedbackRequest represents the admin response body
type RespondFeedbackRequest struct {
	Message    string `json:"message" binding:"required,max=500"`
	IsApproved *bool  `json:"isApproved" binding:"omitempty"`
	IsPublic   *bool  `json:"isPublic" binding:"omitempty"`
}

// CreateFeedback handles POST /api/feedback - authenticated customers
func CreateFeedback(c *gin.Context) {
	user, err := middleware.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	var req CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation errors", "errors": utils.FieldErrors(err)})
		return
	}

	db := config.GetDB()

	if req.OrderID != nil {
		var order models.Order
		if err := db.First(&order, *req.OrderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load order"})
			}
			return
		}
		if order.UserID != user.ID {
			c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to review this order"})
			return
		}
	}

	feedback := models.Feedback{
		UserID:         user.ID,
		OrderID:        req.OrderID,
		ServiceID:      req.ServiceID,
		Rating:         req.Rating,
		Comment:        req.Comment,
		ServiceQuality: req.ServiceQuality,
		DeliverySpeed:  req.DeliverySpeed,
		ValueForMoney:  req.ValueForMoney,
		WouldRecommend: true,
		IsApproved:     true,
		IsPublic:       true,
	}
	if req.WouldRecommend != nil {
		feedback.WouldRecommend = *req.WouldRecommend
	}

	if err := db.Create(&feedback).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"message": "You have already submitted feedback for this order"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to submit feedback"})
		return
	}

	db.Preload("User").Preload("Service").First(&feedback, feedback.ID)

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"feedback": feedback,
	})
}

// GetFeedback handles GET /api/feedback - public listing of approved reviews;
// admins (via optional auth) see everything and can filter on approval
func GetFeedback(c *gin.Context) {
	db := config.GetDB()
	query := db.Model(&models.Feedback{}).Preload("User").Preload("Service")

	user, err := middleware.GetUser(c)
	isAdmin := err == nil && user.IsAdmin

	if isAdmin {
		if approved := c.Query("isApproved"); approved != "" {
			query = query.Where("is_approved = ?", approved == "true")
		}
		if public := c.Query("isPublic"); public != "" {
			query = query.Where("is_public = ?", public == "true")
		}
	} else {
		query = query.Where("is_approved = ? AND is_public = ?", true, true)
	}

	if rating := c.Query("rating"); rating != "" {
		if rating == "4+" {
			query = query.Where("rating >= ?", 4)
		} else if n, err := strconv.Atoi(rating); err == nil {
			query = query.Where("rating = ?", n)
		}
	}
	if serviceID := c.Query("service"); serviceID != "" {
		query = query.Where("service_id = ?", serviceID)
	}

	p := utils.ParsePagination(c)
	var total int64
	query.Count(&total)

	var list []models.Feedback
	if err := query.Order("created_at DESC").
		Offset(p.Offset()).Limit(p.Limit).Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"feedback":    list,
		"total":       total,
		"totalPages":  utils.TotalPages(total, p.Limit),
		"currentPage": p.Page,
	})
}

// GetFeedbackByService handles GET /api/feedback/service/:serviceId - public
// reviews for one catalog entry plus an average rating
func GetFeedbackByService(c *gin.Context) {
	serviceID, err := strconv.ParseUint(c.Param("serviceId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid service id"})
		return
	}

	db := config.GetDB()
	var list []models.Feedback
	if err := db.Preload("User").
		Where("service_id = ? AND is_approved = ? AND is_public = ?", uint(serviceID), true, true).
		Order("created_at DESC").Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch feedback"})
		return
	}

	var avg struct {
		AverageRating float64
		Count         int64
	}
	db.Model(&models.Feedback{}).
		Where("service_id = ? AND is_approved = ? AND is_public = ?", uint(serviceID), true, true).
		Select("COALESCE(AVG(rating), 0) AS average_rating, COUNT(*) AS count").
		Scan(&avg)

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"feedback":      list,
		"averageRating": avg.AverageRating,
		"count":         avg.Count,
	})
}

// GetMyFeedback handles GET /api/feedback/my - the caller's own reviews
func GetMyFeedback(c *gin.Context) {
	user, err := middleware.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	db := config.GetDB()
	var list []models.Feedback
	if err := db.Preload("Service").Preload("Order").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"feedback": list,
	})
}

// UpdateFeedback handles PUT /api/feedback/:id - owner only
func UpdateFeedback(c *gin.Context) {
	user, err := middleware.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	var req UpdateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation errors", "errors": utils.FieldErrors(err)})
		return
	}

	feedback, ok := findFeedback(c)
	if !ok {
		return
	}
	if feedback.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to update this feedback"})
		return
	}

	if req.Rating != 0 {
		feedback.Rating = req.Rating
	}
	if req.Comment != "" {
		feedback.Comment = req.Comment
	}
	if req.ServiceQuality != nil {
		feedback.ServiceQuality = req.ServiceQuality
	}
	if req.DeliverySpeed != nil {
		feedback.DeliverySpeed = req.DeliverySpeed
	}
	if req.ValueForMoney != nil {
		feedback.ValueForMoney = req.ValueForMoney
	}
	if req.WouldRecommend != nil {
		feedback.WouldRecommend = *req.WouldRecommend
	}

	db := config.GetDB()
	if err := db.Save(feedback).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"feedback": feedback,
	})
}

// DeleteFeedback handles DELETE /api/feedback/:id - owner or admin
func DeleteFeedback(c *gin.Context) {
	user, err := middleware.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	feedback, ok := findFeedback(c)
	if !ok {
		return
	}
	if feedback.UserID != user.ID && !user.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to delete this feedback"})
		return
	}

	db := config.GetDB()
	if err := db.Delete(feedback).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Feedback deleted",
	})
}

// RespondToFeedback handles PUT /api/feedback/:id/respond - admin only
func RespondToFeedback(c *gin.Context) {
	admin, err := middleware.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	var req RespondFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation errors", "errors": utils.FieldErrors(err)})
		return
	}

	feedback, ok := findFeedback(c)
	if !ok {
		return
	}

	now := time.Now()
	feedback.AdminResponse = models.AdminResponse{
		Message:       req.Message,
		RespondedAt:   &now,
		RespondedByID: &admin.ID,
	}
	if req.IsApproved != nil {
		feedback.IsApproved = *req.IsApproved
	}
	if req.IsPublic != nil {
		feedback.IsPublic = *req.IsPublic
	}

	db := config.GetDB()
	if err := db.Save(feedback).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to respond to feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"feedback": feedback,
	})
}

func findFeedback(c *gin.Context) (*models.Feedback, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid feedback id"})
		return nil, false
	}

	db := config.GetDB()
	var feedback models.Feedback
	if err := db.First(&feedback, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Feedback not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load feedback"})
		}
		return nil, false
	}
	return &feedback, true
}
