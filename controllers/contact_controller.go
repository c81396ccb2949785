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
	"github.com/freshwash/freshwash-api/services"
	"github.com/freshwash/freshwash-api/utils"
)

// CreateContactRequest represents the request body for a contact form submission
type CreateContactRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"omitempty,max=20"`
	Subject  string `json:"subject" binding:"required,max=200"`
	Message  string `json:"message" binding:"required,max=2000"`
	Category string `json:"category" binding:"omitempty"`
}

// UpdateContactRequest represents the admin request body for triage updates
type UpdateContactRequest struct {
	Status   string `json:"status" binding:"omitempty"`
	Priority string `json:"priority" binding:"omitempty"`
	Category string `json:"category" binding:"omitempty"`
}

// RespondContactRequest represents the admin response body
type RespondContactRequest struct {
	Message string `json:"message" binding:"required,max=2000"`
}

// CreateContact handles POST /api/contact - public endpoint; when the caller
// carries a valid token the message is linked to their account
func CreateContact(c *gin.Context) {
	var req CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation errors", "errors": utils.FieldErrors(err)})
		return
	}

	category := req.Category
	if category == "" {
		category = "general"
	}
	if !models.ContainsString(models.ContactCategories, category) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid contact category"})
		return
	}

	contact := models.Contact{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Subject:  req.Subject,
		Message:  req.Message,
		Category: category,
		Priority: "medium",
		Status:   "new",
	}
	if user, err := middleware.GetUser(c); err == nil {
		contact.UserID = &user.ID
	}

	db := config.GetDB()
	if err := db.Create(&contact).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to submit message"})
		return
	}

	services.Notify(services.Event{
		Type:    services.EventContactReceived,
		To:      contact.Email,
		Name:    contact.Name,
		Contact: &contact,
	})

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Message sent successfully, we will get back to you soon",
		"contact": contact,
	})
}

// GetContacts handles GET /api/contact - admin inbox with filters and per-status counts
func GetContacts(c *gin.Context) {
	db := config.GetDB()
	query := db.Model(&models.Contact{}).Preload("User")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if priority := c.Query("priority"); priority != "" {
		query = query.Where("priority = ?", priority)
	}
	if isRead := c.Query("isRead"); isRead != "" {
		query = query.Where("is_read = ?", isRead == "true")
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR email LIKE ? OR subject LIKE ?", like, like, like)
	}

	p := utils.ParsePagination(c)
	var total int64
	query.Count(&total)

	var list []models.Contact
	if err := query.Order("created_at DESC").
		Offset(p.Offset()).Limit(p.Limit).Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch messages"})
		return
	}

	var statusCounts []struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	db.Model(&models.Contact{}).Select("status, COUNT(*) AS count").
		Group("status").Scan(&statusCounts)

	var unread int64
	db.Model(&models.Contact{}).Where("is_read = ?", false).Count(&unread)

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"contacts":     list,
		"total":        total,
		"totalPages":   utils.TotalPages(total, p.Limit),
		"currentPage":  p.Page,
		"statusCounts": statusCounts,
		"unreadCount":  unread,
	})
}

// GetContactByID handles GET /api/contact/:id - admin; reading marks the message read
func GetContactByID(c *gin.Context) {
	admin, err := middleware.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	contact, ok := findContact(c)
	if !ok {
		return
	}

	db := config.GetDB()
	if !contact.IsRead {
		now := time.Now()
		updates := map[string]interface{}{
			"is_read":    true,
			"read_at":    now,
			"read_by_id": admin.ID,
		}
		if err := db.Model(contact).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update message"})
			return
		}
		contact.IsRead = true
		contact.ReadAt = &now
		contact.ReadByID = &admin.ID
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"contact": contact,
	})
}

// UpdateContact handles PUT /api/contact/:id - admin triage of status, priority and category
func UpdateContact(c *gin.Context) {
	var req UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation errors", "errors": utils.FieldErrors(err)})
		return
	}
	if req.Status != "" && !models.ContainsString(models.ContactStatuses, req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid contact status"})
		return
	}
	if req.Priority != "" && !models.ContainsString(models.ContactPriorities, req.Priority) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid contact priority"})
		return
	}
	if req.Category != "" && !models.ContainsString(models.ContactCategories, req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid contact category"})
		return
	}

	contact, ok := findContact(c)
	if !ok {
		return
	}

	if req.Status != "" {
		contact.Status = req.Status
	}
	if req.Priority != "" {
		contact.Priority = req.Priority
	}
	if req.Category != "" {
		contact.Category = req.Category
	}

	db := config.GetDB()
	if err := db.Save(contact).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"contact": contact,
	})
}

// RespondToContact handles PUT /api/contact/:id/respond - admin reply, marks resolved
func RespondToContact(c *gin.Context) {
	admin, err := middleware.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	var req RespondContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation errors", "errors": utils.FieldErrors(err)})
		return
	}

	contact, ok := findContact(c)
	if !ok {
		return
	}

	now := time.Now()
	contact.Response = models.AdminResponse{
		Message:       req.Message,
		RespondedAt:   &now,
		RespondedByID: &admin.ID,
	}
	contact.Status = "resolved"
	if !contact.IsRead {
		contact.IsRead = true
		contact.ReadAt = &now
		contact.ReadByID = &admin.ID
	}

	db := config.GetDB()
	if err := db.Save(contact).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to respond to message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"contact": contact,
	})
}

// DeleteContact handles DELETE /api/contact/:id - admin only
func DeleteContact(c *gin.Context) {
	contact, ok := findContact(c)
	if !ok {
		return
	}

	db := config.GetDB()
	if err := db.Delete(contact).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Message deleted",
	})
}

func findContact(c *gin.Context) (*models.Contact, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid message id"})
		return nil, false
	}

	db := config.GetDB()
	var contact models.Contact
	if err := db.First(&contact, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Message not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load message"})
		}
		return nil, false
	}
	return &contact, true
}
