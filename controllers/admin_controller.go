package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/freshwash/freshwash-api/config"
	"github.com/freshwash/freshwash-api/middleware"
	"github.com/freshwash/freshwash-api/models"
	"github.com/freshwash/freshwash-api/utils"
)

// UpdateUserRequest represents the admin request body for editing a user account
type UpdateUserRequest struct {
	Name     string `json:"name" binding:"omitempty,max=100"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone" binding:"omitempty,max=20"`
	IsAdmin  *bool  `json:"isAdmin" binding:"omitempty"`
	IsActive *bool  `json:"isActive" binding:"omitempty"`
}

type statusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type dailyRevenue struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Orders  int64   `json:"orders"`
}

// GetDashboardStats handles GET /api/admin/stats - the admin landing page numbers
func GetDashboardStats(c *gin.Context) {
	db := config.GetDB()

	var totalOrders, totalUsers, totalServices, pendingOrders, completedOrders int64
	db.Model(&models.Order{}).Count(&totalOrders)
	db.Model(&models.User{}).Where("is_admin = ?", false).Count(&totalUsers)
	db.Model(&models.Service{}).Where("is_active = ?", true).Count(&totalServices)
	db.Model(&models.Order{}).Where("status = ?", models.OrderStatusPending).Count(&pendingOrders)
	db.Model(&models.Order{}).Where("status = ?", models.OrderStatusCompleted).Count(&completedOrders)

	var totalRevenue float64
	db.Model(&models.Order{}).Where("is_paid = ?", true).
		Select("COALESCE(SUM(total_price), 0)").Scan(&totalRevenue)

	monthStart := time.Now().AddDate(0, -1, 0)
	var monthRevenue float64
	db.Model(&models.Order{}).Where("is_paid = ? AND paid_at >= ?", true, monthStart).
		Select("COALESCE(SUM(total_price), 0)").Scan(&monthRevenue)

	var averageRating float64
	db.Model(&models.Feedback{}).Where("is_approved = ?", true).
		Select("COALESCE(AVG(rating), 0)").Scan(&averageRating)

	var ordersByStatus []statusCount
	db.Model(&models.Order{}).Select("status, COUNT(*) AS count").
		Group("status").Scan(&ordersByStatus)

	// last 7 days of paid revenue, grouped per calendar day
	weekStart := time.Now().AddDate(0, 0, -7)
	var revenueTrend []dailyRevenue
	db.Model(&models.Order{}).
		Where("is_paid = ? AND created_at >= ?", true, weekStart).
		Select("DATE(created_at) AS date, COALESCE(SUM(total_price), 0) AS revenue, COUNT(*) AS orders").
		Group("DATE(created_at)").Order("date ASC").Scan(&revenueTrend)

	var topServices []struct {
		ServiceID  uint    `json:"serviceId"`
		Name       string  `json:"name"`
		OrderCount int64   `json:"orderCount"`
		Revenue    float64 `json:"revenue"`
	}
	db.Table("order_items").
		Select("order_items.service_id, services.name, COUNT(DISTINCT order_items.order_id) AS order_count, COALESCE(SUM(order_items.subtotal), 0) AS revenue").
		Joins("JOIN services ON services.id = order_items.service_id").
		Group("order_items.service_id, services.name").
		Order("order_count DESC").Limit(5).Scan(&topServices)

	var unreadContacts int64
	db.Model(&models.Contact{}).Where("is_read = ?", false).Count(&unreadContacts)

	var recentOrders []models.Order
	db.Preload("User").Order("created_at DESC").Limit(5).Find(&recentOrders)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"overview": gin.H{
				"totalOrders":     totalOrders,
				"totalUsers":      totalUsers,
				"totalServices":   totalServices,
				"pendingOrders":   pendingOrders,
				"completedOrders": completedOrders,
				"unreadContacts":  unreadContacts,
			},
			"revenue": gin.H{
				"total":     totalRevenue,
				"lastMonth": monthRevenue,
			},
			"averageRating":  averageRating,
			"ordersByStatus": ordersByStatus,
			"revenueTrend":   revenueTrend,
			"topServices":    topServices,
			"recentOrders":   recentOrders,
		},
	})
}

// GetRevenue handles GET /api/admin/revenue - revenue report over a selectable period
func GetRevenue(c *gin.Context) {
	db := config.GetDB()

	period := c.DefaultQuery("period", "month")
	var start time.Time
	now := time.Now()
	switch period {
	case "week":
		start = now.AddDate(0, 0, -7)
	case "month":
		start = now.AddDate(0, -1, 0)
	case "quarter":
		start = now.AddDate(0, -3, 0)
	case "year":
		start = now.AddDate(-1, 0, 0)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid period, expected week, month, quarter or year"})
		return
	}

	var buckets []dailyRevenue
	db.Model(&models.Order{}).
		Where("is_paid = ? AND paid_at >= ?", true, start).
		Select("DATE(paid_at) AS date, COALESCE(SUM(total_price), 0) AS revenue, COUNT(*) AS orders").
		Group("DATE(paid_at)").Order("date ASC").Scan(&buckets)

	var categoryRevenue []struct {
		Category string  `json:"category"`
		Revenue  float64 `json:"revenue"`
		Orders   int64   `json:"orders"`
	}
	db.Table("order_items").
		Select("services.category, COALESCE(SUM(order_items.subtotal), 0) AS revenue, COUNT(DISTINCT order_items.order_id) AS orders").
		Joins("JOIN services ON services.id = order_items.service_id").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.is_paid = ? AND orders.paid_at >= ?", true, start).
		Group("services.category").Order("revenue DESC").Scan(&categoryRevenue)

	var summary struct {
		Total   float64 `json:"total"`
		Orders  int64   `json:"orders"`
		Average float64 `json:"average"`
		Min     float64 `json:"min"`
		Max     float64 `json:"max"`
	}
	db.Model(&models.Order{}).
		Where("is_paid = ? AND paid_at >= ?", true, start).
		Select("COALESCE(SUM(total_price), 0) AS total, COUNT(*) AS orders, COALESCE(AVG(total_price), 0) AS average, COALESCE(MIN(total_price), 0) AS min, COALESCE(MAX(total_price), 0) AS max").
		Scan(&summary)

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"period":          period,
		"startDate":       start.Format("2006-01-02"),
		"revenue":         buckets,
		"categoryRevenue": categoryRevenue,
		"summary":         summary,
	})
}

// GetAllUsers handles GET /api/admin/users - paginated user listing with search
func GetAllUsers(c *gin.Context) {
	db := config.GetDB()
	query := db.Model(&models.User{})

	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR email LIKE ? OR phone LIKE ?", like, like, like)
	}
	if isActive := c.Query("isActive"); isActive != "" {
		query = query.Where("is_active = ?", isActive == "true")
	}
	if isAdmin := c.Query("isAdmin"); isAdmin != "" {
		query = query.Where("is_admin = ?", isAdmin == "true")
	}

	p := utils.ParsePagination(c)
	var total int64
	query.Count(&total)

	var users []models.User
	if err := query.Order("created_at DESC").
		Offset(p.Offset()).Limit(p.Limit).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"users":       users,
		"total":       total,
		"totalPages":  utils.TotalPages(total, p.Limit),
		"currentPage": p.Page,
	})
}

// GetUserByID handles GET /api/admin/users/:id - account detail with order stats
func GetUserByID(c *gin.Context) {
	target, ok := findUserParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var stats struct {
		TotalOrders int64   `json:"totalOrders"`
		TotalSpent  float64 `json:"totalSpent"`
	}
	db.Model(&models.Order{}).Where("user_id = ?", target.ID).
		Select("COUNT(*) AS total_orders, COALESCE(SUM(CASE WHEN is_paid THEN total_price ELSE 0 END), 0) AS total_spent").
		Scan(&stats)

	var recentOrders []models.Order
	db.Where("user_id = ?", target.ID).Order("created_at DESC").Limit(5).Find(&recentOrders)

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"user":         target,
		"stats":        stats,
		"recentOrders": recentOrders,
	})
}

// UpdateUser handles PUT /api/admin/users/:id - account edits; granting or
// revoking admin rights is reserved to the configured super admin
func UpdateUser(c *gin.Context) {
	caller, err := middleware.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation errors", "errors": utils.FieldErrors(err)})
		return
	}

	target, ok := findUserParam(c)
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Email != "" {
		updates["email"] = strings.ToLower(req.Email)
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsAdmin != nil {
		cfg := config.GetConfig()
		if cfg.SuperAdminEmail == "" || !strings.EqualFold(caller.Email, cfg.SuperAdminEmail) {
			c.JSON(http.StatusForbidden, gin.H{"message": "Only the super admin can change admin privileges"})
			return
		}
		updates["is_admin"] = *req.IsAdmin
	}

	db := config.GetDB()
	if len(updates) > 0 {
		if err := db.Model(target).Updates(updates).Error; err != nil {
			if utils.IsDuplicateKeyError(err) {
				c.JSON(http.StatusConflict, gin.H{"message": "Email is already in use"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update user"})
			return
		}
	}

	db.First(target, target.ID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    target,
	})
}

// DeleteUser handles DELETE /api/admin/users/:id - deactivates the account;
// admin accounts cannot be removed this way
func DeleteUser(c *gin.Context) {
	target, ok := findUserParam(c)
	if !ok {
		return
	}
	if target.IsAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Admin accounts cannot be deleted"})
		return
	}

	db := config.GetDB()
	if err := db.Model(target).Update("is_active", false).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to deactivate user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User deactivated",
	})
}

func findUserParam(c *gin.Context) (*models.User, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user id"})
		return nil, false
	}

	db := config.GetDB()
	var user models.User
	if err := db.First(&user, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load user"})
		}
		return nil, false
	}
	return &user, true
}
