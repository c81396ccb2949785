package controllers

import (
	"errors"
	"log"
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

// OrderItemRequest is one checkout line. Price and subtotal come from the
// client; mismatches against the catalog are logged, never rejected.
type OrderItemRequest struct {
	ServiceID   uint    `json:"serviceId" binding:"required"`
	ServiceType string  `json:"serviceType" binding:"required"`
	Quantity    int     `json:"quantity" binding:"required,gte=1"`
	Price       float64 `json:"price" binding:"gte=0"`
	Subtotal    float64 `json:"subtotal" binding:"gte=0"`
}

// ShippingAddressRequest is the pickup/delivery address on a checkout
type ShippingAddressRequest struct {
	Name         string `json:"name" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	Street       string `json:"street" binding:"required"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state" binding:"required"`
	ZipCode      string `json:"zipCode" binding:"required"`
	Country      string `json:"country" binding:"omitempty"`
	Instructions string `json:"instructions" binding:"omitempty"`
}

// CreateOrderRequest represents the request body for creating an order
type CreateOrderRequest struct {
	OrderItems          []OrderItemRequest     `json:"orderItems" binding:"required,dive"`
	ShippingAddress     ShippingAddressRequest `json:"shippingAddress" binding:"required"`
	PaymentMethod       string                 `json:"paymentMethod" binding:"required,oneof=stripe cod razorpay card"`
	ItemsPrice          float64                `json:"itemsPrice" binding:"gte=0"`
	ShippingPrice       float64                `json:"shippingPrice" binding:"gte=0"`
	TaxPrice            float64                `json:"taxPrice" binding:"gte=0"`
	TotalPrice          float64                `json:"totalPrice" binding:"gte=0"`
	SpecialInstructions string                 `json:"specialInstructions" binding:"omitempty"`
	PickupDate          *time.Time             `json:"pickupDate" binding:"omitempty"`
	IsPaid              bool                   `json:"isPaid"`
	PaidAt              *time.Time             `json:"paidAt" binding:"omitempty"`
	PaymentResult       *models.PaymentResult  `json:"paymentResult" binding:"omitempty"`
}

// UpdateOrderStatusRequest represents the request body for an admin status change
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note" binding:"omitempty"`
}

// PayOrderRequest represents the simplified mark-paid request body
type PayOrderRequest struct {
	ID           string `json:"id" binding:"omitempty"`
	Status       string `json:"status" binding:"omitempty"`
	UpdateTime   string `json:"update_time" binding:"omitempty"`
	EmailAddress string `json:"email_address" binding:"omitempty"`
}

// CreateOrder handles POST /api/orders - creates a new order from a checkout submission
func CreateOrder(c *gin.Context) {
	user, err := middleware.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation errors", "errors": utils.FieldErrors(err)})
		return
	}
	if len(req.OrderItems) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No order items"})
		return
	}

	demoMode := req.PaymentResult != nil && req.PaymentResult.IsDemoMode

	// Verify every referenced service exists before anything is persisted
	db := config.GetDB()
	items := make([]models.OrderItem, 0, len(req.OrderItems))
	for _, item := range req.OrderItems {
		var service models.Service
		if err := db.First(&service, item.ServiceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "Service not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create order"})
			return
		}

		if !service.IsActive {
			log.Printf("Service %s is inactive but order allowed in demo mode", service.Name)
		}

		// Price consistency is advisory only; demo payments skip it entirely
		if !demoMode {
			if sub, ok := service.Services.ForType(item.ServiceType); ok && sub.Available && sub.Price != item.Price {
				log.Printf("Price mismatch for %s - %s: expected %.2f, got %.2f",
					service.Name, item.ServiceType, sub.Price, item.Price)
			}
		}

		subtotal := item.Subtotal
		if subtotal == 0 {
			subtotal = float64(item.Quantity) * item.Price
		}
		items = append(items, models.OrderItem{
			ServiceID:   item.ServiceID,
			ServiceType: item.ServiceType,
			Quantity:    item.Quantity,
			Price:       item.Price,
			Subtotal:    subtotal,
		})
	}

	status := models.OrderStatusPending
	var paidAt *time.Time
	if req.IsPaid {
		status = models.OrderStatusConfirmed
		if req.PaidAt != nil {
			paidAt = req.PaidAt
		} else {
			now := time.Now()
			paidAt = &now
		}
	}

	order := models.Order{
		UserID:     user.ID,
		OrderItems: items,
		ShippingAddress: models.ShippingAddress{
			Name:         req.ShippingAddress.Name,
			Phone:        req.ShippingAddress.Phone,
			Street:       req.ShippingAddress.Street,
			City:         req.ShippingAddress.City,
			State:        req.ShippingAddress.State,
			ZipCode:      req.ShippingAddress.ZipCode,
			Country:      req.ShippingAddress.Country,
			Instructions: req.ShippingAddress.Instructions,
		},
		PaymentMethod:       req.PaymentMethod,
		ItemsPrice:          req.ItemsPrice,
		ShippingPrice:       req.ShippingPrice,
		TaxPrice:            req.TaxPrice,
		TotalPrice:          req.TotalPrice,
		SpecialInstructions: req.SpecialInstructions,
		PickupDate:          req.PickupDate,
		IsPaid:              req.IsPaid,
		PaidAt:              paidAt,
		Status:              status,
	}
	if req.PaymentResult != nil {
		order.PaymentResult = *req.PaymentResult
	}

	if err := db.Create(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create order"})
		return
	}

	// Return the persisted order with catalog and user fields populated
	if err := db.Preload("User").Preload("OrderItems.Service").Preload("StatusHistory").
		First(&order, order.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load order details"})
		return
	}

	services.Notify(services.Event{
		Type:  services.EventOrderCreated,
		To:    user.Email,
		Name:  user.Name,
		Order: &order,
	})

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"order":   order,
	})
}

// GetMyOrders handles GET /api/orders/myorders - paginated list of the caller's orders
func GetMyOrders(c *gin.Context) {
	user, err := middleware.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	p := utils.ParsePagination(c)
	db := config.GetDB()

	query := db.Model(&models.Order{}).Where("user_id = ?", user.ID)
	if status := c.Query("status"); status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch orders"})
		return
	}

	var orders []models.Order
	if err := query.Preload("OrderItems.Service").Preload("StatusHistory").
		Order("created_at DESC").
		Limit(p.Limit).Offset(p.Offset()).
		Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"orders":      orders,
		"totalPages":  utils.TotalPages(total, p.Limit),
		"currentPage": p.Page,
		"total":       total,
	})
}

// GetOrderByID handles GET /api/orders/:id - owner or admin only
func GetOrderByID(c *gin.Context) {
	user, err := middleware.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	order, ok := findOrder(c, true)
	if !ok {
		return
	}

	if order.UserID != user.ID && !user.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to view this order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"order":   order,
	})
}

// PayOrder handles PUT /api/orders/:id/pay - owner marks the order paid
// (simplified path with a caller-supplied payment reference)
func PayOrder(c *gin.Context) {
	user, err := middleware.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	var req PayOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation errors", "errors": utils.FieldErrors(err)})
		return
	}

	order, ok := findOrder(c, false)
	if !ok {
		return
	}
	if order.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to update this order"})
		return
	}

	status := req.Status
	if status == "" {
		status = "succeeded"
	}
	result := models.PaymentResult{
		ID:           req.ID,
		Status:       status,
		UpdateTime:   req.UpdateTime,
		EmailAddress: req.EmailAddress,
	}
	if result.UpdateTime == "" {
		result.UpdateTime = time.Now().Format(time.RFC3339)
	}
	if result.EmailAddress == "" {
		result.EmailAddress = user.Email
	}

	db := config.GetDB()
	if err := services.MarkOrderPaid(db, order, result); err != nil {
		respondLifecycleError(c, err, "Order cannot be paid at this stage")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"order":   order,
	})
}

// UpdateOrderStatus handles PUT /api/orders/:id/status - admin status transition
func UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation errors", "errors": utils.FieldErrors(err)})
		return
	}
	if !models.ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid order status"})
		return
	}

	order, ok := findOrder(c, true)
	if !ok {
		return
	}

	oldStatus := order.Status
	db := config.GetDB()
	if err := services.TransitionOrder(db, order, req.Status, req.Note); err != nil {
		respondLifecycleError(c, err, "Invalid status transition")
		return
	}

	if order.User != nil {
		services.Notify(services.Event{
			Type:      services.EventOrderStatusChanged,
			To:        order.User.Email,
			Name:      order.User.Name,
			Order:     order,
			OldStatus: oldStatus,
			NewStatus: order.Status,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"order":   order,
	})
}

// CancelOrder handles PUT /api/orders/:id/cancel - owner or admin, guarded transition
func CancelOrder(c *gin.Context) {
	user, err := middleware.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	order, ok := findOrder(c, true)
	if !ok {
		return
	}
	if order.UserID != user.ID && !user.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to cancel this order"})
		return
	}

	note := "Order cancelled by customer"
	if user.IsAdmin && order.UserID != user.ID {
		note = "Order cancelled by admin"
	}

	oldStatus := order.Status
	db := config.GetDB()
	if err := services.CancelOrder(db, order, note); err != nil {
		respondLifecycleError(c, err, "Order cannot be cancelled at this stage")
		return
	}

	if order.User != nil {
		services.Notify(services.Event{
			Type:      services.EventOrderStatusChanged,
			To:        order.User.Email,
			Name:      order.User.Name,
			Order:     order,
			OldStatus: oldStatus,
			NewStatus: order.Status,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order cancelled successfully",
		"order":   order,
	})
}

// GetOrders handles GET /api/orders - admin view, filterable by status/search/date range
func GetOrders(c *gin.Context) {
	p := utils.ParsePagination(c)
	db := config.GetDB()

	query := db.Model(&models.Order{})
	if status := c.Query("status"); status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("shipping_name LIKE ? OR shipping_phone LIKE ?", like, like)
	}
	startDate, endDate := c.Query("startDate"), c.Query("endDate")
	if startDate != "" && endDate != "" {
		start, err1 := time.Parse("2006-01-02", startDate)
		end, err2 := time.Parse("2006-01-02", endDate)
		if err1 == nil && err2 == nil {
			query = query.Where("created_at >= ? AND created_at <= ?", start, end.Add(24*time.Hour))
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch orders"})
		return
	}

	var orders []models.Order
	if err := query.Preload("User").Preload("OrderItems.Service").
		Order("created_at DESC").
		Limit(p.Limit).Offset(p.Offset()).
		Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"orders":      orders,
		"totalPages":  utils.TotalPages(total, p.Limit),
		"currentPage": p.Page,
		"total":       total,
	})
}

// findOrder loads the order from the :id path parameter, writing the error
// response itself when the id is malformed or the order does not exist.
func findOrder(c *gin.Context, preloadAll bool) (*models.Order, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid order id"})
		return nil, false
	}

	db := config.GetDB()
	query := db.Preload("User")
	if preloadAll {
		query = query.Preload("OrderItems.Service").Preload("StatusHistory")
	}

	var order models.Order
	if err := query.First(&order, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load order"})
		}
		return nil, false
	}
	return &order, true
}

// respondLifecycleError maps lifecycle service errors onto the API taxonomy
func respondLifecycleError(c *gin.Context, err error, invalidStateMessage string) {
	switch {
	case errors.Is(err, utils.ErrInvalidState):
		c.JSON(http.StatusBadRequest, gin.H{"message": invalidStateMessage})
	case errors.Is(err, utils.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"message": "Order was modified concurrently, please retry"})
	case errors.Is(err, utils.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update order"})
	}
}
