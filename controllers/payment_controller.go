package controllers

import (
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freshwash/freshwash-api/config"
	"github.com/freshwash/freshwash-api/middleware"
	"github.com/freshwash/freshwash-api/models"
	"github.com/freshwash/freshwash-api/services"
	"github.com/freshwash/freshwash-api/utils"
)

// CreatePaymentIntentRequest represents the request body for a demo payment intent
type CreatePaymentIntentRequest struct {
	Amount   float64 `json:"amount" binding:"required,gt=0"`
	Currency string  `json:"currency" binding:"omitempty"`
	OrderID  uint    `json:"orderId" binding:"omitempty"`
}

// ConfirmPaymentRequest represents the request body for confirming a demo payment
type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"paymentIntentId" binding:"required"`
	OrderID         uint   `json:"orderId" binding:"omitempty"`
}

// ProcessDemoPaymentRequest represents the all-in-one demo payment request body
type ProcessDemoPaymentRequest struct {
	OrderID     uint `json:"orderId" binding:"required"`
	CardDetails *struct {
		CardNumber string `json:"cardNumber"`
	} `json:"cardDetails" binding:"omitempty"`
}

// RefundPaymentRequest represents the demo refund request body
type RefundPaymentRequest struct {
	PaymentIntentID string  `json:"paymentIntentId" binding:"omitempty"`
	Amount          float64 `json:"amount" binding:"omitempty,gte=0"`
	Reason          string  `json:"reason" binding:"omitempty"`
	OrderID         uint    `json:"orderId" binding:"omitempty"`
}

// CreatePaymentIntent handles POST /api/payments/create-payment-intent.
// No real processor is contacted; a demo intent id and client secret are synthesized.
func CreatePaymentIntent(c *gin.Context) {
	user, err := middleware.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	var req CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation errors", "errors": utils.FieldErrors(err)})
		return
	}

	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = "inr"
	}

	intentID := fmt.Sprintf("pi_demo_%s", uuid.NewString())
	clientSecret := fmt.Sprintf("%s_secret_%s", intentID, uuid.NewString()[:8])

	// Amount in the smallest currency unit (paise for INR)
	amount := int64(math.Round(req.Amount * 100))

	log.Printf("Demo payment intent created: id=%s amount=%d currency=%s user=%d", intentID, amount, currency, user.ID)

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"clientSecret":    clientSecret,
		"paymentIntentId": intentID,
		"amount":          amount,
		"currency":        currency,
		"isDemoMode":      true,
	})
}

// ConfirmPayment handles POST /api/payments/confirm - reconciles a demo payment
// against an order when one is referenced. Always succeeds in demo mode.
func ConfirmPayment(c *gin.Context) {
	user, err := middleware.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation errors", "errors": utils.FieldErrors(err)})
		return
	}

	paymentIntent := gin.H{
		"id":         req.PaymentIntentID,
		"status":     "succeeded",
		"currency":   "inr",
		"isDemoMode": true,
	}

	if req.OrderID == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"message":       "Demo payment confirmed",
			"paymentIntent": paymentIntent,
		})
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, req.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load order"})
		}
		return
	}
	if order.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to access this order"})
		return
	}

	result := models.PaymentResult{
		ID:           req.PaymentIntentID,
		Status:       "succeeded",
		UpdateTime:   time.Now().Format(time.RFC3339),
		EmailAddress: user.Email,
		IsDemoMode:   true,
	}
	if err := services.MarkOrderPaid(db, &order, result); err != nil {
		respondLifecycleError(c, err, "Order cannot be paid at this stage")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Demo payment confirmed and order updated",
		"order":         order,
		"paymentIntent": paymentIntent,
	})
}

// ProcessDemoPayment handles POST /api/payments/demo-payment - the all-in-one
// demo payment path used by the checkout flow
func ProcessDemoPayment(c *gin.Context) {
	user, err := middleware.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	var req ProcessDemoPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation errors", "errors": utils.FieldErrors(err)})
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.First(&order, req.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to load order"})
		}
		return
	}
	if order.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to access this order"})
		return
	}

	cardLast4 := "XXXX"
	if req.CardDetails != nil && len(req.CardDetails.CardNumber) >= 4 {
		cardLast4 = req.CardDetails.CardNumber[len(req.CardDetails.CardNumber)-4:]
	}

	result := models.PaymentResult{
		ID:           fmt.Sprintf("demo_%s", uuid.NewString()),
		Status:       "succeeded",
		UpdateTime:   time.Now().Format(time.RFC3339),
		EmailAddress: user.Email,
		CardLast4:    cardLast4,
		IsDemoMode:   true,
	}
	if err := services.MarkOrderPaid(db, &order, result); err != nil {
		respondLifecycleError(c, err, "Order cannot be paid at this stage")
		return
	}

	log.Printf("Demo payment processed: order=%d payment=%s amount=%.2f", order.ID, result.ID, order.TotalPrice)

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Payment processed successfully (Demo Mode)",
		"order":      order,
		"isDemoMode": true,
	})
}

// RefundPayment handles POST /api/payments/refund - admin-only demo refund
func RefundPayment(c *gin.Context) {
	var req RefundPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation errors", "errors": utils.FieldErrors(err)})
		return
	}

	reason := req.Reason
	if reason == "" {
		reason = "requested_by_customer"
	}

	refundID := fmt.Sprintf("re_demo_%s", uuid.NewString())
	log.Printf("Demo refund created: refund=%s intent=%s amount=%.2f reason=%s",
		refundID, req.PaymentIntentID, req.Amount, reason)

	if req.OrderID != 0 {
		db := config.GetDB()
		var order models.Order
		if err := db.First(&order, req.OrderID).Error; err == nil {
			if err := services.RefundOrder(db, &order, reason); err != nil {
				respondLifecycleError(c, err, "Order cannot be refunded at this stage")
				return
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"refund": gin.H{
			"id":         refundID,
			"amount":     req.Amount,
			"status":     "succeeded",
			"reason":     reason,
			"isDemoMode": true,
		},
		"message": "Demo refund processed successfully",
	})
}

// GetPaymentHistory handles GET /api/payments/history - the caller's paid orders
// with summary totals
func GetPaymentHistory(c *gin.Context) {
	user, err := middleware.GetUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		return
	}

	p := utils.ParsePagination(c)
	db := config.GetDB()

	query := db.Model(&models.Order{}).Where("user_id = ? AND is_paid = ?", user.ID, true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve payment history"})
		return
	}

	var orders []models.Order
	if err := query.Preload("OrderItems.Service").
		Order("paid_at DESC").
		Limit(p.Limit).Offset(p.Offset()).
		Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve payment history"})
		return
	}

	var stats struct {
		TotalSpent        float64 `json:"totalSpent"`
		TotalOrders       int64   `json:"totalOrders"`
		AverageOrderValue float64 `json:"averageOrderValue"`
	}
	db.Model(&models.Order{}).
		Where("user_id = ? AND is_paid = ?", user.ID, true).
		Select("COALESCE(SUM(total_price), 0) AS total_spent, COUNT(*) AS total_orders, COALESCE(AVG(total_price), 0) AS average_order_value").
		Scan(&stats)

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"payments":    orders,
		"totalPages":  utils.TotalPages(total, p.Limit),
		"currentPage": p.Page,
		"total":       total,
		"stats":       stats,
		"isDemoMode":  true,
	})
}

// PaymentWebhook handles POST /api/payments/webhook - acknowledged but ignored in demo mode
func PaymentWebhook(c *gin.Context) {
	log.Printf("Demo webhook received (ignored in demo mode)")
	c.JSON(http.StatusOK, gin.H{
		"received":   true,
		"isDemoMode": true,
		"message":    "Webhook processing disabled in demo mode",
	})
}
