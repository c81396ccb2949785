package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/freshwash/freshwash-api/middleware"
	"github.com/freshwash/freshwash-api/models"
	"github.com/freshwash/freshwash-api/tests/testutil"
)

func orderRouter(user *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	auth := testutil.MockAuthMiddleware(user)

	router.POST("/api/orders", auth, CreateOrder)
	router.GET("/api/orders/myorders", auth, GetMyOrders)
	router.GET("/api/orders", auth, middleware.Admin(), GetOrders)
	router.GET("/api/orders/:id", auth, GetOrderByID)
	router.PUT("/api/orders/:id/pay", auth, PayOrder)
	router.PUT("/api/orders/:id/status", auth, middleware.Admin(), UpdateOrderStatus)
	router.PUT("/api/orders/:id/cancel", auth, CancelOrder)
	return router
}

func checkoutBody(service *models.Service) map[string]interface{} {
	return map[string]interface{}{
		"orderItems": []map[string]interface{}{
			{"serviceId": service.ID, "serviceType": "wash", "quantity": 2, "price": 25.0, "subtotal": 50.0},
			{"serviceId": service.ID, "serviceType": "iron", "quantity": 1, "price": 15.0, "subtotal": 15.0},
		},
		"shippingAddress": map[string]interface{}{
			"name":    "Test Customer",
			"phone":   "9876543210",
			"street":  "12 MG Road",
			"city":    "Bengaluru",
			"state":   "Karnataka",
			"zipCode": "560001",
		},
		"paymentMethod": "cod",
		"itemsPrice":    65.0,
		"shippingPrice": 5.0,
		"taxPrice":      3.5,
		"totalPrice":    73.5,
	}
}

func seedCheckout(t *testing.T, db *gorm.DB, user *models.User, service *models.Service) *models.Order {
	t.Helper()
	router := orderRouter(user)
	w := postJSON(t, router, http.MethodPost, "/api/orders", checkoutBody(service))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Order models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	var order models.Order
	require.NoError(t, db.Preload("OrderItems").Preload("StatusHistory").First(&order, resp.Order.ID).Error)
	return &order
}

func TestCreateOrderPersistsItemsAndDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db, "Checkout User", "checkout@test.com")
	service := testutil.CreateTestService(t, db, "Shirts", "Shirts")

	order := seedCheckout(t, db, user, service)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.False(t, order.IsPaid)
	require.Len(t, order.OrderItems, 2)
	assert.Equal(t, 50.0, order.OrderItems[0].Subtotal)
	assert.Equal(t, 15.0, order.OrderItems[1].Subtotal)
	assert.Equal(t, 73.5, order.TotalPrice)
	assert.Empty(t, order.StatusHistory, "Creation itself is not a status transition")
	assert.NotNil(t, order.EstimatedDelivery)
}

func TestCreateOrderComputesMissingSubtotal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db, "Checkout User", "subtotal@test.com")
	service := testutil.CreateTestService(t, db, "Trousers", "Shirts")
	router := orderRouter(user)

	body := checkoutBody(service)
	body["orderItems"] = []map[string]interface{}{
		{"serviceId": service.ID, "serviceType": "wash", "quantity": 3, "price": 25.0},
	}
	w := postJSON(t, router, http.MethodPost, "/api/orders", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var order models.Order
	require.NoError(t, db.Preload("OrderItems").Last(&order).Error)
	require.Len(t, order.OrderItems, 1)
	assert.Equal(t, 75.0, order.OrderItems[0].Subtotal, "Missing subtotal defaults to quantity times price")
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db, "Checkout User", "empty@test.com")
	service := testutil.CreateTestService(t, db, "Bedsheets", "Bedding")
	router := orderRouter(user)

	body := checkoutBody(service)
	body["orderItems"] = []map[string]interface{}{}
	w := postJSON(t, router, http.MethodPost, "/api/orders", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No order items")
}

func TestCreateOrderUnknownServiceNoPartialWrite(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db, "Checkout User", "unknown@test.com")
	service := testutil.CreateTestService(t, db, "Curtains", "Bedding")
	router := orderRouter(user)

	body := checkoutBody(service)
	body["orderItems"] = []map[string]interface{}{
		{"serviceId": service.ID, "serviceType": "wash", "quantity": 1, "price": 25.0, "subtotal": 25.0},
		{"serviceId": 9999, "serviceType": "iron", "quantity": 1, "price": 15.0, "subtotal": 15.0},
	}
	w := postJSON(t, router, http.MethodPost, "/api/orders", body)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Service not found")

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Zero(t, count, "Nothing may be persisted when any item is invalid")
}

func TestCreateOrderPrePaidStartsConfirmed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db, "Checkout User", "prepaid@test.com")
	service := testutil.CreateTestService(t, db, "Jackets", "Shirts")
	router := orderRouter(user)

	body := checkoutBody(service)
	body["isPaid"] = true
	body["paymentMethod"] = "card"
	body["paymentResult"] = map[string]interface{}{"id": "pi_demo_test", "status": "succeeded", "isDemoMode": true}
	w := postJSON(t, router, http.MethodPost, "/api/orders", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var order models.Order
	require.NoError(t, db.Last(&order).Error)
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
	assert.True(t, order.IsPaid)
	assert.NotNil(t, order.PaidAt, "isPaid implies paidAt")
}

func TestGetMyOrdersScopedToCaller(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db, "Mine", "mine@test.com")
	other := testutil.CreateTestUser(t, db, "Other", "other@test.com")
	service := testutil.CreateTestService(t, db, "Towels", "Bedding")

	seedCheckout(t, db, user, service)
	seedCheckout(t, db, other, service)

	router := orderRouter(user)
	w := postJSON(t, router, http.MethodGet, "/api/orders/myorders", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Orders []models.Order `json:"orders"`
		Total  int64          `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Orders, 1)
	assert.Equal(t, user.ID, resp.Orders[0].UserID)
	assert.Equal(t, int64(1), resp.Total)
}

func TestGetOrderByIDOwnership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	owner := testutil.CreateTestUser(t, db, "Owner", "owner@test.com")
	stranger := testutil.CreateTestUser(t, db, "Stranger", "stranger@test.com")
	admin := testutil.CreateTestAdmin(t, db, "Admin", "admin@test.com")
	service := testutil.CreateTestService(t, db, "Suits", "Shirts")
	order := seedCheckout(t, db, owner, service)

	tests := []struct {
		name     string
		caller   *models.User
		wantCode int
	}{
		{"owner can view", owner, http.StatusOK},
		{"stranger is rejected", stranger, http.StatusForbidden},
		{"admin can view", admin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := orderRouter(tt.caller)
			w := postJSON(t, router, http.MethodGet, fmt.Sprintf("/api/orders/%d", order.ID), nil)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestUpdateOrderStatusAppendsHistory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db, "Customer", "statuscust@test.com")
	admin := testutil.CreateTestAdmin(t, db, "Admin", "statusadmin@test.com")
	service := testutil.CreateTestService(t, db, "Sarees", "Shirts")
	order := seedCheckout(t, db, user, service)

	router := orderRouter(admin)
	w := postJSON(t, router, http.MethodPut, fmt.Sprintf("/api/orders/%d/status", order.ID),
		map[string]interface{}{"status": "in-progress"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stored models.Order
	require.NoError(t, db.Preload("StatusHistory").First(&stored, order.ID).Error)
	assert.Equal(t, models.OrderStatusInProgress, stored.Status)
	require.Len(t, stored.StatusHistory, 1)
	assert.Equal(t, "Status changed from pending to in-progress by admin", stored.StatusHistory[0].Note)
}

func TestUpdateOrderStatusRejectsUnknown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db, "Customer", "badstatus@test.com")
	admin := testutil.CreateTestAdmin(t, db, "Admin", "badstatusadmin@test.com")
	service := testutil.CreateTestService(t, db, "Blankets", "Bedding")
	order := seedCheckout(t, db, user, service)

	router := orderRouter(admin)
	w := postJSON(t, router, http.MethodPut, fmt.Sprintf("/api/orders/%d/status", order.ID),
		map[string]interface{}{"status": "shipped"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid order status")
}

func TestUpdateOrderStatusRequiresAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db, "Customer", "noadmin@test.com")
	service := testutil.CreateTestService(t, db, "Scarves", "Shirts")
	order := seedCheckout(t, db, user, service)

	router := orderRouter(user)
	w := postJSON(t, router, http.MethodPut, fmt.Sprintf("/api/orders/%d/status", order.ID),
		map[string]interface{}{"status": "confirmed"})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCancelOrderByCustomer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db, "Customer", "cancel@test.com")
	service := testutil.CreateTestService(t, db, "Dresses", "Shirts")
	order := seedCheckout(t, db, user, service)

	router := orderRouter(user)
	w := postJSON(t, router, http.MethodPut, fmt.Sprintf("/api/orders/%d/cancel", order.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Order cancelled successfully")

	var stored models.Order
	require.NoError(t, db.Preload("StatusHistory").First(&stored, order.ID).Error)
	assert.Equal(t, models.OrderStatusCancelled, stored.Status)
	require.Len(t, stored.StatusHistory, 1)
	assert.Equal(t, "Order cancelled by customer", stored.StatusHistory[0].Note)
}

func TestCancelCompletedOrderRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db, "Customer", "cancelcomplete@test.com")
	service := testutil.CreateTestService(t, db, "Coats", "Shirts")
	order := seedCheckout(t, db, user, service)
	require.NoError(t, db.Model(order).Update("status", models.OrderStatusCompleted).Error)

	router := orderRouter(user)
	w := postJSON(t, router, http.MethodPut, fmt.Sprintf("/api/orders/%d/cancel", order.ID), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Order cannot be cancelled at this stage")

	var stored models.Order
	require.NoError(t, db.Preload("StatusHistory").First(&stored, order.ID).Error)
	assert.Equal(t, models.OrderStatusCompleted, stored.Status, "Order must be unchanged")
	assert.Empty(t, stored.StatusHistory)
}

func TestPayOrderTwiceIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db, "Customer", "paytwice@test.com")
	service := testutil.CreateTestService(t, db, "Uniforms", "Shirts")
	order := seedCheckout(t, db, user, service)

	router := orderRouter(user)
	payBody := map[string]interface{}{"id": "pi_demo_pay1", "status": "succeeded"}

	w := postJSON(t, router, http.MethodPut, fmt.Sprintf("/api/orders/%d/pay", order.ID), payBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = postJSON(t, router, http.MethodPut, fmt.Sprintf("/api/orders/%d/pay", order.ID),
		map[string]interface{}{"id": "pi_demo_pay2", "status": "succeeded"})
	require.Equal(t, http.StatusOK, w.Code, "Second confirmation must still succeed")

	var stored models.Order
	require.NoError(t, db.Preload("StatusHistory").First(&stored, order.ID).Error)
	assert.True(t, stored.IsPaid)
	assert.Equal(t, "pi_demo_pay1", stored.PaymentResult.ID)
	assert.Len(t, stored.StatusHistory, 1, "No duplicate history entry on re-confirmation")
}

func TestGetOrdersAdminFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db, "Customer", "filters@test.com")
	admin := testutil.CreateTestAdmin(t, db, "Admin", "filtersadmin@test.com")
	service := testutil.CreateTestService(t, db, "Pillowcases", "Bedding")

	first := seedCheckout(t, db, user, service)
	seedCheckout(t, db, user, service)
	require.NoError(t, db.Model(first).Update("status", models.OrderStatusConfirmed).Error)

	router := orderRouter(admin)

	w := postJSON(t, router, http.MethodGet, "/api/orders?status=confirmed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Orders []models.Order `json:"orders"`
		Total  int64          `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Total)

	w = postJSON(t, router, http.MethodGet, "/api/orders?search=Test+Customer", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Total, "Search matches the shipping contact name")
}
