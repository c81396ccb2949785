package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestValidStatus(t *testing.T) {
	for _, s := range OrderStatuses {
		assert.True(t, ValidStatus(s), "%q should be a valid status", s)
	}
	assert.False(t, ValidStatus("shipped"))
	assert.False(t, ValidStatus(""))
	assert.False(t, ValidStatus("Pending"), "statuses are case sensitive")
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"pending to confirmed", OrderStatusPending, OrderStatusConfirmed, true},
		{"pending to in-progress", OrderStatusPending, OrderStatusInProgress, true},
		{"pending to cancelled", OrderStatusPending, OrderStatusCancelled, true},
		{"confirmed to cancelled", OrderStatusConfirmed, OrderStatusCancelled, true},
		{"in-progress to completed", OrderStatusInProgress, OrderStatusCompleted, true},
		{"in-progress to cancelled is blocked", OrderStatusInProgress, OrderStatusCancelled, false},
		{"completed to cancelled is blocked", OrderStatusCompleted, OrderStatusCancelled, false},
		{"completed to refunded", OrderStatusCompleted, OrderStatusRefunded, true},
		{"cancelled can be reopened", OrderStatusCancelled, OrderStatusPending, true},
		{"refunded cannot be cancelled", OrderStatusRefunded, OrderStatusCancelled, false},
		{"unknown status has no transitions", "shipped", OrderStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestValidPaymentMethod(t *testing.T) {
	for _, m := range PaymentMethods {
		assert.True(t, ValidPaymentMethod(m))
	}
	assert.False(t, ValidPaymentMethod("paypal"))
	assert.False(t, ValidPaymentMethod(""))
}

func TestOrderBeforeCreateDefaults(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&User{}, &Order{}, &OrderItem{}, &StatusHistoryEntry{}))

	user := User{Name: "Test", Email: "order-defaults@test.com", IsActive: true}
	assert.NoError(t, user.SetPassword("password123"))
	assert.NoError(t, db.Create(&user).Error)

	order := Order{
		UserID:        user.ID,
		PaymentMethod: "cod",
		TotalPrice:    100,
	}
	assert.NoError(t, db.Create(&order).Error)

	assert.Equal(t, OrderStatusPending, order.Status, "New orders default to pending")
	assert.NotNil(t, order.EstimatedDelivery, "Estimated delivery should be filled on create")
	assert.Equal(t, uint(1), order.Version)
	assert.False(t, order.IsPaid)
	assert.False(t, order.IsDelivered)
}
