package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/freshwash/freshwash-api/models"
	"github.com/freshwash/freshwash-api/utils"
)

// TransitionOrder moves an order to newStatus, appending exactly one
// status-history entry and reconciling the delivered flags. The write is a
// compare-and-swap on the order's version column, so a concurrent update on the
// same order surfaces as utils.ErrConflict instead of a silent lost update.
//
// Policy follows models.StatusTransitions: permissive for admin-driven changes,
// with cancellation guarded separately in CancelOrder.
func TransitionOrder(db *gorm.DB, order *models.Order, newStatus, note string) error {
	if !models.ValidStatus(newStatus) {
		return fmt.Errorf("%w: unknown status %q", utils.ErrInvalidState, newStatus)
	}
	if !models.CanTransition(order.Status, newStatus) {
		return fmt.Errorf("%w: cannot move from %s to %s", utils.ErrInvalidState, order.Status, newStatus)
	}

	oldStatus := order.Status
	now := time.Now()
	if note == "" {
		note = fmt.Sprintf("Status changed from %s to %s by admin", oldStatus, newStatus)
	}

	updates := map[string]interface{}{
		"status":  newStatus,
		"version": order.Version + 1,
	}
	// Entering completed sets the delivered pair atomically with the status
	if newStatus == models.OrderStatusCompleted {
		updates["is_delivered"] = true
		updates["delivered_at"] = now
	}

	res := db.Model(&models.Order{}).
		Where("id = ? AND version = ?", order.ID, order.Version).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: order %d was modified concurrently", utils.ErrConflict, order.ID)
	}

	entry := models.StatusHistoryEntry{
		OrderID:   order.ID,
		Status:    newStatus,
		Timestamp: now,
		Note:      note,
	}
	if err := db.Create(&entry).Error; err != nil {
		return err
	}

	order.Status = newStatus
	order.Version++
	if newStatus == models.OrderStatusCompleted {
		order.IsDelivered = true
		order.DeliveredAt = &now
	}
	order.StatusHistory = append(order.StatusHistory, entry)
	return nil
}

// CancelOrder is the one hard-guarded transition: legal only while the order is
// still pending or confirmed. Any other current status fails with
// utils.ErrInvalidState and leaves the order unchanged.
func CancelOrder(db *gorm.DB, order *models.Order, note string) error {
	if order.Status != models.OrderStatusPending && order.Status != models.OrderStatusConfirmed {
		return fmt.Errorf("%w: order cannot be cancelled at this stage", utils.ErrInvalidState)
	}
	if note == "" {
		note = "Order cancelled"
	}
	return TransitionOrder(db, order, models.OrderStatusCancelled, note)
}

// MarkOrderPaid records a successful (simulated) payment: isPaid and paidAt are
// set together, the synthesized payment result is stored, and the order advances
// to confirmed. Re-confirming an already-paid order is idempotent-safe: it
// returns nil without mutating the order again, so no duplicate history entry
// is written.
func MarkOrderPaid(db *gorm.DB, order *models.Order, result models.PaymentResult) error {
	if order.IsPaid {
		return nil
	}

	now := time.Now()
	updates := map[string]interface{}{
		"is_paid":               true,
		"paid_at":               now,
		"status":                models.OrderStatusConfirmed,
		"version":               order.Version + 1,
		"payment_id":            result.ID,
		"payment_status":        result.Status,
		"payment_update_time":   result.UpdateTime,
		"payment_email_address": result.EmailAddress,
		"payment_card_last4":    result.CardLast4,
		"payment_is_demo_mode":  result.IsDemoMode,
	}

	res := db.Model(&models.Order{}).
		Where("id = ? AND version = ?", order.ID, order.Version).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: order %d was modified concurrently", utils.ErrConflict, order.ID)
	}

	entry := models.StatusHistoryEntry{
		OrderID:   order.ID,
		Status:    models.OrderStatusConfirmed,
		Timestamp: now,
		Note:      "Payment confirmed",
	}
	if err := db.Create(&entry).Error; err != nil {
		return err
	}

	order.IsPaid = true
	order.PaidAt = &now
	order.PaymentResult = result
	order.Status = models.OrderStatusConfirmed
	order.Version++
	order.StatusHistory = append(order.StatusHistory, entry)
	return nil
}

// RefundOrder moves the order to refunded and records when and why. Used only
// by the payment refund flow.
func RefundOrder(db *gorm.DB, order *models.Order, reason string) error {
	if reason == "" {
		reason = "requested_by_customer"
	}

	now := time.Now()
	oldStatus := order.Status
	if !models.CanTransition(oldStatus, models.OrderStatusRefunded) {
		return fmt.Errorf("%w: cannot refund an order that is %s", utils.ErrInvalidState, oldStatus)
	}

	updates := map[string]interface{}{
		"status":        models.OrderStatusRefunded,
		"refunded_at":   now,
		"refund_reason": reason,
		"version":       order.Version + 1,
	}
	res := db.Model(&models.Order{}).
		Where("id = ? AND version = ?", order.ID, order.Version).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: order %d was modified concurrently", utils.ErrConflict, order.ID)
	}

	entry := models.StatusHistoryEntry{
		OrderID:   order.ID,
		Status:    models.OrderStatusRefunded,
		Timestamp: now,
		Note:      fmt.Sprintf("Refund processed: %s", reason),
	}
	if err := db.Create(&entry).Error; err != nil {
		return err
	}

	order.Status = models.OrderStatusRefunded
	order.RefundedAt = &now
	order.RefundReason = reason
	order.Version++
	order.StatusHistory = append(order.StatusHistory, entry)
	return nil
}
