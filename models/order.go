package models

import (
	"time"

	"gorm.io/gorm"
)

// Order status values. "refunded" is reachable only through the refund flow but
// is part of the enum so every status the system ever writes is declared.
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusInProgress = "in-progress"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
	OrderStatusRefunded   = "refunded"
)

// OrderStatuses lists every declared status
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusInProgress,
	OrderStatusCompleted,
	OrderStatusCancelled,
	OrderStatusRefunded,
}

// PaymentMethods is the closed set of accepted payment methods
var PaymentMethods = []string{"stripe", "cod", "razorpay", "card"}

// StatusTransitions is the order status transition table. Admin updates are
// deliberately permissive ("set on demand"); cancellation is the one
// hard-guarded transition and is legal only from pending or confirmed.
var StatusTransitions = map[string][]string{
	OrderStatusPending:    {OrderStatusPending, OrderStatusConfirmed, OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefunded},
	OrderStatusConfirmed:  {OrderStatusPending, OrderStatusConfirmed, OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefunded},
	OrderStatusInProgress: {OrderStatusPending, OrderStatusConfirmed, OrderStatusInProgress, OrderStatusCompleted, OrderStatusRefunded},
	OrderStatusCompleted:  {OrderStatusPending, OrderStatusConfirmed, OrderStatusInProgress, OrderStatusCompleted, OrderStatusRefunded},
	OrderStatusCancelled:  {OrderStatusPending, OrderStatusConfirmed, OrderStatusInProgress, OrderStatusCompleted, OrderStatusRefunded},
	OrderStatusRefunded:   {OrderStatusPending, OrderStatusConfirmed, OrderStatusInProgress, OrderStatusCompleted},
}

// ValidStatus reports whether s is a declared order status
func ValidStatus(s string) bool {
	for _, status := range OrderStatuses {
		if status == s {
			return true
		}
	}
	return false
}

// CanTransition consults the transition table
func CanTransition(from, to string) bool {
	for _, allowed := range StatusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidPaymentMethod reports whether m is an accepted payment method
func ValidPaymentMethod(m string) bool {
	for _, method := range PaymentMethods {
		if method == m {
			return true
		}
	}
	return false
}

// ShippingAddress is the pickup/delivery address embedded in an order
type ShippingAddress struct {
	Name         string `gorm:"not null" json:"name"`
	Phone        string `gorm:"not null" json:"phone"`
	Street       string `gorm:"not null" json:"street"`
	City         string `gorm:"not null" json:"city"`
	State        string `gorm:"not null" json:"state"`
	ZipCode      string `gorm:"not null" json:"zipCode"`
	Country      string `gorm:"default:'India'" json:"country"`
	Instructions string `json:"instructions"`
}

// PaymentResult is the recorded outcome of a (simulated) payment, embedded in an order
type PaymentResult struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address"`
	CardLast4    string `json:"cardLast4"`
	IsDemoMode   bool   `json:"isDemoMode"`
}

// OrderItem is one line of an order. Price and subtotal are snapshots supplied
// by the client at checkout; later catalog changes never alter them.
type OrderItem struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	OrderID     uint           `gorm:"not null;index" json:"-"`
	ServiceID   uint           `gorm:"not null;index" json:"serviceId"`
	Service     *Service       `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	ServiceType string         `gorm:"not null" json:"serviceType"` // open string key, e.g. wash/iron/dryClean/washAndIron
	Quantity    int            `gorm:"not null;check:quantity >= 1" json:"quantity"`
	Price       float64        `gorm:"not null;check:price >= 0" json:"price"`
	Subtotal    float64        `gorm:"not null;check:subtotal >= 0" json:"subtotal"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// StatusHistoryEntry is one record of the append-only order status audit log
type StatusHistoryEntry struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	OrderID   uint      `gorm:"not null;index" json:"-"`
	Status    string    `gorm:"not null" json:"status"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
	Note      string    `json:"note"`
}

// TableName specifies the table name for the StatusHistoryEntry model
func (StatusHistoryEntry) TableName() string {
	return "order_status_history"
}

// Order is the central entity: a customer's laundry request tracked through a
// status lifecycle to completion or cancellation. Orders are never physically
// deleted; cancellation and refund are statuses, not deletes.
type Order struct {
	ID                  uint                 `gorm:"primaryKey" json:"id"`
	UserID              uint                 `gorm:"not null;index" json:"userId"` // immutable after creation
	User                *User                `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OrderItems          []OrderItem          `gorm:"foreignKey:OrderID" json:"orderItems"`
	ShippingAddress     ShippingAddress      `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingAddress"`
	PaymentMethod       string               `gorm:"not null;default:'card'" json:"paymentMethod"`
	PaymentResult       PaymentResult        `gorm:"embedded;embeddedPrefix:payment_" json:"paymentResult"`
	ItemsPrice          float64              `gorm:"not null;default:0;check:items_price >= 0" json:"itemsPrice"`
	ShippingPrice       float64              `gorm:"not null;default:0;check:shipping_price >= 0" json:"shippingPrice"`
	TaxPrice            float64              `gorm:"not null;default:0;check:tax_price >= 0" json:"taxPrice"`
	TotalPrice          float64              `gorm:"not null;default:0;check:total_price >= 0" json:"totalPrice"`
	IsPaid              bool                 `gorm:"not null;default:false" json:"isPaid"`
	PaidAt              *time.Time           `json:"paidAt,omitempty"` // set together with IsPaid
	Status              string               `gorm:"not null;index;default:'pending'" json:"status"`
	StatusHistory       []StatusHistoryEntry `gorm:"foreignKey:OrderID" json:"statusHistory"`
	PickupDate          *time.Time           `json:"pickupDate,omitempty"`
	DeliveryDate        *time.Time           `json:"deliveryDate,omitempty"`
	EstimatedDelivery   *time.Time           `json:"estimatedDelivery,omitempty"`
	SpecialInstructions string               `json:"specialInstructions"`
	IsDelivered         bool                 `gorm:"not null;default:false" json:"isDelivered"`
	DeliveredAt         *time.Time           `json:"deliveredAt,omitempty"` // set together with IsDelivered
	RefundedAt          *time.Time           `json:"refundedAt,omitempty"`
	RefundReason        string               `json:"refundReason,omitempty"`
	Version             uint                 `gorm:"not null;default:1" json:"-"` // optimistic concurrency token
	CreatedAt           time.Time            `json:"createdAt"`
	UpdatedAt           time.Time            `json:"updatedAt"`
	DeletedAt           gorm.DeletedAt       `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// BeforeCreate defaults the estimated delivery to 48 hours after creation
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.EstimatedDelivery == nil {
		est := time.Now().Add(48 * time.Hour)
		o.EstimatedDelivery = &est
	}
	if o.Version == 0 {
		o.Version = 1
	}
	return nil
}
