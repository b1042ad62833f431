package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus mirrors the checkout subsystem's state machine. The core only
// reads it to gate sellability and never advances it.
type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderPaid       OrderStatus = "PAID"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
	OrderRefunded   OrderStatus = "REFUNDED"
)

// IsBlocking reports whether an order in this status holds its pulls, making
// them unsellable until the order leaves the blocking set.
func (s OrderStatus) IsBlocking() bool {
	switch s {
	case OrderPaid, OrderProcessing, OrderShipped, OrderDelivered:
		return true
	}
	return false
}

// Order is a checkout hold referencing pulls through order items.
type Order struct {
	ID        uuid.UUID   `json:"id"`
	AccountID uuid.UUID   `json:"account_id"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// OrderItem is one line of an order, referencing a pull.
type OrderItem struct {
	ID      uuid.UUID `json:"id"`
	OrderID uuid.UUID `json:"order_id"`
	PullID  uuid.UUID `json:"pull_id"`
}

// CartItem is a pre-checkout hold. At most one cart entry may reference a pull.
type CartItem struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"account_id"`
	PullID    uuid.UUID `json:"pull_id"`
	CreatedAt time.Time `json:"created_at"`
}
