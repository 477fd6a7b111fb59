package events

import (
	"time"

	"github.com/jshan/storefront-backend/internal/app/model"
)

// OrderStatusChanged is published after every committed status transition.
// This is the contract consumed by the fulfillment notifier and any other
// downstream subscriber; it carries everything needed to react without a
// read-back.
type OrderStatusChanged struct {
	EventID        string            `json:"event_id"`
	OrderID        uint              `json:"order_id"`
	UserID         uint              `json:"user_id"`
	PreviousStatus model.OrderStatus `json:"previous_status"`
	NewStatus      model.OrderStatus `json:"new_status"`
	OccurredAt     time.Time         `json:"occurred_at"`
}
