package avro

import "time"

// Event types emitted over the order-events topic, one per completed use
// case.
const (
	EventOrderCreated   = "order_created"
	EventOrderConfirmed = "order_confirmed"
	EventOrderPaid      = "order_paid"
	EventOrderShipped   = "order_shipped"
	EventOrderDelivered = "order_delivered"
	EventOrderCancelled = "order_cancelled"
	EventOrderRefunded  = "order_refunded"
)

// OrderEvent matches OrderEventSchema.
type OrderEvent struct {
	EventType   string
	OrderID     string
	CustomerID  string
	Status      string
	TotalAmount string
	FinalAmount string
	Reason      string
	OccurredAt  time.Time
}

// Native maps the event into goavro's native form. Union members are wrapped
// the way goavro expects them.
func (e OrderEvent) Native() map[string]interface{} {
	var reason interface{}
	if e.Reason != "" {
		reason = map[string]interface{}{"string": e.Reason}
	}
	return map[string]interface{}{
		"event_type":   e.EventType,
		"order_id":     e.OrderID,
		"customer_id":  e.CustomerID,
		"status":       e.Status,
		"total_amount": e.TotalAmount,
		"final_amount": e.FinalAmount,
		"reason":       reason,
		"occurred_at":  e.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
}
