package avro

// OrderEventSchema is the Avro schema for order lifecycle events. Monetary
// amounts travel as decimal strings so no precision is lost on the wire;
// reason is a union because only cancellations carry one.
const OrderEventSchema = `{
	"type": "record",
	"name": "OrderEvent",
	"namespace": "com.ecommerce.order",
	"fields": [
		{"name": "event_type", "type": "string"},
		{"name": "order_id", "type": "string"},
		{"name": "customer_id", "type": "string"},
		{"name": "status", "type": "string"},
		{"name": "total_amount", "type": "string"},
		{"name": "final_amount", "type": "string"},
		{"name": "reason", "type": ["null", "string"], "default": null},
		{"name": "occurred_at", "type": "string"}
	]
}`
