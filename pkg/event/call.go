package event

import "time"

const (
	BridgeCallsTopic    = "bod.calls"
	EventCallDispatched = "bod.call.dispatched"
	EventOrderRejected  = "bod.order.rejected"
)

// CallDispatchedEvent represents a staff call created upstream for an inbound
// drink order, published to NATS for downstream reporting.
type CallDispatchedEvent struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	Drink      string    `json:"drink"`
	Location   string    `json:"location"`
	ZoneID     *int      `json:"zone_id"`

	// Denormalized call data for display
	CallID          int    `json:"call_id"`
	CallDescription string `json:"call_description,omitempty"`
	Description     string `json:"description"`
}

// OrderRejectedEvent represents an inbound order that failed before a call
// could be created, with the pipeline stage that rejected it.
type OrderRejectedEvent struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	Stage      string    `json:"stage"`
	Reason     string    `json:"reason"`
	BodySize   int       `json:"body_size"`
}
