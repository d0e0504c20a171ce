package order

import "fmt"

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusPaid      Status = "PAID"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
	StatusRefunded  Status = "REFUNDED"
)

// transitions is the single source of truth for status legality.
// CANCELLED and REFUNDED are terminal and have no outgoing edges.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusShipped, StatusRefunded},
	StatusShipped:   {StatusDelivered},
	StatusDelivered: {StatusRefunded},
	StatusCancelled: {},
	StatusRefunded:  {},
}

// CanTransitionTo reports whether moving from s to target is legal.
// A status never transitions to itself.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s has no outgoing transitions.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// IsCancellable reports whether an order in this status may still be cancelled.
func (s Status) IsCancellable() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// ParseStatus converts a raw string (e.g. from a query parameter or a
// persisted row) into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown order status %q", raw)
	}
	return s, nil
}
