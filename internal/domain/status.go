package domain

import "fmt"

// Status is the production workflow state of an order. Orders only move
// forward along RECEIVED -> PREPARING -> DONE -> DELIVERED; no skips,
// no reversals, no self-transition.
type Status string

const (
	StatusReceived  Status = "RECEIVED"
	StatusPreparing Status = "PREPARING"
	StatusDone      Status = "DONE"
	StatusDelivered Status = "DELIVERED"
)

// statusTransitions maps each status to its permitted successors.
// DELIVERED is terminal.
var statusTransitions = map[Status][]Status{
	StatusReceived:  {StatusPreparing},
	StatusPreparing: {StatusDone},
	StatusDone:      {StatusDelivered},
	StatusDelivered: {},
}

func (s Status) String() string {
	return string(s)
}

// IsValid reports whether s is one of the known workflow statuses.
func (s Status) IsValid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// AllowedNext returns the statuses s may transition to. Empty for DELIVERED
// and for unknown statuses.
func (s Status) AllowedNext() []Status {
	return statusTransitions[s]
}

// CanTransitionTo reports whether the move from s to target is permitted.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range statusTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// ParseStatus converts a raw string into a Status, rejecting unknown values.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}

// ActiveStatuses lists the statuses of orders still in production,
// i.e. everything before DELIVERED.
func ActiveStatuses() []Status {
	return []Status{StatusReceived, StatusPreparing, StatusDone}
}
