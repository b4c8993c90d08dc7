package model

import "fmt"

// Status is the workflow status shown to the user.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// State combines workflow status and settlement into one value so that a
// pending transaction can never be marked as settled.
//
//	pending  -> status=pending, isPaid=false
//	charged  -> status=paid,    isPaid=false (on the card, debt not settled)
//	settled  -> status=paid,    isPaid=true  (money moved)
type State string

const (
	StatePending State = "pending"
	StateCharged State = "charged"
	StateSettled State = "settled"
)

// Status returns the workflow status for s.
func (s State) Status() Status {
	if s == StatePending {
		return StatusPending
	}
	return StatusPaid
}

// IsPaid reports whether s represents settled money.
func (s State) IsPaid() bool { return s == StateSettled }

// Unsettled returns s with settlement cleared. Projected future instances use it.
func (s State) Unsettled() State {
	if s == StateSettled {
		return StateCharged
	}
	return s
}

// ParseState validates a stored state name.
func ParseState(s string) (State, error) {
	switch State(s) {
	case StatePending, StateCharged, StateSettled:
		return State(s), nil
	}
	return "", fmt.Errorf("unknown state %q", s)
}

// StateOf maps the two stored flags to a State.
func StateOf(status Status, isPaid bool) (State, error) {
	switch {
	case status == StatusPending && !isPaid:
		return StatePending, nil
	case status == StatusPending && isPaid:
		return "", fmt.Errorf("pending transaction cannot be paid")
	case status == StatusPaid && isPaid:
		return StateSettled, nil
	case status == StatusPaid:
		return StateCharged, nil
	}
	return "", fmt.Errorf("unknown status %q", status)
}
