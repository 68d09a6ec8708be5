package domain

import "fmt"

type Status string

const (
	StatusPending   Status = "pending"   // Créé
	StatusConfirmed Status = "confirmed" // Pris en charge
	StatusShipped   Status = "shipped"   // En transit
	StatusArrived   Status = "arrived"   // Arrivé
	StatusDelivered Status = "delivered" // Livré
	StatusCancelled Status = "cancelled" // Annulé
)

var Statuses = []Status{StatusPending, StatusConfirmed, StatusShipped, StatusArrived, StatusDelivered, StatusCancelled}

func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", Invalidf("unknown status %q", s)
}

// Transitions lists, per state, the moves that need no confirmation.
type Transitions map[Status][]Status

// DefaultTransitions is the forward delivery flow; any non-terminal state may
// be cancelled.
var DefaultTransitions = Transitions{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusArrived, StatusCancelled},
	StatusArrived:   {StatusDelivered, StatusCancelled},
}

// ErrNeedsConfirmation is returned for a move outside the table. Callers may
// repeat the request with an explicit confirmation to force it.
var ErrNeedsConfirmation = &Error{Kind: KindConflict, Message: "transition requires confirmation"}

// StatusMachine checks status moves against a configurable table. Moves off
// the table are flagged, never refused outright.
type StatusMachine struct {
	table Transitions
}

func NewStatusMachine(t Transitions) *StatusMachine {
	if t == nil {
		t = DefaultTransitions
	}
	return &StatusMachine{table: t}
}

func (m *StatusMachine) Allowed(from, to Status) bool {
	if from == to {
		return true
	}
	for _, s := range m.table[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Check returns ErrNeedsConfirmation for an unlisted move unless confirmed.
// The second result reports whether the move was an override.
func (m *StatusMachine) Check(from, to Status, confirmed bool) (bool, error) {
	if m.Allowed(from, to) {
		return false, nil
	}
	if !confirmed {
		return false, fmt.Errorf("%s -> %s: %w", from, to, ErrNeedsConfirmation)
	}
	return true, nil
}
