// Package lifecycle holds the booking state machine.
package lifecycle

import "slotbook/pkg/model"

var transitions = map[model.BookingStatus][]model.BookingStatus{
	model.Pending:   {model.Confirmed, model.Cancelled},
	model.Confirmed: {model.Completed, model.Cancelled},
	model.Completed: {},
	model.Cancelled: {},
}

// providerOnly lists transitions the customer may not perform.
var providerOnly = map[[2]model.BookingStatus]bool{
	{model.Pending, model.Confirmed}:   true,
	{model.Confirmed, model.Completed}: true,
}

func IsKnown(s model.BookingStatus) bool {
	_, ok := transitions[s]
	return ok
}

// Successors returns the statuses directly reachable from s.
func Successors(s model.BookingStatus) []model.BookingStatus {
	next := transitions[s]
	out := make([]model.BookingStatus, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether to is a direct successor of from. Nothing
// leaves a terminal status.
func CanTransition(from, to model.BookingStatus) bool {
	if from.IsTerminal() {
		return false
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AllowedFor reports whether an actor with role may move a booking from -> to.
// The transition itself must already be valid.
func AllowedFor(role model.Role, from, to model.BookingStatus) bool {
	if providerOnly[[2]model.BookingStatus{from, to}] {
		return role == model.RoleProvider
	}
	return role == model.RoleProvider || role == model.RoleCustomer
}
