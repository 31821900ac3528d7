package domain

type BookingAction string

const (
	ActionPay    BookingAction = "pay"
	ActionCancel BookingAction = "cancel"
)

// transitions is the single authoritative table for booking status changes.
// Anything absent here is a conflict; callers must not check statuses inline.
var transitions = map[BookingStatus]map[BookingAction]BookingStatus{
	BookingStatusInitiated: {
		ActionPay:    BookingStatusBooked,
		ActionCancel: BookingStatusCancelled,
	},
	BookingStatusBooked: {
		ActionCancel: BookingStatusCancelled,
	},
}

// Transition returns the next status for (current, action) or a conflict
// error naming both. It is a pure function; preconditions that need I/O
// (expiry, amount checks) belong to the caller.
func Transition(current BookingStatus, action BookingAction) (BookingStatus, error) {
	if next, ok := transitions[current][action]; ok {
		return next, nil
	}
	switch {
	case current == BookingStatusBooked && action == ActionPay:
		return "", NewConflict("the booking is already confirmed", current, action)
	case current == BookingStatusCancelled:
		return "", NewConflict("the booking has already been cancelled", current, action)
	default:
		return "", NewConflict("action not allowed in current state", current, action)
	}
}

// CanCancel reports whether a booking in the given status still holds seats
// that a cancellation would have to release.
func CanCancel(current BookingStatus) bool {
	_, ok := transitions[current][ActionCancel]
	return ok
}
