package booking

import (
	"strconv"
	"time"
)

// BookingEvent is the lifecycle message published after a committed state
// change: booking_created, booking_confirmed, booking_cancelled.
type BookingEvent struct {
	Type       string    `json:"type"`
	BookingID  int64     `json:"booking_id"`
	FlightID   int64     `json:"flight_id"`
	UserID     int64     `json:"user_id"`
	NoOfSeats  int       `json:"no_of_seats"`
	TotalCost  int64     `json:"total_cost"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

func eventKey(bookingID int64) string {
	return strconv.FormatInt(bookingID, 10)
}
