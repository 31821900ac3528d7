package domain

import "time"

type BookingStatus string

const (
	BookingStatusInitiated BookingStatus = "INITIATED"
	BookingStatusBooked    BookingStatus = "BOOKED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	// BookingStatusPending is declared in the schema but no transition
	// produces it yet.
	BookingStatusPending BookingStatus = "PENDING"
)

type Booking struct {
	ID        int64
	FlightID  int64
	UserID    int64
	Status    BookingStatus
	NoOfSeats int
	TotalCost int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Flight is the read model served by the remote inventory service. Seat
// counts and price are owned there; this service never stores them.
type Flight struct {
	ID         int64
	TotalSeats int
	PriceCents int64
}

// Receipt is the cached outcome of a successful payment. Replays with the
// same idempotency key get this exact value back.
type Receipt struct {
	ReceiptID string        `json:"receipt_id"`
	BookingID int64         `json:"booking_id"`
	UserID    int64         `json:"user_id"`
	Amount    int64         `json:"amount"`
	Status    BookingStatus `json:"status"`
	PaidAt    time.Time     `json:"paid_at"`
}

type CancellationResult struct {
	BookingID int64
	Released  int
}

type ReapStatus string

const (
	ReapStatusCancelled ReapStatus = "cancelled"
	ReapStatusFailed    ReapStatus = "failed"
)

type ReapOutcome struct {
	BookingID int64
	Status    ReapStatus
	Error     string
}

type BatchResult struct {
	Total     int
	Succeeded int
	Failed    int
	Outcomes  []ReapOutcome
}
