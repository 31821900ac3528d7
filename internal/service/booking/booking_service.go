package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/skyreserve/booking-service/internal/domain"
	"github.com/skyreserve/booking-service/internal/ledger"
	"github.com/skyreserve/booking-service/internal/monitoring"
	"github.com/skyreserve/booking-service/internal/repository"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	MakePayment(ctx context.Context, input PaymentInput) (*domain.Receipt, error)
	CancelBooking(ctx context.Context, bookingID int64) (*domain.CancellationResult, error)
	ReapExpired(ctx context.Context) (*domain.BatchResult, error)
}

// FlightInventory is the remote seat-count authority. Reserve and Release
// are the saga's compensation pair: every committed reservation has exactly
// one Reserve behind it, every committed cancellation exactly one Release.
type FlightInventory interface {
	GetFlight(ctx context.Context, flightID int64) (*domain.Flight, error)
	ReserveSeats(ctx context.Context, flightID int64, seats int) error
	ReleaseSeats(ctx context.Context, flightID int64, seats int) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CreateBookingInput struct {
	FlightID  int64 `json:"flight_id"`
	UserID    int64 `json:"user_id"`
	NoOfSeats int   `json:"no_of_seats"`
}

type PaymentInput struct {
	BookingID      int64
	UserID         int64
	TotalCost      int64
	IdempotencyKey string
}

type BookingService struct {
	store         repository.BookingStore
	inventory     FlightInventory
	ledger        ledger.Ledger
	producer      Producer
	logger        *logrus.Logger
	bookingTopic  string
	paymentExpiry time.Duration
	now           func() time.Time
}

type BookingServiceOption func(*BookingService)

// WithClock overrides the service clock. Tests use it to age bookings past
// the payment window.
func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func WithBookingTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.bookingTopic = topic
	}
}

func NewBookingService(
	store repository.BookingStore,
	inventory FlightInventory,
	idemLedger ledger.Ledger,
	producer Producer,
	logger *logrus.Logger,
	paymentExpiry time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		store:         store,
		inventory:     inventory,
		ledger:        idemLedger,
		producer:      producer,
		logger:        logger,
		paymentExpiry: paymentExpiry,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking reserves seats on a flight. The booking row and the remote
// seat decrement are decided together: the row commits only after the
// inventory service accepted the decrement, and an inventory failure rolls
// the row back. A crash between the two leaves an INITIATED booking that
// the expiry sweep cancels.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if input.NoOfSeats <= 0 {
		return nil, domain.NewValidation("number of seats must be positive")
	}
	if input.FlightID <= 0 || input.UserID <= 0 {
		return nil, domain.NewValidation("flight id and user id are required")
	}

	flight, err := s.inventory.GetFlight(ctx, input.FlightID)
	if err != nil {
		return nil, err
	}
	if input.NoOfSeats > flight.TotalSeats {
		return nil, domain.NewValidation("not enough seats available")
	}

	totalCost := int64(input.NoOfSeats) * flight.PriceCents

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	booking := &domain.Booking{
		FlightID:  input.FlightID,
		UserID:    input.UserID,
		Status:    domain.BookingStatusInitiated,
		NoOfSeats: input.NoOfSeats,
		TotalCost: totalCost,
	}
	if err := s.store.Create(ctx, tx, booking); err != nil {
		return nil, err
	}

	if err := s.inventory.ReserveSeats(ctx, input.FlightID, input.NoOfSeats); err != nil {
		s.logger.WithError(err).WithField("flight_id", input.FlightID).Error("seat reservation failed, rolling back booking")
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.NewInternal("commit booking", err)
	}

	monitoring.BookingCreated()
	s.publish(ctx, "booking_created", booking)
	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"flight_id":  booking.FlightID,
		"seats":      booking.NoOfSeats,
		"total_cost": booking.TotalCost,
	}).Info("booking created")
	return booking, nil
}

// MakePayment confirms a booking. Replaying a key that already paid returns
// the cached receipt without touching booking state; the key alone names
// the logical operation, so a replay with a different payload still gets
// the original receipt.
func (s *BookingService) MakePayment(ctx context.Context, input PaymentInput) (*domain.Receipt, error) {
	if input.IdempotencyKey == "" {
		return nil, domain.NewValidation("idempotency key is required")
	}

	unlock, err := s.ledger.Lock(ctx, input.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if cached, ok, err := s.ledger.Get(ctx, input.IdempotencyKey); err != nil {
		return nil, err
	} else if ok {
		s.logger.WithField("booking_id", cached.BookingID).Info("payment replay served from ledger")
		monitoring.PaymentProcessed("replayed")
		return cached, nil
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	booking, err := s.store.Get(ctx, tx, input.BookingID)
	if err != nil {
		return nil, err
	}

	next, err := domain.Transition(booking.Status, domain.ActionPay)
	if err != nil {
		monitoring.PaymentProcessed("rejected")
		return nil, err
	}

	if s.now().Sub(booking.CreatedAt) > s.paymentExpiry {
		// Release the row lock before cancelling: the cancellation runs in
		// its own transaction through the regular path.
		_ = tx.Rollback(ctx)
		if _, cancelErr := s.CancelBooking(ctx, input.BookingID); cancelErr != nil {
			s.logger.WithError(cancelErr).WithField("booking_id", input.BookingID).Error("failed to cancel expired booking")
		}
		monitoring.PaymentProcessed("expired")
		return nil, domain.NewValidation("the booking has expired")
	}

	if booking.TotalCost != input.TotalCost {
		monitoring.PaymentProcessed("rejected")
		return nil, domain.NewValidation("payment amount mismatch")
	}
	if booking.UserID != input.UserID {
		monitoring.PaymentProcessed("rejected")
		return nil, domain.NewValidation("user does not match the booking")
	}

	updated, err := s.store.UpdateStatus(ctx, tx, input.BookingID, next)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.NewInternal("commit payment", err)
	}

	receipt := &domain.Receipt{
		ReceiptID: uuid.NewString(),
		BookingID: updated.ID,
		UserID:    updated.UserID,
		Amount:    updated.TotalCost,
		Status:    updated.Status,
		PaidAt:    s.now(),
	}
	// A lost ledger write cannot be rolled back here: the payment is
	// committed. A replay then hits the already-confirmed conflict instead
	// of the cache.
	if err := s.ledger.Put(ctx, input.IdempotencyKey, receipt); err != nil {
		s.logger.WithError(err).WithField("booking_id", updated.ID).Error("failed to record payment in idempotency ledger")
	}

	monitoring.PaymentProcessed("succeeded")
	s.publish(ctx, "booking_confirmed", updated)
	s.logger.WithFields(logrus.Fields{
		"booking_id": updated.ID,
		"receipt_id": receipt.ReceiptID,
		"amount":     receipt.Amount,
	}).Info("payment processed")
	return receipt, nil
}

// CancelBooking moves a live booking to CANCELLED and releases its seats
// back to the flight. The release call happens inside the transaction
// window: if it fails the whole cancellation unwinds and the caller may
// retry, the booking still holding its pre-cancel state.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID int64) (*domain.CancellationResult, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	booking, err := s.store.Get(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}

	next, err := domain.Transition(booking.Status, domain.ActionCancel)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateStatus(ctx, tx, bookingID, next)
	if err != nil {
		return nil, err
	}

	if err := s.inventory.ReleaseSeats(ctx, booking.FlightID, booking.NoOfSeats); err != nil {
		s.logger.WithError(err).WithField("booking_id", bookingID).Error("seat release failed, rolling back cancellation")
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.NewInternal("commit cancellation", err)
	}

	monitoring.BookingCancelled()
	s.publish(ctx, "booking_cancelled", updated)
	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"seats":      booking.NoOfSeats,
	}).Info("booking cancelled")
	return &domain.CancellationResult{BookingID: bookingID, Released: booking.NoOfSeats}, nil
}

// ReapExpired cancels every INITIATED booking older than the payment
// window. Each booking is its own transaction: one failure is recorded and
// the sweep moves on. An empty candidate set is a successful no-op.
func (s *BookingService) ReapExpired(ctx context.Context) (*domain.BatchResult, error) {
	started := s.now()
	cutoff := started.Add(-s.paymentExpiry)

	candidates, err := s.store.ListByStatusBefore(ctx, nil, domain.BookingStatusInitiated, cutoff)
	if err != nil {
		return nil, err
	}

	result := &domain.BatchResult{Total: len(candidates)}
	for _, b := range candidates {
		if _, err := s.CancelBooking(ctx, b.ID); err != nil {
			result.Failed++
			result.Outcomes = append(result.Outcomes, domain.ReapOutcome{
				BookingID: b.ID,
				Status:    domain.ReapStatusFailed,
				Error:     err.Error(),
			})
			s.logger.WithError(err).WithField("booking_id", b.ID).Warn("failed to cancel expired booking")
			continue
		}
		result.Succeeded++
		result.Outcomes = append(result.Outcomes, domain.ReapOutcome{
			BookingID: b.ID,
			Status:    domain.ReapStatusCancelled,
		})
	}

	monitoring.ReapSweep(result.Succeeded, result.Failed, time.Since(started))
	if result.Total > 0 {
		s.logger.WithFields(logrus.Fields{
			"total":     result.Total,
			"succeeded": result.Succeeded,
			"failed":    result.Failed,
		}).Info("expired bookings swept")
	}
	return result, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := BookingEvent{
		Type:       eventType,
		BookingID:  booking.ID,
		FlightID:   booking.FlightID,
		UserID:     booking.UserID,
		NoOfSeats:  booking.NoOfSeats,
		TotalCost:  booking.TotalCost,
		Status:     string(booking.Status),
		OccurredAt: s.now(),
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, eventKey(booking.ID), event); err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.ID).Warnf("failed to publish %s event", eventType)
	}
}

var _ BookingUseCase = (*BookingService)(nil)
