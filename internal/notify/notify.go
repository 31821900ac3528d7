package notify

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/skyreserve/booking-service/internal/service/booking"
)

// Notifier turns booking lifecycle events into user notifications. The
// delivery channel is a log line for now; the worker feeds it from the
// notifications topic.
type Notifier struct {
	logger *logrus.Logger
}

func NewNotifier(logger *logrus.Logger) *Notifier {
	return &Notifier{logger: logger}
}

func (n *Notifier) Notify(_ context.Context, event booking.BookingEvent) error {
	n.logger.WithFields(logrus.Fields{
		"booking_id": event.BookingID,
		"user_id":    event.UserID,
		"flight_id":  event.FlightID,
		"status":     event.Status,
	}).Infof("notify user about %s", event.Type)
	return nil
}
