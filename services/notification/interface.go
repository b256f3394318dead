package notification

import (
	"context"

	"rentx/models"
)

// Event identifies what happened to a booking. One push per event.
type Event string

const (
	EventBookingConfirmed   Event = "booking_confirmed"
	EventBookingCancelled   Event = "booking_cancelled"
	EventPickupConfirmed    Event = "pickup_confirmed"
	EventReturnConfirmed    Event = "return_confirmed"
	EventExtensionConfirmed Event = "extension_confirmed"
	EventPaymentConfirmed   Event = "payment_confirmed"
	EventRefundProcessed    Event = "refund_processed"
	EventRefundFailed       Event = "refund_failed"
	EventPickupReminder     Event = "pickup_reminder"
	EventDayAheadReminder   Event = "day_ahead_reminder"
)

// Notifier delivers booking events to users. Delivery is best effort:
// callers log the returned error and move on, it never rolls back a
// state transition.
type Notifier interface {
	Notify(ctx context.Context, userID string, event Event, b *models.Booking, data map[string]string) error
}
