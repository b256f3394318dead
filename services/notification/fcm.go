package notification

import (
	"context"
	"fmt"

	userRepo "rentx/database/repository/user"
	"rentx/models"
	"rentx/utils"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// FCMNotifier is the production Notifier: it looks up the user's FCM
// token and sends a push.
type FCMNotifier struct {
	Users  userRepo.UserRepository
	Logger *zap.Logger
}

func (n *FCMNotifier) Notify(ctx context.Context, userID string, event Event, b *models.Booking, data map[string]string) error {
	user, err := n.Users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("notify: could not find user %s: %w", userID, err)
	}
	if user == nil || user.FCMToken == "" {
		return fmt.Errorf("notify: user %s has no FCM token", userID)
	}

	title, body := renderEvent(event, b)
	if data == nil {
		data = map[string]string{}
	}
	data["event"] = string(event)
	if b != nil {
		data["bookingId"] = b.ID
	}

	msg := &messaging.Message{
		Token: user.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: failed to send FCM message: %w", err)
	}

	n.Logger.Debug("notification sent",
		zap.String("userId", userID),
		zap.String("event", string(event)))
	return nil
}

// renderEvent produces the push title and body for an event.
func renderEvent(event Event, b *models.Booking) (string, string) {
	switch event {
	case EventBookingConfirmed:
		return "Booking confirmed",
			fmt.Sprintf("Your rental from %s to %s is confirmed. Total: %.2f.",
				b.StartDate.Format("Jan 2"), b.EndDate.Format("Jan 2"), b.TotalPrice)
	case EventBookingCancelled:
		if b.RefundAmount > 0 {
			return "Booking cancelled",
				fmt.Sprintf("Your booking was cancelled. A refund of %.2f is being processed.", b.RefundAmount)
		}
		return "Booking cancelled", "Your booking was cancelled."
	case EventPickupConfirmed:
		return "Pickup confirmed",
			fmt.Sprintf("Enjoy the ride! Please return the car by %s.", b.EndDate.Format("Jan 2, 15:04"))
	case EventReturnConfirmed:
		if b.LateReturnPenalty > 0 {
			return "Return confirmed",
				fmt.Sprintf("Car returned. A late-return penalty of %.2f was added. Final total: %.2f.",
					b.LateReturnPenalty, b.TotalPrice)
		}
		return "Return confirmed", fmt.Sprintf("Car returned. Final total: %.2f.", b.TotalPrice)
	case EventExtensionConfirmed:
		return "Booking extended",
			fmt.Sprintf("Your rental now ends %s. Updated total: %.2f.",
				b.EndDate.Format("Jan 2, 15:04"), b.TotalPrice)
	case EventPaymentConfirmed:
		return "Payment received", fmt.Sprintf("We received your payment of %.2f. You're all set.", b.TotalPrice)
	case EventRefundProcessed:
		return "Refund processed", fmt.Sprintf("Your refund of %.2f has been processed.", b.RefundAmount)
	case EventRefundFailed:
		return "Refund delayed", "We hit a snag processing your refund. We'll retry shortly."
	case EventPickupReminder:
		return "Pickup reminder",
			fmt.Sprintf("Your rental starts at %s. Please bring your driver's license.", b.StartDate.Format("15:04"))
	case EventDayAheadReminder:
		return "Your rental starts tomorrow",
			fmt.Sprintf("Pickup is at %s. See you then!", b.StartDate.Format("Jan 2, 15:04"))
	default:
		return "Booking update", "There's an update on your booking."
	}
}
