package models

// ReminderPayload is what the scheduler enqueues for deferred delivery.
// The worker decodes it and hands it to the notifier.
type ReminderPayload struct {
	ReminderID string `json:"reminderId"`
	UserID     string `json:"userId"`
	BookingID  string `json:"bookingId"`
	Event      string `json:"event"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	FireDate   string `json:"fireDate"`
}
