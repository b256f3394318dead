package booking

import (
	"context"
	"time"

	"rentx/models"
)

// ListFilter selects which of a user's bookings to return.
type ListFilter string

const (
	FilterAll       ListFilter = "ALL"
	FilterUpcoming  ListFilter = "UPCOMING"
	FilterActive    ListFilter = "ACTIVE"
	FilterCompleted ListFilter = "COMPLETED"
	FilterCancelled ListFilter = "CANCELLED"
)

// Stats are the admin-facing booking aggregates.
type Stats struct {
	Confirmed      int64   `json:"confirmed"`
	Active         int64   `json:"active"`
	Completed      int64   `json:"completed"`
	Cancelled      int64   `json:"cancelled"`
	PendingRefunds float64 `json:"pendingRefunds"`
}

// BookingService is the façade over the booking state machine. Every
// user-invoked operation takes the acting user id explicitly; staff
// operations pass an empty acting user to skip the ownership check.
type BookingService interface {
	CreateBooking(ctx context.Context, actingUserID string, req models.BookingRequest) (*models.BookingResponse, error)
	CancelBooking(ctx context.Context, actingUserID, bookingID, reason string) (*models.BookingResponse, error)
	MarkPickedUp(ctx context.Context, actingUserID, bookingID, notes string) (*models.BookingResponse, error)
	MarkReturned(ctx context.Context, actingUserID, bookingID string, extraCharges float64, notes string) (*models.BookingResponse, error)
	ExtendBooking(ctx context.Context, actingUserID, bookingID string, newEnd time.Time) (*models.BookingResponse, error)
	MarkPaid(ctx context.Context, bookingID string) (*models.BookingResponse, error)

	GetBooking(ctx context.Context, actingUserID, bookingID string) (*models.BookingResponse, error)
	ListUserBookings(ctx context.Context, actingUserID string, filter ListFilter) ([]models.BookingResponse, error)
	ListActiveBookings(ctx context.Context) ([]models.BookingResponse, error)
	ListOverdueBookings(ctx context.Context) ([]models.BookingResponse, error)
	GetStats(ctx context.Context) (*Stats, error)
}
