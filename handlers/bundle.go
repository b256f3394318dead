package handlers

import (
	userRepoPkg "rentx/database/repository/user"
	"rentx/services/booking"
	"rentx/services/car"
	"rentx/services/loyalty"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct for route
// registration.
type HandlerBundle struct {
	UserRepo userRepoPkg.UserRepository

	// Booking endpoints
	CreateBooking      gin.HandlerFunc
	CancelBooking      gin.HandlerFunc
	MarkPickedUp       gin.HandlerFunc
	MarkReturned       gin.HandlerFunc
	ExtendBooking      gin.HandlerFunc
	MarkPaid           gin.HandlerFunc
	GetBooking         gin.HandlerFunc
	ListMyBookings     gin.HandlerFunc
	ListActiveBookings gin.HandlerFunc
	ListOverdue        gin.HandlerFunc
	BookingStats       gin.HandlerFunc

	// Car endpoints
	ListAvailableCars gin.HandlerFunc
	GetCar            gin.HandlerFunc

	// Loyalty endpoints
	LoyaltyStatus gin.HandlerFunc
}

// NewHandlerBundle wires the handlers to their services.
func NewHandlerBundle(
	users userRepoPkg.UserRepository,
	bookings booking.BookingService,
	cars car.CarService,
	loyaltySvc *loyalty.Service,
) *HandlerBundle {
	return &HandlerBundle{
		UserRepo: users,

		CreateBooking:      CreateBookingHandler(bookings),
		CancelBooking:      CancelBookingHandler(bookings),
		MarkPickedUp:       MarkPickedUpHandler(bookings),
		MarkReturned:       MarkReturnedHandler(bookings),
		ExtendBooking:      ExtendBookingHandler(bookings),
		MarkPaid:           MarkPaidHandler(bookings),
		GetBooking:         GetBookingHandler(bookings),
		ListMyBookings:     ListMyBookingsHandler(bookings),
		ListActiveBookings: ListActiveBookingsHandler(bookings),
		ListOverdue:        ListOverdueBookingsHandler(bookings),
		BookingStats:       BookingStatsHandler(bookings),

		ListAvailableCars: ListAvailableCarsHandler(cars),
		GetCar:            GetCarHandler(cars),

		LoyaltyStatus: LoyaltyStatusHandler(loyaltySvc),
	}
}
