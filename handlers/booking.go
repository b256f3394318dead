package handlers

import (
	"net/http"
	"time"

	"rentx/models"
	"rentx/services/booking"
	"rentx/utils"

	"github.com/gin-gonic/gin"
)

// httpStatus maps booking error codes onto HTTP statuses. Unknown codes
// fall through to 500.
func httpStatus(err error) int {
	switch booking.ErrCode(err) {
	case booking.CodeNotFound:
		return http.StatusNotFound
	case booking.CodeForbidden:
		return http.StatusForbidden
	case booking.CodeInvalidDuration:
		return http.StatusBadRequest
	case booking.CodeConflict,
		booking.CodeAlreadyCancelled,
		booking.CodeAlreadyStarted,
		booking.CodeAlreadyCompleted,
		booking.CodeInvalidCancellation,
		booking.CodeInvalidExtension,
		booking.CodeInvalidState:
		return http.StatusConflict
	case booking.CodeRefundFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func bookingError(c *gin.Context, err error) {
	status := httpStatus(err)
	if status == http.StatusInternalServerError {
		utils.JSONError(c, status, "Booking operation failed", err.Error())
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": booking.ErrCode(err)})
}

// actingUser returns the authenticated user's id, or the empty string on
// staff routes where the admin middleware ran instead.
func actingUser(c *gin.Context) string {
	return c.GetString("userID")
}

// CreateBookingHandler reserves a car for the authenticated user.
func CreateBookingHandler(svc booking.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}

		resp, err := svc.CreateBooking(c.Request.Context(), actingUser(c), req)
		if err != nil {
			bookingError(c, err)
			return
		}
		c.JSON(http.StatusCreated, resp)
	}
}

// CancelBookingHandler cancels a confirmed booking before pickup.
func CancelBookingHandler(svc booking.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Reason string `json:"reason"`
		}
		// Reason is optional; an empty body is fine.
		_ = c.ShouldBindJSON(&input)

		resp, err := svc.CancelBooking(c.Request.Context(), actingUser(c), c.Param("id"), input.Reason)
		if err != nil {
			bookingError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// MarkPickedUpHandler records the physical handover of the car.
func MarkPickedUpHandler(svc booking.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Notes string `json:"notes"`
		}
		_ = c.ShouldBindJSON(&input)

		resp, err := svc.MarkPickedUp(c.Request.Context(), actingUser(c), c.Param("id"), input.Notes)
		if err != nil {
			bookingError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// MarkReturnedHandler records the return of the car, applying any late
// penalty and extra charges.
func MarkReturnedHandler(svc booking.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			ExtraCharges float64 `json:"extraCharges"`
			Notes        string  `json:"notes"`
		}
		_ = c.ShouldBindJSON(&input)
		if input.ExtraCharges < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "extraCharges must not be negative"})
			return
		}

		resp, err := svc.MarkReturned(c.Request.Context(), actingUser(c), c.Param("id"), input.ExtraCharges, input.Notes)
		if err != nil {
			bookingError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ExtendBookingHandler pushes an active booking's end date out.
func ExtendBookingHandler(svc booking.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			NewEndDate time.Time `json:"newEndDate" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}

		resp, err := svc.ExtendBooking(c.Request.Context(), actingUser(c), c.Param("id"), input.NewEndDate)
		if err != nil {
			bookingError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// MarkPaidHandler records a completed online payment. Staff-only: the
// payment provider callback path lands here.
func MarkPaidHandler(svc booking.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := svc.MarkPaid(c.Request.Context(), c.Param("id"))
		if err != nil {
			bookingError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// GetBookingHandler returns one booking, owner or staff only.
func GetBookingHandler(svc booking.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := svc.GetBooking(c.Request.Context(), actingUser(c), c.Param("id"))
		if err != nil {
			bookingError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ListMyBookingsHandler lists the caller's bookings, optionally filtered
// via ?filter=UPCOMING|ACTIVE|COMPLETED|CANCELLED.
func ListMyBookingsHandler(svc booking.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := booking.ListFilter(c.DefaultQuery("filter", string(booking.FilterAll)))
		switch filter {
		case booking.FilterAll, booking.FilterUpcoming, booking.FilterActive,
			booking.FilterCompleted, booking.FilterCancelled:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown filter"})
			return
		}

		resp, err := svc.ListUserBookings(c.Request.Context(), actingUser(c), filter)
		if err != nil {
			bookingError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ListActiveBookingsHandler lists every booking currently out or due to
// be out. Staff-only.
func ListActiveBookingsHandler(svc booking.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := svc.ListActiveBookings(c.Request.Context())
		if err != nil {
			bookingError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ListOverdueBookingsHandler lists active bookings past their end date.
// Staff-only.
func ListOverdueBookingsHandler(svc booking.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := svc.ListOverdueBookings(c.Request.Context())
		if err != nil {
			bookingError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// BookingStatsHandler returns the admin aggregates.
func BookingStatsHandler(svc booking.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := svc.GetStats(c.Request.Context())
		if err != nil {
			bookingError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}
