package booking

import (
	"math"
	"time"

	"rentx/config"
)

// Pure pricing functions. Everything time-based bills in whole days:
// a rental of any fraction of a day is one day.

// TotalDays returns the billed rental length for [start, end): the
// ceiling of elapsed hours over 24, floored at 1 day. Fails with
// INVALID_DURATION when end is not after start.
func TotalDays(start, end time.Time) (int, error) {
	if !end.After(start) {
		return 0, NewBookingError(CodeInvalidDuration, "end date %s must be after start date %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	days := math.Ceil(end.Sub(start).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return int(days), nil
}

// BasePrice is the undiscounted rental price.
func BasePrice(dailyRate float64, totalDays int) float64 {
	return dailyRate * float64(totalDays)
}

// CancellationRefund applies the notice-band policy: more than 48 hours
// of notice refunds most of the price, 24-48 hours half, anything less
// nothing. Callers decide whether a refund applies at all (only PAID
// bookings are refundable).
func CancellationRefund(totalPrice float64, hoursUntilPickup float64, policy config.RefundPolicy) float64 {
	switch {
	case hoursUntilPickup > 48:
		return totalPrice * policy.Over48h
	case hoursUntilPickup > 24:
		return totalPrice * policy.Over24h
	default:
		return totalPrice * policy.Under24h
	}
}

// LateReturnPenalty prices a late return against the car's daily rate.
// Bands: a 2-hour grace window, then a quarter rate up to 6 hours, half
// rate up to a day, and 1.5x the rate per started day beyond that.
func LateReturnPenalty(dailyRate float64, lateHours int64) float64 {
	switch {
	case lateHours <= 2:
		return 0
	case lateHours <= 6:
		return dailyRate * 0.25
	case lateHours <= 24:
		return dailyRate * 0.5
	default:
		extraDays := (lateHours + 23) / 24
		return dailyRate * 1.5 * float64(extraDays)
	}
}

// ExtensionCharge bills the added interval in whole days, minimum one.
func ExtensionCharge(dailyRate float64, extraHours int64) float64 {
	extraDays := math.Ceil(float64(extraHours) / 24)
	if extraDays < 1 {
		extraDays = 1
	}
	return dailyRate * extraDays
}
