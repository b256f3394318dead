package booking

import (
	"context"
	"fmt"
	"time"

	bookingRepo "rentx/database/repository/booking"
)

// AvailabilityChecker answers whether a car's date range is free of
// occupying bookings. Intervals are half-open: a booking ending exactly
// when another starts does not conflict.
type AvailabilityChecker struct {
	Repo bookingRepo.BookingRepository
}

// HasConflict reports whether any occupying booking for carID overlaps
// [start, end). excludeID skips the booking being extended; pass "" for
// creation checks.
func (a *AvailabilityChecker) HasConflict(ctx context.Context, carID string, start, end time.Time, excludeID string) (bool, error) {
	conflicts, err := a.Repo.FindConflicting(ctx, carID, start, end, excludeID)
	if err != nil {
		return false, fmt.Errorf("conflict lookup for car %s: %w", carID, err)
	}
	return len(conflicts) > 0, nil
}
