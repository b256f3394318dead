package bookingRepo

import (
	"context"
	"errors"
	"time"

	"rentx/models"
)

// ErrStatusChanged is returned by UpdateWithStatus when the booking's
// status no longer matches the expected value. Callers treat it as a lost
// race: re-read and re-validate, or drop the item.
var ErrStatusChanged = errors.New("booking status changed concurrently")

// ErrCarLocked is returned by AcquireCarLock when another creation or
// extension currently holds the car's advisory lock.
var ErrCarLocked = errors.New("car is locked by another booking operation")

// BookingRepository defines the data-access surface of the booking core.
// Every mutation of an existing booking goes through UpdateWithStatus so
// that user-driven and scheduler-driven transitions serialize per booking.
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	Create(ctx context.Context, b *models.Booking) error
	Update(ctx context.Context, b *models.Booking) error
	// UpdateWithStatus writes b only if the stored status still equals
	// expected. Returns ErrStatusChanged otherwise.
	UpdateWithStatus(ctx context.Context, b *models.Booking, expected models.BookingStatus) error

	// FindConflicting returns bookings for carID in an occupying status
	// whose [startDate, endDate) overlaps [start, end). excludeID skips
	// the booking being extended; empty means no exclusion.
	FindConflicting(ctx context.Context, carID string, start, end time.Time, excludeID string) ([]models.Booking, error)

	FindByUser(ctx context.Context, userID string) ([]models.Booking, error)
	FindByUserAndStatus(ctx context.Context, userID string, status models.BookingStatus) ([]models.Booking, error)
	FindByStatus(ctx context.Context, status models.BookingStatus) ([]models.Booking, error)
	FindByStatusAndStartBefore(ctx context.Context, status models.BookingStatus, cutoff time.Time) ([]models.Booking, error)
	FindByStatusAndEndBefore(ctx context.Context, status models.BookingStatus, cutoff time.Time) ([]models.Booking, error)
	FindStartingBetween(ctx context.Context, from, to time.Time) ([]models.Booking, error)

	// Reconciliation predicates.
	FindUnpaidOnlineBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error)
	FindNoShowPickupsBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error)
	FindPendingRefundsBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error)

	CountByUserAndStatus(ctx context.Context, userID string, status models.BookingStatus) (int64, error)
	CountByStatus(ctx context.Context, status models.BookingStatus) (int64, error)
	SumRefundAmountByStatus(ctx context.Context, status models.RefundStatus) (float64, error)

	// Advisory per-car lock serializing conflict-check-then-write.
	AcquireCarLock(ctx context.Context, carID string, ttl time.Duration) error
	ReleaseCarLock(ctx context.Context, carID string) error
}
