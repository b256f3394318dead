package booking

import (
	"context"
	"errors"
	"time"

	"rentx/models"
	"rentx/services/notification"

	"go.uber.org/zap"
)

// Function-field mocks so each test overrides only what it touches.
// Unset repo methods return zero values.

type mockBookingRepo struct {
	GetByIDFn                    func(ctx context.Context, id string) (*models.Booking, error)
	CreateFn                     func(ctx context.Context, b *models.Booking) error
	UpdateFn                     func(ctx context.Context, b *models.Booking) error
	UpdateWithStatusFn           func(ctx context.Context, b *models.Booking, expected models.BookingStatus) error
	FindConflictingFn            func(ctx context.Context, carID string, start, end time.Time, excludeID string) ([]models.Booking, error)
	FindByUserFn                 func(ctx context.Context, userID string) ([]models.Booking, error)
	FindByUserAndStatusFn        func(ctx context.Context, userID string, status models.BookingStatus) ([]models.Booking, error)
	FindByStatusFn               func(ctx context.Context, status models.BookingStatus) ([]models.Booking, error)
	FindByStatusAndStartBeforeFn func(ctx context.Context, status models.BookingStatus, cutoff time.Time) ([]models.Booking, error)
	FindByStatusAndEndBeforeFn   func(ctx context.Context, status models.BookingStatus, cutoff time.Time) ([]models.Booking, error)
	FindStartingBetweenFn        func(ctx context.Context, from, to time.Time) ([]models.Booking, error)
	FindUnpaidOnlineBeforeFn     func(ctx context.Context, cutoff time.Time) ([]models.Booking, error)
	FindNoShowPickupsBeforeFn    func(ctx context.Context, cutoff time.Time) ([]models.Booking, error)
	FindPendingRefundsBeforeFn   func(ctx context.Context, cutoff time.Time) ([]models.Booking, error)
	CountByUserAndStatusFn       func(ctx context.Context, userID string, status models.BookingStatus) (int64, error)
	CountByStatusFn              func(ctx context.Context, status models.BookingStatus) (int64, error)
	SumRefundAmountByStatusFn    func(ctx context.Context, status models.RefundStatus) (float64, error)
	AcquireCarLockFn             func(ctx context.Context, carID string, ttl time.Duration) error
	ReleaseCarLockFn             func(ctx context.Context, carID string) error
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	if m.GetByIDFn == nil {
		return nil, nil
	}
	return m.GetByIDFn(ctx, id)
}

func (m *mockBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	if m.CreateFn == nil {
		return nil
	}
	return m.CreateFn(ctx, b)
}

func (m *mockBookingRepo) Update(ctx context.Context, b *models.Booking) error {
	if m.UpdateFn == nil {
		return nil
	}
	return m.UpdateFn(ctx, b)
}

func (m *mockBookingRepo) UpdateWithStatus(ctx context.Context, b *models.Booking, expected models.BookingStatus) error {
	if m.UpdateWithStatusFn == nil {
		return nil
	}
	return m.UpdateWithStatusFn(ctx, b, expected)
}

func (m *mockBookingRepo) FindConflicting(ctx context.Context, carID string, start, end time.Time, excludeID string) ([]models.Booking, error) {
	if m.FindConflictingFn == nil {
		return nil, nil
	}
	return m.FindConflictingFn(ctx, carID, start, end, excludeID)
}

func (m *mockBookingRepo) FindByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	if m.FindByUserFn == nil {
		return nil, nil
	}
	return m.FindByUserFn(ctx, userID)
}

func (m *mockBookingRepo) FindByUserAndStatus(ctx context.Context, userID string, status models.BookingStatus) ([]models.Booking, error) {
	if m.FindByUserAndStatusFn == nil {
		return nil, nil
	}
	return m.FindByUserAndStatusFn(ctx, userID, status)
}

func (m *mockBookingRepo) FindByStatus(ctx context.Context, status models.BookingStatus) ([]models.Booking, error) {
	if m.FindByStatusFn == nil {
		return nil, nil
	}
	return m.FindByStatusFn(ctx, status)
}

func (m *mockBookingRepo) FindByStatusAndStartBefore(ctx context.Context, status models.BookingStatus, cutoff time.Time) ([]models.Booking, error) {
	if m.FindByStatusAndStartBeforeFn == nil {
		return nil, nil
	}
	return m.FindByStatusAndStartBeforeFn(ctx, status, cutoff)
}

func (m *mockBookingRepo) FindByStatusAndEndBefore(ctx context.Context, status models.BookingStatus, cutoff time.Time) ([]models.Booking, error) {
	if m.FindByStatusAndEndBeforeFn == nil {
		return nil, nil
	}
	return m.FindByStatusAndEndBeforeFn(ctx, status, cutoff)
}

func (m *mockBookingRepo) FindStartingBetween(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	if m.FindStartingBetweenFn == nil {
		return nil, nil
	}
	return m.FindStartingBetweenFn(ctx, from, to)
}

func (m *mockBookingRepo) FindUnpaidOnlineBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	if m.FindUnpaidOnlineBeforeFn == nil {
		return nil, nil
	}
	return m.FindUnpaidOnlineBeforeFn(ctx, cutoff)
}

func (m *mockBookingRepo) FindNoShowPickupsBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	if m.FindNoShowPickupsBeforeFn == nil {
		return nil, nil
	}
	return m.FindNoShowPickupsBeforeFn(ctx, cutoff)
}

func (m *mockBookingRepo) FindPendingRefundsBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	if m.FindPendingRefundsBeforeFn == nil {
		return nil, nil
	}
	return m.FindPendingRefundsBeforeFn(ctx, cutoff)
}

func (m *mockBookingRepo) CountByUserAndStatus(ctx context.Context, userID string, status models.BookingStatus) (int64, error) {
	if m.CountByUserAndStatusFn == nil {
		return 0, nil
	}
	return m.CountByUserAndStatusFn(ctx, userID, status)
}

func (m *mockBookingRepo) CountByStatus(ctx context.Context, status models.BookingStatus) (int64, error) {
	if m.CountByStatusFn == nil {
		return 0, nil
	}
	return m.CountByStatusFn(ctx, status)
}

func (m *mockBookingRepo) SumRefundAmountByStatus(ctx context.Context, status models.RefundStatus) (float64, error) {
	if m.SumRefundAmountByStatusFn == nil {
		return 0, nil
	}
	return m.SumRefundAmountByStatusFn(ctx, status)
}

func (m *mockBookingRepo) AcquireCarLock(ctx context.Context, carID string, ttl time.Duration) error {
	if m.AcquireCarLockFn == nil {
		return nil
	}
	return m.AcquireCarLockFn(ctx, carID, ttl)
}

func (m *mockBookingRepo) ReleaseCarLock(ctx context.Context, carID string) error {
	if m.ReleaseCarLockFn == nil {
		return nil
	}
	return m.ReleaseCarLockFn(ctx, carID)
}

type mockCarRepo struct {
	GetByIDFn         func(ctx context.Context, id string) (*models.Car, error)
	GetAvailableFn    func(ctx context.Context) ([]models.Car, error)
	SetAvailabilityFn func(ctx context.Context, id string, available bool) error
}

func (m *mockCarRepo) GetByID(ctx context.Context, id string) (*models.Car, error) {
	if m.GetByIDFn == nil {
		return nil, nil
	}
	return m.GetByIDFn(ctx, id)
}

func (m *mockCarRepo) GetAvailable(ctx context.Context) ([]models.Car, error) {
	if m.GetAvailableFn == nil {
		return nil, nil
	}
	return m.GetAvailableFn(ctx)
}

func (m *mockCarRepo) SetAvailability(ctx context.Context, id string, available bool) error {
	if m.SetAvailabilityFn == nil {
		return nil
	}
	return m.SetAvailabilityFn(ctx, id, available)
}

type mockUserRepo struct {
	GetByIDFn func(ctx context.Context, id string) (*models.User, error)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFn == nil {
		return &models.User{ID: id}, nil
	}
	return m.GetByIDFn(ctx, id)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return nil, errors.New("not implemented")
}

type mockDiscounter struct {
	DiscountFn func(ctx context.Context, userID string, totalAmount float64) (float64, error)
}

func (m *mockDiscounter) DiscountFor(ctx context.Context, userID string, totalAmount float64) (float64, error) {
	if m.DiscountFn == nil {
		return 0, nil
	}
	return m.DiscountFn(ctx, userID, totalAmount)
}

type mockProcessor struct {
	RefundFn func(ctx context.Context, bookingID string, amount float64) (string, error)
	calls    int
}

func (m *mockProcessor) Refund(ctx context.Context, bookingID string, amount float64) (string, error) {
	m.calls++
	if m.RefundFn == nil {
		return "re_test", nil
	}
	return m.RefundFn(ctx, bookingID, amount)
}

type mockNotifier struct {
	events []notification.Event
}

func (m *mockNotifier) Notify(ctx context.Context, userID string, event notification.Event, b *models.Booking, data map[string]string) error {
	m.events = append(m.events, event)
	return nil
}

// fixedClock pins the service's notion of now.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// newTestService wires a service over the given mocks with a no-op
// logger and a pinned clock.
func newTestService(repo *mockBookingRepo, cars *mockCarRepo, now time.Time) *DefaultBookingService {
	return &DefaultBookingService{
		Repo:    repo,
		Cars:    cars,
		Users:   &mockUserRepo{},
		Loyalty: &mockDiscounter{},
		Logger:  zap.NewNop(),
		Clock:   fixedClock(now),
	}
}
