package booking

import (
	"context"
	"time"

	"rentx/config"
	bookingRepo "rentx/database/repository/booking"
	carRepo "rentx/database/repository/car"
	userRepo "rentx/database/repository/user"
	"rentx/models"
	"rentx/services/notification"
	"rentx/services/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// carLockTTL bounds how long a crashed process can hold a car's advisory
// lock before the TTL sweeper reclaims it.
const carLockTTL = 15 * time.Second

// Discounter is the slice of the loyalty service the booking core uses.
type Discounter interface {
	DiscountFor(ctx context.Context, userID string, totalAmount float64) (float64, error)
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Repo     bookingRepo.BookingRepository
	Cars     carRepo.CarRepository
	Users    userRepo.UserRepository
	Loyalty  Discounter
	Payments payment.Processor
	Notifier notification.Notifier
	Refunds  config.RefundPolicy
	Logger   *zap.Logger

	// Clock is injectable for tests; nil means wall clock.
	Clock func() time.Time
}

func (s *DefaultBookingService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *DefaultBookingService) availability() *AvailabilityChecker {
	return &AvailabilityChecker{Repo: s.Repo}
}

// CreateBooking validates the date range, checks availability under the
// car's advisory lock, prices the rental with the loyalty discount
// applied, and stores the booking as CONFIRMED.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, actingUserID string, req models.BookingRequest) (*models.BookingResponse, error) {
	days, err := TotalDays(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	user, err := s.Users.GetByID(ctx, actingUserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, NewBookingError(CodeNotFound, "user %s not found", actingUserID)
	}

	car, err := s.Cars.GetByID(ctx, req.CarID)
	if err != nil {
		return nil, err
	}
	if car == nil {
		return nil, NewBookingError(CodeNotFound, "car %s not found", req.CarID)
	}

	// The lock covers the conflict check and the insert so two
	// concurrent creates for the same car cannot both pass the check.
	if err := s.Repo.AcquireCarLock(ctx, car.ID, carLockTTL); err != nil {
		if err == bookingRepo.ErrCarLocked {
			return nil, NewBookingError(CodeConflict, "car %s is being booked by someone else, try again", car.ID)
		}
		return nil, err
	}
	defer func() {
		if err := s.Repo.ReleaseCarLock(context.Background(), car.ID); err != nil {
			s.Logger.Warn("failed to release car lock", zap.String("carId", car.ID), zap.Error(err))
		}
	}()

	conflict, err := s.availability().HasConflict(ctx, car.ID, req.StartDate, req.EndDate, "")
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, NewBookingError(CodeConflict, "car is already booked for the selected dates")
	}

	base := BasePrice(car.DailyRate, days)
	discount, err := s.Loyalty.DiscountFor(ctx, user.ID, base)
	if err != nil {
		s.Logger.Warn("loyalty discount lookup failed", zap.String("userId", user.ID), zap.Error(err))
		discount = 0
	}

	now := s.now()
	b := &models.Booking{
		ID:             uuid.New().String(),
		UserID:         user.ID,
		CarID:          car.ID,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		BookingDate:    now,
		TotalPrice:     base - discount,
		DiscountAmount: discount,
		Status:         models.BookingConfirmed,
		PickupStatus:   models.PickupPending,
		RefundStatus:   models.RefundNone,
		UpdatedAt:      now,
	}
	if req.PaymentOption == "payNow" {
		b.PaymentMethod = models.PayNow
		b.PaymentStatus = models.PaymentPending
	} else {
		b.PaymentMethod = models.PayAtPickup
		b.PaymentStatus = models.PaymentPayAtPickup
	}

	if err := s.Repo.Create(ctx, b); err != nil {
		return nil, err
	}

	s.notify(ctx, b.UserID, notification.EventBookingConfirmed, b)
	s.Logger.Info("booking created",
		zap.String("bookingId", b.ID),
		zap.String("carId", car.ID),
		zap.Int("totalDays", days),
		zap.Float64("totalPrice", b.TotalPrice))

	return s.toResponse(ctx, b), nil
}

// GetBooking returns one booking, enforcing ownership for non-staff
// callers.
func (s *DefaultBookingService) GetBooking(ctx context.Context, actingUserID, bookingID string) (*models.BookingResponse, error) {
	b, err := s.ownedBooking(ctx, actingUserID, bookingID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, b), nil
}

// ListUserBookings returns the acting user's bookings, newest first,
// optionally narrowed by filter.
func (s *DefaultBookingService) ListUserBookings(ctx context.Context, actingUserID string, filter ListFilter) ([]models.BookingResponse, error) {
	var bookings []models.Booking
	var err error

	switch filter {
	case FilterActive:
		bookings, err = s.Repo.FindByUserAndStatus(ctx, actingUserID, models.BookingActive)
	case FilterCompleted:
		bookings, err = s.Repo.FindByUserAndStatus(ctx, actingUserID, models.BookingCompleted)
	case FilterCancelled:
		bookings, err = s.Repo.FindByUserAndStatus(ctx, actingUserID, models.BookingCancelled)
	case FilterUpcoming:
		var all []models.Booking
		all, err = s.Repo.FindByUser(ctx, actingUserID)
		if err == nil {
			now := s.now()
			for _, b := range all {
				if b.StartDate.After(now) && (b.Status == models.BookingConfirmed || b.Status == models.BookingPending) {
					bookings = append(bookings, b)
				}
			}
		}
	default:
		bookings, err = s.Repo.FindByUser(ctx, actingUserID)
	}
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, bookings), nil
}

// ListActiveBookings returns everything currently on the road: ACTIVE
// bookings plus CONFIRMED ones whose start has already passed (the
// promotion sweep will pick those up shortly).
func (s *DefaultBookingService) ListActiveBookings(ctx context.Context) ([]models.BookingResponse, error) {
	active, err := s.Repo.FindByStatus(ctx, models.BookingActive)
	if err != nil {
		return nil, err
	}
	started, err := s.Repo.FindByStatusAndStartBefore(ctx, models.BookingConfirmed, s.now())
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, append(active, started...)), nil
}

// ListOverdueBookings returns ACTIVE bookings past their end date.
func (s *DefaultBookingService) ListOverdueBookings(ctx context.Context) ([]models.BookingResponse, error) {
	active, err := s.Repo.FindByStatus(ctx, models.BookingActive)
	if err != nil {
		return nil, err
	}
	now := s.now()
	var overdue []models.Booking
	for _, b := range active {
		if now.After(b.EndDate) {
			overdue = append(overdue, b)
		}
	}
	return s.toResponses(ctx, overdue), nil
}

// GetStats returns the admin aggregates.
func (s *DefaultBookingService) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	var err error
	if stats.Confirmed, err = s.Repo.CountByStatus(ctx, models.BookingConfirmed); err != nil {
		return nil, err
	}
	if stats.Active, err = s.Repo.CountByStatus(ctx, models.BookingActive); err != nil {
		return nil, err
	}
	if stats.Completed, err = s.Repo.CountByStatus(ctx, models.BookingCompleted); err != nil {
		return nil, err
	}
	if stats.Cancelled, err = s.Repo.CountByStatus(ctx, models.BookingCancelled); err != nil {
		return nil, err
	}
	if stats.PendingRefunds, err = s.Repo.SumRefundAmountByStatus(ctx, models.RefundPending); err != nil {
		return nil, err
	}
	return stats, nil
}

// ownedBooking loads a booking and enforces the ownership check. An empty
// actingUserID is a staff caller and skips the check.
func (s *DefaultBookingService) ownedBooking(ctx context.Context, actingUserID, bookingID string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, NewBookingError(CodeNotFound, "booking %s not found", bookingID)
	}
	if actingUserID != "" && b.UserID != actingUserID {
		return nil, NewBookingError(CodeForbidden, "booking %s does not belong to user %s", bookingID, actingUserID)
	}
	return b, nil
}

// notify fires a best-effort notification; failures are logged and never
// surfaced.
func (s *DefaultBookingService) notify(ctx context.Context, userID string, event notification.Event, b *models.Booking) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Notify(ctx, userID, event, b, nil); err != nil {
		s.Logger.Warn("notification failed",
			zap.String("userId", userID),
			zap.String("event", string(event)),
			zap.Error(err))
	}
}

func (s *DefaultBookingService) toResponse(ctx context.Context, b *models.Booking) *models.BookingResponse {
	resp := &models.BookingResponse{
		ID:                 b.ID,
		CarID:              b.CarID,
		StartDate:          b.StartDate,
		EndDate:            b.EndDate,
		BookingDate:        b.BookingDate,
		TotalDays:          b.TotalDays(),
		TotalPrice:         b.TotalPrice,
		DiscountAmount:     b.DiscountAmount,
		RefundAmount:       b.RefundAmount,
		ExtraCharges:       b.ExtraCharges,
		LateReturnPenalty:  b.LateReturnPenalty,
		IsLateReturn:       b.IsLateReturn(),
		Status:             string(b.Status),
		PaymentStatus:      string(b.PaymentStatus),
		PaymentMethod:      string(b.PaymentMethod),
		PickupStatus:       string(b.PickupStatus),
		RefundStatus:       string(b.RefundStatus),
		CancellationReason: b.CancellationReason,
		CancellationDate:   b.CancellationDate,
		ActualPickupTime:   b.ActualPickupTime,
		ActualReturnTime:   b.ActualReturnTime,
	}
	if car, err := s.Cars.GetByID(ctx, b.CarID); err == nil && car != nil {
		resp.CarBrand = car.Brand
		resp.CarModel = car.Model
	}
	return resp
}

func (s *DefaultBookingService) toResponses(ctx context.Context, bookings []models.Booking) []models.BookingResponse {
	responses := make([]models.BookingResponse, 0, len(bookings))
	for i := range bookings {
		responses = append(responses, *s.toResponse(ctx, &bookings[i]))
	}
	return responses
}
