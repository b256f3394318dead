package booking

import (
	"context"
	"time"

	bookingRepo "rentx/database/repository/booking"
	"rentx/models"
	"rentx/services/notification"

	"go.uber.org/zap"
)

// User-invoked state-machine transitions. Each one re-reads the booking,
// validates its precondition, and writes through a status compare-and-swap
// so a racing scheduler transition cannot be overwritten: the loser of the
// race fails its precondition instead.

// CancelBooking cancels a CONFIRMED booking before its start date. For
// online-paid bookings the notice-band refund is computed and, when
// positive, settled synchronously against the payment processor; a
// processor failure leaves the booking CANCELLED with refund status
// FAILED.
func (s *DefaultBookingService) CancelBooking(ctx context.Context, actingUserID, bookingID, reason string) (*models.BookingResponse, error) {
	b, err := s.ownedBooking(ctx, actingUserID, bookingID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := validateCancel(b, now); err != nil {
		return nil, err
	}

	paidOnline := b.PaymentStatus == models.PaymentPaid

	switch b.PaymentStatus {
	case models.PaymentPaid:
		hoursUntilPickup := b.StartDate.Sub(now).Hours()
		b.RefundAmount = CancellationRefund(b.TotalPrice, hoursUntilPickup, s.Refunds)
		if b.RefundAmount > 0 {
			b.RefundStatus = models.RefundPending
		}
	case models.PaymentPending:
		// Nothing was captured; the obligation converts to pay-at-pickup
		// so the no-show fee path still works.
		b.PaymentStatus = models.PaymentPayAtPickup
	}

	b.Status = models.BookingCancelled
	b.CancellationReason = reason
	b.CancellationDate = &now

	if err := s.Repo.UpdateWithStatus(ctx, b, models.BookingConfirmed); err != nil {
		if err == bookingRepo.ErrStatusChanged {
			return nil, s.lostCancelRace(ctx, bookingID)
		}
		return nil, err
	}

	s.notify(ctx, b.UserID, notification.EventBookingCancelled, b)
	s.Logger.Info("booking cancelled",
		zap.String("bookingId", b.ID),
		zap.String("reason", reason),
		zap.Float64("refundAmount", b.RefundAmount))

	if paidOnline && b.RefundAmount > 0 {
		s.settleRefundNow(ctx, b)
	}

	return s.toResponse(ctx, b), nil
}

// validateCancel is the precondition ladder for a user cancellation.
func validateCancel(b *models.Booking, now time.Time) error {
	switch {
	case b.Status == models.BookingCancelled:
		return NewBookingError(CodeAlreadyCancelled, "booking %s is already cancelled", b.ID)
	case b.Status == models.BookingCompleted:
		return NewBookingError(CodeAlreadyCompleted, "booking %s is already completed", b.ID)
	case !now.Before(b.StartDate):
		return NewBookingError(CodeAlreadyStarted, "booking %s has already started", b.ID)
	case b.Status != models.BookingConfirmed:
		return NewBookingError(CodeInvalidCancellation, "booking %s cannot be cancelled in status %s", b.ID, b.Status)
	}
	return nil
}

// lostCancelRace re-reads after a CAS failure and reports what actually
// happened: usually the auto-cancel sweep got there first.
func (s *DefaultBookingService) lostCancelRace(ctx context.Context, bookingID string) error {
	b, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil || b == nil {
		return NewBookingError(CodeInvalidCancellation, "booking %s changed while cancelling", bookingID)
	}
	if b.Status == models.BookingCancelled {
		return NewBookingError(CodeAlreadyCancelled, "booking %s is already cancelled", bookingID)
	}
	return NewBookingError(CodeInvalidCancellation, "booking %s cannot be cancelled in status %s", bookingID, b.Status)
}

// settleRefundNow runs the synchronous refund after a paid cancellation.
// Cancellation and refund are separate failure domains: processor errors
// only mark the refund FAILED.
func (s *DefaultBookingService) settleRefundNow(ctx context.Context, b *models.Booking) {
	if _, err := s.Payments.Refund(ctx, b.ID, b.RefundAmount); err != nil {
		s.Logger.Error("synchronous refund failed", zap.String("bookingId", b.ID), zap.Error(err))
		b.RefundStatus = models.RefundFailed
		if uerr := s.Repo.Update(ctx, b); uerr != nil {
			s.Logger.Error("failed to record refund failure", zap.String("bookingId", b.ID), zap.Error(uerr))
		}
		s.notify(ctx, b.UserID, notification.EventRefundFailed, b)
		return
	}

	b.RefundStatus = models.RefundProcessed
	if err := s.Repo.Update(ctx, b); err != nil {
		s.Logger.Error("failed to record refund success", zap.String("bookingId", b.ID), zap.Error(err))
	}
	s.notify(ctx, b.UserID, notification.EventRefundProcessed, b)
}

// MarkPickedUp hands the car over: CONFIRMED becomes ACTIVE and the
// pickup time is recorded.
func (s *DefaultBookingService) MarkPickedUp(ctx context.Context, actingUserID, bookingID, notes string) (*models.BookingResponse, error) {
	b, err := s.ownedBooking(ctx, actingUserID, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingConfirmed {
		return nil, NewBookingError(CodeInvalidState, "booking %s must be CONFIRMED to be picked up, is %s", b.ID, b.Status)
	}

	now := s.now()
	b.Status = models.BookingActive
	b.PickupStatus = models.PickupPickedUp
	b.ActualPickupTime = &now
	b.PickupNotes = notes

	if err := s.Repo.UpdateWithStatus(ctx, b, models.BookingConfirmed); err != nil {
		if err == bookingRepo.ErrStatusChanged {
			return nil, NewBookingError(CodeInvalidState, "booking %s changed while confirming pickup", b.ID)
		}
		return nil, err
	}

	s.notify(ctx, b.UserID, notification.EventPickupConfirmed, b)
	s.Logger.Info("booking picked up", zap.String("bookingId", b.ID))
	return s.toResponse(ctx, b), nil
}

// MarkReturned closes out an ACTIVE booking: the return time is recorded,
// a late penalty is priced against the car's daily rate when applicable,
// and extra charges are added to the final total.
func (s *DefaultBookingService) MarkReturned(ctx context.Context, actingUserID, bookingID string, extraCharges float64, notes string) (*models.BookingResponse, error) {
	b, err := s.ownedBooking(ctx, actingUserID, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingActive {
		return nil, NewBookingError(CodeInvalidState, "booking %s must be ACTIVE to be returned, is %s", b.ID, b.Status)
	}

	now := s.now()
	b.ActualReturnTime = &now

	if b.IsLateReturn() {
		car, err := s.Cars.GetByID(ctx, b.CarID)
		if err != nil {
			return nil, err
		}
		if car == nil {
			return nil, NewBookingError(CodeNotFound, "car %s not found", b.CarID)
		}
		b.LateReturnPenalty = LateReturnPenalty(car.DailyRate, b.LateHours())
		s.Logger.Info("late return detected",
			zap.String("bookingId", b.ID),
			zap.Int64("lateHours", b.LateHours()),
			zap.Float64("penalty", b.LateReturnPenalty))
	}

	b.ExtraCharges = extraCharges
	b.TotalPrice += b.LateReturnPenalty + extraCharges
	b.Status = models.BookingCompleted
	b.PickupStatus = models.PickupReturned
	b.ReturnNotes = notes

	if err := s.Repo.UpdateWithStatus(ctx, b, models.BookingActive); err != nil {
		if err == bookingRepo.ErrStatusChanged {
			return nil, NewBookingError(CodeInvalidState, "booking %s changed while confirming return", b.ID)
		}
		return nil, err
	}

	s.notify(ctx, b.UserID, notification.EventReturnConfirmed, b)
	s.Logger.Info("booking returned",
		zap.String("bookingId", b.ID),
		zap.Float64("finalPrice", b.TotalPrice))
	return s.toResponse(ctx, b), nil
}

// ExtendBooking pushes the end date of an ACTIVE booking out, re-checking
// availability for the added interval under the car's advisory lock.
func (s *DefaultBookingService) ExtendBooking(ctx context.Context, actingUserID, bookingID string, newEnd time.Time) (*models.BookingResponse, error) {
	b, err := s.ownedBooking(ctx, actingUserID, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingActive {
		return nil, NewBookingError(CodeInvalidExtension, "can only extend active bookings, booking %s is %s", b.ID, b.Status)
	}
	if !newEnd.After(b.EndDate) {
		return nil, NewBookingError(CodeInvalidExtension, "new end date must be after the current end date")
	}

	if err := s.Repo.AcquireCarLock(ctx, b.CarID, carLockTTL); err != nil {
		if err == bookingRepo.ErrCarLocked {
			return nil, NewBookingError(CodeConflict, "car %s is being booked by someone else, try again", b.CarID)
		}
		return nil, err
	}
	defer func() {
		if err := s.Repo.ReleaseCarLock(context.Background(), b.CarID); err != nil {
			s.Logger.Warn("failed to release car lock", zap.String("carId", b.CarID), zap.Error(err))
		}
	}()

	conflict, err := s.availability().HasConflict(ctx, b.CarID, b.EndDate, newEnd, b.ID)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, NewBookingError(CodeConflict, "car is not available for the extended period")
	}

	car, err := s.Cars.GetByID(ctx, b.CarID)
	if err != nil {
		return nil, err
	}
	if car == nil {
		return nil, NewBookingError(CodeNotFound, "car %s not found", b.CarID)
	}

	extraHours := int64(newEnd.Sub(b.EndDate).Hours())
	charge := ExtensionCharge(car.DailyRate, extraHours)

	b.EndDate = newEnd
	b.TotalPrice += charge

	if err := s.Repo.UpdateWithStatus(ctx, b, models.BookingActive); err != nil {
		if err == bookingRepo.ErrStatusChanged {
			return nil, NewBookingError(CodeInvalidExtension, "booking %s changed while extending", b.ID)
		}
		return nil, err
	}

	s.notify(ctx, b.UserID, notification.EventExtensionConfirmed, b)
	s.Logger.Info("booking extended",
		zap.String("bookingId", b.ID),
		zap.Time("newEnd", newEnd),
		zap.Float64("extensionCharge", charge))
	return s.toResponse(ctx, b), nil
}

// MarkPaid records a captured online payment against a live booking.
// Re-invocation on an already-paid booking is a no-op.
func (s *DefaultBookingService) MarkPaid(ctx context.Context, bookingID string) (*models.BookingResponse, error) {
	b, err := s.ownedBooking(ctx, "", bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status == models.BookingCancelled {
		return nil, NewBookingError(CodeInvalidState, "booking %s is cancelled, cannot mark paid", b.ID)
	}
	if b.PaymentStatus == models.PaymentPaid {
		return s.toResponse(ctx, b), nil
	}

	b.PaymentStatus = models.PaymentPaid
	if err := s.Repo.UpdateWithStatus(ctx, b, b.Status); err != nil {
		if err == bookingRepo.ErrStatusChanged {
			return nil, NewBookingError(CodeInvalidState, "booking %s changed while recording payment", b.ID)
		}
		return nil, err
	}

	s.notify(ctx, b.UserID, notification.EventPaymentConfirmed, b)
	s.Logger.Info("booking marked paid", zap.String("bookingId", b.ID))
	return s.toResponse(ctx, b), nil
}
