package cron

import (
	"context"
	"fmt"
	"time"

	bookingRepo "rentx/database/repository/booking"
	"rentx/models"
	"rentx/services/car"
	"rentx/services/notification"
	"rentx/services/payment"
	"rentx/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Reconciliation cadences and cutoffs.
const (
	PromotionInterval  = 5 * time.Minute
	SettlementInterval = time.Hour
	AutoCancelInterval = 30 * time.Minute
	CacheEvictInterval = time.Hour

	ReminderHour    = 9
	CoarseSweepHour = 1

	unpaidOnlineGrace = 24 * time.Hour
	noShowGrace       = 2 * time.Hour
	imminentWindow    = time.Hour
	refundSettleAge   = 7 * 24 * time.Hour
)

// Reconciler owns the time-driven corrections of booking state. Every
// task takes the scheduler's "now"; each item is processed independently
// and failures are logged without aborting the batch.
type Reconciler struct {
	Bookings bookingRepo.BookingRepository
	Cars     car.CarService
	Payments payment.Processor
	Notifier notification.Notifier
	Queue    *asynq.Client
	Logger   *zap.Logger
}

// PromoteStatuses advances bookings whose dates have passed: CONFIRMED
// past start becomes ACTIVE, ACTIVE past end becomes COMPLETED. Both
// writes are status compare-and-swaps, so a rerun over the same data set
// changes nothing.
func (r *Reconciler) PromoteStatuses(ctx context.Context, now time.Time) {
	toActivate, err := r.Bookings.FindByStatusAndStartBefore(ctx, models.BookingConfirmed, now)
	if err != nil {
		r.Logger.Error("promotion query failed", zap.Error(err))
	}
	for i := range toActivate {
		b := &toActivate[i]
		b.Status = models.BookingActive
		if err := r.Bookings.UpdateWithStatus(ctx, b, models.BookingConfirmed); err != nil {
			if err != bookingRepo.ErrStatusChanged {
				r.Logger.Error("failed to activate booking", zap.String("bookingId", b.ID), zap.Error(err))
			}
			continue
		}
		r.Logger.Info("booking activated", zap.String("bookingId", b.ID))
	}

	toComplete, err := r.Bookings.FindByStatusAndEndBefore(ctx, models.BookingActive, now)
	if err != nil {
		r.Logger.Error("completion query failed", zap.Error(err))
	}
	for i := range toComplete {
		b := &toComplete[i]
		b.Status = models.BookingCompleted
		if err := r.Bookings.UpdateWithStatus(ctx, b, models.BookingActive); err != nil {
			if err != bookingRepo.ErrStatusChanged {
				r.Logger.Error("failed to complete booking", zap.String("bookingId", b.ID), zap.Error(err))
			}
			continue
		}
		r.Logger.Info("booking completed", zap.String("bookingId", b.ID))
	}
}

// SettleRefunds resolves refunds that have sat PENDING for the settlement
// age. Online-paid refunds go through the payment processor; bookings
// without a captured payment are marked processed directly.
func (r *Reconciler) SettleRefunds(ctx context.Context, now time.Time) {
	pending, err := r.Bookings.FindPendingRefundsBefore(ctx, now.Add(-refundSettleAge))
	if err != nil {
		r.Logger.Error("refund settlement query failed", zap.Error(err))
		return
	}

	for i := range pending {
		b := &pending[i]
		if b.RefundAmount > 0 && b.PaymentStatus == models.PaymentPaid {
			if _, err := r.Payments.Refund(ctx, b.ID, b.RefundAmount); err != nil {
				r.Logger.Error("scheduled refund failed", zap.String("bookingId", b.ID), zap.Error(err))
				b.RefundStatus = models.RefundFailed
				r.saveRefundOutcome(ctx, b, notification.EventRefundFailed)
				continue
			}
			b.RefundStatus = models.RefundProcessed
			r.saveRefundOutcome(ctx, b, notification.EventRefundProcessed)
			continue
		}

		// No captured payment to move money back on.
		b.RefundStatus = models.RefundProcessed
		r.saveRefundOutcome(ctx, b, notification.EventRefundProcessed)
	}
}

func (r *Reconciler) saveRefundOutcome(ctx context.Context, b *models.Booking, event notification.Event) {
	if err := r.Bookings.UpdateWithStatus(ctx, b, models.BookingCancelled); err != nil {
		r.Logger.Error("failed to record refund outcome", zap.String("bookingId", b.ID), zap.Error(err))
		return
	}
	r.notify(ctx, b, event)
}

// AutoCancelSweep enforces the no-payment and no-show deadlines and
// queues reminders for imminent pickups. Also registered as the daily
// coarse sweep.
func (r *Reconciler) AutoCancelSweep(ctx context.Context, now time.Time) {
	r.cancelUnpaidOnline(ctx, now)
	r.cancelNoShowPickups(ctx, now)
	r.remindImminentPickups(ctx, now)
}

// cancelUnpaidOnline drops CONFIRMED pay-online bookings whose payment
// has been pending for more than the grace period.
func (r *Reconciler) cancelUnpaidOnline(ctx context.Context, now time.Time) {
	unpaid, err := r.Bookings.FindUnpaidOnlineBefore(ctx, now.Add(-unpaidOnlineGrace))
	if err != nil {
		r.Logger.Error("unpaid-online query failed", zap.Error(err))
		return
	}
	for i := range unpaid {
		r.autoCancel(ctx, &unpaid[i], now, "Auto-cancelled: online payment not completed within 24 hours")
	}
}

// cancelNoShowPickups drops pay-at-pickup bookings whose start passed
// more than the grace period ago with no pickup.
func (r *Reconciler) cancelNoShowPickups(ctx context.Context, now time.Time) {
	noShows, err := r.Bookings.FindNoShowPickupsBefore(ctx, now.Add(-noShowGrace))
	if err != nil {
		r.Logger.Error("no-show query failed", zap.Error(err))
		return
	}
	for i := range noShows {
		r.autoCancel(ctx, &noShows[i], now, "Auto-cancelled: customer did not show up for pickup")
	}
}

// autoCancel is the scheduler-side cancellation: CAS to CANCELLED, free
// the car, notify. Losing the CAS means a user transition won the race;
// that is the desired outcome, not an error.
func (r *Reconciler) autoCancel(ctx context.Context, b *models.Booking, now time.Time, reason string) {
	b.Status = models.BookingCancelled
	b.CancellationReason = reason
	b.CancellationDate = &now

	if err := r.Bookings.UpdateWithStatus(ctx, b, models.BookingConfirmed); err != nil {
		if err != bookingRepo.ErrStatusChanged {
			r.Logger.Error("auto-cancel failed", zap.String("bookingId", b.ID), zap.Error(err))
		}
		return
	}

	if err := r.Cars.SetAvailability(ctx, b.CarID, true); err != nil {
		r.Logger.Error("failed to free car after auto-cancel",
			zap.String("bookingId", b.ID),
			zap.String("carId", b.CarID),
			zap.Error(err))
	}

	r.notify(ctx, b, notification.EventBookingCancelled)
	r.Logger.Info("booking auto-cancelled",
		zap.String("bookingId", b.ID),
		zap.String("reason", reason))
}

// remindImminentPickups queues a pickup reminder for CONFIRMED bookings
// starting within the next hour. Reminder-only: nothing is cancelled
// here. The task id keyed by booking makes re-enqueuing across sweeps a
// no-op.
func (r *Reconciler) remindImminentPickups(ctx context.Context, now time.Time) {
	imminent, err := r.Bookings.FindByStatusAndStartBefore(ctx, models.BookingConfirmed, now.Add(imminentWindow))
	if err != nil {
		r.Logger.Error("imminent-pickup query failed", zap.Error(err))
		return
	}
	for i := range imminent {
		b := &imminent[i]
		r.enqueueReminder(b, notification.EventPickupReminder, now,
			fmt.Sprintf("reminder:pickup:%s", b.ID))
	}
}

// SendDayAheadReminders queues a reminder for every CONFIRMED booking
// starting tomorrow.
func (r *Reconciler) SendDayAheadReminders(ctx context.Context, now time.Time) {
	tomorrow := now.AddDate(0, 0, 1)
	from := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 0, 1).Add(-time.Second)

	starting, err := r.Bookings.FindStartingBetween(ctx, from, to)
	if err != nil {
		r.Logger.Error("day-ahead query failed", zap.Error(err))
		return
	}
	for i := range starting {
		b := &starting[i]
		r.enqueueReminder(b, notification.EventDayAheadReminder, now,
			fmt.Sprintf("reminder:dayahead:%s:%s", b.ID, from.Format("2006-01-02")))
	}
}

// enqueueReminder hands a reminder to the queue for the worker to
// deliver, falling back to direct delivery when no queue is configured.
func (r *Reconciler) enqueueReminder(b *models.Booking, event notification.Event, fireAt time.Time, taskID string) {
	if r.Queue == nil {
		r.notify(context.Background(), b, event)
		return
	}

	payload := models.ReminderPayload{
		ReminderID: taskID,
		UserID:     b.UserID,
		BookingID:  b.ID,
		Event:      string(event),
		FireDate:   fireAt.Format(time.RFC3339),
	}
	task, opts, err := tasks.NewReminderTask(payload, fireAt)
	if err != nil {
		r.Logger.Error("failed to build reminder task", zap.String("bookingId", b.ID), zap.Error(err))
		return
	}
	opts = append(opts, asynq.TaskID(taskID))

	if _, err := r.Queue.Enqueue(task, opts...); err != nil {
		if err == asynq.ErrTaskIDConflict {
			return // already queued by an earlier sweep
		}
		r.Logger.Error("failed to enqueue reminder", zap.String("bookingId", b.ID), zap.Error(err))
	}
}

func (r *Reconciler) notify(ctx context.Context, b *models.Booking, event notification.Event) {
	if r.Notifier == nil {
		return
	}
	if err := r.Notifier.Notify(ctx, b.UserID, event, b, nil); err != nil {
		r.Logger.Warn("notification failed",
			zap.String("bookingId", b.ID),
			zap.String("event", string(event)),
			zap.Error(err))
	}
}
