package cron

import (
	"context"
	"encoding/json"
	"fmt"

	bookingRepo "rentx/database/repository/booking"
	"rentx/models"
	"rentx/services/notification"
	"rentx/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ReminderWorker consumes queued reminders and delivers them. It runs
// alongside the scheduler in the same process.
type ReminderWorker struct {
	Bookings bookingRepo.BookingRepository
	Notifier notification.Notifier
	Logger   *zap.Logger

	server *asynq.Server
}

// Start spins up the asynq server against the reminder queue. Call Stop
// during shutdown.
func (w *ReminderWorker) Start(redisOpt asynq.RedisClientOpt) error {
	w.server = asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 5,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			w.Logger.Error("reminder task failed", zap.String("type", task.Type()), zap.Error(err))
		}),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendReminder, w.handleSendReminder)

	if err := w.server.Start(mux); err != nil {
		return fmt.Errorf("failed to start reminder worker: %w", err)
	}
	w.Logger.Info("reminder worker started")
	return nil
}

// Stop drains in-flight tasks and shuts the server down.
func (w *ReminderWorker) Stop() {
	if w.server != nil {
		w.server.Shutdown()
	}
}

// handleSendReminder delivers one queued reminder. Bookings that were
// cancelled or already started since enqueue are skipped silently.
func (w *ReminderWorker) handleSendReminder(ctx context.Context, t *asynq.Task) error {
	var payload models.ReminderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid reminder payload: %w", err)
	}

	b, err := w.Bookings.GetByID(ctx, payload.BookingID)
	if err != nil {
		return err
	}
	if b == nil {
		// Booking gone; nothing to remind about.
		w.Logger.Warn("reminder for missing booking",
			zap.String("bookingId", payload.BookingID))
		return nil
	}
	if b.Status != models.BookingConfirmed {
		return nil
	}

	if err := w.Notifier.Notify(ctx, b.UserID, notification.Event(payload.Event), b, map[string]string{
		"reminderId": payload.ReminderID,
	}); err != nil {
		return err
	}

	w.Logger.Info("reminder delivered",
		zap.String("bookingId", b.ID),
		zap.String("event", payload.Event))
	return nil
}
