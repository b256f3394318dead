package payment

import (
	"context"
	"fmt"
	"time"

	paymentRepo "rentx/database/repository/payment"
	"rentx/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/refund"
	"go.uber.org/zap"
)

// ErrRefundFailed wraps any gateway failure during a refund. The booking
// stays cancelled; only the refund status records the failure.
type RefundError struct {
	BookingID string
	Cause     error
}

func (e *RefundError) Error() string {
	return fmt.Sprintf("refund failed for booking %s: %v", e.BookingID, e.Cause)
}

func (e *RefundError) Unwrap() error { return e.Cause }

// Processor is the opaque payment gateway the booking core invokes at
// refund points. Order creation and capture live outside this module.
type Processor interface {
	// Refund returns the gateway refund reference on success.
	Refund(ctx context.Context, bookingID string, amount float64) (string, error)
}

// StripeProcessor refunds captured payment intents through Stripe.
type StripeProcessor struct {
	Payments paymentRepo.PaymentRepository
	Logger   *zap.Logger
}

func (p *StripeProcessor) Refund(ctx context.Context, bookingID string, amount float64) (string, error) {
	pay, err := p.Payments.GetByBookingID(ctx, bookingID)
	if err != nil {
		return "", &RefundError{BookingID: bookingID, Cause: err}
	}
	if pay == nil {
		return "", &RefundError{BookingID: bookingID, Cause: fmt.Errorf("no payment record")}
	}
	if pay.Status != models.PaymentRecordCaptured {
		return "", &RefundError{BookingID: bookingID, Cause: fmt.Errorf("payment not captured, status %s", pay.Status)}
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(pay.PaymentIntentID),
		Amount:        stripe.Int64(int64(amount * 100)),
	}
	ref, err := refund.New(params)
	if err != nil {
		p.Logger.Error("stripe refund failed",
			zap.String("bookingId", bookingID),
			zap.Float64("amount", amount),
			zap.Error(err))
		return "", &RefundError{BookingID: bookingID, Cause: err}
	}

	now := time.Now()
	pay.RefundID = ref.ID
	pay.RefundAmount = amount
	pay.RefundDate = &now
	pay.Status = models.PaymentRecordRefunded
	if err := p.Payments.Update(ctx, pay); err != nil {
		// The gateway refund went through; losing the local record is a
		// bookkeeping problem, not a refund failure.
		p.Logger.Error("failed to record refund", zap.String("bookingId", bookingID), zap.Error(err))
	}

	p.Logger.Info("refund processed",
		zap.String("bookingId", bookingID),
		zap.String("refundId", ref.ID),
		zap.Float64("amount", amount))
	return ref.ID, nil
}
