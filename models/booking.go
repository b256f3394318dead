package models

import (
	"math"
	"time"
)

// BookingStatus is the lifecycle axis of a booking.
// Transitions are monotonic along PENDING → CONFIRMED → ACTIVE → COMPLETED;
// CANCELLED is reachable only from PENDING or CONFIRMED.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingActive    BookingStatus = "ACTIVE"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// PaymentStatus tracks how the money side of a booking stands.
type PaymentStatus string

const (
	PaymentPending     PaymentStatus = "PENDING"
	PaymentPaid        PaymentStatus = "PAID"
	PaymentPayAtPickup PaymentStatus = "PAY_AT_PICKUP"
	PaymentFailed      PaymentStatus = "FAILED"
)

// PickupStatus tracks the physical hand-over of the car.
type PickupStatus string

const (
	PickupPending  PickupStatus = "PENDING"
	PickupPickedUp PickupStatus = "PICKED_UP"
	PickupReturned PickupStatus = "RETURNED"
	PickupOverdue  PickupStatus = "OVERDUE"
)

// RefundStatus is non-NONE only on cancelled bookings with a positive
// computed refund.
type RefundStatus string

const (
	RefundNone      RefundStatus = "NONE"
	RefundPending   RefundStatus = "PENDING"
	RefundProcessed RefundStatus = "PROCESSED"
	RefundFailed    RefundStatus = "FAILED"
)

// PaymentMethod is the option the customer selected at creation time.
type PaymentMethod string

const (
	PayNow      PaymentMethod = "PAY_NOW"
	PayAtPickup PaymentMethod = "PAY_AT_PICKUP"
)

// Booking is the central reservation record. It is never physically
// deleted; cancellation is a status change.
type Booking struct {
	ID     string `bson:"id" json:"id"`
	UserID string `bson:"userId" json:"userId"`
	CarID  string `bson:"carId" json:"carId"`

	StartDate   time.Time `bson:"startDate" json:"startDate"`
	EndDate     time.Time `bson:"endDate" json:"endDate"`
	BookingDate time.Time `bson:"bookingDate" json:"bookingDate"`

	TotalPrice        float64 `bson:"totalPrice" json:"totalPrice"`
	DiscountAmount    float64 `bson:"discountAmount" json:"discountAmount"`
	RefundAmount      float64 `bson:"refundAmount" json:"refundAmount"`
	ExtraCharges      float64 `bson:"extraCharges" json:"extraCharges"`
	LateReturnPenalty float64 `bson:"lateReturnPenalty" json:"lateReturnPenalty"`

	Status        BookingStatus `bson:"status" json:"status"`
	PaymentStatus PaymentStatus `bson:"paymentStatus" json:"paymentStatus"`
	PaymentMethod PaymentMethod `bson:"paymentMethod" json:"paymentMethod"`
	PickupStatus  PickupStatus  `bson:"pickupStatus" json:"pickupStatus"`
	RefundStatus  RefundStatus  `bson:"refundStatus" json:"refundStatus"`

	CancellationReason string     `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	CancellationDate   *time.Time `bson:"cancellationDate,omitempty" json:"cancellationDate,omitempty"`
	ActualPickupTime   *time.Time `bson:"actualPickupTime,omitempty" json:"actualPickupTime,omitempty"`
	ActualReturnTime   *time.Time `bson:"actualReturnTime,omitempty" json:"actualReturnTime,omitempty"`
	PickupNotes        string     `bson:"pickupNotes,omitempty" json:"pickupNotes,omitempty"`
	ReturnNotes        string     `bson:"returnNotes,omitempty" json:"returnNotes,omitempty"`

	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// TotalDays is the billed rental length: ceiling of hours/24, never less
// than 1.
func (b *Booking) TotalDays() int {
	if b.StartDate.IsZero() || b.EndDate.IsZero() {
		return 0
	}
	hours := b.EndDate.Sub(b.StartDate).Hours()
	days := math.Ceil(hours / 24)
	if days < 1 {
		days = 1
	}
	return int(days)
}

// LateHours reports how many whole hours the actual return came after the
// agreed end date. Zero when returned on time or not yet returned.
func (b *Booking) LateHours() int64 {
	if b.ActualReturnTime == nil || !b.ActualReturnTime.After(b.EndDate) {
		return 0
	}
	return int64(b.ActualReturnTime.Sub(b.EndDate).Hours())
}

// LateDays is the ceiling of LateHours over full days.
func (b *Booking) LateDays() int {
	h := b.LateHours()
	if h == 0 {
		return 0
	}
	return int(math.Ceil(float64(b.ActualReturnTime.Sub(b.EndDate).Hours()) / 24))
}

// IsLateReturn reports whether the car came back after the agreed end date.
func (b *Booking) IsLateReturn() bool {
	return b.ActualReturnTime != nil && b.ActualReturnTime.After(b.EndDate)
}

// IsTerminal reports whether no further lifecycle transition is legal.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}
