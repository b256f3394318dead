package models

import "time"

// Payment is the captured-payment record the refund path works against.
// Order creation and signature verification happen in the gateway layer;
// the booking core only ever reads captured payments and writes refund
// references back.
type Payment struct {
	ID              string     `bson:"id" json:"id"`
	BookingID       string     `bson:"bookingId" json:"bookingId"`
	Amount          float64    `bson:"amount" json:"amount"`
	Currency        string     `bson:"currency" json:"currency"`
	PaymentIntentID string     `bson:"paymentIntentId" json:"paymentIntentId"`
	Status          string     `bson:"status" json:"status"`
	RefundID        string     `bson:"refundId,omitempty" json:"refundId,omitempty"`
	RefundAmount    float64    `bson:"refundAmount,omitempty" json:"refundAmount,omitempty"`
	RefundDate      *time.Time `bson:"refundDate,omitempty" json:"refundDate,omitempty"`
	CreatedAt       time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// Payment statuses as written by the gateway layer.
const (
	PaymentRecordCreated  = "CREATED"
	PaymentRecordCaptured = "CAPTURED"
	PaymentRecordRefunded = "REFUNDED"
)
