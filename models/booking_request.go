package models

import "time"

// BookingRequest is the create-booking input after HTTP binding.
type BookingRequest struct {
	CarID         string    `json:"carId" binding:"required"`
	StartDate     time.Time `json:"startDate" binding:"required"`
	EndDate       time.Time `json:"endDate" binding:"required"`
	PaymentOption string    `json:"paymentOption" binding:"required,oneof=payNow payLater"`
}

// BookingResponse is the outward view of a booking with the derived
// amounts already computed.
type BookingResponse struct {
	ID                 string     `json:"id"`
	CarID              string     `json:"carId"`
	CarBrand           string     `json:"carBrand,omitempty"`
	CarModel           string     `json:"carModel,omitempty"`
	StartDate          time.Time  `json:"startDate"`
	EndDate            time.Time  `json:"endDate"`
	BookingDate        time.Time  `json:"bookingDate"`
	TotalDays          int        `json:"totalDays"`
	TotalPrice         float64    `json:"totalPrice"`
	DiscountAmount     float64    `json:"discountAmount"`
	RefundAmount       float64    `json:"refundAmount"`
	ExtraCharges       float64    `json:"extraCharges"`
	LateReturnPenalty  float64    `json:"lateReturnPenalty"`
	IsLateReturn       bool       `json:"isLateReturn"`
	Status             string     `json:"status"`
	PaymentStatus      string     `json:"paymentStatus"`
	PaymentMethod      string     `json:"paymentMethod"`
	PickupStatus       string     `json:"pickupStatus"`
	RefundStatus       string     `json:"refundStatus"`
	CancellationReason string     `json:"cancellationReason,omitempty"`
	CancellationDate   *time.Time `json:"cancellationDate,omitempty"`
	ActualPickupTime   *time.Time `json:"actualPickupTime,omitempty"`
	ActualReturnTime   *time.Time `json:"actualReturnTime,omitempty"`
}
