package repository

import (
	bookingRepo "rentx/database/repository/booking"
	carRepo "rentx/database/repository/car"
	paymentRepo "rentx/database/repository/payment"
	userRepo "rentx/database/repository/user"
)

// Re-export the BookingRepository interface and constructor.
type BookingRepository = bookingRepo.BookingRepository

var NewMongoBookingRepo = bookingRepo.NewMongoBookingRepo

// Re-export the CarRepository interface and constructor.
type CarRepository = carRepo.CarRepository

var NewMongoCarRepo = carRepo.NewMongoCarRepo

// Re-export the UserRepository interface and constructor.
type UserRepository = userRepo.UserRepository

var NewMongoUserRepo = userRepo.NewMongoUserRepo

// Re-export the PaymentRepository interface and constructor.
type PaymentRepository = paymentRepo.PaymentRepository

var NewMongoPaymentRepo = paymentRepo.NewMongoPaymentRepo
