package loyalty

import (
	"context"

	"rentx/config"
	bookingRepo "rentx/database/repository/booking"
	"rentx/models"

	"go.uber.org/zap"
)

// Service computes loyalty discounts from the configured tier list.
// Qualifying bookings are the user's COMPLETED plus CONFIRMED bookings.
type Service struct {
	Bookings bookingRepo.BookingRepository
	Tiers    []config.LoyaltyTier
	Logger   *zap.Logger
}

// QualifyingBookings counts the bookings that feed tier selection.
func (s *Service) QualifyingBookings(ctx context.Context, userID string) (int64, error) {
	completed, err := s.Bookings.CountByUserAndStatus(ctx, userID, models.BookingCompleted)
	if err != nil {
		return 0, err
	}
	confirmed, err := s.Bookings.CountByUserAndStatus(ctx, userID, models.BookingConfirmed)
	if err != nil {
		return 0, err
	}
	return completed + confirmed, nil
}

// DiscountFor returns the discount amount for the user on the given
// total. Tiers are evaluated in configured order and the first tier whose
// threshold is met wins, so configuration must list higher thresholds
// first.
func (s *Service) DiscountFor(ctx context.Context, userID string, totalAmount float64) (float64, error) {
	count, err := s.QualifyingBookings(ctx, userID)
	if err != nil {
		return 0, err
	}
	discount := DiscountForCount(totalAmount, s.Tiers, count)
	if discount > 0 {
		s.Logger.Info("applying loyalty discount",
			zap.String("userId", userID),
			zap.Int64("qualifyingBookings", count),
			zap.Float64("discount", discount))
	}
	return discount, nil
}

// TierFor returns the name of the first matching tier, or "NEW" when no
// tier matches.
func (s *Service) TierFor(ctx context.Context, userID string) (string, error) {
	count, err := s.QualifyingBookings(ctx, userID)
	if err != nil {
		return "", err
	}
	for _, tier := range s.Tiers {
		if count >= tier.Bookings {
			return tier.Name, nil
		}
	}
	return "NEW", nil
}

// DiscountForCount is the pure tier lookup: first matching tier in list
// order, zero when none matches.
func DiscountForCount(totalAmount float64, tiers []config.LoyaltyTier, qualifyingBookings int64) float64 {
	for _, tier := range tiers {
		if qualifyingBookings >= tier.Bookings {
			return totalAmount * tier.Discount
		}
	}
	return 0
}
