package loyalty

import (
	"context"
	"testing"

	"rentx/config"
	bookingRepo "rentx/database/repository/booking"
	"rentx/models"

	"go.uber.org/zap"
)

// countRepo stubs only the counting method the loyalty service touches.
type countRepo struct {
	bookingRepo.BookingRepository
	completed int64
	confirmed int64
}

func (r *countRepo) CountByUserAndStatus(ctx context.Context, userID string, status models.BookingStatus) (int64, error) {
	switch status {
	case models.BookingCompleted:
		return r.completed, nil
	case models.BookingConfirmed:
		return r.confirmed, nil
	}
	return 0, nil
}

func testTiers() []config.LoyaltyTier {
	return []config.LoyaltyTier{
		{Bookings: 10, Discount: 0.15, Name: "GOLD"},
		{Bookings: 5, Discount: 0.10, Name: "SILVER"},
		{Bookings: 0, Discount: 0, Name: "NEW"},
	}
}

func TestDiscountForCount(t *testing.T) {
	tiers := testTiers()

	cases := []struct {
		name  string
		count int64
		want  float64
	}{
		{"new customer gets nothing", 0, 0},
		{"four bookings still nothing", 4, 0},
		{"five bookings reach silver", 5, 100},
		{"nine bookings stay silver", 9, 100},
		{"ten bookings reach gold", 10, 150},
		{"well past gold stays gold", 40, 150},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DiscountForCount(1000, tiers, tc.count)
			if got != tc.want {
				t.Errorf("DiscountForCount(1000, tiers, %d) = %v, want %v", tc.count, got, tc.want)
			}
		})
	}
}

func TestQualifyingBookingsSumsCompletedAndConfirmed(t *testing.T) {
	svc := &Service{
		Bookings: &countRepo{completed: 3, confirmed: 2},
		Tiers:    testTiers(),
		Logger:   zap.NewNop(),
	}

	count, err := svc.QualifyingBookings(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("QualifyingBookings: %v", err)
	}
	if count != 5 {
		t.Errorf("count = %d, want 5", count)
	}

	// Five qualifying bookings land in the silver tier.
	discount, err := svc.DiscountFor(context.Background(), "user-1", 2000)
	if err != nil {
		t.Fatalf("DiscountFor: %v", err)
	}
	if discount != 200 {
		t.Errorf("discount = %v, want 200", discount)
	}
}

func TestTierFor(t *testing.T) {
	cases := []struct {
		name      string
		completed int64
		confirmed int64
		want      string
	}{
		{"fresh account", 0, 0, "NEW"},
		{"silver threshold", 5, 0, "SILVER"},
		{"gold via mixed statuses", 8, 2, "GOLD"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &Service{
				Bookings: &countRepo{completed: tc.completed, confirmed: tc.confirmed},
				Tiers:    testTiers(),
				Logger:   zap.NewNop(),
			}
			tier, err := svc.TierFor(context.Background(), "user-1")
			if err != nil {
				t.Fatalf("TierFor: %v", err)
			}
			if tier != tc.want {
				t.Errorf("tier = %s, want %s", tier, tc.want)
			}
		})
	}
}
