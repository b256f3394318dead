package cron

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bookingRepo "rentx/database/repository/booking"
	"rentx/models"

	"go.uber.org/zap"
)

// fakeBookings is an in-memory stand-in for the booking collection
// covering only what the reconciler touches.
type fakeBookings struct {
	bookingRepo.BookingRepository

	mu    sync.Mutex
	items map[string]models.Booking
}

func newFakeBookings(bookings ...models.Booking) *fakeBookings {
	f := &fakeBookings{items: map[string]models.Booking{}}
	for _, b := range bookings {
		f.items[b.ID] = b
	}
	return f
}

func (f *fakeBookings) get(id string) models.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[id]
}

func (f *fakeBookings) filter(keep func(models.Booking) bool) []models.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.items {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}

func (f *fakeBookings) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	b := f.get(id)
	if b.ID == "" {
		return nil, nil
	}
	return &b, nil
}

func (f *fakeBookings) UpdateWithStatus(ctx context.Context, b *models.Booking, expected models.BookingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.items[b.ID]
	if !ok || stored.Status != expected {
		return bookingRepo.ErrStatusChanged
	}
	f.items[b.ID] = *b
	return nil
}

func (f *fakeBookings) FindByStatusAndStartBefore(ctx context.Context, status models.BookingStatus, cutoff time.Time) ([]models.Booking, error) {
	return f.filter(func(b models.Booking) bool {
		return b.Status == status && !b.StartDate.After(cutoff)
	}), nil
}

func (f *fakeBookings) FindByStatusAndEndBefore(ctx context.Context, status models.BookingStatus, cutoff time.Time) ([]models.Booking, error) {
	return f.filter(func(b models.Booking) bool {
		return b.Status == status && !b.EndDate.After(cutoff)
	}), nil
}

func (f *fakeBookings) FindUnpaidOnlineBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	return f.filter(func(b models.Booking) bool {
		return b.Status == models.BookingConfirmed &&
			b.PaymentMethod == models.PayNow &&
			b.PaymentStatus == models.PaymentPending &&
			!b.BookingDate.After(cutoff)
	}), nil
}

func (f *fakeBookings) FindNoShowPickupsBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	return f.filter(func(b models.Booking) bool {
		return b.Status == models.BookingConfirmed &&
			b.PickupStatus == models.PickupPending &&
			b.PaymentStatus == models.PaymentPayAtPickup &&
			!b.StartDate.After(cutoff)
	}), nil
}

func (f *fakeBookings) FindPendingRefundsBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	return f.filter(func(b models.Booking) bool {
		return b.RefundStatus == models.RefundPending &&
			b.CancellationDate != nil && !b.CancellationDate.After(cutoff)
	}), nil
}

type fakeCars struct {
	mu    sync.Mutex
	freed []string
}

func (f *fakeCars) GetCar(ctx context.Context, id string) (*models.Car, error) { return nil, nil }
func (f *fakeCars) GetAvailableCars(ctx context.Context) ([]models.Car, error) { return nil, nil }
func (f *fakeCars) ClearListingCache(ctx context.Context)                      {}
func (f *fakeCars) SetAvailability(ctx context.Context, id string, available bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if available {
		f.freed = append(f.freed, id)
	}
	return nil
}

type fakeProcessor struct {
	err   error
	calls int
}

func (f *fakeProcessor) Refund(ctx context.Context, bookingID string, amount float64) (string, error) {
	f.calls++
	return "re_test", f.err
}

func testReconciler(repo *fakeBookings) (*Reconciler, *fakeCars, *fakeProcessor) {
	cars := &fakeCars{}
	proc := &fakeProcessor{}
	return &Reconciler{
		Bookings: repo,
		Cars:     cars,
		Payments: proc,
		Logger:   zap.NewNop(),
	}, cars, proc
}

func at(day, hour int) time.Time {
	return time.Date(2026, time.April, day, hour, 0, 0, 0, time.UTC)
}

func TestPromoteStatuses(t *testing.T) {
	now := at(10, 12)
	repo := newFakeBookings(
		models.Booking{ID: "should-activate", Status: models.BookingConfirmed, StartDate: at(10, 9), EndDate: at(12, 9)},
		models.Booking{ID: "should-complete", Status: models.BookingActive, StartDate: at(7, 9), EndDate: at(10, 9)},
		models.Booking{ID: "future", Status: models.BookingConfirmed, StartDate: at(11, 9), EndDate: at(13, 9)},
	)
	r, _, _ := testReconciler(repo)

	r.PromoteStatuses(context.Background(), now)

	if got := repo.get("should-activate").Status; got != models.BookingActive {
		t.Errorf("started booking = %s, want ACTIVE", got)
	}
	if got := repo.get("should-complete").Status; got != models.BookingCompleted {
		t.Errorf("ended booking = %s, want COMPLETED", got)
	}
	if got := repo.get("future").Status; got != models.BookingConfirmed {
		t.Errorf("future booking = %s, want untouched CONFIRMED", got)
	}
}

func TestPromoteStatusesIsIdempotent(t *testing.T) {
	now := at(10, 12)
	repo := newFakeBookings(
		models.Booking{ID: "b1", Status: models.BookingConfirmed, StartDate: at(10, 9), EndDate: at(12, 9)},
	)
	r, _, _ := testReconciler(repo)

	r.PromoteStatuses(context.Background(), now)
	first := repo.get("b1")

	// A second pass over the same clock must not move anything further.
	r.PromoteStatuses(context.Background(), now)
	second := repo.get("b1")

	if first.Status != models.BookingActive || second.Status != models.BookingActive {
		t.Errorf("statuses = %s then %s, want ACTIVE both times", first.Status, second.Status)
	}
}

func TestAutoCancelUnpaidOnline(t *testing.T) {
	now := at(10, 12)
	repo := newFakeBookings(
		models.Booking{
			ID: "stale", Status: models.BookingConfirmed, CarID: "car-1",
			PaymentMethod: models.PayNow, PaymentStatus: models.PaymentPending,
			BookingDate: now.Add(-30 * time.Hour),
			StartDate:   at(15, 9), EndDate: at(17, 9),
		},
		models.Booking{
			ID: "fresh", Status: models.BookingConfirmed, CarID: "car-2",
			PaymentMethod: models.PayNow, PaymentStatus: models.PaymentPending,
			BookingDate: now.Add(-2 * time.Hour),
			StartDate:   at(15, 9), EndDate: at(17, 9),
		},
	)
	r, cars, _ := testReconciler(repo)

	r.AutoCancelSweep(context.Background(), now)

	stale := repo.get("stale")
	if stale.Status != models.BookingCancelled {
		t.Errorf("stale booking = %s, want CANCELLED", stale.Status)
	}
	if stale.CancellationReason == "" || stale.CancellationDate == nil {
		t.Error("auto-cancel must record a reason and date")
	}
	if got := repo.get("fresh").Status; got != models.BookingConfirmed {
		t.Errorf("fresh booking = %s, want untouched CONFIRMED", got)
	}
	if len(cars.freed) != 1 || cars.freed[0] != "car-1" {
		t.Errorf("freed cars = %v, want [car-1]", cars.freed)
	}
}

func TestAutoCancelNoShow(t *testing.T) {
	now := at(10, 12)
	repo := newFakeBookings(
		models.Booking{
			ID: "no-show", Status: models.BookingConfirmed, CarID: "car-1",
			PaymentMethod: models.PayAtPickup, PaymentStatus: models.PaymentPayAtPickup,
			PickupStatus: models.PickupPending,
			StartDate:    now.Add(-3 * time.Hour), EndDate: at(12, 9),
		},
	)
	r, cars, _ := testReconciler(repo)

	r.AutoCancelSweep(context.Background(), now)

	if got := repo.get("no-show").Status; got != models.BookingCancelled {
		t.Errorf("no-show booking = %s, want CANCELLED", got)
	}
	if len(cars.freed) != 1 {
		t.Errorf("freed cars = %v, want the no-show's car", cars.freed)
	}
}

func TestAutoCancelLosesRaceToPickup(t *testing.T) {
	now := at(10, 12)
	repo := newFakeBookings(
		models.Booking{
			ID: "picked-up-meanwhile", Status: models.BookingActive, CarID: "car-1",
			PaymentMethod: models.PayAtPickup, PaymentStatus: models.PaymentPayAtPickup,
			PickupStatus: models.PickupPickedUp,
			StartDate:    now.Add(-3 * time.Hour), EndDate: at(12, 9),
		},
	)
	r, cars, _ := testReconciler(repo)

	// Feed the booking through the cancel path directly: the CAS against
	// CONFIRMED must lose and leave the booking alone.
	b := repo.get("picked-up-meanwhile")
	r.autoCancel(context.Background(), &b, now, "test sweep")

	if got := repo.get("picked-up-meanwhile").Status; got != models.BookingActive {
		t.Errorf("booking = %s, want ACTIVE preserved after lost race", got)
	}
	if len(cars.freed) != 0 {
		t.Errorf("freed cars = %v, want none", cars.freed)
	}
}

func TestSettleRefunds(t *testing.T) {
	now := at(20, 12)
	oldCancel := now.Add(-8 * 24 * time.Hour)
	recentCancel := now.Add(-time.Hour)

	repo := newFakeBookings(
		models.Booking{
			ID: "paid-refund", Status: models.BookingCancelled,
			PaymentStatus: models.PaymentPaid, RefundStatus: models.RefundPending,
			RefundAmount: 500, CancellationDate: &oldCancel,
		},
		models.Booking{
			ID: "zero-refund", Status: models.BookingCancelled,
			PaymentStatus: models.PaymentPayAtPickup, RefundStatus: models.RefundPending,
			RefundAmount: 0, CancellationDate: &oldCancel,
		},
		models.Booking{
			ID: "too-recent", Status: models.BookingCancelled,
			PaymentStatus: models.PaymentPaid, RefundStatus: models.RefundPending,
			RefundAmount: 500, CancellationDate: &recentCancel,
		},
	)
	r, _, proc := testReconciler(repo)

	r.SettleRefunds(context.Background(), now)

	if got := repo.get("paid-refund").RefundStatus; got != models.RefundProcessed {
		t.Errorf("paid refund = %s, want PROCESSED", got)
	}
	if got := repo.get("zero-refund").RefundStatus; got != models.RefundProcessed {
		t.Errorf("zero refund = %s, want direct PROCESSED", got)
	}
	if got := repo.get("too-recent").RefundStatus; got != models.RefundPending {
		t.Errorf("recent refund = %s, want still PENDING", got)
	}
	if proc.calls != 1 {
		t.Errorf("processor calls = %d, want 1 (only the captured payment)", proc.calls)
	}
}

func TestSettleRefundsProcessorFailure(t *testing.T) {
	now := at(20, 12)
	oldCancel := now.Add(-8 * 24 * time.Hour)
	repo := newFakeBookings(
		models.Booking{
			ID: "b1", Status: models.BookingCancelled,
			PaymentStatus: models.PaymentPaid, RefundStatus: models.RefundPending,
			RefundAmount: 500, CancellationDate: &oldCancel,
		},
	)
	r, _, proc := testReconciler(repo)
	proc.err = errors.New("stripe is down")

	r.SettleRefunds(context.Background(), now)

	if got := repo.get("b1").RefundStatus; got != models.RefundFailed {
		t.Errorf("refund = %s, want FAILED", got)
	}
}
