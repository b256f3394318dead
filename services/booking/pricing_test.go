package booking

import (
	"testing"
	"time"

	"rentx/config"
)

var testRefundPolicy = config.RefundPolicy{Over48h: 0.80, Over24h: 0.50, Under24h: 0}

func date(day, hour int) time.Time {
	return time.Date(2026, time.March, day, hour, 0, 0, 0, time.UTC)
}

func TestTotalDays(t *testing.T) {
	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"exactly one day", date(1, 10), date(2, 10), 1},
		{"one hour rounds up to a day", date(1, 10), date(1, 11), 1},
		{"25 hours bills two days", date(1, 10), date(2, 11), 2},
		{"three exact days", date(1, 10), date(4, 10), 3},
		{"three days and a minute bills four", date(1, 10), date(4, 10).Add(time.Minute), 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := TotalDays(tc.start, tc.end)
			if err != nil {
				t.Fatalf("TotalDays: %v", err)
			}
			if got != tc.want {
				t.Errorf("TotalDays(%v, %v) = %d, want %d", tc.start, tc.end, got, tc.want)
			}
		})
	}
}

func TestTotalDaysInvalidRange(t *testing.T) {
	if _, err := TotalDays(date(2, 10), date(1, 10)); !IsCode(err, CodeInvalidDuration) {
		t.Errorf("end before start: got %v, want %s", err, CodeInvalidDuration)
	}
	if _, err := TotalDays(date(1, 10), date(1, 10)); !IsCode(err, CodeInvalidDuration) {
		t.Errorf("zero-length range: got %v, want %s", err, CodeInvalidDuration)
	}
}

func TestCancellationRefund(t *testing.T) {
	cases := []struct {
		name   string
		notice float64
		want   float64
	}{
		{"50 hours notice refunds 80 percent", 50, 800},
		{"exactly 48 hours falls into the half band", 48, 500},
		{"30 hours notice refunds half", 30, 500},
		{"exactly 24 hours refunds nothing", 24, 0},
		{"10 hours notice refunds nothing", 10, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CancellationRefund(1000, tc.notice, testRefundPolicy)
			if got != tc.want {
				t.Errorf("CancellationRefund(1000, %v) = %v, want %v", tc.notice, got, tc.want)
			}
		})
	}
}

func TestLateReturnPenalty(t *testing.T) {
	const rate = 1000

	cases := []struct {
		name      string
		lateHours int64
		want      float64
	}{
		{"on time", 0, 0},
		{"within the two hour grace window", 2, 0},
		{"three hours late costs a quarter rate", 3, 250},
		{"six hours late still a quarter rate", 6, 250},
		{"seven hours late costs half rate", 7, 500},
		{"full day late costs half rate", 24, 500},
		{"25 hours late costs 1.5x for two started days", 25, 3000},
		{"49 hours late costs 1.5x for three started days", 49, 4500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := LateReturnPenalty(rate, tc.lateHours)
			if got != tc.want {
				t.Errorf("LateReturnPenalty(%d, %d) = %v, want %v", rate, tc.lateHours, got, tc.want)
			}
		})
	}
}

func TestExtensionCharge(t *testing.T) {
	const rate = 500

	cases := []struct {
		name       string
		extraHours int64
		want       float64
	}{
		{"any extension bills at least one day", 1, 500},
		{"exactly one day", 24, 500},
		{"a day and an hour bills two days", 25, 1000},
		{"three full days", 72, 1500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtensionCharge(rate, tc.extraHours)
			if got != tc.want {
				t.Errorf("ExtensionCharge(%d, %d) = %v, want %v", rate, tc.extraHours, got, tc.want)
			}
		})
	}
}
