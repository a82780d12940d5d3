package leave

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculateDays(t *testing.T) {
	cases := []struct {
		name       string
		start, end time.Time
		want       float64
	}{
		{"single day", date(2026, 3, 2), date(2026, 3, 2), 1},
		{"full week", date(2026, 3, 2), date(2026, 3, 8), 7},
		{"across month boundary", date(2026, 1, 30), date(2026, 2, 2), 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CalculateDays(tc.start, tc.end)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("CalculateDays = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCalculateDaysRejectsReversedRange(t *testing.T) {
	if _, err := CalculateDays(date(2026, 3, 8), date(2026, 3, 2)); err == nil {
		t.Fatal("expected error for end before start")
	}
}
