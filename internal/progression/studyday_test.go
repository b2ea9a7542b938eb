package progression

import (
	"testing"
	"time"
)

func TestDayKey(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want string
	}{
		{
			name: "afternoon_is_same_date",
			in:   time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC),
			want: "2024-03-10",
		},
		{
			name: "just_before_3am_counts_as_previous_day",
			in:   time.Date(2024, 3, 10, 2, 59, 0, 0, time.UTC),
			want: "2024-03-09",
		},
		{
			name: "3am_starts_the_new_day",
			in:   time.Date(2024, 3, 10, 3, 0, 0, 0, time.UTC),
			want: "2024-03-10",
		},
		{
			name: "non_utc_input_normalized",
			in:   time.Date(2024, 3, 10, 1, 0, 0, 0, time.FixedZone("BRT", -3*3600)),
			want: "2024-03-10",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DayKey(tc.in); got != tc.want {
				t.Fatalf("DayKey(%v)=%q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestWeekStart(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want string
	}{
		{
			name: "wednesday_maps_to_monday",
			in:   time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC),
			want: "2024-03-11",
		},
		{
			name: "monday_is_its_own_week_start",
			in:   time.Date(2024, 3, 11, 12, 0, 0, 0, time.UTC),
			want: "2024-03-11",
		},
		{
			name: "sunday_belongs_to_previous_monday",
			in:   time.Date(2024, 3, 17, 12, 0, 0, 0, time.UTC),
			want: "2024-03-11",
		},
		{
			name: "early_monday_still_previous_week",
			in:   time.Date(2024, 3, 11, 1, 0, 0, 0, time.UTC),
			want: "2024-03-04",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := WeekStart(tc.in); got != tc.want {
				t.Fatalf("WeekStart(%v)=%q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestWeekDays(t *testing.T) {
	days := WeekDays("2024-03-11")
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}
	if days[0] != "2024-03-11" || days[6] != "2024-03-17" {
		t.Fatalf("unexpected bounds: %v", days)
	}
}
