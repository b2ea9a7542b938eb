package progression

import "testing"

func TestXP(t *testing.T) {
	cases := []struct {
		name            string
		duration        int
		difficulty      int
		streak          int
		activitiesToday int
		want            int
	}{
		{
			name:       "baseline_thirty_minutes_difficulty_three",
			duration:   30,
			difficulty: 3,
			want:       110, // 50 + 30 + 30, no multiplier
		},
		{
			name:       "duration_bonus_caps_at_100",
			duration:   600,
			difficulty: 1,
			want:       160, // 50 + 100 + 10
		},
		{
			name:       "duration_rounds_down_to_15",
			duration:   44,
			difficulty: 1,
			want:       90, // 50 + 30 + 10
		},
		{
			name:       "streak_three_multiplier",
			duration:   30,
			difficulty: 3,
			streak:     3,
			want:       121, // floor(110 * 1.1)
		},
		{
			name:       "streak_seven_multiplier",
			duration:   30,
			difficulty: 3,
			streak:     7,
			want:       137, // floor(110 * 1.25)
		},
		{
			name:       "streak_thirty_multiplier",
			duration:   30,
			difficulty: 3,
			streak:     30,
			want:       165, // floor(110 * 1.5)
		},
		{
			name:            "third_activity_bonus",
			duration:        30,
			difficulty:      3,
			activitiesToday: 3,
			want:            135,
		},
		{
			name:            "fifth_activity_stacks_both_bonuses",
			duration:        30,
			difficulty:      3,
			activitiesToday: 5,
			want:            185,
		},
		{
			name:       "zero_duration_still_earns_base",
			duration:   0,
			difficulty: 1,
			want:       60,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := XP(tc.duration, tc.difficulty, tc.streak, tc.activitiesToday)
			if got != tc.want {
				t.Fatalf("XP(%d, %d, %d, %d)=%d, want %d",
					tc.duration, tc.difficulty, tc.streak, tc.activitiesToday, got, tc.want)
			}
		})
	}
}

func TestXPMonotonic(t *testing.T) {
	// Each argument held fixed, the award never decreases in the others.
	for d := 0; d <= 120; d += 15 {
		prev := -1
		for diff := 1; diff <= 5; diff++ {
			got := XP(d, diff, 0, 0)
			if got < prev {
				t.Fatalf("XP decreased in difficulty at duration=%d difficulty=%d: %d < %d", d, diff, got, prev)
			}
			prev = got
		}
	}
	for streak := 0; streak <= 35; streak++ {
		a := XP(30, 3, streak, 0)
		b := XP(30, 3, streak+1, 0)
		if b < a {
			t.Fatalf("XP decreased in streak at %d: %d < %d", streak, b, a)
		}
	}
	for today := 0; today <= 7; today++ {
		a := XP(30, 3, 0, today)
		b := XP(30, 3, 0, today+1)
		if b < a {
			t.Fatalf("XP decreased in activitiesToday at %d: %d < %d", today, b, a)
		}
	}
	if XP(30, 3, 0, 0) < 0 {
		t.Fatal("XP went negative")
	}
}
