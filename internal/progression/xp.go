package progression

const (
	baseXP           = 50
	maxDurationBonus = 100

	// DayClearBonus is granted when a completion empties the day's pending
	// queue (the completing activity counts as pending at evaluation time).
	DayClearBonus = 75
)

// XP computes the award for a completed activity. All arithmetic is integral;
// the streak multiplier is applied as a scaled integer ratio so results never
// depend on float rounding.
func XP(durationMinutes, difficulty, streakDays, activitiesToday int) int {
	durationBonus := (durationMinutes / 15) * 15
	if durationBonus > maxDurationBonus {
		durationBonus = maxDurationBonus
	}
	raw := baseXP + durationBonus + difficulty*10

	num, den := streakMultiplier(streakDays)
	xp := raw * num / den

	if activitiesToday >= 3 {
		xp += 25
	}
	if activitiesToday >= 5 {
		xp += 50
	}
	return xp
}

// streakMultiplier returns the streak bonus as a numerator/denominator pair:
// 1.5x at 30 days, 1.25x at 7, 1.1x at 3, else 1x.
func streakMultiplier(streakDays int) (int, int) {
	switch {
	case streakDays >= 30:
		return 3, 2
	case streakDays >= 7:
		return 5, 4
	case streakDays >= 3:
		return 11, 10
	default:
		return 1, 1
	}
}
