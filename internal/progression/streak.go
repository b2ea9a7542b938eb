package progression

// NextStreak decides the consecutive-day streak after a completion.
// Same day leaves it untouched (multiple completions per day count once),
// yesterday extends it, anything else restarts at 1.
func NextStreak(current int, lastActivityDay, today, yesterday string) int {
	switch lastActivityDay {
	case today:
		return current
	case yesterday:
		return current + 1
	default:
		return 1
	}
}
