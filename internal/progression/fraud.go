package progression

import "time"

// MaxPlausibleMinutes caps a self-reported work interval at eight hours.
// This is a best-effort anti-abuse heuristic, not a security boundary.
const MaxPlausibleMinutes = 480

// FraudReasonDuration is the audit-log reason for an over-cap interval.
const FraudReasonDuration = "duration_exceeded"

// EffectiveDuration resolves the minutes an activity is credited for.
// When both timestamps parse and the elapsed time is positive it wins over
// the estimate; over the cap the completion must be rejected (fraud=true).
// Malformed or missing timestamps fall back silently to the estimate.
func EffectiveDuration(startAt, endAt *string, estimatedMinutes int) (minutes int, fraud bool) {
	minutes = estimatedMinutes
	if startAt == nil || endAt == nil {
		return minutes, false
	}
	start, ok := parseTimestamp(*startAt)
	if !ok {
		return minutes, false
	}
	end, ok := parseTimestamp(*endAt)
	if !ok {
		return minutes, false
	}
	// Compare the raw interval so a fractional overrun past the cap is
	// still caught, then truncate to credited minutes.
	interval := end.Sub(start)
	if interval > MaxPlausibleMinutes*time.Minute {
		return 0, true
	}
	if elapsed := int(interval.Minutes()); elapsed > 0 {
		minutes = elapsed
	}
	return minutes, false
}

func parseTimestamp(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	// zoneless ISO timestamps from older clients
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
