package progression

import "time"

// A study day runs from 03:00 UTC to 03:00 UTC: wall-clock time is shifted
// back by three hours before truncating to a calendar date, so a late-night
// session still counts toward the day it started. No DST handling.
const dayShift = -3 * time.Hour

const dayKeyLayout = "2006-01-02"

// DayKey returns the study-day bucket for an instant.
func DayKey(t time.Time) string {
	return t.UTC().Add(dayShift).Format(dayKeyLayout)
}

func Today() string {
	return DayKey(time.Now())
}

func Yesterday() string {
	return DayKey(time.Now().Add(-24 * time.Hour))
}

// WeekStart returns the day key of the Monday of t's study week.
func WeekStart(t time.Time) string {
	shifted := t.UTC().Add(dayShift)
	weekday := int(shifted.Weekday()+6) % 7 // Monday = 0
	return shifted.AddDate(0, 0, -weekday).Format(dayKeyLayout)
}

// WeekDays returns the seven day keys of the study week starting at weekStart.
func WeekDays(weekStart string) []string {
	start, err := time.Parse(dayKeyLayout, weekStart)
	if err != nil {
		return nil
	}
	days := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		days = append(days, start.AddDate(0, 0, i).Format(dayKeyLayout))
	}
	return days
}

// LastNDays returns the last n day keys ending with today, oldest first.
func LastNDays(n int) []string {
	now := time.Now()
	days := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		days = append(days, DayKey(now.Add(-time.Duration(i)*24*time.Hour)))
	}
	return days
}
