package engine

import "time"

// StreakState is the streak portion of the progress aggregate.
// LastCompletionDate is nil before the first ever completion and is
// otherwise a midnight-truncated date.
type StreakState struct {
	Current            int
	Longest            int
	LastCompletionDate *time.Time
}

// DateOnly truncates a timestamp to its calendar date in the local zone.
// Streaks are about days, not hours.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween returns whole calendar days from a to b. The civil dates
// are compared in UTC: local midnights can sit 23 or 25 hours apart
// around a DST transition, and the two sides may carry different zones.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// AdvanceStreak applies one completion on the given day.
//
// First ever completion starts a streak of 1. A repeat completion on the
// same day changes nothing. A completion on the next day extends the
// streak. A gap of two or more days resets the streak to 1 without
// touching the longest. A negative day difference means the stored date is
// in the future (clock skew or backdating); that also resets to 1 rather
// than corrupting the counters.
func AdvanceStreak(today time.Time, st StreakState) StreakState {
	day := DateOnly(today)

	if st.LastCompletionDate == nil {
		return StreakState{Current: 1, Longest: maxInt(st.Longest, 1), LastCompletionDate: &day}
	}

	switch diff := daysBetween(*st.LastCompletionDate, day); {
	case diff == 0:
		return st
	case diff == 1:
		cur := st.Current + 1
		return StreakState{Current: cur, Longest: maxInt(st.Longest, cur), LastCompletionDate: &day}
	default:
		// Broken streak, including diff < 0.
		return StreakState{Current: 1, Longest: maxInt(st.Longest, 1), LastCompletionDate: &day}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
