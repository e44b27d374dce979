package timeline

import "time"

// Exception types, mirroring the persisted schedule exception records.
const (
	ExceptionHoliday      = "HOLIDAY"
	ExceptionVacation     = "VACATION"
	ExceptionSpecialHours = "SPECIAL_HOURS"
)

// Rule is an available weekly office-hours range for one weekday. Rules whose
// record is flagged unavailable are filtered out before reaching the resolver.
type Rule struct {
	ID      string
	Weekday time.Weekday
	Start   Minute
	End     Minute
}

// Exception is a date-specific override. A nil Start/End pair applies to the
// whole day. Exceptions always outrank weekly rules for the range they cover.
type Exception struct {
	ID    string
	Date  time.Time
	Type  string
	Start *Minute
	End   *Minute
}

// SameDate reports calendar-day equality by year/month/day.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ResolveDay turns the weekly rule set and exceptions into the availability
// partition for one date. The day starts fully non-working; matching weekday
// rules carve working ranges (last write wins on overlap); exceptions for the
// date are applied afterwards in input order and override whatever the rules
// produced. Adjacent intervals of the same kind are merged before returning.
func ResolveDay(date time.Time, rules []Rule, exceptions []Exception) []ResolvedInterval {
	p := newDayPartition(KindNonWorking, "")

	weekday := date.Weekday()
	for _, r := range rules {
		if r.Weekday != weekday {
			continue
		}
		p = p.carve(r.Start, r.End, KindWorking, "rule:"+r.ID)
	}

	for _, ex := range exceptions {
		if !SameDate(ex.Date, date) {
			continue
		}
		source := "exception:" + ex.ID
		if ex.Start == nil || ex.End == nil {
			// An all-day exception replaces the entire resolution. A
			// SPECIAL_HOURS exception without a range carries no actionable
			// schedule and must not leave the weekly hours in place.
			p = newDayPartition(KindNonWorking, source)
			continue
		}
		kind := KindNonWorking
		if ex.Type == ExceptionSpecialHours {
			kind = KindWorking
		}
		p = p.carve(*ex.Start, *ex.End, kind, source)
	}

	return p.merged()
}
