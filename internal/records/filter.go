package records

import "time"

// TargetDates are the two acceptance dates for a pass.
//
// Near is today shifted by the hearing-date offset: clients whose hearing
// falls in the upcoming action window. Far is Near shifted again by the
// future offset; it functions as a second, effectively evergreen acceptance
// date carried over from the original business rules.
type TargetDates struct {
	Near time.Time
	Far  time.Time
}

// ComputeTargets derives both acceptance dates from a reference time.
func ComputeTargets(now time.Time, nearOffsetDays, farOffsetDays int) TargetDates {
	near := now.AddDate(0, 0, nearOffsetDays)
	return TargetDates{
		Near: time.Date(near.Year(), near.Month(), near.Day(), 0, 0, 0, 0, time.UTC),
		Far:  time.Date(near.Year(), near.Month(), near.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, farOffsetDays),
	}
}

// Filter keeps records whose category is allowed and whose hearing date
// equals one of the two targets. Input order is preserved; records without a
// parseable hearing date are always excluded.
func Filter(recs []ClientRecord, allowed []string, targets TargetDates) []ClientRecord {
	allowSet := make(map[string]struct{}, len(allowed))
	for _, c := range allowed {
		allowSet[c] = struct{}{}
	}

	out := make([]ClientRecord, 0, len(recs))
	for _, r := range recs {
		if _, ok := allowSet[r.Category]; !ok {
			continue
		}
		if r.NextHearingDate == nil {
			continue
		}
		d := *r.NextHearingDate
		if SameDate(d, targets.Near) || SameDate(d, targets.Far) {
			out = append(out, r)
		}
	}
	return out
}
