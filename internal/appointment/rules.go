package appointment

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// InvalidRuleError rejects an availability rule at write time.
type InvalidRuleError struct {
	Rule   AvailabilityRule
	Reason string
}

func (e *InvalidRuleError) Error() string {
	return fmt.Sprintf("invalid availability rule (day %d %s-%s): %s",
		e.Rule.DayOfWeek, e.Rule.StartTime, e.Rule.EndTime, e.Reason)
}

// ValidateRules checks a rule set before it is stored. Rules sharing a
// (dentist, weekday) must not overlap, whether or not they are available.
func ValidateRules(rules []AvailabilityRule) error {
	type dayKey struct {
		dentist uuid.UUID
		day     int
	}
	byDay := make(map[dayKey][]AvailabilityRule)

	for _, r := range rules {
		if r.DayOfWeek < 0 || r.DayOfWeek > 6 {
			return &InvalidRuleError{Rule: r, Reason: "day_of_week must be between 0 and 6"}
		}
		if !r.StartTime.Valid() || !r.EndTime.Valid() {
			return &InvalidRuleError{Rule: r, Reason: "times must fall within the day"}
		}
		if r.StartTime >= r.EndTime {
			return &InvalidRuleError{Rule: r, Reason: "start_time must be before end_time"}
		}
		k := dayKey{dentist: r.DentistID, day: r.DayOfWeek}
		byDay[k] = append(byDay[k], r)
	}

	for _, day := range byDay {
		sort.Slice(day, func(i, j int) bool { return day[i].StartTime < day[j].StartTime })
		for i := 1; i < len(day); i++ {
			if day[i].StartTime < day[i-1].EndTime {
				return &InvalidRuleError{
					Rule:   day[i],
					Reason: fmt.Sprintf("overlaps %s-%s", day[i-1].StartTime, day[i-1].EndTime),
				}
			}
		}
	}

	return nil
}
