package appointment

import (
	"sort"

	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/caltime"
)

// GenerateSlots lists the bookable start times a rule set opens on date.
// A slot must fit entirely before the rule's end; a trailing partial slot is
// dropped. The result is sorted and free of duplicates.
func GenerateSlots(rules []AvailabilityRule, date caltime.Date, slotMinutes int) []caltime.TimeOfDay {
	if slotMinutes <= 0 {
		return nil
	}

	weekday := date.Weekday()
	seen := make(map[caltime.TimeOfDay]struct{})
	var slots []caltime.TimeOfDay

	for _, r := range rules {
		if !r.IsAvailable || r.DayOfWeek != weekday {
			continue
		}
		for t := r.StartTime; t.Add(slotMinutes) <= r.EndTime; t = t.Add(slotMinutes) {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			slots = append(slots, t)
		}
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })
	return slots
}
