package appointment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/caltime"
)

var monday = caltime.NewDate(2026, time.October, 19)

func hm(s string) caltime.TimeOfDay {
	t, err := caltime.ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func rule(day int, start, end string) AvailabilityRule {
	return AvailabilityRule{DayOfWeek: day, StartTime: hm(start), EndTime: hm(end), IsAvailable: true}
}

func times(ss ...string) []caltime.TimeOfDay {
	out := make([]caltime.TimeOfDay, len(ss))
	for i, s := range ss {
		out[i] = hm(s)
	}
	return out
}

func TestGenerateSlots(t *testing.T) {
	tests := []struct {
		name  string
		rules []AvailabilityRule
		slot  int
		want  []caltime.TimeOfDay
	}{
		{
			name:  "exact single slot",
			rules: []AvailabilityRule{rule(1, "08:00", "08:30")},
			slot:  30,
			want:  times("08:00"),
		},
		{
			name:  "partial slot is dropped",
			rules: []AvailabilityRule{rule(1, "08:00", "08:29")},
			slot:  30,
			want:  nil,
		},
		{
			name:  "trailing remainder is truncated",
			rules: []AvailabilityRule{rule(1, "08:00", "09:15")},
			slot:  30,
			want:  times("08:00", "08:30"),
		},
		{
			name: "morning and afternoon blocks in order",
			rules: []AvailabilityRule{
				rule(1, "14:00", "15:00"),
				rule(1, "08:00", "09:00"),
			},
			slot: 30,
			want: times("08:00", "08:30", "14:00", "14:30"),
		},
		{
			name: "unavailable rule is ignored",
			rules: []AvailabilityRule{
				rule(1, "08:00", "09:00"),
				{DayOfWeek: 1, StartTime: hm("10:00"), EndTime: hm("11:00"), IsAvailable: false},
			},
			slot: 30,
			want: times("08:00", "08:30"),
		},
		{
			name:  "other weekday is ignored",
			rules: []AvailabilityRule{rule(2, "08:00", "09:00")},
			slot:  30,
			want:  nil,
		},
		{
			name: "duplicates collapse",
			rules: []AvailabilityRule{
				rule(1, "08:00", "09:00"),
				rule(1, "08:30", "09:30"),
			},
			slot: 30,
			want: times("08:00", "08:30", "09:00"),
		},
		{
			name:  "non positive slot size",
			rules: []AvailabilityRule{rule(1, "08:00", "09:00")},
			slot:  0,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateSlots(tt.rules, monday, tt.slot)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateSlots_Deterministic(t *testing.T) {
	rules := []AvailabilityRule{
		rule(1, "14:00", "18:00"),
		rule(1, "08:00", "12:00"),
	}

	first := GenerateSlots(rules, monday, 30)
	second := GenerateSlots(rules, monday, 30)

	assert.Equal(t, first, second)
	assert.Len(t, first, 16)
}

func TestValidateRules(t *testing.T) {
	dentist := uuid.New()
	withDentist := func(rs ...AvailabilityRule) []AvailabilityRule {
		for i := range rs {
			rs[i].DentistID = dentist
		}
		return rs
	}

	t.Run("valid blocks", func(t *testing.T) {
		err := ValidateRules(withDentist(
			rule(1, "08:00", "12:00"),
			rule(1, "14:00", "18:00"),
			rule(2, "08:00", "12:00"),
		))
		assert.NoError(t, err)
	})

	t.Run("touching blocks are allowed", func(t *testing.T) {
		err := ValidateRules(withDentist(rule(1, "08:00", "10:00"), rule(1, "10:00", "12:00")))
		assert.NoError(t, err)
	})

	t.Run("start not before end", func(t *testing.T) {
		err := ValidateRules(withDentist(rule(1, "12:00", "08:00")))
		var ruleErr *InvalidRuleError
		assert.ErrorAs(t, err, &ruleErr)
		assert.Contains(t, ruleErr.Reason, "before")
	})

	t.Run("empty interval", func(t *testing.T) {
		err := ValidateRules(withDentist(rule(1, "08:00", "08:00")))
		var ruleErr *InvalidRuleError
		assert.ErrorAs(t, err, &ruleErr)
	})

	t.Run("overlap on same day", func(t *testing.T) {
		err := ValidateRules(withDentist(rule(1, "08:00", "12:00"), rule(1, "11:00", "13:00")))
		var ruleErr *InvalidRuleError
		assert.ErrorAs(t, err, &ruleErr)
		assert.Contains(t, ruleErr.Reason, "overlaps")
	})

	t.Run("overlap with disabled rule still rejected", func(t *testing.T) {
		disabled := rule(1, "09:00", "10:00")
		disabled.IsAvailable = false
		err := ValidateRules(withDentist(rule(1, "08:00", "12:00"), disabled))
		assert.Error(t, err)
	})

	t.Run("bad weekday", func(t *testing.T) {
		err := ValidateRules(withDentist(rule(7, "08:00", "09:00")))
		assert.Error(t, err)
	})

	t.Run("different dentists may overlap", func(t *testing.T) {
		a := rule(1, "08:00", "12:00")
		a.DentistID = uuid.New()
		b := rule(1, "08:00", "12:00")
		b.DentistID = uuid.New()
		assert.NoError(t, ValidateRules([]AvailabilityRule{a, b}))
	})
}

func TestOccupied_IgnoresCancelled(t *testing.T) {
	set := Occupied([]Appointment{
		{StartTime: hm("08:00"), Status: StatusScheduled},
		{StartTime: hm("08:30"), Status: StatusCancelled},
		{StartTime: hm("09:00"), Status: StatusConfirmed},
		{StartTime: hm("09:30"), Status: StatusCompleted},
	})

	assert.True(t, set.Has(hm("08:00")))
	assert.False(t, set.Has(hm("08:30")))
	assert.True(t, set.Has(hm("09:00")))
	assert.True(t, set.Has(hm("09:30")))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusScheduled, StatusConfirmed))
	assert.True(t, CanTransition(StatusConfirmed, StatusCompleted))
	assert.True(t, CanTransition(StatusScheduled, StatusCancelled))
	assert.True(t, CanTransition(StatusConfirmed, StatusCancelled))

	assert.False(t, CanTransition(StatusScheduled, StatusCompleted))
	assert.False(t, CanTransition(StatusCompleted, StatusCancelled))
	assert.False(t, CanTransition(StatusCancelled, StatusScheduled))
	assert.False(t, CanTransition(StatusConfirmed, StatusScheduled))
}
