package caltime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "08:00", want: 480},
		{in: "17:30", want: 1050},
		{in: "00:00", want: 0},
		{in: "24:00", want: 1440},
		{in: "24:01", wantErr: true},
		{in: "8:00", wantErr: true},
		{in: "08:60", wantErr: true},
		{in: "ab:cd", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTime)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestDate_WeekdayAndAddDays(t *testing.T) {
	d, err := ParseDate("2026-10-19")
	require.NoError(t, err)

	assert.Equal(t, 1, d.Weekday(), "2026-10-19 is a Monday")
	assert.Equal(t, 0, d.AddDays(-1).Weekday())
	assert.Equal(t, "2026-11-01", d.AddDays(13).String())
}

func TestDate_Compare(t *testing.T) {
	a := NewDate(2026, time.October, 16)
	b := NewDate(2026, time.October, 17)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, 0, a.Compare(NewDate(2026, time.October, 16)))
	assert.True(t, NewDate(2025, time.December, 31).Before(a))
}

func TestIsPast(t *testing.T) {
	loc := Location(DefaultTimezone)
	clock := FixedClock(time.Date(2026, time.October, 16, 9, 0, 0, 0, loc))

	assert.True(t, IsPast(NewDate(2026, time.October, 15), clock))
	assert.False(t, IsPast(NewDate(2026, time.October, 16), clock))
	assert.False(t, IsPast(NewDate(2026, time.October, 17), clock))
}

func TestJSONRoundTripUsesTextForm(t *testing.T) {
	payload := struct {
		Date Date      `json:"date"`
		Time TimeOfDay `json:"time"`
	}{Date: NewDate(2026, time.October, 19), Time: NewTimeOfDay(8, 30)}

	b, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2026-10-19","time":"08:30"}`, string(b))
}

func TestTimeOfDay_On(t *testing.T) {
	loc := Location(DefaultTimezone)
	got := NewTimeOfDay(14, 30).On(NewDate(2026, time.October, 19), loc)

	assert.Equal(t, time.Date(2026, time.October, 19, 14, 30, 0, 0, loc), got)
}
