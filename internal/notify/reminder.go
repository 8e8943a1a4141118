package notify

import (
	"time"

	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/appointment"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/caltime"
)

type Kind string

const (
	DayBefore  Kind = "24h"
	HoursAhead Kind = "2h"
)

// Label is the human wording of the lead time used in messages.
func (k Kind) Label() string {
	switch k {
	case DayBefore:
		return "24 horas"
	case HoursAhead:
		return "2 horas"
	}
	return string(k)
}

type Reminder struct {
	Kind        Kind
	Appointment appointment.Appointment
	Patient     *appointment.Patient
	Dentist     *appointment.Dentist
}

// Key identifies the reminder for de-duplication across runs and replicas.
func (r Reminder) Key() string {
	return r.Appointment.ID.String() + ":" + string(r.Kind)
}

// Due picks the reminders owed at now. An appointment dated tomorrow gets a
// day-before reminder; one starting within window of now+2h gets a short
// notice reminder. Only scheduled and confirmed appointments qualify.
func Due(appts []appointment.Appointment, now time.Time, loc *time.Location, window time.Duration) []Reminder {
	now = now.In(loc)
	tomorrow := caltime.DateOf(now).AddDays(1)
	target := now.Add(2 * time.Hour)

	var out []Reminder
	for _, a := range appts {
		if a.Status != appointment.StatusScheduled && a.Status != appointment.StatusConfirmed {
			continue
		}

		if a.Date == tomorrow {
			out = append(out, Reminder{Kind: DayBefore, Appointment: a})
		}

		delta := a.StartsAt(loc).Sub(target)
		if delta < 0 {
			delta = -delta
		}
		if delta < window {
			out = append(out, Reminder{Kind: HoursAhead, Appointment: a})
		}
	}
	return out
}
