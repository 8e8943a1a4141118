package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/caltime"
)

// SlotSet is a set of occupied start times.
type SlotSet map[caltime.TimeOfDay]struct{}

func (s SlotSet) Has(t caltime.TimeOfDay) bool {
	_, ok := s[t]
	return ok
}

// Occupied collects the start times held by live appointments.
func Occupied(appts []Appointment) SlotSet {
	set := make(SlotSet, len(appts))
	for _, a := range appts {
		if a.Status.Live() {
			set[a.StartTime] = struct{}{}
		}
	}
	return set
}

// Ledger is a read-only view of booked slots derived from stored appointments.
type Ledger struct {
	appointments AppointmentRepository
}

func NewLedger(repo AppointmentRepository) *Ledger {
	return &Ledger{appointments: repo}
}

func (l *Ledger) OccupiedSlots(ctx context.Context, dentistID uuid.UUID, date caltime.Date) (SlotSet, error) {
	appts, err := l.appointments.ListAppointmentsForDentist(ctx, dentistID, date)
	if err != nil {
		return nil, fmt.Errorf("list appointments for ledger: %w", err)
	}
	return Occupied(appts), nil
}

func (l *Ledger) IsFree(ctx context.Context, dentistID uuid.UUID, date caltime.Date, t caltime.TimeOfDay) (bool, error) {
	occupied, err := l.OccupiedSlots(ctx, dentistID, date)
	if err != nil {
		return false, err
	}
	return !occupied.Has(t), nil
}
