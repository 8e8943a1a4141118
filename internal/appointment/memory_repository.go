package appointment

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/caltime"
)

// MemoryRepository keeps everything in process memory. It enforces the same
// live-slot uniqueness the Postgres schema does.
type MemoryRepository struct {
	mu           sync.RWMutex
	patients     map[uuid.UUID]Patient
	dentists     map[uuid.UUID]Dentist
	rules        map[uuid.UUID][]AvailabilityRule
	appointments map[uuid.UUID]Appointment
	events       []EventLog
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		patients:     make(map[uuid.UUID]Patient),
		dentists:     make(map[uuid.UUID]Dentist),
		rules:        make(map[uuid.UUID][]AvailabilityRule),
		appointments: make(map[uuid.UUID]Appointment),
	}
}

func (r *MemoryRepository) AddPatient(p Patient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patients[p.ID] = p
}

func (r *MemoryRepository) AddDentist(d Dentist) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dentists[d.ID] = d
}

func (r *MemoryRepository) CreatePatient(_ context.Context, p *Patient) error {
	r.AddPatient(*p)
	return nil
}

func (r *MemoryRepository) CreateDentist(_ context.Context, d *Dentist) error {
	r.AddDentist(*d)
	return nil
}

func (r *MemoryRepository) ListDentists(_ context.Context) ([]Dentist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Dentist, 0, len(r.dentists))
	for _, d := range r.dentists {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryRepository) ListPatients(_ context.Context, limit int) ([]Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Patient, 0, len(r.patients))
	for _, p := range r.patients {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) GetPatientByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return &p, nil
}

func (r *MemoryRepository) GetDentistByID(_ context.Context, id uuid.UUID) (*Dentist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.dentists[id]
	if !ok {
		return nil, ErrDentistNotFound
	}
	return &d, nil
}

func (r *MemoryRepository) ListRules(_ context.Context, dentistID uuid.UUID) ([]AvailabilityRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]AvailabilityRule(nil), r.rules[dentistID]...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (r *MemoryRepository) ListRulesForDay(ctx context.Context, dentistID uuid.UUID, dayOfWeek int) ([]AvailabilityRule, error) {
	all, err := r.ListRules(ctx, dentistID)
	if err != nil {
		return nil, err
	}
	var out []AvailabilityRule
	for _, rule := range all {
		if rule.DayOfWeek == dayOfWeek {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (r *MemoryRepository) ReplaceRules(_ context.Context, dentistID uuid.UUID, rules []AvailabilityRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[dentistID] = append([]AvailabilityRule(nil), rules...)
	return nil
}

func (r *MemoryRepository) GetAppointmentByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return &a, nil
}

func (r *MemoryRepository) ListAppointmentsForDentist(_ context.Context, dentistID uuid.UUID, date caltime.Date) ([]Appointment, error) {
	return r.filter(func(a Appointment) bool {
		return a.DentistID == dentistID && a.Date == date
	}), nil
}

func (r *MemoryRepository) ListAppointmentsOn(_ context.Context, date caltime.Date) ([]Appointment, error) {
	return r.filter(func(a Appointment) bool { return a.Date == date }), nil
}

func (r *MemoryRepository) ListAppointmentsByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	all := r.filter(func(a Appointment) bool { return a.PatientID == patientID })
	if offset >= len(all) {
		return []Appointment{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *MemoryRepository) ListAppointmentsByStatus(_ context.Context, status AppointmentStatus, from, to caltime.Date) ([]Appointment, error) {
	return r.filter(func(a Appointment) bool {
		return a.Status == status && !a.Date.Before(from) && !a.Date.After(to)
	}), nil
}

func (r *MemoryRepository) CreateAppointment(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.appointments {
		if existing.Status.Live() &&
			existing.DentistID == a.DentistID &&
			existing.Date == a.Date &&
			existing.StartTime == a.StartTime {
			return ErrSlotConflict
		}
	}

	r.appointments[a.ID] = *a
	return nil
}

func (r *MemoryRepository) UpdateAppointmentStatus(_ context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[id]
	if !ok || a.Status != from {
		return nil, ErrAppointmentNotFound
	}
	a.Status = to
	a.UpdatedAt = time.Now()
	r.appointments[id] = a
	return &a, nil
}

func (r *MemoryRepository) InsertEvent(_ context.Context, ev EventLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev.ID = int64(len(r.events) + 1)
	r.events = append(r.events, ev)
	return nil
}

// Events returns a copy of the event log.
func (r *MemoryRepository) Events() []EventLog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]EventLog(nil), r.events...)
}

// filter returns matching appointments ordered by date, start time, then creation.
func (r *MemoryRepository) filter(keep func(Appointment) bool) []Appointment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Appointment{}
	for _, a := range r.appointments {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Date.Compare(out[j].Date); c != 0 {
			return c < 0
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

var (
	_ Repository      = (*MemoryRepository)(nil)
	_ DirectoryWriter = (*MemoryRepository)(nil)
)
