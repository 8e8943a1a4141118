package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/appointment"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/caltime"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/config"
)

var bogota = caltime.Location(caltime.DefaultTimezone)

// Friday 2026-10-16 09:00 in the clinic's zone.
var now = time.Date(2026, time.October, 16, 9, 0, 0, 0, bogota)

type recordingSender struct {
	mu   sync.Mutex
	sent []Reminder
}

func (*recordingSender) Channel() string { return "test" }

func (s *recordingSender) Send(_ context.Context, r Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, r)
	return nil
}

func at(date caltime.Date, h, m int, status appointment.AppointmentStatus) appointment.Appointment {
	return appointment.Appointment{
		ID:        uuid.New(),
		Date:      date,
		StartTime: caltime.NewTimeOfDay(h, m),
		Status:    status,
	}
}

func TestDue(t *testing.T) {
	today := caltime.DateOf(now)
	tomorrow := today.AddDays(1)
	window := 30 * time.Minute

	tests := []struct {
		name string
		appt appointment.Appointment
		want []Kind
	}{
		{"tomorrow morning", at(tomorrow, 8, 0, appointment.StatusScheduled), []Kind{DayBefore}},
		{"tomorrow confirmed", at(tomorrow, 17, 30, appointment.StatusConfirmed), []Kind{DayBefore}},
		{"exactly two hours out", at(today, 11, 0, appointment.StatusScheduled), []Kind{HoursAhead}},
		{"inside window", at(today, 11, 29, appointment.StatusConfirmed), []Kind{HoursAhead}},
		{"outside window", at(today, 11, 30, appointment.StatusScheduled), nil},
		{"later today", at(today, 15, 0, appointment.StatusScheduled), nil},
		{"cancelled tomorrow", at(tomorrow, 8, 0, appointment.StatusCancelled), nil},
		{"completed", at(today, 11, 0, appointment.StatusCompleted), nil},
		{"two days out", at(today.AddDays(2), 8, 0, appointment.StatusScheduled), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var kinds []Kind
			for _, r := range Due([]appointment.Appointment{tt.appt}, now, bogota, window) {
				kinds = append(kinds, r.Kind)
			}
			assert.Equal(t, tt.want, kinds)
		})
	}
}

func TestDue_LateEveningCoversBothKinds(t *testing.T) {
	evening := time.Date(2026, time.October, 16, 22, 30, 0, 0, bogota)
	tomorrow := caltime.DateOf(evening).AddDays(1)

	kinds := []Kind{}
	for _, r := range Due([]appointment.Appointment{at(tomorrow, 0, 30, appointment.StatusScheduled)}, evening, bogota, 30*time.Minute) {
		kinds = append(kinds, r.Kind)
	}
	assert.ElementsMatch(t, []Kind{DayBefore, HoursAhead}, kinds)
}

func TestNotifier_RunOnceSendsEachReminderOnce(t *testing.T) {
	ctx := context.Background()
	repo := appointment.NewMemoryRepository()

	dentist := uuid.New()
	patient := uuid.New()
	phone := "+57 300 123 4567"
	repo.AddDentist(appointment.Dentist{ID: dentist, Name: "Dra. María González"})
	repo.AddPatient(appointment.Patient{ID: patient, Name: "Carlos Pérez", Phone: &phone})

	svc := appointment.NewService(repo, appointment.NewLocalLocker(), caltime.FixedClock(now), config.Config{SlotMinutes: 30})
	_, err := svc.SetAvailability(ctx, dentist, []appointment.AvailabilityRule{
		{DayOfWeek: 5, StartTime: caltime.NewTimeOfDay(8, 0), EndTime: caltime.NewTimeOfDay(18, 0), IsAvailable: true},
		{DayOfWeek: 6, StartTime: caltime.NewTimeOfDay(8, 0), EndTime: caltime.NewTimeOfDay(12, 0), IsAvailable: true},
	})
	require.NoError(t, err)

	today := caltime.DateOf(now)
	book := func(date caltime.Date, h, m int) *appointment.Appointment {
		a, err := svc.Book(ctx, appointment.BookRequest{
			DentistID: dentist,
			PatientID: patient,
			Date:      date,
			Time:      caltime.NewTimeOfDay(h, m),
			Service:   "Consulta General",
		})
		require.NoError(t, err)
		return a
	}

	soon := book(today, 11, 0)
	book(today, 15, 0)
	tomorrow := book(today.AddDays(1), 8, 0)
	dropped := book(today.AddDays(1), 9, 0)
	_, err = svc.Cancel(ctx, dropped.ID)
	require.NoError(t, err)

	sender := &recordingSender{}
	n := NewNotifier(svc, NewMemorySentStore(), caltime.FixedClock(now), bogota, 30*time.Minute, sender)

	sent, err := n.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	got := map[Kind]uuid.UUID{}
	for _, r := range sender.sent {
		got[r.Kind] = r.Appointment.ID
		require.NotNil(t, r.Patient)
		assert.Equal(t, "Carlos Pérez", r.Patient.Name)
		require.NotNil(t, r.Dentist)
	}
	assert.Equal(t, soon.ID, got[HoursAhead])
	assert.Equal(t, tomorrow.ID, got[DayBefore])

	sent, err = n.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Len(t, sender.sent, 2)
}

func TestSenders_SkipMissingContact(t *testing.T) {
	r := Reminder{Kind: DayBefore, Appointment: at(caltime.DateOf(now), 8, 0, appointment.StatusScheduled), Patient: &appointment.Patient{Name: "x"}}

	assert.ErrorIs(t, WhatsAppSender{}.Send(context.Background(), r), ErrNoContact)
	assert.ErrorIs(t, EmailSender{}.Send(context.Background(), r), ErrNoContact)

	email := "x@example.com"
	r.Patient.Email = &email
	assert.NoError(t, EmailSender{Clinic: "Consultorio"}.Send(context.Background(), r))
}

func TestRender(t *testing.T) {
	r := Reminder{
		Kind: HoursAhead,
		Appointment: appointment.Appointment{
			Date:      caltime.NewDate(2026, time.October, 19),
			StartTime: caltime.NewTimeOfDay(8, 30),
			Service:   "Limpieza Dental",
		},
		Patient: &appointment.Patient{Name: "Ana García"},
		Dentist: &appointment.Dentist{Name: "Dr. Carlos Rodríguez"},
	}

	body := render("Consultorio Yadira", r)
	assert.Contains(t, body, "Ana García")
	assert.Contains(t, body, "2 horas")
	assert.Contains(t, body, "2026-10-19")
	assert.Contains(t, body, "08:30")
	assert.Contains(t, body, "Dr. Carlos Rodríguez")
	assert.Contains(t, body, "Limpieza Dental")
}

func TestMemorySentStore(t *testing.T) {
	s := NewMemorySentStore()
	first, err := s.MarkSent(context.Background(), "a:24h")
	require.NoError(t, err)
	second, err := s.MarkSent(context.Background(), "a:24h")
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
}
