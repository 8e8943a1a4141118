package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/caltime"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/config"
	redisclient "github.com/FabiQuint18/Dental-Clinic-Management-System/internal/redis"
)

const (
	EventAppointmentBooked    = "APPOINTMENT_BOOKED"
	EventAppointmentConfirmed = "APPOINTMENT_CONFIRMED"
	EventAppointmentCompleted = "APPOINTMENT_COMPLETED"
	EventAppointmentCancelled = "APPOINTMENT_CANCELLED"
)

var (
	ErrPastDate                = errors.New("date is in the past")
	ErrSlotConflict            = errors.New("slot is not available")
	ErrSlotBeingBooked         = errors.New("slot is currently being booked, please retry")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

type BookRequest struct {
	DentistID uuid.UUID
	PatientID uuid.UUID
	Date      caltime.Date
	Time      caltime.TimeOfDay
	Service   string
	Notes     string
}

type Service struct {
	repo        Repository
	ledger      *Ledger
	locker      Locker
	clock       caltime.Clock
	catalog     Catalog
	slotMinutes int
}

func NewService(repo Repository, locker Locker, clock caltime.Clock, cfg config.Config) *Service {
	return &Service{
		repo:        repo,
		ledger:      NewLedger(repo),
		locker:      locker,
		clock:       clock,
		catalog:     DefaultCatalog(),
		slotMinutes: cfg.SlotMinutes,
	}
}

func (s *Service) SlotMinutes() int {
	return s.slotMinutes
}

// FreeSlots returns the dentist's unbooked slots on date in ascending order.
// Past dates have no free slots.
func (s *Service) FreeSlots(ctx context.Context, dentistID uuid.UUID, date caltime.Date) ([]caltime.TimeOfDay, error) {
	if _, err := s.repo.GetDentistByID(ctx, dentistID); err != nil {
		if errors.Is(err, ErrDentistNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load dentist: %w", err)
	}
	return s.freeSlots(ctx, dentistID, date)
}

func (s *Service) freeSlots(ctx context.Context, dentistID uuid.UUID, date caltime.Date) ([]caltime.TimeOfDay, error) {
	if caltime.IsPast(date, s.clock) {
		return []caltime.TimeOfDay{}, nil
	}

	rules, err := s.repo.ListRulesForDay(ctx, dentistID, date.Weekday())
	if err != nil {
		return nil, fmt.Errorf("load availability rules: %w", err)
	}

	occupied, err := s.ledger.OccupiedSlots(ctx, dentistID, date)
	if err != nil {
		return nil, err
	}

	free := []caltime.TimeOfDay{}
	for _, t := range GenerateSlots(rules, date, s.slotMinutes) {
		if !occupied.Has(t) {
			free = append(free, t)
		}
	}
	return free, nil
}

// Book reserves a slot for a patient. The free-slot check and the insert run
// under a lock scoped to the dentist's day, so two callers can never both
// observe the same slot as free and both insert.
func (s *Service) Book(ctx context.Context, req BookRequest) (*Appointment, error) {
	if caltime.IsPast(req.Date, s.clock) {
		return nil, ErrPastDate
	}

	if _, err := s.repo.GetPatientByID(ctx, req.PatientID); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	if _, err := s.repo.GetDentistByID(ctx, req.DentistID); err != nil {
		if errors.Is(err, ErrDentistNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load dentist: %w", err)
	}

	var created *Appointment

	err := s.locker.WithLock(ctx, BookingLockKey(req.DentistID, req.Date), func(lockCtx context.Context) error {
		free, err := s.freeSlots(lockCtx, req.DentistID, req.Date)
		if err != nil {
			return err
		}
		if !containsSlot(free, req.Time) {
			return ErrSlotConflict
		}

		appt := s.newAppointment(req)
		if err := s.repo.CreateAppointment(lockCtx, appt); err != nil {
			if errors.Is(err, ErrSlotConflict) {
				return err
			}
			return fmt.Errorf("create appointment: %w", err)
		}

		created = appt

		s.logEvent(lockCtx, appt.ID, EventAppointmentBooked, map[string]any{
			"dentist_id": req.DentistID.String(),
			"patient_id": req.PatientID.String(),
			"date":       req.Date.String(),
			"start_time": req.Time.String(),
			"service":    appt.Service,
		})

		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingBooked
		}
		return nil, err
	}

	log.Info().
		Str("appointment_id", created.ID.String()).
		Str("dentist_id", created.DentistID.String()).
		Str("date", created.Date.String()).
		Str("start_time", created.StartTime.String()).
		Msg("appointment booked")

	return created, nil
}

func (s *Service) newAppointment(req BookRequest) *Appointment {
	now := s.clock.Now()
	duration := s.slotMinutes
	var cost int64
	if entry, ok := s.catalog.Lookup(req.Service); ok {
		duration = entry.DurationMinutes
		cost = entry.Price
	}

	return &Appointment{
		ID:              uuid.New(),
		PatientID:       req.PatientID,
		DentistID:       req.DentistID,
		Date:            req.Date,
		StartTime:       req.Time,
		DurationMinutes: duration,
		Service:         req.Service,
		Cost:            cost,
		Notes:           req.Notes,
		Status:          InitialStatus(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Cancel releases the appointment's slot. The record is kept for history.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusCancelled, EventAppointmentCancelled)
}

func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusConfirmed, EventAppointmentConfirmed)
}

func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusCompleted, EventAppointmentCompleted)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to AppointmentStatus, event string) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	if !CanTransition(appt.Status, to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, appt.Status, to)
	}

	updated, err := s.repo.UpdateAppointmentStatus(ctx, appt.ID, appt.Status, to)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// status moved underneath us between load and update
			return nil, fmt.Errorf("%w: %s changed concurrently", ErrInvalidStatusTransition, appt.ID)
		}
		return nil, fmt.Errorf("update appointment status: %w", err)
	}

	s.logEvent(ctx, updated.ID, event, map[string]any{
		"from": string(appt.Status),
		"to":   string(to),
	})

	return updated, nil
}

// Availability returns the dentist's stored weekly rules.
func (s *Service) Availability(ctx context.Context, dentistID uuid.UUID) ([]AvailabilityRule, error) {
	if _, err := s.repo.GetDentistByID(ctx, dentistID); err != nil {
		return nil, err
	}
	rules, err := s.repo.ListRules(ctx, dentistID)
	if err != nil {
		return nil, fmt.Errorf("list availability rules: %w", err)
	}
	return rules, nil
}

// SetAvailability replaces the dentist's rule set after validating it.
func (s *Service) SetAvailability(ctx context.Context, dentistID uuid.UUID, rules []AvailabilityRule) ([]AvailabilityRule, error) {
	if _, err := s.repo.GetDentistByID(ctx, dentistID); err != nil {
		return nil, err
	}

	out := make([]AvailabilityRule, len(rules))
	for i, r := range rules {
		// rule IDs are server-owned; client values are discarded
		r.ID = uuid.New()
		r.DentistID = dentistID
		out[i] = r
	}

	if err := ValidateRules(out); err != nil {
		return nil, err
	}

	if err := s.repo.ReplaceRules(ctx, dentistID, out); err != nil {
		return nil, fmt.Errorf("replace availability rules: %w", err)
	}

	log.Info().
		Str("dentist_id", dentistID.String()).
		Int("rules", len(out)).
		Msg("availability updated")

	return out, nil
}

// GetAppointment retrieves an appointment with its patient and dentist.
func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}

	detail := &AppointmentDetail{Appointment: *appt}

	if p, err := s.repo.GetPatientByID(ctx, appt.PatientID); err == nil {
		detail.Patient = p
	} else if !errors.Is(err, ErrPatientNotFound) {
		return nil, fmt.Errorf("load patient: %w", err)
	}

	if d, err := s.repo.GetDentistByID(ctx, appt.DentistID); err == nil {
		detail.Dentist = d
	} else if !errors.Is(err, ErrDentistNotFound) {
		return nil, fmt.Errorf("load dentist: %w", err)
	}

	return detail, nil
}

// AppointmentsOn lists every appointment on date, for reminder senders.
func (s *Service) AppointmentsOn(ctx context.Context, date caltime.Date) ([]Appointment, error) {
	appts, err := s.repo.ListAppointmentsOn(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list appointments on %s: %w", date, err)
	}
	return appts, nil
}

// DentistDay lists one dentist's appointments on date, cancelled included.
func (s *Service) DentistDay(ctx context.Context, dentistID uuid.UUID, date caltime.Date) ([]Appointment, error) {
	if _, err := s.repo.GetDentistByID(ctx, dentistID); err != nil {
		return nil, err
	}
	appts, err := s.repo.ListAppointmentsForDentist(ctx, dentistID, date)
	if err != nil {
		return nil, fmt.Errorf("list dentist appointments: %w", err)
	}
	return appts, nil
}

// PatientAppointments retrieves appointments for a specific patient
func (s *Service) PatientAppointments(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error) {
	if limit <= 0 {
		limit = 20 // default
	}
	if limit > 100 {
		limit = 100 // max
	}
	if offset < 0 {
		offset = 0
	}

	appts, err := s.repo.ListAppointmentsByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list appointments by patient: %w", err)
	}
	return appts, nil
}

// CompletedBetween feeds invoicing with completed appointments in [from, to].
func (s *Service) CompletedBetween(ctx context.Context, from, to caltime.Date) ([]Appointment, error) {
	appts, err := s.repo.ListAppointmentsByStatus(ctx, StatusCompleted, from, to)
	if err != nil {
		return nil, fmt.Errorf("list completed appointments: %w", err)
	}
	return appts, nil
}

func (s *Service) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("failed to marshal event payload")
		data = nil
	}

	apptID := appointmentID

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     s.clock.Now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		log.Error().
			Err(err).
			Str("event", eventType).
			Str("appointment_id", appointmentID.String()).
			Msg("failed to insert event log")
	}
}

func containsSlot(slots []caltime.TimeOfDay, t caltime.TimeOfDay) bool {
	for _, s := range slots {
		if s == t {
			return true
		}
	}
	return false
}
