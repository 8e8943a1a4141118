package appointment

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/caltime"
)

var (
	ErrPatientNotFound     = errors.New("patient not found")
	ErrDentistNotFound     = errors.New("dentist not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// DirectoryRepository resolves the people an appointment refers to.
type DirectoryRepository interface {
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetDentistByID(ctx context.Context, id uuid.UUID) (*Dentist, error)
}

// DirectoryWriter registers and enumerates patients and dentists. The
// seeder and simulator use it; the booking path never does.
type DirectoryWriter interface {
	CreatePatient(ctx context.Context, p *Patient) error
	CreateDentist(ctx context.Context, d *Dentist) error
	ListDentists(ctx context.Context) ([]Dentist, error)
	ListPatients(ctx context.Context, limit int) ([]Patient, error)
}

type AvailabilityRepository interface {
	ListRules(ctx context.Context, dentistID uuid.UUID) ([]AvailabilityRule, error)
	ListRulesForDay(ctx context.Context, dentistID uuid.UUID, dayOfWeek int) ([]AvailabilityRule, error)

	// ReplaceRules swaps the dentist's whole rule set in one step.
	ReplaceRules(ctx context.Context, dentistID uuid.UUID, rules []AvailabilityRule) error
}

type AppointmentRepository interface {
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// For ledger and calendar views, ordered by start time
	ListAppointmentsForDentist(ctx context.Context, dentistID uuid.UUID, date caltime.Date) ([]Appointment, error)
	ListAppointmentsOn(ctx context.Context, date caltime.Date) ([]Appointment, error)
	ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Appointment, error)
	ListAppointmentsByStatus(ctx context.Context, status AppointmentStatus, from, to caltime.Date) ([]Appointment, error)

	// CreateAppointment must return ErrSlotConflict when a live appointment
	// already holds (dentist, date, start).
	CreateAppointment(ctx context.Context, a *Appointment) error
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error)

	// Event logging
	InsertEvent(ctx context.Context, ev EventLog) error
}

// Repository contains all storage interactions needed by the service.
type Repository interface {
	DirectoryRepository
	AvailabilityRepository
	AppointmentRepository
}
