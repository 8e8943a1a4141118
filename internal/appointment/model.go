package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/caltime"
)

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Live reports whether an appointment in this status holds its slot.
func (s AppointmentStatus) Live() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCompleted:
		return true
	default:
		return false
	}
}

func (s AppointmentStatus) Valid() bool {
	return s.Live() || s == StatusCancelled
}

type Patient struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	Phone     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Dentist struct {
	ID             uuid.UUID
	Name           string
	Specialization *string
	License        *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AvailabilityRule is a recurring weekly open interval for one dentist.
type AvailabilityRule struct {
	ID          uuid.UUID
	DentistID   uuid.UUID
	DayOfWeek   int // Sunday = 0
	StartTime   caltime.TimeOfDay
	EndTime     caltime.TimeOfDay
	IsAvailable bool
}

type Appointment struct {
	ID              uuid.UUID
	PatientID       uuid.UUID
	DentistID       uuid.UUID
	Date            caltime.Date
	StartTime       caltime.TimeOfDay
	DurationMinutes int
	Service         string
	Cost            int64 // COP, no minor units
	Notes           string
	Status          AppointmentStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (a Appointment) EndTime() caltime.TimeOfDay {
	return a.StartTime.Add(a.DurationMinutes)
}

// StartsAt is the absolute start instant in loc.
func (a Appointment) StartsAt(loc *time.Location) time.Time {
	return a.StartTime.On(a.Date, loc)
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}

type AppointmentDetail struct {
	Appointment
	Patient *Patient
	Dentist *Dentist
}
