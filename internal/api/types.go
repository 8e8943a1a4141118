package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/appointment"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/caltime"
)

type CreateAppointmentRequest struct {
	DentistID string `json:"dentist_id"`
	PatientID string `json:"patient_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Service   string `json:"service"`
	Notes     string `json:"notes,omitempty"`
}

type AppointmentResponse struct {
	ID              uuid.UUID         `json:"id"`
	PatientID       uuid.UUID         `json:"patient_id"`
	DentistID       uuid.UUID         `json:"dentist_id"`
	PatientName     string            `json:"patient_name,omitempty"`
	DentistName     string            `json:"dentist_name,omitempty"`
	Date            caltime.Date      `json:"date"`
	StartTime       caltime.TimeOfDay `json:"start_time"`
	EndTime         caltime.TimeOfDay `json:"end_time"`
	DurationMinutes int               `json:"duration_minutes"`
	Service         string            `json:"service"`
	Cost            int64             `json:"cost"`
	Notes           string            `json:"notes,omitempty"`
	Status          string            `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func toAppointmentResponse(a appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:              a.ID,
		PatientID:       a.PatientID,
		DentistID:       a.DentistID,
		Date:            a.Date,
		StartTime:       a.StartTime,
		EndTime:         a.EndTime(),
		DurationMinutes: a.DurationMinutes,
		Service:         a.Service,
		Cost:            a.Cost,
		Notes:           a.Notes,
		Status:          string(a.Status),
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func toAppointmentList(appts []appointment.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(appts))
	for _, a := range appts {
		out = append(out, toAppointmentResponse(a))
	}
	return out
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Count        int                   `json:"count"`
}

type SlotsResponse struct {
	DentistID   uuid.UUID           `json:"dentist_id"`
	Date        caltime.Date        `json:"date"`
	SlotMinutes int                 `json:"slot_minutes"`
	Slots       []caltime.TimeOfDay `json:"slots"`
}

type AvailabilityRuleDTO struct {
	ID          uuid.UUID `json:"id,omitempty"`
	DayOfWeek   int       `json:"day_of_week"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	IsAvailable *bool     `json:"is_available,omitempty"`
}

type AvailabilityRequest struct {
	Rules []AvailabilityRuleDTO `json:"rules"`
}

type AvailabilityResponse struct {
	DentistID uuid.UUID             `json:"dentist_id"`
	Rules     []AvailabilityRuleDTO `json:"rules"`
}

func toAvailabilityResponse(dentistID uuid.UUID, rules []appointment.AvailabilityRule) AvailabilityResponse {
	out := make([]AvailabilityRuleDTO, 0, len(rules))
	for _, r := range rules {
		available := r.IsAvailable
		out = append(out, AvailabilityRuleDTO{
			ID:          r.ID,
			DayOfWeek:   r.DayOfWeek,
			StartTime:   r.StartTime.String(),
			EndTime:     r.EndTime.String(),
			IsAvailable: &available,
		})
	}
	return AvailabilityResponse{DentistID: dentistID, Rules: out}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
