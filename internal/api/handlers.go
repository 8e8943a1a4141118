package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/appointment"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/auth"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/caltime"
)

func freeSlotsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := authorize(w, r, auth.ActionViewSlots); !ok {
			return
		}

		dentistID, ok := uuidParam(w, r, "id", "invalid_dentist_id")
		if !ok {
			return
		}
		date, ok := dateQuery(w, r)
		if !ok {
			return
		}

		slots, err := svc.FreeSlots(r.Context(), dentistID, date)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, SlotsResponse{
			DentistID:   dentistID,
			Date:        date,
			SlotMinutes: svc.SlotMinutes(),
			Slots:       slots,
		})
	}
}

func getAvailabilityHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := authorize(w, r, auth.ActionViewAvailability); !ok {
			return
		}

		dentistID, ok := uuidParam(w, r, "id", "invalid_dentist_id")
		if !ok {
			return
		}

		rules, err := svc.Availability(r.Context(), dentistID)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toAvailabilityResponse(dentistID, rules))
	}
}

func putAvailabilityHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := authorize(w, r, auth.ActionManageAvailability)
		if !ok {
			return
		}

		dentistID, ok := uuidParam(w, r, "id", "invalid_dentist_id")
		if !ok {
			return
		}
		if !p.MayManageDentist(dentistID) {
			writeError(w, http.StatusForbidden, "forbidden", "cannot change another dentist's availability")
			return
		}

		var req AvailabilityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		rules := make([]appointment.AvailabilityRule, 0, len(req.Rules))
		for _, dto := range req.Rules {
			start, err := caltime.ParseTimeOfDay(dto.StartTime)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_time", "start_time must be HH:MM")
				return
			}
			end, err := caltime.ParseTimeOfDay(dto.EndTime)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_time", "end_time must be HH:MM")
				return
			}
			available := true
			if dto.IsAvailable != nil {
				available = *dto.IsAvailable
			}
			rules = append(rules, appointment.AvailabilityRule{
				DayOfWeek:   dto.DayOfWeek,
				StartTime:   start,
				EndTime:     end,
				IsAvailable: available,
			})
		}

		stored, err := svc.SetAvailability(r.Context(), dentistID, rules)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toAvailabilityResponse(dentistID, stored))
	}
}

func dentistDayHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := authorize(w, r, auth.ActionListAppointments); !ok {
			return
		}

		dentistID, ok := uuidParam(w, r, "id", "invalid_dentist_id")
		if !ok {
			return
		}
		date, ok := dateQuery(w, r)
		if !ok {
			return
		}

		appts, err := svc.DentistDay(r.Context(), dentistID, date)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, AppointmentListResponse{
			Appointments: toAppointmentList(appts),
			Count:        len(appts),
		})
	}
}

func createAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := authorize(w, r, auth.ActionBook)
		if !ok {
			return
		}

		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		dentistID, err := uuid.Parse(req.DentistID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_dentist_id", "dentist_id must be a valid UUID")
			return
		}

		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
			return
		}

		date, err := caltime.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		at, err := caltime.ParseTimeOfDay(req.Time)
		if err != nil || !at.Valid() || at == caltime.NewTimeOfDay(24, 0) {
			writeError(w, http.StatusBadRequest, "invalid_time", "time must be HH:MM")
			return
		}

		if !p.MayActFor(patientID) {
			writeError(w, http.StatusForbidden, "forbidden", "patients can only book for themselves")
			return
		}

		appt, err := svc.Book(r.Context(), appointment.BookRequest{
			DentistID: dentistID,
			PatientID: patientID,
			Date:      date,
			Time:      at,
			Service:   req.Service,
			Notes:     req.Notes,
		})
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(*appt))
	}
}

func listAppointmentsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := authorize(w, r, auth.ActionListAppointments); !ok {
			return
		}

		date, ok := dateQuery(w, r)
		if !ok {
			return
		}

		appts, err := svc.AppointmentsOn(r.Context(), date)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, AppointmentListResponse{
			Appointments: toAppointmentList(appts),
			Count:        len(appts),
		})
	}
}

func getAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := authorize(w, r, auth.ActionViewAppointment)
		if !ok {
			return
		}

		id, ok := uuidParam(w, r, "id", "invalid_appointment_id")
		if !ok {
			return
		}

		detail, err := svc.GetAppointment(r.Context(), id)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		if !p.MayActFor(detail.PatientID) {
			// do not reveal that the appointment exists
			writeError(w, http.StatusNotFound, "appointment_not_found", appointment.ErrAppointmentNotFound.Error())
			return
		}

		resp := toAppointmentResponse(detail.Appointment)
		if detail.Patient != nil {
			resp.PatientName = detail.Patient.Name
		}
		if detail.Dentist != nil {
			resp.DentistName = detail.Dentist.Name
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

type transitionFunc func(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)

func transitionHandler(svc *appointment.Service, action auth.Action, apply transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := authorize(w, r, action)
		if !ok {
			return
		}

		id, ok := uuidParam(w, r, "id", "invalid_appointment_id")
		if !ok {
			return
		}

		if p.Role == auth.RolePatient {
			detail, err := svc.GetAppointment(r.Context(), id)
			if err != nil {
				handleServiceError(w, r, err)
				return
			}
			if !p.MayActFor(detail.PatientID) {
				writeError(w, http.StatusNotFound, "appointment_not_found", appointment.ErrAppointmentNotFound.Error())
				return
			}
		}

		appt, err := apply(r.Context(), id)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(*appt))
	}
}

func patientAppointmentsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := authorize(w, r, auth.ActionPatientHistory)
		if !ok {
			return
		}

		patientID, ok := uuidParam(w, r, "id", "invalid_patient_id")
		if !ok {
			return
		}
		if !p.MayActFor(patientID) {
			writeError(w, http.StatusForbidden, "forbidden", "cannot read another patient's appointments")
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		appts, err := svc.PatientAppointments(r.Context(), patientID, limit, offset)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, AppointmentListResponse{
			Appointments: toAppointmentList(appts),
			Count:        len(appts),
		})
	}
}

func authorize(w http.ResponseWriter, r *http.Request, action auth.Action) (auth.Principal, bool) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return auth.Principal{}, false
	}
	if !p.Can(action) {
		writeError(w, http.StatusForbidden, "forbidden", "role "+string(p.Role)+" may not "+string(action))
		return auth.Principal{}, false
	}
	return p, true
}

func uuidParam(w http.ResponseWriter, r *http.Request, name, code string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, code, name+" must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func dateQuery(w http.ResponseWriter, r *http.Request) (caltime.Date, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing_date", "date query parameter is required")
		return caltime.Date{}, false
	}
	date, err := caltime.ParseDate(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
		return caltime.Date{}, false
	}
	return date, true
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ruleErr *appointment.InvalidRuleError

	switch {
	case errors.Is(err, appointment.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, appointment.ErrDentistNotFound):
		writeError(w, http.StatusNotFound, "dentist_not_found", err.Error())
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, appointment.ErrSlotConflict):
		writeError(w, http.StatusConflict, "slot_conflict", err.Error())
	case errors.Is(err, appointment.ErrSlotBeingBooked):
		writeError(w, http.StatusConflict, "slot_being_booked", "slot is currently being booked, please retry shortly")
	case errors.Is(err, appointment.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.Is(err, appointment.ErrPastDate):
		writeError(w, http.StatusUnprocessableEntity, "past_date", err.Error())
	case errors.As(err, &ruleErr):
		writeError(w, http.StatusUnprocessableEntity, "invalid_rule", ruleErr.Error())
	default:
		log.Error().
			Err(err).
			Str("request_id", GetRequestID(r.Context())).
			Msg("unhandled service error")
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
