package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrNoContact means the patient has no address for a channel.
var ErrNoContact = errors.New("patient has no contact for channel")

type Sender interface {
	Channel() string
	Send(ctx context.Context, r Reminder) error
}

// WhatsAppSender writes the outgoing message to the log instead of calling
// a messaging provider.
type WhatsAppSender struct {
	Clinic string
}

func (WhatsAppSender) Channel() string { return "whatsapp" }

func (s WhatsAppSender) Send(_ context.Context, r Reminder) error {
	if r.Patient == nil || r.Patient.Phone == nil || *r.Patient.Phone == "" {
		return ErrNoContact
	}

	log.Info().
		Str("channel", s.Channel()).
		Str("to", *r.Patient.Phone).
		Str("appointment_id", r.Appointment.ID.String()).
		Str("kind", string(r.Kind)).
		Str("body", render(s.Clinic, r)).
		Msg("reminder sent")
	return nil
}

// EmailSender writes the outgoing message to the log instead of calling a
// mail provider.
type EmailSender struct {
	Clinic string
}

func (EmailSender) Channel() string { return "email" }

func (s EmailSender) Send(_ context.Context, r Reminder) error {
	if r.Patient == nil || r.Patient.Email == nil || *r.Patient.Email == "" {
		return ErrNoContact
	}

	log.Info().
		Str("channel", s.Channel()).
		Str("to", *r.Patient.Email).
		Str("subject", "Recordatorio de Cita - "+s.Clinic).
		Str("appointment_id", r.Appointment.ID.String()).
		Str("kind", string(r.Kind)).
		Str("body", render(s.Clinic, r)).
		Msg("reminder sent")
	return nil
}

func render(clinic string, r Reminder) string {
	patient, dentist := "paciente", "su odontólogo"
	if r.Patient != nil {
		patient = r.Patient.Name
	}
	if r.Dentist != nil {
		dentist = r.Dentist.Name
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hola %s, le recordamos que tiene una cita en %s", patient, r.Kind.Label())
	if clinic != "" {
		fmt.Fprintf(&b, " en %s", clinic)
	}
	fmt.Fprintf(&b, ".\nFecha: %s\nHora: %s\nCon: %s\n", r.Appointment.Date, r.Appointment.StartTime, dentist)
	if r.Appointment.Service != "" {
		fmt.Fprintf(&b, "Servicio: %s\n", r.Appointment.Service)
	}
	b.WriteString("Si necesita cancelar o reprogramar, hágalo con al menos 24 horas de anticipación.")
	return b.String()
}
