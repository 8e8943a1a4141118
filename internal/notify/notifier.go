package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/appointment"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/caltime"
)

// Source is the slice of the scheduling service the notifier reads.
type Source interface {
	AppointmentsOn(ctx context.Context, date caltime.Date) ([]appointment.Appointment, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*appointment.AppointmentDetail, error)
}

type Notifier struct {
	source   Source
	senders  []Sender
	store    SentStore
	clock    caltime.Clock
	loc      *time.Location
	interval time.Duration
}

func NewNotifier(source Source, store SentStore, clock caltime.Clock, loc *time.Location, interval time.Duration, senders ...Sender) *Notifier {
	return &Notifier{
		source:   source,
		senders:  senders,
		store:    store,
		clock:    clock,
		loc:      loc,
		interval: interval,
	}
}

// RunOnce sends every reminder currently due and reports how many were
// claimed. A reminder is claimed before delivery, so a failed delivery is
// not retried.
func (n *Notifier) RunOnce(ctx context.Context) (int, error) {
	now := n.clock.Now().In(n.loc)
	today := caltime.DateOf(now)

	var appts []appointment.Appointment
	for _, d := range []caltime.Date{today, today.AddDays(1)} {
		day, err := n.source.AppointmentsOn(ctx, d)
		if err != nil {
			return 0, fmt.Errorf("load appointments for %s: %w", d, err)
		}
		appts = append(appts, day...)
	}

	claimed := 0
	for _, r := range Due(appts, now, n.loc, n.interval) {
		first, err := n.store.MarkSent(ctx, r.Key())
		if err != nil {
			return claimed, err
		}
		if !first {
			continue
		}
		claimed++

		detail, err := n.source.GetAppointment(ctx, r.Appointment.ID)
		if err != nil {
			log.Error().Err(err).Str("appointment_id", r.Appointment.ID.String()).Msg("failed to load reminder recipient")
			continue
		}
		r.Patient = detail.Patient
		r.Dentist = detail.Dentist

		n.deliver(ctx, r)
	}

	return claimed, nil
}

func (n *Notifier) deliver(ctx context.Context, r Reminder) {
	for _, s := range n.senders {
		err := s.Send(ctx, r)
		switch {
		case err == nil:
		case errors.Is(err, ErrNoContact):
			log.Debug().
				Str("channel", s.Channel()).
				Str("appointment_id", r.Appointment.ID.String()).
				Msg("skipping reminder, no contact")
		default:
			log.Error().
				Err(err).
				Str("channel", s.Channel()).
				Str("appointment_id", r.Appointment.ID.String()).
				Msg("reminder delivery failed")
		}
	}
}

// Run calls RunOnce at startup and then every interval until ctx is done.
func (n *Notifier) Run(ctx context.Context) {
	n.runOnce(ctx)

	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("shutdown signal received, stopping reminder worker")
			return
		case <-ticker.C:
			n.runOnce(ctx)
		}
	}
}

func (n *Notifier) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	sent, err := n.RunOnce(runCtx)
	if err != nil {
		log.Error().Err(err).Msg("reminder run failed")
		return
	}
	log.Info().Int("sent", sent).Dur("took", time.Since(start)).Msg("reminder run complete")
}
