package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/appointment"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/caltime"
)

var specializations = []string{
	"Odontología General",
	"Ortodoncia",
	"Endodoncia",
	"Cirugía Oral",
	"Odontopediatría",
	"Periodoncia",
}

type Options struct {
	Dentists int
	Patients int
	Seed     int64 // zero picks a time based seed
}

type Result struct {
	Dentists []appointment.Dentist
	Patients []appointment.Patient
}

// DefaultRules is the clinic's standard week: Monday to Friday 08:00-12:00
// and 14:00-18:00, Saturday 08:00-12:00.
func DefaultRules() []appointment.AvailabilityRule {
	block := func(day, sh, eh int) appointment.AvailabilityRule {
		return appointment.AvailabilityRule{
			DayOfWeek:   day,
			StartTime:   caltime.NewTimeOfDay(sh, 0),
			EndTime:     caltime.NewTimeOfDay(eh, 0),
			IsAvailable: true,
		}
	}

	var rules []appointment.AvailabilityRule
	for day := 1; day <= 5; day++ {
		rules = append(rules, block(day, 8, 12), block(day, 14, 18))
	}
	return append(rules, block(6, 8, 12))
}

// Run creates fake dentists with the default week and fake patients.
func Run(ctx context.Context, dir appointment.DirectoryWriter, svc *appointment.Service, opts Options) (*Result, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if err := gofakeit.Seed(seed); err != nil {
		return nil, fmt.Errorf("seed faker: %w", err)
	}

	res := &Result{}

	for i := 0; i < opts.Dentists; i++ {
		spec := specializations[gofakeit.Number(0, len(specializations)-1)]
		license := fmt.Sprintf("TP-%06d", gofakeit.Number(0, 999999))
		d := appointment.Dentist{
			ID:             uuid.New(),
			Name:           "Dr. " + gofakeit.Name(),
			Specialization: &spec,
			License:        &license,
		}
		if err := dir.CreateDentist(ctx, &d); err != nil {
			return nil, err
		}
		if _, err := svc.SetAvailability(ctx, d.ID, DefaultRules()); err != nil {
			return nil, fmt.Errorf("availability for %s: %w", d.ID, err)
		}
		res.Dentists = append(res.Dentists, d)
	}
	log.Info().Int("count", len(res.Dentists)).Msg("dentists seeded")

	for i := 0; i < opts.Patients; i++ {
		email := gofakeit.Email()
		phone := gofakeit.Phone()
		p := appointment.Patient{
			ID:    uuid.New(),
			Name:  gofakeit.Name(),
			Email: &email,
			Phone: &phone,
		}
		if err := dir.CreatePatient(ctx, &p); err != nil {
			return nil, err
		}
		res.Patients = append(res.Patients, p)

		if (i+1)%500 == 0 {
			log.Info().Msgf("patients seeded: %d/%d", i+1, opts.Patients)
		}
	}
	log.Info().Int("count", len(res.Patients)).Msg("patients seeded")

	return res, nil
}
