package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/app"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/appointment"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/auth"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/caltime"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/config"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/logging"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/seed"
)

func main() {
	dentists := flag.Int("dentists", 4, "number of dentists to create")
	patients := flag.Int("patients", 500, "number of patients to create")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}
	logging.Init("seed", cfg.Env, cfg.LogLevel)

	if cfg.Storage != config.StoragePostgres {
		log.Fatal().Msg("seeding requires STORAGE=postgres")
	}

	// the seeder never books, so it does not need the shared lock
	cfg.LockBackend = config.LockLocal

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	deps, err := app.Open(ctx, cfg, "dental-seed")
	if err != nil {
		log.Fatal().Err(err).Msg("dependency setup failed")
	}
	defer deps.Close()

	svc := appointment.NewService(deps.Repo, deps.Locker(cfg), caltime.NewSystemClock(cfg.ClinicTimezone), cfg)

	log.Info().Int("dentists", *dentists).Int("patients", *patients).Msg("seed starting")

	res, err := seed.Run(ctx, deps.Repo, svc, seed.Options{Dentists: *dentists, Patients: *patients})
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	admin, err := tokens.Issue(auth.Principal{ID: uuid.New(), Role: auth.RoleAdmin})
	if err != nil {
		log.Fatal().Err(err).Msg("issue admin token")
	}

	log.Info().Msg("seed complete")

	for _, d := range res.Dentists {
		fmt.Printf("dentist  %s  %s\n", d.ID, d.Name)
	}
	fmt.Printf("ADMIN_TOKEN=%s\n", admin)
}
