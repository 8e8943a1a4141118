package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/app"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/appointment"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/caltime"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/config"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/logging"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/notify"
	redisclient "github.com/FabiQuint18/Dental-Clinic-Management-System/internal/redis"
)

const clinicName = "Consultorio Yadira"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}
	logging.Init("reminder-worker", cfg.Env, cfg.LogLevel)

	log.Info().
		Str("env", cfg.Env).
		Dur("interval", cfg.ReminderInterval).
		Msg("reminder-worker starting up")

	if cfg.Storage == config.StorageMemory {
		log.Warn().Msg("in-memory storage is private to this process, no appointments will be found")
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := app.Open(rootCtx, cfg, "dental-reminder-worker")
	if err != nil {
		log.Fatal().Err(err).Msg("dependency setup failed")
	}
	defer deps.Close()

	clock := caltime.NewSystemClock(cfg.ClinicTimezone)
	svc := appointment.NewService(deps.Repo, deps.Locker(cfg), clock, cfg)

	var store notify.SentStore = notify.NewMemorySentStore()
	if deps.Redis != nil {
		// keys outlive the longest lead time so a restart never resends
		store = redisclient.NewReminderStore(deps.Redis, 48*time.Hour)
	}

	n := notify.NewNotifier(
		svc,
		store,
		clock,
		caltime.Location(cfg.ClinicTimezone),
		cfg.ReminderInterval,
		notify.WhatsAppSender{Clinic: clinicName},
		notify.EmailSender{Clinic: clinicName},
	)

	n.Run(rootCtx)
}
