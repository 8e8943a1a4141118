package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/api"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/app"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/appointment"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/auth"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/caltime"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/config"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/logging"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/seed"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}
	logging.Init("api-server", cfg.Env, cfg.LogLevel)

	log.Info().
		Str("env", cfg.Env).
		Str("http_port", cfg.HTTPPort).
		Str("storage", cfg.Storage).
		Str("lock_backend", cfg.LockBackend).
		Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := app.Open(rootCtx, cfg, "dental-api-server")
	if err != nil {
		log.Fatal().Err(err).Msg("dependency setup failed")
	}
	defer deps.Close()

	clock := caltime.NewSystemClock(cfg.ClinicTimezone)
	svc := appointment.NewService(deps.Repo, deps.Locker(cfg), clock, cfg)
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)

	if cfg.Storage == config.StorageMemory {
		seedDemo(rootCtx, deps, svc, tokens)
	}

	var checks []api.HealthCheck
	if deps.Pool != nil {
		checks = append(checks, api.HealthCheck{Name: "postgres", Critical: true, Ping: deps.Pool.Ping})
	}
	if deps.Redis != nil {
		rdb := deps.Redis
		checks = append(checks, api.HealthCheck{Name: "redis", Ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: api.NewRouter(api.RouterConfig{
			Service: svc,
			Tokens:  tokens,
			Checks:  checks,
			Env:     cfg.Env,
			Version: version,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-rootCtx.Done()
	log.Info().Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// seedDemo fills an in-memory store so the API is usable right away.
func seedDemo(ctx context.Context, deps *app.Deps, svc *appointment.Service, tokens *auth.Tokens) {
	res, err := seed.Run(ctx, deps.Repo, svc, seed.Options{Dentists: 3, Patients: 20})
	if err != nil {
		log.Fatal().Err(err).Msg("seed in-memory store")
	}

	admin, err := tokens.Issue(auth.Principal{ID: uuid.New(), Role: auth.RoleAdmin})
	if err != nil {
		log.Fatal().Err(err).Msg("issue admin token")
	}

	for _, d := range res.Dentists {
		log.Info().Str("dentist_id", d.ID.String()).Str("name", d.Name).Msg("demo dentist")
	}
	log.Info().Str("patient_id", res.Patients[0].ID.String()).Msg("demo patient")
	log.Info().Str("token", admin).Msg("demo admin token")
}
