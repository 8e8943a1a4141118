package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/appointment"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/auth"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/caltime"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/config"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/db"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/logging"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/seed"
)

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	Days         int
	BookingRatio float64
	ConfirmRatio float64
	CancelRatio  float64
	ReadRatio    float64
	PatientLimit int
	PostgresDSN  string
	Token        string
	SlotMinutes  int
	Timezone     string
}

// target is one bookable (dentist, date, time) the workers compete for.
type target struct {
	DentistID uuid.UUID
	Date      caltime.Date
	Time      caltime.TimeOfDay
}

type DataPool struct {
	Dentists     []uuid.UUID
	Patients     []uuid.UUID
	Targets      []target
	Dates        []caltime.Date
	Services     []string
	mu           sync.RWMutex
	appointments []uuid.UUID
}

func (dp *DataPool) AddAppointment(id uuid.UUID) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.appointments = append(dp.appointments, id)
}

func (dp *DataPool) GetRandomAppointment(rng *rand.Rand) (uuid.UUID, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.appointments) == 0 {
		return uuid.Nil, false
	}
	return dp.appointments[rng.Intn(len(dp.appointments))], true
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, success bool, conflict bool) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case success:
		atomic.AddInt64(&om.Success, 1)
	case conflict:
		atomic.AddInt64(&om.Conflict, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]
	p50 = latencies[percentileIndex(len(latencies), 50)]
	p95 = latencies[percentileIndex(len(latencies), 95)]
	return avg, min, max, p50, p95
}

func percentileIndex(n, pct int) int {
	idx := n * pct / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

type Metrics struct {
	Booking   OperationMetrics
	Confirm   OperationMetrics
	Cancel    OperationMetrics
	ReadByID  OperationMetrics
	FreeSlots OperationMetrics
	History   OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	metrics Metrics
}

func main() {
	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	log.Info().
		Dur("duration", cfg.Duration).
		Int("workers", cfg.Workers).
		Int("days", cfg.Days).
		Float64("booking", cfg.BookingRatio).
		Float64("confirm", cfg.ConfirmRatio).
		Float64("cancel", cfg.CancelRatio).
		Float64("read", cfg.ReadRatio).
		Msg("simulator starting")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgPool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, "dental-simulate")
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pgPool.Close()

	dataPool, err := loadDataPool(ctx, appointment.NewPgRepository(pgPool), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("load data pool")
	}

	log.Info().
		Int("dentists", len(dataPool.Dentists)).
		Int("patients", len(dataPool.Patients)).
		Int("targets", len(dataPool.Targets)).
		Msg("data pool loaded")

	sim := &Simulator{
		config: cfg,
		pool:   dataPool,
		client: &http.Client{Timeout: 10 * time.Second},
	}

	sim.Run()
	sim.PrintReport()

	verifyCtx, verifyCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer verifyCancel()

	dupes, err := findDoubleBookings(verifyCtx, pgPool)
	if err != nil {
		log.Fatal().Err(err).Msg("double booking check failed")
	}
	if dupes > 0 {
		fmt.Printf("DOUBLE BOOKINGS FOUND: %d slots hold more than one live appointment\n", dupes)
		os.Exit(1)
	}
	fmt.Println("No double bookings found.")
}

func loadConfig() SimConfig {
	baseCfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load base config")
	}
	logging.Init("simulate", baseCfg.Env, baseCfg.LogLevel)

	cfg := SimConfig{
		APIBaseURL:   getEnv("SIM_API_BASE_URL", "http://localhost:8080"),
		Duration:     getDuration("SIM_DURATION", 30*time.Second),
		Workers:      getInt("SIM_WORKERS", 10),
		Days:         getInt("SIM_DAYS", 5),
		BookingRatio: getFloat("SIM_BOOKING_RATIO", 0.5),
		ConfirmRatio: getFloat("SIM_CONFIRM_RATIO", 0.15),
		CancelRatio:  getFloat("SIM_CANCEL_RATIO", 0.05),
		ReadRatio:    getFloat("SIM_READ_RATIO", 0.3),
		PatientLimit: getInt("SIM_PATIENT_LIMIT", 2000),
		PostgresDSN:  baseCfg.PostgresDSN,
		SlotMinutes:  baseCfg.SlotMinutes,
		Timezone:     baseCfg.ClinicTimezone,
	}

	total := cfg.BookingRatio + cfg.ConfirmRatio + cfg.CancelRatio + cfg.ReadRatio
	if total > 0 {
		cfg.BookingRatio /= total
		cfg.ConfirmRatio /= total
		cfg.CancelRatio /= total
		cfg.ReadRatio /= total
	}

	token, err := auth.NewTokens(baseCfg.JWTSecret, cfg.Duration+time.Hour).
		Issue(auth.Principal{ID: uuid.New(), Role: auth.RoleAdmin})
	if err != nil {
		log.Fatal().Err(err).Msg("issue simulator token")
	}
	cfg.Token = token

	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required (set in .env or environment)")
	}
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	if cfg.Days <= 0 {
		return fmt.Errorf("SIM_DAYS must be > 0")
	}
	return nil
}

// loadDataPool picks the dentists and patients to use and expands the
// default week into concrete slots over the next Days days.
func loadDataPool(ctx context.Context, repo *appointment.PgRepository, cfg SimConfig) (*DataPool, error) {
	dataPool := &DataPool{}

	dentists, err := repo.ListDentists(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dentists: %w", err)
	}
	for _, d := range dentists {
		dataPool.Dentists = append(dataPool.Dentists, d.ID)
	}

	patients, err := repo.ListPatients(ctx, cfg.PatientLimit)
	if err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}
	for _, p := range patients {
		dataPool.Patients = append(dataPool.Patients, p.ID)
	}

	if len(dataPool.Dentists) == 0 {
		return nil, fmt.Errorf("no dentists loaded, run the seeder first")
	}
	if len(dataPool.Patients) == 0 {
		return nil, fmt.Errorf("no patients loaded, run the seeder first")
	}

	for _, entry := range appointment.DefaultCatalog() {
		dataPool.Services = append(dataPool.Services, entry.Name)
	}

	today := caltime.Today(caltime.NewSystemClock(cfg.Timezone))
	rules := seed.DefaultRules()
	for i := 1; i <= cfg.Days; i++ {
		date := today.AddDays(i)
		dataPool.Dates = append(dataPool.Dates, date)
		for _, dentist := range dataPool.Dentists {
			for _, t := range appointment.GenerateSlots(rules, date, cfg.SlotMinutes) {
				dataPool.Targets = append(dataPool.Targets, target{DentistID: dentist, Date: date, Time: t})
			}
		}
	}
	if len(dataPool.Targets) == 0 {
		return nil, fmt.Errorf("no bookable slots in the next %d days", cfg.Days)
	}

	return dataPool, nil
}

func findDoubleBookings(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	var n int
	err := pool.QueryRow(ctx, `
		SELECT count(*) FROM (
			SELECT dentist_id, date, start_minute
			FROM appointments
			WHERE status <> 'cancelled'
			GROUP BY dentist_id, date, start_minute
			HAVING count(*) > 1
		) dupes
	`).Scan(&n)
	return n, err
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	log.Info().Dur("duration", s.config.Duration).Int("workers", s.config.Workers).Msg("starting simulation")

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	log.Info().Msg("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))
	c := s.config

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		r := rng.Float64()
		switch {
		case r < c.BookingRatio:
			s.doBooking(ctx, rng)
		case r < c.BookingRatio+c.ConfirmRatio:
			s.doTransition(ctx, rng, "confirm", &s.metrics.Confirm)
		case r < c.BookingRatio+c.ConfirmRatio+c.CancelRatio:
			s.doTransition(ctx, rng, "cancel", &s.metrics.Cancel)
		default:
			switch rng.Intn(3) {
			case 0:
				s.doReadByID(ctx, rng)
			case 1:
				s.doFreeSlots(ctx, rng)
			case 2:
				s.doHistory(ctx, rng)
			}
		}
	}
}

func (s *Simulator) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, s.config.APIBaseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.Token)
	return s.client.Do(req)
}

func (s *Simulator) doBooking(ctx context.Context, rng *rand.Rand) {
	t := s.pool.Targets[rng.Intn(len(s.pool.Targets))]
	patientID := s.pool.Patients[rng.Intn(len(s.pool.Patients))]

	start := time.Now()
	resp, err := s.send(ctx, http.MethodPost, "/appointments", map[string]string{
		"dentist_id": t.DentistID.String(),
		"patient_id": patientID.String(),
		"date":       t.Date.String(),
		"time":       t.Time.String(),
		"service":    gofakeit.RandomString(s.pool.Services),
	})
	latency := time.Since(start)

	success, conflict := false, false
	if err == nil {
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusCreated:
			success = true
			var apptResp struct {
				ID uuid.UUID `json:"id"`
			}
			if json.NewDecoder(resp.Body).Decode(&apptResp) == nil && apptResp.ID != uuid.Nil {
				s.pool.AddAppointment(apptResp.ID)
			}
		case http.StatusConflict:
			conflict = true
		}
	}

	s.metrics.Booking.Record(latency, success, conflict)
}

func (s *Simulator) doTransition(ctx context.Context, rng *rand.Rand, action string, om *OperationMetrics) {
	apptID, ok := s.pool.GetRandomAppointment(rng)
	if !ok {
		return
	}

	start := time.Now()
	resp, err := s.send(ctx, http.MethodPost, fmt.Sprintf("/appointments/%s/%s", apptID, action), nil)
	latency := time.Since(start)

	success, conflict := false, false
	if err == nil {
		defer resp.Body.Close()
		success = resp.StatusCode == http.StatusOK
		conflict = resp.StatusCode == http.StatusConflict
	}

	om.Record(latency, success, conflict)
}

func (s *Simulator) doReadByID(ctx context.Context, rng *rand.Rand) {
	apptID, ok := s.pool.GetRandomAppointment(rng)
	if !ok {
		return
	}
	s.doRead(ctx, "/appointments/"+apptID.String(), &s.metrics.ReadByID)
}

func (s *Simulator) doFreeSlots(ctx context.Context, rng *rand.Rand) {
	dentistID := s.pool.Dentists[rng.Intn(len(s.pool.Dentists))]
	date := s.pool.Dates[rng.Intn(len(s.pool.Dates))]
	s.doRead(ctx, fmt.Sprintf("/dentists/%s/slots?date=%s", dentistID, date), &s.metrics.FreeSlots)
}

func (s *Simulator) doHistory(ctx context.Context, rng *rand.Rand) {
	patientID := s.pool.Patients[rng.Intn(len(s.pool.Patients))]
	s.doRead(ctx, fmt.Sprintf("/patients/%s/appointments?limit=20&offset=0", patientID), &s.metrics.History)
}

func (s *Simulator) doRead(ctx context.Context, path string, om *OperationMetrics) {
	start := time.Now()
	resp, err := s.send(ctx, http.MethodGet, path, nil)
	latency := time.Since(start)

	success := false
	if err == nil {
		defer resp.Body.Close()
		success = resp.StatusCode == http.StatusOK
	}

	om.Record(latency, success, false)
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printOperationReport("Booking", &s.metrics.Booking)
	printOperationReport("Confirm", &s.metrics.Confirm)
	printOperationReport("Cancel", &s.metrics.Cancel)
	printOperationReport("Read by ID", &s.metrics.ReadByID)
	printOperationReport("Free slots", &s.metrics.FreeSlots)
	printOperationReport("Patient history", &s.metrics.History)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	failed := atomic.LoadInt64(&om.Error)

	avg, min, max, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", conflict, float64(conflict)/float64(total)*100)
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, float64(failed)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
